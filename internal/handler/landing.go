package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"wedding-site/internal/countdown"
	"wedding-site/internal/invite"
	"wedding-site/internal/models"
)

type landingView struct {
	Title     string
	Event     *models.Event
	Countdown countdown.Remaining
	// Code is the visitor's remembered invite code, if any.
	Code             string
	ShowRSVP         bool
	AlreadySubmitted bool
}

func (s *Site) handleLanding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := s.resolver(w, r)

	if redirect, ok := invite.Canonical(r.URL); ok {
		if redirect.Remember != "" {
			s.remember(ctx, res, redirect.Remember)
		}
		http.Redirect(w, r, redirect.Location, http.StatusFound)
		return
	}

	view := landingView{
		Title:     s.cfg.Event.Title,
		Event:     s.cfg.Event,
		Countdown: countdown.Until(s.cfg.Event.StartsAt, s.now()),
	}

	state, err := res.Resolve(ctx, r.URL)
	if err != nil {
		s.log.Warn().Err(err).Msg("invite state unavailable")
	}
	if state.HasCode() {
		view.Code = state.Code
		view.AlreadySubmitted = state.AlreadySubmitted
		if !state.AlreadySubmitted {
			view.ShowRSVP = s.gate.Check(ctx, state.Code).ShowRSVP()
		}
	}

	s.render(w, r, http.StatusOK, "landing.html", view)
}

// handleCountdown streams the countdown as server-sent events until the
// client leaves or the celebration starts.
func (s *Site) handleCountdown(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer context.AfterFunc(s.streams, cancel)()

	timer := &countdown.Timer{
		Target:   s.cfg.Event.StartsAt,
		Interval: s.cfg.CountdownInterval,
		Now:      s.now,
	}
	err := timer.Run(ctx, func(rem countdown.Remaining) error {
		data, err := json.Marshal(rem)
		if err != nil {
			return err
		}
		event := "tick"
		if rem.Elapsed {
			event = "elapsed"
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && ctx.Err() == nil {
		s.log.Debug().Err(err).Msg("countdown stream ended")
	}
}
