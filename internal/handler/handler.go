// Package handler serves the wedding site: landing page, RSVP form and the
// guest gallery, rendered server-side from the remote API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"wedding-site/internal/gallery"
	"wedding-site/internal/gate"
	"wedding-site/internal/invite"
	"wedding-site/internal/models"
	"wedding-site/internal/rsvp"
	"wedding-site/internal/storage"
)

// API is everything the site asks of the remote GraphQL API.
type API interface {
	gate.LinkFetcher
	gallery.Fetcher
	rsvp.Submitter
}

// Doer fetches invitation card images for download.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	Event            *models.Event
	GalleryLimit     int
	DefaultDialCode  string
	DefaultMaxGuests int
	CookieSecure     bool
	// CountdownInterval is the SSE tick; zero means one second.
	CountdownInterval time.Duration
}

// Site holds the dependencies shared by every page
type Site struct {
	api     API
	gate    *gate.Gate
	gallery *gallery.Service
	store   storage.Store
	notify  *rsvp.Dispatcher
	cards   Doer
	cfg     Config
	log     zerolog.Logger
	pages   *pages
	now     func() time.Time

	// streams is cancelled by StopStreams to end open countdown streams.
	streams     context.Context
	stopStreams context.CancelFunc
}

// New builds a site. store may be nil, in which case visitor state lives in
// cookies. notify may be nil.
func New(api API, store storage.Store, notify *rsvp.Dispatcher, cards Doer, cfg Config, log zerolog.Logger) (*Site, error) {
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	if cfg.CountdownInterval <= 0 {
		cfg.CountdownInterval = time.Second
	}
	if cards == nil {
		cards = &http.Client{Timeout: 30 * time.Second}
	}
	log = log.With().Str("component", "http").Logger()
	streams, stopStreams := context.WithCancel(context.Background())
	return &Site{
		api:     api,
		gate:    gate.New(api, log),
		gallery: gallery.NewService(api, cfg.GalleryLimit, log),
		store:   store,
		notify:  notify,
		cards:   cards,
		cfg:     cfg,
		log:     log,
		pages:   p,
		now:     time.Now,

		streams:     streams,
		stopStreams: stopStreams,
	}, nil
}

// StopStreams ends every open /countdown stream. Other requests are left to
// finish; pass it to http.Server.RegisterOnShutdown.
func (s *Site) StopStreams() {
	s.stopStreams()
}

// Routes returns the site's router.
func (s *Site) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleLanding)
	r.Get("/countdown", s.handleCountdown)
	r.Get("/qr", s.handleQR)

	r.Route("/rsvp/{code}", func(r chi.Router) {
		r.Get("/", s.handleRSVP)
		r.Post("/", s.handleRSVPPost)
	})
	r.Route("/guest/{code}", func(r chi.Router) {
		r.Get("/", s.handleGuest)
		r.Get("/card", s.handleCard)
	})

	r.NotFound(s.handleNotFound)
	return r
}

// resolver binds the invite resolver to this request's visitor state.
func (s *Site) resolver(w http.ResponseWriter, r *http.Request) *invite.Resolver {
	return invite.NewResolver(storage.ForRequest(s.store, w, r, s.cfg.CookieSecure))
}

// remember stores code as the visitor's last invite; failures are only logged.
func (s *Site) remember(ctx context.Context, res *invite.Resolver, code string) {
	if err := res.Remember(ctx, code); err != nil {
		s.log.Warn().Err(err).Str("code", code).Msg("could not remember invite code")
	}
}
