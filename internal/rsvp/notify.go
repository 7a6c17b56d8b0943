package rsvp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wedding-site/internal/models"
)

// Notifier delivers a guest's invitation link over one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, invite models.SubmittedInvite) error
}

// Dispatcher fans invites out to every notifier. Delivery is best effort:
// failures are logged and returned but never undo an RSVP.
type Dispatcher struct {
	notifiers []Notifier
	log       zerolog.Logger
	timeout   time.Duration
	limit     int

	inflight sync.WaitGroup
}

func NewDispatcher(log zerolog.Logger, notifiers ...Notifier) *Dispatcher {
	var active []Notifier
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &Dispatcher{
		notifiers: active,
		log:       log.With().Str("component", "notify").Logger(),
		timeout:   30 * time.Second,
		limit:     4,
	}
}

// Enabled reports whether any channel is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && len(d.notifiers) > 0
}

// Deliver sends every invite on every channel and waits for all of them.
func (d *Dispatcher) Deliver(ctx context.Context, invites []models.SubmittedInvite) error {
	if !d.Enabled() || len(invites) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(d.limit)
	for _, inv := range invites {
		for _, n := range d.notifiers {
			g.Go(func() error {
				if err := n.Notify(ctx, inv); err != nil {
					d.log.Warn().Err(err).Str("channel", n.Name()).Str("guest", inv.ID).Msg("invite delivery failed")
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s to %s: %w", n.Name(), inv.ID, err))
					mu.Unlock()
					return nil
				}
				d.log.Info().Str("channel", n.Name()).Str("guest", inv.ID).Msg("invite delivered")
				return nil
			})
		}
	}
	g.Wait()
	return errors.Join(errs...)
}

// DeliverAsync runs Deliver in the background, detached from the caller's
// cancellation so it survives the HTTP response.
func (d *Dispatcher) DeliverAsync(ctx context.Context, invites []models.SubmittedInvite) {
	if !d.Enabled() || len(invites) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		_ = d.Deliver(ctx, invites)
	}()
}

// Wait blocks until every DeliverAsync call has finished or ctx is done.
// Call it before tearing the notifiers down.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
