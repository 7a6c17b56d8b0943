package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/api"
	"wedding-site/internal/handler"
	"wedding-site/internal/models"
	"wedding-site/internal/rsvp"
)

// heldAPI answers invitationLink only after release is closed.
type heldAPI struct {
	entered chan struct{}
	release chan struct{}
}

func (h *heldAPI) InvitationLink(ctx context.Context, code string) (*models.InvitationLink, error) {
	h.entered <- struct{}{}
	select {
	case <-h.release:
		return &models.InvitationLink{ID: "l1", Code: code, Status: models.LinkUnused, GuestPerEntry: 1}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *heldAPI) Guest(context.Context, string) (*models.Guest, error) {
	return nil, api.ErrNotFound
}

func (h *heldAPI) GalleryFiles(_ context.Context, _ string, limit, page int) (*models.GalleryPage, error) {
	return &models.GalleryPage{Limit: limit, Page: page}, nil
}

func (h *heldAPI) RSVP(context.Context, string, []models.GuestInput) ([]models.SubmittedInvite, error) {
	return nil, api.ErrNotFound
}

func startServer(t *testing.T, a handler.API, d *rsvp.Dispatcher) (*http.Server, context.CancelFunc, string) {
	t.Helper()
	site, err := handler.New(a, nil, d, nil, handler.Config{
		Event:            &models.Event{Title: "x", StartsAt: time.Now().Add(time.Hour)},
		GalleryLimit:     3,
		DefaultDialCode:  "+234",
		DefaultMaxGuests: 1,
	}, zerolog.Nop())
	require.NoError(t, err)

	srv, cancel := newServer("", site)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(l)
	return srv, cancel, "http://" + l.Addr().String()
}

func TestShutdownDrainsInFlightRequests(t *testing.T) {
	held := &heldAPI{entered: make(chan struct{}, 1), release: make(chan struct{})}
	d := rsvp.NewDispatcher(zerolog.Nop())
	srv, cancel, base := startServer(t, held, d)

	// an open countdown stream must not hold shutdown up
	stream, err := http.Get(base + "/countdown")
	require.NoError(t, err)
	defer stream.Body.Close()
	go io.Copy(io.Discard, stream.Body)

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get(base + "/rsvp/abc123")
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()
	<-held.entered

	stopped := make(chan error, 1)
	go func() { stopped <- shutdown(srv, cancel, d, zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	close(held.release)

	assert.Equal(t, http.StatusOK, <-status)
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not finish")
	}
}

type gatedNotifier struct {
	release chan struct{}
	sent    chan string
}

func (g *gatedNotifier) Name() string { return "gated" }

func (g *gatedNotifier) Notify(_ context.Context, inv models.SubmittedInvite) error {
	<-g.release
	g.sent <- inv.ID
	return nil
}

func TestShutdownWaitsForInviteDeliveries(t *testing.T) {
	n := &gatedNotifier{release: make(chan struct{}), sent: make(chan string, 1)}
	d := rsvp.NewDispatcher(zerolog.Nop(), n)
	held := &heldAPI{entered: make(chan struct{}, 1), release: make(chan struct{})}
	srv, cancel, _ := startServer(t, held, d)

	d.DeliverAsync(context.Background(), []models.SubmittedInvite{{ID: "a"}})

	stopped := make(chan error, 1)
	go func() { stopped <- shutdown(srv, cancel, d, zerolog.Nop()) }()

	select {
	case <-stopped:
		t.Fatal("shutdown returned before the delivery finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(n.release)
	require.NoError(t, <-stopped)
	assert.Equal(t, "a", <-n.sent)
}
