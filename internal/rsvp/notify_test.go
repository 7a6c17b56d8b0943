package rsvp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/models"
)

type fakeNotifier struct {
	name string
	fail string

	mu   sync.Mutex
	sent []string
	done chan struct{}
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Notify(_ context.Context, inv models.SubmittedInvite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done != nil {
		defer func() { f.done <- struct{}{} }()
	}
	if inv.ID == f.fail {
		return errors.New("unreachable")
	}
	f.sent = append(f.sent, inv.ID)
	return nil
}

func (f *fakeNotifier) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestDeliverFansOut(t *testing.T) {
	wa := &fakeNotifier{name: "whatsapp"}
	mail := &fakeNotifier{name: "email", fail: "b"}
	d := NewDispatcher(zerolog.Nop(), wa, nil, mail)
	require.True(t, d.Enabled())

	invites := []models.SubmittedInvite{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	err := d.Deliver(context.Background(), invites)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "email to b")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, wa.Sent())
	assert.ElementsMatch(t, []string{"a", "c"}, mail.Sent())
}

func TestDispatcherWithoutNotifiers(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	assert.False(t, d.Enabled())
	assert.NoError(t, d.Deliver(context.Background(), []models.SubmittedInvite{{ID: "a"}}))

	var nilDispatcher *Dispatcher
	assert.False(t, nilDispatcher.Enabled())
}

func TestDeliverAsyncOutlivesCaller(t *testing.T) {
	n := &fakeNotifier{name: "whatsapp", done: make(chan struct{}, 1)}
	d := NewDispatcher(zerolog.Nop(), n)

	ctx, cancel := context.WithCancel(context.Background())
	d.DeliverAsync(ctx, []models.SubmittedInvite{{ID: "a"}})
	cancel()

	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery never ran")
	}
	assert.Equal(t, []string{"a"}, n.Sent())
}

type blockingNotifier struct {
	release chan struct{}
	sent    chan string
}

func (b *blockingNotifier) Name() string { return "slow" }

func (b *blockingNotifier) Notify(_ context.Context, inv models.SubmittedInvite) error {
	<-b.release
	b.sent <- inv.ID
	return nil
}

func TestWaitDrainsAsyncDeliveries(t *testing.T) {
	n := &blockingNotifier{release: make(chan struct{}), sent: make(chan string, 2)}
	d := NewDispatcher(zerolog.Nop(), n)
	d.DeliverAsync(context.Background(), []models.SubmittedInvite{{ID: "a"}, {ID: "b"}})

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(short), context.DeadlineExceeded)

	close(n.release)
	require.NoError(t, d.Wait(context.Background()))
	assert.Len(t, n.sent, 2)
}

func TestWaitWithoutDeliveries(t *testing.T) {
	assert.NoError(t, NewDispatcher(zerolog.Nop()).Wait(context.Background()))

	var nilDispatcher *Dispatcher
	assert.NoError(t, nilDispatcher.Wait(context.Background()))
}
