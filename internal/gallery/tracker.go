package gallery

import (
	"context"
	"sync"
)

// Ticket identifies one fetch. Only the newest ticket may commit.
type Ticket struct {
	gen  uint64
	Code string
	Page int
}

// Tracker holds the latest view for a screen that refetches as its code or
// page changes. Results of superseded fetches are discarded.
type Tracker struct {
	svc *Service

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current View
	loaded  bool
}

func NewTracker(svc *Service) *Tracker {
	return &Tracker{svc: svc}
}

// Begin supersedes every earlier ticket.
func (t *Tracker) Begin(code string, page int) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	return Ticket{gen: t.gen, Code: code, Page: page}
}

// Commit stores v if tk is still the newest ticket and reports whether it did.
func (t *Tracker) Commit(tk Ticket, v View) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk.gen != t.gen {
		return false
	}
	t.current = v
	t.loaded = true
	return true
}

// Current returns the last committed view.
func (t *Tracker) Current() (View, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.loaded
}

// Fetch loads code/page in the background, cancelling any fetch still in
// flight. done runs with the result and whether it was committed.
func (t *Tracker) Fetch(ctx context.Context, code string, page int, done func(View, bool)) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	t.gen++
	tk := Ticket{gen: t.gen, Code: code, Page: page}
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = cancel
	t.mu.Unlock()

	go func() {
		defer cancel()
		v := t.svc.Load(ctx, code, page)
		ok := t.Commit(tk, v)
		if done != nil {
			done(v, ok)
		}
	}()
}

// Stop cancels the fetch in flight, if any.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
