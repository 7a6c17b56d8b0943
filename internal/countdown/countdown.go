// Package countdown computes the time left until the celebration starts.
package countdown

import (
	"context"
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Remaining is the time left split into display units.
// Once the target has passed every unit is zero and Elapsed is set.
type Remaining struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Elapsed bool `json:"elapsed"`
}

// Until splits target-now into whole days, hours, minutes and seconds.
// Sub-second remainders are truncated, matching a wall-clock display.
func Until(target, now time.Time) Remaining {
	d := target.Sub(now)
	if d <= 0 {
		return Remaining{Elapsed: true}
	}
	return Remaining{
		Days:    int(d / day),
		Hours:   int(d % day / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
		Seconds: int(d % time.Minute / time.Second),
	}
}

// Unit is one labelled countdown cell.
type Unit struct {
	Value int
	Label string
}

// Units returns the four cells in display order.
func (r Remaining) Units() []Unit {
	return []Unit{
		{r.Days, "Days"},
		{r.Hours, "Hours"},
		{r.Minutes, "Minutes"},
		{r.Seconds, "Seconds"},
	}
}

func (r Remaining) String() string {
	if r.Elapsed {
		return "elapsed"
	}
	return fmt.Sprintf("%dd %02dh %02dm %02ds", r.Days, r.Hours, r.Minutes, r.Seconds)
}

// Timer recomputes the countdown on a fixed cadence
type Timer struct {
	Target   time.Time
	Interval time.Duration
	Now      func() time.Time
}

// NewTimer ticks once per second against the wall clock.
func NewTimer(target time.Time) *Timer {
	return &Timer{Target: target, Interval: time.Second, Now: time.Now}
}

// Run emits the current value immediately and then on every tick until ctx is
// done or the elapsed state has been emitted. The elapsed state is emitted once.
// Each tick reads the clock again, so a stalled consumer never drifts.
func (t *Timer) Run(ctx context.Context, emit func(Remaining) error) error {
	now := t.Now
	if now == nil {
		now = time.Now
	}
	interval := t.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r := Until(t.Target, now())
		if err := emit(r); err != nil {
			return err
		}
		if r.Elapsed {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
