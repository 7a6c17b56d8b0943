package countdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		target time.Time
		want   Remaining
	}{
		{"mixed units", now.Add(3*day + 4*time.Hour + 5*time.Minute + 6*time.Second), Remaining{Days: 3, Hours: 4, Minutes: 5, Seconds: 6}},
		{"sub-second truncated", now.Add(1500 * time.Millisecond), Remaining{Seconds: 1}},
		{"just under a day", now.Add(day - time.Second), Remaining{Hours: 23, Minutes: 59, Seconds: 59}},
		{"exactly now", now, Remaining{Elapsed: true}},
		{"past", now.Add(-time.Hour), Remaining{Elapsed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Until(tt.target, now))
		})
	}
}

func TestUntilUnitsStayWithinModulus(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Duration{time.Second, 59 * time.Second, time.Hour - 1, 47*time.Hour + 59*time.Minute, 400*day + 13*time.Hour} {
		r := Until(now.Add(d), now)
		assert.False(t, r.Elapsed)
		assert.Less(t, r.Hours, 24)
		assert.Less(t, r.Minutes, 60)
		assert.Less(t, r.Seconds, 60)
		total := time.Duration(r.Days)*day + time.Duration(r.Hours)*time.Hour +
			time.Duration(r.Minutes)*time.Minute + time.Duration(r.Seconds)*time.Second
		assert.Equal(t, d.Truncate(time.Second), total)
	}
}

func TestUnitsOrder(t *testing.T) {
	units := Remaining{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}.Units()
	require.Len(t, units, 4)
	assert.Equal(t, Unit{1, "Days"}, units[0])
	assert.Equal(t, Unit{4, "Seconds"}, units[3])
	assert.Equal(t, "1d 02h 03m 04s", Remaining{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}.String())
}

// steppedClock returns the next instant on every call and then sticks at the last one.
func steppedClock(instants ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := instants[i]
		if i < len(instants)-1 {
			i++
		}
		return t
	}
}

func TestTimerEmitsElapsedOnceAndStops(t *testing.T) {
	target := time.Date(2025, 10, 25, 7, 0, 0, 0, time.UTC)
	timer := &Timer{
		Target:   target,
		Interval: time.Millisecond,
		Now:      steppedClock(target.Add(-2*time.Second), target.Add(-time.Second), target, target.Add(time.Second)),
	}

	var got []Remaining
	err := timer.Run(context.Background(), func(r Remaining) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Seconds)
	assert.Equal(t, 1, got[1].Seconds)
	assert.True(t, got[2].Elapsed)
}

func TestTimerRecomputesFromClock(t *testing.T) {
	target := time.Date(2025, 10, 25, 7, 0, 0, 0, time.UTC)
	// The clock jumps as if the process had been suspended for an hour.
	timer := &Timer{
		Target:   target,
		Interval: time.Millisecond,
		Now:      steppedClock(target.Add(-2*time.Hour), target.Add(-time.Hour+time.Second), target),
	}

	var got []Remaining
	require.NoError(t, timer.Run(context.Background(), func(r Remaining) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 3)
	assert.Equal(t, Remaining{Hours: 2}, got[0])
	assert.Equal(t, Remaining{Minutes: 59, Seconds: 59}, got[1])
}

func TestTimerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	timer := &Timer{Target: time.Now().Add(time.Hour), Interval: time.Millisecond}

	n := 0
	err := timer.Run(ctx, func(Remaining) error {
		n++
		if n == 3 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, n)
}

func TestTimerPropagatesEmitError(t *testing.T) {
	boom := errors.New("client gone")
	timer := NewTimer(time.Now().Add(time.Hour))

	err := timer.Run(context.Background(), func(Remaining) error { return boom })
	assert.ErrorIs(t, err, boom)
}
