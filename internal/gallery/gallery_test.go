package gallery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/api"
	"wedding-site/internal/api/apitest"
	"wedding-site/internal/models"
)

func photos(n int, general func(i int) bool) []models.GalleryPhoto {
	out := make([]models.GalleryPhoto, n)
	for i := range out {
		out[i] = models.GalleryPhoto{ID: fmt.Sprintf("p%d", i), URL: fmt.Sprintf("https://cdn.example.com/p%d.jpg", i), IsGeneral: general(i)}
	}
	return out
}

func TestPagerNeverBelowOne(t *testing.T) {
	assert.Equal(t, 1, NewPager(0, 16).Page)
	assert.Equal(t, 1, NewPager(-4, 16).Page)

	p := NewPager(2, 16)
	assert.True(t, p.HasPrev())
	p = p.Prev().Prev().Prev()
	assert.Equal(t, 1, p.Page)
	assert.False(t, p.HasPrev())
	assert.Equal(t, 2, p.Next().Page)
}

func TestMayHaveMore(t *testing.T) {
	assert.True(t, MayHaveMore(16, 16))
	assert.False(t, MayHaveMore(15, 16))
	assert.False(t, MayHaveMore(0, 16))
	assert.False(t, MayHaveMore(0, 0))
}

func TestSplitCoversEveryPhotoOnce(t *testing.T) {
	items := photos(7, func(i int) bool { return i%3 == 0 })
	p := Split(items)
	assert.Len(t, p.General, 3)
	assert.Len(t, p.Personal, 4)

	seen := map[string]int{}
	for _, ph := range append(p.General, p.Personal...) {
		seen[ph.ID]++
	}
	assert.Len(t, seen, len(items))
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

func newFixture(t *testing.T) (*apitest.Server, *Service) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return srv, NewService(api.NewWithDoer(srv.URL, srv.Client()), 4, zerolog.Nop())
}

func guest() models.Guest {
	return models.Guest{Title: "Mr", FirstName: "Ada", LastName: "Okafor",
		Link: models.GuestLink{InvitationCardURL: "https://cdn.example.com/card.jpg", GuestURL: "https://site.example.com/guest/abc"}}
}

func TestLoadPages(t *testing.T) {
	srv, svc := newFixture(t)
	srv.AddGuest("abc", guest())
	srv.SetPhotos("abc", photos(6, func(i int) bool { return i < 2 }))
	ctx := context.Background()

	v := svc.Load(ctx, "abc", 1)
	require.False(t, v.Redirect())
	require.NoError(t, v.MediaErr)
	assert.Equal(t, "Ada", v.Guest.FirstName)
	assert.Len(t, v.Items, 4)
	assert.True(t, v.HasMore)
	assert.Len(t, v.General, 2)
	assert.Len(t, v.Personal, 2)

	v = svc.Load(ctx, "abc", 2)
	assert.Len(t, v.Items, 2)
	assert.False(t, v.HasMore)
	assert.Equal(t, 2, v.Pager.Page)

	v = svc.Load(ctx, "abc", 0)
	assert.Equal(t, 1, v.Pager.Page)
}

func TestLoadGuestFailureRedirects(t *testing.T) {
	srv, svc := newFixture(t)
	srv.SetPhotos("gone", photos(1, func(int) bool { return true }))

	v := svc.Load(context.Background(), "gone", 1)
	assert.True(t, v.Redirect())
	assert.ErrorIs(t, v.GuestErr, api.ErrNotFound)
}

func TestLoadMediaFailureIsLocal(t *testing.T) {
	srv, svc := newFixture(t)
	srv.AddGuest("abc", guest())
	srv.FailWith("GalleryFiles", "storage offline")

	v := svc.Load(context.Background(), "abc", 1)
	assert.False(t, v.Redirect())
	require.NotNil(t, v.Guest)
	assert.Error(t, v.MediaErr)
	assert.False(t, v.HasMore)
	assert.Empty(t, v.Items)
}

func TestLoadMediaOnly(t *testing.T) {
	srv, svc := newFixture(t)
	srv.SetPhotos("abc", photos(4, func(int) bool { return false }))

	v := svc.LoadMedia(context.Background(), "abc", 1)
	assert.Nil(t, v.Guest)
	assert.Len(t, v.Personal, 4)
	assert.True(t, v.HasMore)
	assert.Zero(t, srv.Calls("Guest"))
}

// gatedFetcher blocks each GalleryFiles call for a code until released.
type gatedFetcher struct {
	release map[string]chan struct{}
}

func (g *gatedFetcher) Guest(_ context.Context, code string) (*models.Guest, error) {
	gu := guest()
	gu.FirstName = code
	return &gu, nil
}

func (g *gatedFetcher) GalleryFiles(ctx context.Context, code string, limit, page int) (*models.GalleryPage, error) {
	select {
	case <-g.release[code]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &models.GalleryPage{Items: photos(1, func(int) bool { return true }), Limit: limit, Page: page}, nil
}

func TestTrackerDiscardsStaleResults(t *testing.T) {
	f := &gatedFetcher{release: map[string]chan struct{}{
		"old": make(chan struct{}),
		"new": make(chan struct{}),
	}}
	tr := NewTracker(NewService(f, 4, zerolog.Nop()))

	type result struct {
		v  View
		ok bool
	}
	results := make(chan result, 2)
	report := func(v View, ok bool) { results <- result{v, ok} }

	tr.Fetch(context.Background(), "old", 1, report)
	tr.Fetch(context.Background(), "new", 1, report)

	close(f.release["new"])
	r := <-results
	assert.True(t, r.ok)
	assert.Equal(t, "new", r.v.Code)

	close(f.release["old"])
	r = <-results
	assert.False(t, r.ok)
	assert.Equal(t, "old", r.v.Code)

	cur, loaded := tr.Current()
	require.True(t, loaded)
	assert.Equal(t, "new", cur.Code)
	assert.Equal(t, "new", cur.Guest.FirstName)
}

func TestTrackerCommit(t *testing.T) {
	tr := NewTracker(nil)
	_, loaded := tr.Current()
	assert.False(t, loaded)

	first := tr.Begin("a", 1)
	second := tr.Begin("a", 2)
	assert.False(t, tr.Commit(first, View{Code: "a", Pager: NewPager(1, 4)}))
	assert.True(t, tr.Commit(second, View{Code: "a", Pager: NewPager(2, 4)}))

	cur, _ := tr.Current()
	assert.Equal(t, 2, cur.Pager.Page)

	tr.Stop()
	assert.False(t, tr.Commit(second, View{}))
}

func TestTrackerStopCancelsInFlight(t *testing.T) {
	f := &gatedFetcher{release: map[string]chan struct{}{"abc": make(chan struct{})}}
	tr := NewTracker(NewService(f, 4, zerolog.Nop()))

	done := make(chan View, 1)
	tr.Fetch(context.Background(), "abc", 1, func(v View, ok bool) {
		assert.False(t, ok)
		done <- v
	})
	tr.Stop()

	v := <-done
	assert.True(t, errors.Is(v.MediaErr, context.Canceled))
}
