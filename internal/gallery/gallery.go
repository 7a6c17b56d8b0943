// Package gallery loads a guest's profile and pages through their media.
package gallery

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wedding-site/internal/models"
)

// Pager is a 1-based page cursor.
type Pager struct {
	Page  int
	Limit int
}

// NewPager clamps page to at least 1.
func NewPager(page, limit int) Pager {
	if page < 1 {
		page = 1
	}
	return Pager{Page: page, Limit: limit}
}

func (p Pager) Next() Pager { return NewPager(p.Page+1, p.Limit) }

// Prev never goes below page 1.
func (p Pager) Prev() Pager { return NewPager(p.Page-1, p.Limit) }

func (p Pager) HasPrev() bool { return p.Page > 1 }

// MayHaveMore is a hint, not a boundary: the API sends no total, so a full
// page is taken to mean another may follow. A last page that is exactly
// full still reports true.
func MayHaveMore(items, limit int) bool {
	return limit > 0 && items == limit
}

// Partition splits media by isGeneral. Every photo lands in exactly one half.
type Partition struct {
	General  []models.GalleryPhoto
	Personal []models.GalleryPhoto
}

func Split(items []models.GalleryPhoto) Partition {
	var p Partition
	for _, it := range items {
		if it.IsGeneral {
			p.General = append(p.General, it)
		} else {
			p.Personal = append(p.Personal, it)
		}
	}
	return p
}

// Fetcher is the slice of the API client the gallery needs.
type Fetcher interface {
	Guest(ctx context.Context, code string) (*models.Guest, error)
	GalleryFiles(ctx context.Context, code string, limit, page int) (*models.GalleryPage, error)
}

// View is everything a gallery screen renders for one code and page.
type View struct {
	Code  string
	Pager Pager

	Guest    *models.Guest
	GuestErr error

	Items    []models.GalleryPhoto
	MediaErr error
	HasMore  bool
	Partition
}

// Redirect is true when the guest profile could not be loaded; the gallery
// is not shown at all then.
func (v View) Redirect() bool { return v.GuestErr != nil }

// Service loads gallery views
type Service struct {
	api   Fetcher
	limit int
	log   zerolog.Logger
}

func NewService(api Fetcher, limit int, log zerolog.Logger) *Service {
	return &Service{
		api:   api,
		limit: limit,
		log:   log.With().Str("component", "gallery").Logger(),
	}
}

// Limit is the page size requested from the API.
func (s *Service) Limit() int { return s.limit }

// Load fetches the guest profile and one media page concurrently. A failed
// profile sets GuestErr; a failed media page sets MediaErr only.
func (s *Service) Load(ctx context.Context, code string, page int) View {
	v := View{Code: code, Pager: NewPager(page, s.limit)}

	var g errgroup.Group
	g.Go(func() error {
		guest, err := s.api.Guest(ctx, code)
		if err != nil {
			s.log.Warn().Err(err).Str("code", code).Msg("guest profile unavailable")
			v.GuestErr = err
			return nil
		}
		v.Guest = guest
		return nil
	})
	g.Go(func() error {
		v.loadMedia(ctx, s, code)
		return nil
	})
	g.Wait()
	return v
}

// LoadMedia fetches only the media page, for screens that already hold the profile.
func (s *Service) LoadMedia(ctx context.Context, code string, page int) View {
	v := View{Code: code, Pager: NewPager(page, s.limit)}
	v.loadMedia(ctx, s, code)
	return v
}

func (v *View) loadMedia(ctx context.Context, s *Service, code string) {
	gp, err := s.api.GalleryFiles(ctx, code, v.Pager.Limit, v.Pager.Page)
	if err != nil {
		s.log.Warn().Err(err).Str("code", code).Int("page", v.Pager.Page).Msg("gallery page unavailable")
		v.MediaErr = err
		return
	}
	// the server's effective paging wins over what was asked for
	v.Pager = NewPager(gp.Page, gp.Limit)
	v.Items = gp.Items
	v.HasMore = MayHaveMore(len(gp.Items), gp.Limit)
	v.Partition = Split(gp.Items)
}
