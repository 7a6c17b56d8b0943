package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"wedding-site/internal/gallery"
	"wedding-site/internal/models"
)

// Gallery tabs.
const (
	tabInvitation = "invitation"
	tabGeneral    = "general"
	tabPersonal   = "personal"
)

type galleryView struct {
	Title    string
	Code     string
	Tab      string
	Greeting string

	Guest       *models.Guest
	DownloadURL string

	Photos   []models.GalleryPhoto
	Selected *models.GalleryPhoto
	MediaErr string
	Page     int
	PrevPage int
	NextPage int
	HasPrev  bool
	HasMore  bool
}

func (v galleryView) TabURL(tab string) string {
	return fmt.Sprintf("/guest/%s?tab=%s", url.PathEscape(v.Code), tab)
}

func (v galleryView) PageURL(page int) string {
	return fmt.Sprintf("/guest/%s?tab=%s&page=%d", url.PathEscape(v.Code), v.Tab, page)
}

func (v galleryView) PhotoURL(id string) string {
	return fmt.Sprintf("/guest/%s?tab=%s&page=%d&photo=%s", url.PathEscape(v.Code), v.Tab, v.Page, url.QueryEscape(id))
}

// handleGuest shows the guest's invitation card and their media. A guest
// profile that cannot be loaded sends the visitor home.
func (s *Site) handleGuest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	q := r.URL.Query()

	tab := q.Get("tab")
	switch tab {
	case tabGeneral, tabPersonal:
	default:
		tab = tabInvitation
	}
	page, _ := strconv.Atoi(q.Get("page"))

	v := s.gallery.Load(ctx, code, page)
	if v.Redirect() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.remember(ctx, s.resolver(w, r), code)

	view := galleryView{
		Title:       v.Guest.DisplayName(),
		Code:        code,
		Tab:         tab,
		Greeting:    v.Guest.DisplayName() + ", you are invited!",
		Guest:       v.Guest,
		DownloadURL: "/guest/" + url.PathEscape(code) + "/card",
		Page:        v.Pager.Page,
		PrevPage:    v.Pager.Prev().Page,
		NextPage:    v.Pager.Next().Page,
		HasPrev:     v.Pager.HasPrev(),
		HasMore:     v.HasMore,
	}
	if v.MediaErr != nil {
		view.MediaErr = "We couldn't load the gallery right now. Please try again later."
	}
	view.Photos = photosFor(tab, v)
	if id := q.Get("photo"); id != "" {
		for i := range view.Photos {
			if view.Photos[i].ID == id {
				view.Selected = &view.Photos[i]
				break
			}
		}
	}

	s.render(w, r, http.StatusOK, "gallery.html", view)
}

func photosFor(tab string, v gallery.View) []models.GalleryPhoto {
	switch tab {
	case tabGeneral:
		return v.General
	case tabPersonal:
		return v.Personal
	}
	return nil
}

// handleCard streams the guest's invitation card as a file download.
func (s *Site) handleCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := strings.TrimSpace(chi.URLParam(r, "code"))

	guest, err := s.api.Guest(ctx, code)
	if err != nil {
		if classify(err) == kindNotFound {
			s.handleNotFound(w, r)
			return
		}
		s.log.Warn().Err(err).Str("code", code).Msg("guest lookup for card failed")
		http.Error(w, "invitation card unavailable", http.StatusBadGateway)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, guest.Link.InvitationCardURL, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("code", code).Msg("bad invitation card url")
		http.Error(w, "invitation card unavailable", http.StatusBadGateway)
		return
	}
	resp, err := s.cards.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Str("code", code).Msg("invitation card fetch failed")
		http.Error(w, "invitation card unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn().Int("status", resp.StatusCode).Str("code", code).Msg("invitation card fetch failed")
		http.Error(w, "invitation card unavailable", http.StatusBadGateway)
		return
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "image/jpeg"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cardFilename(ct)))
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Debug().Err(err).Str("code", code).Msg("card download interrupted")
	}
}

// cardFilename names the download after the card's image type, using .jpg
// for JPEG and for anything that is not a known image type.
func cardFilename(contentType string) string {
	ext := ".jpg"
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "image/jpeg" && strings.HasPrefix(mt, "image/") {
		if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return "invitation" + ext
}
