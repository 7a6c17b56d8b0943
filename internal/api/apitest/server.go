// Package apitest provides an in-process fake of the wedding GraphQL API.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"wedding-site/internal/models"
)

// RSVPCall records one rsvp mutation received by the fake.
type RSVPCall struct {
	InvitationLinkID string
	Guests           []models.GuestInput
}

// Server answers the four API operations from in-memory records.
// Unknown codes yield null data, which the client maps to api.ErrNotFound.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	links   map[string]*models.InvitationLink
	guests  map[string]*models.Guest
	photos  map[string][]models.GalleryPhoto
	errs    map[string]string
	calls   map[string]int
	rsvps   []RSVPCall
	rsvpOne bool
}

// NewServer starts a fake API. Close it when done.
func NewServer() *Server {
	s := &Server{
		links:  make(map[string]*models.InvitationLink),
		guests: make(map[string]*models.Guest),
		photos: make(map[string][]models.GalleryPhoto),
		errs:   make(map[string]string),
		calls:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// AddLink registers an invitation link under its code.
func (s *Server) AddLink(link models.InvitationLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link.Code] = &link
}

// AddGuest registers a guest profile under code.
func (s *Server) AddGuest(code string, g models.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guests[code] = &g
}

// SetPhotos sets the full media list for code; pages are sliced from it.
func (s *Server) SetPhotos(code string, photos []models.GalleryPhoto) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[code] = photos
}

// FailWith makes operation answer with a GraphQL errors array carrying msg.
func (s *Server) FailWith(operation, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[operation] = msg
}

// RespondSingle makes the rsvp mutation answer with one object instead of an array.
func (s *Server) RespondSingle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rsvpOne = true
}

// Calls returns how many times operation was requested.
func (s *Server) Calls(operation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[operation]
}

// RSVPs returns the rsvp mutations received so far.
func (s *Server) RSVPs() []RSVPCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RSVPCall, len(s.rsvps))
	copy(out, s.rsvps)
	return out
}

type request struct {
	OperationName string `json:"operationName"`
	Variables     struct {
		Input struct {
			Code             string              `json:"code"`
			Guests           []models.GuestInput `json:"guests"`
			InvitationLinkID string              `json:"invitationLinkId"`
		} `json:"input"`
		Limit int `json:"limit"`
		Page  int `json:"page"`
	} `json:"variables"`
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[req.OperationName]++

	if msg, ok := s.errs[req.OperationName]; ok {
		writeJSON(w, map[string]any{"data": nil, "errors": []map[string]any{{"message": msg}}})
		return
	}

	code := req.Variables.Input.Code
	var data map[string]any
	switch req.OperationName {
	case "InvitationLink":
		data = map[string]any{"invitationLink": s.links[code]}
	case "Guest":
		data = map[string]any{"guest": s.guests[code]}
	case "GalleryFiles":
		data = map[string]any{"galleryFiles": s.page(code, req.Variables.Limit, req.Variables.Page)}
	case "Rsvp":
		data = map[string]any{"rsvp": s.rsvp(req.Variables.Input.InvitationLinkID, req.Variables.Input.Guests)}
	default:
		http.Error(w, "unknown operation", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"data": data})
}

func (s *Server) page(code string, limit, page int) *models.GalleryPage {
	all := s.photos[code]
	start := (page - 1) * limit
	if start < 0 || start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	items := make([]models.GalleryPhoto, end-start)
	copy(items, all[start:end])
	return &models.GalleryPage{Items: items, Limit: limit, Page: page}
}

func (s *Server) rsvp(linkID string, guests []models.GuestInput) any {
	s.rsvps = append(s.rsvps, RSVPCall{InvitationLinkID: linkID, Guests: guests})

	invites := make([]models.SubmittedInvite, 0, len(guests))
	for i, g := range guests {
		id := linkID + "-" + string(rune('a'+i))
		invites = append(invites, models.SubmittedInvite{
			ID:        id,
			Phone:     g.Phone,
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Email:     g.Email,
			Link: models.GuestLink{
				InvitationCardURL: "https://cdn.example.com/cards/" + id + ".jpg",
				GuestURL:          "https://site.example.com/guest/" + id,
			},
		})
	}
	if s.rsvpOne && len(invites) == 1 {
		return invites[0]
	}
	return invites
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
