package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks an API payload that is missing required fields.
var ErrMalformed = errors.New("malformed payload")

func malformed(record, field string) error {
	return fmt.Errorf("%w: %s.%s is required", ErrMalformed, record, field)
}

// LinkStatus is the server-side lifecycle state of an invitation link
type LinkStatus string

const (
	LinkUnused     LinkStatus = "UNUSED"
	LinkInProgress LinkStatus = "IN_PROGRESS"
	LinkShared     LinkStatus = "SHARED"
	LinkUsed       LinkStatus = "USED"
	LinkExpired    LinkStatus = "EXPIRED"
)

// AcceptsRSVP reports whether guests may still register on a link with this status.
func (s LinkStatus) AcceptsRSVP() bool {
	switch s {
	case LinkUnused, LinkInProgress, LinkShared:
		return true
	}
	return false
}

// InvitationLink is the remote record controlling one invite code
type InvitationLink struct {
	ID               string     `json:"_id"`
	Code             string     `json:"code"`
	Status           LinkStatus `json:"status"`
	InviteURL        string     `json:"inviteUrl"`
	Type             string     `json:"type"`
	GuestSize        int        `json:"guestSize"`
	GuestPerEntry    int        `json:"guestPerEntry"`
	GuestsRegistered int        `json:"guestsRegistered"`
}

// Validate checks the fields the RSVP flow depends on.
func (l *InvitationLink) Validate() error {
	if l.ID == "" {
		return malformed("invitationLink", "_id")
	}
	if l.Status == "" {
		return malformed("invitationLink", "status")
	}
	if l.GuestPerEntry < 0 {
		return fmt.Errorf("%w: invitationLink.guestPerEntry is negative", ErrMalformed)
	}
	return nil
}

// MaxGuests returns the draft cap for this link, or fallback when the server sent none.
func (l *InvitationLink) MaxGuests(fallback int) int {
	if l == nil || l.GuestPerEntry <= 0 {
		return fallback
	}
	return l.GuestPerEntry
}

// GuestLink holds the per-guest artifacts generated by the API
type GuestLink struct {
	InvitationCardURL string `json:"invitationCardUrl"`
	GuestURL          string `json:"guestUrl"`
}

func (l GuestLink) validate(record string) error {
	if l.InvitationCardURL == "" {
		return malformed(record, "link.invitationCardUrl")
	}
	if l.GuestURL == "" {
		return malformed(record, "link.guestUrl")
	}
	return nil
}

// Guest is the profile returned for a guest code
type Guest struct {
	Title     string    `json:"title"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Link      GuestLink `json:"link"`
}

// Validate rejects profiles without a usable invitation card.
func (g *Guest) Validate() error {
	return g.Link.validate("guest")
}

// DisplayName joins the non-empty name parts.
func (g *Guest) DisplayName() string {
	return strings.Join(strings.Fields(g.Title+" "+g.FirstName+" "+g.LastName), " ")
}

// SubmittedInvite is one guest record returned by the rsvp mutation
type SubmittedInvite struct {
	ID        string    `json:"_id"`
	Phone     string    `json:"phone"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Link      GuestLink `json:"link"`
}

func (s *SubmittedInvite) Validate() error {
	return s.Link.validate("rsvp")
}

// DisplayName returns "First Last".
func (s *SubmittedInvite) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// GuestInput is the normalised guest payload sent with the rsvp mutation
type GuestInput struct {
	Title     string `json:"title"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}
