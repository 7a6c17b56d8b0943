package handler

import (
	"errors"
	"fmt"

	"wedding-site/internal/api"
	"wedding-site/internal/gate"
	"wedding-site/internal/rsvp"
)

type errorKind int

const (
	kindTransport errorKind = iota
	kindMissingCode
	kindNotFound
	kindInvalidState
	kindValidation
)

// classify maps an error onto what the visitor is told about it.
func classify(err error) errorKind {
	var statusErr *gate.StatusError
	var validationErr *rsvp.ValidationError
	switch {
	case errors.Is(err, gate.ErrMissingCode):
		return kindMissingCode
	case errors.Is(err, api.ErrNotFound):
		return kindNotFound
	case errors.As(err, &statusErr):
		return kindInvalidState
	case errors.As(err, &validationErr):
		return kindValidation
	default:
		return kindTransport
	}
}

// notice is a titled message card.
type notice struct {
	Title   string
	Message string
}

// invalidLink explains why an invitation link cannot be used.
func invalidLink(err error) notice {
	switch classify(err) {
	case kindMissingCode:
		return notice{"Invalid Invitation Link", "Invitation code is missing."}
	case kindNotFound:
		return notice{"Invalid Invitation Link", "This invitation link was not found."}
	case kindInvalidState:
		var statusErr *gate.StatusError
		errors.As(err, &statusErr)
		return notice{"Invalid Invitation Link", fmt.Sprintf("This invitation link is no longer valid (Status: %s).", statusErr.Status)}
	default:
		return notice{"Something went wrong", "Something went wrong while validating your invitation. Please try again later."}
	}
}
