// Package gate decides whether an invite code may open the RSVP form.
// It fails closed: anything short of a known, accepting status hides RSVP.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"wedding-site/internal/models"
)

// ErrMissingCode is the reason given when no code was supplied.
var ErrMissingCode = errors.New("missing invite code")

// StatusError reports a link that exists but no longer accepts RSVPs.
type StatusError struct {
	Status models.LinkStatus
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invitation link is %s", e.Status)
}

// LinkFetcher is the slice of the API client the gate needs.
type LinkFetcher interface {
	InvitationLink(ctx context.Context, code string) (*models.InvitationLink, error)
}

// Phase distinguishes an in-flight check from a finished one.
type Phase int

const (
	Unknown Phase = iota
	Resolved
)

// Result is the outcome of one check. The zero value is an unfinished check.
type Result struct {
	Phase  Phase
	Code   string
	Status *models.LinkStatus
	Link   *models.InvitationLink
	// Err is why RSVP is hidden; nil when it is shown.
	Err error
}

// ShowRSVP is true only once the check has finished with an accepting status.
func (r Result) ShowRSVP() bool {
	return r.Phase == Resolved && r.Status != nil && r.Status.AcceptsRSVP()
}

// Gate checks invitation links against the API
type Gate struct {
	links LinkFetcher
	log   zerolog.Logger
}

func New(links LinkFetcher, log zerolog.Logger) *Gate {
	return &Gate{
		links: links,
		log:   log.With().Str("component", "gate").Logger(),
	}
}

// Check issues one invitationLink query for code. Failures are logged and
// folded into the result; Check itself never errors.
func (g *Gate) Check(ctx context.Context, code string) Result {
	res := Result{Phase: Resolved, Code: code}
	if code == "" {
		res.Err = ErrMissingCode
		return res
	}

	link, err := g.links.InvitationLink(ctx, code)
	if err != nil {
		g.log.Warn().Err(err).Str("code", code).Msg("invitation status lookup failed")
		res.Err = err
		return res
	}

	status := link.Status
	res.Status = &status
	res.Link = link
	if !status.AcceptsRSVP() {
		g.log.Info().Str("code", code).Str("status", string(status)).Msg("invitation no longer accepts RSVPs")
		res.Err = &StatusError{Status: status}
	}
	return res
}
