package rsvp

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wedding-site/internal/graphql"
	"wedding-site/internal/models"
)

// ErrSubmitted is returned when a form that already succeeded is submitted again.
var ErrSubmitted = errors.New("rsvp already submitted")

const retryLater = "Please try again later"

// SubmitError carries the message shown to the guest for a failed submission.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return "submit rsvp: " + e.Message }
func (e *SubmitError) Unwrap() error { return e.Err }

// Submitter sends the rsvp mutation.
type Submitter interface {
	RSVP(ctx context.Context, invitationLinkID string, guests []models.GuestInput) ([]models.SubmittedInvite, error)
}

// Normalize converts drafts into the mutation payload: names title-cased,
// phone joined as "<dial>-<number>".
func Normalize(drafts []Draft) []models.GuestInput {
	title := cases.Title(language.English)
	out := make([]models.GuestInput, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, models.GuestInput{
			Title:     titleCase(title, d.Title),
			FirstName: titleCase(title, d.FirstName),
			LastName:  titleCase(title, d.LastName),
			Phone:     strings.TrimSpace(d.DialCode) + "-" + strings.TrimSpace(d.Phone),
			Email:     strings.TrimSpace(d.Email),
		})
	}
	return out
}

// titleCase capitalises every word, including the part after an apostrophe
// (o'brien -> O'Brien), which cases.Title leaves lower-case.
func titleCase(c cases.Caser, s string) string {
	runes := []rune(c.String(strings.TrimSpace(s)))
	for i := 1; i < len(runes); i++ {
		if runes[i-1] == '\'' || runes[i-1] == '’' {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}

// Submission moves a form from editing to submitted. Once Invites is set it
// never goes back.
type Submission struct {
	Form    *Form
	LinkID  string
	invites []models.SubmittedInvite
}

func NewSubmission(form *Form, linkID string) *Submission {
	return &Submission{Form: form, LinkID: linkID}
}

// Submitted reports whether the submission has succeeded.
func (s *Submission) Submitted() bool { return s.invites != nil }

// Invites returns the server's invites after a successful Submit.
func (s *Submission) Invites() []models.SubmittedInvite { return s.invites }

// Submit validates the drafts and, only if they pass, sends one mutation.
// Validation failures come back as *ValidationError, remote failures as
// *SubmitError.
func (s *Submission) Submit(ctx context.Context, api Submitter) ([]models.SubmittedInvite, error) {
	if s.Submitted() {
		return s.invites, ErrSubmitted
	}
	if err := s.Form.Validate(); err != nil {
		return nil, err
	}

	invites, err := api.RSVP(ctx, s.LinkID, Normalize(s.Form.Drafts()))
	if err != nil {
		return nil, &SubmitError{Message: userMessage(err), Err: err}
	}
	s.invites = invites
	return invites, nil
}

// userMessage keeps server-reported messages and hides everything else.
func userMessage(err error) string {
	var gqlErrs graphql.Errors
	if errors.As(err, &gqlErrs) {
		if msg := gqlErrs.First(); msg != "" {
			return msg
		}
	}
	return retryLater
}
