package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"wedding-site/internal/gate"
	"wedding-site/internal/graphql"
	"wedding-site/internal/invite"
	"wedding-site/internal/models"
	"wedding-site/internal/rsvp"
)

type dialCode struct {
	Country string
	Code    string
}

// dialCodes offered by the phone field; the configured default is added when missing.
var dialCodes = []dialCode{
	{"NG", "+234"},
	{"GH", "+233"},
	{"KE", "+254"},
	{"ZA", "+27"},
	{"GB", "+44"},
	{"IE", "+353"},
	{"US", "+1"},
	{"DE", "+49"},
	{"FR", "+33"},
	{"AE", "+971"},
}

var titles = []string{"Mr", "Mrs", "Miss", "Ms", "Dr", "Prof", "Chief", "Engr", "Rev"}

type inviteView struct {
	Name        string
	CardURL     string
	GuestURL    string
	DownloadURL string
}

type rsvpView struct {
	Title string
	Code  string
	Event *models.Event

	Drafts    []rsvp.Draft
	Max       int
	CanAdd    bool
	CanRemove bool
	DialCodes []dialCode
	Titles    []string

	Validation *rsvp.ValidationError
	Error      string

	Invites []inviteView
}

func (s *Site) newRSVPView(code string, form *rsvp.Form) rsvpView {
	codes := dialCodes
	found := false
	for _, c := range codes {
		if c.Code == s.cfg.DefaultDialCode {
			found = true
			break
		}
	}
	if !found {
		codes = append([]dialCode{{"", s.cfg.DefaultDialCode}}, codes...)
	}
	return rsvpView{
		Title:     "RSVP",
		Code:      code,
		Event:     s.cfg.Event,
		Drafts:    form.Drafts(),
		Max:       form.Max(),
		CanAdd:    form.CanAdd(),
		CanRemove: form.CanRemove(),
		DialCodes: codes,
		Titles:    titles,
	}
}

// statusFor picks the response code for an unusable invitation.
func statusFor(err error) int {
	switch classify(err) {
	case kindMissingCode:
		return http.StatusBadRequest
	case kindNotFound:
		return http.StatusNotFound
	case kindInvalidState:
		return http.StatusGone
	default:
		return http.StatusBadGateway
	}
}

func (s *Site) renderInvalid(w http.ResponseWriter, r *http.Request, err error) {
	n := invalidLink(err)
	s.render(w, r, statusFor(err), "notice.html", noticeView{Title: n.Title, Notice: n})
}

// checkLink runs the status gate for the code in the path. It renders the
// invalid-link card and returns false when RSVP is not allowed.
func (s *Site) checkLink(w http.ResponseWriter, r *http.Request) (gate.Result, bool) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	res := s.gate.Check(r.Context(), code)
	if !res.ShowRSVP() {
		s.renderInvalid(w, r, res.Err)
		return res, false
	}
	s.remember(r.Context(), s.resolver(w, r), code)
	return res, true
}

func (s *Site) maxGuests(link *models.InvitationLink) int {
	return link.MaxGuests(s.cfg.DefaultMaxGuests)
}

func (s *Site) handleRSVP(w http.ResponseWriter, r *http.Request) {
	check, ok := s.checkLink(w, r)
	if !ok {
		return
	}
	form := rsvp.NewForm(s.maxGuests(check.Link), s.cfg.DefaultDialCode)
	s.render(w, r, http.StatusOK, "rsvp.html", s.newRSVPView(check.Code, form))
}

// handleRSVPPost applies one form action: add, remove:<id> or submit.
// Drafts travel in the form as parallel field lists.
func (s *Site) handleRSVPPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	check, ok := s.checkLink(w, r)
	if !ok {
		return
	}

	form := rsvp.Restore(draftsFromForm(r.PostForm), s.maxGuests(check.Link), s.cfg.DefaultDialCode)
	action := r.PostForm.Get("action")
	switch {
	case action == "add":
		form.AddGuest()
	case strings.HasPrefix(action, "remove:"):
		form.RemoveGuest(strings.TrimPrefix(action, "remove:"))
	case action == "submit":
		s.submitRSVP(w, r, check, form)
		return
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	s.render(w, r, http.StatusOK, "rsvp.html", s.newRSVPView(check.Code, form))
}

func (s *Site) submitRSVP(w http.ResponseWriter, r *http.Request, check gate.Result, form *rsvp.Form) {
	ctx := r.Context()
	view := s.newRSVPView(check.Code, form)

	invites, err := rsvp.NewSubmission(form, check.Link.ID).Submit(ctx, s.api)
	if err != nil {
		var validationErr *rsvp.ValidationError
		var submitErr *rsvp.SubmitError
		status := http.StatusBadGateway
		switch {
		case errors.As(err, &validationErr):
			view.Validation = validationErr
			view.Error = "Please fill in all required fields. " + validationErr.Error() + "."
			status = http.StatusUnprocessableEntity
		case errors.As(err, &submitErr):
			view.Error = submitErr.Message
			var gqlErrs graphql.Errors
			if errors.As(err, &gqlErrs) {
				status = http.StatusUnprocessableEntity
			}
			s.log.Warn().Err(err).Str("code", check.Code).Msg("rsvp submission failed")
		default:
			view.Error = "Please try again later"
			s.log.Error().Err(err).Str("code", check.Code).Msg("rsvp submission failed")
		}
		s.render(w, r, status, "rsvp.html", view)
		return
	}

	if err := s.resolver(w, r).MarkSubmitted(ctx, check.Code); err != nil {
		s.log.Warn().Err(err).Str("code", check.Code).Msg("could not record rsvp marker")
	}
	s.log.Info().Str("code", check.Code).Int("guests", len(invites)).Msg("rsvp submitted")
	s.notify.DeliverAsync(ctx, invites)

	view.Title = "RSVP Submitted"
	view.Invites = make([]inviteView, 0, len(invites))
	for _, inv := range invites {
		view.Invites = append(view.Invites, inviteView{
			Name:        inv.DisplayName(),
			CardURL:     inv.Link.InvitationCardURL,
			GuestURL:    inv.Link.GuestURL,
			DownloadURL: downloadURL(inv.Link),
		})
	}
	s.render(w, r, http.StatusOK, "rsvp.html", view)
}

// downloadURL routes card downloads through this site when the guest link
// carries a guest code, so the file arrives as an attachment.
func downloadURL(link models.GuestLink) string {
	u, err := url.Parse(link.GuestURL)
	if err == nil {
		if code, src := invite.FromURL(u); src == invite.SourcePath {
			return "/guest/" + url.PathEscape(code) + "/card"
		}
	}
	return link.InvitationCardURL
}

func draftsFromForm(form url.Values) []rsvp.Draft {
	ids := form["id"]
	at := func(field string, i int) string {
		vals := form[field]
		if i < len(vals) {
			return vals[i]
		}
		return ""
	}
	drafts := make([]rsvp.Draft, 0, len(ids))
	for i, id := range ids {
		drafts = append(drafts, rsvp.Draft{
			ID:        id,
			Title:     at(string(rsvp.FieldTitle), i),
			FirstName: at(string(rsvp.FieldFirstName), i),
			LastName:  at(string(rsvp.FieldLastName), i),
			DialCode:  at(string(rsvp.FieldDialCode), i),
			Phone:     at(string(rsvp.FieldPhone), i),
			Email:     at(string(rsvp.FieldEmail), i),
		})
	}
	return drafts
}
