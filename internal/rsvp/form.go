// Package rsvp holds the guest drafts of one RSVP form and submits them as
// a single mutation.
package rsvp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Field names one editable draft field.
type Field string

const (
	FieldTitle     Field = "title"
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldDialCode  Field = "dialCode"
	FieldPhone     Field = "phone"
	FieldEmail     Field = "email"
)

// requiredFields must be non-blank on every draft before submitting.
var requiredFields = []Field{FieldTitle, FieldFirstName, FieldLastName, FieldPhone, FieldEmail}

// Draft is one attendee being entered
type Draft struct {
	ID        string
	Title     string
	FirstName string
	LastName  string
	DialCode  string
	Phone     string
	Email     string
}

func (d *Draft) get(f Field) string {
	switch f {
	case FieldTitle:
		return d.Title
	case FieldFirstName:
		return d.FirstName
	case FieldLastName:
		return d.LastName
	case FieldDialCode:
		return d.DialCode
	case FieldPhone:
		return d.Phone
	case FieldEmail:
		return d.Email
	}
	return ""
}

func (d *Draft) set(f Field, v string) bool {
	switch f {
	case FieldTitle:
		d.Title = v
	case FieldFirstName:
		d.FirstName = v
	case FieldLastName:
		d.LastName = v
	case FieldDialCode:
		d.DialCode = v
	case FieldPhone:
		d.Phone = v
	case FieldEmail:
		d.Email = v
	default:
		return false
	}
	return true
}

// ValidationError lists the blank required fields per draft id.
type ValidationError struct {
	Fields map[string][]Field
}

func (e *ValidationError) Error() string {
	return "Title, name, phone, and email are required for all guests"
}

// Missing reports whether field on draft id was left blank.
func (e *ValidationError) Missing(id string, field Field) bool {
	return slices.Contains(e.Fields[id], field)
}

// Form is the editable list of drafts. The list always holds between one
// and Max drafts.
type Form struct {
	drafts   []Draft
	max      int
	dialCode string
	newID    func() string
}

// NewForm starts a form with one blank draft.
func NewForm(maxGuests int, dialCode string) *Form {
	f := newForm(maxGuests, dialCode)
	f.drafts = []Draft{f.blank()}
	return f
}

// Restore rebuilds a form from drafts posted back by the browser. Drafts
// beyond maxGuests are dropped, blank ids are replaced and an empty list
// gets one blank draft.
func Restore(drafts []Draft, maxGuests int, dialCode string) *Form {
	f := newForm(maxGuests, dialCode)
	seen := make(map[string]bool, len(drafts))
	for _, d := range drafts {
		if len(f.drafts) == f.max {
			break
		}
		if d.ID == "" || seen[d.ID] {
			d.ID = f.newID()
		}
		if d.DialCode == "" {
			d.DialCode = f.dialCode
		}
		seen[d.ID] = true
		f.drafts = append(f.drafts, d)
	}
	if len(f.drafts) == 0 {
		f.drafts = []Draft{f.blank()}
	}
	return f
}

func newForm(maxGuests int, dialCode string) *Form {
	if maxGuests < 1 {
		maxGuests = 1
	}
	return &Form{max: maxGuests, dialCode: dialCode, newID: uuid.NewString}
}

func (f *Form) blank() Draft {
	return Draft{ID: f.newID(), DialCode: f.dialCode}
}

// Drafts returns a copy of the current drafts in order.
func (f *Form) Drafts() []Draft {
	return slices.Clone(f.drafts)
}

func (f *Form) Len() int { return len(f.drafts) }

// Max is the draft cap for this invitation link.
func (f *Form) Max() int { return f.max }

func (f *Form) CanAdd() bool { return len(f.drafts) < f.max }

func (f *Form) CanRemove() bool { return len(f.drafts) > 1 }

// AddGuest appends a blank draft unless the form is full.
func (f *Form) AddGuest() bool {
	if !f.CanAdd() {
		return false
	}
	f.drafts = append(f.drafts, f.blank())
	return true
}

// RemoveGuest drops the draft with id unless it is the last one.
func (f *Form) RemoveGuest(id string) bool {
	if !f.CanRemove() {
		return false
	}
	i := f.index(id)
	if i < 0 {
		return false
	}
	f.drafts = slices.Delete(f.drafts, i, i+1)
	return true
}

// UpdateGuest sets one field of one draft.
func (f *Form) UpdateGuest(id string, field Field, value string) error {
	i := f.index(id)
	if i < 0 {
		return fmt.Errorf("no guest draft %q", id)
	}
	if !f.drafts[i].set(field, value) {
		return fmt.Errorf("unknown guest field %q", field)
	}
	return nil
}

func (f *Form) index(id string) int {
	return slices.IndexFunc(f.drafts, func(d Draft) bool { return d.ID == id })
}

// Validate returns a *ValidationError when any required field is blank.
func (f *Form) Validate() error {
	missing := make(map[string][]Field)
	for i := range f.drafts {
		d := &f.drafts[i]
		for _, field := range requiredFields {
			if strings.TrimSpace(d.get(field)) == "" {
				missing[d.ID] = append(missing[d.ID], field)
			}
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
