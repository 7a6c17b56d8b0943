// Package invite finds the invite code a visitor arrived with and remembers,
// per code, whether that invitation has already been answered.
package invite

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"wedding-site/internal/storage"
)

// Source records where a code was found.
type Source int

const (
	SourceNone Source = iota
	SourcePath
	SourceGuestQuery
	SourceInviteQuery
	SourceRemembered
)

func (s Source) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceGuestQuery:
		return "guest-query"
	case SourceInviteQuery:
		return "invite-query"
	case SourceRemembered:
		return "remembered"
	default:
		return "none"
	}
}

// routes whose second path segment is a code
var codeRoutes = []string{"guest", "rsvp"}

// FromURL extracts the code from /guest/{code} or /rsvp/{code}, then from
// ?guest= and finally ?invite=. It reads u only, so repeated calls agree.
func FromURL(u *url.URL) (string, Source) {
	if u == nil {
		return "", SourceNone
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) >= 2 {
		for _, r := range codeRoutes {
			if segs[0] == r {
				if code := strings.TrimSpace(segs[1]); code != "" {
					return code, SourcePath
				}
			}
		}
	}

	q := u.Query()
	if code := strings.TrimSpace(q.Get("guest")); code != "" {
		return code, SourceGuestQuery
	}
	if code := strings.TrimSpace(q.Get("invite")); code != "" {
		return code, SourceInviteQuery
	}
	return "", SourceNone
}

// Redirect is the canonical location for a landing URL carrying a code in
// its query string. Remember is set when the code should be stored first.
type Redirect struct {
	Location string
	Remember string
}

// Canonical reports where a landing request should be sent instead of being
// rendered. ?guest=X goes to the guest page; ?invite=X is remembered and the
// query is dropped.
func Canonical(u *url.URL) (Redirect, bool) {
	code, src := FromURL(u)
	switch src {
	case SourceGuestQuery:
		return Redirect{Location: "/guest/" + url.PathEscape(code)}, true
	case SourceInviteQuery:
		return Redirect{Location: "/", Remember: code}, true
	default:
		return Redirect{}, false
	}
}

// Keys are stored encoded so cookie drivers can hold them verbatim.
var (
	lastCodeKey  = encode("wedding.lastInviteCode")
	submittedKey = encode("wedding.rsvpSubmittedFor")
)

// encode is a reversible text transform for cookie-safe storage. It hides nothing.
func encode(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func decode(s string) (string, bool) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// State is what a screen learns about its visitor's invitation.
type State struct {
	Code             string
	Source           Source
	AlreadySubmitted bool
}

// HasCode reports whether any code was found.
func (s State) HasCode() bool { return s.Code != "" }

// Resolver reads and writes the per-visitor invite markers
type Resolver struct {
	kv storage.KV
}

func NewResolver(kv storage.KV) *Resolver {
	return &Resolver{kv: kv}
}

// Resolve finds the code in u, falling back to the last remembered one. A
// code found in the URL becomes the remembered code.
func (r *Resolver) Resolve(ctx context.Context, u *url.URL) (State, error) {
	code, src := FromURL(u)
	if code != "" {
		if err := r.Remember(ctx, code); err != nil {
			return State{}, err
		}
	} else {
		last, err := r.LastCode(ctx)
		if err != nil {
			return State{}, err
		}
		if last != "" {
			code, src = last, SourceRemembered
		}
	}
	if code == "" {
		return State{Source: SourceNone}, nil
	}

	done, err := r.AlreadySubmitted(ctx, code)
	if err != nil {
		return State{}, err
	}
	return State{Code: code, Source: src, AlreadySubmitted: done}, nil
}

// Remember stores code as the visitor's last seen invite.
func (r *Resolver) Remember(ctx context.Context, code string) error {
	if err := r.kv.Set(ctx, lastCodeKey, encode(code)); err != nil {
		return fmt.Errorf("remember invite code: %w", err)
	}
	return nil
}

// LastCode returns the remembered code, or "" when there is none or the
// stored value no longer decodes.
func (r *Resolver) LastCode(ctx context.Context) (string, error) {
	return r.read(ctx, lastCodeKey)
}

// MarkSubmitted records that the RSVP for code has been completed.
func (r *Resolver) MarkSubmitted(ctx context.Context, code string) error {
	if code == "" {
		return nil
	}
	if err := r.kv.Set(ctx, submittedKey, encode(code)); err != nil {
		return fmt.Errorf("mark invite submitted: %w", err)
	}
	return nil
}

// AlreadySubmitted is true only when the stored marker names exactly code.
func (r *Resolver) AlreadySubmitted(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	stored, err := r.read(ctx, submittedKey)
	if err != nil {
		return false, err
	}
	return stored == code, nil
}

func (r *Resolver) read(ctx context.Context, key string) (string, error) {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read invite state: %w", err)
	}
	if !ok {
		return "", nil
	}
	v, ok := decode(raw)
	if !ok {
		return "", nil
	}
	return v, nil
}
