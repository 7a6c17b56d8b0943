package storage

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	cookieMaxAge = 365 * 24 * time.Hour
	// VisitorCookie carries the id that scopes server-side drivers.
	VisitorCookie = "wsv"
)

// CookieJar is a KV backed by the browser's cookies for one request.
// Writes are visible to later reads in the same request.
type CookieJar struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool

	mu      sync.Mutex
	pending map[string]string
}

// NewCookieJar binds a jar to a request/response pair. Keys and values must
// already be cookie-safe; callers encode them.
func NewCookieJar(w http.ResponseWriter, r *http.Request, secure bool) *CookieJar {
	return &CookieJar{w: w, r: r, secure: secure, pending: make(map[string]string)}
}

func (j *CookieJar) Get(_ context.Context, key string) (string, bool, error) {
	j.mu.Lock()
	v, ok := j.pending[key]
	j.mu.Unlock()
	if ok {
		return v, true, nil
	}

	c, err := j.r.Cookie(key)
	if err != nil {
		return "", false, nil
	}
	return c.Value, true, nil
}

func (j *CookieJar) Set(_ context.Context, key, value string) error {
	j.mu.Lock()
	j.pending[key] = value
	j.mu.Unlock()

	http.SetCookie(j.w, persistentCookie(key, value, j.secure))
	return nil
}

func persistentCookie(name, value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// VisitorID returns the visitor id cookie, issuing a fresh uuid when the
// request has none or carries a malformed one.
func VisitorID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, persistentCookie(VisitorCookie, id, secure))
	return id
}

// ForRequest picks the KV a request should use: the visitor's slice of store
// when a shared store is configured, otherwise the browser's cookies.
func ForRequest(store Store, w http.ResponseWriter, r *http.Request, secure bool) KV {
	if store == nil {
		return NewCookieJar(w, r, secure)
	}
	return Scope(store, VisitorID(w, r, secure))
}
