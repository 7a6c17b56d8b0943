package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path"

	"wedding-site/internal/rsvp"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"pad2":       func(n int) string { return fmt.Sprintf("%02d", n) },
	"missing":    missingField,
	"qr":         qrURL,
	"pathEscape": url.PathEscape,
}

func missingField(v *rsvp.ValidationError, id, field string) bool {
	return v != nil && v.Missing(id, rsvp.Field(field))
}

func qrURL(data string) string {
	return "/qr?data=" + url.QueryEscape(data)
}

// pages holds one template set per page, each layered over base.html.
type pages struct {
	sets map[string]*template.Template
}

func parsePages() (*pages, error) {
	names, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	p := &pages{sets: make(map[string]*template.Template)}
	for _, e := range names {
		name := e.Name()
		if name == "base.html" {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", path.Join("templates", name))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.sets[name] = t
	}
	return p, nil
}

// render executes page into a buffer first so a template error never
// leaves a half-written response.
func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, ok := s.pages.sets[page]
	if !ok {
		s.log.Error().Str("page", page).Msg("unknown page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		s.log.Error().Err(err).Str("page", page).Str("path", r.URL.Path).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type noticeView struct {
	Title  string
	Notice notice
}

func (s *Site) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "notice.html", noticeView{
		Title:  "Page not found",
		Notice: notice{"404", "Oops! Page not found"},
	})
}
