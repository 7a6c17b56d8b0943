package graphql

import (
	"fmt"
	"strings"
)

// Error is one entry of a GraphQL errors array
type Error struct {
	Message    string     `json:"message"`
	Path       []any      `json:"path,omitempty"`
	Extensions Extensions `json:"extensions"`
}

// Extensions carries the optional machine-readable error code.
type Extensions struct {
	Code string `json:"code,omitempty"`
}

// Errors is a non-empty errors array returned by the server
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// First returns the first error message, the one shown to users.
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// HasCode reports whether any error carries extensions.code == code.
func (e Errors) HasCode(code string) bool {
	for _, err := range e {
		if err.Extensions.Code == code {
			return true
		}
	}
	return false
}

// StatusError is returned for non-2xx responses without a GraphQL envelope
type StatusError struct {
	Operation string
	Code      int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d", e.Operation, e.Code)
}
