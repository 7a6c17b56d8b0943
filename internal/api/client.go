// Package api is the typed client for the wedding GraphQL API. Every payload
// is validated here so callers only ever see complete records.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wedding-site/internal/graphql"
	"wedding-site/internal/models"
)

// ErrNotFound is returned when the API has no record for a code.
var ErrNotFound = errors.New("not found")

// notFoundCode is the extensions.code the API uses for missing records.
const notFoundCode = "NOT_FOUND"

// Client wraps a GraphQL client with the wedding API operations
type Client struct {
	gql *graphql.Client
}

// New creates a client for endpoint with the given request timeout.
func New(endpoint string, timeout time.Duration) *Client {
	return NewWithDoer(endpoint, &http.Client{Timeout: timeout})
}

// NewWithDoer lets tests and callers supply their own HTTP transport.
func NewWithDoer(endpoint string, doer graphql.Doer) *Client {
	return &Client{gql: graphql.NewClient(endpoint, doer)}
}

func codeInput(code string) map[string]any {
	return map[string]any{"input": map[string]any{"code": code}}
}

func (c *Client) do(ctx context.Context, op graphql.Operation, vars map[string]any, out any) error {
	err := c.gql.Do(ctx, op, vars, out)
	var gqlErrs graphql.Errors
	if errors.As(err, &gqlErrs) && gqlErrs.HasCode(notFoundCode) {
		return fmt.Errorf("%s: %w", op.Name, ErrNotFound)
	}
	return err
}

// InvitationLink fetches the invitation link for code.
func (c *Client) InvitationLink(ctx context.Context, code string) (*models.InvitationLink, error) {
	var data struct {
		InvitationLink *models.InvitationLink `json:"invitationLink"`
	}
	if err := c.do(ctx, invitationLinkOp, codeInput(code), &data); err != nil {
		return nil, err
	}
	if data.InvitationLink == nil {
		return nil, fmt.Errorf("invitation link %q: %w", code, ErrNotFound)
	}
	if err := data.InvitationLink.Validate(); err != nil {
		return nil, err
	}
	return data.InvitationLink, nil
}

// Guest fetches the guest profile for code.
func (c *Client) Guest(ctx context.Context, code string) (*models.Guest, error) {
	var data struct {
		Guest *models.Guest `json:"guest"`
	}
	if err := c.do(ctx, guestOp, codeInput(code), &data); err != nil {
		return nil, err
	}
	if data.Guest == nil {
		return nil, fmt.Errorf("guest %q: %w", code, ErrNotFound)
	}
	if err := data.Guest.Validate(); err != nil {
		return nil, err
	}
	return data.Guest, nil
}

// GalleryFiles fetches one page of media for code.
// Missing limit or page in the response fall back to the requested values.
func (c *Client) GalleryFiles(ctx context.Context, code string, limit, page int) (*models.GalleryPage, error) {
	vars := codeInput(code)
	vars["limit"] = limit
	vars["page"] = page

	var data struct {
		GalleryFiles *models.GalleryPage `json:"galleryFiles"`
	}
	if err := c.do(ctx, galleryFilesOp, vars, &data); err != nil {
		return nil, err
	}
	if data.GalleryFiles == nil {
		return &models.GalleryPage{Limit: limit, Page: page}, nil
	}
	gp := data.GalleryFiles
	if err := gp.Validate(); err != nil {
		return nil, err
	}
	if gp.Limit <= 0 {
		gp.Limit = limit
	}
	if gp.Page <= 0 {
		gp.Page = page
	}
	return gp, nil
}

// RSVP registers guests on the invitation link and returns one invite per guest.
// The API answers with either a single object or an array; both are normalised to a slice.
func (c *Client) RSVP(ctx context.Context, invitationLinkID string, guests []models.GuestInput) ([]models.SubmittedInvite, error) {
	vars := map[string]any{
		"input": map[string]any{
			"guests":           guests,
			"invitationLinkId": invitationLinkID,
		},
	}
	var data struct {
		RSVP json.RawMessage `json:"rsvp"`
	}
	if err := c.do(ctx, rsvpOp, vars, &data); err != nil {
		return nil, err
	}

	invites, err := decodeOneOrMany(data.RSVP)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rsvp: %w", err)
	}
	if len(invites) == 0 {
		return nil, fmt.Errorf("%w: rsvp returned no guests", models.ErrMalformed)
	}
	for i := range invites {
		if err := invites[i].Validate(); err != nil {
			return nil, err
		}
	}
	return invites, nil
}

func decodeOneOrMany(raw json.RawMessage) ([]models.SubmittedInvite, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var many []models.SubmittedInvite
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one models.SubmittedInvite
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []models.SubmittedInvite{one}, nil
}
