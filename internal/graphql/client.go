// Package graphql sends GraphQL operations over HTTP POST and decodes the
// standard {data, errors} envelope.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// Operation is a parsed, named GraphQL document.
type Operation struct {
	Name  string
	Query string
}

// MustParse parses query and panics when it is not a single named operation.
// Intended for package-level query constants.
func MustParse(query string) Operation {
	op, err := Parse(query)
	if err != nil {
		panic(err)
	}
	return op
}

// Parse validates query syntax and extracts the operation name.
func Parse(query string) (Operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "operation", Input: query})
	if err != nil {
		return Operation{}, fmt.Errorf("parse graphql document: %w", err)
	}
	if len(doc.Operations) != 1 {
		return Operation{}, fmt.Errorf("graphql document must hold exactly one operation, got %d", len(doc.Operations))
	}
	name := doc.Operations[0].Name
	if name == "" {
		return Operation{}, fmt.Errorf("graphql operation must be named")
	}
	return Operation{Name: name, Query: strings.TrimSpace(query)}, nil
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

// Doer is the subset of *http.Client used by Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client posts operations to one endpoint
type Client struct {
	endpoint string
	http     Doer
}

// NewClient creates a client for endpoint. A nil doer uses http.DefaultClient.
func NewClient(endpoint string, doer Doer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: doer}
}

// Do runs op with vars and decodes the data member into out.
// A response carrying an errors array is returned as Errors even when data is present.
func (c *Client) Do(ctx context.Context, op Operation, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: op.Query, OperationName: op.Name, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op.Name, err)
	}

	var envelope response
	decodeErr := json.Unmarshal(raw, &envelope)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Some servers answer validation failures with 400 and a regular envelope.
		if decodeErr == nil && len(envelope.Errors) > 0 {
			return envelope.Errors
		}
		return &StatusError{Operation: op.Name, Code: resp.StatusCode}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode %s response: %w", op.Name, decodeErr)
	}
	if len(envelope.Errors) > 0 {
		return envelope.Errors
	}
	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", op.Name, err)
	}
	return nil
}
