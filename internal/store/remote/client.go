// Package remote is the note store backed by the notes HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/marcus/noteshelf/internal/note"
)

// Client is the HTTP wrapper for the notes REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ note.Store = (*Client)(nil)

// NewClient creates a client for baseURL authenticating with token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// ListCategories fetches GET /categories/.
func (c *Client) ListCategories(ctx context.Context) ([]note.Category, error) {
	var cats []note.Category
	if err := c.do(ctx, http.MethodGet, "/categories/", nil, http.StatusOK, &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	note.SortCategories(cats)
	return cats, nil
}

// ListNotes fetches GET /notes/ with an optional category filter.
func (c *Client) ListNotes(ctx context.Context, categoryID string) ([]note.Summary, error) {
	path := "/notes/"
	if categoryID != "" {
		path += "?" + url.Values{"categoryId": {categoryID}}.Encode()
	}
	var out []note.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastEditedAt.Equal(out[j].LastEditedAt) {
			return out[i].LastEditedAt.After(out[j].LastEditedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetNote fetches GET /notes/{id}/.
func (c *Client) GetNote(ctx context.Context, id string) (*note.Note, error) {
	var n note.Note
	if err := c.do(ctx, http.MethodGet, notePath(id), nil, http.StatusOK, &n); err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &n, nil
}

// CreateNote posts to /notes/.
func (c *Client) CreateNote(ctx context.Context, in note.NewNote) (*note.Note, error) {
	var n note.Note
	if err := c.do(ctx, http.MethodPost, "/notes/", in, http.StatusCreated, &n); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return &n, nil
}

// UpdateNote patches /notes/{id}/ with the non-nil patch fields.
func (c *Client) UpdateNote(ctx context.Context, id string, patch note.Patch) (*note.Note, error) {
	var n note.Note
	if err := c.do(ctx, http.MethodPatch, notePath(id), patch, http.StatusOK, &n); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return &n, nil
}

func notePath(id string) string {
	return "/notes/" + url.PathEscape(id) + "/"
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, note.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return statusError(resp.StatusCode, raw)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, note.ErrNetwork)
	}
	return nil
}

// statusError maps an unexpected HTTP status onto the note error kinds.
func statusError(code int, raw []byte) error {
	switch {
	case code == http.StatusBadRequest:
		return parseValidation(raw)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("status %d: %s: %w", code, detail(raw), note.ErrAuth)
	case code == http.StatusNotFound:
		return fmt.Errorf("status %d: %w", code, note.ErrNotFound)
	case code >= 500:
		return fmt.Errorf("status %d: %w", code, note.ErrNetwork)
	default:
		return fmt.Errorf("unexpected status %d: %s", code, strings.TrimSpace(string(raw)))
	}
}

// parseValidation reads a {"field": ["message", ...]} body. The first
// field in name order is reported; non_field_errors has no field.
func parseValidation(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return &note.ValidationError{Message: strings.TrimSpace(string(raw))}
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	name := names[0]
	var msgs []string
	if err := json.Unmarshal(fields[name], &msgs); err != nil || len(msgs) == 0 {
		var one string
		_ = json.Unmarshal(fields[name], &one)
		msgs = []string{one}
	}
	if name == "non_field_errors" || name == "detail" {
		name = ""
	}
	return &note.ValidationError{Field: name, Message: strings.Join(msgs, " ")}
}

func detail(raw []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return http.StatusText(http.StatusUnauthorized)
}
