// Package apiclient talks to the CRM HTTP API and maps its responses back
// onto the models error taxonomy. It never retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

const DefaultTimeout = 15 * time.Second

type Client struct {
	base string
	http *http.Client
}

// New returns a client for baseURL, e.g. http://localhost:3000/api.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

type errorBody struct {
	Error            string `json:"error"`
	CurrentRevision  *int64 `json:"currentRevision"`
	ExpectedRevision *int64 `json:"expectedRevision"`
}

// target names the resource a request addresses, for NotFoundError.
type target struct {
	kind string
	id   string
}

func seg(s string) string { return url.PathEscape(s) }

func (c *Client) do(ctx context.Context, method, path string, in, out any, t target) (int, error) {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &models.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &models.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, statusError(op, resp.StatusCode, raw, t)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, &models.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return resp.StatusCode, nil
}

func statusError(op string, code int, raw []byte, t target) error {
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := strings.TrimSpace(eb.Error)
	if msg == "" {
		msg = http.StatusText(code)
	}

	switch {
	case code == http.StatusBadRequest:
		field, text, ok := strings.Cut(msg, ": ")
		if !ok {
			field, text = "request", msg
		}
		return models.Invalid(field, text)
	case code == http.StatusNotFound:
		return models.NotFound(t.kind, t.id)
	case code == http.StatusConflict:
		ce := &models.ConflictError{}
		if eb.CurrentRevision != nil {
			ce.CurrentRevision = *eb.CurrentRevision
		}
		if eb.ExpectedRevision != nil {
			ce.ExpectedRevision = *eb.ExpectedRevision
		}
		return ce
	case code >= 500:
		return &models.TransportError{Op: op, Err: fmt.Errorf("status %d: %s", code, msg)}
	}
	return fmt.Errorf("%s: status %d: %s", op, code, msg)
}
