// Package api is the REST client for the trainer platform backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trainerhub/poketrainer/internal"
)

var log = internal.Component("api")

// TokenSource supplies the bearer token for authenticated calls.
// An empty token means no session.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource returning a fixed token
type StaticToken string

// Token returns the token itself
func (s StaticToken) Token() string { return string(s) }

// Client talks to the backend REST API
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one API call
type request struct {
	method      string
	path        string
	auth        bool
	body        io.Reader
	contentType string
}

// response is a fully read 2xx response
type response struct {
	body        []byte
	contentType string
}

func (c *Client) do(ctx context.Context, req request) (*response, error) {
	token := ""
	if req.auth {
		token = c.tokens.Token()
		if token == "" {
			return nil, internal.ErrLoginRequired
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request %s %s: %w", req.method, req.path, err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", req.method, req.path, err)
	}
	log.Debug("%s %s -> %d (%s, %d bytes)", req.method, req.path, resp.StatusCode, time.Since(start).Round(time.Millisecond), len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &internal.APIError{
			Method:  req.method,
			Path:    req.path,
			Status:  resp.StatusCode,
			Message: errorMessage(body),
		}
	}
	return &response{body: body, contentType: resp.Header.Get("Content-Type")}, nil
}

// doJSON sends in (when non-nil) as JSON and decodes the reply into out (when non-nil)
func (c *Client) doJSON(ctx context.Context, method, path string, auth bool, in, out interface{}) error {
	req := request{method: method, path: path, auth: auth}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts the "message" or "error" field of an error body
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 {
			text = text[:200]
		}
		return text
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// decodeList accepts either a bare JSON array or an object wrapping one,
// e.g. {"success":true,"cards":[...]}.
func decodeList[T any](body []byte, out *[]T) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		*out = nil
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	for _, key := range []string{"data", "items", "users", "pokemons", "listings"} {
		if raw, ok := wrapper[key]; ok {
			return json.Unmarshal(raw, out)
		}
	}
	for _, raw := range wrapper {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			return json.Unmarshal(raw, out)
		}
	}
	*out = nil
	return nil
}

// getList GETs path and decodes a list reply
func getList[T any](ctx context.Context, c *Client, path string, auth bool) ([]T, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: auth})
	if err != nil {
		return nil, err
	}
	var items []T
	if err := decodeList(resp.body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode response of GET %s: %w", path, err)
	}
	return items, nil
}

// Ping reports whether the backend answers HTTP at all. Any status counts as an answer.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/"})
	if _, ok := internal.AsAPIError(err); ok {
		return nil
	}
	return err
}
