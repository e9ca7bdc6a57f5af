package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andressep95/estate-admin/internal/domain"
)

const maxResponseBytes = 10 << 20

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidResponse = errors.New("invalid response body")
)

// APIError is a non-2xx answer from the backend. ServerError and
// ServerMessage carry the body's "error" and "message" fields, if any.
type APIError struct {
	StatusCode    int
	ServerError   string
	ServerMessage string
}

func (e *APIError) Error() string {
	if text := e.Text(); text != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, text)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Text returns the most specific human-readable reason in the body.
func (e *APIError) Text() string {
	if e.ServerError != "" {
		return e.ServerError
	}
	return e.ServerMessage
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client talks JSON to the marketplace backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// AdminLogin posts credentials to the admin login endpoint. A parsed body is
// returned for every 2xx answer, including {"success": false}.
func (c *Client) AdminLogin(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/admin/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error   any    `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			if s, ok := envelope.Error.(string); ok {
				apiErr.ServerError = s
			}
			apiErr.ServerMessage = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
