package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portal-dev/portal/frontend/internal/session"
	"github.com/portal-dev/portal/shared/api"
	"github.com/portal-dev/portal/shared/logger"
)

// ErrUnreachable wraps every transport failure: the request never got an HTTP answer.
var ErrUnreachable = errors.New("backend unreachable")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed token, "" for anonymous calls.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type storeTokens struct{ store session.Store }

func (s storeTokens) Token() string { return session.Token(s.store) }

// FromStore reads the token from the session store at call time.
func FromStore(s session.Store) TokenSource {
	return storeTokens{store: s}
}

// APIClient struct handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client for baseURL. A zero timeout keeps the transport default.
func New(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: timeout},
	}
}

// do is the single, unified helper for making API requests.
func (c *APIClient) do(ctx context.Context, tokens TokenSource, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tokens != nil {
		req.Header.Set("Authorization", "Bearer "+tokens.Token())
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		logger.Log.Debug("backend request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return resp, nil
}

// call performs the request and decodes a 2xx JSON body into out (nil skips decoding).
func (c *APIClient) call(ctx context.Context, tokens TokenSource, method, path string, in, out any) error {
	resp, err := c.do(ctx, tokens, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode %s %s response: %w", method, path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope api.ErrorResponse
	if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
		se.Message = envelope.Message
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}
