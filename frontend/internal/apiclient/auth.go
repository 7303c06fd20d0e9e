package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/portal-dev/portal/shared/api"
)

// Ping calls the connectivity probe and returns its text.
func (c *APIClient) Ping(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, nil, "GET", "/auth/test", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("cannot read probe response: %w", err)
	}
	return string(body), nil
}

// Login returns the decoded envelope. success=false is not an error at this level.
func (c *APIClient) Login(ctx context.Context, email, password string) (api.AuthResponse, error) {
	var out api.AuthResponse
	err := c.call(ctx, nil, "POST", "/auth/login", api.LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *APIClient) Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error) {
	var out api.AuthResponse
	err := c.call(ctx, nil, "POST", "/auth/register", req, &out)
	return out, err
}
