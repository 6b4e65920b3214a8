package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trainerhub/poketrainer/internal"
)

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, email, password string) (*internal.AuthResponse, error) {
	in := map[string]string{"email": email, "password": password}
	var out internal.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/user/login", false, in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		msg := out.Message
		if msg == "" {
			msg = "login response carried no token"
		}
		return nil, &internal.APIError{Method: http.MethodPost, Path: "/user/login", Status: http.StatusUnauthorized, Message: msg}
	}
	return &out, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, reg internal.Registration) (*internal.AuthResponse, error) {
	var out internal.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/user/register", false, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword resets the password using the account's security answer
func (c *Client) ForgotPassword(ctx context.Context, reset internal.PasswordReset) error {
	var out struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/user/forgot-password", false, reset, &out); err != nil {
		return err
	}
	if out.Success != nil && !*out.Success {
		return fmt.Errorf("password reset rejected: %s", out.Message)
	}
	return nil
}

// UserAuth asks the backend whether the current token is a valid session.
// ok is false when the backend answers 2xx with {"ok": false}.
func (c *Client) UserAuth(ctx context.Context) (ok bool, err error) {
	return c.authCheck(ctx, "/auth/user-auth")
}

// AdminAuth asks the backend whether the current token belongs to an admin
func (c *Client) AdminAuth(ctx context.Context) (ok bool, err error) {
	return c.authCheck(ctx, "/auth/admin-auth")
}

func (c *Client) authCheck(ctx context.Context, path string) (bool, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return false, err
	}
	var out struct {
		OK *bool `json:"ok"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil || out.OK == nil {
		// a bare 2xx is an authorization
		return true, nil
	}
	return *out.OK, nil
}
