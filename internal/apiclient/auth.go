package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rooms-client/internal/domain"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	mePath       = "/auth/me"
)

// AuthClient maps the /auth endpoints
type AuthClient struct {
	client *Client
}

// NewAuthClient creates an AuthClient on top of c
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{client: c}
}

// Login exchanges credentials for an access token
func (a *AuthClient) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	_, err := a.client.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   loginPath,
		body:   creds,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The response has the same shape as Login.
func (a *AuthClient) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	_, err := a.client.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   registerPath,
		body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the account behind the stored token. A 401 is reported
// as domain.ErrSessionExpired.
func (a *AuthClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	var out domain.User
	_, err := a.client.do(ctx, call{
		op:     "current_user",
		method: http.MethodGet,
		path:   mePath,
		auth:   authRequired,
	}, &out)
	if err != nil {
		if domain.IsStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("current_user: %w", domain.ErrSessionExpired)
		}
		return nil, err
	}
	return &out, nil
}

// VerifyToken reports whether the stored token is still accepted by the API.
// Cancellation is returned as an error, every other failure means "invalid".
func (a *AuthClient) VerifyToken(ctx context.Context) (bool, error) {
	_, err := a.CurrentUser(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, err
	}
	return false, nil
}
