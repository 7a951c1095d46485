package graphistry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingCredentials is returned when a login is attempted without a
// username or password.
var ErrMissingCredentials = errors.New("graphistry username and password are required")

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a JWT and keeps it for later requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, nil, "application/json", body, &resp); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("failed to log in: response has no token")
	}

	c.token = resp.Token

	if exp, ok := tokenExpiry(resp.Token); ok {
		c.logger.Debug("logged in", "user", username, "token_expires", exp.Format(time.RFC3339))
	} else {
		c.logger.Debug("logged in", "user", username)
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature. The
// server is the only party that can verify it; the value is informational.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
