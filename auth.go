package agvd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/carbocation/pfx"
)

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Login exchanges a user ID and password for an API token and stores the
// token on the client for subsequent queries. Rejected credentials yield an
// *AuthError.
func (c *Client) Login(ctx context.Context, userID, password string) error {
	var out loginResponse
	if err := c.postAuth(ctx, "auth/login", loginRequest{UserID: userID, Password: password}, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return &AuthError{StatusCode: http.StatusOK, Message: "login response carried no token"}
	}

	c.Token = out.Token
	return nil
}

// VerifyToken asks the auth service whether the client's current token is
// accepted, so a bad key fails the run before any batch is sent. An invalid
// or rejected token yields an *AuthError.
func (c *Client) VerifyToken(ctx context.Context) error {
	if c.Token == "" {
		return &AuthError{Message: "no token configured"}
	}

	var out verifyResponse
	if err := c.postAuth(ctx, "auth/verify", verifyRequest{Token: c.Token}, &out); err != nil {
		return err
	}
	if !out.Valid {
		return &AuthError{StatusCode: http.StatusOK, Message: "token rejected"}
	}

	return nil
}

func (c *Client) postAuth(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return pfx.Err(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pfx.Err(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return pfx.Err(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode, Message: apiMessage(resp.Body)}
	case resp.StatusCode != http.StatusOK:
		return &StatusError{StatusCode: resp.StatusCode, Message: apiMessage(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pfx.Err(err)
	}

	return nil
}
