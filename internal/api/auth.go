package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"urzis-pass/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Session returns the stored session.
func (c *Client) Session(ctx context.Context) session.Session {
	return c.store.Read(ctx)
}

// SetServerURL normalises and stores the backend address. An empty url clears it.
func (c *Client) SetServerURL(ctx context.Context, url string) error {
	return c.store.WriteServerURL(ctx, url)
}

// Login authenticates against tenant and stores the session on success.
func (c *Client) Login(ctx context.Context, email, password, tenant string) (string, error) {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		return "", newError(KindServer, 0, "Tenant is required", nil)
	}

	var resp loginResponse
	raw := &rawBody{target: &resp}
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           "auth/login",
		body:           loginRequest{Email: strings.TrimSpace(email), Password: password},
		tenant:         tenant,
		defaultMessage: "Login failed",
		requireBody:    true,
	}, raw)
	if err != nil {
		return "", err
	}

	if resp.Token == "" {
		return "", newError(KindServer, http.StatusOK, MsgNoToken+": "+string(raw.data), nil)
	}

	if err := c.store.WriteSession(ctx, resp.Token, tenant); err != nil {
		return "", newError(KindServer, 0, "Failed to save session: "+err.Error(), err)
	}

	c.logger.Info("Logged in", "tenant", tenant)
	return resp.Token, nil
}

// Logout forgets the token and tenant. The server URL is kept.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// rawBody keeps the undecoded body next to the decoded value for diagnostics.
type rawBody struct {
	target any
	data   []byte
}

func (r *rawBody) UnmarshalJSON(b []byte) error {
	r.data = append(r.data[:0], b...)
	return json.Unmarshal(b, r.target)
}
