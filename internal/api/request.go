package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"urzis-pass/internal/session"
)

// request describes one backend call relative to the tenant root.
type request struct {
	method string
	path   string // resource path below /{tenant}/
	query  url.Values
	body   any

	// Set for every call except login
	authenticated bool
	// Tenant for unauthenticated calls, which have no session tenant yet
	tenant string

	// Shown when an error response carries no message of its own
	defaultMessage string

	// An empty 2xx body is a failure. Only login needs this.
	requireBody bool
}

// requireSession refuses an authenticated call before any network I/O.
func requireSession(sess session.Session) error {
	if sess.ServerURL == "" {
		return newError(KindNotAuthenticated, 0, MsgServerURLNotConfigured, ErrServerURLNotConfigured)
	}
	if sess.Token == "" || sess.Tenant == "" {
		return newError(KindNotAuthenticated, 0, MsgNotAuthenticated, nil)
	}
	return nil
}

// resourceURL builds {serverUrl}/{tenant}/{path}[?query].
func resourceURL(serverURL, tenant, path string, query url.Values) string {
	u := serverURL + "/" + url.PathEscape(tenant) + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// buildRequest turns r into an *http.Request using the given session.
func buildRequest(ctx context.Context, sess session.Session, r request) (*http.Request, error) {
	tenant := sess.Tenant
	if !r.authenticated {
		tenant = r.tenant
		if sess.ServerURL == "" {
			return nil, newError(KindNotAuthenticated, 0, MsgServerURLNotConfigured, ErrServerURLNotConfigured)
		}
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, newError(KindServer, 0, fmt.Sprintf("Invalid request: %v", err), err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, resourceURL(sess.ServerURL, tenant, r.path, r.query), body)
	if err != nil {
		return nil, newError(KindServer, 0, fmt.Sprintf("Invalid request: %v", err), err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.authenticated {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	return req, nil
}

// pathID escapes a record id for use as a path segment.
func pathID(id ID) string {
	return url.PathEscape(string(id))
}
