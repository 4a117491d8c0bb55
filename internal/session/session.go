// Package session holds the client's view of who it is talking to: the server
// URL, the bearer token and the tenant the token was issued for.
package session

import (
	"regexp"
	"strings"
)

// Storage keys. The names are shared with the mobile app's local storage.
const (
	KeyServerURL = "serverUrl"
	KeyToken     = "token"
	KeyTenant    = "tenant"
)

var reScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

// Session authorises API calls. Empty fields mean "not set".
type Session struct {
	ServerURL string `json:"server_url" yaml:"server_url"`
	Token     string `json:"-" yaml:"-"`
	Tenant    string `json:"tenant" yaml:"tenant"`
}

// Configured reports whether a server has been chosen.
func (s Session) Configured() bool {
	return s.ServerURL != ""
}

// Authenticated reports whether the session can be used for authenticated calls.
func (s Session) Authenticated() bool {
	return s.ServerURL != "" && s.Token != "" && s.Tenant != ""
}

// NormalizeServerURL trims whitespace, defaults the scheme to http:// and
// strips trailing slashes. Applying it twice gives the same result as once.
func NormalizeServerURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/ \t\r\n")
	if u == "" {
		return ""
	}
	if !reScheme.MatchString(u) {
		u = "http://" + u
	}
	return u
}
