package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call by what the caller should do about it.
type Kind int

const (
	// KindServer is any other backend or response failure. Show the message.
	KindServer Kind = iota
	// KindNotAuthenticated means the call was refused locally, nothing was sent.
	KindNotAuthenticated
	// KindNetwork is a transport failure, the request may not have reached the server.
	KindNetwork
	// KindSessionExpired means the session was cleared. Route the user to login.
	KindSessionExpired
	// KindLicenseExpired means the session was cleared. Show the message verbatim, do not retry.
	KindLicenseExpired
)

func (k Kind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindNetwork:
		return "network"
	case KindSessionExpired:
		return "session_expired"
	case KindLicenseExpired:
		return "license_expired"
	default:
		return "server"
	}
}

var (
	ErrServer                 = errors.New("server error")
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrServerURLNotConfigured = errors.New("server url not configured")
	ErrNetwork                = errors.New("network error")
	ErrSessionExpired         = errors.New("session expired")
	ErrLicenseExpired         = errors.New("license expired")
)

var kindErrors = map[Kind]error{
	KindServer:           ErrServer,
	KindNotAuthenticated: ErrNotAuthenticated,
	KindNetwork:          ErrNetwork,
	KindSessionExpired:   ErrSessionExpired,
	KindLicenseExpired:   ErrLicenseExpired,
}

// User facing messages
const (
	MsgNotAuthenticated       = "Not authenticated"
	MsgServerURLNotConfigured = "Server URL not configured"
	MsgSessionExpired         = "Session expired. Please login again."
	MsgLicenseExpired         = "Your license has expired. Please contact sales to renew your subscription."
	MsgEmptyResponse          = "Empty response from server"
	MsgNoToken                = "No token received from server"
)

// Error is returned by every Client operation. Message is ready for display.
type Error struct {
	Kind       Kind
	StatusCode int    // HTTP status, 0 when no response was received
	Message    string // User-friendly message
	Err        error  // The underlying error, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrSessionExpired) works.
func (e *Error) Is(target error) bool {
	return kindErrors[e.Kind] == target
}

// KindOf returns the kind of err, or KindServer when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

func newError(kind Kind, status int, message string, err error) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message, Err: err}
}

func networkError(err error) *Error {
	return newError(KindNetwork, 0, fmt.Sprintf("Network error: %v", err), err)
}
