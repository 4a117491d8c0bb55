package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Longest raw (non-JSON) error body shown to the user
const maxRawErrorLength = 100

const licenseExpiredCode = "license_expired"

// errorBody holds the string fields of a JSON error response. Fields of any
// other JSON type are left empty.
type errorBody struct {
	Error   string
	Message string
}

// classify turns a response status and body into an *Error, or nil for 2xx.
// Rules are checked in order and the first match wins.
func classify(status int, body []byte, authenticated bool, defaultMessage string) *Error {
	if status >= 200 && status < 300 {
		return nil
	}

	parsed, isJSON := parseErrorBody(body)

	if status == http.StatusUnauthorized && authenticated {
		return newError(KindSessionExpired, status, MsgSessionExpired, nil)
	}

	if status == http.StatusForbidden && isJSON && parsed.Error == licenseExpiredCode {
		message := parsed.Message
		if message == "" {
			message = MsgLicenseExpired
		}
		return newError(KindLicenseExpired, status, message, nil)
	}

	return newError(KindServer, status, errorMessage(status, body, parsed, isJSON, defaultMessage), nil)
}

// parseErrorBody reports whether body is JSON at all, and picks out string
// valued error and message fields when it is an object.
func parseErrorBody(body []byte) (errorBody, bool) {
	var parsed errorBody
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return parsed, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return parsed, true
	}
	parsed.Error = stringField(fields, "error")
	parsed.Message = stringField(fields, "message")
	return parsed, true
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(fields[key], &s); err != nil {
		return ""
	}
	return s
}

func errorMessage(status int, body []byte, parsed errorBody, isJSON bool, defaultMessage string) string {
	if isJSON {
		switch {
		case parsed.Error != "":
			return parsed.Error
		case parsed.Message != "":
			return parsed.Message
		case defaultMessage != "":
			return defaultMessage
		}
		return statusMessage(status)
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return statusMessage(status)
	}
	if utf8.RuneCountInString(text) > maxRawErrorLength {
		text = string([]rune(text)[:maxRawErrorLength]) + "..."
	}
	return text
}

func statusMessage(status int) string {
	return strings.TrimSpace(fmt.Sprintf("Server error: %d %s", status, http.StatusText(status)))
}

// decodeBody decodes a 2xx body into out. An empty body is only an error
// when required.
func decodeBody(status int, body []byte, out any, required bool) error {
	if len(bytes.TrimSpace(body)) == 0 {
		if required {
			return newError(KindServer, status, MsgEmptyResponse, nil)
		}
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return newError(KindServer, status, fmt.Sprintf("Invalid response from server: %v", err), err)
	}
	return nil
}
