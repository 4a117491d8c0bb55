package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewRequestIDIsUnique(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == b {
		t.Fatalf("expected distinct request ids, got %q twice", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("request id %q is not a UUID: %v", a, err)
	}
}

func TestUserAgentUsesBuildVersion(t *testing.T) {
	old := BuildVersion
	BuildVersion = "1.2.3"
	defer func() { BuildVersion = old }()

	if got := UserAgent(); got != "urzis-pass-cli/1.2.3" {
		t.Fatalf("UserAgent() = %q", got)
	}

	BuildVersion = ""
	if got := UserAgent(); !strings.HasPrefix(got, "urzis-pass-cli/") {
		t.Fatalf("UserAgent() = %q", got)
	}
}
