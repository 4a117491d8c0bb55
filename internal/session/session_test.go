package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"urzis-pass/internal/storage"
)

func TestNormalizeServerURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com:8080", "http://example.com:8080"},
		{"https://example.com/", "https://example.com"},
		{"  http://10.0.0.5:3000  ", "http://10.0.0.5:3000"},
		{"pass.example.com/api/", "http://pass.example.com/api"},
		{"https://example.com//", "https://example.com"},
		{"HTTPS://Example.com", "HTTPS://Example.com"},
		{"", ""},
		{"   ", ""},
		{"/", ""},
	}

	for _, tc := range cases {
		if got := NormalizeServerURL(tc.in); got != tc.want {
			t.Errorf("NormalizeServerURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeServerURLIdempotent(t *testing.T) {
	inputs := []string{
		"example.com", "example.com/", "https://example.com//", " http://x/ /",
		"http://", "/", "a", "ftp://files.example.com/", "localhost:8080/ ",
	}
	for _, in := range inputs {
		once := NormalizeServerURL(in)
		if twice := NormalizeServerURL(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestWriteSessionIsAtomic(t *testing.T) {
	ctx := context.Background()

	for _, pair := range [][2]string{{"", "acme"}, {"tok", ""}} {
		store := NewStore(storage.NewMemoryProvider())
		if err := store.WriteSession(ctx, "old", "old-tenant"); err != nil {
			t.Fatalf("WriteSession() error: %v", err)
		}
		if err := store.WriteSession(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("WriteSession(%q, %q) error: %v", pair[0], pair[1], err)
		}

		got := store.Read(ctx)
		if got.Token != "" || got.Tenant != "" {
			t.Fatalf("half session observable after WriteSession(%q, %q): %+v", pair[0], pair[1], got)
		}
	}
}

func TestReadHidesHalfSession(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewMemoryProvider()
	provider.Set(ctx, KeyServerURL, "http://pass.local")
	provider.Set(ctx, KeyToken, "orphan")

	got := NewStore(provider).Read(ctx)
	if got.Token != "" || got.Tenant != "" {
		t.Fatalf("expected orphan token to be hidden, got %+v", got)
	}
	if got.ServerURL != "http://pass.local" {
		t.Fatalf("server url should still be read, got %q", got.ServerURL)
	}
}

func TestClearKeepsServerURL(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryProvider())

	if err := store.WriteServerURL(ctx, "pass.example.com/"); err != nil {
		t.Fatalf("WriteServerURL() error: %v", err)
	}
	if err := store.WriteSession(ctx, "tok", "acme"); err != nil {
		t.Fatalf("WriteSession() error: %v", err)
	}
	if !store.Current().Authenticated() {
		t.Fatalf("expected authenticated session in memory, got %+v", store.Current())
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	got := store.Read(ctx)
	if got.Token != "" || got.Tenant != "" {
		t.Fatalf("expected token and tenant cleared, got %+v", got)
	}
	if got.ServerURL != "http://pass.example.com" {
		t.Fatalf("expected server url kept, got %q", got.ServerURL)
	}
}

func TestWriteServerURLEmptyClears(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryProvider())

	store.WriteServerURL(ctx, "https://pass.example.com")
	if err := store.WriteServerURL(ctx, "  "); err != nil {
		t.Fatalf("WriteServerURL() error: %v", err)
	}
	if got := store.Read(ctx); got.Configured() {
		t.Fatalf("expected server url cleared, got %q", got.ServerURL)
	}
}

// brokenProvider fails every operation.
type brokenProvider struct{}

var errBroken = errors.New("storage unavailable")

func (brokenProvider) Get(context.Context, string) (string, bool, error) { return "", false, errBroken }
func (brokenProvider) Set(context.Context, string, string) error        { return errBroken }
func (brokenProvider) Delete(context.Context, ...string) error           { return errBroken }
func (brokenProvider) Close() error                                      { return nil }

func TestReadCollapsesStorageErrors(t *testing.T) {
	store := NewStore(brokenProvider{})

	got := store.Read(context.Background())
	if got != (Session{}) {
		t.Fatalf("expected empty session on storage failure, got %+v", got)
	}

	if err := store.WriteServerURL(context.Background(), "example.com"); !errors.Is(err, errBroken) {
		t.Fatalf("expected write error to surface, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	got, err := Session{Token: token}.TokenExpiry()
	if err != nil {
		t.Fatalf("TokenExpiry() error: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("TokenExpiry() = %v, want %v", got, exp)
	}

	if _, err := (Session{}).TokenExpiry(); !errors.Is(err, ErrNoExpiry) {
		t.Fatalf("expected ErrNoExpiry for empty token, got %v", err)
	}
	if _, err := (Session{Token: "opaque-token"}).TokenExpiry(); err == nil {
		t.Fatalf("expected error for non-JWT token")
	}
}
