package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"urzis-pass/internal/session"
	"urzis-pass/internal/storage"
)

// recordedRequest is what the fake backend saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// fakeBackend is a gin router behind an httptest server that records every request.
type fakeBackend struct {
	*httptest.Server
	router *gin.Engine

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fb := &fakeBackend{router: gin.New()}
	fb.router.Use(func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
			Header: c.Request.Header.Clone(),
			Body:   body,
		})
		fb.mu.Unlock()
		c.Next()
	})

	fb.Server = httptest.NewServer(fb.router)
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		t.Fatalf("backend received no requests")
	}
	return fb.requests[len(fb.requests)-1]
}

func (fb *fakeBackend) count() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

// newTestClient returns a client pointed at fb. When loggedIn is set the
// session holds token tok123 for tenant acme.
func newTestClient(t *testing.T, fb *fakeBackend, loggedIn bool) (*Client, *session.Store) {
	t.Helper()
	ctx := context.Background()

	store := session.NewStore(storage.NewMemoryProvider())
	if err := store.WriteServerURL(ctx, fb.URL); err != nil {
		t.Fatalf("WriteServerURL() error: %v", err)
	}
	if loggedIn {
		if err := store.WriteSession(ctx, "tok123", "acme"); err != nil {
			t.Fatalf("WriteSession() error: %v", err)
		}
	}
	return New(store, WithHTTPClient(fb.Client()), WithUserAgent("urzis-test/1")), store
}

// countingTransport counts round trips and never reaches the network.
type countingTransport struct {
	mu    sync.Mutex
	calls int
}

func (ct *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	ct.mu.Lock()
	ct.calls++
	ct.mu.Unlock()
	return nil, io.ErrUnexpectedEOF
}
