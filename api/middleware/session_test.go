package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/logger"
)

func TestSessionMiddlewareGeneratesID(t *testing.T) {
	var seen string
	handler := Session(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if seen == "" {
		t.Fatal("expected a generated session id")
	}
	if got := resp.Header().Get(session.Header); got != seen {
		t.Fatalf("expected echoed id %q got %q", seen, got)
	}
}

func TestSessionMiddlewareKeepsClientID(t *testing.T) {
	var seen string
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(session.Header, "abc-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if seen != "abc-123" || resp.Header().Get(session.Header) != "abc-123" {
		t.Fatalf("expected client id to be kept, got %q", seen)
	}
}

func TestSessionMiddlewareRejectsInvalidID(t *testing.T) {
	called := false
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(session.Header, "a:b")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if called || resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without calling the handler, got %d called=%v", resp.Code, called)
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	var seen string
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Header().Get(requestIDHeader) != "req-1" || seen != "req-1" {
		t.Fatalf("expected request id echoed, header=%q ctx=%q", resp.Header().Get(requestIDHeader), seen)
	}
}

func TestRequestIDReplacesUnsafeInbound(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"newline":   "abc\r\nSet-Cookie: x=1",
		"too long":  strings.Repeat("a", 65),
		"separator": "a b",
	}
	for name, inbound := range cases {
		t.Run(name, func(t *testing.T) {
			var seen string
			handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header[requestIDHeader] = []string{inbound}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			got := resp.Header().Get(requestIDHeader)
			if got == inbound || got != seen {
				t.Fatalf("expected generated id, header=%q ctx=%q", got, seen)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("expected uuid request id, got %q", got)
			}
		})
	}
}
