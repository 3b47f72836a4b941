package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testCookieName = "sessionId"

func newTestResolver(t *testing.T) (*Resolver, *Codec, *Store) {
	t.Helper()
	codec := NewCodec("test-secret", time.Hour)
	store := newTestStore(time.Hour)
	resolver := NewResolver(
		NewTokenAuthenticator(codec),
		NewCookieAuthenticator(store, testCookieName),
	)
	return resolver, codec, store
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc123", want: "abc123"},
		{name: "missing header", header: "", wantErr: ErrMissingAuthHeader},
		{name: "wrong scheme", header: "Basic abc123", wantErr: ErrInvalidAuthFormat},
		{name: "no prefix", header: "abc123", wantErr: ErrInvalidAuthFormat},
		{name: "empty token", header: "Bearer ", wantErr: ErrEmptyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractBearerToken(tt.header)
			if err != tt.wantErr {
				t.Errorf("extractBearerToken(%q) error = %v, want %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("extractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestResolverTokenPrecedence(t *testing.T) {
	resolver, codec, store := newTestResolver(t)

	token, err := codec.Issue(testIdentity)
	if err != nil {
		t.Fatalf("Issue() returned error: %v", err)
	}
	session := store.Issue(testIdentity)

	// Valid bearer token and valid session cookie on the same request
	req := httptest.NewRequest(http.MethodGet, "/participant-summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: session.ID})

	ctx := resolver.Resolve(req)
	if ctx == nil {
		t.Fatal("Resolve() rejected a request with two valid credentials")
	}
	if ctx.Method != MethodToken {
		t.Errorf("Resolve() method = %q, want %q (token takes precedence)", ctx.Method, MethodToken)
	}
}

func TestResolverCookieFallback(t *testing.T) {
	resolver, _, store := newTestResolver(t)
	session := store.Issue(testIdentity)

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "no authorization header", authHeader: ""},
		{name: "malformed authorization header", authHeader: "Token xyz"},
		{name: "invalid bearer token", authHeader: "Bearer not-a-valid-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/participant-summary", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			req.AddCookie(&http.Cookie{Name: testCookieName, Value: session.ID})

			ctx := resolver.Resolve(req)
			if ctx == nil {
				t.Fatal("Resolve() rejected a request with a valid session cookie")
			}
			if ctx.Method != MethodCookie {
				t.Errorf("Resolve() method = %q, want %q", ctx.Method, MethodCookie)
			}
			if ctx.SessionID != session.ID {
				t.Errorf("Resolve() sessionID = %q, want %q", ctx.SessionID, session.ID)
			}
		})
	}
}

func TestResolverRejects(t *testing.T) {
	resolver, _, store := newTestResolver(t)

	deleted := store.Issue(testIdentity)
	store.Delete(deleted.ID)

	tests := []struct {
		name    string
		prepare func(req *http.Request)
	}{
		{name: "no credentials", prepare: func(req *http.Request) {}},
		{name: "invalid token only", prepare: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer bogus")
		}},
		{name: "deleted session cookie", prepare: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: testCookieName, Value: deleted.ID})
		}},
		{name: "unknown session cookie", prepare: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: testCookieName, Value: "01ARZ3NDEKTSV4RRFFQ69G5FAV"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/participant-summary", nil)
			tt.prepare(req)

			if ctx := resolver.Resolve(req); ctx != nil {
				t.Error("Resolve() authenticated a request with no valid credential")
			}
		})
	}
}
