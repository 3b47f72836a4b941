package auth

import (
	"errors"
	"net/http"
	"strings"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// Authenticator is a single credential strategy. Implementations
// return nil when their credential is absent or invalid.
type Authenticator interface {
	Authenticate(r *http.Request) *Context
}

// TokenAuthenticator authenticates via the Authorization bearer header
type TokenAuthenticator struct {
	codec *Codec
}

func NewTokenAuthenticator(codec *Codec) *TokenAuthenticator {
	return &TokenAuthenticator{codec: codec}
}

func (a *TokenAuthenticator) Authenticate(r *http.Request) *Context {
	token, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil
	}
	return a.codec.Verify(token)
}

// CookieAuthenticator authenticates via the session cookie
type CookieAuthenticator struct {
	store      *Store
	cookieName string
}

func NewCookieAuthenticator(store *Store, cookieName string) *CookieAuthenticator {
	return &CookieAuthenticator{store: store, cookieName: cookieName}
}

func (a *CookieAuthenticator) Authenticate(r *http.Request) *Context {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil {
		return nil
	}
	return a.store.Lookup(cookie.Value)
}

// Resolver tries authenticators in fixed priority order and stops at
// the first success. The token authenticator is registered before the
// cookie authenticator, so a bearer-token client coexists with a stale
// or foreign session cookie without being misauthenticated.
type Resolver struct {
	chain []Authenticator
}

func NewResolver(authenticators ...Authenticator) *Resolver {
	return &Resolver{chain: authenticators}
}

// Resolve returns the first successful auth context, or nil when no
// authenticator accepts the request
func (r *Resolver) Resolve(req *http.Request) *Context {
	for _, authenticator := range r.chain {
		if ctx := authenticator.Authenticate(req); ctx != nil {
			return ctx
		}
	}
	return nil
}
