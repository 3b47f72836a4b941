package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT token claims for a participant
type Claims struct {
	ParticipantID string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed bearer tokens. Tokens are
// self-contained: validity is signature plus embedded expiry, with no
// server-side record, so issued tokens cannot be revoked.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a token codec with the given HMAC secret and token lifetime
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a new signed token for the identity, expiring after the codec's TTL
func (c *Codec) Issue(identity Identity) (string, error) {
	if len(c.secret) == 0 {
		return "", errors.New("token secret not configured")
	}

	now := time.Now()
	claims := Claims{
		ParticipantID: identity.ID,
		Name:          identity.Name,
		Email:         identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry in a single parse and returns the
// authenticated context, or nil on any failure. Bad signature, malformed
// payload, missing identity claims and expiry are all collapsed to nil so
// callers cannot distinguish which check failed.
func (c *Codec) Verify(tokenString string) *Context {
	if len(c.secret) == 0 {
		return nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil
	}

	if claims.ParticipantID == "" || claims.Name == "" || claims.Email == "" || claims.ExpiresAt == nil {
		return nil
	}

	return &Context{
		Identity: Identity{
			ID:    claims.ParticipantID,
			Name:  claims.Name,
			Email: claims.Email,
		},
		Method:    MethodToken,
		ExpiresAt: claims.ExpiresAt.UnixMilli(),
		Token:     tokenString,
	}
}
