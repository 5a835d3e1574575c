package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quillpost/gateway-client/internal/constants"
)

// Token is a decoded access token. The signature is not verified; the
// gateway is the only authority on validity.
type Token struct {
	Raw       string
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Valid reports whether the token is present and not within
// TokenExpirationBuffer of its expiry. A token without expiry is valid.
func (t *Token) Valid() bool {
	if t == nil || t.Raw == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// ExpiresIn returns the time left before expiry, or 0.
func (t *Token) ExpiresIn() time.Duration {
	if t == nil || t.ExpiresAt.IsZero() {
		return 0
	}

	return max(time.Until(t.ExpiresAt), 0)
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`

	jwt.RegisteredClaims
}

// ParseToken decodes a JWT without verifying it.
func ParseToken(raw string) (*Token, error) {
	if strings.Count(raw, ".") != constants.TokenPartsCount-1 {
		return nil, constants.ErrInvalidJWTFormat
	}

	claims := &sessionClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	token := &Token{
		Raw:     raw,
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}

	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}

	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}

	return token, nil
}

// Session describes the credentials a cookie jar holds for a gateway.
type Session struct {
	Endpoint        string
	Access          *Token
	HasAccessToken  bool
	HasRefreshToken bool
}

// Authenticated reports whether the session holds a usable access token or
// can obtain one through refresh.
func (s *Session) Authenticated() bool {
	return s.Access.Valid() || s.HasRefreshToken
}

// InspectSession reads the token cookies the jar would send to endpoint or
// to any of the extra paths below it (the refresh token is often scoped to
// the refresh route).
func InspectSession(jar http.CookieJar, endpoint *url.URL, paths ...string) (*Session, error) {
	session := &Session{Endpoint: endpoint.String()}

	targets := []*url.URL{endpoint}
	for _, path := range paths {
		targets = append(targets, endpoint.JoinPath(path))
	}

	var accessToken string

	for _, target := range targets {
		for _, cookie := range jar.Cookies(target) {
			switch cookie.Name {
			case constants.AccessTokenCookie:
				session.HasAccessToken = true
				accessToken = cookie.Value
			case constants.RefreshTokenCookie:
				session.HasRefreshToken = true
			}
		}
	}

	if accessToken == "" {
		return session, nil
	}

	token, err := ParseToken(accessToken)
	if err != nil {
		return session, err
	}

	session.Access = token

	return session, nil
}
