// ABOUTME: Typed session value parsed from the token-pair cookies
// ABOUTME: Extracts explicit expiry fields from JWT exp claims without verifying signatures

package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duospend/gateway/cookies"
)

// Session is the cookie-backed token state of one request. The gateway
// keeps no server-side session table; this value is rebuilt from cookies
// on every request and discarded with it.
type Session struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time // zero when the token carries no parsable exp claim
	RefreshExpiresAt time.Time
}

// FromRequest builds a Session from the request cookies. Missing or
// empty cookies leave the corresponding fields zero.
func FromRequest(store *cookies.Store, r *http.Request) Session {
	var s Session
	if access, ok := store.Access(r); ok {
		s.AccessToken = access
		s.AccessExpiresAt = tokenExpiry(access)
	}
	if refresh, ok := store.Refresh(r); ok {
		s.RefreshToken = refresh
		s.RefreshExpiresAt = tokenExpiry(refresh)
	}
	return s
}

// Empty reports whether the request carried no tokens at all. An empty
// session is anonymous without any upstream call.
func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

// HasAccess reports whether an access token is present.
func (s Session) HasAccess() bool { return s.AccessToken != "" }

// HasRefresh reports whether a refresh token is present.
func (s Session) HasRefresh() bool { return s.RefreshToken != "" }

// AccessExpired reports whether the access token is known to be expired.
// Tokens without a parsable exp claim are never "known expired"; the
// upstream's 401 remains the authority on their staleness.
func (s Session) AccessExpired(now time.Time) bool {
	return !s.AccessExpiresAt.IsZero() && now.After(s.AccessExpiresAt)
}

// tokenExpiry reads the exp claim from a JWT without verifying its
// signature. The identity backend owns token validity; the claim is used
// only to skip upstream calls that are certain to fail.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
