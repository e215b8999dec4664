// ABOUTME: Tests for the typed Session value
// ABOUTME: Verifies cookie parsing and expiry extraction from JWT claims

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duospend/gateway/cookies"
)

// signedToken builds a real HS256 JWT with the given expiry. The session
// layer never verifies signatures, so any key works.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return s
}

func requestWithCookies(access, refresh string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if access != "" {
		r.AddCookie(&http.Cookie{Name: cookies.AccessTokenName, Value: access})
	}
	if refresh != "" {
		r.AddCookie(&http.Cookie{Name: cookies.RefreshTokenName, Value: refresh})
	}
	return r
}

func TestFromRequest_Empty(t *testing.T) {
	store := cookies.NewStore(false)
	sess := FromRequest(store, requestWithCookies("", ""))

	if !sess.Empty() {
		t.Error("Empty() = false for a cookieless request")
	}
	if sess.HasAccess() || sess.HasRefresh() {
		t.Error("token presence reported on a cookieless request")
	}
}

func TestFromRequest_ParsesExpiries(t *testing.T) {
	store := cookies.NewStore(false)
	accessExp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	refreshExp := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Second)

	sess := FromRequest(store, requestWithCookies(
		signedToken(t, accessExp),
		signedToken(t, refreshExp),
	))

	if !sess.HasAccess() || !sess.HasRefresh() {
		t.Fatal("tokens not read from cookies")
	}
	if !sess.AccessExpiresAt.Equal(accessExp) {
		t.Errorf("AccessExpiresAt = %v, want %v", sess.AccessExpiresAt, accessExp)
	}
	if !sess.RefreshExpiresAt.Equal(refreshExp) {
		t.Errorf("RefreshExpiresAt = %v, want %v", sess.RefreshExpiresAt, refreshExp)
	}
}

func TestFromRequest_OpaqueTokenHasZeroExpiry(t *testing.T) {
	store := cookies.NewStore(false)
	sess := FromRequest(store, requestWithCookies("not-a-jwt", ""))

	if !sess.HasAccess() {
		t.Fatal("opaque token not kept")
	}
	if !sess.AccessExpiresAt.IsZero() {
		t.Errorf("AccessExpiresAt = %v, want zero for opaque token", sess.AccessExpiresAt)
	}
}

func TestAccessExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{"future expiry", now.Add(time.Hour), false},
		{"past expiry", now.Add(-time.Minute), true},
		{"unknown expiry", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{AccessToken: "tok", AccessExpiresAt: tt.exp}
			if got := s.AccessExpired(now); got != tt.want {
				t.Errorf("AccessExpired = %t, want %t", got, tt.want)
			}
		})
	}
}
