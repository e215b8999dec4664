// ABOUTME: Cookie store for the access/refresh token pair
// ABOUTME: Sets and clears both httpOnly cookies atomically with fixed attributes

package cookies

import "net/http"

const (
	// AccessTokenName and RefreshTokenName are the public cookie names of
	// the gateway's external interface.
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"

	accessMaxAge  = 24 * 60 * 60     // 24h
	refreshMaxAge = 7 * 24 * 60 * 60 // 7d
)

// Store writes and reads the token-pair cookies. It holds no business
// logic; validation of token contents happens at the session boundary.
type Store struct {
	secure bool
}

// NewStore creates a cookie store. secure should be true in production
// so cookies are only sent over TLS.
func NewStore(secure bool) *Store {
	return &Store{secure: secure}
}

// Access returns the access token cookie value, if present and non-empty.
func (s *Store) Access(r *http.Request) (string, bool) {
	return read(r, AccessTokenName)
}

// Refresh returns the refresh token cookie value, if present and non-empty.
func (s *Store) Refresh(r *http.Request) (string, bool) {
	return read(r, RefreshTokenName)
}

// SetPair stores a rotated token pair. The two cookies are always issued
// together; callers must never set one without the other.
func (s *Store) SetPair(w http.ResponseWriter, accessToken, refreshToken string) {
	s.set(w, AccessTokenName, accessToken, accessMaxAge)
	s.set(w, RefreshTokenName, refreshToken, refreshMaxAge)
}

// ClearPair deletes both cookies. Safe to call from error paths and on
// requests that carried no cookies at all.
func (s *Store) ClearPair(w http.ResponseWriter) {
	s.set(w, AccessTokenName, "", -1)
	s.set(w, RefreshTokenName, "", -1)
}

func (s *Store) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}

func read(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
