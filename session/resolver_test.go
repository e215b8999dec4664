// ABOUTME: Tests for the session resolver
// ABOUTME: Verifies identity resolution, transparent rotation, and cookie side effects

package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/duospend/gateway/cookies"
	"github.com/duospend/gateway/models"
	"github.com/duospend/gateway/upstream"
)

// rotatingBackend rejects the original access token and accepts rotated
// ones, simulating a stale-but-refreshable session.
type rotatingBackend struct {
	stubBackend
	staleAccess string
}

func (b *rotatingBackend) FetchIdentity(ctx context.Context, accessToken string) (*models.Identity, error) {
	b.identityCalls.Add(1)
	if accessToken == b.staleAccess {
		return nil, &upstream.RejectedError{StatusCode: 401, Detail: "token expired"}
	}
	return &models.Identity{ID: "u1", Username: "alice"}, nil
}

func newResolver(backend Backend) (*Resolver, *cookies.Store) {
	store := cookies.NewStore(false)
	rf := NewRefresher(backend, time.Second)
	return NewResolver(backend, rf, store), store
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestResolve_NoCookiesIsAnonymous(t *testing.T) {
	backend := &stubBackend{}
	rs, _ := newResolver(backend)
	rec := httptest.NewRecorder()

	identity := rs.Resolve(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if identity != nil {
		t.Errorf("identity = %+v, want nil", identity)
	}
	if backend.identityCalls.Load() != 0 || backend.refreshCalls.Load() != 0 {
		t.Error("upstream called for a cookieless request")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookies mutated for a cookieless request")
	}
}

func TestResolve_ValidAccessToken(t *testing.T) {
	backend := &stubBackend{identity: &models.Identity{ID: "u1", Username: "alice"}}
	rs, _ := newResolver(backend)
	rec := httptest.NewRecorder()

	identity := rs.Resolve(rec, requestWithCookies(signedToken(t, time.Now().Add(time.Hour)), ""))

	if identity == nil || identity.Username != "alice" {
		t.Fatalf("identity = %+v, want alice", identity)
	}
	if backend.refreshCalls.Load() != 0 {
		t.Error("refresh called for a valid access token")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookies mutated for a valid access token")
	}
}

func TestResolve_StaleAccessRotatesPair(t *testing.T) {
	stale := signedToken(t, time.Now().Add(time.Hour))
	backend := &rotatingBackend{staleAccess: stale}
	rs, _ := newResolver(backend)
	rec := httptest.NewRecorder()

	identity := rs.Resolve(rec, requestWithCookies(stale, "refresh-tok"))

	if identity == nil || identity.Username != "alice" {
		t.Fatalf("identity = %+v, want alice after rotation", identity)
	}
	if backend.refreshCalls.Load() != 1 {
		t.Errorf("refresh calls = %d, want 1", backend.refreshCalls.Load())
	}

	access := responseCookie(t, rec, cookies.AccessTokenName)
	if access == nil || access.Value != "rotated-access-refresh-tok" {
		t.Errorf("access cookie = %+v, want rotated value", access)
	}
	refresh := responseCookie(t, rec, cookies.RefreshTokenName)
	if refresh == nil || refresh.Value != "rotated-refresh-refresh-tok" {
		t.Errorf("refresh cookie = %+v, want rotated value", refresh)
	}
}

func TestResolve_LocallyExpiredAccessSkipsIdentityCall(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Minute))
	backend := &rotatingBackend{staleAccess: expired}
	rs, _ := newResolver(backend)
	rec := httptest.NewRecorder()

	identity := rs.Resolve(rec, requestWithCookies(expired, "refresh-tok"))

	if identity == nil {
		t.Fatal("identity = nil, want resolved after refresh")
	}
	// Exactly one identity call: the post-rotation fetch. The doomed call
	// with the expired token is skipped.
	if got := backend.identityCalls.Load(); got != 1 {
		t.Errorf("identity calls = %d, want 1", got)
	}
	if backend.refreshCalls.Load() != 1 {
		t.Errorf("refresh calls = %d, want 1", backend.refreshCalls.Load())
	}
}

func TestResolve_RejectedRefreshClearsCookies(t *testing.T) {
	backend := &stubBackend{
		identityErr: &upstream.RejectedError{StatusCode: 401, Detail: "token expired"},
		refreshErr:  &upstream.RejectedError{StatusCode: 401, Detail: "refresh token revoked"},
	}
	rs, _ := newResolver(backend)
	rec := httptest.NewRecorder()

	identity := rs.Resolve(rec, requestWithCookies(signedToken(t, time.Now().Add(time.Hour)), "revoked"))

	if identity != nil {
		t.Errorf("identity = %+v, want nil", identity)
	}
	access := responseCookie(t, rec, cookies.AccessTokenName)
	if access == nil || access.MaxAge >= 0 {
		t.Error("access cookie not cleared after rejected refresh")
	}
	refresh := responseCookie(t, rec, cookies.RefreshTokenName)
	if refresh == nil || refresh.MaxAge >= 0 {
		t.Error("refresh cookie not cleared after rejected refresh")
	}
}

func TestResolve_UnavailableUpstreamLeavesCookiesUntouched(t *testing.T) {
	backend := &stubBackend{
		identityErr: fmt.Errorf("%w: connection refused", upstream.ErrUnavailable),
		refreshErr:  fmt.Errorf("%w: connection refused", upstream.ErrUnavailable),
	}
	rs, _ := newResolver(backend)
	rec := httptest.NewRecorder()

	identity := rs.Resolve(rec, requestWithCookies(signedToken(t, time.Now().Add(time.Hour)), "refresh-tok"))

	if identity != nil {
		t.Errorf("identity = %+v, want nil", identity)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookies mutated while upstream unavailable")
	}
}

func TestResolve_RefreshOnlySession(t *testing.T) {
	backend := &stubBackend{}
	rs, _ := newResolver(backend)
	rec := httptest.NewRecorder()

	identity := rs.Resolve(rec, requestWithCookies("", "refresh-tok"))

	if identity == nil {
		t.Fatal("identity = nil, want resolved from refresh token alone")
	}
	if backend.refreshCalls.Load() != 1 {
		t.Errorf("refresh calls = %d, want 1", backend.refreshCalls.Load())
	}
	if responseCookie(t, rec, cookies.AccessTokenName) == nil {
		t.Error("access cookie not set after refresh-only resolution")
	}
}
