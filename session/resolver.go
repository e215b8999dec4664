// ABOUTME: Session resolver turning request cookies into an identity or anonymous
// ABOUTME: Transparently rotates stale access tokens through the refresh coordinator

package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/duospend/gateway/cookies"
	"github.com/duospend/gateway/models"
	"github.com/duospend/gateway/upstream"
)

// Resolver resolves the identity behind a request's cookies.
//
// Resolution looks read-like but may mutate cookies: a refresh rotates
// the pair, an explicit upstream rejection deletes it. Callers must pass
// the ResponseWriter before writing any response body so cookie mutations
// happen-before the response is sent.
type Resolver struct {
	backend   Backend
	refresher *Refresher
	cookies   *cookies.Store
	now       func() time.Time
}

// NewResolver creates a resolver over the given backend and cookie store.
func NewResolver(backend Backend, refresher *Refresher, store *cookies.Store) *Resolver {
	return &Resolver{
		backend:   backend,
		refresher: refresher,
		cookies:   store,
		now:       time.Now,
	}
}

// Resolve returns the request's identity, or nil for anonymous.
//
// Anonymous covers three distinct situations by design: no tokens at all,
// an explicitly terminated session (cookies cleared), and an unreachable
// upstream (cookies untouched so the next request gets a fresh chance).
// Transport failures never log a user out.
func (rs *Resolver) Resolve(w http.ResponseWriter, r *http.Request) *models.Identity {
	sess := FromRequest(rs.cookies, r)
	if sess.Empty() {
		return nil
	}

	// A locally-expired access token is certain to be rejected; skip the
	// doomed identity call and go straight to refresh.
	if sess.HasAccess() && !sess.AccessExpired(rs.now()) {
		identity, err := rs.backend.FetchIdentity(r.Context(), sess.AccessToken)
		if err == nil {
			return identity
		}

		var rejected *upstream.RejectedError
		if !errors.As(err, &rejected) {
			slog.Warn("Identity fetch failed, treating request as anonymous", "error", err)
			return nil
		}
		// Access token stale; fall through to refresh.
	}

	if !sess.HasRefresh() {
		return nil
	}

	pair, err := rs.refresher.Refresh(r.Context(), sess.RefreshToken)
	if err != nil {
		var rejected *upstream.RejectedError
		if errors.As(err, &rejected) {
			slog.Info("Refresh token rejected, terminating session")
			rs.cookies.ClearPair(w)
			return nil
		}
		slog.Warn("Refresh unavailable, leaving session unresolved", "error", err)
		return nil
	}

	rs.cookies.SetPair(w, pair.AccessToken, pair.RefreshToken)

	identity, err := rs.backend.FetchIdentity(r.Context(), pair.AccessToken)
	if err != nil {
		var rejected *upstream.RejectedError
		if errors.As(err, &rejected) {
			// A freshly rotated token was rejected outright; the session
			// is unusable.
			rs.cookies.ClearPair(w)
			return nil
		}
		slog.Warn("Identity fetch failed after refresh", "error", err)
		return nil
	}
	return identity
}
