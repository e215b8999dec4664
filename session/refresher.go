// ABOUTME: Refresh coordinator exchanging refresh tokens for rotated pairs
// ABOUTME: Coalesces concurrent refreshes of the same token via singleflight

package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/duospend/gateway/models"
)

// ErrNoRefreshToken is returned when Refresh is called without a token.
var ErrNoRefreshToken = errors.New("no refresh token")

// Backend is the slice of the upstream client the session layer needs.
type Backend interface {
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	FetchIdentity(ctx context.Context, accessToken string) (*models.Identity, error)
}

// Refresher performs token rotation against the identity backend.
//
// Concurrent requests presenting the same stale pair are coalesced into a
// single upstream call keyed by a hash of the refresh token; all callers
// share its outcome. This in-process cache is advisory only: under
// multi-instance deployment, correctness depends on the identity backend
// honoring a just-rotated refresh token for a short grace window.
type Refresher struct {
	backend Backend
	timeout time.Duration
	group   singleflight.Group
}

// NewRefresher creates a refresh coordinator. timeout bounds the upstream
// call of each flight (default 5s when zero).
func NewRefresher(backend Backend, timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Refresher{backend: backend, timeout: timeout}
}

// Refresh exchanges refreshToken for a rotated pair. Error kinds follow
// the upstream taxonomy: upstream.RejectedError means the token is
// invalid or already rotated (callers clear cookies and force re-auth);
// upstream.ErrUnavailable means the session is merely unresolved (cookies
// must stay untouched).
func (rf *Refresher) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	key := refreshKey(refreshToken)
	v, err, shared := rf.group.Do(key, func() (any, error) {
		// The flight is shared between requests, so it must not die with
		// whichever caller happens to arrive first. Detach from the
		// caller's cancellation and apply the coordinator's own deadline.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rf.timeout)
		defer cancel()
		return rf.backend.Refresh(fctx, refreshToken)
	})
	if shared {
		slog.Debug("Refresh coalesced with in-flight rotation", "key", key[:8])
	}
	if err != nil {
		return nil, err
	}
	return v.(*models.TokenPair), nil
}

// refreshKey hashes the refresh token so raw token material never sits in
// the singleflight map.
func refreshKey(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return hex.EncodeToString(sum[:])
}
