// ABOUTME: Route guard middleware classifying paths and enforcing access rules
// ABOUTME: Redirects by (classification x resolution); API paths enforce their own auth

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/duospend/gateway/models"
)

// RouteClass is the static classification of a URL path.
type RouteClass int

const (
	// ClassPublic routes pass through for anyone.
	ClassPublic RouteClass = iota
	// ClassProtected routes require an authenticated identity.
	ClassProtected
	// ClassGuestOnly routes (sign-in, sign-up) bounce authenticated users.
	ClassGuestOnly
	// ClassAdmin routes require an authenticated identity with the admin role.
	ClassAdmin
	// ClassExempt routes bypass the guard entirely; they enforce their own auth.
	ClassExempt
)

func (c RouteClass) String() string {
	switch c {
	case ClassProtected:
		return "protected"
	case ClassGuestOnly:
		return "guest-only"
	case ClassAdmin:
		return "admin"
	case ClassExempt:
		return "exempt"
	default:
		return "public"
	}
}

// GuardConfig holds the prefix tables and redirect targets.
type GuardConfig struct {
	ProtectedPrefixes []string
	GuestOnlyPrefixes []string
	AdminPrefixes     []string
	ExemptPrefixes    []string // e.g. /api/
	SignInPath        string
	DashboardPath     string
}

// Classify returns the route class for a path by prefix match, checked in
// order: exempt, admin, protected, guest-only; everything else is public.
func (cfg GuardConfig) Classify(path string) RouteClass {
	if hasAnyPrefix(path, cfg.ExemptPrefixes) {
		return ClassExempt
	}
	if hasAnyPrefix(path, cfg.AdminPrefixes) {
		return ClassAdmin
	}
	if hasAnyPrefix(path, cfg.ProtectedPrefixes) {
		return ClassProtected
	}
	if hasAnyPrefix(path, cfg.GuestOnlyPrefixes) {
		return ClassGuestOnly
	}
	return ClassPublic
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// ResolveFunc resolves a request's cookies into an identity or nil.
// Resolution may mutate cookies (rotation, termination), so it receives
// the ResponseWriter.
type ResolveFunc func(w http.ResponseWriter, r *http.Request) *models.Identity

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// GetIdentity extracts the resolved identity from the request context.
// Returns nil for anonymous requests.
func GetIdentity(r *http.Request) *models.Identity {
	identity, ok := r.Context().Value(identityKey).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// Guard returns middleware enforcing the access table:
//
//	public    x any           -> pass
//	protected x anonymous     -> redirect to sign-in
//	protected x authenticated -> pass
//	guest-only x authenticated -> redirect to dashboard
//	guest-only x anonymous     -> pass
//	admin     x anonymous     -> redirect to sign-in
//	admin     x non-admin     -> redirect to dashboard
//
// Exempt prefixes skip both classification and resolution. All other
// requests are resolved so downstream rendering sees the identity (or
// nil) via GetIdentity.
func Guard(cfg GuardConfig, resolve ResolveFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			class := cfg.Classify(r.URL.Path)
			if class == ClassExempt {
				next(w, r)
				return
			}

			identity := resolve(w, r)

			switch class {
			case ClassProtected:
				if identity == nil {
					slog.Debug("Guard: anonymous on protected route", "path", r.URL.Path)
					http.Redirect(w, r, cfg.SignInPath, http.StatusFound)
					return
				}
			case ClassGuestOnly:
				if identity != nil {
					slog.Debug("Guard: authenticated on guest-only route", "path", r.URL.Path)
					http.Redirect(w, r, cfg.DashboardPath, http.StatusFound)
					return
				}
			case ClassAdmin:
				if identity == nil {
					http.Redirect(w, r, cfg.SignInPath, http.StatusFound)
					return
				}
				if !identity.IsAdmin() {
					slog.Debug("Guard: non-admin on admin route", "path", r.URL.Path, "user", identity.Username)
					http.Redirect(w, r, cfg.DashboardPath, http.StatusFound)
					return
				}
			}

			if identity != nil {
				ctx := context.WithValue(r.Context(), identityKey, identity)
				r = r.WithContext(ctx)
			}
			next(w, r)
		}
	}
}
