// ABOUTME: Auth proxy endpoints translating between browser cookies and upstream token bodies
// ABOUTME: Handles login, register, logout, refresh, and me; tokens never reach browser script

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/duospend/gateway/models"
	"github.com/duospend/gateway/upstream"
)

const upstreamUnavailableDetail = "Identity service temporarily unavailable, please retry"

// Login forwards credentials upstream and turns the token grant into the
// cookie pair. The response body carries only the identity.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EmailOrUsername == "" || req.Password == "" {
		h.writeError(w, "Email/username and password are required", http.StatusBadRequest)
		return
	}

	pair, err := h.upstream.Authenticate(r.Context(), req)
	if err != nil {
		h.writeUpstreamError(w, err, "Login failed")
		return
	}

	identity, err := h.upstream.FetchIdentity(r.Context(), pair.AccessToken)
	if err != nil {
		// No partial commit: without a resolvable identity the grant is
		// discarded and no cookies are set.
		slog.Error("Identity fetch failed after login", "error", err)
		h.writeError(w, upstreamUnavailableDetail, http.StatusServiceUnavailable)
		return
	}

	h.cookies.SetPair(w, pair.AccessToken, pair.RefreshToken)
	h.writeJSON(w, http.StatusOK, models.AuthResponse{
		User:    *identity,
		Message: "Signed in successfully",
	})
}

// Register creates an account upstream and signs the new user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		h.writeError(w, "Email, username, and password are required", http.StatusBadRequest)
		return
	}

	pair, err := h.upstream.Register(r.Context(), req)
	if err != nil {
		h.writeUpstreamError(w, err, "Registration failed")
		return
	}

	identity, err := h.upstream.FetchIdentity(r.Context(), pair.AccessToken)
	if err != nil {
		slog.Error("Identity fetch failed after registration", "error", err)
		h.writeError(w, upstreamUnavailableDetail, http.StatusServiceUnavailable)
		return
	}

	h.cookies.SetPair(w, pair.AccessToken, pair.RefreshToken)
	h.writeJSON(w, http.StatusCreated, models.AuthResponse{
		User:    *identity,
		Message: "Account created successfully",
	})
}

// Logout terminates the session. The upstream notification is
// best-effort; cookies are cleared on every path so logout never fails
// from the browser's point of view. GET redirects home, POST returns an
// acknowledgement.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if access, ok := h.cookies.Access(r); ok {
		if err := h.upstream.Logout(r.Context(), access); err != nil {
			slog.Debug("Upstream logout notification failed", "error", err)
		}
	}

	h.cookies.ClearPair(w)

	if r.Method == http.MethodGet {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Signed out successfully"})
}

// Refresh rotates the token pair from the refresh cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := h.cookies.Refresh(r)
	if !ok {
		// A lone access cookie violates the pair invariant; clear both.
		h.cookies.ClearPair(w)
		h.writeError(w, "No refresh token", http.StatusUnauthorized)
		return
	}

	pair, err := h.refresher.Refresh(r.Context(), refreshToken)
	if err != nil {
		var rejected *upstream.RejectedError
		if errors.As(err, &rejected) {
			slog.Info("Refresh rejected, clearing session cookies")
			h.cookies.ClearPair(w)
			h.writeError(w, "Session expired, please sign in again", http.StatusUnauthorized)
			return
		}
		// Transport trouble must not log the user out.
		slog.Warn("Refresh unavailable", "error", err)
		h.writeError(w, upstreamUnavailableDetail, http.StatusServiceUnavailable)
		return
	}

	h.cookies.SetPair(w, pair.AccessToken, pair.RefreshToken)
	h.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Token refreshed"})
}

// Me returns the identity behind the access cookie. An upstream 401
// means the session is stale: both cookies are cleared so the browser
// converges to anonymous.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	access, ok := h.cookies.Access(r)
	if !ok {
		h.writeError(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	identity, err := h.upstream.FetchIdentity(r.Context(), access)
	if err != nil {
		var rejected *upstream.RejectedError
		if errors.As(err, &rejected) {
			if rejected.StatusCode == http.StatusUnauthorized {
				h.cookies.ClearPair(w)
				h.writeError(w, "Session expired", http.StatusUnauthorized)
				return
			}
			h.writeError(w, rejected.Detail, rejected.StatusCode)
			return
		}
		h.writeError(w, upstreamUnavailableDetail, http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusOK, identity)
}

// writeUpstreamError maps the upstream error taxonomy onto the endpoint
// response: explicit rejections pass through verbatim (form-level error
// messages), everything else is a transient 503.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error, logMsg string) {
	var rejected *upstream.RejectedError
	if errors.As(err, &rejected) {
		slog.Debug(logMsg, "status", rejected.StatusCode, "detail", rejected.Detail)
		h.writeError(w, rejected.Detail, rejected.StatusCode)
		return
	}
	slog.Error(logMsg, "error", err)
	h.writeError(w, upstreamUnavailableDetail, http.StatusServiceUnavailable)
}
