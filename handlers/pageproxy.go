// ABOUTME: Reverse proxy for guarded page requests to the frontend renderer
// ABOUTME: Forwards the resolved identity via trusted headers, never tokens

package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/duospend/gateway/middleware"
)

// Trusted identity headers set for the renderer. Inbound values are
// always stripped so clients cannot spoof them.
const (
	userIDHeader   = "X-Auth-User-Id"
	usernameHeader = "X-Auth-Username"
	roleHeader     = "X-Auth-Role"
)

// PageProxy returns the catch-all handler for page requests. The route
// guard runs in front of it; by the time a request arrives here it has
// already passed classification, so the proxy only relays it to the
// frontend renderer together with the resolved identity.
func PageProxy(frontendURL string) (http.HandlerFunc, error) {
	target, err := url.Parse(frontendURL)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Error("Page proxy failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Frontend unavailable", http.StatusBadGateway)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(userIDHeader)
		r.Header.Del(usernameHeader)
		r.Header.Del(roleHeader)

		if identity := middleware.GetIdentity(r); identity != nil {
			r.Header.Set(userIDHeader, identity.ID)
			r.Header.Set(usernameHeader, identity.Username)
			r.Header.Set(roleHeader, identity.Role)
		}

		proxy.ServeHTTP(w, r)
	}, nil
}
