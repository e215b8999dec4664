// ABOUTME: Declarative route table for the auth proxy endpoints
// ABOUTME: Defines method, path, and rate-limit class per route

package handlers

import "net/http"

// Rate-limit classes referenced by the route table; main maps them to
// configured limiters.
const (
	LimitAuth    = "auth"    // login/register: strictest
	LimitRefresh = "refresh" // refresh: moderate
	LimitDefault = "default" // everything else
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST)
	Path    string           // URL path (e.g. "/api/auth/login")
	Handler http.HandlerFunc // Handler function
	Limit   string           // rate-limit class
}

// Routes returns all API routes for registration. Logout is registered
// for both GET (redirect flow) and POST (fetch flow).
func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/api/auth/login", Handler: h.Login, Limit: LimitAuth},
		{Method: http.MethodPost, Path: "/api/auth/register", Handler: h.Register, Limit: LimitAuth},
		{Method: http.MethodGet, Path: "/api/auth/logout", Handler: h.Logout, Limit: LimitDefault},
		{Method: http.MethodPost, Path: "/api/auth/logout", Handler: h.Logout, Limit: LimitDefault},
		{Method: http.MethodPost, Path: "/api/auth/refresh", Handler: h.Refresh, Limit: LimitRefresh},
		{Method: http.MethodGet, Path: "/api/auth/me", Handler: h.Me, Limit: LimitDefault},
		{Method: http.MethodGet, Path: "/api/auth/health", Handler: h.Health, Limit: LimitDefault},
	}
}
