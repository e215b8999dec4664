// ABOUTME: CORS middleware for cookie-authenticated cross-origin requests
// ABOUTME: Echoes configured origins with credentials; no wildcard is ever sent

package middleware

import "net/http"

// CORS returns middleware that adds CORS headers for the configured
// origins. Because the gateway authenticates with cookies, responses set
// Allow-Credentials and echo the specific origin instead of a wildcard.
// With an empty origin list, cross-origin requests get no CORS headers
// at all (same-origin deployments need none).
func CORS(allowedOrigins []string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next(w, r)
		}
	}
}
