// ABOUTME: Health endpoint reporting gateway liveness and upstream reachability
// ABOUTME: Used by deployment probes and the operational CLI

package handlers

import "net/http"

// Health reports gateway status and whether the identity backend is
// reachable. The gateway itself is stateless, so "ok" plus a reachable
// upstream means fully operational.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	upstreamStatus := "ok"
	if err := h.upstream.Ping(r.Context()); err != nil {
		upstreamStatus = "unreachable"
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"upstream": upstreamStatus,
	})
}
