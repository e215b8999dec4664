// ABOUTME: HTTP handler wiring for the session gateway API
// ABOUTME: Builds the upstream client, cookie store, refresher, and resolver from config

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/duospend/gateway/config"
	"github.com/duospend/gateway/cookies"
	"github.com/duospend/gateway/models"
	"github.com/duospend/gateway/session"
	"github.com/duospend/gateway/upstream"
)

type Handler struct {
	cfg       *config.Config
	cookies   *cookies.Store
	upstream  *upstream.Client
	refresher *session.Refresher
	resolver  *session.Resolver
}

func New(cfg *config.Config) *Handler {
	timeout := time.Duration(cfg.UpstreamTimeout) * time.Second
	client := upstream.NewClient(cfg.UpstreamURL, timeout)
	refresher := session.NewRefresher(client, timeout)
	store := cookies.NewStore(cfg.Production())

	return &Handler{
		cfg:       cfg,
		cookies:   store,
		upstream:  client,
		refresher: refresher,
		resolver:  session.NewResolver(client, refresher, store),
	}
}

// Resolver exposes the session resolver so main can wire the route guard.
func (h *Handler) Resolver() *session.Resolver {
	return h.resolver
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, detail string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Detail: detail})
}
