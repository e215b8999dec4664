// ABOUTME: Entry point for the DuoSpend session gateway
// ABOUTME: Wires config, handlers, rate limiters, and the route guard into an HTTP server

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duospend/gateway/config"
	"github.com/duospend/gateway/handlers"
	"github.com/duospend/gateway/logger"
	"github.com/duospend/gateway/middleware"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting DuoSpend session gateway", "environment", cfg.Environment)
	slog.Info("Upstream identity backend configured", "url", cfg.UpstreamURL)
	slog.Info("Frontend renderer configured", "url", cfg.FrontendURL)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opt)
		slog.Info("Shared rate limiter enabled", "addr", opt.Addr)
	}

	h := handlers.New(cfg)

	limiters := map[string]middleware.Limiter{
		handlers.LimitAuth:    buildLimiter(cfg, rdb, cfg.RateLimitAuth),
		handlers.LimitRefresh: buildLimiter(cfg, rdb, cfg.RateLimitRefresh),
		handlers.LimitDefault: buildLimiter(cfg, rdb, cfg.RateLimitDefault),
	}

	mux := http.NewServeMux()
	cors := middleware.CORS(cfg.CORSAllowedOrigins)
	registerAPIRoutes(mux, h.Routes(), limiters, cors)

	// Every non-API request passes the route guard before reaching the
	// frontend renderer.
	pages, err := handlers.PageProxy(cfg.FrontendURL)
	if err != nil {
		slog.Error("Invalid FRONTEND_URL", "error", err)
		os.Exit(1)
	}
	guard := middleware.Guard(middleware.GuardConfig{
		ProtectedPrefixes: cfg.ProtectedPrefixes,
		GuestOnlyPrefixes: cfg.GuestOnlyPrefixes,
		AdminPrefixes:     cfg.AdminPrefixes,
		ExemptPrefixes:    []string{"/api/"},
		SignInPath:        cfg.SignInPath,
		DashboardPath:     cfg.DashboardPath,
	}, h.Resolver().Resolve)
	mux.HandleFunc("/", middleware.Chain(pages, middleware.LogRequest, guard))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// registerAPIRoutes mounts the route table with method-specific patterns
// plus one OPTIONS pattern per path. Browser preflights arrive as OPTIONS
// and must reach the CORS middleware; without the extra pattern they
// would fall through to the page catch-all.
func registerAPIRoutes(mux *http.ServeMux, routes []handlers.Route, limiters map[string]middleware.Limiter, cors func(http.HandlerFunc) http.HandlerFunc) {
	preflightDone := make(map[string]bool)
	for _, rt := range routes {
		mux.HandleFunc(rt.Method+" "+rt.Path, middleware.Chain(
			rt.Handler,
			middleware.LogRequest,
			cors,
			middleware.RateLimit(limiters[rt.Limit], middleware.ClientIP),
		))

		if !preflightDone[rt.Path] {
			preflightDone[rt.Path] = true
			mux.HandleFunc("OPTIONS "+rt.Path, middleware.Chain(
				methodNotAllowed,
				middleware.LogRequest,
				cors,
			))
		}
	}
}

// methodNotAllowed sits behind the CORS middleware on the OPTIONS
// patterns; CORS answers every OPTIONS itself, so this only runs if that
// contract ever changes.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// buildLimiter picks the shared Redis limiter when configured, otherwise
// a per-instance fixed window. Returns nil when limiting is disabled.
func buildLimiter(cfg *config.Config, rdb *redis.Client, limit int) middleware.Limiter {
	if !cfg.RateLimitEnabled {
		return nil
	}
	if rdb != nil {
		return middleware.NewRedisLimiter(rdb, limit, time.Minute)
	}
	return middleware.NewFixedWindowLimiter(limit, time.Minute)
}
