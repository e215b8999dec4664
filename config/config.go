// ABOUTME: Configuration loader for the session gateway
// ABOUTME: Loads settings from environment variables (and an optional .env file) with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string // development or production; controls the Secure cookie flag

	// Upstream identity backend
	UpstreamURL     string
	UpstreamTimeout int // seconds, bounded deadline on every upstream call (default 5)

	// Frontend origin the guarded catch-all proxies page requests to
	FrontendURL string

	// Route classification (prefix tables; /api/ paths are exempt)
	ProtectedPrefixes []string
	GuestOnlyPrefixes []string
	AdminPrefixes     []string
	SignInPath        string
	DashboardPath     string

	// CORS
	CORSAllowedOrigins []string

	// Rate limiting (requests per minute, per client)
	RateLimitEnabled bool
	RateLimitAuth    int // login/register (default: 5)
	RateLimitRefresh int // refresh (default: 10)
	RateLimitDefault int // everything else on /api/auth (default: 100)

	// Optional shared limiter backend for multi-instance deployments
	RedisURL string
}

var (
	defaultProtected = []string{"/dashboard", "/profile", "/settings", "/expenses", "/budgets"}
	defaultGuestOnly = []string{"/auth/signin", "/auth/signup", "/auth/login", "/auth/register"}
	defaultAdmin     = []string{"/admin"}
)

// Production reports whether the gateway runs with production settings
// (Secure cookies, among other things).
func (c *Config) Production() bool {
	return c.Environment == "production"
}

func Load() (*Config, error) {
	// Local development convenience; absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),

		UpstreamURL:     ensureScheme(os.Getenv("UPSTREAM_API_URL")),
		UpstreamTimeout: getEnvInt("UPSTREAM_TIMEOUT", 5),

		FrontendURL: ensureScheme(getEnv("FRONTEND_URL", "http://localhost:4321")),

		ProtectedPrefixes: getEnvPrefixList("PROTECTED_PREFIXES", defaultProtected),
		GuestOnlyPrefixes: getEnvPrefixList("GUEST_ONLY_PREFIXES", defaultGuestOnly),
		AdminPrefixes:     getEnvPrefixList("ADMIN_PREFIXES", defaultAdmin),
		SignInPath:        getEnv("SIGN_IN_PATH", "/auth/signin"),
		DashboardPath:     getEnv("DASHBOARD_PATH", "/dashboard"),

		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 5),
		RateLimitRefresh: getEnvInt("RATE_LIMIT_REFRESH", 10),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),

		RedisURL: os.Getenv("REDIS_URL"),
	}

	if cfg.UpstreamURL == "" {
		return nil, fmt.Errorf("UPSTREAM_API_URL is required")
	}
	if cfg.Environment != "development" && cfg.Environment != "production" {
		return nil, fmt.Errorf("ENVIRONMENT must be development or production, got %q", cfg.Environment)
	}
	if cfg.UpstreamTimeout < 1 || cfg.UpstreamTimeout > 60 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be between 1 and 60 seconds, got %d", cfg.UpstreamTimeout)
	}

	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_AUTH", cfg.RateLimitAuth},
		{"RATE_LIMIT_REFRESH", cfg.RateLimitRefresh},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	for _, table := range [][]string{cfg.ProtectedPrefixes, cfg.GuestOnlyPrefixes, cfg.AdminPrefixes} {
		for _, p := range table {
			if !strings.HasPrefix(p, "/") {
				return nil, fmt.Errorf("route prefix %q must start with /", p)
			}
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnvPrefixList(key string, defaultValue []string) []string {
	if list := getEnvStringList(key); list != nil {
		return list
	}
	return defaultValue
}

// ensureScheme adds http:// to bare host:port values so local setups
// don't silently produce relative upstream URLs.
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
