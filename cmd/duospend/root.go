// ABOUTME: Root command for the duospend gateway CLI
// ABOUTME: Handles global flags and session-cookie persistence between invocations

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duospend/gateway/client"
)

var (
	apiURL     string
	jsonOutput bool
	cookiePath string
)

const defaultAPIURL = "http://localhost:8080"

var rootCmd = &cobra.Command{
	Use:   "duospend",
	Short: "CLI for the DuoSpend session gateway",
	Long: `duospend talks to a running DuoSpend session gateway.

It is meant for smoke tests and CI checks: sign in, inspect the resolved
identity, sign out, and probe gateway health.

Environment Variables:
  DUOSPEND_API_URL  Gateway URL (default: http://localhost:8080)`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Gateway URL (overrides DUOSPEND_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&cookiePath, "cookie-file", "", "Session cookie file (default: ~/.duospend/session.json)")
}

func gatewayURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("DUOSPEND_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

func cookieFilePath() string {
	if cookiePath != "" {
		return cookiePath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".duospend-session.json"
	}
	return filepath.Join(home, ".duospend", "session.json")
}

// newClient builds a gateway client with any persisted session cookies
// loaded into its jar.
func newClient() (*client.Client, error) {
	c, err := client.New(gatewayURL())
	if err != nil {
		return nil, err
	}
	if cs, err := loadCookies(cookieFilePath()); err == nil {
		c.ImportCookies(cs)
	}
	return c, nil
}
