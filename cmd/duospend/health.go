// ABOUTME: Health command probing gateway and upstream status
// ABOUTME: Exit code 1 when the upstream identity backend is unreachable

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check gateway and upstream health",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		status, err := c.Health(ctx)
		if err != nil {
			return fmt.Errorf("gateway unreachable: %w", err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(status)
		}

		fmt.Printf("Gateway:  %s\n", status.Status)
		fmt.Printf("Upstream: %s\n", status.Upstream)

		if status.Upstream != "ok" {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
