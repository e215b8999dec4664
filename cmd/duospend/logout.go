// ABOUTME: Logout command ending the session and removing persisted cookies
// ABOUTME: Local cookie file is removed even when the gateway is unreachable

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := c.Logout(ctx); err != nil {
			// Match the gateway's contract: logout never fails for the
			// user. Discard local state regardless.
			fmt.Fprintln(os.Stderr, "Warning: gateway logout failed:", err)
		}

		if err := clearCookies(cookieFilePath()); err != nil {
			return fmt.Errorf("failed to remove session file: %w", err)
		}

		fmt.Println("Signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
