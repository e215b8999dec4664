// ABOUTME: Whoami command printing the identity behind the persisted session
// ABOUTME: Re-persists cookies afterwards in case the gateway rotated them

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		user, err := c.Me(ctx)
		if err != nil {
			return err
		}

		// The gateway may have rotated the pair during resolution.
		if err := saveCookies(cookieFilePath(), c.ExportCookies()); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: failed to persist session:", err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(user)
		}

		fmt.Printf("ID:       %s\n", user.ID)
		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Email:    %s\n", user.Email)
		fmt.Printf("Role:     %s\n", user.Role)
		fmt.Printf("Active:   %t\n", user.IsActive)
		fmt.Printf("Verified: %t\n", user.EmailVerified)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
