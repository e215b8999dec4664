// ABOUTME: Login command exchanging credentials for a persisted cookie session
// ABOUTME: Reads the password from a flag or DUOSPEND_PASSWORD to keep it out of argv history

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	loginUser     string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session cookies",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("DUOSPEND_PASSWORD")
		}
		if loginUser == "" || password == "" {
			return fmt.Errorf("--user and a password (--password or DUOSPEND_PASSWORD) are required")
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		user, err := c.Login(ctx, loginUser, password)
		if err != nil {
			return err
		}

		if err := saveCookies(cookieFilePath(), c.ExportCookies()); err != nil {
			return fmt.Errorf("signed in, but failed to persist session: %w", err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(user)
		}
		fmt.Printf("Signed in as %s (%s)\n", user.Username, user.Email)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginUser, "user", "", "Email or username")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prefer DUOSPEND_PASSWORD)")
	rootCmd.AddCommand(loginCmd)
}
