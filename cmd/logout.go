// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command for clearing authentication state.
// Local state is always cleared; the backend is notified best-effort so an
// offline logout still succeeds.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove saved tokens",
	Long: `The logout command clears all session state from the local system,
including access tokens, refresh tokens, and the cached profile. It also
attempts to notify the backend service to invalidate the session (best-effort).

This command removes:
- Session tokens from the OS keychain
- The cached user profile
- Any in-memory session state`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		a.store.Logout(cmd.Context())
		fmt.Println("✅ Signed out; all saved tokens have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
