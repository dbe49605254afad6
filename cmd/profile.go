// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "wayfare/cli/internal/errors"
	"wayfare/cli/internal/session"
)

var (
	profileFirstName string
	profileLastName  string
	profileAvatar    string
)

// profileCmd fetches the account record from the backend and shows it. With
// any of the update flags it patches the profile instead; only flags the user
// actually set are sent, so unset fields are left alone server-side.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your account profile",
	Long: `The profile command fetches your account record from the Wayfare
backend and displays it. The fetched record also refreshes the cached session
snapshot used by 'wayfare whoami'.

With --first-name, --last-name, or --avatar the command updates the profile
instead. Only the flags you pass are changed.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if _, err := a.requireAuth(ctx); err != nil {
			if apperrors.IsKind(err, apperrors.NotAuthenticated) {
				fmt.Println("🔒 " + err.Error())
				return nil
			}
			return presentFailure(err, "checking your session")
		}

		update := session.ProfileUpdate{}
		if cmd.Flags().Changed("first-name") {
			update.FirstName = &profileFirstName
		}
		if cmd.Flags().Changed("last-name") {
			update.LastName = &profileLastName
		}
		if cmd.Flags().Changed("avatar") {
			update.Avatar = &profileAvatar
		}
		updating := update.FirstName != nil || update.LastName != nil || update.Avatar != nil

		if updating {
			stopSpinner := startInlineSpinner(os.Stdout, "Updating profile", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
			err = a.store.UpdateUser(ctx, update)
			stopSpinner()
			if err != nil {
				return presentFailure(err, "updating your profile")
			}
			fmt.Println("✅ Profile updated")
		} else {
			stopSpinner := startInlineSpinner(os.Stdout, "Fetching profile", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
			err = a.store.RefreshUser(ctx)
			stopSpinner()
			if err != nil {
				// The cached snapshot is still intact; show it with a warning.
				pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprint("⚠️  Could not reach the server; showing cached profile"))
			}
		}

		u := a.store.User()
		if u == nil {
			fmt.Println("No profile available")
			return nil
		}
		printProfile(u)
		return nil
	},
}

func printProfile(u *session.User) {
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Email:  ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(u.Email))
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Name:   ") + pterm.NewStyle(pterm.FgCyan).Sprint(u.FirstName+" "+u.LastName))
	if u.Avatar != "" {
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Avatar: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(u.Avatar))
	}
	pterm.Println()
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profileFirstName, "first-name", "", "New first name")
	profileCmd.Flags().StringVar(&profileLastName, "last-name", "", "New last name")
	profileCmd.Flags().StringVar(&profileAvatar, "avatar", "", "New avatar URL")
}
