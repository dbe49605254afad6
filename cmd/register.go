// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "wayfare/cli/internal/errors"
	"wayfare/cli/internal/session"
)

var (
	registerEmail     string
	registerFirstName string
	registerLastName  string
)

// registerCmd creates a new Wayfare account and signs it in. The backend
// returns a token pair on success, so there is no separate login step.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Wayfare account",
	Long: `The register command creates a new Wayfare account and signs you in
immediately. Email and name can be passed as flags or entered interactively;
the password is always read without echo.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if a.store.IsAuthenticated() {
			if u := a.store.User(); u != nil {
				fmt.Printf("Already logged in as %s; run 'wayfare logout' first\n", u.Email)
				return nil
			}
		}

		email := registerEmail
		if email == "" {
			if email, err = promptLine("Email: "); err != nil {
				return err
			}
		}
		if email == "" {
			return fmt.Errorf("email is required")
		}
		firstName := registerFirstName
		if firstName == "" {
			if firstName, err = promptLine("First name: "); err != nil {
				return err
			}
		}
		lastName := registerLastName
		if lastName == "" {
			if lastName, err = promptLine("Last name: "); err != nil {
				return err
			}
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
		if password == "" {
			return fmt.Errorf("password is required")
		}

		stopSpinner := startInlineSpinner(os.Stdout, "Creating account", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		err = a.store.Register(ctx, session.Registration{
			Email:     email,
			Password:  password,
			FirstName: firstName,
			LastName:  lastName,
		})
		stopSpinner()

		if err != nil {
			if apperrors.IsKind(err, apperrors.RegistrationInvalid) {
				fmt.Println("❌ Registration failed: " + err.Error())
				return err
			}
			return presentFailure(err, "creating your account")
		}

		fmt.Printf("✅ Account created. Welcome aboard, %s!\n", firstName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerFirstName, "first-name", "", "First name (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerLastName, "last-name", "", "Last name (prompted when omitted)")
}
