// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	apperrors "wayfare/cli/internal/errors"
	"wayfare/cli/internal/session"
	"wayfare/cli/internal/terminal"
)

var loginEmail string

// loginCmd represents the login command for password authentication.
// It prompts for credentials, exchanges them for a token pair, and stores the
// session in the OS keychain so later commands pick it up automatically.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in to your Wayfare account",
	Long: `The login command signs you in with your Wayfare email and password.
On success the session tokens are stored securely in the OS keychain and the
CLI stays signed in across invocations until you run 'wayfare logout' or the
session expires.

The password is read without echo and never written to disk.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if a.store.IsAuthenticated() {
			if u := a.store.User(); u != nil {
				fmt.Printf("Already logged in as %s\n", u.Email)
				return nil
			}
		}

		email := strings.TrimSpace(loginEmail)
		if email == "" {
			email, err = promptLine("Email: ")
			if err != nil {
				return err
			}
		}
		if email == "" {
			return fmt.Errorf("email is required")
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		if password == "" {
			return fmt.Errorf("password is required")
		}

		stopSpinner := startInlineSpinner(os.Stdout, "Signing in", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		err = a.store.Login(ctx, session.Credentials{Email: email, Password: password})
		stopSpinner()

		if err != nil {
			if apperrors.IsKind(err, apperrors.CredentialsRejected) {
				fmt.Println("❌ Login failed: " + err.Error())
				return err
			}
			return presentFailure(err, "signing in")
		}

		if u := a.store.User(); u != nil && u.FirstName != "" {
			fmt.Printf("✅ Welcome back, %s!\n", u.FirstName)
		} else {
			fmt.Printf("✅ Logged in as %s\n", email)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
}

// promptLine reads a single line from stdin and clears the prompt afterwards.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	raw, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	terminal.ClearPreviousLines(len(prompt) + len(raw))
	return strings.TrimSpace(raw), nil
}

// promptPassword reads a password without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
