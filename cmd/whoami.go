package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whoamiCmd shows the signed-in account from the cached session snapshot.
// It never touches the network; 'wayfare profile' is the command that
// re-reads the account from the backend.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command displays the account this CLI is signed in as,
using the session snapshot stored in the OS keychain. It works offline.

If no valid session exists, it will indicate that you are not logged in.
Use 'wayfare profile' to fetch the latest account details from the server.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if !a.store.IsAuthenticated() {
			fmt.Println("🔒 You're not logged in yet!")
			fmt.Println("   Run 'wayfare login' to get started.")
			return nil
		}

		u := a.store.User()
		if u == nil || u.Email == "" {
			// Tokens without a snapshot should not survive hydration, but
			// fall back gracefully if they somehow do.
			fmt.Println("👤 Logged in (profile not cached; run 'wayfare profile')")
			return nil
		}
		fmt.Printf("👤 Current user: %s\n", u.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
