// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// searchCmd searches destinations by free-text query. This is the only travel
// command that works without logging in.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search travel destinations",
	Long: `The search command looks up destinations matching a free-text query
and lists them with their country and traveller rating. No login is required.

Use the destination name with 'wayfare hotels' or its airport code with
'wayfare flights' to continue planning.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")

		stopSpinner := startInlineSpinner(os.Stdout, "Searching destinations", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		destinations, err := a.api.SearchDestinations(cmd.Context(), query)
		stopSpinner()
		if err != nil {
			return presentFailure(err, "searching destinations")
		}

		if len(destinations) == 0 {
			fmt.Printf("No destinations found for %q\n", query)
			return nil
		}

		data := pterm.TableData{{"Destination", "Country", "Rating", "Summary"}}
		for _, d := range destinations {
			data = append(data, []string{d.Name, d.Country, fmt.Sprintf("%.1f", d.Rating), d.Summary})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
