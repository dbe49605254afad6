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
)

// tripsCmd lists the saved itineraries of the signed-in account.
var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "List your saved itineraries",
	Long: `The trips command lists the itineraries saved to your account with
their destination and travel dates. Attach a booking to an itinerary with
'wayfare book --trip <id>'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		token, err := a.requireAuth(ctx)
		if err != nil {
			if apperrors.IsKind(err, apperrors.NotAuthenticated) {
				fmt.Println("🔒 " + err.Error())
				return nil
			}
			return presentFailure(err, "checking your session")
		}

		stopSpinner := startInlineSpinner(os.Stdout, "Loading itineraries", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		itineraries, err := a.api.ListItineraries(ctx, token)
		stopSpinner()
		if err != nil {
			return presentFailure(err, "loading your itineraries")
		}

		if len(itineraries) == 0 {
			fmt.Println("No itineraries yet")
			return nil
		}

		data := pterm.TableData{{"ID", "Trip", "Destination", "Dates", "Items"}}
		for _, it := range itineraries {
			data = append(data, []string{
				it.ID,
				it.Name,
				it.Destination,
				it.StartDate + " to " + it.EndDate,
				fmt.Sprintf("%d", it.ItemCount),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(tripsCmd)
}
