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

	apperrors "wayfare/cli/internal/errors"
)

// hotelsCmd lists hotel offers for a destination.
var hotelsCmd = &cobra.Command{
	Use:   "hotels <destination>",
	Short: "Search hotels in a destination",
	Long: `The hotels command lists bookable hotels in a destination with their
rating and nightly price. Book one with 'wayfare book --hotel <id>'.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		destination := strings.Join(args, " ")

		token, err := a.requireAuth(ctx)
		if err != nil {
			if apperrors.IsKind(err, apperrors.NotAuthenticated) {
				fmt.Println("🔒 " + err.Error())
				return nil
			}
			return presentFailure(err, "checking your session")
		}

		stopSpinner := startInlineSpinner(os.Stdout, "Searching hotels", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		hotels, err := a.api.SearchHotels(ctx, token, destination)
		stopSpinner()
		if err != nil {
			return presentFailure(err, "searching hotels")
		}

		if len(hotels) == 0 {
			fmt.Printf("No hotels found in %q\n", destination)
			return nil
		}

		data := pterm.TableData{{"ID", "Hotel", "Rating", "Per night", "Address"}}
		for _, h := range hotels {
			data = append(data, []string{
				h.ID,
				h.Name,
				fmt.Sprintf("%.1f", h.Rating),
				fmt.Sprintf("%.2f %s", h.PricePerNight, h.Currency),
				h.Address,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(hotelsCmd)
}
