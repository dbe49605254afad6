// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"wayfare/cli/internal/backend"
	apperrors "wayfare/cli/internal/errors"
)

var (
	flightsFrom string
	flightsTo   string
	flightsDate string
)

// flightsCmd searches flight offers for a route. Requires a signed-in session;
// an expired access token is refreshed before the search runs.
var flightsCmd = &cobra.Command{
	Use:   "flights",
	Short: "Search flights for a route",
	Long: `The flights command searches bookable flight offers between two
airports. Pass IATA codes with --from and --to, and optionally a travel date
with --date (YYYY-MM-DD). Book an offer with 'wayfare book --flight <id>'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if flightsFrom == "" || flightsTo == "" {
			return fmt.Errorf("--from and --to are required")
		}
		if flightsDate != "" {
			if _, err := time.Parse("2006-01-02", flightsDate); err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD")
			}
		}

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

		stopSpinner := startInlineSpinner(os.Stdout, "Searching flights", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		flights, err := a.api.SearchFlights(ctx, token, backend.FlightQuery{
			Origin:      flightsFrom,
			Destination: flightsTo,
			Date:        flightsDate,
		})
		stopSpinner()
		if err != nil {
			return presentFailure(err, "searching flights")
		}

		if len(flights) == 0 {
			fmt.Printf("No flights found from %s to %s\n", flightsFrom, flightsTo)
			return nil
		}

		data := pterm.TableData{{"ID", "Flight", "Departure", "Arrival", "Price", "Seats"}}
		for _, f := range flights {
			data = append(data, []string{
				f.ID,
				f.Airline + " " + f.FlightNumber,
				f.Departure.Format("Jan 2 15:04"),
				f.Arrival.Format("Jan 2 15:04"),
				fmt.Sprintf("%.2f %s", f.Price, f.Currency),
				fmt.Sprintf("%d", f.SeatsLeft),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(flightsCmd)
	flightsCmd.Flags().StringVar(&flightsFrom, "from", "", "Origin airport code")
	flightsCmd.Flags().StringVar(&flightsTo, "to", "", "Destination airport code")
	flightsCmd.Flags().StringVar(&flightsDate, "date", "", "Travel date (YYYY-MM-DD)")
}
