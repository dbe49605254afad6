// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"wayfare/cli/internal/backend"
	apperrors "wayfare/cli/internal/errors"
	"wayfare/cli/internal/terminal"
)

var (
	bookFlightID string
	bookHotelID  string
	bookTripID   string
	bookGuests   int
	bookNotes    string
	bookYes      bool
)

// bookCmd submits a booking for a flight or hotel offer. The offer IDs come
// from 'wayfare flights' and 'wayfare hotels' output.
var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a flight or hotel",
	Long: `The book command submits a booking for a flight offer, a hotel offer,
or both, optionally attached to a saved itinerary. It shows a summary and asks
for confirmation before anything is charged; pass --yes to skip the prompt.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if bookFlightID == "" && bookHotelID == "" {
			return fmt.Errorf("pass --flight and/or --hotel with an offer ID")
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

		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Booking summary"))
		if bookFlightID != "" {
			pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Flight:    ") + pterm.NewStyle(pterm.FgCyan).Sprint(bookFlightID))
		}
		if bookHotelID != "" {
			pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Hotel:     ") + pterm.NewStyle(pterm.FgCyan).Sprint(bookHotelID))
		}
		if bookTripID != "" {
			pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Itinerary: ") + pterm.NewStyle(pterm.FgCyan).Sprint(bookTripID))
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Guests:    ") + pterm.NewStyle(pterm.FgCyan).Sprint(fmt.Sprintf("%d", bookGuests)))
		pterm.Println()

		if !bookYes {
			pterm.Println(pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint("Confirm this booking?"))
			pterm.Println("  • Press " + pterm.NewStyle(pterm.FgGreen).Sprint("Enter") + " or type " + pterm.NewStyle(pterm.FgGreen).Sprint("yes") + " to confirm")
			pterm.Println("  • Type " + pterm.NewStyle(pterm.FgRed).Sprint("no") + " to cancel")
			pterm.Print("Your answer: ")
			reader := bufio.NewReader(os.Stdin)
			ans, _ := reader.ReadString('\n')
			terminal.ClearPreviousLines(len("Your answer: ") + len(ans))
			ans = strings.ToLower(strings.TrimSpace(ans))
			if ans != "" && ans != "y" && ans != "yes" {
				fmt.Println("Booking cancelled")
				return nil
			}
		}

		cursor.Hide()
		stopSpinner := startInlineSpinner(os.Stdout, "Booking your trip", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		booking, err := a.api.CreateBooking(ctx, token, backend.BookingRequest{
			ItineraryID: bookTripID,
			FlightID:    bookFlightID,
			HotelID:     bookHotelID,
			Guests:      bookGuests,
			Notes:       bookNotes,
		})
		stopSpinner()
		cursor.Show()
		if err != nil {
			return presentFailure(err, "booking your trip")
		}

		pterm.Println()
		pterm.Println("✅ Booked! Reference " + pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint(booking.Reference))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Status: ") + booking.Status)
		if booking.Total > 0 {
			pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Total:  ") + fmt.Sprintf("%.2f %s", booking.Total, booking.Currency))
		}
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bookCmd)
	bookCmd.Flags().StringVar(&bookFlightID, "flight", "", "Flight offer ID to book")
	bookCmd.Flags().StringVar(&bookHotelID, "hotel", "", "Hotel offer ID to book")
	bookCmd.Flags().StringVar(&bookTripID, "trip", "", "Itinerary to attach the booking to")
	bookCmd.Flags().IntVar(&bookGuests, "guests", 1, "Number of guests")
	bookCmd.Flags().StringVar(&bookNotes, "notes", "", "Note for the booking")
	bookCmd.Flags().BoolVarP(&bookYes, "yes", "y", false, "Skip the confirmation prompt")
}
