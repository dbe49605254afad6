// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the Wayfare backend service.
// It defines the API contract for authentication, profile management, travel search, and bookings.
// The package includes both interface definitions and an HTTP-based implementation.
package backend

import (
	"context"

	"wayfare/cli/internal/session"
)

// API defines backend operations the CLI depends on.
// Implementations may call the real HTTP endpoints or provide mocks for tests.
// The embedded session.AuthAPI is the collaborator contract the session store
// drives; the remaining methods cover the travel domain.
type API interface {
	session.AuthAPI

	GetVersion(ctx context.Context) (string, error)

	// SearchDestinations looks up destinations matching a free-text query.
	// No authentication required.
	SearchDestinations(ctx context.Context, query string) ([]Destination, error)
	// SearchFlights lists flights for a route and date.
	SearchFlights(ctx context.Context, accessToken string, q FlightQuery) ([]Flight, error)
	// SearchHotels lists hotels for a destination.
	SearchHotels(ctx context.Context, accessToken, destination string) ([]Hotel, error)
	// ListItineraries returns the caller's saved itineraries.
	ListItineraries(ctx context.Context, accessToken string) ([]Itinerary, error)
	// CreateBooking submits a checkout request and returns the confirmed booking.
	CreateBooking(ctx context.Context, accessToken string, req BookingRequest) (*Booking, error)
}
