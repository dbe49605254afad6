// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	apperrors "wayfare/cli/internal/errors"
)

// Destination is a bookable place as the search endpoint reports it.
type Destination struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Summary string  `json:"summary"`
	Rating  float64 `json:"rating"`
}

// FlightQuery narrows a flight search to a route and travel date.
type FlightQuery struct {
	Origin      string
	Destination string
	// Date is the travel date in YYYY-MM-DD form; empty means any.
	Date string
}

// Flight is a single bookable flight offer.
type Flight struct {
	ID           string    `json:"id"`
	Airline      string    `json:"airline"`
	FlightNumber string    `json:"flight_number"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	Departure    time.Time `json:"departure"`
	Arrival      time.Time `json:"arrival"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	SeatsLeft    int       `json:"seats_left"`
}

// Hotel is a single bookable hotel offer.
type Hotel struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Destination   string  `json:"destination"`
	Address       string  `json:"address"`
	Rating        float64 `json:"rating"`
	PricePerNight float64 `json:"price_per_night"`
	Currency      string  `json:"currency"`
}

// Itinerary is a saved trip plan.
type Itinerary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	ItemCount   int    `json:"item_count"`
}

// BookingRequest is a checkout submission. At least one of FlightID and
// HotelID must be set; the backend validates the combination.
type BookingRequest struct {
	ItineraryID string `json:"itinerary_id,omitempty"`
	FlightID    string `json:"flight_id,omitempty"`
	HotelID     string `json:"hotel_id,omitempty"`
	Guests      int    `json:"guests"`
	Notes       string `json:"notes,omitempty"`
}

// Booking is a confirmed checkout as the backend reports it.
type Booking struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchDestinations calls GET /v1/destinations/search. No authentication required.
func (h *HTTP) SearchDestinations(ctx context.Context, query string) ([]Destination, error) {
	p := pathDestinations + "?q=" + url.QueryEscape(query)
	var out struct {
		Destinations []Destination `json:"destinations"`
	}
	if err := h.doJSON(ctx, http.MethodGet, p, "", nil, &out); err != nil {
		return nil, classify(err, apperrors.Transient)
	}
	return out.Destinations, nil
}

// SearchFlights calls GET /v1/flights/search with the route and date as query
// parameters.
func (h *HTTP) SearchFlights(ctx context.Context, accessToken string, q FlightQuery) ([]Flight, error) {
	params := url.Values{}
	params.Set("from", q.Origin)
	params.Set("to", q.Destination)
	if q.Date != "" {
		params.Set("date", q.Date)
	}
	var out struct {
		Flights []Flight `json:"flights"`
	}
	if err := h.doJSON(ctx, http.MethodGet, pathFlights+"?"+params.Encode(), accessToken, nil, &out); err != nil {
		return nil, classify(err, apperrors.NotAuthenticated)
	}
	return out.Flights, nil
}

// SearchHotels calls GET /v1/hotels/search for a destination.
func (h *HTTP) SearchHotels(ctx context.Context, accessToken, destination string) ([]Hotel, error) {
	p := pathHotels + "?destination=" + url.QueryEscape(destination)
	var out struct {
		Hotels []Hotel `json:"hotels"`
	}
	if err := h.doJSON(ctx, http.MethodGet, p, accessToken, nil, &out); err != nil {
		return nil, classify(err, apperrors.NotAuthenticated)
	}
	return out.Hotels, nil
}

// ListItineraries calls GET /v1/itineraries for the current account.
func (h *HTTP) ListItineraries(ctx context.Context, accessToken string) ([]Itinerary, error) {
	var out struct {
		Itineraries []Itinerary `json:"itineraries"`
	}
	if err := h.doJSON(ctx, http.MethodGet, pathItineraries, accessToken, nil, &out); err != nil {
		return nil, classify(err, apperrors.NotAuthenticated)
	}
	return out.Itineraries, nil
}

// CreateBooking calls POST /v1/bookings and returns the confirmed booking.
func (h *HTTP) CreateBooking(ctx context.Context, accessToken string, req BookingRequest) (*Booking, error) {
	if req.FlightID == "" && req.HotelID == "" {
		return nil, errors.New("booking requires a flight or a hotel")
	}
	if req.Guests <= 0 {
		req.Guests = 1
	}
	var out Booking
	if err := h.doJSON(ctx, http.MethodPost, pathBookings, accessToken, req, &out); err != nil {
		return nil, classify(err, apperrors.NotAuthenticated)
	}
	return &out, nil
}
