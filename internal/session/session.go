// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session owns the authenticated-user session for the CLI: the current
// user record, the access/refresh token pair, and the mutating operations that
// move the session between anonymous and authenticated. Credentials are
// persisted through a Vault (backed by the OS keychain in production) under
// three independent slots, and the in-memory state is hydrated from those
// slots once at construction.
//
// The store is the single writer of the session slots. Observers never see a
// half-updated session: every operation either fully succeeds (state change
// plus persistence) or fully fails (no mutation), with the one deliberate
// exception of the refresh-failure cascade, which atomically transitions the
// whole session to anonymous.
package session

import "context"

// User is the authenticated account as the backend last reported it.
// The backend is the authority on every field; the store only snapshots it.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
}

// TokenPair holds the session credentials issued by the backend.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Credentials carries a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries an account-creation request.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate carries the fields a user may change. Nil pointers are omitted
// from the request; the backend computes the merged record and returns it in
// full.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// AuthAPI is the backend collaborator the store drives. The production
// implementation lives in internal/backend; tests substitute fakes.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*User, *TokenPair, error)
	Register(ctx context.Context, reg Registration) (*User, *TokenPair, error)
	// Logout invalidates the access token server-side. Best-effort: the store
	// never lets a failure here affect local state.
	Logout(ctx context.Context, accessToken string) error
	// RefreshToken exchanges a refresh token for a new pair. The backend may
	// rotate the refresh token or omit it to keep the old one.
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetCurrentUser(ctx context.Context, accessToken string) (*User, error)
	UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*User, error)
}

// Vault persists the three session slots (access token, refresh token, user
// snapshot) in durable storage. keychain.Manager satisfies it; tests use an
// in-memory fake.
type Vault interface {
	SaveTokens(accessToken, refreshToken string) error
	LoadTokens() (accessToken, refreshToken string, err error)
	SaveUser(data []byte) error
	LoadUser() ([]byte, error)
	// Clear removes all three slots as a batch.
	Clear() error
}
