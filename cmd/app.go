// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"wayfare/cli/internal/backend"
	"wayfare/cli/internal/config"
	apperrors "wayfare/cli/internal/errors"
	"wayfare/cli/internal/httperrors"
	"wayfare/cli/internal/keychain"
	"wayfare/cli/internal/logging"
	"wayfare/cli/internal/session"
)

// app bundles the pieces every command needs: configuration, the backend
// client, and the session store backed by the OS keychain.
type app struct {
	cfg   config.Config
	log   zerolog.Logger
	api   backend.API
	store *session.Store
}

// newApp loads configuration, opens the keychain, and hydrates the session
// store. The store hydration is synchronous, so commands can check
// IsAuthenticated immediately after this returns.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log := logging.New(cfg.LogLevel)

	km, err := keychain.GetManager()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StorageFailed, "open keychain", err)
	}

	api := backend.New(cfg.APIBaseURL)
	return &app{
		cfg:   cfg,
		log:   log,
		api:   api,
		store: session.NewStore(api, km, log),
	}, nil
}

// requireAuth returns a usable access token or a NotAuthenticated error with
// a hint for the user. Expired tokens are refreshed transparently.
func (a *app) requireAuth(ctx context.Context) (string, error) {
	if !a.store.IsAuthenticated() {
		return "", apperrors.New(apperrors.NotAuthenticated, "you're not logged in; run 'wayfare login' first")
	}
	token, err := a.store.ValidAccessToken(ctx)
	if err != nil {
		if apperrors.IsKind(err, apperrors.RefreshRejected) {
			return "", apperrors.New(apperrors.NotAuthenticated, "your session has expired; run 'wayfare login' again")
		}
		return "", err
	}
	return token, nil
}

// presentFailure prints a failure for human eyes. Transient network errors get
// the full troubleshooting treatment; everything else gets the masked one-liner.
func presentFailure(err error, action string) error {
	if apperrors.IsKind(err, apperrors.Transient) {
		return httperrors.FormatNetworkError(err, action)
	}
	pterm.Println(logging.PresentError("", err))
	return err
}
