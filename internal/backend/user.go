// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"

	apperrors "wayfare/cli/internal/errors"
	"wayfare/cli/internal/session"
)

// GetCurrentUser calls GET /v1/users/me and returns the account record.
// A 401 maps to NotAuthenticated; the session store treats other failures as
// transient and keeps the session.
func (h *HTTP) GetCurrentUser(ctx context.Context, accessToken string) (*session.User, error) {
	var out session.User
	if err := h.doJSON(ctx, http.MethodGet, pathMe, accessToken, nil, &out); err != nil {
		return nil, classify(err, apperrors.NotAuthenticated)
	}
	if out.ID == "" && out.Email == "" {
		return nil, errors.New("malformed user response")
	}
	return &out, nil
}

// UpdateProfile calls PATCH /v1/users/me with the changed fields and returns
// the full merged record. The backend is the authority on the merge result.
func (h *HTTP) UpdateProfile(ctx context.Context, accessToken string, update session.ProfileUpdate) (*session.User, error) {
	var out session.User
	if err := h.doJSON(ctx, http.MethodPatch, pathMe, accessToken, update, &out); err != nil {
		return nil, classify(err, apperrors.NotAuthenticated)
	}
	if out.ID == "" && out.Email == "" {
		return nil, errors.New("malformed user response")
	}
	return &out, nil
}
