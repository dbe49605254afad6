// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "wayfare/cli/internal/errors"
)

// expirySkew is how close to expiry an access token may be before it is
// refreshed ahead of use, to avoid losing the race against the clock mid-request.
const expirySkew = 30 * time.Second

// ValidAccessToken returns an access token ready for authenticated calls,
// refreshing the pair first when the current token is expired or about to
// expire. Tokens whose expiry cannot be read locally are returned as-is; the
// backend remains the authority and will reject them if they are dead.
func (s *Store) ValidAccessToken(ctx context.Context) (string, error) {
	access, err := s.accessToken()
	if err != nil {
		return "", err
	}

	exp, ok := tokenExpiry(access)
	if !ok || time.Until(exp) > expirySkew {
		return access, nil
	}

	if err := s.RefreshToken(ctx); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil || s.tokens.AccessToken == "" {
		return "", apperrors.New(apperrors.NotAuthenticated, "session cleared during refresh")
	}
	return s.tokens.AccessToken, nil
}

// tokenExpiry extracts the exp claim without verifying the signature. This is
// only used to decide whether a refresh is worth attempting before a request;
// validity is the backend's call.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
