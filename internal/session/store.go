// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	apperrors "wayfare/cli/internal/errors"
)

// Store is the single source of truth for "who is logged in and with what
// credentials". It is constructed once per process and mutated only through
// the operations below.
type Store struct {
	api   AuthAPI
	vault Vault
	log   zerolog.Logger

	// refresh collapses concurrent RefreshToken calls into one exchange; a
	// rotating-refresh-token backend invalidates the old token on first use,
	// so racing refreshes would log each other out.
	refresh singleflight.Group

	mu      sync.RWMutex
	user    *User
	tokens  *TokenPair
	loading bool
	lastErr string
}

// NewStore builds a session store and hydrates it synchronously from the
// vault, so callers see the persisted session immediately after construction.
func NewStore(api AuthAPI, vault Vault, log zerolog.Logger) *Store {
	s := &Store{api: api, vault: vault, log: log}
	s.hydrate()
	return s
}

// hydrate derives the initial state from the vault slots. Token absence is
// authoritative: a user snapshot without a usable access token is stale (for
// example tokens revoked externally) and the whole slot set is wiped rather
// than exposing a half-authenticated session. The same applies in reverse
// when tokens exist but the snapshot is missing or unreadable.
func (s *Store) hydrate() {
	access, refresh, err := s.vault.LoadTokens()
	if err != nil {
		s.log.Warn().Err(err).Msg("session: cannot read stored tokens, starting anonymous")
		return
	}
	if access == "" {
		if data, err := s.vault.LoadUser(); err == nil && len(data) > 0 {
			s.log.Debug().Msg("session: clearing stale user snapshot without tokens")
			s.clearVault()
		}
		return
	}
	data, err := s.vault.LoadUser()
	if err != nil || len(data) == 0 {
		s.log.Debug().Msg("session: tokens present without user snapshot, wiping")
		s.clearVault()
		return
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		s.log.Warn().Err(err).Msg("session: corrupt user snapshot, wiping")
		s.clearVault()
		return
	}
	s.user = &u
	s.tokens = &TokenPair{AccessToken: access, RefreshToken: refresh}
}

// Login authenticates with the backend and, on success, atomically installs
// the returned session. On failure the prior session fields are untouched and
// the backend's error is returned to the caller.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	s.begin()
	user, tokens, err := s.api.Login(ctx, creds)
	if err != nil {
		return s.fail(err)
	}
	if err := s.install(user, tokens); err != nil {
		return s.fail(err)
	}
	s.settle()
	return nil
}

// Register creates an account and logs it in; contract identical to Login.
func (s *Store) Register(ctx context.Context, reg Registration) error {
	s.begin()
	user, tokens, err := s.api.Register(ctx, reg)
	if err != nil {
		return s.fail(err)
	}
	if err := s.install(user, tokens); err != nil {
		return s.fail(err)
	}
	s.settle()
	return nil
}

// Logout clears the session unconditionally. Locking the local session must
// work offline, so the in-memory state and the vault slots go first and the
// server notification is best-effort afterwards; its failure is logged and
// swallowed, and never re-arms the session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	var access string
	if s.tokens != nil {
		access = s.tokens.AccessToken
	}
	s.user = nil
	s.tokens = nil
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()

	s.clearVault()

	if access != "" {
		if err := s.api.Logout(ctx, access); err != nil {
			s.log.Debug().Err(err).Msg("session: logout notification failed")
		}
	}
}

// RefreshToken exchanges the stored refresh token for a new pair. A missing
// refresh token fails immediately without touching the network. A backend
// failure is conclusive proof the session is dead, so it cascades into a full
// Logout before the original error is re-signalled.
func (s *Store) RefreshToken(ctx context.Context) error {
	s.mu.RLock()
	var refreshToken string
	if s.tokens != nil {
		refreshToken = s.tokens.RefreshToken
	}
	s.mu.RUnlock()
	if refreshToken == "" {
		return apperrors.New(apperrors.NotAuthenticated, "no refresh token in session")
	}

	_, err, _ := s.refresh.Do("refresh", func() (any, error) {
		return nil, s.doRefresh(ctx, refreshToken)
	})
	return err
}

func (s *Store) doRefresh(ctx context.Context, refreshToken string) error {
	s.begin()
	tokens, err := s.api.RefreshToken(ctx, refreshToken)
	if err != nil {
		s.log.Warn().Str("kind", string(apperrors.KindOf(err))).Msg("session: token refresh failed, clearing session")
		s.Logout(ctx)
		return err
	}
	if tokens.RefreshToken == "" {
		// Backend kept the old refresh token instead of rotating it.
		tokens.RefreshToken = refreshToken
	}
	if err := s.vault.SaveTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return s.fail(apperrors.Wrap(apperrors.StorageFailed, "persist refreshed tokens", err))
	}
	s.mu.Lock()
	s.tokens = tokens
	s.loading = false
	s.mu.Unlock()
	return nil
}

// UpdateUser sends a partial profile update and installs the full record the
// backend returns, replacing rather than merging the in-memory copy. On
// failure both the in-memory record and the persisted snapshot are untouched.
func (s *Store) UpdateUser(ctx context.Context, update ProfileUpdate) error {
	access, err := s.accessToken()
	if err != nil {
		return err
	}
	s.begin()
	user, err := s.api.UpdateProfile(ctx, access, update)
	if err != nil {
		return s.fail(err)
	}
	if err := s.replaceUser(user); err != nil {
		return s.fail(err)
	}
	s.settle()
	return nil
}

// RefreshUser re-fetches the current user and replaces the stored record.
// A failure here is ambiguous (a network blip is not proof of an invalid
// credential), so it is logged and returned without deauthenticating.
func (s *Store) RefreshUser(ctx context.Context) error {
	access, err := s.accessToken()
	if err != nil {
		return err
	}
	s.begin()
	user, err := s.api.GetCurrentUser(ctx, access)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: user refresh failed, keeping session")
		return s.fail(err)
	}
	if err := s.replaceUser(user); err != nil {
		return s.fail(err)
	}
	s.settle()
	return nil
}

// User returns a copy of the current user record, or nil when anonymous.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Tokens returns a copy of the current token pair, or nil when anonymous.
func (s *Store) Tokens() *TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return nil
	}
	t := *s.tokens
	return &t
}

// IsAuthenticated reports whether a usable token pair is installed. The flag
// is derived, never stored, so it cannot drift from the tokens.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens != nil && s.tokens.AccessToken != ""
}

// IsLoading reports whether a mutating operation is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the message of the last failed operation, or "" when the most
// recent operation succeeded.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// begin marks an operation in flight and clears the previous error.
func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

// settle marks a successful operation as finished.
func (s *Store) settle() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// fail records the operation error and re-signals it to the caller.
func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.loading = false
	s.mu.Unlock()
	return err
}

func (s *Store) accessToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil || s.tokens.AccessToken == "" {
		return "", apperrors.New(apperrors.NotAuthenticated, "not logged in")
	}
	return s.tokens.AccessToken, nil
}

// install persists the new session to the vault and only then swaps the
// in-memory state. If the second slot write fails the first is rolled back,
// so storage never disagrees with memory.
func (s *Store) install(user *User, tokens *TokenPair) error {
	snapshot, err := json.Marshal(user)
	if err != nil {
		return apperrors.Wrap(apperrors.StorageFailed, "encode user snapshot", err)
	}

	prevAccess, prevRefresh, _ := s.vault.LoadTokens()
	prevUser, _ := s.vault.LoadUser()

	if err := s.vault.SaveTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return apperrors.Wrap(apperrors.StorageFailed, "persist tokens", err)
	}
	if err := s.vault.SaveUser(snapshot); err != nil {
		s.restoreVault(prevAccess, prevRefresh, prevUser)
		return apperrors.Wrap(apperrors.StorageFailed, "persist user snapshot", err)
	}

	s.mu.Lock()
	s.user = user
	s.tokens = tokens
	s.mu.Unlock()
	return nil
}

// replaceUser persists the snapshot first and swaps memory only on success.
func (s *Store) replaceUser(user *User) error {
	snapshot, err := json.Marshal(user)
	if err != nil {
		return apperrors.Wrap(apperrors.StorageFailed, "encode user snapshot", err)
	}
	if err := s.vault.SaveUser(snapshot); err != nil {
		return apperrors.Wrap(apperrors.StorageFailed, "persist user snapshot", err)
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

func (s *Store) restoreVault(access, refresh string, userData []byte) {
	if access == "" && len(userData) == 0 {
		s.clearVault()
		return
	}
	if err := s.vault.SaveTokens(access, refresh); err != nil {
		s.log.Error().Err(err).Msg("session: rollback of token slots failed")
	}
	if len(userData) > 0 {
		if err := s.vault.SaveUser(userData); err != nil {
			s.log.Error().Err(err).Msg("session: rollback of user snapshot failed")
		}
	}
}

func (s *Store) clearVault() {
	if err := s.vault.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("session: clearing vault slots failed")
	}
}
