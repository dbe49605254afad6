// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "wayfare/cli/internal/errors"
	"wayfare/cli/internal/session"
)

// fakeAPI implements session.AuthAPI with pluggable behavior per method.
type fakeAPI struct {
	loginFn    func(ctx context.Context, creds session.Credentials) (*session.User, *session.TokenPair, error)
	registerFn func(ctx context.Context, reg session.Registration) (*session.User, *session.TokenPair, error)
	logoutFn   func(ctx context.Context, accessToken string) error
	refreshFn  func(ctx context.Context, refreshToken string) (*session.TokenPair, error)
	getUserFn  func(ctx context.Context, accessToken string) (*session.User, error)
	updateFn   func(ctx context.Context, accessToken string, update session.ProfileUpdate) (*session.User, error)

	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
	logoutToken  string
}

func (f *fakeAPI) Login(ctx context.Context, creds session.Credentials) (*session.User, *session.TokenPair, error) {
	if f.loginFn == nil {
		return nil, nil, errors.New("unexpected Login call")
	}
	return f.loginFn(ctx, creds)
}

func (f *fakeAPI) Register(ctx context.Context, reg session.Registration) (*session.User, *session.TokenPair, error) {
	if f.registerFn == nil {
		return nil, nil, errors.New("unexpected Register call")
	}
	return f.registerFn(ctx, reg)
}

func (f *fakeAPI) Logout(ctx context.Context, accessToken string) error {
	f.logoutCalls.Add(1)
	f.logoutToken = accessToken
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx, accessToken)
}

func (f *fakeAPI) RefreshToken(ctx context.Context, refreshToken string) (*session.TokenPair, error) {
	f.refreshCalls.Add(1)
	if f.refreshFn == nil {
		return nil, errors.New("unexpected RefreshToken call")
	}
	return f.refreshFn(ctx, refreshToken)
}

func (f *fakeAPI) GetCurrentUser(ctx context.Context, accessToken string) (*session.User, error) {
	if f.getUserFn == nil {
		return nil, errors.New("unexpected GetCurrentUser call")
	}
	return f.getUserFn(ctx, accessToken)
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, accessToken string, update session.ProfileUpdate) (*session.User, error) {
	if f.updateFn == nil {
		return nil, errors.New("unexpected UpdateProfile call")
	}
	return f.updateFn(ctx, accessToken, update)
}

// memVault is an in-memory session.Vault with injectable write failures.
type memVault struct {
	mu            sync.Mutex
	access        string
	refresh       string
	user          []byte
	saveTokensErr error
	saveUserErr   error
}

func (v *memVault) SaveTokens(accessToken, refreshToken string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.saveTokensErr != nil {
		return v.saveTokensErr
	}
	if accessToken != "" {
		v.access = accessToken
	}
	if refreshToken != "" {
		v.refresh = refreshToken
	}
	return nil
}

func (v *memVault) LoadTokens() (string, string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.access, v.refresh, nil
}

func (v *memVault) SaveUser(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.saveUserErr != nil {
		return v.saveUserErr
	}
	v.user = append([]byte(nil), data...)
	return nil
}

func (v *memVault) LoadUser() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.user, nil
}

func (v *memVault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.access, v.refresh, v.user = "", "", nil
	return nil
}

func (v *memVault) empty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.access == "" && v.refresh == "" && len(v.user) == 0
}

var testUser = session.User{ID: "1", Email: "a@b.com", FirstName: "Ada", LastName: "Byron"}

func okLogin(user session.User, access, refresh string) func(context.Context, session.Credentials) (*session.User, *session.TokenPair, error) {
	return func(context.Context, session.Credentials) (*session.User, *session.TokenPair, error) {
		u := user
		return &u, &session.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
	}
}

// authenticatedStore returns a store that has completed a successful login.
func authenticatedStore(t *testing.T, api *fakeAPI, vault *memVault) *session.Store {
	t.Helper()
	if api.loginFn == nil {
		api.loginFn = okLogin(testUser, "AT1", "RT1")
	}
	store := session.NewStore(api, vault, zerolog.Nop())
	require.NoError(t, store.Login(context.Background(), session.Credentials{Email: testUser.Email, Password: "x"}))
	require.True(t, store.IsAuthenticated())
	return store
}

func TestLoginSuccessInstallsAndPersistsSession(t *testing.T) {
	api := &fakeAPI{loginFn: okLogin(testUser, "AT1", "RT1")}
	vault := &memVault{}
	store := session.NewStore(api, vault, zerolog.Nop())

	err := store.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	assert.True(t, store.IsAuthenticated())
	assert.False(t, store.IsLoading())
	assert.Empty(t, store.Err())
	require.NotNil(t, store.User())
	assert.Equal(t, "a@b.com", store.User().Email)
	require.NotNil(t, store.Tokens())
	assert.Equal(t, "AT1", store.Tokens().AccessToken)

	// All three slots persisted
	assert.Equal(t, "AT1", vault.access)
	assert.Equal(t, "RT1", vault.refresh)
	var persisted session.User
	require.NoError(t, json.Unmarshal(vault.user, &persisted))
	assert.Equal(t, testUser, persisted)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(context.Context, session.Credentials) (*session.User, *session.TokenPair, error) {
			return nil, nil, apperrors.New(apperrors.CredentialsRejected, "invalid email or password")
		},
	}
	vault := &memVault{}
	store := session.NewStore(api, vault, zerolog.Nop())

	err := store.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.CredentialsRejected))

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
	assert.Nil(t, store.Tokens())
	assert.False(t, store.IsLoading())
	assert.Contains(t, store.Err(), "invalid email or password")
	assert.True(t, vault.empty())
}

func TestLoginRollsBackWhenSnapshotWriteFails(t *testing.T) {
	api := &fakeAPI{loginFn: okLogin(testUser, "AT1", "RT1")}
	vault := &memVault{saveUserErr: errors.New("keychain locked")}
	store := session.NewStore(api, vault, zerolog.Nop())

	err := store.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.StorageFailed))

	// Neither memory nor storage may be left half-written.
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
	assert.True(t, vault.empty(), "token slot must be rolled back with the failed snapshot")
}

func TestRegisterContractMatchesLogin(t *testing.T) {
	api := &fakeAPI{
		registerFn: func(_ context.Context, reg session.Registration) (*session.User, *session.TokenPair, error) {
			if reg.Email == "taken@b.com" {
				return nil, nil, apperrors.New(apperrors.RegistrationInvalid, "email already registered")
			}
			u := session.User{ID: "2", Email: reg.Email, FirstName: reg.FirstName}
			return &u, &session.TokenPair{AccessToken: "AT2", RefreshToken: "RT2"}, nil
		},
	}
	vault := &memVault{}
	store := session.NewStore(api, vault, zerolog.Nop())

	err := store.Register(context.Background(), session.Registration{Email: "taken@b.com", Password: "x"})
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.True(t, vault.empty())

	err = store.Register(context.Background(), session.Registration{Email: "new@b.com", Password: "x", FirstName: "New"})
	require.NoError(t, err)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "new@b.com", store.User().Email)
	assert.Equal(t, "AT2", vault.access)
}

func TestLogoutUnconditionalEvenWhenNotificationFails(t *testing.T) {
	api := &fakeAPI{
		logoutFn: func(context.Context, string) error { return errors.New("network unreachable") },
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	store.Logout(context.Background())

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
	assert.Nil(t, store.Tokens())
	assert.Empty(t, store.Err())
	assert.True(t, vault.empty())
	// The notification was attempted with the pre-logout access token.
	assert.Equal(t, int32(1), api.logoutCalls.Load())
	assert.Equal(t, "AT1", api.logoutToken)
}

func TestLogoutWhileAnonymousSkipsNotification(t *testing.T) {
	api := &fakeAPI{}
	store := session.NewStore(api, &memVault{}, zerolog.Nop())

	store.Logout(context.Background())

	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, int32(0), api.logoutCalls.Load())
}

func TestRefreshTokenSuccessRotatesPairOnly(t *testing.T) {
	api := &fakeAPI{
		refreshFn: func(_ context.Context, refreshToken string) (*session.TokenPair, error) {
			if refreshToken != "RT1" {
				return nil, apperrors.New(apperrors.RefreshRejected, "unknown refresh token")
			}
			return &session.TokenPair{AccessToken: "AT2", RefreshToken: "RT2"}, nil
		},
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	require.NoError(t, store.RefreshToken(context.Background()))

	assert.Equal(t, "AT2", store.Tokens().AccessToken)
	assert.Equal(t, "RT2", store.Tokens().RefreshToken)
	assert.Equal(t, "AT2", vault.access)
	assert.Equal(t, "RT2", vault.refresh)
	// User and authentication flag untouched
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, testUser.Email, store.User().Email)
}

func TestRefreshTokenKeepsOldRefreshWhenNotRotated(t *testing.T) {
	api := &fakeAPI{
		refreshFn: func(context.Context, string) (*session.TokenPair, error) {
			return &session.TokenPair{AccessToken: "AT2"}, nil
		},
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	require.NoError(t, store.RefreshToken(context.Background()))

	assert.Equal(t, "AT2", store.Tokens().AccessToken)
	assert.Equal(t, "RT1", store.Tokens().RefreshToken)
	assert.Equal(t, "RT1", vault.refresh)
}

func TestRefreshTokenFailureCascadesToLogout(t *testing.T) {
	refreshErr := apperrors.New(apperrors.RefreshRejected, "invalid_grant")
	api := &fakeAPI{
		refreshFn: func(context.Context, string) (*session.TokenPair, error) {
			return nil, refreshErr
		},
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	err := store.RefreshToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant", "original failure must be re-signalled")

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
	assert.Nil(t, store.Tokens())
	assert.True(t, vault.empty(), "all three slots must be removed")
}

func TestRefreshTokenWithoutRefreshTokenFailsLocally(t *testing.T) {
	api := &fakeAPI{}
	store := session.NewStore(api, &memVault{}, zerolog.Nop())

	err := store.RefreshToken(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.NotAuthenticated))
	assert.Equal(t, int32(0), api.refreshCalls.Load(), "must not contact the network")
}

func TestConcurrentRefreshesCollapseIntoOneExchange(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{}
	api.refreshFn = func(context.Context, string) (*session.TokenPair, error) {
		close(entered)
		<-release
		return &session.TokenPair{AccessToken: "AT2", RefreshToken: "RT2"}, nil
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = store.RefreshToken(context.Background())
	}()
	<-entered
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = store.RefreshToken(context.Background())
	}()
	time.Sleep(50 * time.Millisecond) // let the second call join the flight
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), api.refreshCalls.Load(), "concurrent refreshes must share one exchange")
	assert.Equal(t, "AT2", store.Tokens().AccessToken)
}

func TestUpdateUserReplacesRecordAndSnapshot(t *testing.T) {
	api := &fakeAPI{
		updateFn: func(_ context.Context, _ string, update session.ProfileUpdate) (*session.User, error) {
			u := testUser
			if update.FirstName != nil {
				u.FirstName = *update.FirstName
			}
			return &u, nil
		},
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	first := "New"
	require.NoError(t, store.UpdateUser(context.Background(), session.ProfileUpdate{FirstName: &first}))

	assert.Equal(t, "New", store.User().FirstName)
	var persisted session.User
	require.NoError(t, json.Unmarshal(vault.user, &persisted))
	assert.Equal(t, "New", persisted.FirstName, "snapshot must hold the backend's merged record")
	assert.Equal(t, testUser.LastName, persisted.LastName)
}

func TestUpdateUserFailureLeavesUserUntouched(t *testing.T) {
	api := &fakeAPI{
		updateFn: func(context.Context, string, session.ProfileUpdate) (*session.User, error) {
			return nil, apperrors.New(apperrors.Transient, "backend unavailable")
		},
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	first := "New"
	err := store.UpdateUser(context.Background(), session.ProfileUpdate{FirstName: &first})
	require.Error(t, err)

	assert.Equal(t, testUser.FirstName, store.User().FirstName)
	assert.True(t, store.IsAuthenticated())
	assert.Contains(t, store.Err(), "backend unavailable")
}

func TestRefreshUserFailureDoesNotDeauthenticate(t *testing.T) {
	api := &fakeAPI{
		getUserFn: func(context.Context, string) (*session.User, error) {
			return nil, apperrors.New(apperrors.Transient, "connection reset")
		},
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	err := store.RefreshUser(context.Background())
	require.Error(t, err)

	assert.True(t, store.IsAuthenticated(), "a transient fetch failure must not log the user out")
	assert.Equal(t, testUser.Email, store.User().Email)
	assert.Equal(t, "AT1", vault.access)
}

func TestRefreshUserReplacesRecord(t *testing.T) {
	api := &fakeAPI{
		getUserFn: func(context.Context, string) (*session.User, error) {
			u := testUser
			u.LastName = "Lovelace"
			return &u, nil
		},
	}
	vault := &memVault{}
	store := authenticatedStore(t, api, vault)

	require.NoError(t, store.RefreshUser(context.Background()))
	assert.Equal(t, "Lovelace", store.User().LastName)
}

func TestColdStartHydratesPersistedSession(t *testing.T) {
	api := &fakeAPI{loginFn: okLogin(testUser, "AT1", "RT1")}
	vault := &memVault{}
	first := session.NewStore(api, vault, zerolog.Nop())
	require.NoError(t, first.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"}))

	// Simulated reload: fresh store over the same vault.
	second := session.NewStore(api, vault, zerolog.Nop())
	assert.True(t, second.IsAuthenticated())
	require.NotNil(t, second.User())
	assert.Equal(t, testUser.Email, second.User().Email)
	assert.Equal(t, "AT1", second.Tokens().AccessToken)
	assert.Equal(t, "RT1", second.Tokens().RefreshToken)
}

func TestColdStartClearsStaleSnapshotWithoutTokens(t *testing.T) {
	vault := &memVault{}
	snapshot, err := json.Marshal(testUser)
	require.NoError(t, err)
	require.NoError(t, vault.SaveUser(snapshot))
	// No tokens: the snapshot is stale, e.g. tokens revoked externally.

	store := session.NewStore(&fakeAPI{}, vault, zerolog.Nop())

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
	assert.True(t, vault.empty(), "stale snapshot must be wiped at hydration")
}

func TestColdStartClearsTokensWithoutSnapshot(t *testing.T) {
	vault := &memVault{}
	require.NoError(t, vault.SaveTokens("AT1", "RT1"))

	store := session.NewStore(&fakeAPI{}, vault, zerolog.Nop())

	assert.False(t, store.IsAuthenticated())
	assert.True(t, vault.empty())
}

func TestColdStartClearsCorruptSnapshot(t *testing.T) {
	vault := &memVault{}
	require.NoError(t, vault.SaveTokens("AT1", "RT1"))
	require.NoError(t, vault.SaveUser([]byte("{not json")))

	store := session.NewStore(&fakeAPI{}, vault, zerolog.Nop())

	assert.False(t, store.IsAuthenticated())
	assert.True(t, vault.empty())
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   testUser.ID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestValidAccessTokenReturnsCurrentTokenWhenFresh(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	api := &fakeAPI{loginFn: okLogin(testUser, fresh, "RT1")}
	store := authenticatedStore(t, api, &memVault{})

	got, err := store.ValidAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, int32(0), api.refreshCalls.Load())
}

func TestValidAccessTokenRefreshesExpiredToken(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Minute))
	rotated := signedToken(t, time.Now().Add(time.Hour))
	api := &fakeAPI{
		loginFn: okLogin(testUser, expired, "RT1"),
		refreshFn: func(context.Context, string) (*session.TokenPair, error) {
			return &session.TokenPair{AccessToken: rotated, RefreshToken: "RT2"}, nil
		},
	}
	store := authenticatedStore(t, api, &memVault{})

	got, err := store.ValidAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rotated, got)
	assert.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestValidAccessTokenFailsClosedWhenRefreshFails(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Minute))
	api := &fakeAPI{
		loginFn: okLogin(testUser, expired, "RT1"),
		refreshFn: func(context.Context, string) (*session.TokenPair, error) {
			return nil, apperrors.New(apperrors.RefreshRejected, "invalid_grant")
		},
	}
	store := authenticatedStore(t, api, &memVault{})

	_, err := store.ValidAccessToken(context.Background())
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated(), "failed refresh must leave the session logged out")
}

func TestValidAccessTokenRequiresSession(t *testing.T) {
	store := session.NewStore(&fakeAPI{}, &memVault{}, zerolog.Nop())

	_, err := store.ValidAccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.NotAuthenticated))
}
