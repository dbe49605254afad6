package backend

import (
	"context"
	"errors"
	"net/http"

	apperrors "wayfare/cli/internal/errors"
	"wayfare/cli/internal/session"
)

// authResponse is the payload login and register share.
type authResponse struct {
	User   *session.User      `json:"user"`
	Tokens *session.TokenPair `json:"tokens"`
}

func (r *authResponse) validate() error {
	if r.User == nil || r.Tokens == nil || r.Tokens.AccessToken == "" {
		return errors.New("malformed auth response: missing user or tokens")
	}
	return nil
}

// Login calls POST /v1/auth/login with the given credentials.
// A 401 from the backend maps to CredentialsRejected; the session store
// surfaces the message and leaves its state untouched.
func (h *HTTP) Login(ctx context.Context, creds session.Credentials) (*session.User, *session.TokenPair, error) {
	var out authResponse
	if err := h.doJSON(ctx, http.MethodPost, pathLogin, "", creds, &out); err != nil {
		return nil, nil, classify(err, apperrors.CredentialsRejected)
	}
	if err := out.validate(); err != nil {
		return nil, nil, err
	}
	return out.User, out.Tokens, nil
}

// Register calls POST /v1/auth/register. Validation refusals map to
// RegistrationInvalid; on success the account is created and logged in.
func (h *HTTP) Register(ctx context.Context, reg session.Registration) (*session.User, *session.TokenPair, error) {
	var out authResponse
	if err := h.doJSON(ctx, http.MethodPost, pathRegister, "", reg, &out); err != nil {
		return nil, nil, classify(err, apperrors.RegistrationInvalid)
	}
	if err := out.validate(); err != nil {
		return nil, nil, err
	}
	return out.User, out.Tokens, nil
}

// Logout calls POST /v1/auth/logout to invalidate the access token server-side.
// Callers treat failures as best-effort.
func (h *HTTP) Logout(ctx context.Context, accessToken string) error {
	if err := h.doJSON(ctx, http.MethodPost, pathLogout, accessToken, nil, nil); err != nil {
		return classify(err, apperrors.NotAuthenticated)
	}
	return nil
}

// RefreshToken calls POST /v1/auth/refresh to exchange a refresh token for a
// new pair. The backend may rotate the refresh token or omit it to keep the
// old one. A refusal maps to RefreshRejected, which the session store treats
// as conclusive.
func (h *HTTP) RefreshToken(ctx context.Context, refreshToken string) (*session.TokenPair, error) {
	in := map[string]string{"refresh_token": refreshToken}
	// Tolerate both nested and flat token payloads.
	var out struct {
		Tokens       *session.TokenPair `json:"tokens"`
		AccessToken  string             `json:"access_token"`
		RefreshToken string             `json:"refresh_token"`
	}
	if err := h.doJSON(ctx, http.MethodPost, pathRefresh, "", in, &out); err != nil {
		return nil, classify(err, apperrors.RefreshRejected)
	}
	pair := out.Tokens
	if pair == nil {
		pair = &session.TokenPair{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}
	}
	if pair.AccessToken == "" {
		return nil, errors.New("no access token in refresh response")
	}
	return pair, nil
}
