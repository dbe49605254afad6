package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "wayfare/cli/internal/errors"
)

// userAgent identifies the CLI to the backend.
const userAgent = "wayfare-cli"

// REST endpoint paths owned by the Wayfare API.
const (
	pathLogin        = "/v1/auth/login"
	pathRegister     = "/v1/auth/register"
	pathLogout       = "/v1/auth/logout"
	pathRefresh      = "/v1/auth/refresh"
	pathMe           = "/v1/users/me"
	pathDestinations = "/v1/destinations/search"
	pathFlights      = "/v1/flights/search"
	pathHotels       = "/v1/hotels/search"
	pathItineraries  = "/v1/itineraries"
	pathBookings     = "/v1/bookings"
	pathVersion      = "/v1/version"
)

// HTTP implements API over REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all requests (e.g., "https://api.wayfare.travel")
	baseURL string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
}

// newHTTP creates a new HTTP client with the given base URL.
// It configures a 10-second timeout for all requests.
func newHTTP(baseURL string) *HTTP {
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// setStandardHeaders applies headers every request carries. The X-Request-ID
// lets support correlate a CLI failure with server logs.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// statusError carries a non-2xx response until the calling endpoint maps it
// into the error taxonomy.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.message)
}

// doJSON performs a JSON request/response round-trip. Transport failures come
// back as Transient; non-2xx responses come back as *statusError for the
// caller to classify.
func (h *HTTP) doJSON(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return err
	}
	h.setStandardHeaders(req)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode, message: serverMessage(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// serverMessage extracts a human-readable message from an error response.
// Be liberal in what we accept: look for common JSON fields, fall back to the
// raw body.
func serverMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(b, &payload); err == nil {
		for _, m := range []string{payload.Error, payload.Message, payload.Detail} {
			if strings.TrimSpace(m) != "" {
				return strings.TrimSpace(m)
			}
		}
	}
	return strings.TrimSpace(string(b))
}

// classify maps an HTTP-level failure into the error taxonomy. rejectedKind is
// the kind used for responses where the backend refused the request itself
// (bad credentials, invalid registration, dead refresh token); everything else
// is either already classified or treated as retryable.
func classify(err error, rejectedKind apperrors.Kind) error {
	se, ok := err.(*statusError)
	if !ok {
		return err
	}
	msg := se.message
	switch {
	case se.code == http.StatusUnauthorized,
		se.code == http.StatusForbidden,
		se.code == http.StatusBadRequest,
		se.code == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "request rejected"
		}
		return apperrors.New(rejectedKind, msg)
	default:
		if msg == "" {
			msg = fmt.Sprintf("server returned status %d", se.code)
		}
		return apperrors.New(apperrors.Transient, msg)
	}
}

// GetVersion calls GET /v1/version and returns the version string when available.
// No authentication required. This can be used to check connectivity to the backend service.
func (h *HTTP) GetVersion(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := h.doJSON(ctx, http.MethodGet, pathVersion, "", nil, &out); err != nil {
		if _, ok := err.(*statusError); ok {
			return "unknown", nil
		}
		return "", err
	}
	if out.Version == "" {
		return "unknown", nil
	}
	return out.Version, nil
}
