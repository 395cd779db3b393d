package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	defaultRemoteTimeout = 5 * time.Second

	// Result codes returned by the legacy authentication endpoint.
	legacyCodeOK          = "0000"
	legacyCodeBadAccount  = "1001"
	legacyCodeBadPassword = "1002"
	legacyCodeSystemError = "9999"
)

// RemoteConfig configures the legacy authentication endpoint client.
type RemoteConfig struct {
	// Endpoint is the full URL of the legacy login call.
	Endpoint string
	// Timeout bounds each verification round-trip. Defaults to 5s.
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Remote verifies credentials against the legacy authentication endpoint.
// On success the endpoint hands back the connection id, display name, and
// account class the downstream payment API expects on every call.
//
// Remote instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Remote struct {
	endpoint string
	client   *http.Client
}

type remoteLoginRequest struct {
	UserID   string `json:"userId"`
	UserPass string `json:"userPass"`
}

type remoteLoginResponse struct {
	ResultCode    string `json:"resultCode"`
	ResultMessage string `json:"resultMessage"`
	ConnectionID  string `json:"connectionId"`
	UserName      string `json:"userName"`
	UserClass     string `json:"userClass"`
}

// NewRemote validates cfg and returns a Remote verifier.
//
// NewRemote may return an error when input validation, dependency calls, or security checks fail.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("remote verifier endpoint is empty")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultRemoteTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Remote{
		endpoint: cfg.Endpoint,
		client:   client,
	}, nil
}

// Verify posts the pair to the legacy endpoint and maps its result code.
// Transport failures and 5xx responses surface as [ErrUnavailable]; every
// authentication-level rejection collapses to [ErrInvalidCredentials].
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Remote) Verify(ctx context.Context, username, pass string) (Identity, error) {
	body, err := json.Marshal(remoteLoginRequest{
		UserID:   username,
		UserPass: pass,
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := r.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Identity{}, fmt.Errorf("%w: legacy endpoint returned %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, ErrInvalidCredentials
	}

	var parsed remoteLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Identity{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	switch parsed.ResultCode {
	case legacyCodeOK:
	case legacyCodeSystemError:
		return Identity{}, fmt.Errorf("%w: legacy result code %s", ErrUnavailable, parsed.ResultCode)
	case legacyCodeBadAccount, legacyCodeBadPassword:
		return Identity{}, ErrInvalidCredentials
	default:
		// Unknown codes are treated as rejections, not outages.
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{
		UserID:       username,
		Username:     username,
		DisplayName:  parsed.UserName,
		ConnectionID: parsed.ConnectionID,
		AccountClass: parsed.UserClass,
	}, nil
}
