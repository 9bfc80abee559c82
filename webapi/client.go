package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/resilience"
	"github.com/kbukum/widgetkit/security"
	"github.com/kbukum/widgetkit/version"
)

const serviceName = "webapi"

// TelemetryHeader carries the client descriptor on every request.
const TelemetryHeader = "Auth0-Client"

// Profile is the user profile returned by the userinfo endpoint.
type Profile map[string]any

// HashResult is the outcome of an authentication redirect.
type HashResult struct {
	AccessToken    string        `json:"accessToken,omitempty"`
	IDToken        string        `json:"idToken,omitempty"`
	IDTokenPayload jwt.MapClaims `json:"idTokenPayload,omitempty"`
	TokenType      string        `json:"tokenType,omitempty"`
	ExpiresIn      int           `json:"expiresIn,omitempty"`
	State          string        `json:"state,omitempty"`
}

// LogoutParams shape the logout URL.
type LogoutParams struct {
	ReturnTo  string
	Federated bool
}

// API is what a widget needs from the authentication server.
type API interface {
	GetProfile(ctx context.Context, token string) (Profile, error)
	ParseHash(ctx context.Context, hash string) (*HashResult, error)
	LogoutURL(p LogoutParams) string
}

// Config configures a Client.
type Config struct {
	ClientID string
	Domain   string
	// BaseURL overrides "https://" + Domain.
	BaseURL string
	Timeout time.Duration
	Retry   resilience.RetryConfig
	TLS     security.TLSConfig
}

// Client talks to the tenant's endpoints over HTTP.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	parser     *jwt.Parser
}

var _ API = (*Client)(nil)

// NewClient creates a Client. It fails only on unusable TLS settings.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://" + cfg.Domain
	}
	tlsConfig, err := cfg.TLS.Build()
	if err != nil {
		return nil, errors.InvalidArgument("tls", err.Error()).WithCause(err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}
	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		parser: jwt.NewParser(),
	}, nil
}

// GetProfile fetches the profile of the token's user.
func (c *Client) GetProfile(ctx context.Context, token string) (Profile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.InvalidArgument("token", "access token is required")
	}
	return resilience.Retry(ctx, c.cfg.Retry, func(ctx context.Context) (Profile, error) {
		return c.getProfile(ctx, token)
	})
}

func (c *Client) getProfile(ctx context.Context, token string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/userinfo", http.NoBody)
	if err != nil {
		return nil, errors.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(TelemetryHeader, version.Telemetry())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout("userinfo").WithCause(err)
		}
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("read response body: %w", err))
	}
	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("decode profile: %w", err))
	}
	return profile, nil
}

// ParseHash reads the fragment of an authentication redirect. The id token
// is decoded without signature verification; its audience must be this
// client.
func (c *Client) ParseHash(_ context.Context, hash string) (*HashResult, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(hash, "#"))
	if err != nil {
		return nil, errors.InvalidArgument("hash", "malformed fragment")
	}

	if code := values.Get("error"); code != "" {
		return nil, errors.New(errors.ErrCodeExternalService,
			strings.TrimSpace(code+": "+values.Get("error_description")), http.StatusUnauthorized).
			WithDetail("error", code)
	}

	result := &HashResult{
		AccessToken: values.Get("access_token"),
		IDToken:     values.Get("id_token"),
		TokenType:   values.Get("token_type"),
		State:       values.Get("state"),
	}
	if result.AccessToken == "" && result.IDToken == "" {
		return nil, errors.InvalidArgument("hash", "no tokens in fragment")
	}
	if v := values.Get("expires_in"); v != "" {
		if result.ExpiresIn, err = strconv.Atoi(v); err != nil {
			return nil, errors.InvalidArgument("expires_in", "must be a number")
		}
	}

	if result.IDToken != "" {
		claims := jwt.MapClaims{}
		if _, _, err := c.parser.ParseUnverified(result.IDToken, claims); err != nil {
			return nil, errors.InvalidArgument("id_token", "malformed token").WithCause(err)
		}
		aud, err := claims.GetAudience()
		if err != nil || !slices.Contains(aud, c.cfg.ClientID) {
			return nil, errors.InvalidArgument("id_token", "audience does not match client")
		}
		result.IDTokenPayload = claims
	}
	return result, nil
}

// LogoutURL returns the tenant's logout URL for this client.
func (c *Client) LogoutURL(p LogoutParams) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	if p.ReturnTo != "" {
		q.Set("returnTo", p.ReturnTo)
	}
	u := c.baseURL + "/v2/logout"
	if p.Federated {
		u += "?federated&" + q.Encode()
	} else {
		u += "?" + q.Encode()
	}
	return u
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.New(errors.ErrCodeInvalidArgument, "access token rejected", status).
			WithDetail("body", string(body))
	case status == http.StatusTooManyRequests || status >= 500:
		return errors.ExternalServiceError(serviceName, fmt.Errorf("HTTP %d", status))
	default:
		appErr := errors.ExternalServiceError(serviceName, fmt.Errorf("HTTP %d", status))
		appErr.Retryable = false
		return appErr
	}
}
