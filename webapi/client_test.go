package webapi

import (
	"context"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/resilience"
	"github.com/kbukum/widgetkit/security"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{
		ClientID: "client-1",
		Domain:   "tenant.auth0.com",
		BaseURL:  srv.URL,
		Retry:    resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newPlainClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(Config{ClientID: "client-1", Domain: "tenant.auth0.com"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestGetProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get(TelemetryHeader) == "" {
			t.Error("missing telemetry header")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected authorization %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"auth0|1","name":"Ana"}`))
	})

	profile, err := c.GetProfile(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if profile["name"] != "Ana" {
		t.Errorf("unexpected profile %v", profile)
	}
}

func TestGetProfileRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"sub":"x"}`))
	})

	if _, err := c.GetProfile(context.Background(), "tok"); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestGetProfileRejectedToken(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetProfile(context.Background(), "tok")
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("rejected tokens must not be retried, calls=%d", calls.Load())
	}

	if _, err := c.GetProfile(context.Background(), " "); !errors.IsInvalidArgument(err) {
		t.Errorf("blank token: expected INVALID_ARGUMENT, got %v", err)
	}
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseHash(t *testing.T) {
	c := newPlainClient(t)
	idToken := signed(t, jwt.MapClaims{"aud": "client-1", "sub": "auth0|1", "name": "Ana"})

	hash := "#access_token=at&id_token=" + idToken + "&token_type=Bearer&expires_in=7200&state=xyz"
	result, err := c.ParseHash(context.Background(), hash)
	if err != nil {
		t.Fatal(err)
	}
	if result.AccessToken != "at" || result.ExpiresIn != 7200 || result.State != "xyz" {
		t.Errorf("unexpected result %+v", result)
	}
	if result.IDTokenPayload["name"] != "Ana" {
		t.Errorf("unexpected payload %v", result.IDTokenPayload)
	}
}

func TestParseHashErrors(t *testing.T) {
	c := newPlainClient(t)
	otherAud := signed(t, jwt.MapClaims{"aud": "someone-else"})

	tests := []struct {
		name string
		hash string
		code errors.ErrorCode
	}{
		{"empty", "#", errors.ErrCodeInvalidArgument},
		{"server error", "#error=access_denied&error_description=nope", errors.ErrCodeExternalService},
		{"bad expiry", "#access_token=a&expires_in=soon", errors.ErrCodeInvalidArgument},
		{"malformed token", "#id_token=not.a.jwt", errors.ErrCodeInvalidArgument},
		{"wrong audience", "#id_token=" + otherAud, errors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ParseHash(context.Background(), tt.hash)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestLogoutURL(t *testing.T) {
	c := newPlainClient(t)

	u, err := url.Parse(c.LogoutURL(LogoutParams{ReturnTo: "https://app.example.com/"}))
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "tenant.auth0.com" || u.Path != "/v2/logout" {
		t.Errorf("unexpected url %s", u)
	}
	if u.Query().Get("client_id") != "client-1" || u.Query().Get("returnTo") != "https://app.example.com/" {
		t.Errorf("unexpected query %s", u.RawQuery)
	}

	federated := c.LogoutURL(LogoutParams{Federated: true})
	if !strings.Contains(federated, "?federated&client_id=client-1") {
		t.Errorf("unexpected federated url %s", federated)
	}
}

func TestGetProfileOverPrivateCA(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sub":"auth0|1"}`))
	}))
	defer srv.Close()

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(caFile, block, 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := NewClient(Config{ClientID: "client-1", BaseURL: srv.URL, TLS: security.TLSConfig{CAFile: caFile}})
	if err != nil {
		t.Fatal(err)
	}
	profile, err := c.GetProfile(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if profile["sub"] != "auth0|1" {
		t.Errorf("profile = %v", profile)
	}

	if _, err := NewClient(Config{TLS: security.TLSConfig{CertFile: "only-cert.pem"}}); !errors.IsInvalidArgument(err) {
		t.Errorf("inconsistent TLS settings: %v", err)
	}
}
