package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_NotFound(t *testing.T) {
	err := NotFound("instance", "lock-7")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
	if err.Details["id"] != "lock-7" {
		t.Errorf("expected id=lock-7, got %v", err.Details["id"])
	}
	if err.Retryable {
		t.Error("NotFound should not be retryable")
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("instance", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_InvalidArgument(t *testing.T) {
	err := InvalidArgument("clientID", "must be a non-empty string")
	if err.Code != ErrCodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT, got %s", err.Code)
	}
	if err.Details["field"] != "clientID" {
		t.Errorf("expected field=clientID, got %v", err.Details["field"])
	}
	if !strings.Contains(err.Error(), "non-empty") {
		t.Errorf("expected reason in message, got %q", err.Error())
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	if !New(ErrCodeTimeout, "slow", http.StatusGatewayTimeout).Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if New(ErrCodeHookFailed, "boom", http.StatusUnprocessableEntity).Retryable {
		t.Error("HOOK_FAILED should not be retryable")
	}
}

func TestAppError_CauseChain(t *testing.T) {
	cause := fmt.Errorf("resolver exploded")
	err := RenderFailed("lock-1", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "resolver exploded") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		notFound    bool
		invalidArgs bool
	}{
		{"not found", NotFound("instance", "a"), true, false},
		{"wrapped not found", fmt.Errorf("show: %w", NotFound("instance", "a")), true, false},
		{"invalid argument", InvalidArgument("domain", "empty"), false, true},
		{"validation", Validation("options: bad"), false, true},
		{"plain error", fmt.Errorf("nope"), false, false},
		{"nil", nil, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFound(tc.err); got != tc.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tc.notFound)
			}
			if got := IsInvalidArgument(tc.err); got != tc.invalidArgs {
				t.Errorf("IsInvalidArgument = %v, want %v", got, tc.invalidArgs)
			}
		})
	}
}

func TestToResponse(t *testing.T) {
	err := HookFailed("signingIn", fmt.Errorf("denied")).WithDetail("attempt", 2)
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeHookFailed {
		t.Errorf("expected HOOK_FAILED, got %s", resp.Error.Code)
	}
	if resp.Error.Details["attempt"] != 2 {
		t.Errorf("expected attempt detail, got %v", resp.Error.Details)
	}
}
