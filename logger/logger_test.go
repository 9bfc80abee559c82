package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "widgetkit", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("invalid json line %q: %v", line, err)
	}
	return out
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug").WithComponent("dispatch").WithInstance("lock-1")

	l.Info("dispatched", Fields(FieldOperation, "open"))

	out := decodeLine(t, &buf)
	if out[FieldComponent] != "dispatch" {
		t.Errorf("expected component=dispatch, got %v", out[FieldComponent])
	}
	if out[FieldInstanceID] != "lock-1" {
		t.Errorf("expected instance_id=lock-1, got %v", out[FieldInstanceID])
	}
	if out[FieldOperation] != "open" {
		t.Errorf("expected operation=open, got %v", out[FieldOperation])
	}
	if out["message"] != "dispatched" {
		t.Errorf("expected message, got %v", out["message"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug/info to be filtered, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to be written, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")
	out := decodeLine(t, &buf)
	if out[FieldError] != "boom" {
		t.Errorf("expected error=boom, got %v", out[FieldError])
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("nothing")
	if l.WithComponent("x") == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestGetFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalLogger(newJSONLogger(&buf, "info"))
	defer SetGlobalLogger(nil)

	Get("unregistered").Info("hello")
	out := decodeLine(t, &buf)
	if out[FieldComponent] != "unregistered" {
		t.Errorf("expected component tag, got %v", out[FieldComponent])
	}
}

func TestRegisterOverridesGet(t *testing.T) {
	var buf bytes.Buffer
	custom := newJSONLogger(&buf, "info")
	Register("custom", custom)
	if Get("custom") != custom {
		t.Error("expected registered logger to be returned")
	}
	SetGlobalLogger(Nop())
	defer SetGlobalLogger(nil)
	if Get("custom") != custom {
		t.Error("registered logger must survive a global logger change")
	}
}

func TestGetCachesDerivedLoggers(t *testing.T) {
	SetGlobalLogger(Nop())
	defer SetGlobalLogger(nil)

	first := Get("cached")
	if Get("cached") != first {
		t.Error("expected the same derived logger on repeated Get")
	}
	if !slices.Contains(Components(), "cached") {
		t.Errorf("Components() = %v, want it to list cached", Components())
	}

	SetGlobalLogger(Nop())
	if Get("cached") == first {
		t.Error("expected a fresh logger after the global logger changed")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", func() Config { c := Config{}; c.ApplyDefaults(); return c }(), false},
		{"json debug", Config{Level: "debug", Format: "json"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if len(m) != 2 {
		t.Errorf("expected 2 entries, got %d: %v", len(m), m)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
}
