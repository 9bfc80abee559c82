package version

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func restore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestGetUsesStampedValues(t *testing.T) {
	defer restore()()
	Version, GitCommit, BuildTime = "1.4.0", "abc1234", "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.4.0" || info.GitCommit != "abc1234" || info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("info = %+v", info)
	}
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0-dirty"}, false},
		{Info{Version: "1.0.0", Dirty: true}, false},
	}
	for _, tt := range tests {
		if got := tt.info.IsRelease(); got != tt.want {
			t.Errorf("%+v.IsRelease() = %v", tt.info, got)
		}
	}
}

func TestString(t *testing.T) {
	if s := (Info{Version: "dev"}).String(); s != "dev" {
		t.Errorf("got %q", s)
	}
	if s := (Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}).String(); s != "1.0.0-abc1234-dirty" {
		t.Errorf("got %q", s)
	}
}

func TestTelemetry(t *testing.T) {
	defer restore()()
	Version = "2.0.0"

	raw, err := base64.RawURLEncoding.DecodeString(Telemetry())
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got["name"] != ClientName || got["version"] != "2.0.0" {
		t.Errorf("telemetry = %v", got)
	}
}
