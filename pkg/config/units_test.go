package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m", 1 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"100ms", 100 * time.Millisecond, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDurationYAMLRoundTrip(t *testing.T) {
	type wrapper struct {
		D Duration `yaml:"d"`
	}

	var w wrapper
	if err := yaml.Unmarshal([]byte("d: 90s"), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if time.Duration(w.D) != 90*time.Second {
		t.Errorf("got %v, want 90s", time.Duration(w.D))
	}

	out, err := yaml.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "d: 1m30s\n" {
		t.Errorf("marshal output = %q", string(out))
	}
}
