package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewWithWriterFormatsOutput(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		level      string
		assertions func(t *testing.T, output string)
	}{
		{
			name:   "json format includes structured fields",
			format: "json",
			level:  "info",
			assertions: func(t *testing.T, output string) {
				var entry map[string]any
				if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &entry); err != nil {
					t.Fatalf("expected JSON output, got %q: %v", output, err)
				}
				if entry["message"] != "login succeeded" || entry["username"] != "jd" {
					t.Fatalf("unexpected entry: %v", entry)
				}
				if entry["service"] != "bankist" || entry["level"] != "info" {
					t.Fatalf("missing context fields: %v", entry)
				}
			},
		},
		{
			name:   "console format is human readable",
			format: "console",
			level:  "debug",
			assertions: func(t *testing.T, output string) {
				if !strings.Contains(output, "login succeeded") || !strings.Contains(output, "username=jd") {
					t.Fatalf("unexpected console output %q", output)
				}
			},
		},
		{
			name:   "level filters lower entries",
			format: "json",
			level:  "error",
			assertions: func(t *testing.T, output string) {
				if output != "" {
					t.Fatalf("expected info entry to be filtered, got %q", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(Config{Level: tt.level, Format: tt.format}, &buf)
			log.Info().Str("username", "jd").Msg("login succeeded")
			tt.assertions(t, buf.String())
		})
	}
}
