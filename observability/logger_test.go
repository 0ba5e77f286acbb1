package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "prod", "")
	logger.Debug().Msg("hidden")
	logger.Info().Str("npc", "Xin Blanca").Msg("rule rejected")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if entry["npc"] != "Xin Blanca" || entry["message"] != "rule rejected" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		env, level string
		want       zerolog.Level
	}{
		{"dev", "", zerolog.DebugLevel},
		{"prod", "", zerolog.InfoLevel},
		{"prod", "WARN", zerolog.WarnLevel},
		{"dev", "nonsense", zerolog.DebugLevel},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if got := newLogger(&buf, tt.env, tt.level).GetLevel(); got != tt.want {
			t.Errorf("newLogger(%q, %q) level = %v, want %v", tt.env, tt.level, got, tt.want)
		}
	}
}
