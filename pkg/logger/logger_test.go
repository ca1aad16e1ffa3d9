package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestConfigLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		conf Config
		want zerolog.Level
	}{
		{conf: Config{}, want: zerolog.InfoLevel},
		{conf: Config{Debug: true, Level: "error"}, want: zerolog.DebugLevel},
		{conf: Config{Level: "WARN"}, want: zerolog.WarnLevel},
		{conf: Config{Level: "nonsense"}, want: zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := tt.conf.level(); got != tt.want {
			t.Fatalf("level(%+v) = %s, want %s", tt.conf, got, tt.want)
		}
	}
}

func TestInitWriterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, Config{Level: "warn"})

	log.Info().Msg("hidden")
	log.Warn().Str("session_id", "s1").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, `"session_id":"s1"`) || !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %s", out)
	}
}
