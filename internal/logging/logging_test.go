package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug().Msg("hidden")
	logger.Info().Int("width", 512).Msg("rendering")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one line above debug level, got %d: %q", len(lines), buf.String())
	}

	var event map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if event["message"] != "rendering" || event["level"] != "info" || event["width"] != float64(512) {
		t.Errorf("Unexpected event: %v", event)
	}
	if _, ok := event["time"]; !ok {
		t.Error("Expected a timestamp")
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "console")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug().Msg("tile done")
	if !strings.Contains(buf.String(), "tile done") {
		t.Errorf("Expected message in console output, got %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("Expected console output, got JSON: %q", buf.String())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		level, format string
	}{
		{"bad level", "loud", "json"},
		{"bad format", "info", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(&bytes.Buffer{}, tt.level, tt.format); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestPrintfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	printf := NewPrintfLogger(logger)
	printf.Printf("Drawing image...\n")
	printf.Printf("Done! (%v)\n", "1.5s")
	printf.Printf("\n")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 events, got %d: %q", len(lines), buf.String())
	}

	expected := []string{"Drawing image...", "Done! (1.5s)"}
	for i, line := range lines {
		var event map[string]interface{}
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("Line %d is not JSON: %v", i, err)
		}
		if event["message"] != expected[i] {
			t.Errorf("Line %d: expected %q, got %v", i, expected[i], event["message"])
		}
	}
}
