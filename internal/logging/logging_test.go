package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// captureLogOutput temporarily points the package logger at a buffer and
// returns everything logged by f as JSON lines.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	defer func() { defaultLogger = oldLogger }()

	f()
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
		{"", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"text", FormatText, false},
		{"yaml", FormatText, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInitLogger(t *testing.T) {
	InitLogger(LevelDebug, FormatJSON)
	if GetLogger() == nil {
		t.Fatal("GetLogger should not return nil after InitLogger")
	}

	InitLogger(LevelInfo, FormatText)
	if GetLogger() == nil {
		t.Fatal("GetLogger should not return nil after re-init")
	}
}

func TestHelpers(t *testing.T) {
	out := captureLogOutput(func() {
		Debug("debug msg", "k", "v")
		Info("info msg")
		Warn("warn msg")
		Error("error msg")
	})

	for _, want := range []string{"debug msg", "info msg", "warn msg", "error msg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTagRun(t *testing.T) {
	out := captureLogOutput(func() {
		TagRun("run-1", "abc123", 4, 1, 25*time.Millisecond, "source", "doc.html")
	})

	line := strings.TrimSpace(out)
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	if record["msg"] != "tag_run" {
		t.Errorf("msg = %v, want tag_run", record["msg"])
	}
	if record["run_id"] != "run-1" {
		t.Errorf("run_id = %v, want run-1", record["run_id"])
	}
	if record["fingerprint"] != "abc123" {
		t.Errorf("fingerprint = %v, want abc123", record["fingerprint"])
	}
	if record["annotations"] != float64(4) {
		t.Errorf("annotations = %v, want 4", record["annotations"])
	}
	if record["dropped"] != float64(1) {
		t.Errorf("dropped = %v, want 1", record["dropped"])
	}
	if record["duration_ms"] != float64(25) {
		t.Errorf("duration_ms = %v, want 25", record["duration_ms"])
	}
	if record["source"] != "doc.html" {
		t.Errorf("source = %v, want doc.html", record["source"])
	}
}
