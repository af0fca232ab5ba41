package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger = logger.With(String(FieldComponent, "runner"))
	logger.Info("searching catalog", String(FieldSource, "movie.mkv"))

	out := buf.String()
	if !strings.Contains(out, "INFO [runner] – searching catalog") {
		t.Errorf("missing header in output: %q", out)
	}
	if !strings.Contains(out, "    source_file: movie.mkv") {
		t.Errorf("missing attr line in output: %q", out)
	}
}

func TestNewConsoleLevelGate(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Errorf("info line leaked through warn gate: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("download complete", String("output", "movie.eng.srt"), Float64("score", 9.5))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json log line: %v", err)
	}
	if decoded["msg"] != "download complete" {
		t.Errorf("msg = %v", decoded["msg"])
	}
	if decoded["output"] != "movie.eng.srt" {
		t.Errorf("output = %v", decoded["output"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
