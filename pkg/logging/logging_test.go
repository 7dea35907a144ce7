/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newStructuredLogger(&buf, "cliharness", "1.2.3", slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("cell online", "cell", 0)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected single JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["module"] != "cliharness" || entry["version"] != "1.2.3" {
		t.Errorf("missing module attributes: %v", entry)
	}
	if entry["msg"] != "cell online" {
		t.Errorf("msg = %v", entry["msg"])
	}
}
