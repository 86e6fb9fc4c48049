package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"firestige.xyz/pcapreport/internal/config"
)

func TestParseLevelValid(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if err != nil {
				t.Errorf("parseLevel(%q) returned error: %v", tt.input, err)
			}
			if level != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestParseLevelInvalid(t *testing.T) {
	for _, input := range []string{"invalid", "trace", "fatal", ""} {
		t.Run(input, func(t *testing.T) {
			if _, err := parseLevel(input); err == nil {
				t.Errorf("parseLevel(%q) should return error, got nil", input)
			}
		})
	}
}

func TestInitConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LogConfig{
		Level:  "info",
		Format: "json",
	}

	if err := InitWithWriter(cfg, &buf); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	slog.Info("records analyzed", "records", 3)
	slog.Debug("hidden")

	output := buf.String()
	if !strings.Contains(output, `"msg":"records analyzed"`) {
		t.Errorf("JSON output should contain message, got %q", output)
	}
	if !strings.Contains(output, `"records":3`) {
		t.Errorf("JSON output should contain attribute, got %q", output)
	}
	if strings.Contains(output, "hidden") {
		t.Error("Debug message should be filtered out at info level")
	}
}

func TestInitWithFileOutput(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "test.log")

	cfg := config.LogConfig{
		Level:  "debug",
		Format: "text",
		Outputs: config.LogOutputsConfig{
			File: config.FileOutputConfig{
				Enabled: true,
				Path:    logPath,
				Rotation: config.RotationConfig{
					MaxSizeMB:  10,
					MaxBackups: 3,
					MaxAgeDays: 7,
					Compress:   true,
				},
			},
		},
	}

	if err := InitWithWriter(cfg, &buf); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Debug("test message", "key", "value")
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Log file was not created at %s: %v", logPath, err)
	}
	if !strings.Contains(string(data), "key=value") {
		t.Errorf("Log file should contain key=value, got %q", string(data))
	}
	if !strings.Contains(buf.String(), "test message") {
		t.Error("Console output should contain the message too")
	}
}

func TestInitWithInvalidLevel(t *testing.T) {
	err := Init(config.LogConfig{Level: "invalid", Format: "json"})
	if err == nil {
		t.Fatal("Expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("Expected error about invalid log level, got: %v", err)
	}
}

func TestInitWithInvalidFormat(t *testing.T) {
	err := Init(config.LogConfig{Level: "info", Format: "xml"})
	if err == nil {
		t.Fatal("Expected error for invalid log format, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported log format") {
		t.Errorf("Expected error about unsupported format, got: %v", err)
	}
}

func TestInitWithMissingFilePath(t *testing.T) {
	cfg := config.LogConfig{
		Level:  "info",
		Format: "json",
		Outputs: config.LogOutputsConfig{
			File: config.FileOutputConfig{
				Enabled: true,
			},
		},
	}

	err := Init(cfg)
	if err == nil {
		t.Fatal("Expected error for missing file path, got nil")
	}
	if !strings.Contains(err.Error(), "path") {
		t.Errorf("Expected error about missing path, got: %v", err)
	}
}

func TestCreateFileWriter(t *testing.T) {
	fc := config.FileOutputConfig{
		Enabled: true,
		Path:    filepath.Join(t.TempDir(), "test.log"),
	}

	writer, err := createFileWriter(fc)
	if err != nil {
		t.Fatalf("createFileWriter failed: %v", err)
	}
	defer writer.Close()

	n, err := writer.Write([]byte("test"))
	if err != nil {
		t.Errorf("Write failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 bytes written, got %d", n)
	}
}

func TestCloseDetachesFileOutput(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "detach.log")

	cfg := config.LogConfig{
		Level:  "info",
		Format: "text",
		Outputs: config.LogOutputsConfig{
			File: config.FileOutputConfig{Enabled: true, Path: logPath},
		},
	}
	if err := InitWithWriter(cfg, &buf); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("before close")
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	slog.Info("after close")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Log file was not created at %s: %v", logPath, err)
	}
	if !strings.Contains(string(data), "before close") {
		t.Errorf("Log file should contain the message logged before Close, got %q", string(data))
	}
	if strings.Contains(string(data), "after close") {
		t.Errorf("Log file should not be written after Close, got %q", string(data))
	}
	if !strings.Contains(buf.String(), "after close") {
		t.Error("Console should keep receiving messages after Close")
	}
}
