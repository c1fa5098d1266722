package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mockinterview/internal/config"
	"mockinterview/internal/logging"
	"mockinterview/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon ready", logging.String("address", "127.0.0.1:7490"))

	data, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "daemon ready") {
		t.Fatalf("expected message in log file, got %q", string(data))
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Fatalf("expected no ANSI colours in file output, got %q", string(data))
	}
}

func TestConsoleLoggerPromotesComponentAndSession(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithSessionID(context.Background(), "0f5c2a9e-1111-2222-3333-444455556666")
	componentLogger := logging.WithContext(ctx, logging.NewComponentLogger(logger, "orchestrator"))
	componentLogger.Info("question advanced", logging.Int(logging.FieldQuestionIndex, 2))
	componentLogger.Debug("suppressed")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if strings.Count(line, "\n") != 0 {
		t.Fatalf("expected a single line, got %q", line)
	}
	if !strings.Contains(line, "INFO orchestrator[0f5c2a9e]: question advanced") {
		t.Fatalf("unexpected prefix: %q", line)
	}
	if !strings.Contains(line, "question_index=2") {
		t.Fatalf("expected question_index attr, got %q", line)
	}
	if strings.Contains(line, "component=") || strings.Contains(line, "session_id=") {
		t.Fatalf("expected promoted fields to be removed from attrs, got %q", line)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "camera unavailable", "device_unavailable", logging.Duration("settle", 1500*time.Millisecond))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, string(data))
	}
	if record["level"] != "warn" || record["msg"] != "camera unavailable" {
		t.Fatalf("unexpected record: %#v", record)
	}
	if record[logging.FieldEventType] != "device_unavailable" {
		t.Fatalf("expected event_type, got %#v", record)
	}
	if _, ok := record[logging.FieldImpact]; !ok {
		t.Fatalf("expected default impact field, got %#v", record)
	}
	if record["settle"] != "1.5s" {
		t.Fatalf("expected duration rendered as string, got %#v", record["settle"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("expected noop logger to be disabled")
	}
	logging.ErrorWithContext(nil, "ignored", "noop")
}
