package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/nebula/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug record written at info level: %s", buf.String())
	}

	logger.Info("rendered", "template", "greeting", "duration_ms", 3)
	entry := decodeLine(t, &buf)
	if entry["msg"] != "rendered" || entry["template"] != "greeting" || entry["duration_ms"] != float64(3) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	logger.Debug("reloaded", "rule_sets", 2)
	if !strings.Contains(buf.String(), "msg=reloaded") || !strings.Contains(buf.String(), "rule_sets=2") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNew_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(FromConfig(config.LoggingConfig{
		Level:      "info",
		Format:     "json",
		RedactKeys: []string{"password", "API_KEY"},
	}, &buf))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("login",
		"user", "alice",
		"password", "hunter2",
		"api_key", "sk-123",
		slog.Group("request", slog.String("password", "nested")),
		"header", "Bearer abc.def.ghi",
	)
	entry := decodeLine(t, &buf)

	if entry["user"] != "alice" {
		t.Errorf("user = %v, want alice", entry["user"])
	}
	if entry["password"] != Redacted || entry["api_key"] != Redacted {
		t.Errorf("sensitive keys not masked: %v", entry)
	}
	if req, _ := entry["request"].(map[string]any); req["password"] != Redacted {
		t.Errorf("nested password not masked: %v", entry["request"])
	}
	if entry["header"] != "Bearer ***" {
		t.Errorf("header = %v, want Bearer ***", entry["header"])
	}
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx := WithExecutionID(context.Background(), "run-1")
	ctx = WithRuleSet(ctx, "signup")
	ctx = WithTemplate(ctx, "greeting")

	if GetExecutionID(ctx) != "run-1" || GetRuleSet(ctx) != "signup" || GetTemplate(ctx) != "greeting" {
		t.Fatal("context getters mismatch")
	}

	logger.With("component", "runtime").InfoContext(ctx, "done")
	entry := decodeLine(t, &buf)
	for key, want := range map[string]string{
		"execution_id": "run-1",
		"rule_set":     "signup",
		"template":     "greeting",
		"component":    "runtime",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}

	if GetExecutionID(context.Background()) != "" {
		t.Error("expected empty execution id")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard() logger is enabled")
	}
}
