package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConfigureSlogJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "debug", "json")

	logger.Debug("telemetry.test", slog.String("key", "value"))
	out := buf.String()
	if !strings.Contains(out, `"msg":"telemetry.test"`) {
		t.Fatalf("expected JSON output, got %s", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Fatalf("attribute missing from output: %s", out)
	}
}

func TestConfigureSlogLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "warn", "text")

	logger.Info("suppressed")
	logger.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "emitted") {
		t.Fatalf("warn should pass: %s", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTraceHandlerNoSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "info", "json")

	logger.InfoContext(context.Background(), "no_span")
	out := buf.String()
	if strings.Contains(out, "trace_id") {
		t.Fatalf("no trace_id expected without an active span: %s", out)
	}
}

func TestAgentAttributesTruncatesGoal(t *testing.T) {
	long := strings.Repeat("g", 300)
	attrs := AgentAttributes("run-1", long, 10)

	for _, attr := range attrs {
		if string(attr.Key) == AttrAgentGoal {
			if len(attr.Value.AsString()) != 203 {
				t.Fatalf("goal not truncated: %d chars", len(attr.Value.AsString()))
			}
			return
		}
	}
	t.Fatal("goal attribute missing")
}
