package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitWriter_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", true)

	Info("hidden")
	Warn("shown", "task_id", "abc")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at warn level: %s", out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("expected one json line, got %q: %v", out, err)
	}
	if rec["msg"] != "shown" || rec["task_id"] != "abc" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", false)

	if WithContext(context.Background()) != Get() {
		t.Fatalf("expected default logger for empty context")
	}
	l := With("request_id", "r1")
	ctx := NewContext(context.Background(), l)
	WithContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "request_id=r1") {
		t.Fatalf("context logger not used: %s", buf.String())
	}
}
