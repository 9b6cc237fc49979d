package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestZapWritesStructuredObject(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.DebugObj("transport request completed", "transport_request", map[string]any{
		"method": "GET",
		"status": 200,
	})
	if err := log.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "transport request completed" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field in %v", entry)
	}
	fields, ok := entry["transport_request"].(map[string]any)
	if !ok || fields["method"] != "GET" {
		t.Fatalf("unexpected transport_request field: %#v", entry["transport_request"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.DebugObj("hidden", "k", 1)
	log.InfoObj("hidden", "k", 1)
	log.WarnObj("shown", "k", 1)
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug/info entries should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn entry missing: %s", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("bogus"); got.String() != "info" {
		t.Fatalf("expected info, got %s", got)
	}
	if got := parseLevel(" WARNING "); got.String() != "warn" {
		t.Fatalf("expected warn, got %s", got)
	}
}
