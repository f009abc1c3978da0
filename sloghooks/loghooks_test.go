package sloghooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestHooks(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ln := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if ln == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(ln), &m); err != nil {
			t.Fatalf("bad log line %q: %v", ln, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEventsAreLogged(t *testing.T) {
	h, buf := newTestHooks(Options{})
	h.Loaded("/s", 3)
	h.Persisted("/s", 4)
	h.PersistFailed("/s", "rename", errors.New("boom"))
	h.DecodeRejected("/s", 5, errors.New("bad"))

	got := lines(t, buf)
	wantMsgs := []string{
		"filelinked.loaded",
		"filelinked.persisted",
		"filelinked.persist_failed",
		"filelinked.decode_rejected",
	}
	if len(got) != len(wantMsgs) {
		t.Fatalf("got %d lines, want %d: %s", len(got), len(wantMsgs), buf)
	}
	for i, m := range got {
		if m["msg"] != wantMsgs[i] || m["path"] != "/s" {
			t.Fatalf("line %d = %v", i, m)
		}
	}
	if got[2]["op"] != "rename" || got[2]["level"] != "ERROR" {
		t.Fatalf("persist_failed line = %v", got[2])
	}
}

func TestPersistedSampling(t *testing.T) {
	h, buf := newTestHooks(Options{PersistedEvery: 5})
	for i := 0; i < 20; i++ {
		h.Persisted("/s", 1)
	}
	if n := len(lines(t, buf)); n != 4 {
		t.Fatalf("sampled lines = %d, want 4", n)
	}
}

func TestRedaction(t *testing.T) {
	h, buf := newTestHooks(Options{RedactPaths: true})
	h.Loaded("/secret/path", 1)
	got := lines(t, buf)
	p, _ := got[0]["path"].(string)
	if p == "/secret/path" || len(p) != 16 {
		t.Fatalf("path not redacted: %q", p)
	}

	h, buf = newTestHooks(Options{Redact: func(string) string { return "x" }})
	h.Loaded("/secret/path", 1)
	if got := lines(t, buf); got[0]["path"] != "x" {
		t.Fatalf("custom redactor ignored: %v", got[0])
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	h := New(nil, Options{})
	h.Loaded("p", 1)
	h.Persisted("p", 1)
	h.PersistFailed("p", "write", errors.New("x"))
	h.DecodeRejected("p", 1, errors.New("x"))
}
