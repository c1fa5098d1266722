package main

import (
	"io"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"

	"mockinterview/internal/deps"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusError, "Not running", false)
	want := "  Daemon:              [ERROR] Not running"
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	text.EnableColors()
	got := renderStatusLine("Daemon", statusOK, "Running", true)
	if !strings.HasPrefix(got, text.FgGreen.EscapeSeq()) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, text.Reset.EscapeSeq()) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "Camera", Detail: `no device matches "/dev/video*"`},
		{Name: "Speech synthesizer", Available: true, Command: "espeak-ng"},
		{Name: "Microphone", Available: true, Matches: []string{"/dev/snd/pcmC0D0c"}},
		{Name: "Extra", Optional: true},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "Summary") || !strings.Contains(lines[0], "[ERROR] 1 of 4") {
		t.Fatalf("expected summary line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] no device matches") {
		t.Fatalf("expected camera error, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Ready (command: espeak-ng)") {
		t.Fatalf("expected command detail, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "[OK] Ready (/dev/snd/pcmC0D0c)") {
		t.Fatalf("expected device detail, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "[WARN] not available") {
		t.Fatalf("expected optional warning, got %q", lines[4])
	}
	if !strings.Contains(lines[5], "Missing dependencies: Camera") {
		t.Fatalf("expected missing summary, got %q", lines[5])
	}
}

func TestDependencyLinesWithNothingRequired(t *testing.T) {
	lines := dependencyLines(nil, false)
	if len(lines) != 1 || !strings.Contains(lines[0], "[INFO] Nothing required") {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestSessionCountRowsOrdersByLifecycle(t *testing.T) {
	rows, total := sessionCountRows(map[string]int{"completed": 3, "inprogress": 2, "archived": 1})
	if total != 6 {
		t.Fatalf("expected total 6, got %d", total)
	}
	var order []string
	for _, row := range rows {
		order = append(order, row[0])
	}
	if got := strings.Join(order, ","); got != "scheduled,inprogress,completed,archived" {
		t.Fatalf("unexpected order %s", got)
	}
	if rows[0][1] != "0" {
		t.Fatalf("expected zero row for scheduled, got %q", rows[0][1])
	}
}

func TestDialAddress(t *testing.T) {
	cases := map[string]string{
		"0.0.0.0:7490":   "127.0.0.1:7490",
		":7490":          "127.0.0.1:7490",
		"10.0.0.5:80":    "10.0.0.5:80",
		"localhost:7490": "localhost:7490",
		"not-an-address": "not-an-address",
	}
	for in, want := range cases {
		if got := dialAddress(in); got != want {
			t.Errorf("dialAddress(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
