package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := Check(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
}

func TestCheckDevicesIgnoresRegularFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "video0"), nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	results := Check([]Requirement{
		{Name: "Camera", Pattern: filepath.Join(dir, "video*")},
		{Name: "Null", Pattern: "/dev/null"},
	})
	if results[0].Available || len(results[0].Matches) != 0 {
		t.Fatalf("regular file should not count as a device: %#v", results[0])
	}
	if !results[1].Available || len(results[1].Matches) != 1 {
		t.Fatalf("expected /dev/null to match as a character device: %#v", results[1])
	}
}

func TestCheckUnconfigured(t *testing.T) {
	results := Check([]Requirement{{Name: "Nothing"}})
	if results[0].Available || results[0].Detail != "not configured" {
		t.Fatalf("unexpected status: %#v", results[0])
	}
}

func TestMissingSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "a", Available: true},
		{Name: "b"},
		{Name: "c", Optional: true},
	}
	missing := Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "b" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}
