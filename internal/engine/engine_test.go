package engine_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rvpacker/internal/engine"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveByDescriptor(t *testing.T) {
	tests := []struct {
		system string
		want   engine.Type
	}{
		{"System.json", engine.New},
		{"System.rvdata2", engine.VXAce},
		{"System.rvdata", engine.VX},
		{"System.rxdata", engine.XP},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "data", tt.system))

		res, err := engine.Resolve(dir)
		if err != nil {
			t.Fatalf("%s: Resolve returned error: %v", tt.system, err)
		}
		if res.Type != tt.want {
			t.Fatalf("%s: resolved %v, want %v", tt.system, res.Type, tt.want)
		}
		if res.SourceDir != filepath.Join(dir, "data") {
			t.Fatalf("%s: unexpected source dir %q", tt.system, res.SourceDir)
		}
	}
}

func TestResolveByArchiveAlone(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Data"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "Game.rgss3a"))

	res, err := engine.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Type != engine.VXAce {
		t.Fatalf("resolved %v, want VXAce", res.Type)
	}
	if res.ArchivePath != filepath.Join(dir, "Game.rgss3a") {
		t.Fatalf("unexpected archive path %q", res.ArchivePath)
	}
	if res.SystemFile != filepath.Join(dir, "Data", "System.rvdata2") {
		t.Fatalf("unexpected system file %q", res.SystemFile)
	}
}

func TestResolveProbeOrderPrefersNewerEngine(t *testing.T) {
	// A VX Ace descriptor outranks an XP archive in the same tree.
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "System.rvdata2"))
	writeFile(t, filepath.Join(dir, "Game.rgssad"))

	res, err := engine.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Type != engine.VXAce {
		t.Fatalf("resolved %v, want VXAce", res.Type)
	}
}

func TestResolveSourceDirPriority(t *testing.T) {
	// `original` wins over `data` when both exist.
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "original", "System.json"))
	writeFile(t, filepath.Join(dir, "data", "System.rxdata"))

	res, err := engine.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Type != engine.New {
		t.Fatalf("resolved %v, want New", res.Type)
	}
	if res.SourceDir != filepath.Join(dir, "original") {
		t.Fatalf("unexpected source dir %q", res.SourceDir)
	}
}

func TestResolveErrors(t *testing.T) {
	if _, err := engine.Resolve(t.TempDir()); !errors.Is(err, engine.ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Resolve(dir); !errors.Is(err, engine.ErrUndetermined) {
		t.Fatalf("expected ErrUndetermined, got %v", err)
	}
}
