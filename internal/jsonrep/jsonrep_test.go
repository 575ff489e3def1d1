package jsonrep_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rvpacker/internal/engine"
	"rvpacker/internal/jsonrep"
	"rvpacker/internal/marshal"
)

func systemFixture(t *testing.T) []byte {
	t.Helper()
	encoded, err := marshal.Encode(map[string]any{
		"__class":       marshal.SymbolPrefix + "RPG::System",
		"@game_title":   "Legacy Quest",
		"@version_id":   int64(12345),
		"@elements":     []any{"Fire", "Ice"},
		"@start_map_id": int64(1),
	})
	if err != nil {
		t.Fatal(err)
	}
	return encoded
}

func TestGenerateAndWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sourceDir := filepath.Join(dir, "Data")
	jsonDir := filepath.Join(dir, "json")
	outputDir := filepath.Join(dir, "json-output")
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		t.Fatal(err)
	}

	original := systemFixture(t)
	if err := os.WriteFile(filepath.Join(sourceDir, "System.rvdata2"), original, 0o644); err != nil {
		t.Fatal(err)
	}
	// Files with foreign extensions are not representations.
	if err := os.WriteFile(filepath.Join(sourceDir, "Game.ini"), []byte("Title=x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := jsonrep.Generate(sourceDir, jsonDir, engine.VXAce, false); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	repPath := filepath.Join(jsonDir, "System.json")
	if _, err := os.Stat(repPath); err != nil {
		t.Fatalf("representation was not written: %v", err)
	}

	if err := jsonrep.Write(jsonDir, outputDir, engine.VXAce); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	rebuilt, err := os.ReadFile(filepath.Join(outputDir, "System.rvdata2"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rebuilt, original) {
		t.Fatal("write did not reproduce the original data file")
	}
}

func TestGenerateSkipsExistingUnlessForced(t *testing.T) {
	dir := t.TempDir()
	sourceDir := filepath.Join(dir, "Data")
	jsonDir := filepath.Join(dir, "json")
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "System.rvdata2"), systemFixture(t), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(jsonDir, 0o755); err != nil {
		t.Fatal(err)
	}

	repPath := filepath.Join(jsonDir, "System.json")
	sentinel := []byte("edited by hand")
	if err := os.WriteFile(repPath, sentinel, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := jsonrep.Generate(sourceDir, jsonDir, engine.VXAce, false); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	kept, err := os.ReadFile(repPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(kept, sentinel) {
		t.Fatal("existing representation was overwritten without force")
	}

	if err := jsonrep.Generate(sourceDir, jsonDir, engine.VXAce, true); err != nil {
		t.Fatalf("forced Generate returned error: %v", err)
	}
	regenerated, err := os.ReadFile(repPath)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(regenerated, sentinel) {
		t.Fatal("force did not regenerate the representation")
	}
}

func TestNewEnginesAreRejected(t *testing.T) {
	dir := t.TempDir()
	if err := jsonrep.Generate(dir, dir, engine.New, false); !errors.Is(err, jsonrep.ErrNewEngine) {
		t.Fatalf("Generate: expected ErrNewEngine, got %v", err)
	}
	if err := jsonrep.Write(dir, dir, engine.New); !errors.Is(err, jsonrep.ErrNewEngine) {
		t.Fatalf("Write: expected ErrNewEngine, got %v", err)
	}
}
