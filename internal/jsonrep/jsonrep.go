// Package jsonrep converts legacy engines' Marshal data files to and from
// editable JSON representations: `json generate` fills a `json` directory
// from the source files, `json write` encodes the representations back
// into native data files.
package jsonrep

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rvpacker/internal/engine"
	"rvpacker/internal/marshal"
)

// ErrNewEngine is returned when a JSON representation command is invoked
// for an MV/MZ game, whose data already is JSON.
var ErrNewEngine = errors.New("json commands apply to legacy engines only; MV/MZ data files are already JSON")

// Generate decodes every Marshal data file in sourceDir into
// `<jsonDir>/<name>.json`. Existing representations are skipped unless
// force is set.
func Generate(sourceDir, jsonDir string, engineType engine.Type, force bool) error {
	if engineType.IsNew() {
		return ErrNewEngine
	}

	names, err := dataFiles(sourceDir, engineType)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(jsonDir, 0o755); err != nil {
		return err
	}

	for _, name := range names {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		outPath := filepath.Join(jsonDir, base+".json")
		if !force {
			if _, err := os.Stat(outPath); err == nil {
				continue
			}
		}

		data, err := os.ReadFile(filepath.Join(sourceDir, name))
		if err != nil {
			return err
		}
		tree, err := marshal.Decode(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		encoded, err := marshal.ToJSON(tree)
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
			return err
		}
	}

	return nil
}

// Write encodes every representation in jsonDir back into a native data
// file under outputDir.
func Write(jsonDir, outputDir string, engineType engine.Type) error {
	if engineType.IsNew() {
		return ErrNewEngine
	}

	entries, err := os.ReadDir(jsonDir)
	if err != nil {
		return fmt.Errorf("read json directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(jsonDir, entry.Name()))
		if err != nil {
			return err
		}
		tree, err := marshal.FromJSON(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		encoded, err := marshal.Encode(tree)
		if err != nil {
			return fmt.Errorf("encode %s: %w", entry.Name(), err)
		}

		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		outPath := filepath.Join(outputDir, base+dataExt(engineType))
		if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
			return err
		}
	}

	return nil
}

// dataFiles lists the engine's data files in sourceDir, sorted by name.
func dataFiles(sourceDir string, engineType engine.Type) ([]string, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}
	ext := dataExt(engineType)

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func dataExt(t engine.Type) string {
	switch t {
	case engine.VXAce:
		return ".rvdata2"
	case engine.VX:
		return ".rvdata"
	case engine.XP:
		return ".rxdata"
	default:
		return ".json"
	}
}
