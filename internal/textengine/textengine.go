// Package textengine implements the read, write, and purge services over
// game data: it extracts translatable text into per-category translation
// files, writes translated text back into rebuilt game files, and purges
// stale or untranslated lines.
//
// New-generation engines (MV/MZ) are processed directly from their JSON
// sources. Legacy engines are processed through the JSON representations
// produced by `json generate`; reading a legacy game without generated
// representations is a configuration error.
package textengine

import (
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"rvpacker/internal/engine"
	"rvpacker/internal/game"
	"rvpacker/internal/gamedata"
	"rvpacker/internal/logging"
	"rvpacker/internal/metadata"
)

// ErrTranslationExists is returned by Read in the default mode when
// translation files are already present.
var ErrTranslationExists = errors.New("translation files already exist; use `--read-mode append` to merge or `--read-mode force` to rewrite")

// ErrNoJSONRepresentations is returned when a legacy engine is processed
// without a generated `json` directory.
var ErrNoJSONRepresentations = errors.New("legacy engine has no generated JSON representations; run `json generate` first")

// Request carries the paths and configuration shared by all operations.
type Request struct {
	SourceDir      string
	TranslationDir string
	// JSONDir holds the representations used in place of SourceDir for
	// legacy engines.
	JSONDir  string
	Engine   engine.Type
	GameType game.Type
	Config   metadata.RunConfiguration
}

// ReadRequest parameterizes a read run.
type ReadRequest struct {
	Request
	// Hashes is the fingerprint set recorded by the previous read. Append
	// mode uses it to tell stale extracted lines, which are dropped, from
	// hand-added translation lines, which are kept.
	Hashes []metadata.Hash
	// Ignore suppresses entries listed in the ignore file.
	Ignore bool
}

// WriteRequest parameterizes a write run.
type WriteRequest struct {
	Request
	OutputDir string
}

// PurgeRequest parameterizes a purge run.
type PurgeRequest struct {
	Request
	// CreateIgnore records purged lines in the ignore file.
	CreateIgnore bool
}

// Engine is the text extraction/reinsertion service.
type Engine struct {
	log *slog.Logger
}

// New constructs an Engine logging through logger.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{log: logger}
}

// Read extracts translatable text into the translation directory and
// returns the refreshed content hash set.
func (e *Engine) Read(req ReadRequest) ([]metadata.Hash, error) {
	sources, err := e.enumerate(req.Request)
	if err != nil {
		return nil, err
	}

	if !req.Config.ReadMode.IsAppend() && !req.Config.ReadMode.IsForce() {
		if existing, err := anyTranslationExists(req.TranslationDir); err != nil {
			return nil, err
		} else if existing {
			return nil, ErrTranslationExists
		}
	}

	var ignored map[string]struct{}
	if req.Ignore {
		ignored, err = loadIgnoreSet(filepath.Join(req.TranslationDir, metadata.IgnoreFile))
		if err != nil {
			return nil, err
		}
	}

	extracted, err := e.extractAll(req.Request, sources)
	if err != nil {
		return nil, err
	}

	var hashes []metadata.Hash
	seen := make(map[metadata.Hash]struct{})
	recorded := make(map[metadata.Hash]struct{}, len(req.Hashes))
	for _, h := range req.Hashes {
		recorded[h] = struct{}{}
	}

	for _, category := range categoryOrder {
		entries := extracted[category]
		if entries == nil {
			continue
		}

		filtered := entries[:0]
		for _, source := range entries {
			if _, skip := ignored[source]; skip {
				continue
			}
			filtered = append(filtered, source)
			h := metadata.Hash(md5.Sum([]byte(source)))
			if _, dup := seen[h]; !dup {
				seen[h] = struct{}{}
				hashes = append(hashes, h)
			}
		}

		path := translationPath(req.TranslationDir, category)
		var previousLines []line
		if req.Config.ReadMode.IsAppend() {
			previousLines, err = loadTranslationFile(path)
			if err != nil {
				return nil, err
			}
		}
		previous := translationLookup(previousLines)

		lines := make([]line, 0, len(filtered))
		current := make(map[string]struct{}, len(filtered))
		for _, source := range filtered {
			lines = append(lines, line{source: source, translation: previous[source]})
			current[source] = struct{}{}
		}

		// Previous entries the game no longer produces split on the recorded
		// hash set: sources a prior read extracted are stale and dropped,
		// the rest are hand-added lines and survive the merge. Hand-added
		// lines stay out of the returned set so later appends keep them too.
		for _, l := range previousLines {
			if _, live := current[l.source]; live {
				continue
			}
			if _, skip := ignored[l.source]; skip {
				continue
			}
			if _, stale := recorded[metadata.Hash(md5.Sum([]byte(l.source)))]; stale {
				continue
			}
			current[l.source] = struct{}{}
			lines = append(lines, l)
		}

		if err := writeTranslationFile(path, lines); err != nil {
			return nil, err
		}

		e.log.Debug("translation file written",
			logging.String("file", path),
			logging.Int("entries", len(lines)))
	}

	return hashes, nil
}

// Write rebuilds game files under the output directory with translations
// applied.
func (e *Engine) Write(req WriteRequest) error {
	sources, err := e.enumerate(req.Request)
	if err != nil {
		return err
	}

	translations := make(map[gamedata.FileType]map[string]string)
	for _, category := range categoryOrder {
		m, err := loadTranslationMap(translationPath(req.TranslationDir, category))
		if err != nil {
			return err
		}
		translations[category] = m
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return err
	}

	for _, src := range sources {
		lookup := translations[src.category]
		if err := e.writeFile(req, src, lookup); err != nil {
			return fmt.Errorf("write %s: %w", src.name, err)
		}
	}

	return nil
}

// Purge drops translation lines whose source no longer exists or whose
// translation is empty. With CreateIgnore set, purged sources are recorded
// in the ignore file.
func (e *Engine) Purge(req PurgeRequest) error {
	sources, err := e.enumerate(req.Request)
	if err != nil {
		return err
	}

	extracted, err := e.extractAll(req.Request, sources)
	if err != nil {
		return err
	}

	var purged []string
	for _, category := range categoryOrder {
		live := make(map[string]struct{}, len(extracted[category]))
		for _, source := range extracted[category] {
			live[source] = struct{}{}
		}

		path := translationPath(req.TranslationDir, category)
		lines, err := loadTranslationFile(path)
		if err != nil {
			return err
		}
		if lines == nil {
			continue
		}

		kept := lines[:0]
		for _, l := range lines {
			_, alive := live[l.source]
			if alive && l.translation != "" {
				kept = append(kept, l)
				continue
			}
			purged = append(purged, l.source)
		}
		if len(kept) == len(lines) {
			continue
		}
		if err := writeTranslationFile(path, kept); err != nil {
			return err
		}
		e.log.Debug("translation file purged",
			logging.String("file", path),
			logging.Int("removed", len(lines)-len(kept)))
	}

	if req.CreateIgnore && len(purged) > 0 {
		ignorePath := filepath.Join(req.TranslationDir, metadata.IgnoreFile)
		if err := appendIgnoreSet(ignorePath, purged); err != nil {
			return err
		}
	}

	return nil
}
