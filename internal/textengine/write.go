package textengine

import (
	"os"
	"path/filepath"

	"rvpacker/internal/game"
	"rvpacker/internal/marshal"
)

// writeFile rebuilds one game data file with translations applied. New
// engines serialize back to JSON; legacy representations re-encode to the
// engine's native Marshal format.
func (e *Engine) writeFile(req WriteRequest, src sourceFile, lookup map[string]string) error {
	root, err := parseDocument(src.path)
	if err != nil {
		return err
	}

	replace := func(raw string) (string, bool) {
		key, prefix, ok := processText(raw, req.Config, req.GameType)
		if !ok {
			return "", false
		}
		translation := lookup[key]
		if translation == "" {
			return "", false
		}
		return prefix + translation, true
	}

	walkDocument(src, root, walkOptions{
		skipEvents: skipEventSet(req.Config, src.category),
		mapEvents:  req.Config.MapEvents,
		termina:    req.GameType == game.Termina,
	}, replace)

	var out []byte
	name := src.name
	if req.Engine.IsNew() {
		out, err = marshal.ToJSON(root)
	} else {
		name = src.baseName + dataExt(req.Engine)
		out, err = marshal.Encode(root)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(req.OutputDir, name), out, 0o644)
}
