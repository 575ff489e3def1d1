package textengine

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"rvpacker/internal/engine"
	"rvpacker/internal/gamedata"
)

// categoryOrder fixes the processing order of translation categories so
// output and hash sets are deterministic.
var categoryOrder = []gamedata.FileType{
	gamedata.FileMap,
	gamedata.FileActors,
	gamedata.FileArmors,
	gamedata.FileClasses,
	gamedata.FileCommonEvents,
	gamedata.FileEnemies,
	gamedata.FileItems,
	gamedata.FileSkills,
	gamedata.FileStates,
	gamedata.FileSystem,
	gamedata.FileTroops,
	gamedata.FileWeapons,
}

// sourceFile is one classified game data file.
type sourceFile struct {
	// name is the file's base name inside the source directory.
	name string
	path string
	// baseName is name without its extension.
	baseName string
	category gamedata.FileType
	// mapIndex is the numeric map id for FileMap sources, -1 otherwise.
	mapIndex int
}

var mapNamePattern = regexp.MustCompile(`^(?i)map(\d+)$`)

var categoryByBaseName = map[string]gamedata.FileType{
	"actors":       gamedata.FileActors,
	"armors":       gamedata.FileArmors,
	"classes":      gamedata.FileClasses,
	"commonevents": gamedata.FileCommonEvents,
	"enemies":      gamedata.FileEnemies,
	"items":        gamedata.FileItems,
	"skills":       gamedata.FileSkills,
	"states":       gamedata.FileStates,
	"system":       gamedata.FileSystem,
	"troops":       gamedata.FileTroops,
	"weapons":      gamedata.FileWeapons,
}

// classify resolves a file base name (extension stripped) to its category.
func classify(baseName string) (gamedata.FileType, int, bool) {
	if m := mapNamePattern.FindStringSubmatch(baseName); m != nil {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx > int(^uint16(0)) {
			return gamedata.FileInvalid, 0, false
		}
		return gamedata.FileMap, idx, true
	}
	category, ok := categoryByBaseName[strings.ToLower(baseName)]
	if !ok {
		return gamedata.FileInvalid, 0, false
	}
	return category, -1, true
}

// dataDir reports the directory actually holding JSON documents for this
// request: the source directory for New engines, the generated
// representations for legacy ones.
func (r Request) dataDir() (string, error) {
	if r.Engine.IsNew() {
		return r.SourceDir, nil
	}
	if r.JSONDir == "" {
		return "", ErrNoJSONRepresentations
	}
	if _, err := os.Stat(r.JSONDir); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoJSONRepresentations
		}
		return "", err
	}
	return r.JSONDir, nil
}

// enumerate lists the request's processable JSON documents in name order,
// honoring the file-category flags and the map skip set.
func (e *Engine) enumerate(req Request) ([]sourceFile, error) {
	dir, err := req.dataDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	skipMaps := make(map[uint16]struct{}, len(req.Config.SkipMaps))
	for _, idx := range req.Config.SkipMaps {
		skipMaps[idx] = struct{}{}
	}

	var sources []sourceFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		baseName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		category, mapIndex, ok := classify(baseName)
		if !ok {
			continue
		}
		if !req.Config.Files.Has(category.Flag()) {
			continue
		}
		if category == gamedata.FileMap {
			if _, skip := skipMaps[uint16(mapIndex)]; skip {
				continue
			}
		}
		sources = append(sources, sourceFile{
			name:     entry.Name(),
			path:     filepath.Join(dir, entry.Name()),
			baseName: baseName,
			category: category,
			mapIndex: mapIndex,
		})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].name < sources[j].name })
	return sources, nil
}

// dataExt is the native data file extension written back for each engine.
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
