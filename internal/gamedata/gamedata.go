// Package gamedata defines the closed enumerations shared by the reader,
// writer, and purger: game data file categories, read modes, and duplicate
// handling policies. All string mappings are explicit tables so unknown
// values are rejected with the offending input.
package gamedata

import (
	"fmt"
	"strings"
)

// FileType identifies a category of game data file by its base name.
type FileType int

const (
	FileInvalid FileType = iota
	FileMap
	FileActors
	FileArmors
	FileClasses
	FileCommonEvents
	FileEnemies
	FileItems
	FileSkills
	FileStates
	FileSystem
	FileTroops
	FileWeapons
	FileScripts
)

var fileTypeNames = map[FileType]string{
	FileMap:          "maps",
	FileActors:       "actors",
	FileArmors:       "armors",
	FileClasses:      "classes",
	FileCommonEvents: "commonevents",
	FileEnemies:      "enemies",
	FileItems:        "items",
	FileSkills:       "skills",
	FileStates:       "states",
	FileSystem:       "system",
	FileTroops:       "troops",
	FileWeapons:      "weapons",
	FileScripts:      "scripts",
}

// FileTypeFromName resolves a file identifier to its FileType. Matching is
// case-insensitive and tolerant of the singular form; `plugins` is accepted
// as an alias for `scripts`.
func FileTypeFromName(name string) (FileType, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "map", "maps":
		return FileMap, nil
	case "actors":
		return FileActors, nil
	case "armors":
		return FileArmors, nil
	case "classes":
		return FileClasses, nil
	case "commonevents", "common_events":
		return FileCommonEvents, nil
	case "enemies":
		return FileEnemies, nil
	case "items":
		return FileItems, nil
	case "skills":
		return FileSkills, nil
	case "states":
		return FileStates, nil
	case "system":
		return FileSystem, nil
	case "troops":
		return FileTroops, nil
	case "weapons":
		return FileWeapons, nil
	case "scripts", "plugins":
		return FileScripts, nil
	default:
		return FileInvalid, fmt.Errorf("unknown file identifier %q", name)
	}
}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}
	return "invalid"
}

// Flag reports the FileFlags bit governing this file type.
func (t FileType) Flag() FileFlags {
	switch t {
	case FileMap:
		return FlagMap
	case FileSystem:
		return FlagSystem
	case FileScripts:
		return FlagScripts
	case FileInvalid:
		return 0
	default:
		return FlagOther
	}
}

// FileFlags is a bit set selecting which file categories an operation
// processes.
type FileFlags uint8

const (
	FlagMap FileFlags = 1 << iota
	FlagOther
	FlagSystem
	FlagScripts

	FlagAll = FlagMap | FlagOther | FlagSystem | FlagScripts
)

// ParseFileFlags parses a comma-separated list of file categories into a
// FileFlags set. Empty tokens are skipped; an empty input yields the empty
// set. `plugins` is accepted as an alias for `scripts`.
func ParseFileFlags(s string) (FileFlags, error) {
	var flags FileFlags
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		switch strings.ToLower(token) {
		case "map", "maps":
			flags |= FlagMap
		case "other":
			flags |= FlagOther
		case "system":
			flags |= FlagSystem
		case "scripts", "plugins":
			flags |= FlagScripts
		default:
			return 0, fmt.Errorf("unknown file flag %q", token)
		}
	}
	return flags, nil
}

// Has reports whether every bit of other is set.
func (f FileFlags) Has(other FileFlags) bool {
	return f&other == other
}

// ReadMode selects how a read run treats existing translation files.
type ReadMode int

const (
	// ReadDefault aborts when translation files already exist.
	ReadDefault ReadMode = iota
	// ReadAppend merges new text into existing translation files.
	ReadAppend
	// ReadForce rewrites translation files unconditionally.
	ReadForce
	// ReadForceAppend combines force and append semantics.
	ReadForceAppend
)

var readModeNames = map[ReadMode]string{
	ReadDefault:     "default",
	ReadAppend:      "append",
	ReadForce:       "force",
	ReadForceAppend: "force-append",
}

// ReadModeVariants lists the accepted --read-mode values in display order.
var ReadModeVariants = []string{"default", "append", "force", "force-append"}

// ParseReadMode maps a mode string to its ReadMode.
func ParseReadMode(s string) (ReadMode, error) {
	switch s {
	case "default":
		return ReadDefault, nil
	case "append":
		return ReadAppend, nil
	case "force":
		return ReadForce, nil
	case "force-append":
		return ReadForceAppend, nil
	default:
		return ReadDefault, fmt.Errorf("unknown read mode %q", s)
	}
}

func (m ReadMode) String() string { return readModeNames[m] }

// IsAppend reports whether the mode merges with existing translation.
func (m ReadMode) IsAppend() bool { return m == ReadAppend || m == ReadForceAppend }

// IsForce reports whether the mode rewrites existing translation.
func (m ReadMode) IsForce() bool { return m == ReadForce || m == ReadForceAppend }

// DuplicateMode is the policy for repeated identical source text entries.
type DuplicateMode int

const (
	// DuplicateRemove keeps only the first occurrence of repeated text.
	DuplicateRemove DuplicateMode = iota
	// DuplicateAllow keeps every occurrence.
	DuplicateAllow
)

// DuplicateModeVariants lists the accepted --duplicate-mode values.
var DuplicateModeVariants = []string{"remove", "allow"}

// ParseDuplicateMode maps a policy string to its DuplicateMode.
func ParseDuplicateMode(s string) (DuplicateMode, error) {
	switch s {
	case "remove":
		return DuplicateRemove, nil
	case "allow":
		return DuplicateAllow, nil
	default:
		return DuplicateRemove, fmt.Errorf("unknown duplicate mode %q", s)
	}
}

func (m DuplicateMode) String() string {
	if m == DuplicateAllow {
		return "allow"
	}
	return "remove"
}

// MarshalText implements encoding.TextMarshaler for metadata persistence.
func (m DuplicateMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values are
// rejected so a corrupted metadata file fails loudly.
func (m *DuplicateMode) UnmarshalText(text []byte) error {
	mode, err := ParseDuplicateMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
