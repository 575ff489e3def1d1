// Package metadata owns the persisted run configuration: the camelCase JSON
// side file written next to the translation output, and the precedence rule
// that merges it with command-line flags into the configuration a run
// actually uses.
package metadata

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"rvpacker/internal/fileutil"
	"rvpacker/internal/gamedata"
	"rvpacker/internal/rangespec"
)

const (
	// MetadataFile is the persisted configuration record inside the
	// translation directory.
	MetadataFile = ".rvpacker-metadata"
	// IgnoreFile is the persisted list of purged lines inside the
	// translation directory.
	IgnoreFile = ".rvpacker-ignore"
)

// Hash is a 128-bit content fingerprint. It serializes as a 32-character
// lowercase hex string; JSON numbers cannot carry 128 bits.
type Hash [16]byte

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	dst := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(dst, h[:])
	return dst, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != len(h) {
		return fmt.Errorf("hash %q is not 128 bits", text)
	}
	_, err := hex.Decode(h[:], text)
	return err
}

// Metadata is the persisted configuration snapshot. Unknown fields are
// ignored on read for forward compatibility.
type Metadata struct {
	Romanize                bool                   `json:"romanize"`
	DisableCustomProcessing bool                   `json:"disableCustomProcessing"`
	Trim                    bool                   `json:"trim"`
	DuplicateMode           gamedata.DuplicateMode `json:"duplicateMode"`
	Hashes                  []Hash                 `json:"hashes,omitempty"`
}

// Load reads the metadata file at path. A missing file is legal and yields
// (nil, nil): it means "first run".
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse metadata file %s: %w", path, err)
	}
	return &md, nil
}

// Save writes the metadata file at path, creating its parent directory when
// absent.
func Save(path string, md Metadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return err
	}
	return fileutil.WriteFileDirs(path, data)
}

// Operation is the external service a run dispatches to.
type Operation int

const (
	OpRead Operation = iota
	OpWrite
	OpPurge
)

func (o Operation) String() string {
	switch o {
	case OpWrite:
		return "write"
	case OpPurge:
		return "purge"
	default:
		return "read"
	}
}

// Flags is the CLI-supplied half of the configuration.
type Flags struct {
	Romanize                bool
	Trim                    bool
	DisableCustomProcessing bool
	DuplicateMode           gamedata.DuplicateMode
	SkipFiles               gamedata.FileFlags
	SkipMaps                []uint16
	SkipEvents              []rangespec.EventRange
	MapEvents               bool
}

// RunConfiguration is the fully resolved behavior of a run.
type RunConfiguration struct {
	Files                   gamedata.FileFlags
	Romanize                bool
	Trim                    bool
	DisableCustomProcessing bool
	DuplicateMode           gamedata.DuplicateMode
	ReadMode                gamedata.ReadMode
	SkipMaps                []uint16
	SkipEvents              []rangespec.EventRange
	MapEvents               bool
}

// Resolve merges CLI flags with an optional persisted metadata record.
// When metadata exists and is authoritative (always for write and purge,
// and for read in an append mode) its fields override the CLI values
// unconditionally: once a translation project is configured, behavior is
// fixed for its life and silent mode drift between runs is prevented. The
// hash set is not part of the result; it flows to the read service
// separately.
func Resolve(op Operation, mode gamedata.ReadMode, cli Flags, md *Metadata) RunConfiguration {
	cfg := RunConfiguration{
		Files:                   gamedata.FlagAll &^ cli.SkipFiles,
		Romanize:                cli.Romanize,
		Trim:                    cli.Trim,
		DisableCustomProcessing: cli.DisableCustomProcessing,
		DuplicateMode:           cli.DuplicateMode,
		ReadMode:                mode,
		SkipMaps:                cli.SkipMaps,
		SkipEvents:              cli.SkipEvents,
		MapEvents:               cli.MapEvents,
	}

	if md != nil && (op != OpRead || mode.IsAppend()) {
		cfg.Romanize = md.Romanize
		cfg.Trim = md.Trim
		cfg.DisableCustomProcessing = md.DisableCustomProcessing
		cfg.DuplicateMode = md.DuplicateMode
	}

	return cfg
}
