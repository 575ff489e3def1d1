// Package engine determines which RPG Maker generation produced an input
// directory and where its system descriptor and optional packed archive
// live. Probing is an ordered list of candidates evaluated strictly in
// order; the priority is part of the contract, not an accident of code
// layout.
package engine

import (
	"errors"
	"os"
	"path/filepath"
)

// Type is the game engine data-format generation.
type Type int

const (
	// New covers MV and MZ, which store data as JSON.
	New Type = iota
	// VXAce stores data as .rvdata2 files.
	VXAce
	// VX stores data as .rvdata files.
	VX
	// XP stores data as .rxdata files.
	XP
)

var typeNames = map[Type]string{
	New:   "mv/mz",
	VXAce: "vxace",
	VX:    "vx",
	XP:    "xp",
}

func (t Type) String() string { return typeNames[t] }

// IsNew reports whether the engine stores its data natively as JSON.
func (t Type) IsNew() bool { return t == New }

// ErrDirectoryNotFound is returned when no source data directory exists
// under the input root.
var ErrDirectoryNotFound = errors.New("could not find `original` or `data`/`Data` directory")

// ErrUndetermined is returned when no engine's system descriptor or archive
// is present.
var ErrUndetermined = errors.New("could not determine game engine: no `System` file inside the source directory and no `.rgss` archive")

// Resolution is the outcome of probing an input directory.
type Resolution struct {
	Type Type

	// SourceDir is the directory holding the engine's native data files.
	SourceDir string
	// SystemFile is the engine's system descriptor path. It may not exist
	// yet when the game ships only a packed archive.
	SystemFile string
	// ArchivePath is the conventional packed archive location for legacy
	// engines, empty for New.
	ArchivePath string
}

// sourceDirCandidates is probed in order; the first existing directory wins.
var sourceDirCandidates = []string{"original", "data", "Data"}

type probe struct {
	engine     Type
	systemName string
	archive    string
}

// probes is evaluated in order; the first entry whose system descriptor or
// archive exists wins. New outranks VXAce outranks VX outranks XP.
var probes = []probe{
	{New, "System.json", ""},
	{VXAce, "System.rvdata2", "Game.rgss3a"},
	{VX, "System.rvdata", "Game.rgss2a"},
	{XP, "System.rxdata", "Game.rgssad"},
}

// Resolve probes inputDir for a source data directory and an engine type.
func Resolve(inputDir string) (Resolution, error) {
	var sourceDir string
	for _, candidate := range sourceDirCandidates {
		path := filepath.Join(inputDir, candidate)
		if pathExists(path) {
			sourceDir = path
			break
		}
	}
	if sourceDir == "" {
		return Resolution{}, ErrDirectoryNotFound
	}

	for _, p := range probes {
		systemFile := filepath.Join(sourceDir, p.systemName)
		archivePath := ""
		if p.archive != "" {
			archivePath = filepath.Join(inputDir, p.archive)
		}
		if !pathExists(systemFile) && (archivePath == "" || !pathExists(archivePath)) {
			continue
		}
		return Resolution{
			Type:        p.engine,
			SourceDir:   sourceDir,
			SystemFile:  systemFile,
			ArchivePath: archivePath,
		}, nil
	}

	return Resolution{}, ErrUndetermined
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
