package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"rvpacker/internal/gamedata"
	"rvpacker/internal/metadata"
	"rvpacker/internal/rangespec"
)

// processFlags is the flag surface shared by read, write and purge.
type processFlags struct {
	readMode      string
	skipFiles     string
	skipMaps      string
	skipEvents    string
	duplicateMode string
	romanize      bool
	trim          bool
	noCustom      bool
	mapEvents     bool
}

// normalizeFlagName maps the short alias spellings onto the canonical flag
// names, so `--mode append` and `--read-mode append` are the same flag.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "mode":
		name = "read-mode"
	case "no-custom":
		name = "disable-custom-processing"
	case "skip":
		name = "skip-files"
	case "sm":
		name = "skip-maps"
	case "se":
		name = "skip-events"
	case "me":
		name = "map-events"
	case "dup-mode":
		name = "duplicate-mode"
	}
	return pflag.NormalizedName(name)
}

func (f *processFlags) register(cmd *cobra.Command, withMode bool) {
	flags := cmd.Flags()
	flags.SetNormalizeFunc(normalizeFlagName)

	if withMode {
		flags.StringVarP(&f.readMode, "read-mode", "r", "default", "Read mode: default, append, force or force-append (alias: --mode)")
	}
	flags.StringVarP(&f.skipFiles, "skip-files", "s", "", "Comma-separated file categories to skip, e.g. maps,system (alias: --skip)")
	flags.StringVar(&f.skipMaps, "skip-maps", "", "Map numbers or ranges to skip, e.g. 1,4-6 (alias: --sm)")
	flags.StringVar(&f.skipEvents, "skip-events", "", "Event indices per category, e.g. commonevents:4-6;troops:1 (alias: --se)")
	flags.StringVarP(&f.duplicateMode, "duplicate-mode", "d", "remove", "Duplicate handling: remove or allow (alias: --dup-mode)")
	flags.BoolVarP(&f.romanize, "romanize", "R", false, "Romanize Japanese punctuation in extracted text")
	flags.BoolVarP(&f.trim, "trim", "t", false, "Trim surrounding whitespace from extracted text")
	flags.BoolVarP(&f.noCustom, "disable-custom-processing", "D", false, "Disable game-specific processing (alias: --no-custom)")
	flags.BoolVarP(&f.mapEvents, "map-events", "m", false, "Extract map event names (alias: --me)")
}

func (f *processFlags) parse() (gamedata.ReadMode, metadata.Flags, error) {
	mode := gamedata.ReadDefault
	if f.readMode != "" {
		parsed, err := gamedata.ParseReadMode(f.readMode)
		if err != nil {
			return 0, metadata.Flags{}, fmt.Errorf("--read-mode: %w", err)
		}
		mode = parsed
	}

	out := metadata.Flags{
		Romanize:                f.romanize,
		Trim:                    f.trim,
		DisableCustomProcessing: f.noCustom,
		MapEvents:               f.mapEvents,
	}
	if f.duplicateMode != "" {
		parsed, err := gamedata.ParseDuplicateMode(f.duplicateMode)
		if err != nil {
			return 0, metadata.Flags{}, fmt.Errorf("--duplicate-mode: %w", err)
		}
		out.DuplicateMode = parsed
	}
	if f.skipFiles != "" {
		parsed, err := gamedata.ParseFileFlags(f.skipFiles)
		if err != nil {
			return 0, metadata.Flags{}, fmt.Errorf("--skip-files: %w", err)
		}
		out.SkipFiles = parsed
	}
	if f.skipMaps != "" {
		parsed, err := rangespec.Parse(f.skipMaps)
		if err != nil {
			return 0, metadata.Flags{}, fmt.Errorf("--skip-maps: %w", err)
		}
		out.SkipMaps = parsed
	}
	if f.skipEvents != "" {
		parsed, err := rangespec.ParseEvents(f.skipEvents)
		if err != nil {
			return 0, metadata.Flags{}, fmt.Errorf("--skip-events: %w", err)
		}
		out.SkipEvents = parsed
	}
	return mode, out, nil
}
