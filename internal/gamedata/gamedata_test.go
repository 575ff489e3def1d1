package gamedata_test

import (
	"testing"

	"rvpacker/internal/gamedata"
)

func TestFileTypeFromNameAliases(t *testing.T) {
	tests := []struct {
		name string
		want gamedata.FileType
	}{
		{"maps", gamedata.FileMap},
		{"map", gamedata.FileMap},
		{"Maps", gamedata.FileMap},
		{"COMMONEVENTS", gamedata.FileCommonEvents},
		{"common_events", gamedata.FileCommonEvents},
		{"plugins", gamedata.FileScripts},
		{"scripts", gamedata.FileScripts},
		{" system ", gamedata.FileSystem},
	}
	for _, tt := range tests {
		got, err := gamedata.FileTypeFromName(tt.name)
		if err != nil {
			t.Fatalf("FileTypeFromName(%q) returned error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("FileTypeFromName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := gamedata.FileTypeFromName("tilesets"); err == nil {
		t.Fatal("expected error for unknown identifier")
	}
}

func TestFileTypeFlagBuckets(t *testing.T) {
	if gamedata.FileMap.Flag() != gamedata.FlagMap {
		t.Fatal("maps must map to the map flag")
	}
	if gamedata.FileSystem.Flag() != gamedata.FlagSystem {
		t.Fatal("system must map to the system flag")
	}
	if gamedata.FileScripts.Flag() != gamedata.FlagScripts {
		t.Fatal("scripts must map to the scripts flag")
	}
	for _, other := range []gamedata.FileType{
		gamedata.FileActors, gamedata.FileArmors, gamedata.FileClasses,
		gamedata.FileCommonEvents, gamedata.FileEnemies, gamedata.FileItems,
		gamedata.FileSkills, gamedata.FileStates, gamedata.FileTroops,
		gamedata.FileWeapons,
	} {
		if other.Flag() != gamedata.FlagOther {
			t.Fatalf("%v must map to the other flag", other)
		}
	}
}

func TestParseFileFlags(t *testing.T) {
	flags, err := gamedata.ParseFileFlags("maps, system")
	if err != nil {
		t.Fatalf("ParseFileFlags returned error: %v", err)
	}
	if flags != gamedata.FlagMap|gamedata.FlagSystem {
		t.Fatalf("unexpected flags: %v", flags)
	}

	remaining := gamedata.FlagAll &^ flags
	if remaining.Has(gamedata.FlagMap) || !remaining.Has(gamedata.FlagOther) {
		t.Fatalf("complement is wrong: %v", remaining)
	}

	if _, err := gamedata.ParseFileFlags("maps,everything"); err == nil {
		t.Fatal("expected error for unknown flag token")
	}
}

func TestReadModePredicates(t *testing.T) {
	tests := []struct {
		input  string
		append bool
		force  bool
	}{
		{"default", false, false},
		{"append", true, false},
		{"force", false, true},
		{"force-append", true, true},
	}
	for _, tt := range tests {
		mode, err := gamedata.ParseReadMode(tt.input)
		if err != nil {
			t.Fatalf("ParseReadMode(%q) returned error: %v", tt.input, err)
		}
		if mode.IsAppend() != tt.append || mode.IsForce() != tt.force {
			t.Fatalf("%q: append=%v force=%v, want %v/%v",
				tt.input, mode.IsAppend(), mode.IsForce(), tt.append, tt.force)
		}
		if mode.String() != tt.input {
			t.Fatalf("%q round trips to %q", tt.input, mode.String())
		}
	}

	if _, err := gamedata.ParseReadMode("Force"); err == nil {
		t.Fatal("mode matching must be exact")
	}
}

func TestDuplicateModeTextRoundTrip(t *testing.T) {
	for _, name := range gamedata.DuplicateModeVariants {
		mode, err := gamedata.ParseDuplicateMode(name)
		if err != nil {
			t.Fatalf("ParseDuplicateMode(%q) returned error: %v", name, err)
		}
		text, err := mode.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText returned error: %v", err)
		}
		var back gamedata.DuplicateMode
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) returned error: %v", text, err)
		}
		if back != mode {
			t.Fatalf("%q did not round trip", name)
		}
	}

	var mode gamedata.DuplicateMode
	if err := mode.UnmarshalText([]byte("keep")); err == nil {
		t.Fatal("expected error for unknown duplicate mode")
	}
}
