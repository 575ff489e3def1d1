// Package game extracts a human-readable game title from an engine's system
// descriptor and classifies it into the small set of quirks profiles that
// toggle custom text processing.
package game

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"rvpacker/internal/engine"
)

// Type is the quirks profile derived from the game title.
type Type int

const (
	// None applies no custom text processing.
	None Type = iota
	// Termina covers Fear & Hunger 2: Termina.
	Termina
	// LisaRPG covers LISA: The Painful and its derivatives.
	LisaRPG
)

func (t Type) String() string {
	switch t {
	case Termina:
		return "termina"
	case LisaRPG:
		return "lisa"
	default:
		return "none"
	}
}

// Classify maps a title to its quirks profile. The disable flag always wins:
// classification with disable set yields None regardless of the title. The
// substring checks run in a fixed order for reproducibility.
func Classify(title string, disableCustomProcessing bool) Type {
	if disableCustomProcessing {
		return None
	}
	lowered := strings.ToLower(title)
	switch {
	case strings.Contains(lowered, "termina"):
		return Termina
	case strings.Contains(lowered, "lisa"):
		return LisaRPG
	default:
		return None
	}
}

// Title reads the game title for the resolved engine. New engines carry it
// in System.json; legacy engines in a Game.ini beside the source directory.
func Title(res engine.Resolution, iniPath string) (string, error) {
	if res.Type.IsNew() {
		data, err := os.ReadFile(res.SystemFile)
		if err != nil {
			return "", err
		}
		return TitleFromSystemJSON(data)
	}

	data, err := os.ReadFile(iniPath)
	if err != nil {
		return "", err
	}
	raw, err := TitleFromINI(data)
	if err != nil {
		return "", err
	}
	return decodeLegacyTitle(raw), nil
}

// TitleFromSystemJSON extracts the `gameTitle` field from a System.json
// document.
func TitleFromSystemJSON(data []byte) (string, error) {
	var system struct {
		GameTitle *string `json:"gameTitle"`
	}
	if err := json.Unmarshal(data, &system); err != nil {
		return "", fmt.Errorf("parse System.json: %w", err)
	}
	if system.GameTitle == nil {
		return "", fmt.Errorf("System.json has no `gameTitle` field")
	}
	return *system.GameTitle, nil
}

// TitleFromINI extracts the raw bytes of the `Title` key from a Game.ini
// buffer. The value is returned undecoded: legacy titles are frequently
// CP932 rather than UTF-8.
func TitleFromINI(data []byte) ([]byte, error) {
	for line := range strings.Lines(string(data)) {
		line = strings.TrimRight(line, "\r\n")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "Title") {
			return []byte(strings.TrimSpace(value)), nil
		}
	}
	return nil, fmt.Errorf("Game.ini has no `Title` key")
}

// decodeLegacyTitle decodes an INI title permissively: valid UTF-8 passes
// through, then Shift-JIS is attempted, then a lossy UTF-8 conversion.
func decodeLegacyTitle(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw); err == nil {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
