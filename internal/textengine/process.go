package textengine

import (
	"regexp"
	"strings"

	"rvpacker/internal/game"
	"rvpacker/internal/metadata"
)

// romanizer maps Japanese punctuation to western equivalents.
var romanizer = strings.NewReplacer(
	"「", "'", "」", "'",
	"『", `"`, "』", `"`,
	"。", ".", "、", ",",
	"！", "!", "？", "?",
	"：", ":", "；", ";",
	"（", "(", "）", ")",
	"…", "...", "‥", "..",
	"・", "·", "～", "~",
	"　", " ",
)

// lisaPrefixPattern matches the LISA engine's name-tag control sequences,
// which prefix dialogue lines and must survive translation untouched.
var lisaPrefixPattern = regexp.MustCompile(`^\\(?:nbt|et\[\d+\])`)

// processText normalizes one extracted string according to the run
// configuration and quirks profile. It returns the normalized text used as
// the translation key, the control prefix stripped from it (reattached on
// write), and whether the string yields an entry at all.
func processText(raw string, cfg metadata.RunConfiguration, gameType game.Type) (processed, prefix string, ok bool) {
	processed = raw

	if gameType == game.LisaRPG {
		if loc := lisaPrefixPattern.FindString(processed); loc != "" {
			prefix = loc
			processed = processed[len(loc):]
		}
	}
	if cfg.Trim {
		processed = strings.TrimSpace(processed)
	}
	if cfg.Romanize {
		processed = romanizer.Replace(processed)
	}

	if processed == "" {
		return "", "", false
	}
	return processed, prefix, true
}
