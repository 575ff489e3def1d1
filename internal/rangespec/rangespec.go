// Package rangespec parses the compact range/list syntax used by the skip
// flags: comma-separated indices and inclusive `start-end` ranges, plus the
// `file:list;file:list` namespaced form used for event skips.
package rangespec

import (
	"fmt"
	"strconv"
	"strings"

	"rvpacker/internal/gamedata"
)

// EventRange pairs a game data file category with the event indices to skip
// inside it. Sections keep their input order and a file may legally repeat.
type EventRange struct {
	File    gamedata.FileType
	Indices []uint16
}

// Parse parses a single comma-separated list of indices and inclusive
// ranges. Whitespace around tokens is ignored and empty tokens are skipped.
// On error no partial result is returned.
func Parse(s string) ([]uint16, error) {
	var indices []uint16
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := parseToken(part)
		if err != nil {
			return nil, err
		}
		indices = append(indices, parsed...)
	}
	return indices, nil
}

// ParseEvents parses the namespaced `file:0,1-3;file:4` syntax. Every
// section must contain exactly one `:`; the identifier before it resolves
// through gamedata.FileTypeFromName.
func ParseEvents(s string) ([]EventRange, error) {
	var result []EventRange
	for _, section := range strings.Split(s, ";") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		name, list, ok := strings.Cut(section, ":")
		if !ok {
			return nil, fmt.Errorf("section %q is missing a `:` separator", section)
		}
		fileType, err := gamedata.FileTypeFromName(name)
		if err != nil {
			return nil, err
		}
		indices, err := Parse(list)
		if err != nil {
			return nil, err
		}
		result = append(result, EventRange{File: fileType, Indices: indices})
	}
	return result, nil
}

func parseToken(token string) ([]uint16, error) {
	if a, b, ok := strings.Cut(token, "-"); ok {
		start, err := strconv.ParseUint(strings.TrimSpace(a), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid start of range `%s`: %w", a, err)
		}
		end, err := strconv.ParseUint(strings.TrimSpace(b), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid end of range `%s`: %w", b, err)
		}
		if start > end {
			return nil, fmt.Errorf("range `%s` is reversed (start > end)", token)
		}
		indices := make([]uint16, 0, end-start+1)
		for v := start; v <= end; v++ {
			indices = append(indices, uint16(v))
		}
		return indices, nil
	}

	v, err := strconv.ParseUint(token, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid integer `%s`: %w", token, err)
	}
	return []uint16{uint16(v)}, nil
}
