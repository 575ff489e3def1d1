package textengine

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rvpacker/internal/fileutil"
	"rvpacker/internal/gamedata"
)

// Translation file grammar: one entry per line, source and translation
// separated by lineSeparator, literal newlines inside text escaped as
// newlineMark.
const (
	lineSeparator = "<#>"
	newlineMark   = `\#`
)

// line is one translation file entry.
type line struct {
	source      string
	translation string
}

func translationPath(dir string, category gamedata.FileType) string {
	return filepath.Join(dir, category.String()+".txt")
}

func escapeText(s string) string {
	return strings.ReplaceAll(s, "\n", newlineMark)
}

func unescapeText(s string) string {
	return strings.ReplaceAll(s, newlineMark, "\n")
}

// anyTranslationExists reports whether any category translation file is
// already present under dir.
func anyTranslationExists(dir string) (bool, error) {
	for _, category := range categoryOrder {
		if _, err := os.Stat(translationPath(dir, category)); err == nil {
			return true, nil
		} else if !os.IsNotExist(err) {
			return false, err
		}
	}
	return false, nil
}

// loadTranslationFile reads a translation file's entries in order. A
// missing file yields a nil slice.
func loadTranslationFile(path string) ([]line, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []line
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		source, translation, _ := strings.Cut(text, lineSeparator)
		lines = append(lines, line{
			source:      unescapeText(source),
			translation: unescapeText(translation),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// loadTranslationMap reads a translation file into a source -> translation
// lookup.
func loadTranslationMap(path string) (map[string]string, error) {
	lines, err := loadTranslationFile(path)
	if err != nil {
		return nil, err
	}
	return translationLookup(lines), nil
}

// translationLookup builds a source -> translation lookup, keeping the
// first non-empty translation for repeated sources.
func translationLookup(lines []line) map[string]string {
	m := make(map[string]string, len(lines))
	for _, l := range lines {
		if existing, ok := m[l.source]; ok && existing != "" {
			continue
		}
		m[l.source] = l.translation
	}
	return m
}

func writeTranslationFile(path string, lines []line) error {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(escapeText(l.source))
		sb.WriteString(lineSeparator)
		sb.WriteString(escapeText(l.translation))
		sb.WriteByte('\n')
	}
	return fileutil.WriteFileDirs(path, []byte(sb.String()))
}

// loadIgnoreSet reads the ignore file into a set of suppressed sources.
func loadIgnoreSet(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, text := range strings.Split(string(data), "\n") {
		if text == "" {
			continue
		}
		set[unescapeText(text)] = struct{}{}
	}
	return set, nil
}

// appendIgnoreSet merges sources into the ignore file, keeping it sorted
// and free of duplicates.
func appendIgnoreSet(path string, sources []string) error {
	existing, err := loadIgnoreSet(path)
	if err != nil {
		return err
	}
	merged := make(map[string]struct{}, len(existing)+len(sources))
	for source := range existing {
		merged[source] = struct{}{}
	}
	for _, source := range sources {
		merged[source] = struct{}{}
	}

	ordered := make([]string, 0, len(merged))
	for source := range merged {
		ordered = append(ordered, source)
	}
	sort.Strings(ordered)

	var sb strings.Builder
	for _, source := range ordered {
		sb.WriteString(escapeText(source))
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
