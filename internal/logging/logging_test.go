package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"rvpacker/internal/logging"
)

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("archive unpacked",
		logging.String("archive", "Game.rgss3a"),
		logging.Int("files", 12))

	line := buf.String()
	if !strings.Contains(line, "INFO archive unpacked") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "archive=Game.rgss3a") || !strings.Contains(line, "files=12") {
		t.Fatalf("attributes missing from console line: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("non-terminal output must not be colored: %q", line)
	}
}

func TestConsoleQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("title resolved", logging.String("title", "Fear & Hunger 2: Termina"))
	if !strings.Contains(buf.String(), `title="Fear & Hunger 2: Termina"`) {
		t.Fatalf("value with spaces not quoted: %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("engine fallback", logging.String("engine", "xp"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "engine fallback" || record["level"] != "warn" {
		t.Fatalf("unexpected record: %v", record)
	}
	if record["engine"] != "xp" {
		t.Fatalf("attribute missing: %v", record)
	}
	if _, ok := record["ts"].(string); !ok {
		t.Fatalf("timestamp missing: %v", record)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("suppressed")
	logger.Debug("also suppressed")
	if buf.Len() != 0 {
		t.Fatalf("records below the level leaked: %q", buf.String())
	}
	logger.Error("kept")
	if !strings.Contains(buf.String(), "ERROR kept") {
		t.Fatalf("error record missing: %q", buf.String())
	}
}

func TestUnsupportedFormatIsRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing to see")
}
