package rangespec_test

import (
	"reflect"
	"strings"
	"testing"

	"rvpacker/internal/gamedata"
	"rvpacker/internal/rangespec"
)

func TestParseListsAndRanges(t *testing.T) {
	tests := []struct {
		input string
		want  []uint16
	}{
		{"2,4-6", []uint16{2, 4, 5, 6}},
		{"7", []uint16{7}},
		{"1-1", []uint16{1}},
		{" 3 , 5 - 7 ", []uint16{3, 5, 6, 7}},
		{"", nil},
		{",,", nil},
	}
	for _, tt := range tests {
		got, err := rangespec.Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		input    string
		contains string
	}{
		{"6-4", "reversed"},
		{"a", "invalid integer"},
		{"x-4", "invalid start of range"},
		{"4-y", "invalid end of range"},
		{"70000", "invalid integer"},
	}
	for _, tt := range tests {
		if _, err := rangespec.Parse(tt.input); err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", tt.input)
		} else if !strings.Contains(err.Error(), tt.contains) {
			t.Fatalf("Parse(%q) error %q does not mention %q", tt.input, err, tt.contains)
		}
	}
}

func TestParseEventsNamespacedSections(t *testing.T) {
	got, err := rangespec.ParseEvents("commonevents:1,3-4;troops:2;commonevents:9")
	if err != nil {
		t.Fatalf("ParseEvents returned error: %v", err)
	}
	want := []rangespec.EventRange{
		{File: gamedata.FileCommonEvents, Indices: []uint16{1, 3, 4}},
		{File: gamedata.FileTroops, Indices: []uint16{2}},
		{File: gamedata.FileCommonEvents, Indices: []uint16{9}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseEvents = %v, want %v", got, want)
	}
}

func TestParseEventsRequiresSeparator(t *testing.T) {
	_, err := rangespec.ParseEvents("commonevents 1-3")
	if err == nil {
		t.Fatal("expected error for section without separator")
	}
	if !strings.Contains(err.Error(), "missing a `:` separator") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseEventsRejectsUnknownFile(t *testing.T) {
	if _, err := rangespec.ParseEvents("mapinfos:1"); err == nil {
		t.Fatal("expected error for unknown file identifier")
	}
}
