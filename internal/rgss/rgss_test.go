package rgss_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"rvpacker/internal/rgss"
)

type entry struct {
	path string
	data []byte
}

func advance(key uint32) uint32 { return key*7 + 3 }

// xorData applies the rolling-key data transform; it is its own inverse.
func xorData(src []byte, key uint32) []byte {
	dst := make([]byte, len(src))
	for i, b := range src {
		dst[i] = b ^ byte(key>>(8*(i%4)))
		if i%4 == 3 {
			key = advance(key)
		}
	}
	return dst
}

// buildV1 assembles an rgssad/rgss2a archive from plain entries.
func buildV1(entries []entry) []byte {
	var buf bytes.Buffer
	buf.WriteString("RGSSAD\x00\x01")

	key := uint32(0xDEADCAFE)
	putUint32 := func(v uint32) {
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], v)
		buf.Write(raw[:])
	}

	for _, e := range entries {
		putUint32(uint32(len(e.path)) ^ key)
		key = advance(key)
		for i := 0; i < len(e.path); i++ {
			buf.WriteByte(e.path[i] ^ byte(key))
			key = advance(key)
		}
		putUint32(uint32(len(e.data)) ^ key)
		key = advance(key)
		buf.Write(xorData(e.data, key))
	}
	return buf.Bytes()
}

// buildV3 assembles an rgss3a archive from plain entries.
func buildV3(seed uint32, entries []entry) []byte {
	key := seed*9 + 3

	// header + seed + table (4 words plus the name per entry) + terminator
	tableSize := 8 + 4
	for _, e := range entries {
		tableSize += 16 + len(e.path)
	}
	tableSize += 4

	var buf bytes.Buffer
	buf.WriteString("RGSSAD\x00\x03")
	putUint32 := func(v uint32) {
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], v)
		buf.Write(raw[:])
	}
	putUint32(seed)

	fileKeys := make([]uint32, len(entries))
	offset := uint32(tableSize)
	for i, e := range entries {
		fileKeys[i] = seed + uint32(i)*17
		putUint32(offset ^ key)
		putUint32(uint32(len(e.data)) ^ key)
		putUint32(fileKeys[i] ^ key)
		putUint32(uint32(len(e.path)) ^ key)
		for j := 0; j < len(e.path); j++ {
			buf.WriteByte(e.path[j] ^ byte(key>>(8*(j%4))))
		}
		offset += uint32(len(e.data))
	}
	putUint32(0 ^ key)

	for i, e := range entries {
		buf.Write(xorData(e.data, fileKeys[i]))
	}
	return buf.Bytes()
}

func TestDecryptV1(t *testing.T) {
	entries := []entry{
		{path: `Data\System.rvdata`, data: []byte("system payload")},
		{path: `Data\Map001.rvdata`, data: []byte("a longer map payload crossing word boundaries")},
		{path: `Graphics\Title.png`, data: []byte{}},
	}

	files, err := rgss.Decrypt(buildV1(entries))
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if len(files) != len(entries) {
		t.Fatalf("decrypted %d entries, want %d", len(files), len(entries))
	}
	if files[0].Path != "Data/System.rvdata" {
		t.Fatalf("backslashes not normalized: %q", files[0].Path)
	}
	for i, e := range entries {
		if !bytes.Equal(files[i].Data, e.data) {
			t.Fatalf("entry %d data mismatch", i)
		}
	}
}

func TestDecryptV3(t *testing.T) {
	entries := []entry{
		{path: `Data\System.rvdata2`, data: []byte("vx ace system")},
		{path: `Data\Actors.rvdata2`, data: bytes.Repeat([]byte{0xAB, 0x01, 0xFF, 0x10}, 9)},
	}

	files, err := rgss.Decrypt(buildV3(0x00112233, entries))
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if len(files) != len(entries) {
		t.Fatalf("decrypted %d entries, want %d", len(files), len(entries))
	}
	for i, e := range entries {
		if files[i].Path != "Data/"+e.path[len(`Data\`):] {
			t.Fatalf("entry %d path %q", i, files[i].Path)
		}
		if !bytes.Equal(files[i].Data, e.data) {
			t.Fatalf("entry %d data mismatch", i)
		}
	}
}

func TestDecryptRejectsForeignBuffers(t *testing.T) {
	if _, err := rgss.Decrypt([]byte("PK\x03\x04 not an archive")); !errors.Is(err, rgss.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if _, err := rgss.Decrypt([]byte("RGSSAD\x00\x02")); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestDecryptRejectsTruncatedArchive(t *testing.T) {
	archive := buildV1([]entry{{path: `Data\System.rvdata`, data: []byte("payload")}})
	if _, err := rgss.Decrypt(archive[:len(archive)-3]); err == nil {
		t.Fatal("expected error for truncated archive")
	}
}
