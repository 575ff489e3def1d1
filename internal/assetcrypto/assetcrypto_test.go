package assetcrypto_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"rvpacker/internal/assetcrypto"
)

// pngFixture is a minimal buffer starting with the canonical PNG signature.
func pngFixture() []byte {
	data := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	}
	return append(data, []byte("payload bytes beyond the masked region")...)
}

func TestParseKey(t *testing.T) {
	key, err := assetcrypto.ParseKey("d41d8cd98f00b204e9800998ecf8427e")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if key != assetcrypto.DefaultEncryptKey {
		t.Fatalf("parsed key %v, want the default key", key)
	}
	if key.String() != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("key did not render back to hex: %q", key.String())
	}

	if _, err := assetcrypto.ParseKey("zz"); err == nil {
		t.Fatal("expected error for non-hex key")
	}
	if _, err := assetcrypto.ParseKey("d41d"); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, _ := assetcrypto.ParseKey("000102030405060708090a0b0c0d0e0f")
	plain := pngFixture()

	encrypted := assetcrypto.Encrypt(plain, key)
	if len(encrypted) != len(plain)+assetcrypto.KeyLength {
		t.Fatalf("encrypted length %d, want %d", len(encrypted), len(plain)+assetcrypto.KeyLength)
	}
	if !bytes.HasPrefix(encrypted, []byte("RPGMV")) {
		t.Fatal("encrypted asset must carry the RPGMV header")
	}
	if bytes.Equal(encrypted[assetcrypto.KeyLength:2*assetcrypto.KeyLength], plain[:assetcrypto.KeyLength]) {
		t.Fatal("leading plaintext bytes were not masked")
	}

	decrypted, err := assetcrypto.Decrypt(encrypted, key)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if !bytes.Equal(decrypted, plain) {
		t.Fatal("decrypt is not the inverse of encrypt")
	}
}

func TestEncryptDecryptShortPayload(t *testing.T) {
	key := assetcrypto.DefaultEncryptKey
	// Payloads shorter than the key must still round trip.
	for _, plain := range [][]byte{nil, {0x42}, []byte("tiny payload")} {
		encrypted := assetcrypto.Encrypt(plain, key)
		decrypted, err := assetcrypto.Decrypt(encrypted, key)
		if err != nil {
			t.Fatalf("Decrypt of %d-byte payload returned error: %v", len(plain), err)
		}
		if !bytes.Equal(decrypted, plain) {
			t.Fatalf("short payload round trip mismatch: %q", decrypted)
		}
	}
}

func TestDecryptRejectsBadInput(t *testing.T) {
	key := assetcrypto.DefaultEncryptKey
	if _, err := assetcrypto.Decrypt([]byte("short"), key); err == nil {
		t.Fatal("expected error for truncated input")
	}
	bogus := make([]byte, 64)
	if _, err := assetcrypto.Decrypt(bogus, key); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestKeyFromPNGRecoversEncryptKey(t *testing.T) {
	key, _ := assetcrypto.ParseKey("0f0e0d0c0b0a09080706050403020100")
	encrypted := assetcrypto.Encrypt(pngFixture(), key)

	recovered, err := assetcrypto.KeyFromPNG(encrypted)
	if err != nil {
		t.Fatalf("KeyFromPNG returned error: %v", err)
	}
	if recovered != key {
		t.Fatalf("recovered %v, want %v", recovered, key)
	}
}

func TestKeyFromSystemJSON(t *testing.T) {
	doc := []byte(`{"gameTitle":"x","encryptionKey": "d41d8cd98f00b204e9800998ecf8427e", "hasEncryptedImages": true}`)
	key, err := assetcrypto.KeyFromSystemJSON(doc)
	if err != nil {
		t.Fatalf("KeyFromSystemJSON returned error: %v", err)
	}
	if key != assetcrypto.DefaultEncryptKey {
		t.Fatalf("unexpected key %v", key)
	}

	if _, err := assetcrypto.KeyFromSystemJSON([]byte(`{"gameTitle":"x"}`)); err == nil {
		t.Fatal("expected error when the field is absent")
	}
}

func TestExtensionTables(t *testing.T) {
	decrypt := assetcrypto.SortedExtensions(assetcrypto.OpDecrypt, assetcrypto.VariantMV)
	want := []string{".m4a_", ".ogg_", ".png_", ".rpgmvm", ".rpgmvo", ".rpgmvp"}
	if !reflect.DeepEqual(decrypt, want) {
		t.Fatalf("decrypt extensions = %v, want %v", decrypt, want)
	}

	mv := assetcrypto.SortedExtensions(assetcrypto.OpEncrypt, assetcrypto.VariantMV)
	mz := assetcrypto.SortedExtensions(assetcrypto.OpEncrypt, assetcrypto.VariantMZ)
	if !reflect.DeepEqual(mv, []string{".m4a", ".ogg", ".png"}) {
		t.Fatalf("unexpected MV encrypt extensions: %v", mv)
	}
	if !reflect.DeepEqual(mz, mv) {
		t.Fatalf("MZ must accept the same plain extensions: %v", mz)
	}
}

func TestProcessFileRemapsExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Actor1.png")
	if err := os.WriteFile(src, pngFixture(), 0o644); err != nil {
		t.Fatal(err)
	}

	// MZ keeps the base name and appends an underscore to the extension.
	result, err := assetcrypto.ProcessFile(src, assetcrypto.OpEncrypt, assetcrypto.VariantMZ, assetcrypto.DefaultEncryptKey)
	if err != nil {
		t.Fatalf("ProcessFile returned error: %v", err)
	}
	if result.Output != filepath.Join(dir, "Actor1.png_") {
		t.Fatalf("unexpected output path %q", result.Output)
	}

	back, err := assetcrypto.ProcessFile(result.Output, assetcrypto.OpDecrypt, assetcrypto.VariantMZ, assetcrypto.DefaultEncryptKey)
	if err != nil {
		t.Fatalf("decrypt ProcessFile returned error: %v", err)
	}
	restored, err := os.ReadFile(back.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, pngFixture()) {
		t.Fatal("file round trip lost data")
	}
}

func TestProcessFileRejectsForeignExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "readme.txt")
	if err := os.WriteFile(src, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := assetcrypto.ProcessFile(src, assetcrypto.OpEncrypt, assetcrypto.VariantMV, assetcrypto.DefaultEncryptKey); err == nil {
		t.Fatal("expected error for extension outside the table")
	}
}

func TestProcessDirSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Actor1.png"), pngFixture(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := assetcrypto.ProcessDir(dir, assetcrypto.OpEncrypt, assetcrypto.VariantMV, assetcrypto.DefaultEncryptKey)
	if err != nil {
		t.Fatalf("ProcessDir returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("processed %d files, want 1", len(results))
	}
	if filepath.Base(results[0].Output) != "Actor1.rpgmvp" {
		t.Fatalf("unexpected output %q", results[0].Output)
	}
}
