// Package assetcrypto implements the RPG Maker MV/MZ asset cipher: a
// 16-byte `RPGMV` header followed by the original file with its first 16
// bytes XORed against a 128-bit key. It covers key acquisition (explicit
// hex, built-in default, or derived from a System.json or an encrypted
// image), the extension remapping tables, and single-file and directory
// processing.
package assetcrypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyLength is the cipher key size in bytes.
const KeyLength = 16

// Key is the XOR key applied to the first KeyLength bytes of an asset.
type Key [KeyLength]byte

// DefaultEncryptKey is the key RPG Maker assigns to freshly exported
// projects that were never encrypted with a custom key. It backs encryption
// when no key is supplied; decryption always requires an explicit key.
var DefaultEncryptKey = Key{
	0xd4, 0x1d, 0x8c, 0xd9, 0x8f, 0x00, 0xb2, 0x04,
	0xe9, 0x80, 0x09, 0x98, 0xec, 0xf8, 0x42, 0x7e,
}

// ParseKey interprets a 32-character hex string as a Key.
func ParseKey(s string) (Key, error) {
	var key Key
	decoded, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return key, fmt.Errorf("key is not valid hex: %w", err)
	}
	if len(decoded) != KeyLength {
		return key, fmt.Errorf("key is %d bytes, want %d", len(decoded), KeyLength)
	}
	copy(key[:], decoded)
	return key, nil
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// header is the 16-byte envelope prepended to every encrypted asset.
var header = []byte{
	'R', 'P', 'G', 'M', 'V', 0x00, 0x00, 0x00,
	0x00, 0x03, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// pngSignature is the first 16 bytes of any well-formed PNG file, used to
// recover a key from an already-encrypted image.
var pngSignature = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
}

// Decrypt strips the asset header and restores the leading bytes. The
// payload may be shorter than the key; only the header itself is required.
func Decrypt(data []byte, key Key) ([]byte, error) {
	if len(data) < KeyLength {
		return nil, errors.New("file is too short to be an encrypted asset")
	}
	if !bytes.Equal(data[:5], header[:5]) {
		return nil, errors.New("file does not carry an RPGMV header")
	}
	out := make([]byte, len(data)-KeyLength)
	copy(out, data[KeyLength:])
	xorHead(out, key)
	return out, nil
}

// Encrypt masks the leading bytes and prepends the asset header.
func Encrypt(data []byte, key Key) []byte {
	out := make([]byte, 0, len(data)+KeyLength)
	out = append(out, header...)
	out = append(out, data...)
	xorHead(out[KeyLength:], key)
	return out
}

func xorHead(data []byte, key Key) {
	n := min(len(data), KeyLength)
	for i := range n {
		data[i] ^= key[i]
	}
}

// KeyFromSystemJSON recovers the key from the `encryptionKey` field of a
// System.json document, located textually so the surrounding JSON does not
// need to be well formed.
func KeyFromSystemJSON(text []byte) (Key, error) {
	const marker = `"encryptionKey"`
	idx := bytes.Index(text, []byte(marker))
	if idx < 0 {
		return Key{}, errors.New("System.json has no `encryptionKey` field")
	}
	rest := text[idx+len(marker):]
	colon := bytes.IndexByte(rest, ':')
	if colon < 0 {
		return Key{}, errors.New("System.json `encryptionKey` field is malformed")
	}
	value := strings.TrimFunc(string(rest[colon+1:]), func(r rune) bool {
		return r == '"' || r == '\'' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	if len(value) < 2*KeyLength {
		return Key{}, fmt.Errorf("`encryptionKey` value %q is shorter than %d hex characters", value, 2*KeyLength)
	}
	return ParseKey(value[:2*KeyLength])
}

// KeyFromPNG recovers the key from an already-encrypted image by XORing its
// masked region against the canonical PNG signature.
func KeyFromPNG(data []byte) (Key, error) {
	if len(data) < 2*KeyLength {
		return Key{}, errors.New("file is too short to be an encrypted image")
	}
	var key Key
	for i := range KeyLength {
		key[i] = data[KeyLength+i] ^ pngSignature[i]
	}
	return key, nil
}

// Op selects the direction of the transform.
type Op int

const (
	OpDecrypt Op = iota
	OpEncrypt
)

func (o Op) String() string {
	if o == OpEncrypt {
		return "encrypt"
	}
	return "decrypt"
}

// Variant selects the encrypted extension scheme: MV uses `.rpgmvp` style
// extensions, MZ appends an underscore to the plain extension.
type Variant int

const (
	VariantMV Variant = iota
	VariantMZ
)

// ParseVariant maps an engine name to its Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "mv":
		return VariantMV, nil
	case "mz":
		return VariantMZ, nil
	default:
		return VariantMV, fmt.Errorf("unknown engine variant %q", s)
	}
}

// The remapping tables are total per (operation, variant) and collision
// free: decrypt targets never overlap encrypt targets.
var (
	decryptExt = map[string]string{
		".rpgmvp": ".png", ".png_": ".png",
		".rpgmvo": ".ogg", ".ogg_": ".ogg",
		".rpgmvm": ".m4a", ".m4a_": ".m4a",
	}
	encryptExtMV = map[string]string{
		".png": ".rpgmvp", ".ogg": ".rpgmvo", ".m4a": ".rpgmvm",
	}
	encryptExtMZ = map[string]string{
		".png": ".png_", ".ogg": ".ogg_", ".m4a": ".m4a_",
	}
)

func extTable(op Op, variant Variant) map[string]string {
	if op == OpDecrypt {
		return decryptExt
	}
	if variant == VariantMZ {
		return encryptExtMZ
	}
	return encryptExtMV
}

// Result describes one processed asset.
type Result struct {
	Source string
	Output string
	Bytes  int
}

// ProcessFile transforms one explicit asset file, writing the output next
// to it with the remapped extension. An extension outside the operation's
// table is a hard error.
func ProcessFile(path string, op Op, variant Variant, key Key) (Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	target, ok := extTable(op, variant)[ext]
	if !ok {
		return Result{}, fmt.Errorf("%s: extension %q is not valid for %s", path, ext, op)
	}
	return processFile(path, target, op, key)
}

// ProcessDir transforms every matching file among dir's immediate entries.
// Files with extensions outside the operation's table are silently skipped;
// the first failure aborts the remaining batch.
func ProcessDir(dir string, op Op, variant Variant, key Key) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	table := extTable(op, variant)

	var results []Result
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		target, ok := table[ext]
		if !ok {
			continue
		}
		result, err := processFile(filepath.Join(dir, entry.Name()), target, op, key)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// SortedExtensions lists an operation's accepted source extensions, for
// error messages and usage text.
func SortedExtensions(op Op, variant Variant) []string {
	table := extTable(op, variant)
	exts := make([]string, 0, len(table))
	for ext := range table {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func processFile(path, targetExt string, op Op, key Key) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}

	var out []byte
	if op == OpDecrypt {
		out, err = Decrypt(data, key)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		out = Encrypt(data, key)
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + targetExt
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return Result{}, err
	}
	return Result{Source: path, Output: outPath, Bytes: len(out)}, nil
}
