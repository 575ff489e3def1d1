// Package rgss reads the packed RGSSAD archive containers shipped by legacy
// RPG Maker games (Game.rgssad, Game.rgss2a, Game.rgss3a). Both container
// generations are rolling-key XOR schemes over a flat entry table.
package rgss

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// File is one decrypted archive entry. Path uses forward slashes regardless
// of the separator stored in the archive.
type File struct {
	Path string
	Data []byte
}

var magic = []byte("RGSSAD\x00")

// ErrFormat is returned when the buffer is not an RGSSAD archive.
var ErrFormat = errors.New("not an RGSSAD archive")

const (
	versionOne   = 1
	versionThree = 3

	// initialKey seeds the version 1 rolling key.
	initialKey = 0xDEADCAFE
)

// Decrypt extracts every file from an RGSSAD archive buffer. Entries are
// returned in archive order.
func Decrypt(data []byte) ([]File, error) {
	if len(data) < len(magic)+1 || string(data[:len(magic)]) != string(magic) {
		return nil, ErrFormat
	}
	switch data[len(magic)] {
	case versionOne:
		return decryptV1(data[len(magic)+1:])
	case versionThree:
		return decryptV3(data, data[len(magic)+1:])
	default:
		return nil, fmt.Errorf("unsupported RGSSAD version %d", data[len(magic)])
	}
}

// decryptV1 handles rgssad/rgss2a: a sequential entry stream where the key
// advances with every field read.
func decryptV1(body []byte) ([]File, error) {
	var files []File
	key := uint32(initialKey)
	pos := 0

	for pos < len(body) {
		nameLen, err := readUint32(body, &pos)
		if err != nil {
			return nil, err
		}
		nameLen ^= key
		key = advance(key)

		if int(nameLen) > len(body)-pos {
			return nil, fmt.Errorf("entry name of %d bytes overruns archive", nameLen)
		}
		name := make([]byte, nameLen)
		for i := range name {
			name[i] = body[pos+i] ^ byte(key)
			key = advance(key)
		}
		pos += int(nameLen)

		size, err := readUint32(body, &pos)
		if err != nil {
			return nil, err
		}
		size ^= key
		key = advance(key)

		if int(size) > len(body)-pos {
			return nil, fmt.Errorf("entry %q of %d bytes overruns archive", name, size)
		}
		data := decryptData(body[pos:pos+int(size)], key)
		pos += int(size)

		files = append(files, File{Path: normalizePath(name), Data: data})
	}

	return files, nil
}

// decryptV3 handles rgss3a: an up-front entry table keyed off a stored seed,
// terminated by a zero offset, with a per-file data key.
func decryptV3(archive, body []byte) ([]File, error) {
	pos := 0
	seed, err := readUint32(body, &pos)
	if err != nil {
		return nil, err
	}
	key := seed*9 + 3

	var files []File
	for {
		offset, err := readUint32(body, &pos)
		if err != nil {
			return nil, err
		}
		offset ^= key
		if offset == 0 {
			break
		}

		size, err := readUint32(body, &pos)
		if err != nil {
			return nil, err
		}
		size ^= key

		fileKey, err := readUint32(body, &pos)
		if err != nil {
			return nil, err
		}
		fileKey ^= key

		nameLen, err := readUint32(body, &pos)
		if err != nil {
			return nil, err
		}
		nameLen ^= key

		if int(nameLen) > len(body)-pos {
			return nil, fmt.Errorf("entry name of %d bytes overruns archive", nameLen)
		}
		name := make([]byte, nameLen)
		for i := range name {
			name[i] = body[pos+i] ^ byte(key>>(8*(i%4)))
		}
		pos += int(nameLen)

		if int(offset) > len(archive) || int(size) > len(archive)-int(offset) {
			return nil, fmt.Errorf("entry %q at offset %d overruns archive", name, offset)
		}
		data := decryptData(archive[offset:offset+size], fileKey)

		files = append(files, File{Path: normalizePath(name), Data: data})
	}

	return files, nil
}

// decryptData XORs data with a rolling key that advances every four bytes.
func decryptData(src []byte, key uint32) []byte {
	dst := make([]byte, len(src))
	for i, b := range src {
		dst[i] = b ^ byte(key>>(8*(i%4)))
		if i%4 == 3 {
			key = advance(key)
		}
	}
	return dst
}

func advance(key uint32) uint32 { return key*7 + 3 }

func readUint32(body []byte, pos *int) (uint32, error) {
	if len(body)-*pos < 4 {
		return 0, errors.New("truncated RGSSAD archive")
	}
	v := binary.LittleEndian.Uint32(body[*pos:])
	*pos += 4
	return v, nil
}

func normalizePath(name []byte) string {
	return strings.ReplaceAll(string(name), `\`, "/")
}
