// Package marshal decodes and encodes the Ruby Marshal 4.8 format used by
// legacy RPG Maker data files (.rxdata/.rvdata/.rvdata2), mapping it onto a
// JSON-encodable tree so older engines' files can be inspected and edited
// as JSON.
//
// The tagged tree form:
//
//	nil/true/false/fixnum  -> null/bool/integer
//	float                  -> JSON number
//	symbol                 -> "__symbol__<name>"
//	string (valid UTF-8)   -> JSON string
//	string (binary)        -> {"__type":"bytes","data":"<base64>"}
//	array                  -> JSON array
//	hash                   -> JSON object; symbol keys use the
//	                          "__symbol__" prefix, integer keys the
//	                          "__integer__" prefix
//	object                 -> {"__class":"__symbol__<name>","@ivar":...}
//	userdef                -> {"__class":..., "__type":"userdef",
//	                          "data":"<base64>"}
//	struct                 -> {"__class":..., "__type":"struct", fields}
//
// Shared references (`@` links) are resolved by duplication: the decoded
// tree has no aliasing, and re-encoded files never emit object links. Ruby
// loads such files identically; they merely lose structural sharing.
package marshal

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// SymbolPrefix marks a JSON string as a Ruby symbol.
	SymbolPrefix = "__symbol__"
	// IntegerPrefix marks a JSON object key as a Ruby integer key.
	IntegerPrefix = "__integer__"

	classKey = "__class"
	typeKey  = "__type"
	dataKey  = "data"

	versionMajor = 4
	versionMinor = 8
)

// ErrFormat is returned for buffers that are not Marshal 4.8 data.
var ErrFormat = errors.New("not Ruby Marshal 4.8 data")

// Decode parses a Marshal buffer into the JSON-encodable tree form.
func Decode(data []byte) (any, error) {
	if len(data) < 2 || data[0] != versionMajor || data[1] != versionMinor {
		return nil, ErrFormat
	}
	d := &decoder{data: data, pos: 2}
	value, err := d.value()
	if err != nil {
		return nil, err
	}
	return value, nil
}

type decoder struct {
	data    []byte
	pos     int
	symbols []string
	objects []any
}

func (d *decoder) byte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, errors.New("truncated Marshal data")
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) bytes(n int) ([]byte, error) {
	if n < 0 || n > len(d.data)-d.pos {
		return nil, errors.New("truncated Marshal data")
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// long reads Marshal's packed integer encoding.
func (d *decoder) long() (int64, error) {
	b, err := d.byte()
	if err != nil {
		return 0, err
	}
	c := int8(b)
	switch {
	case c == 0:
		return 0, nil
	case c >= 6:
		return int64(c) - 5, nil
	case c <= -6:
		return int64(c) + 5, nil
	}

	n := int(c)
	negative := n < 0
	if negative {
		n = -n
	}
	raw, err := d.bytes(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i, by := range raw {
		v |= uint64(by) << (8 * i)
	}
	if negative {
		// Negative longs are stored as the two's complement low bytes.
		shift := uint(64 - 8*n)
		return int64(v<<shift) >> shift, nil
	}
	return int64(v), nil
}

// count reads a collection length and bounds it by the remaining input, so
// a corrupted count fails before allocation. Every element costs at least
// one byte.
func (d *decoder) count() (int, error) {
	n, err := d.long()
	if err != nil {
		return 0, err
	}
	if n < 0 || n > int64(len(d.data)-d.pos) {
		return 0, fmt.Errorf("collection count %d exceeds remaining input", n)
	}
	return int(n), nil
}

func (d *decoder) lengthBytes() ([]byte, error) {
	n, err := d.long()
	if err != nil {
		return nil, err
	}
	return d.bytes(int(n))
}

func (d *decoder) symbol(tag byte) (string, error) {
	switch tag {
	case ':':
		raw, err := d.lengthBytes()
		if err != nil {
			return "", err
		}
		name := string(raw)
		d.symbols = append(d.symbols, name)
		return name, nil
	case ';':
		idx, err := d.long()
		if err != nil {
			return "", err
		}
		if idx < 0 || int(idx) >= len(d.symbols) {
			return "", fmt.Errorf("symbol link %d out of range", idx)
		}
		return d.symbols[idx], nil
	default:
		return "", fmt.Errorf("expected symbol, found tag %q", tag)
	}
}

func (d *decoder) expectSymbol() (string, error) {
	tag, err := d.byte()
	if err != nil {
		return "", err
	}
	return d.symbol(tag)
}

func (d *decoder) value() (any, error) {
	tag, err := d.byte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case '0':
		return nil, nil
	case 'T':
		return true, nil
	case 'F':
		return false, nil
	case 'i':
		return d.long()
	case ':', ';':
		name, err := d.symbol(tag)
		if err != nil {
			return nil, err
		}
		return SymbolPrefix + name, nil
	case '@':
		idx, err := d.long()
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(d.objects) {
			return nil, fmt.Errorf("object link %d out of range", idx)
		}
		return d.objects[idx], nil
	case 'f':
		return d.float()
	case 'l':
		return d.bignum()
	case '"':
		return d.string()
	case 'I':
		return d.ivar()
	case '[':
		return d.array()
	case '{', '}':
		return d.hash(tag == '}')
	case 'o':
		return d.object()
	case 'u':
		return d.userDefined()
	case 'C':
		return d.userClass()
	case 'S':
		return d.structValue()
	case 'e':
		// Extended object: record the module symbol, keep the value.
		if _, err := d.expectSymbol(); err != nil {
			return nil, err
		}
		return d.value()
	default:
		return nil, fmt.Errorf("unsupported Marshal tag %q at offset %d", tag, d.pos-1)
	}
}

func (d *decoder) register(value any) any {
	d.objects = append(d.objects, value)
	return value
}

func (d *decoder) float() (any, error) {
	raw, err := d.lengthBytes()
	if err != nil {
		return nil, err
	}
	text := string(raw)
	switch text {
	case "inf":
		return d.register(math.Inf(1)), nil
	case "-inf":
		return d.register(math.Inf(-1)), nil
	case "nan":
		return d.register(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed float %q: %w", text, err)
	}
	return d.register(f), nil
}

func (d *decoder) bignum() (any, error) {
	sign, err := d.byte()
	if err != nil {
		return nil, err
	}
	halfWords, err := d.long()
	if err != nil {
		return nil, err
	}
	raw, err := d.bytes(int(halfWords) * 2)
	if err != nil {
		return nil, err
	}
	if len(raw) > 8 {
		return nil, fmt.Errorf("bignum of %d bytes exceeds 64 bits", len(raw))
	}
	var v uint64
	for i, b := range raw {
		v |= uint64(b) << (8 * i)
	}
	result := int64(v)
	if sign == '-' {
		result = -result
	}
	return d.register(result), nil
}

func (d *decoder) string() (any, error) {
	raw, err := d.lengthBytes()
	if err != nil {
		return nil, err
	}
	return d.register(stringNode(raw)), nil
}

// ivar handles instance variables attached to a value. In game data this is
// almost always a string's encoding marker, which is consumed rather than
// represented.
func (d *decoder) ivar() (any, error) {
	value, err := d.value()
	if err != nil {
		return nil, err
	}
	count, err := d.count()
	if err != nil {
		return nil, err
	}
	for range count {
		if _, err := d.expectSymbol(); err != nil {
			return nil, err
		}
		if _, err := d.value(); err != nil {
			return nil, err
		}
	}
	return value, nil
}

func (d *decoder) array() (any, error) {
	count, err := d.count()
	if err != nil {
		return nil, err
	}
	result := make([]any, 0, count)
	d.register(result)
	slot := len(d.objects) - 1
	for range count {
		element, err := d.value()
		if err != nil {
			return nil, err
		}
		result = append(result, element)
	}
	d.objects[slot] = result
	return result, nil
}

func (d *decoder) hash(withDefault bool) (any, error) {
	count, err := d.count()
	if err != nil {
		return nil, err
	}
	result := make(map[string]any, count)
	d.register(result)
	for range count {
		key, err := d.value()
		if err != nil {
			return nil, err
		}
		value, err := d.value()
		if err != nil {
			return nil, err
		}
		encoded, err := encodeHashKey(key)
		if err != nil {
			return nil, err
		}
		result[encoded] = value
	}
	if withDefault {
		def, err := d.value()
		if err != nil {
			return nil, err
		}
		result["__default__"] = def
	}
	return result, nil
}

func (d *decoder) object() (any, error) {
	class, err := d.expectSymbol()
	if err != nil {
		return nil, err
	}
	count, err := d.count()
	if err != nil {
		return nil, err
	}
	result := map[string]any{classKey: SymbolPrefix + class}
	d.register(result)
	for range count {
		name, err := d.expectSymbol()
		if err != nil {
			return nil, err
		}
		value, err := d.value()
		if err != nil {
			return nil, err
		}
		result[name] = value
	}
	return result, nil
}

func (d *decoder) userDefined() (any, error) {
	class, err := d.expectSymbol()
	if err != nil {
		return nil, err
	}
	raw, err := d.lengthBytes()
	if err != nil {
		return nil, err
	}
	result := map[string]any{
		classKey: SymbolPrefix + class,
		typeKey:  "userdef",
		dataKey:  base64.StdEncoding.EncodeToString(raw),
	}
	return d.register(result), nil
}

func (d *decoder) userClass() (any, error) {
	class, err := d.expectSymbol()
	if err != nil {
		return nil, err
	}
	value, err := d.value()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		classKey: SymbolPrefix + class,
		typeKey:  "userclass",
		"value":  value,
	}, nil
}

func (d *decoder) structValue() (any, error) {
	class, err := d.expectSymbol()
	if err != nil {
		return nil, err
	}
	count, err := d.count()
	if err != nil {
		return nil, err
	}
	result := map[string]any{
		classKey: SymbolPrefix + class,
		typeKey:  "struct",
	}
	d.register(result)
	for range count {
		name, err := d.expectSymbol()
		if err != nil {
			return nil, err
		}
		value, err := d.value()
		if err != nil {
			return nil, err
		}
		result[name] = value
	}
	return result, nil
}

func stringNode(raw []byte) any {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return map[string]any{
		typeKey: "bytes",
		dataKey: base64.StdEncoding.EncodeToString(raw),
	}
}

func encodeHashKey(key any) (string, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case int64:
		return IntegerPrefix + strconv.FormatInt(k, 10), nil
	default:
		return "", fmt.Errorf("unsupported hash key of type %T", key)
	}
}

// Encode serializes a tree in the tagged form back to Marshal 4.8 bytes.
func Encode(value any) ([]byte, error) {
	e := &encoder{symbols: map[string]int{}}
	e.buf.Write([]byte{versionMajor, versionMinor})
	if err := e.value(value); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf     bytes.Buffer
	symbols map[string]int
}

func (e *encoder) long(v int64) {
	switch {
	case v == 0:
		e.buf.WriteByte(0)
		return
	case v > 0 && v < 123:
		e.buf.WriteByte(byte(v + 5))
		return
	case v < 0 && v > -124:
		e.buf.WriteByte(byte(int8(v - 5)))
		return
	}

	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(v))
	n := 8
	if v > 0 {
		for n > 1 && scratch[n-1] == 0 {
			n--
		}
		e.buf.WriteByte(byte(n))
	} else {
		for n > 1 && scratch[n-1] == 0xff && scratch[n-2]&0x80 != 0 {
			n--
		}
		e.buf.WriteByte(byte(int8(-n)))
	}
	e.buf.Write(scratch[:n])
}

func (e *encoder) symbol(name string) {
	if idx, ok := e.symbols[name]; ok {
		e.buf.WriteByte(';')
		e.long(int64(idx))
		return
	}
	e.symbols[name] = len(e.symbols)
	e.buf.WriteByte(':')
	e.long(int64(len(name)))
	e.buf.WriteString(name)
}

func (e *encoder) value(value any) error {
	switch v := value.(type) {
	case nil:
		e.buf.WriteByte('0')
	case bool:
		if v {
			e.buf.WriteByte('T')
		} else {
			e.buf.WriteByte('F')
		}
	case int64:
		e.fixnum(v)
	case int:
		e.fixnum(int64(v))
	case float64:
		e.float(v)
	case string:
		if name, ok := strings.CutPrefix(v, SymbolPrefix); ok {
			e.symbol(name)
		} else {
			e.utf8String(v)
		}
	case []any:
		e.buf.WriteByte('[')
		e.long(int64(len(v)))
		for _, element := range v {
			if err := e.value(element); err != nil {
				return err
			}
		}
	case map[string]any:
		return e.mapValue(v)
	default:
		return fmt.Errorf("cannot encode value of type %T", value)
	}
	return nil
}

func (e *encoder) fixnum(v int64) {
	// Marshal fixnums cover 31 bits; anything wider becomes a bignum.
	if v >= -(1<<30) && v < 1<<30 {
		e.buf.WriteByte('i')
		e.long(v)
		return
	}
	e.buf.WriteByte('l')
	sign := byte('+')
	u := uint64(v)
	if v < 0 {
		sign = '-'
		u = uint64(-v)
	}
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], u)
	n := 8
	for n > 2 && scratch[n-1] == 0 && scratch[n-2] == 0 {
		n -= 2
	}
	e.buf.WriteByte(sign)
	e.long(int64(n / 2))
	e.buf.Write(scratch[:n])
}

func (e *encoder) float(v float64) {
	var text string
	switch {
	case math.IsInf(v, 1):
		text = "inf"
	case math.IsInf(v, -1):
		text = "-inf"
	case math.IsNaN(v):
		text = "nan"
	default:
		text = strconv.FormatFloat(v, 'g', -1, 64)
	}
	e.buf.WriteByte('f')
	e.long(int64(len(text)))
	e.buf.WriteString(text)
}

// utf8String emits a string with the UTF-8 encoding instance variable, the
// way Ruby 1.9+ marshals its strings.
func (e *encoder) utf8String(s string) {
	e.buf.WriteByte('I')
	e.rawString([]byte(s))
	e.long(1)
	e.symbol("E")
	e.buf.WriteByte('T')
}

func (e *encoder) rawString(raw []byte) {
	e.buf.WriteByte('"')
	e.long(int64(len(raw)))
	e.buf.Write(raw)
}

func (e *encoder) mapValue(v map[string]any) error {
	switch v[typeKey] {
	case "bytes":
		raw, err := decodeBase64(v)
		if err != nil {
			return err
		}
		e.rawString(raw)
		return nil
	case "userdef":
		class, err := className(v)
		if err != nil {
			return err
		}
		raw, err := decodeBase64(v)
		if err != nil {
			return err
		}
		e.buf.WriteByte('u')
		e.symbol(class)
		e.long(int64(len(raw)))
		e.buf.Write(raw)
		return nil
	case "userclass":
		class, err := className(v)
		if err != nil {
			return err
		}
		e.buf.WriteByte('C')
		e.symbol(class)
		return e.value(v["value"])
	case "struct":
		class, err := className(v)
		if err != nil {
			return err
		}
		e.buf.WriteByte('S')
		e.symbol(class)
		return e.fields(v, func(name string) { e.symbol(name) })
	}

	if _, ok := v[classKey]; ok {
		class, err := className(v)
		if err != nil {
			return err
		}
		e.buf.WriteByte('o')
		e.symbol(class)
		return e.fields(v, func(name string) { e.symbol(name) })
	}

	return e.hashValue(v)
}

// fields writes the long-prefixed (symbol, value) pairs of an object or
// struct, skipping the bookkeeping keys. Keys are emitted in sorted order
// so output is deterministic; Ruby assigns ivars by name, not position.
func (e *encoder) fields(v map[string]any, writeName func(string)) error {
	names := make([]string, 0, len(v))
	for name := range v {
		if name == classKey || name == typeKey {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	e.long(int64(len(names)))
	for _, name := range names {
		writeName(name)
		if err := e.value(v[name]); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) hashValue(v map[string]any) error {
	def, hasDefault := v["__default__"]
	keys := make([]string, 0, len(v))
	for key := range v {
		if hasDefault && key == "__default__" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if hasDefault {
		e.buf.WriteByte('}')
	} else {
		e.buf.WriteByte('{')
	}
	e.long(int64(len(keys)))
	for _, key := range keys {
		if err := e.hashKey(key); err != nil {
			return err
		}
		if err := e.value(v[key]); err != nil {
			return err
		}
	}
	if hasDefault {
		return e.value(def)
	}
	return nil
}

func (e *encoder) hashKey(key string) error {
	if digits, ok := strings.CutPrefix(key, IntegerPrefix); ok {
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return fmt.Errorf("malformed integer hash key %q: %w", key, err)
		}
		e.fixnum(n)
		return nil
	}
	return e.value(key)
}

func className(v map[string]any) (string, error) {
	raw, ok := v[classKey].(string)
	if !ok {
		return "", fmt.Errorf("node has no %s symbol", classKey)
	}
	name, ok := strings.CutPrefix(raw, SymbolPrefix)
	if !ok {
		return "", fmt.Errorf("class %q is not a symbol", raw)
	}
	return name, nil
}

func decodeBase64(v map[string]any) ([]byte, error) {
	text, ok := v[dataKey].(string)
	if !ok {
		return nil, fmt.Errorf("node has no %s field", dataKey)
	}
	return base64.StdEncoding.DecodeString(text)
}

