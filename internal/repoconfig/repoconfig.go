// Package repoconfig parses the repository config file, a small subset of the
// Python ConfigParser language as written by Borg-style repositories.
//
// The grammar is deliberately narrow — just enough for the files actually
// found in repositories: `[section]` header lines, and `key = value` entries
// where the value is an unsigned decimal integer, a hexadecimal string, or a
// base64 blob whose continuation lines start with a tab. Section headers are
// surfaced as pairs with an empty key, so a caller sees the file as one
// ordered sequence of (key, value) pairs.
package repoconfig

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Kind discriminates the value forms a config entry can take.
type Kind int

const (
	// KindInt is an unsigned decimal integer, e.g. segment counts.
	KindInt Kind = iota
	// KindHex is a string of hex digits, e.g. the repository id.
	KindHex
	// KindText is bare text; only section names produce it.
	KindText
	// KindBase64 is a decoded binary blob, e.g. the wrapped repository key.
	KindBase64
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindHex:
		return "hex"
	case KindText:
		return "text"
	case KindBase64:
		return "base64"
	default:
		return "unknown"
	}
}

// Value is one parsed config value. Use the accessor matching its Kind; the
// second return reports whether the value has that form.
type Value struct {
	kind Kind
	num  uint64
	str  string
	blob []byte
}

// IntValue, HexValue, TextValue and BlobValue construct values of each kind.
func IntValue(n uint64) Value { return Value{kind: KindInt, num: n} }
func HexValue(s string) Value { return Value{kind: KindHex, str: s} }
func TextValue(s string) Value { return Value{kind: KindText, str: s} }
func BlobValue(b []byte) Value { return Value{kind: KindBase64, blob: b} }

// Kind returns the value's form.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer form.
func (v Value) Int() (uint64, bool) { return v.num, v.kind == KindInt }

// Hex returns the hex-string form.
func (v Value) Hex() (string, bool) { return v.str, v.kind == KindHex }

// Text returns the text form (section names).
func (v Value) Text() (string, bool) { return v.str, v.kind == KindText }

// Blob returns the decoded base64 form.
func (v Value) Blob() ([]byte, bool) { return v.blob, v.kind == KindBase64 }

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatUint(v.num, 10)
	case KindHex, KindText:
		return v.str
	case KindBase64:
		return fmt.Sprintf("<%d-byte blob>", len(v.blob))
	default:
		return "?"
	}
}

// Entry is one (key, value) pair. A section header `[name]` becomes an entry
// with an empty key and a text value holding the section name.
type Entry struct {
	Key   string
	Value Value
}

// IsSection reports whether the entry is a section header.
func (e Entry) IsSection() bool { return e.Key == "" }

func isKeyChar(c byte) bool { return (c >= 'a' && c <= 'z') || c == '_' }
func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
func isBase64Char(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '+' || c == '/' || c == '='
}

func all(s string, pred func(byte) bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !pred(s[i]) {
			return false
		}
	}
	return true
}

// ParseFile reads and parses the config file at path.
func ParseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return entries, nil
}

// Parse parses config file content into its ordered entry sequence.
func Parse(data []byte) ([]Entry, error) {
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")

	var entries []Entry
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		lineno := i + 1

		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("line %d: unterminated section header", lineno)
			}
			name := line[1 : len(line)-1]
			if !all(name, isAlpha) {
				return nil, fmt.Errorf("line %d: bad section name %q", lineno, name)
			}
			entries = append(entries, Entry{Value: TextValue(name)})
			continue
		}

		key, raw, found := strings.Cut(line, " = ")
		if !found {
			return nil, fmt.Errorf("line %d: expected `key = value`", lineno)
		}
		if !all(key, isKeyChar) {
			return nil, fmt.Errorf("line %d: bad key %q", lineno, key)
		}

		value, consumed, err := parseValue(raw, lines[i+1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: key %s: %w", lineno, key, err)
		}
		i += consumed
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries, nil
}

// parseValue classifies a value the way the original grammar does: an
// all-digits token is an integer, an all-hex token is a hex string, and
// anything else in the base64 alphabet starts a base64 blob that may continue
// over following tab-indented lines. consumed is the number of continuation
// lines swallowed.
func parseValue(raw string, rest []string) (Value, int, error) {
	switch {
	case all(raw, isDigit):
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Value{}, 0, fmt.Errorf("integer out of range: %q", raw)
		}
		return IntValue(n), 0, nil

	case all(raw, isHexDigit):
		return HexValue(raw), 0, nil

	case all(raw, isBase64Char):
		var b strings.Builder
		b.WriteString(raw)
		consumed := 0
		for _, next := range rest {
			cont, ok := strings.CutPrefix(next, "\t")
			if !ok || !all(strings.TrimSuffix(cont, "\r"), isBase64Char) {
				break
			}
			b.WriteString(strings.TrimSuffix(cont, "\r"))
			consumed++
		}
		blob, err := base64.StdEncoding.DecodeString(b.String())
		if err != nil {
			return Value{}, 0, fmt.Errorf("bad base64 value: %v", err)
		}
		return BlobValue(blob), consumed, nil

	default:
		return Value{}, 0, fmt.Errorf("unrecognized value %q", raw)
	}
}
