package numerator

import (
	"fmt"
	"strings"
)

// Kind is the document type a number is issued for.
type Kind int

const (
	KindLetter Kind = iota + 1
	KindCertificate
	KindDecree
	KindMinutes
	KindGeneric
)

// Kinds lists every kind in report order.
var Kinds = []Kind{KindLetter, KindCertificate, KindDecree, KindMinutes, KindGeneric}

var kindNames = map[Kind]string{
	KindLetter:      "letter",
	KindCertificate: "certificate",
	KindDecree:      "decree",
	KindMinutes:     "minutes",
	KindGeneric:     "generic",
}

// typePrefixes maps prefix-template kinds to their leading token.
var typePrefixes = map[Kind]string{
	KindCertificate: "CERT",
	KindDecree:      "SK",
	KindMinutes:     "BA",
}

// ParseKind parses a storage/API kind name.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown document kind %q", s)
}

// kindForPrefix is the inverse of Prefix.
func kindForPrefix(prefix string) (Kind, bool) {
	for k, p := range typePrefixes {
		if p == prefix {
			return k, true
		}
	}
	return 0, false
}

// String returns the canonical storage value.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Prefix returns the type prefix (CERT, SK, BA) or "" for letters and generic numbers.
func (k Kind) Prefix() string {
	return typePrefixes[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Jenis codes classify letters (A..D). They are unrelated to Kind.
const (
	JenisA = "A"
	JenisB = "B"
	JenisC = "C"
	JenisD = "D"
)

// ValidJenis reports whether code is a known letter classification.
func ValidJenis(code string) bool {
	switch code {
	case JenisA, JenisB, JenisC, JenisD:
		return true
	}
	return false
}
