// Package numerator provides the domain contracts for official document numbering:
// counter keys, the allocator interface and the pure number formatter/parser.
// Storage implementations live in the infrastructure layer.
package numerator

import (
	"fmt"
	"strings"
)

// Scope says which sequence a number belongs to: the faculty-wide one or a
// department's own. The zero value is invalid.
type Scope int

const (
	ScopeFaculty Scope = iota + 1
	ScopeDepartment
)

// ParseScope accepts the canonical names and the legacy portal strings
// ("fakultas", "prodi"). Anything else is rejected.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "faculty", "fakultas":
		return ScopeFaculty, nil
	case "department", "prodi":
		return ScopeDepartment, nil
	default:
		return 0, fmt.Errorf("unknown scope %q", s)
	}
}

// String returns the canonical storage value.
func (s Scope) String() string {
	switch s {
	case ScopeFaculty:
		return "faculty"
	case ScopeDepartment:
		return "department"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Valid reports whether s is one of the two known scopes.
func (s Scope) Valid() bool {
	return s == ScopeFaculty || s == ScopeDepartment
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid scope %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(b []byte) error {
	v, err := ParseScope(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
