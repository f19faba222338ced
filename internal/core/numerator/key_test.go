package numerator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penomoran/internal/core/apperror"
)

func TestNewKey_FacultyNormalization(t *testing.T) {
	a, err := NewKey("2025", ScopeFaculty, "")
	require.NoError(t, err)
	b, err := NewKey(" 2025 ", ScopeFaculty, "  ")
	require.NoError(t, err)
	c, err := NewKey("2025", ScopeFaculty, "IF")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Equal(t, "", a.DepartmentCode)
}

func TestNewKey_Department(t *testing.T) {
	k, err := NewKey("2025", ScopeDepartment, " IF ")
	require.NoError(t, err)
	assert.Equal(t, "IF", k.DepartmentCode)
	assert.Equal(t, "2025/department/IF", k.String())

	_, err = NewKey("2025", ScopeDepartment, "")
	assert.True(t, apperror.IsMissingDepartmentCode(err))

	_, err = NewKey("2025", ScopeDepartment, "I/F")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestNewKey_Invalid(t *testing.T) {
	_, err := NewKey("", ScopeFaculty, "")
	assert.Error(t, err)

	_, err = NewKey("2025", Scope(0), "")
	assert.Error(t, err)
}

func TestNewKey_YearMustBeFourDigits(t *testing.T) {
	for _, year := range []string{"abcd", "25", "20250", "2O25", "-2025", "622"} {
		_, err := NewKey(year, ScopeFaculty, "")
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "year %q", year)
	}

	k, err := NewKey("0999", ScopeFaculty, "")
	require.NoError(t, err)
	assert.Equal(t, "0999", k.Year)
}

func TestYearOf(t *testing.T) {
	assert.Equal(t, "2025", YearOf(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "0622", YearOf(time.Date(622, 7, 19, 0, 0, 0, 0, time.UTC)))
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{
		"faculty": ScopeFaculty, "Fakultas": ScopeFaculty,
		"department": ScopeDepartment, " prodi ": ScopeDepartment,
	} {
		got, err := ParseScope(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseScope("university")
	assert.Error(t, err)
}

func TestScopeAndKind_JSON(t *testing.T) {
	type payload struct {
		Scope Scope `json:"scope"`
		Kind  Kind  `json:"kind"`
	}

	b, err := json.Marshal(payload{Scope: ScopeDepartment, Kind: KindDecree})
	require.NoError(t, err)
	assert.JSONEq(t, `{"scope":"department","kind":"decree"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"scope":"prodi","kind":"letter"}`), &p))
	assert.Equal(t, ScopeDepartment, p.Scope)
	assert.Equal(t, KindLetter, p.Kind)

	assert.Error(t, json.Unmarshal([]byte(`{"scope":"nope","kind":"letter"}`), &p))
}

func TestKind_Prefix(t *testing.T) {
	assert.Equal(t, "CERT", KindCertificate.Prefix())
	assert.Equal(t, "SK", KindDecree.Prefix())
	assert.Equal(t, "BA", KindMinutes.Prefix())
	assert.Empty(t, KindLetter.Prefix())
	assert.Empty(t, KindGeneric.Prefix())
}
