package numerator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penomoran/internal/core/apperror"
)

func TestParse_RoundTrip(t *testing.T) {
	inputs := []FormatInput{
		letterInput(),
		{Counter: 42, Kind: KindLetter, Scope: ScopeFaculty, JenisCode: JenisD, Month: "XII", HijriYear: "1446", GregorianYear: "2025"},
		{Counter: 7, Kind: KindCertificate, Scope: ScopeFaculty, GregorianYear: "2025"},
		{Counter: 120, Kind: KindDecree, Scope: ScopeDepartment, DepartmentCode: "SI", GregorianYear: "2024"},
		{Counter: 5, Kind: KindMinutes, Scope: ScopeDepartment, DepartmentCode: "TA", GregorianYear: "2025"},
		{Counter: 1, Kind: KindGeneric, Scope: ScopeFaculty, GregorianYear: "2025"},
		{Counter: 1001, Kind: KindGeneric, Scope: ScopeDepartment, DepartmentCode: "IF", GregorianYear: "2025"},
	}

	for _, in := range inputs {
		number, err := Format(in)
		require.NoError(t, err)

		t.Run(number, func(t *testing.T) {
			c, err := Parse(number)
			require.NoError(t, err)

			assert.Equal(t, in.Counter, c.Counter)
			assert.Equal(t, in.Kind, c.Kind)
			assert.Equal(t, in.Scope, c.Scope)
			assert.Equal(t, in.GregorianYear, c.GregorianYear)
			if in.Scope == ScopeDepartment {
				assert.Equal(t, in.DepartmentCode, c.DepartmentCode)
			} else {
				assert.Empty(t, c.DepartmentCode)
			}
			if in.Kind == KindLetter {
				assert.Equal(t, in.JenisCode, c.JenisCode)
				assert.Equal(t, in.Month, c.Month)
				assert.Equal(t, in.HijriYear, c.HijriYear)
			}
			assert.Equal(t, in.Kind.Prefix(), c.TypePrefix)
		})
	}
}

func TestParse_ScopeFromOrgToken(t *testing.T) {
	c, err := Parse("001/A/FT-UIN/XI/1447H/2025")
	require.NoError(t, err)
	assert.Equal(t, ScopeFaculty, c.Scope)
	assert.Empty(t, c.DepartmentCode)

	c, err = Parse("001/A/IF-FT-UIN/XI/1447H/2025")
	require.NoError(t, err)
	assert.Equal(t, ScopeDepartment, c.Scope)
	assert.Equal(t, "IF", c.DepartmentCode)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"too few tokens":    "001/2025",
		"too many tokens":   "001/A/IF-FT-UIN/XI/1447H/2025/x",
		"short counter":     "01/FT-UIN/2025",
		"zero counter":      "000/FT-UIN/2025",
		"non numeric":       "abc/FT-UIN/2025",
		"unknown prefix":    "XX/001/FT-UIN/2025",
		"foreign org":       "001/UGM/2025",
		"bare dash org":     "001/-FT-UIN/2025",
		"bad year":          "001/FT-UIN/25",
		"missing hijri H":   "001/A/FT-UIN/XI/1447/2025",
		"bad month":         "001/A/FT-UIN/XIII/1447H/2025",
		"unknown jenis":     "001/Z/FT-UIN/XI/1447H/2025",
		"non numeric hijri": "001/A/FT-UIN/XI/abcH/2025",
		"hijri year zero":   "001/A/FT-UIN/VII/0H/0622",
		"padded hijri":      "001/A/FT-UIN/XI/01447H/2025",
		"long year":         "001/FT-UIN/20251",
	}

	for name, number := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(number)
			require.Error(t, err)
			assert.True(t, apperror.IsInvalidNumberFormat(err), "got %v", err)
		})
	}
}
