// Package calendar converts Gregorian dates into the tokens used by official
// document numbers: Roman-numeral months and Hijri years.
package calendar

import "time"

var romanMonths = [12]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// RomanMonth returns the month of t as a Roman numeral (I..XII).
func RomanMonth(t time.Time) string {
	return romanMonths[t.Month()-1]
}

// RomanNumeral returns the Roman numeral for month 1..12.
func RomanNumeral(month int) (string, bool) {
	if month < 1 || month > 12 {
		return "", false
	}
	return romanMonths[month-1], true
}

// ParseRomanMonth is the inverse of RomanNumeral. Only upper-case canonical
// numerals are accepted.
func ParseRomanMonth(s string) (int, bool) {
	for i, r := range romanMonths {
		if r == s {
			return i + 1, true
		}
	}
	return 0, false
}
