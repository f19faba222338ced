package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// HijriStrategy turns a Gregorian instant into the Hijri year printed on a number.
//
// Two strategies coexist because numbers already issued depend on each of them;
// callers pick one explicitly.
type HijriStrategy interface {
	Name() string
	Year(t time.Time) string
}

// Strategy names accepted by StrategyByName.
const (
	StrategyPrecise     = "precise"
	StrategyApproximate = "approximate"
)

// approximateOffset is the fixed year difference used by ApproximateHijri.
const approximateOffset = 579

// epochJDN is the Julian Day Number of 1 Muharram 1 AH.
const epochJDN = 1948440

// Epoch is 1 Muharram 1 AH as a proleptic Gregorian date (16 July 622 Julian).
var Epoch = time.Date(622, time.July, 19, 0, 0, 0, 0, time.UTC)

// BeforeEpoch reports whether the calendar day of t precedes Epoch. No Hijri
// year exists for such dates.
func BeforeEpoch(t time.Time) bool {
	return julianDayNumber(t.Year(), int(t.Month()), t.Day()) < epochJDN
}

// StrategyByName resolves a configured strategy name.
func StrategyByName(name string) (HijriStrategy, error) {
	switch name {
	case StrategyPrecise, "":
		return PreciseHijri{}, nil
	case StrategyApproximate:
		return ApproximateHijri{}, nil
	default:
		return nil, fmt.Errorf("unknown hijri strategy %q", name)
	}
}

// ApproximateHijri computes gregorianYear - 579. It drifts from the real Hijri
// year for part of every Gregorian year.
type ApproximateHijri struct{}

// Name implements HijriStrategy.
func (ApproximateHijri) Name() string { return StrategyApproximate }

// Year implements HijriStrategy. It returns "" for Gregorian years that map
// to a Hijri year below 1.
func (ApproximateHijri) Year(t time.Time) string {
	y := t.Year() - approximateOffset
	if y < 1 {
		return ""
	}
	return strconv.Itoa(y)
}

// HijriDate is a date in the arithmetical Islamic civil calendar.
type HijriDate struct {
	Day       int
	Month     int
	Year      int
	MonthName string
}

// String formats the date as "24 Jumada al-Awwal 1447".
func (d HijriDate) String() string {
	return fmt.Sprintf("%d %s %d", d.Day, d.MonthName, d.Year)
}

var hijriMonthNames = [12]string{
	"Muharram",
	"Safar",
	"Rabi al-Awwal",
	"Rabi al-Thani",
	"Jumada al-Awwal",
	"Jumada al-Thani",
	"Rajab",
	"Shaban",
	"Ramadan",
	"Shawwal",
	"Dhu al-Qadah",
	"Dhu al-Hijjah",
}

// PreciseHijri performs a day-exact conversion using the tabular Islamic
// calendar (30-year leap cycle, civil epoch). It can differ from sighting-based
// calendars by a day around month boundaries but never by a year mid-month.
type PreciseHijri struct{}

// Name implements HijriStrategy.
func (PreciseHijri) Name() string { return StrategyPrecise }

// Year implements HijriStrategy. It returns "" before Epoch.
func (p PreciseHijri) Year(t time.Time) string {
	d, ok := p.Convert(t)
	if !ok {
		return ""
	}
	return strconv.Itoa(d.Year)
}

// Convert returns the full Hijri date for the calendar day of t (in t's location).
// ok is false for days before Epoch.
func (PreciseHijri) Convert(t time.Time) (HijriDate, bool) {
	jdn := julianDayNumber(t.Year(), int(t.Month()), t.Day())
	if jdn < epochJDN {
		return HijriDate{}, false
	}

	l := jdn - epochJDN + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month := (24 * l) / 709
	day := l - (709*month)/24
	year := 30*n + j - 30

	return HijriDate{
		Day:       day,
		Month:     month,
		Year:      year,
		MonthName: hijriMonthNames[month-1],
	}, true
}

// julianDayNumber converts a proleptic Gregorian date to its Julian Day Number.
func julianDayNumber(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}
