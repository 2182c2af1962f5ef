package calendar

import (
	"fmt"
	"strings"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// NULL treats every day, weekends included, as a business day.
	NULL     CalendarID = "NULL"
	WEEKENDS CalendarID = "WEEKENDS"
	TARGET   CalendarID = "TARGET"
	GBLO     CalendarID = "GBLO" // UK settlement
	USNY     CalendarID = "USNY" // US settlement
	USGS     CalendarID = "USGS" // US government bond market, SOFR fixings
	JPTO     CalendarID = "JPTO"
)

var aliases = map[string]CalendarID{
	"NULL":           NULL,
	"NULLCALENDAR":   NULL,
	"WEEKENDS":       WEEKENDS,
	"WEEKENDSONLY":   WEEKENDS,
	"TARGET":         TARGET,
	"GBLO":           GBLO,
	"UNITEDKINGDOM":  GBLO,
	"UK":             GBLO,
	"USNY":           USNY,
	"UNITEDSTATES":   USNY,
	"USD":            USNY,
	"USGS":           USGS,
	"SOFR":           USGS,
	"GOVERNMENTBOND": USGS,
	"JPTO":           JPTO,
	"JAPAN":          JPTO,
	"JPN":            JPTO,
}

// Parse resolves a calendar identifier or one of its common aliases.
func Parse(s string) (CalendarID, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if id, ok := aliases[key]; ok {
		return id, nil
	}
	return "", fmt.Errorf("calendar.Parse: unknown calendar %q", s)
}

// BusinessDayAdjustment is a date rolling convention.
type BusinessDayAdjustment string

const (
	Unadjusted        BusinessDayAdjustment = "UNADJUSTED"
	Following         BusinessDayAdjustment = "FOLLOWING"
	ModifiedFollowing BusinessDayAdjustment = "MODIFIED_FOLLOWING"
	Preceding         BusinessDayAdjustment = "PRECEDING"
	ModifiedPreceding BusinessDayAdjustment = "MODIFIED_PRECEDING"
)

// ParseAdjustment accepts the enum names case-insensitively.
func ParseAdjustment(s string) (BusinessDayAdjustment, error) {
	switch BusinessDayAdjustment(strings.ToUpper(strings.TrimSpace(s))) {
	case Unadjusted, "":
		return Unadjusted, nil
	case Following:
		return Following, nil
	case ModifiedFollowing, "MODIFIEDFOLLOWING":
		return ModifiedFollowing, nil
	case Preceding:
		return Preceding, nil
	case ModifiedPreceding, "MODIFIEDPRECEDING":
		return ModifiedPreceding, nil
	}
	return "", fmt.Errorf("calendar.ParseAdjustment: unknown adjustment %q", s)
}

// IsHoliday reports whether t is a holiday (weekends are not holidays).
func IsHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case NULL, WEEKENDS, "":
		return false
	}
	_, ok := holidaysFor(cal, t.Year())[dayKey(t)]
	return ok
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NULL {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !IsHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	return AdjustWith(cal, t, ModifiedFollowing)
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	return AdjustWith(cal, t, Following)
}

// AdjustWith rolls t onto a business day using the given convention.
func AdjustWith(cal CalendarID, t time.Time, bda BusinessDayAdjustment) time.Time {
	switch bda {
	case Following:
		return roll(cal, t, 1)
	case Preceding:
		return roll(cal, t, -1)
	case ModifiedFollowing:
		d := roll(cal, t, 1)
		if d.Month() != t.Month() {
			d = roll(cal, t, -1)
		}
		return d
	case ModifiedPreceding:
		d := roll(cal, t, -1)
		if d.Month() != t.Month() {
			d = roll(cal, t, 1)
		}
		return d
	default:
		return t
	}
}

func roll(cal CalendarID, t time.Time, step int) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, step)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// BusinessDaysBetween counts business days in (from, to].
func BusinessDaysBetween(cal CalendarID, from, to time.Time) int {
	n := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(cal, d) {
			n++
		}
	}
	return n
}

// DaysInMonth returns the number of calendar days in the month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// EndOfMonth returns the last calendar day of the month containing t.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), DaysInMonth(t.Year(), t.Month()), 0, 0, 0, 0, time.UTC)
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func LastBusinessDayOfMonth(cal CalendarID, t time.Time) time.Time {
	return roll(cal, EndOfMonth(t), -1)
}

// IsEndOfMonth checks if t is the last business day of its month.
func IsEndOfMonth(cal CalendarID, t time.Time) bool {
	return t.Equal(LastBusinessDayOfMonth(cal, t))
}

// NthWeekday returns the n-th given weekday of a month; n=-1 gives the last one.
func NthWeekday(n int, wd time.Weekday, year int, month time.Month) time.Time {
	if n < 0 {
		d := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
		for d.Weekday() != wd {
			d = d.AddDate(0, 0, -1)
		}
		return d
	}
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 7*(n-1))
}
