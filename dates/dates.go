// Package dates holds the date utilities shared by curves, instruments and
// products: parsing, tenors, frequencies, day counts and schedules.
package dates

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Date truncates t to midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// YMD builds a UTC date.
func YMD(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse accepts YYYY-MM-DD, YYYYMMDD (string or integer) and time.Time.
func Parse(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return Date(x), nil
	case int:
		return FromISOInt(x)
	case int64:
		return FromISOInt(int(x))
	case string:
		s := strings.TrimSpace(x)
		if len(s) == 8 && !strings.Contains(s, "-") {
			n, err := strconv.Atoi(s)
			if err != nil {
				return time.Time{}, fmt.Errorf("dates.Parse: %q: %w", s, err)
			}
			return FromISOInt(n)
		}
		t, err := time.Parse(isoLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("dates.Parse: %q: %w", s, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("dates.Parse: unsupported input %T", v)
	}
}

// MustParse is Parse for literals known to be valid.
func MustParse(v any) time.Time {
	t, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return t
}

// FromISOInt converts 20240131 to a date.
func FromISOInt(n int) (time.Time, error) {
	y, m, d := n/10000, (n/100)%100, n%100
	if m < 1 || m > 12 || d < 1 || d > 31 || y < 1900 {
		return time.Time{}, fmt.Errorf("dates.FromISOInt: invalid date %d", n)
	}
	t := YMD(y, time.Month(m), d)
	if t.Day() != d {
		return time.Time{}, fmt.Errorf("dates.FromISOInt: invalid date %d", n)
	}
	return t, nil
}

// ISOInt converts a date to its YYYYMMDD integer form.
func ISOInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// FromExcelSerial converts an Excel serial day number.
func FromExcelSerial(n int) time.Time {
	return excelEpoch.AddDate(0, 0, n)
}

// ExcelSerial is the inverse of FromExcelSerial.
func ExcelSerial(t time.Time) int {
	return int(Days(excelEpoch, Date(t)))
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(isoLayout)
}

// SortDates sorts a slice of time.Time in ascending order.
func SortDates(ds []time.Time) {
	sort.Slice(ds, func(i, j int) bool {
		return ds[i].Before(ds[j])
	})
}

// Days returns the number of calendar days between two dates.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// AddMonth behaves like Excel's EDATE: the day is clipped to the target month length.
func AddMonth(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := t.Day()
	if n := daysInMonth(first.Year(), first.Month()); day > n {
		day = n
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isMonthEnd(t time.Time) bool {
	return t.Day() == daysInMonth(t.Year(), t.Month())
}

// EndOfMonth returns the last calendar day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), daysInMonth(t.Year(), t.Month()), 0, 0, 0, 0, time.UTC)
}
