package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeUnit of a Term.
type TimeUnit string

const (
	UnitDays   TimeUnit = "D"
	UnitWeeks  TimeUnit = "W"
	UnitMonths TimeUnit = "M"
	UnitYears  TimeUnit = "Y"
)

// Term is a tenor such as 3M or 10Y.
type Term struct {
	Length int
	Unit   TimeUnit
}

// ParseTerm parses strings like "1D", "2W", "18M", "30Y". ON and TN map to 1D and 2D.
func ParseTerm(s string) (Term, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "ON", "O/N":
		return Term{1, UnitDays}, nil
	case "TN", "T/N":
		return Term{2, UnitDays}, nil
	}
	if len(s) < 2 {
		return Term{}, fmt.Errorf("dates.ParseTerm: invalid term %q", s)
	}
	unit := TimeUnit(s[len(s)-1:])
	switch unit {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
	default:
		return Term{}, fmt.Errorf("dates.ParseTerm: invalid unit in %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return Term{}, fmt.Errorf("dates.ParseTerm: invalid length in %q", s)
	}
	return Term{Length: n, Unit: unit}, nil
}

// MustTerm is ParseTerm for literals.
func MustTerm(s string) Term {
	t, err := ParseTerm(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Term) String() string {
	return strconv.Itoa(t.Length) + string(t.Unit)
}

// IsZero reports an empty term.
func (t Term) IsZero() bool {
	return t.Length == 0
}

// Years approximates the term length in years.
func (t Term) Years() float64 {
	switch t.Unit {
	case UnitDays:
		return float64(t.Length) / 365.0
	case UnitWeeks:
		return float64(t.Length) * 7.0 / 365.0
	case UnitMonths:
		return float64(t.Length) / 12.0
	default:
		return float64(t.Length)
	}
}

// TotalMonths returns the length in months for M and Y terms.
func (t Term) TotalMonths() (int, bool) {
	switch t.Unit {
	case UnitMonths:
		return t.Length, true
	case UnitYears:
		return 12 * t.Length, true
	}
	return 0, false
}

// AddTo advances d by the term, n times (n may be negative).
func (t Term) AddTo(d time.Time, n int) time.Time {
	switch t.Unit {
	case UnitDays:
		return d.AddDate(0, 0, n*t.Length)
	case UnitWeeks:
		return d.AddDate(0, 0, 7*n*t.Length)
	case UnitMonths:
		return AddMonth(d, n*t.Length)
	default:
		return AddMonth(d, 12*n*t.Length)
	}
}

func (t Term) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Term) UnmarshalText(b []byte) error {
	p, err := ParseTerm(string(b))
	if err != nil {
		return err
	}
	*t = p
	return nil
}

// Frequency is the number of periods per year.
type Frequency int

const (
	Once       Frequency = 0
	Annual     Frequency = 1
	Semiannual Frequency = 2
	Quarterly  Frequency = 4
	Monthly    Frequency = 12
)

// Months per period; 0 for Once.
func (f Frequency) Months() int {
	if f <= 0 {
		return 0
	}
	return 12 / int(f)
}

// Term of one period.
func (f Frequency) Term() Term {
	return Term{Length: f.Months(), Unit: UnitMonths}
}

func (f Frequency) String() string {
	switch f {
	case Once:
		return "ONCE"
	case Annual:
		return "ANNUAL"
	case Semiannual:
		return "SEMIANNUAL"
	case Quarterly:
		return "QUARTERLY"
	case Monthly:
		return "MONTHLY"
	}
	return strconv.Itoa(int(f))
}

// ParseFrequency accepts names or tenor strings (6M, 1Y).
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ONCE":
		return Once, nil
	case "ANNUAL":
		return Annual, nil
	case "SEMIANNUAL":
		return Semiannual, nil
	case "QUARTERLY":
		return Quarterly, nil
	case "MONTHLY":
		return Monthly, nil
	}
	t, err := ParseTerm(s)
	if err != nil {
		return 0, fmt.Errorf("dates.ParseFrequency: %q", s)
	}
	return FrequencyFromTerm(t)
}

// FrequencyFromTerm maps 1M, 3M, 6M, 12M/1Y to a frequency.
func FrequencyFromTerm(t Term) (Frequency, error) {
	m, ok := t.TotalMonths()
	if !ok || m <= 0 || 12%m != 0 {
		return 0, fmt.Errorf("dates.FrequencyFromTerm: no frequency for %s", t)
	}
	return Frequency(12 / m), nil
}
