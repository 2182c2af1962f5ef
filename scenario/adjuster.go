package scenario

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

// AdjustmentType says how an adjustment value changes a quote.
type AdjustmentType string

const (
	// Absolute adds the value to the quote.
	Absolute AdjustmentType = "ABSOLUTE"
	// Relative scales the quote by (1 + value).
	Relative AdjustmentType = "RELATIVE"
	// Fixed replaces the quote with the value.
	Fixed AdjustmentType = "FIXED"
)

// ParseAdjustmentType accepts a type name in any case; empty is ABSOLUTE.
func ParseAdjustmentType(s string) (AdjustmentType, error) {
	switch t := AdjustmentType(strings.ToUpper(strings.TrimSpace(s))); t {
	case "":
		return Absolute, nil
	case Absolute, Relative, Fixed:
		return t, nil
	}
	return "", fmt.Errorf("ParseAdjustmentType: unknown adjustment type %q", s)
}

func (t AdjustmentType) apply(quote, value float64) (float64, error) {
	switch t {
	case Absolute, "":
		return quote + value, nil
	case Relative:
		return quote * (1 + value), nil
	case Fixed:
		return value, nil
	}
	return 0, fmt.Errorf("unknown adjustment type %q", t)
}

// QuoteAdjuster returns the new quote of an instrument.
type QuoteAdjuster interface {
	Adjust(inst instrument.Instrument, pricing time.Time) (float64, error)
}

// SimpleQuoteAdjuster applies the same value to every quote.
type SimpleQuoteAdjuster struct {
	Type  AdjustmentType
	Value float64
}

func (a SimpleQuoteAdjuster) Adjust(inst instrument.Instrument, _ time.Time) (float64, error) {
	return a.Type.apply(inst.Quote, a.Value)
}

// TermStructureQuoteAdjuster applies Func of the instrument tenor time in
// years. Instruments without a tenor keep their quote.
type TermStructureQuoteAdjuster struct {
	Type AdjustmentType
	Func func(t float64) float64
}

func (a TermStructureQuoteAdjuster) Adjust(inst instrument.Instrument, pricing time.Time) (float64, error) {
	t, ok := inst.TenorTime(pricing)
	if !ok {
		return inst.Quote, nil
	}
	return a.Type.apply(inst.Quote, a.Func(t))
}

// LinearShape returns t -> a + b*t.
func LinearShape(a, b float64) func(float64) float64 {
	return func(t float64) float64 { return a + b*t }
}

// Point is a shape node: value V at tenor time T.
type Point struct {
	T float64 `yaml:"t" json:"t"`
	V float64 `yaml:"v" json:"v"`
}

// PiecewiseShape interpolates linearly between points and is flat beyond
// the first and last.
func PiecewiseShape(points []Point) func(float64) float64 {
	pts := append([]Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].T < pts[j].T })
	return func(t float64) float64 {
		switch {
		case len(pts) == 0:
			return 0
		case t <= pts[0].T:
			return pts[0].V
		case t >= pts[len(pts)-1].T:
			return pts[len(pts)-1].V
		}
		i := sort.Search(len(pts), func(i int) bool { return pts[i].T >= t })
		p0, p1 := pts[i-1], pts[i]
		return p0.V + (p1.V-p0.V)*(t-p0.T)/(p1.T-p0.T)
	}
}

// SelectiveQuoteAdjuster applies Adjuster to the instruments passing Filter.
type SelectiveQuoteAdjuster struct {
	Adjuster QuoteAdjuster
	Filter   *instrument.Filter
}

func (s SelectiveQuoteAdjuster) Matches(inst instrument.Instrument) bool {
	return s.Filter.Matches(inst)
}
