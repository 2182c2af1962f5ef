package instrument

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// Type is an instrument family plus specifics, e.g. SOFR OIS 10Y.
type Type struct {
	Family    Family
	Specifics string
	Name      string
}

// NewType builds a type; the name defaults to FAMILY-SPECIFICS.
func NewType(f Family, specifics string) (*Type, error) {
	s, err := f.ParseSpecifics(specifics)
	if err != nil {
		return nil, err
	}
	return &Type{Family: f, Specifics: s, Name: f.Name() + "-" + s}, nil
}

// TenorTime is the pillar time in years from the pricing date, if known.
func (t *Type) TenorTime(pricing time.Time) (float64, bool) {
	if pd, ok := t.Family.(PillarDater); ok {
		d, err := pd.PillarDate(t.Specifics, pricing)
		if err != nil {
			return 0, false
		}
		return dates.YearFraction(pricing, d, dates.ACT365F), true
	}
	term, err := dates.ParseTerm(t.Specifics)
	if err != nil {
		return 0, false
	}
	return term.Years(), true
}

// Instrument is an instrument type quoted at a point in time.
type Instrument struct {
	Type  *Type
	Quote float64
}

// New quotes an instrument type.
func New(t *Type, quote float64) Instrument {
	return Instrument{Type: t, Quote: quote}
}

func (i Instrument) Name() string       { return i.Type.Name }
func (i Instrument) Family() Family     { return i.Type.Family }
func (i Instrument) Specifics() string  { return i.Type.Specifics }
func (i Instrument) Meta() Meta         { return i.Type.Family.Meta() }
func (i Instrument) RiskType() RiskType { return i.Meta().RiskType }

// Currency of the instrument.
func (i Instrument) Currency() currency.Currency { return i.Meta().Currency }

// AssetClass of the instrument.
func (i Instrument) AssetClass() AssetClass { return i.Meta().AssetClass }

// WithQuote returns a copy with a new quote.
func (i Instrument) WithQuote(q float64) Instrument {
	i.Quote = q
	return i
}

// Bumped applies the family's default bump to the quote.
func (i Instrument) Bumped() Instrument {
	f := i.Family()
	return i.WithQuote(f.BumpQuote(i.Quote, f.DefaultBump()))
}

// TenorTime delegates to the instrument type.
func (i Instrument) TenorTime(pricing time.Time) (float64, bool) {
	return i.Type.TenorTime(pricing)
}

// Helper builds the calibration helper for this instrument.
func (i Instrument) Helper(src CurveSource, discountingID, targetIndex string) (curve.Helper, error) {
	return i.HelperFor(HelperRequest{Source: src, DiscountingID: discountingID, TargetIndex: targetIndex})
}

// HelperFor builds the calibration helper from req, filling in the quote
// and specifics of the instrument.
func (i Instrument) HelperFor(req HelperRequest) (curve.Helper, error) {
	req.Quote = i.Quote
	req.Specifics = i.Specifics()
	h, err := i.Family().NewHelper(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", i.Name(), err)
	}
	return h, nil
}

func (i Instrument) String() string {
	return fmt.Sprintf("%s @ %g", i.Name(), i.Quote)
}

// MarshalJSON writes the instrument as its type name and quote.
func (i Instrument) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Quote float64 `json:"quote"`
	}{i.Name(), i.Quote})
}

// Filter selects instruments. Within a list any entry may match; every
// non-empty list must match.
type Filter struct {
	Names        []string            `json:"names,omitempty" yaml:"names,omitempty"`
	Families     []string            `json:"families,omitempty" yaml:"families,omitempty"`
	Currencies   []currency.Currency `json:"currencies,omitempty" yaml:"currencies,omitempty"`
	RiskTypes    []RiskType          `json:"risk_types,omitempty" yaml:"risk_types,omitempty"`
	AssetClasses []AssetClass        `json:"asset_classes,omitempty" yaml:"asset_classes,omitempty"`
}

// Matches reports whether inst passes the filter. A nil filter matches everything.
func (f *Filter) Matches(inst Instrument) bool {
	if f == nil {
		return true
	}
	if len(f.Names) > 0 && !slices.Contains(f.Names, inst.Name()) {
		return false
	}
	if len(f.Families) > 0 && !slices.Contains(f.Families, inst.Family().Name()) {
		return false
	}
	if len(f.Currencies) > 0 && !slices.Contains(f.Currencies, inst.Currency()) {
		return false
	}
	if len(f.RiskTypes) > 0 && !slices.Contains(f.RiskTypes, inst.RiskType()) {
		return false
	}
	if len(f.AssetClasses) > 0 && !slices.Contains(f.AssetClasses, inst.AssetClass()) {
		return false
	}
	return true
}

// Select returns the instruments that pass the filter, in input order.
func (f *Filter) Select(insts []Instrument) []Instrument {
	var out []Instrument
	for _, inst := range insts {
		if f.Matches(inst) {
			out = append(out, inst)
		}
	}
	return out
}
