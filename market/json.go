package market

import (
	"encoding/json"
	"fmt"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

// SpecDecoder decodes a curve spec of one kind.
type SpecDecoder func(raw json.RawMessage) (CurveSpec, error)

var specDecoders = map[string]SpecDecoder{
	"bootstrap": func(raw json.RawMessage) (CurveSpec, error) {
		s := &BootstrapSpec{}
		return s, json.Unmarshal(raw, s)
	},
	"fixed": func(raw json.RawMessage) (CurveSpec, error) {
		s := &FixedSpec{}
		return s, json.Unmarshal(raw, s)
	},
}

// RegisterSpecKind makes a custom curve spec kind decodable. Call it from
// an init function.
func RegisterSpecKind(kind string, dec SpecDecoder) {
	specDecoders[kind] = dec
}

type quoteJSON struct {
	Type  string  `json:"type"`
	Quote float64 `json:"quote"`
}

type specJSON struct {
	Kind string          `json:"kind"`
	Spec json.RawMessage `json:"spec"`
}

type fixingJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type viewJSON struct {
	Name        string                                                `json:"name"`
	PricingDate string                                                `json:"pricing_date"`
	Instruments []quoteJSON                                           `json:"instruments"`
	Curves      []specJSON                                            `json:"curves"`
	Discounting map[string]string                                     `json:"discounting_curves"`
	IndexCurves map[string]string                                     `json:"index_curves"`
	Fixings     map[string][]fixingJSON                               `json:"index_fixings,omitempty"`
	SpotFX      map[currency.Currency]map[currency.Currency]float64 `json:"spot_fx_rates,omitempty"`
}

// MarshalJSON writes quotes, curve specs, fixings and FX. Built curves are
// not written; they are rebuilt when the view is decoded.
func (v *View) MarshalJSON() ([]byte, error) {
	out := viewJSON{
		Name:        v.name,
		PricingDate: dates.Format(v.pricing),
		Discounting: v.discounting,
		IndexCurves: v.indexCurves,
		Fixings:     map[string][]fixingJSON{},
		SpotFX:      v.fx,
	}
	for _, inst := range v.Instruments() {
		out.Instruments = append(out.Instruments, quoteJSON{Type: inst.Name(), Quote: inst.Quote})
	}
	for _, n := range v.CurveNames() {
		spec := v.curves[n].spec
		raw, err := json.Marshal(spec)
		if err != nil {
			return nil, fmt.Errorf("MarshalJSON: curve %s: %w", n, err)
		}
		out.Curves = append(out.Curves, specJSON{Kind: spec.Kind(), Spec: raw})
	}
	for _, ix := range v.FixingIndices() {
		for _, f := range v.IndexFixings(ix) {
			out.Fixings[ix] = append(out.Fixings[ix], fixingJSON{Date: dates.Format(f.Date), Value: f.Value})
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a view and rebuilds all of its curves. Instrument
// names resolve against the view's registry, or the default registry when
// none is set.
func (v *View) UnmarshalJSON(b []byte) error {
	var in viewJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("UnmarshalJSON: %w", err)
	}
	pricing, err := dates.Parse(in.PricingDate)
	if err != nil {
		return fmt.Errorf("UnmarshalJSON: %w", err)
	}
	reg := v.registry
	if reg == nil {
		reg = instrument.Default()
	}
	nv := NewView(in.Name, pricing)
	nv.registry = reg

	for _, q := range in.Instruments {
		inst, err := reg.Create(q.Type, q.Quote)
		if err != nil {
			return fmt.Errorf("UnmarshalJSON: %w", err)
		}
		if err := nv.AddInstrument(inst); err != nil {
			return fmt.Errorf("UnmarshalJSON: %w", err)
		}
	}
	for ixName, fs := range in.Fixings {
		ix, err := index.Lookup(ixName)
		if err != nil {
			return fmt.Errorf("UnmarshalJSON: %w", err)
		}
		fixings := make([]Fixing, 0, len(fs))
		for _, f := range fs {
			d, err := dates.Parse(f.Date)
			if err != nil {
				return fmt.Errorf("UnmarshalJSON: %s fixing: %w", ixName, err)
			}
			fixings = append(fixings, Fixing{Date: d, Value: f.Value})
		}
		nv.AddIndexFixings(ix, fixings)
	}
	for c1, m := range in.SpotFX {
		for c2, r := range m {
			if err := nv.AddSpotFX(c1, c2, r); err != nil {
				return fmt.Errorf("UnmarshalJSON: %w", err)
			}
		}
	}
	for _, sj := range in.Curves {
		dec, ok := specDecoders[sj.Kind]
		if !ok {
			return fmt.Errorf("UnmarshalJSON: unknown curve kind %q", sj.Kind)
		}
		spec, err := dec(sj.Spec)
		if err != nil {
			return fmt.Errorf("UnmarshalJSON: %s curve: %w", sj.Kind, err)
		}
		nv.curves[spec.Name()] = &curveEntry{spec: spec}
	}
	for id, n := range in.Discounting {
		if err := nv.AddDiscountingCurve(id, n); err != nil {
			return fmt.Errorf("UnmarshalJSON: %w", err)
		}
	}
	for ix, n := range in.IndexCurves {
		if err := nv.AddIndexCurve(ix, n); err != nil {
			return fmt.Errorf("UnmarshalJSON: %w", err)
		}
	}
	if err := nv.rebuildAll(); err != nil {
		return fmt.Errorf("UnmarshalJSON: %w", err)
	}
	*v = *nv
	return nil
}
