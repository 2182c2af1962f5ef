package scenario

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

// File is the YAML form of a list of scenarios:
//
//	scenarios:
//	  - name: parallel_up_10bp
//	    type: ABSOLUTE
//	    value: 0.001
//	    filter: {currencies: [EUR]}
//	  - name: steepener
//	    linear: {intercept: -0.0005, slope: 0.0001}
//	  - name: twist
//	    adjusters:
//	      - piecewise: [{t: 1, v: -0.001}, {t: 10, v: 0.001}]
//	        filter: {families: [IRS-SOFR]}
type File struct {
	Scenarios []ScenarioDef `yaml:"scenarios"`
}

// ScenarioDef is one scenario. A scenario either lists adjusters or is a
// single adjuster written inline.
type ScenarioDef struct {
	Name        string        `yaml:"name"`
	AdjusterDef `yaml:",inline"`
	Adjusters   []AdjusterDef `yaml:"adjusters,omitempty"`
}

// AdjusterDef sets exactly one of Value, Linear or Piecewise.
type AdjusterDef struct {
	Type      string             `yaml:"type,omitempty"`
	Value     *float64           `yaml:"value,omitempty"`
	Linear    *LinearDef         `yaml:"linear,omitempty"`
	Piecewise []Point            `yaml:"piecewise,omitempty"`
	Filter    *instrument.Filter `yaml:"filter,omitempty"`
}

type LinearDef struct {
	Intercept float64 `yaml:"intercept"`
	Slope     float64 `yaml:"slope"`
}

func (d AdjusterDef) empty() bool {
	return d.Value == nil && d.Linear == nil && len(d.Piecewise) == 0
}

func (d AdjusterDef) build() (SelectiveQuoteAdjuster, error) {
	t, err := ParseAdjustmentType(d.Type)
	if err != nil {
		return SelectiveQuoteAdjuster{}, err
	}
	set := 0
	var adj QuoteAdjuster
	if d.Value != nil {
		set++
		adj = SimpleQuoteAdjuster{Type: t, Value: *d.Value}
	}
	if d.Linear != nil {
		set++
		adj = TermStructureQuoteAdjuster{Type: t, Func: LinearShape(d.Linear.Intercept, d.Linear.Slope)}
	}
	if len(d.Piecewise) > 0 {
		set++
		adj = TermStructureQuoteAdjuster{Type: t, Func: PiecewiseShape(d.Piecewise)}
	}
	if set != 1 {
		return SelectiveQuoteAdjuster{}, fmt.Errorf("adjuster needs exactly one of value, linear or piecewise, got %d", set)
	}
	return SelectiveQuoteAdjuster{Adjuster: adj, Filter: d.Filter}, nil
}

// Build turns the definition into a scenario.
func (d ScenarioDef) Build() (*AdjustQuotesScenario, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("scenario without a name")
	}
	defs := d.Adjusters
	if !d.AdjusterDef.empty() {
		defs = append([]AdjusterDef{d.AdjusterDef}, defs...)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("scenario %s: no adjusters", d.Name)
	}
	s := &AdjustQuotesScenario{ScenarioName: d.Name}
	for i, ad := range defs {
		a, err := ad.build()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: adjuster %d: %w", d.Name, i, err)
		}
		s.Adjusters = append(s.Adjusters, a)
	}
	return s, nil
}

// Decode reads scenario definitions from YAML.
func Decode(r io.Reader) ([]Scenario, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("scenario.Decode: %w", err)
	}
	out := make([]Scenario, 0, len(f.Scenarios))
	seen := map[string]struct{}{}
	for _, d := range f.Scenarios {
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("scenario.Decode: duplicate scenario %q", d.Name)
		}
		seen[d.Name] = struct{}{}
		s, err := d.Build()
		if err != nil {
			return nil, fmt.Errorf("scenario.Decode: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadFile reads scenario definitions from a YAML file.
func LoadFile(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario.LoadFile: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
