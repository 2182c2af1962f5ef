// Package marketdata loads market views from YAML snapshot files.
//
// A snapshot names the pricing date, spot FX, index fixings and the curves
// to build in order:
//
//	name: eod
//	pricing_date: 2024-01-10
//	fx:
//	  - {base: EUR, quote: USD, rate: 1.1}
//	fixings:
//	  ESTR:
//	    - {date: 2024-01-09, value: 0.0390}
//	curves:
//	  - name: EUR-ESTR
//	    kind: discounting_rate
//	    index: ESTR
//	    instruments: {IRS-ESTR-1Y: 0.038, IRS-ESTR-5Y: 0.028}
//	  - name: EUR-EURIBOR6M
//	    kind: rate
//	    index: EURIBOR6M
//	    from_store: true
//	    instruments: {IRS-EURIBOR6M-5Y: ~, IRS-EURIBOR6M-10Y: ~}
//	csa:
//	  EUR-CSA: EUR-ESTR
package marketdata

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/quotestore"
)

// Curve kinds.
const (
	// KindDiscounting is a self-discounted curve of a currency with no index.
	KindDiscounting = "discounting"
	// KindDiscountingRate projects an index and discounts its currency.
	KindDiscountingRate = "discounting_rate"
	// KindRate projects an index, discounted by its currency's curve.
	KindRate = "rate"
	// KindFixed is given by discount factors.
	KindFixed = "fixed"
)

// Snapshot is the file form of a market view.
type Snapshot struct {
	Name        string                   `yaml:"name"`
	PricingDate string                   `yaml:"pricing_date"`
	FX          []FXRate                 `yaml:"fx,omitempty"`
	Fixings     map[string][]FixingEntry `yaml:"fixings,omitempty"`
	Curves      []CurveDef               `yaml:"curves"`
	// CSA maps collateral ids to already defined curves.
	CSA map[string]string `yaml:"csa,omitempty"`
}

// FXRate is the price of one unit of Base in Quote.
type FXRate struct {
	Base  currency.Currency `yaml:"base"`
	Quote currency.Currency `yaml:"quote"`
	Rate  float64           `yaml:"rate"`
}

type FixingEntry struct {
	Date  string  `yaml:"date"`
	Value float64 `yaml:"value"`
}

// CurveDef is one curve of a snapshot.
type CurveDef struct {
	Name          string            `yaml:"name"`
	Kind          string            `yaml:"kind"`
	Currency      currency.Currency `yaml:"currency,omitempty"`
	Index         string            `yaml:"index,omitempty"`
	Interpolation string            `yaml:"interpolation,omitempty"`
	// Instruments maps instrument names to quotes. With FromStore set the
	// quotes are read from the quote store and may be left empty.
	Instruments     map[string]*float64 `yaml:"instruments,omitempty"`
	FromStore       bool                `yaml:"from_store,omitempty"`
	Dates           []string            `yaml:"dates,omitempty"`
	DiscountFactors []float64           `yaml:"discount_factors,omitempty"`
}

// Options controls how a snapshot becomes a view.
type Options struct {
	// Store supplies quotes for curves marked from_store.
	Store *quotestore.Store
	// Window is the quote store lookback in calendar days.
	Window   int
	Registry *instrument.Registry
}

// LoadFile reads and builds a snapshot file.
func LoadFile(ctx context.Context, path string, opts Options) (*market.View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata.LoadFile: %w", err)
	}
	defer f.Close()
	v, err := Load(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("marketdata.LoadFile: %s: %w", path, err)
	}
	return v, nil
}

// Decode parses a snapshot without building it.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Load decodes a snapshot and builds its view.
func Load(ctx context.Context, r io.Reader, opts Options) (*market.View, error) {
	s, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, opts)
}

// Build creates the view: FX and fixings first, then curves in file order.
func (s *Snapshot) Build(ctx context.Context, opts Options) (*market.View, error) {
	pricing, err := dates.Parse(s.PricingDate)
	if err != nil {
		return nil, fmt.Errorf("pricing_date: %w", err)
	}
	reg := opts.Registry
	if reg == nil {
		reg = instrument.Default()
	}
	name := s.Name
	if name == "" {
		name = dates.Format(pricing)
	}
	v := market.NewView(name, pricing)
	v.SetRegistry(reg)

	for _, fx := range s.FX {
		if err := v.AddSpotFX(fx.Base, fx.Quote, fx.Rate); err != nil {
			return nil, err
		}
	}
	ixNames := make([]string, 0, len(s.Fixings))
	for n := range s.Fixings {
		ixNames = append(ixNames, n)
	}
	sort.Strings(ixNames)
	for _, n := range ixNames {
		ix, err := index.Lookup(n)
		if err != nil {
			return nil, fmt.Errorf("fixings: %w", err)
		}
		fs := make([]market.Fixing, 0, len(s.Fixings[n]))
		for _, e := range s.Fixings[n] {
			d, err := dates.Parse(e.Date)
			if err != nil {
				return nil, fmt.Errorf("fixings %s: %w", n, err)
			}
			fs = append(fs, market.Fixing{Date: d, Value: e.Value})
		}
		if kept := v.AddIndexFixings(ix, fs); kept < len(fs) {
			zap.L().Named("marketdata").Warn("fixings on non-business days dropped",
				zap.String("index", n), zap.Int("dropped", len(fs)-kept))
		}
	}

	for _, cd := range s.Curves {
		if err := cd.add(ctx, v, reg, pricing, opts); err != nil {
			return nil, fmt.Errorf("curve %s: %w", cd.Name, err)
		}
	}

	ids := make([]string, 0, len(s.CSA))
	for id := range s.CSA {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := v.AddDiscountingCurve(id, s.CSA[id]); err != nil {
			return nil, fmt.Errorf("csa %s: %w", id, err)
		}
	}
	zap.L().Named("marketdata").Info("market snapshot loaded",
		zap.String("name", name),
		zap.String("pricing_date", dates.Format(pricing)),
		zap.Int("curves", len(s.Curves)))
	return v, nil
}

func (cd CurveDef) instruments(ctx context.Context, reg *instrument.Registry, pricing time.Time, opts Options) ([]instrument.Instrument, error) {
	names := make([]string, 0, len(cd.Instruments))
	for n := range cd.Instruments {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no instruments")
	}
	if cd.FromStore {
		if opts.Store == nil {
			return nil, fmt.Errorf("from_store is set but no quote store is configured")
		}
		return opts.Store.BindInstruments(ctx, reg, pricing, names, opts.Window)
	}
	out := make([]instrument.Instrument, 0, len(names))
	for _, n := range names {
		q := cd.Instruments[n]
		if q == nil {
			return nil, fmt.Errorf("instrument %s has no quote", n)
		}
		inst, err := reg.Create(n, *q)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (cd CurveDef) add(ctx context.Context, v *market.View, reg *instrument.Registry, pricing time.Time, opts Options) error {
	interp, err := curve.ParseInterpolation(cd.Interpolation)
	if err != nil {
		return err
	}
	if cd.Kind == KindFixed {
		if len(cd.Dates) != len(cd.DiscountFactors) {
			return fmt.Errorf("%d dates but %d discount factors", len(cd.Dates), len(cd.DiscountFactors))
		}
		ds := make([]time.Time, len(cd.Dates))
		for i, s := range cd.Dates {
			if ds[i], err = dates.Parse(s); err != nil {
				return err
			}
		}
		if _, err := v.AddCurve(&market.FixedSpec{CurveName: cd.Name, Dates: ds, DiscountFactors: cd.DiscountFactors, Interpolation: interp}); err != nil {
			return err
		}
		if cd.Currency != "" {
			return v.AddDiscountingCurve(string(cd.Currency), cd.Name)
		}
		return nil
	}

	insts, err := cd.instruments(ctx, reg, pricing, opts)
	if err != nil {
		return err
	}
	switch cd.Kind {
	case KindDiscounting:
		if cd.Currency == "" {
			return fmt.Errorf("currency is required for a %s curve", cd.Kind)
		}
		_, err = v.AddBootstrappedDiscountingCurve(cd.Name, insts, cd.Currency, interp)
	case KindDiscountingRate, KindRate:
		ix, lerr := index.Lookup(cd.Index)
		if lerr != nil {
			return lerr
		}
		if cd.Kind == KindRate {
			_, err = v.AddBootstrappedRateCurve(cd.Name, insts, ix, interp)
		} else {
			_, err = v.AddBootstrappedDiscountingRateCurve(cd.Name, insts, ix, interp)
		}
	default:
		return fmt.Errorf("unknown curve kind %q", cd.Kind)
	}
	return err
}
