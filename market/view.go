// Package market holds the market view: quoted instruments, curves built
// from them, index fixings and spot FX, all as of one pricing date.
//
// Curves are described by specs that name the instruments and other curves
// they depend on, so a view with changed quotes only rebuilds the curves
// whose inputs changed.
package market

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tidwall/btree"
	"go.uber.org/zap"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

var (
	ErrCurveNotFound       = errors.New("curve not found")
	ErrCurveNotBuilt       = errors.New("curve not built")
	ErrCurveExists         = errors.New("curve already exists")
	ErrCurveCycle          = errors.New("curve dependency cycle")
	ErrInstrumentNotFound  = errors.New("instrument not found")
	ErrDuplicateInstrument = errors.New("instrument already quoted differently")
	ErrFXNotFound          = errors.New("fx rate not found")
)

type curveEntry struct {
	spec  CurveSpec
	built *curve.Curve
}

// View is a market snapshot as of a pricing date. Build it on one
// goroutine; once its curves are built it is safe for concurrent reads.
type View struct {
	name        string
	pricing     time.Time
	registry    *instrument.Registry
	instruments map[string]instrument.Instrument
	discounting map[string]string
	indexCurves map[string]string
	curves      map[string]*curveEntry
	fixings     map[string]*btree.Map[int, float64]
	fx          map[currency.Currency]map[currency.Currency]float64
}

// NewView returns an empty view.
func NewView(name string, pricingDate time.Time) *View {
	return &View{
		name:        name,
		pricing:     dates.Date(pricingDate),
		registry:    instrument.Default(),
		instruments: map[string]instrument.Instrument{},
		discounting: map[string]string{},
		indexCurves: map[string]string{},
		curves:      map[string]*curveEntry{},
		fixings:     map[string]*btree.Map[int, float64]{},
		fx:          map[currency.Currency]map[currency.Currency]float64{},
	}
}

func (v *View) Name() string           { return v.name }
func (v *View) PricingDate() time.Time { return v.pricing }

// Registry resolves instrument names when the view is decoded.
func (v *View) Registry() *instrument.Registry { return v.registry }

// SetRegistry replaces the instrument registry.
func (v *View) SetRegistry(r *instrument.Registry) { v.registry = r }

func (v *View) logger() *zap.Logger {
	return zap.L().Named("market").With(zap.String("view", v.name))
}

// AddInstrument stores a quoted instrument. Re-adding the same quote is a
// no-op; a different quote for the same name is an error.
func (v *View) AddInstrument(inst instrument.Instrument) error {
	if old, ok := v.instruments[inst.Name()]; ok && old.Quote != inst.Quote {
		return fmt.Errorf("AddInstrument: %w: %s has %g, got %g", ErrDuplicateInstrument, inst.Name(), old.Quote, inst.Quote)
	}
	v.instruments[inst.Name()] = inst
	return nil
}

// AddInstruments adds each instrument in turn.
func (v *View) AddInstruments(insts ...instrument.Instrument) error {
	for _, inst := range insts {
		if err := v.AddInstrument(inst); err != nil {
			return err
		}
	}
	return nil
}

// Instrument looks up a quoted instrument by name.
func (v *View) Instrument(name string) (instrument.Instrument, error) {
	inst, ok := v.instruments[name]
	if !ok {
		return instrument.Instrument{}, fmt.Errorf("%w: %s", ErrInstrumentNotFound, name)
	}
	return inst, nil
}

// Instruments returns all instruments sorted by name.
func (v *View) Instruments() []instrument.Instrument {
	out := make([]instrument.Instrument, 0, len(v.instruments))
	for _, inst := range v.instruments {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// InstrumentMap returns a copy of the name to instrument map.
func (v *View) InstrumentMap() map[string]instrument.Instrument {
	out := make(map[string]instrument.Instrument, len(v.instruments))
	for k, inst := range v.instruments {
		out[k] = inst
	}
	return out
}

// AddCurve registers a curve spec and builds it together with any
// prerequisites that are not built yet.
func (v *View) AddCurve(spec CurveSpec) (*curve.Curve, error) {
	name := spec.Name()
	if _, ok := v.curves[name]; ok {
		return nil, fmt.Errorf("AddCurve: %w: %s", ErrCurveExists, name)
	}
	v.curves[name] = &curveEntry{spec: spec}
	if err := v.MaybeRebuild(name); err != nil {
		delete(v.curves, name)
		return nil, err
	}
	return v.curves[name].built, nil
}

// AddDiscountingCurve makes the named curve the discounting curve for a
// currency code or CSA id.
func (v *View) AddDiscountingCurve(id, curveName string) error {
	if _, ok := v.discounting[id]; ok {
		return fmt.Errorf("AddDiscountingCurve: %w: discounting curve for %s", ErrCurveExists, id)
	}
	if _, ok := v.curves[curveName]; !ok {
		return fmt.Errorf("AddDiscountingCurve: %w: %s", ErrCurveNotFound, curveName)
	}
	v.discounting[id] = curveName
	return nil
}

// AddIndexCurve makes the named curve the projection curve of an index.
func (v *View) AddIndexCurve(indexName, curveName string) error {
	if _, ok := v.indexCurves[indexName]; ok {
		return fmt.Errorf("AddIndexCurve: %w: index curve for %s", ErrCurveExists, indexName)
	}
	if _, ok := v.curves[curveName]; !ok {
		return fmt.Errorf("AddIndexCurve: %w: %s", ErrCurveNotFound, curveName)
	}
	v.indexCurves[indexName] = curveName
	return nil
}

// CurveByName returns a built curve.
func (v *View) CurveByName(name string) (*curve.Curve, error) {
	e, ok := v.curves[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCurveNotFound, name)
	}
	if e.built == nil {
		return nil, fmt.Errorf("%w: %s", ErrCurveNotBuilt, name)
	}
	return e.built, nil
}

// CurveSpec returns the spec a curve is built from.
func (v *View) CurveSpec(name string) (CurveSpec, bool) {
	e, ok := v.curves[name]
	if !ok {
		return nil, false
	}
	return e.spec, true
}

// CurveNames lists curve names in sorted order.
func (v *View) CurveNames() []string {
	out := make([]string, 0, len(v.curves))
	for n := range v.curves {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Curves returns every built curve by name.
func (v *View) Curves() map[string]*curve.Curve {
	out := make(map[string]*curve.Curve, len(v.curves))
	for n, e := range v.curves {
		if e.built != nil {
			out[n] = e.built
		}
	}
	return out
}

// ClearCurves removes every curve and curve assignment.
func (v *View) ClearCurves() {
	v.curves = map[string]*curveEntry{}
	v.discounting = map[string]string{}
	v.indexCurves = map[string]string{}
}

// DiscountingCurveByID returns the discounting curve for a currency code or CSA id.
func (v *View) DiscountingCurveByID(id string) (*curve.Curve, error) {
	name, ok := v.discounting[id]
	if !ok {
		return nil, fmt.Errorf("%w: no discounting curve for %s", ErrCurveNotFound, id)
	}
	return v.CurveByName(name)
}

// DiscountingCurve prefers the CSA curve when csa is set and known, then
// falls back to the currency curve.
func (v *View) DiscountingCurve(ccy currency.Currency, csa string) (*curve.Curve, error) {
	if csa != "" {
		if _, ok := v.discounting[csa]; ok {
			return v.DiscountingCurveByID(csa)
		}
	}
	return v.DiscountingCurveByID(string(ccy))
}

// IndexCurve returns the projection curve of an index.
func (v *View) IndexCurve(indexName string) (*curve.Curve, error) {
	name, ok := v.indexCurves[indexName]
	if !ok {
		return nil, fmt.Errorf("%w: no curve for index %s", ErrCurveNotFound, indexName)
	}
	return v.CurveByName(name)
}

// DiscountingIDs lists the ids with a discounting curve, sorted.
func (v *View) DiscountingIDs() []string {
	return sortedKeys(v.discounting)
}

// IndexNames lists the indices with a projection curve, sorted.
func (v *View) IndexNames() []string {
	return sortedKeys(v.indexCurves)
}

// Clone returns an independent copy. Built curves, specs and fixing trees
// are shared; none of them is mutated once stored in a view.
func (v *View) Clone() *View {
	nv := &View{
		name:        v.name,
		pricing:     v.pricing,
		registry:    v.registry,
		instruments: v.InstrumentMap(),
		discounting: copyMap(v.discounting),
		indexCurves: copyMap(v.indexCurves),
		curves:      make(map[string]*curveEntry, len(v.curves)),
		fixings:     make(map[string]*btree.Map[int, float64], len(v.fixings)),
		fx:          make(map[currency.Currency]map[currency.Currency]float64, len(v.fx)),
	}
	for n, e := range v.curves {
		nv.curves[n] = &curveEntry{spec: e.spec, built: e.built}
	}
	for n, tr := range v.fixings {
		nv.fixings[n] = tr
	}
	for c, m := range v.fx {
		nv.fx[c] = copyMap(m)
	}
	return nv
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, val := range m {
		out[k] = val
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
