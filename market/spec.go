package market

import (
	"fmt"
	"sort"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

// CurveSpec describes how a curve is built inside a view.
type CurveSpec interface {
	Name() string
	Kind() string
	PrerequisiteInstrumentIDs() []string
	PrerequisiteCurveIDs() []string
	Build(v *View) (*curve.Curve, error)
}

// BootstrapSpec calibrates a curve to quoted instruments of the view.
type BootstrapSpec struct {
	CurveName     string              `json:"name"`
	Currency      currency.Currency   `json:"currency"`
	InstrumentIDs []string            `json:"instruments"`
	Interpolation curve.Interpolation `json:"interpolation,omitempty"`
	// TargetIndex is set for projection curves discounted elsewhere.
	TargetIndex string `json:"target_index,omitempty"`
	// DiscountingID names an existing discounting curve; empty means self-discounting.
	DiscountingID string   `json:"discounting_id,omitempty"`
	CurveIDs      []string `json:"prerequisite_curves,omitempty"`
}

func (s *BootstrapSpec) Name() string                        { return s.CurveName }
func (s *BootstrapSpec) Kind() string                        { return "bootstrap" }
func (s *BootstrapSpec) PrerequisiteInstrumentIDs() []string { return s.InstrumentIDs }
func (s *BootstrapSpec) PrerequisiteCurveIDs() []string      { return s.CurveIDs }

// Build bootstraps the curve from the view's current quotes.
func (s *BootstrapSpec) Build(v *View) (*curve.Curve, error) {
	helpers := make([]curve.Helper, 0, len(s.InstrumentIDs))
	for _, id := range s.InstrumentIDs {
		inst, err := v.Instrument(id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.CurveName, err)
		}
		h, err := inst.HelperFor(instrument.HelperRequest{
			Source:         v,
			DiscountingID:  s.DiscountingID,
			TargetIndex:    s.TargetIndex,
			TargetCurrency: s.Currency,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.CurveName, err)
		}
		helpers = append(helpers, h)
	}
	interp := s.Interpolation
	if interp == "" {
		interp = curve.DefaultInterpolation
	}
	c, err := curve.Bootstrap(v.PricingDate(), helpers, interp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.CurveName, err)
	}
	return c, nil
}

// FixedSpec is a curve given directly by discount factors.
type FixedSpec struct {
	CurveName       string              `json:"name"`
	Dates           []time.Time         `json:"dates"`
	DiscountFactors []float64           `json:"discount_factors"`
	Interpolation   curve.Interpolation `json:"interpolation,omitempty"`
}

func (s *FixedSpec) Name() string                        { return s.CurveName }
func (s *FixedSpec) Kind() string                        { return "fixed" }
func (s *FixedSpec) PrerequisiteInstrumentIDs() []string { return nil }
func (s *FixedSpec) PrerequisiteCurveIDs() []string      { return nil }

func (s *FixedSpec) Build(v *View) (*curve.Curve, error) {
	interp := s.Interpolation
	if interp == "" {
		interp = curve.DefaultInterpolation
	}
	c, err := curve.New(v.PricingDate(), s.Dates, s.DiscountFactors, interp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.CurveName, err)
	}
	return c, nil
}

func instrumentNames(insts []instrument.Instrument) []string {
	out := make([]string, len(insts))
	for i, inst := range insts {
		out[i] = inst.Name()
	}
	return out
}

// AddBootstrappedDiscountingCurve calibrates a self-discounted curve that
// belongs to no index, such as a bond curve, and makes it the discounting
// curve of ccy.
func (v *View) AddBootstrappedDiscountingCurve(name string, insts []instrument.Instrument, ccy currency.Currency, interp curve.Interpolation) (*curve.Curve, error) {
	if err := v.AddInstruments(insts...); err != nil {
		return nil, err
	}
	c, err := v.AddCurve(&BootstrapSpec{
		CurveName:     name,
		Currency:      ccy,
		InstrumentIDs: instrumentNames(insts),
		Interpolation: interp,
	})
	if err != nil {
		return nil, err
	}
	if err := v.AddDiscountingCurve(string(ccy), name); err != nil {
		return nil, err
	}
	return c, nil
}

// AddBootstrappedDiscountingRateCurve calibrates a curve that projects ix
// and also discounts its currency, as for an OIS curve.
func (v *View) AddBootstrappedDiscountingRateCurve(name string, insts []instrument.Instrument, ix *index.RateIndex, interp curve.Interpolation) (*curve.Curve, error) {
	c, err := v.AddBootstrappedDiscountingCurve(name, insts, ix.Currency, interp)
	if err != nil {
		return nil, err
	}
	if err := v.AddIndexCurve(ix.Name, name); err != nil {
		return nil, err
	}
	return c, nil
}

// AddBootstrappedRateCurve calibrates the projection curve of ix,
// discounted by the existing curve of its currency. Curves of the other
// indices the instruments reference become prerequisites.
func (v *View) AddBootstrappedRateCurve(name string, insts []instrument.Instrument, ix *index.RateIndex, interp curve.Interpolation) (*curve.Curve, error) {
	if err := v.AddInstruments(insts...); err != nil {
		return nil, err
	}
	discID := string(ix.Currency)
	discName, ok := v.discounting[discID]
	if !ok {
		return nil, fmt.Errorf("AddBootstrappedRateCurve: %s: %w: no discounting curve for %s", name, ErrCurveNotFound, discID)
	}
	deps := map[string]struct{}{discName: {}}
	for _, inst := range insts {
		for _, dep := range inst.Family().UnderlyingIndices() {
			if dep.Name == ix.Name {
				continue
			}
			depName, ok := v.indexCurves[dep.Name]
			if !ok {
				return nil, fmt.Errorf("AddBootstrappedRateCurve: %s: %w: no curve for index %s", name, ErrCurveNotFound, dep.Name)
			}
			deps[depName] = struct{}{}
		}
	}
	curveIDs := make([]string, 0, len(deps))
	for d := range deps {
		curveIDs = append(curveIDs, d)
	}
	sort.Strings(curveIDs)

	c, err := v.AddCurve(&BootstrapSpec{
		CurveName:     name,
		Currency:      ix.Currency,
		InstrumentIDs: instrumentNames(insts),
		Interpolation: interp,
		TargetIndex:   ix.Name,
		DiscountingID: discID,
		CurveIDs:      curveIDs,
	})
	if err != nil {
		return nil, err
	}
	if err := v.AddIndexCurve(ix.Name, name); err != nil {
		return nil, err
	}
	return c, nil
}

// AddBootstrappedXCCYDiscountingCurve calibrates the discounting curve of
// target under collateral in another currency, from cross currency
// instruments such as FX swaps, and registers it under csaID. The
// collateral currency's own discounting curve and the spot rate must
// already be in the view.
func (v *View) AddBootstrappedXCCYDiscountingCurve(name string, insts []instrument.Instrument, target currency.Currency, csaID string, interp curve.Interpolation) (*curve.Curve, error) {
	if csaID == "" || csaID == string(target) {
		return nil, fmt.Errorf("AddBootstrappedXCCYDiscountingCurve: %s: csa id must differ from the currency code", name)
	}
	var collateral currency.Currency
	for _, inst := range insts {
		cc, ok := inst.Family().(instrument.CrossCurrency)
		if !ok {
			return nil, fmt.Errorf("AddBootstrappedXCCYDiscountingCurve: %s: %s is not a cross currency instrument", name, inst.Name())
		}
		base, quote := cc.Currencies()
		other := base
		switch target {
		case base:
			other = quote
		case quote:
		default:
			return nil, fmt.Errorf("AddBootstrappedXCCYDiscountingCurve: %s: %s does not exchange %s", name, inst.Name(), target)
		}
		if collateral != "" && collateral != other {
			return nil, fmt.Errorf("AddBootstrappedXCCYDiscountingCurve: %s: mixed collateral currencies %s and %s", name, collateral, other)
		}
		collateral = other
	}
	if collateral == "" {
		return nil, fmt.Errorf("AddBootstrappedXCCYDiscountingCurve: %s: no instruments", name)
	}
	discName, ok := v.discounting[string(collateral)]
	if !ok {
		return nil, fmt.Errorf("AddBootstrappedXCCYDiscountingCurve: %s: %w: no discounting curve for %s", name, ErrCurveNotFound, collateral)
	}
	if err := v.AddInstruments(insts...); err != nil {
		return nil, err
	}
	c, err := v.AddCurve(&BootstrapSpec{
		CurveName:     name,
		Currency:      target,
		InstrumentIDs: instrumentNames(insts),
		Interpolation: interp,
		DiscountingID: string(collateral),
		CurveIDs:      []string{discName},
	})
	if err != nil {
		return nil, err
	}
	if err := v.AddDiscountingCurve(csaID, name); err != nil {
		return nil, err
	}
	return c, nil
}
