package market

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

// BumpType selects how an instrument quote is bumped.
type BumpType string

const (
	// BumpAbsolute applies the family bump, e.g. +1bp on a rate.
	BumpAbsolute BumpType = "ABSOLUTE"
	// BumpRelative scales the quote by (1 + bump).
	BumpRelative BumpType = "RELATIVE"
)

// ParseBumpType accepts ABSOLUTE or RELATIVE in any case; empty is ABSOLUTE.
func ParseBumpType(s string) (BumpType, error) {
	switch BumpType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", BumpAbsolute:
		return BumpAbsolute, nil
	case BumpRelative:
		return BumpRelative, nil
	}
	return "", fmt.Errorf("ParseBumpType: unknown bump type %q", s)
}

// BumpedMarket is a view in which one instrument was bumped.
type BumpedMarket struct {
	Instrument instrument.Instrument
	Market     *View
	BumpSize   float64
	BumpType   BumpType
}

// Bump returns the bumped instrument and the bump size to divide by.
func Bump(inst instrument.Instrument, bt BumpType) (instrument.Instrument, float64) {
	f := inst.Family()
	size := f.DefaultBump()
	if bt == BumpRelative {
		return inst.WithQuote(inst.Quote * (1 + size)), size
	}
	return inst.WithQuote(f.BumpQuote(inst.Quote, size)), size
}

// BumpedMarket builds a new view with inst bumped and its dependent curves
// rebuilt. It only reads v, so callers may build several concurrently.
func (v *View) BumpedMarket(inst instrument.Instrument, bt BumpType) (BumpedMarket, error) {
	bumped, size := Bump(inst, bt)
	nv, err := v.WithInstruments([]instrument.Instrument{bumped})
	if err != nil {
		return BumpedMarket{}, fmt.Errorf("BumpedMarket: %s: %w", inst.Name(), err)
	}
	return BumpedMarket{Instrument: inst, Market: nv, BumpSize: size, BumpType: bt}, nil
}

// BumpedMarkets builds one new view per instrument passing the filter,
// each with that instrument bumped and its dependent curves rebuilt.
func (v *View) BumpedMarkets(filter *instrument.Filter, bt BumpType) ([]BumpedMarket, error) {
	insts := filter.Select(v.Instruments())
	out := make([]BumpedMarket, 0, len(insts))
	for _, inst := range insts {
		bm, err := v.BumpedMarket(inst, bt)
		if err != nil {
			return nil, err
		}
		out = append(out, bm)
	}
	v.logger().Debug("bumped markets built", zap.Int("count", len(out)), zap.String("bump_type", string(bt)))
	return out, nil
}

// BumpInPlace bumps the matching instruments one at a time on a single
// working copy of v and calls fn with it. The copy is restored after each
// call, so fn must not keep the market beyond its return.
func (v *View) BumpInPlace(filter *instrument.Filter, bt BumpType, fn func(BumpedMarket) error) error {
	work := v.Clone()
	for _, inst := range filter.Select(v.Instruments()) {
		bumped, size := Bump(inst, bt)
		changed := []instrument.Instrument{bumped}
		oldInsts, oldCurves, err := work.applyQuotes(changed)
		if err != nil {
			work.restore(changed, oldInsts, oldCurves)
			return fmt.Errorf("BumpInPlace: %s: %w", inst.Name(), err)
		}
		err = fn(BumpedMarket{Instrument: inst, Market: work, BumpSize: size, BumpType: bt})
		work.restore(changed, oldInsts, oldCurves)
		if err != nil {
			return err
		}
	}
	return nil
}
