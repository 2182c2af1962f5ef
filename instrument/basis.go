package instrument

import (
	"fmt"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

// IRBasisSwapFamily is a float-for-float swap between two indices of one
// currency. The quote is the spread paid on the first leg.
type IRBasisSwapFamily struct {
	BaseFamily
	Index1, Index2         *index.RateIndex
	Frequency1, Frequency2 dates.Frequency
	SettleDays             int
	Adjustment             calendar.BusinessDayAdjustment
	Calendar               calendar.CalendarID
	EndOfMonth             bool
}

// NewIRBasisSwapFamily checks the legs share a currency and fills
// defaults: leg frequencies from the term index tenors, the larger
// settlement delay, and the first index calendar.
func NewIRBasisSwapFamily(name string, ix1, ix2 *index.RateIndex) (*IRBasisSwapFamily, error) {
	if ix1.Currency != ix2.Currency {
		return nil, fmt.Errorf("NewIRBasisSwapFamily: %s and %s have different currencies", ix1.Name, ix2.Name)
	}
	if ix1.IsOvernight() && ix2.IsOvernight() {
		return nil, fmt.Errorf("NewIRBasisSwapFamily: overnight-overnight basis is not supported")
	}
	return &IRBasisSwapFamily{
		BaseFamily: BaseFamily{
			FamilyName: name,
			FamilyMeta: Meta{Currency: ix1.Currency, RiskType: RiskRateBasis, AssetClass: AssetRate},
		},
		Index1:     ix1,
		Index2:     ix2,
		Frequency1: legFrequency(ix1, ix2),
		Frequency2: legFrequency(ix2, ix1),
		SettleDays: max(ix1.SettleDays, ix2.SettleDays),
		Adjustment: calendar.ModifiedFollowing,
		Calendar:   ix1.Calendar,
	}, nil
}

// legFrequency uses the leg's own tenor, or the other leg's when overnight.
func legFrequency(ix, other *index.RateIndex) dates.Frequency {
	if !ix.IsOvernight() {
		return ix.Frequency()
	}
	if !other.IsOvernight() {
		return other.Frequency()
	}
	return dates.Annual
}

func (f *IRBasisSwapFamily) UnderlyingIndices() []*index.RateIndex {
	return []*index.RateIndex{f.Index1, f.Index2}
}

func (f *IRBasisSwapFamily) QuoteConvention() QuoteConvention { return QuoteSpread }

// NewHelper calibrates the side named by the request's target index; the
// other index must already have a curve in the source.
func (f *IRBasisSwapFamily) NewHelper(req HelperRequest) (curve.Helper, error) {
	if req.TargetIndex != f.Index1.Name && req.TargetIndex != f.Index2.Name {
		return nil, fmt.Errorf("%s: target index %q is not a leg of the basis swap", f.FamilyName, req.TargetIndex)
	}
	tenor, err := dates.ParseTerm(req.Specifics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	start, _ := spotAndMaturity(req.Source.PricingDate(), f.SettleDays, f.Calendar, f.Adjustment, tenor)
	leg1, err := buildLeg(start, tenor, legConvention{f.Frequency1, f.Calendar, f.Adjustment, f.Index1.DayCount, f.EndOfMonth})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	leg2, err := buildLeg(start, tenor, legConvention{f.Frequency2, f.Calendar, f.Adjustment, f.Index2.DayCount, f.EndOfMonth})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	disc, proj1, err := req.curves(f.Index1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	_, proj2, err := req.curves(f.Index2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	pillar := lastPay(leg1)
	if p := lastPay(leg2); p.After(pillar) {
		pillar = p
	}
	return &quoteHelper{
		pillar: pillar,
		quote:  req.Quote,
		implied: func(trial *curve.Curve) (float64, error) {
			d := pick(disc, trial)
			pv1 := floatingPV(d, pick(proj1, trial), leg1)
			pv2 := floatingPV(d, pick(proj2, trial), leg2)
			return (pv2 - pv1) / annuity(d, leg1), nil
		},
	}, nil
}
