package instrument

import (
	"fmt"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

// IRSwapFamily is a fixed-for-floating swap on one index. Overnight
// indices give OIS (compounded float leg), term indices give IBOR swaps.
type IRSwapFamily struct {
	BaseFamily
	Index           *index.RateIndex
	FixedFrequency  dates.Frequency
	FixedDayCount   dates.DayCount
	SettleDays      int
	FixedAdjustment calendar.BusinessDayAdjustment
	Calendar        calendar.CalendarID
	EndOfMonth      bool
}

// NewIRSwapFamily fills unset conventions from the index: day count,
// calendar, and settlement delay when SettleDays is negative. Frequency
// defaults to annual.
func NewIRSwapFamily(name string, ix *index.RateIndex, f IRSwapFamily) *IRSwapFamily {
	f.BaseFamily = BaseFamily{
		FamilyName: name,
		FamilyMeta: Meta{Currency: ix.Currency, RiskType: RiskRate, AssetClass: AssetRate},
	}
	f.Index = ix
	if f.FixedFrequency == dates.Once {
		f.FixedFrequency = dates.Annual
	}
	if f.FixedDayCount == "" {
		f.FixedDayCount = ix.DayCount
	}
	if f.SettleDays < 0 {
		f.SettleDays = ix.SettleDays
	}
	if f.FixedAdjustment == "" {
		f.FixedAdjustment = calendar.ModifiedFollowing
	}
	if f.Calendar == "" {
		f.Calendar = ix.Calendar
	}
	return &f
}

func (f *IRSwapFamily) UnderlyingIndices() []*index.RateIndex { return []*index.RateIndex{f.Index} }

// floatFrequency is the float leg frequency: the index tenor for term
// indices and the fixed leg frequency for overnight indices.
func (f *IRSwapFamily) floatFrequency() dates.Frequency {
	if f.Index.IsOvernight() {
		return f.FixedFrequency
	}
	return f.Index.Frequency()
}

// NewHelper returns a par swap rate helper. The implied quote is the float
// leg PV divided by the fixed leg annuity.
func (f *IRSwapFamily) NewHelper(req HelperRequest) (curve.Helper, error) {
	tenor, err := dates.ParseTerm(req.Specifics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	start, _ := spotAndMaturity(req.Source.PricingDate(), f.SettleDays, f.Calendar, f.FixedAdjustment, tenor)
	fixed, err := buildLeg(start, tenor, legConvention{f.FixedFrequency, f.Calendar, f.FixedAdjustment, f.FixedDayCount, f.EndOfMonth})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	float, err := buildLeg(start, tenor, legConvention{f.floatFrequency(), f.Calendar, f.FixedAdjustment, f.Index.DayCount, f.EndOfMonth})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	disc, proj, err := req.curves(f.Index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	pillar := lastPay(fixed)
	if p := lastPay(float); p.After(pillar) {
		pillar = p
	}
	return &quoteHelper{
		pillar: pillar,
		quote:  req.Quote,
		implied: func(trial *curve.Curve) (float64, error) {
			d, p := pick(disc, trial), pick(proj, trial)
			return floatingPV(d, p, float) / annuity(d, fixed), nil
		},
	}, nil
}
