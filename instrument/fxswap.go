package instrument

import (
	"errors"
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// ErrNoSpotFX is returned when an FX helper's source cannot quote spot.
var ErrNoSpotFX = errors.New("curve source has no spot FX")

// FXSwapFamily is an FX swap quoted in forward points: the far leg rate
// less the spot rate, in units of the quote currency per base unit.
//
// It calibrates the discounting curve of one currency against collateral
// posted in the other, so the helper needs the collateral curve as its
// DiscountingID and the other currency as the target.
type FXSwapFamily struct {
	BaseFamily
	Base, Quote currency.Currency
	SettleDays  int
	Adjustment  calendar.BusinessDayAdjustment
	Calendar    calendar.CalendarID
}

// NewFXSwapFamily names the family FXS-<BASE><QUOTE>, with T+2 spot,
// Modified Following and the given calendar.
func NewFXSwapFamily(base, quote currency.Currency, cal calendar.CalendarID) *FXSwapFamily {
	return &FXSwapFamily{
		BaseFamily: BaseFamily{
			FamilyName: "FXS-" + string(base) + string(quote),
			FamilyMeta: Meta{Currency: base, RiskType: RiskFX, AssetClass: AssetFX},
		},
		Base:       base,
		Quote:      quote,
		SettleDays: 2,
		Adjustment: calendar.ModifiedFollowing,
		Calendar:   cal,
	}
}

func (f *FXSwapFamily) Currencies() (base, quote currency.Currency) { return f.Base, f.Quote }

// QuoteConvention of forward points.
func (f *FXSwapFamily) QuoteConvention() QuoteConvention { return QuoteForwardPoints }

// SpotAndMaturity are the near and far value dates of a tenor.
func (f *FXSwapFamily) SpotAndMaturity(pricing time.Time, tenor dates.Term) (time.Time, time.Time) {
	return spotAndMaturity(pricing, f.SettleDays, f.Calendar, f.Adjustment, tenor)
}

// NewHelper implies forward points from spot and both discounting curves:
// F = S * (DF_base(T)/DF_base(spot)) / (DF_quote(T)/DF_quote(spot)).
func (f *FXSwapFamily) NewHelper(req HelperRequest) (curve.Helper, error) {
	tenor, err := dates.ParseTerm(req.Specifics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	var baseIsTarget bool
	switch req.TargetCurrency {
	case f.Base:
		baseIsTarget = true
	case f.Quote:
	default:
		return nil, fmt.Errorf("%s: target currency %q is neither %s nor %s", f.FamilyName, req.TargetCurrency, f.Base, f.Quote)
	}
	if req.DiscountingID == "" {
		return nil, fmt.Errorf("%s: a collateral discounting curve is required", f.FamilyName)
	}
	fx, ok := req.Source.(FXSource)
	if !ok {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, ErrNoSpotFX)
	}
	spot, err := fx.SpotFX(f.Base, f.Quote)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	collateral, _, err := req.curves(nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	start, end := f.SpotAndMaturity(req.Source.PricingDate(), tenor)
	return &quoteHelper{
		pillar: end,
		quote:  req.Quote,
		implied: func(trial *curve.Curve) (float64, error) {
			base, quote := collateral, trial
			if baseIsTarget {
				base, quote = trial, collateral
			}
			growthBase := base.DiscountFactor(end) / base.DiscountFactor(start)
			growthQuote := quote.DiscountFactor(end) / quote.DiscountFactor(start)
			return spot * (growthBase/growthQuote - 1), nil
		},
	}, nil
}
