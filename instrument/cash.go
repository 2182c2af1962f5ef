package instrument

import (
	"fmt"
	"math"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// CashDepoFamily is a simple-interest money market deposit.
type CashDepoFamily struct {
	BaseFamily
	SettleDays int
	Adjustment calendar.BusinessDayAdjustment
	DayCount   dates.DayCount
	Calendar   calendar.CalendarID
}

// NewCashDepoFamily uses ACT/365F, Following and the null calendar.
func NewCashDepoFamily(name string, ccy currency.Currency, settleDays int) *CashDepoFamily {
	return &CashDepoFamily{
		BaseFamily: BaseFamily{FamilyName: name, FamilyMeta: Meta{Currency: ccy, RiskType: RiskRate, AssetClass: AssetRate}},
		SettleDays: settleDays,
		Adjustment: calendar.Following,
		DayCount:   dates.ACT365F,
		Calendar:   calendar.NULL,
	}
}

// SpotAndMaturity are the value and maturity dates of a tenor.
func (f *CashDepoFamily) SpotAndMaturity(pricing time.Time, tenor dates.Term) (time.Time, time.Time) {
	return spotAndMaturity(pricing, f.SettleDays, f.Calendar, f.Adjustment, tenor)
}

// NewHelper implies the simple deposit rate between spot and maturity.
func (f *CashDepoFamily) NewHelper(req HelperRequest) (curve.Helper, error) {
	tenor, err := dates.ParseTerm(req.Specifics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	start, end := f.SpotAndMaturity(req.Source.PricingDate(), tenor)
	tau := dates.YearFraction(start, end, f.DayCount)
	if tau <= 0 {
		return nil, fmt.Errorf("%s: empty accrual period for %s", f.FamilyName, req.Specifics)
	}
	disc, _, err := req.curves(nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	return &quoteHelper{
		pillar: end,
		quote:  req.Quote,
		implied: func(trial *curve.Curve) (float64, error) {
			c := pick(disc, trial)
			return (c.DiscountFactor(start)/c.DiscountFactor(end) - 1) / tau, nil
		},
	}, nil
}

// ZeroCouponBondFamily is a zero coupon instrument quoted as a yield, e.g.
// T-Bills, or a plain zero rate curve.
type ZeroCouponBondFamily struct {
	BaseFamily
	SettleDays        int
	Adjustment        calendar.BusinessDayAdjustment
	YieldDayCount     dates.DayCount
	CompoundFrequency dates.Frequency
	Calendar          calendar.CalendarID
}

// NewZeroCouponBondFamily quotes annually compounded ACT/365F yields with
// unadjusted maturities.
func NewZeroCouponBondFamily(name string, ccy currency.Currency, settleDays int) *ZeroCouponBondFamily {
	return &ZeroCouponBondFamily{
		BaseFamily:        BaseFamily{FamilyName: name, FamilyMeta: Meta{Currency: ccy, RiskType: RiskRate, AssetClass: AssetRate}},
		SettleDays:        settleDays,
		Adjustment:        calendar.Unadjusted,
		YieldDayCount:     dates.ACT365F,
		CompoundFrequency: dates.Annual,
		Calendar:          calendar.NULL,
	}
}

func (f *ZeroCouponBondFamily) QuoteConvention() QuoteConvention { return QuoteYield }

// NewHelper implies the compounded yield from settlement to maturity.
func (f *ZeroCouponBondFamily) NewHelper(req HelperRequest) (curve.Helper, error) {
	tenor, err := dates.ParseTerm(req.Specifics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	pricing := req.Source.PricingDate()
	settle := calendar.AddBusinessDays(f.Calendar, pricing, f.SettleDays)
	maturity := calendar.AdjustWith(f.Calendar, tenor.AddTo(pricing, 1), f.Adjustment)
	tau := dates.YearFraction(settle, maturity, f.YieldDayCount)
	if tau <= 0 {
		return nil, fmt.Errorf("%s: maturity %s not after settlement", f.FamilyName, dates.Format(maturity))
	}
	n := float64(f.CompoundFrequency)
	if n == 0 {
		n = 1
	}
	disc, _, err := req.curves(nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	return &quoteHelper{
		pillar: maturity,
		quote:  req.Quote,
		implied: func(trial *curve.Curve) (float64, error) {
			c := pick(disc, trial)
			growth := c.DiscountFactor(settle) / c.DiscountFactor(maturity)
			return n * (math.Pow(growth, 1/(n*tau)) - 1), nil
		},
	}, nil
}
