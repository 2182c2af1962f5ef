// Package swap prices vanilla interest rate swaps, OIS and IBOR, off the
// curves and fixings of a market view.
package swap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// Pricer values an InterestRateSwap. Receive means receive fixed; the
// trade amount is the notional.
type Pricer struct {
	swap  *InterestRateSwap
	view  *market.View
	trade pricer.TradeInfo

	fixed, float []SchedulePeriod
}

var _ pricer.Pricer = (*Pricer)(nil)

// NewPricer checks the swap and builds both schedules.
func NewPricer(s *InterestRateSwap, v *market.View, trade pricer.TradeInfo) (*Pricer, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("NewPricer: %w", err)
	}
	fixed, err := GenerateSchedule(s, s.Frequency, s.FixedDayCount)
	if err != nil {
		return nil, fmt.Errorf("NewPricer: fixed leg: %w", err)
	}
	float, err := GenerateSchedule(s, s.floatFrequency(), s.Index.DayCount)
	if err != nil {
		return nil, fmt.Errorf("NewPricer: float leg: %w", err)
	}
	return &Pricer{swap: s, view: v, trade: trade, fixed: fixed, float: float}, nil
}

// Name is the trade id when set, else the swap name.
func (p *Pricer) Name() string {
	if p.trade.TradeID != "" {
		return p.trade.TradeID
	}
	return p.swap.Name
}

func (p *Pricer) Swap() *InterestRateSwap      { return p.swap }
func (p *Pricer) Trade() pricer.TradeInfo      { return p.trade }
func (p *Pricer) Market() *market.View         { return p.view }
func (p *Pricer) Currency() currency.Currency { return p.swap.Index.Currency }

func (p *Pricer) WithMarket(v *market.View) (pricer.Pricer, error) {
	out := *p
	out.view = v
	return &out, nil
}

func (p *Pricer) curves() (disc, proj *curve.Curve, err error) {
	disc, err = p.view.DiscountingCurve(p.Currency(), p.trade.CSAID)
	if err != nil {
		return nil, nil, fmt.Errorf("swap %s: %w", p.swap.Name, err)
	}
	proj, err = p.view.IndexCurve(p.swap.Index.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("swap %s: %w", p.swap.Name, err)
	}
	return disc, proj, nil
}

// legFlows returns the unsigned coupon amounts of both legs, per unit of
// notional, with the float rates used.
func (p *Pricer) legFlows(proj *curve.Curve) (fixed, float []float64, rates []float64, err error) {
	pricing := p.view.PricingDate()
	fixed = make([]float64, len(p.fixed))
	for i, per := range p.fixed {
		fixed[i] = p.swap.FixedCoupon * per.Accrual
	}
	float = make([]float64, len(p.float))
	rates = make([]float64, len(p.float))
	for i, per := range p.float {
		if per.PayDate.Before(pricing) {
			continue
		}
		r, err := floatRate(p.swap.Index, per, proj, pricing, p.view)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("swap %s: %w", p.swap.Name, err)
		}
		rates[i] = r
		float[i] = (r + p.swap.FloatSpread) * per.Accrual
	}
	return fixed, float, rates, nil
}

// PVByLeg values both legs. Flows paid on the pricing date are settled
// and excluded.
func (p *Pricer) PVByLeg() (PV, error) {
	pv, _, _, err := p.valuation()
	return pv, err
}

// valuation returns leg PVs with the fixed and float annuities.
func (p *Pricer) valuation() (pv PV, fixedAnnuity, floatAnnuity float64, err error) {
	disc, proj, err := p.curves()
	if err != nil {
		return PV{}, 0, 0, err
	}
	fixed, float, _, err := p.legFlows(proj)
	if err != nil {
		return PV{}, 0, 0, err
	}
	pricing := p.view.PricingDate()
	n := p.trade.Amount
	for i, per := range p.fixed {
		if !per.PayDate.After(pricing) {
			continue
		}
		df := disc.DiscountFactor(per.PayDate)
		pv.FixedLegPV += n * fixed[i] * df
		fixedAnnuity += n * per.Accrual * df
	}
	for i, per := range p.float {
		if !per.PayDate.After(pricing) {
			continue
		}
		df := disc.DiscountFactor(per.PayDate)
		pv.FloatLegPV += n * float[i] * df
		floatAnnuity += n * per.Accrual * df
	}
	pv.TotalPV = p.trade.Direction() * (pv.FixedLegPV - pv.FloatLegPV)
	return pv, fixedAnnuity, floatAnnuity, nil
}

// ParRate is the fixed coupon that values the swap at zero.
func (p *Pricer) ParRate() (float64, error) {
	pv, fixedAnnuity, _, err := p.valuation()
	if err != nil {
		return 0, err
	}
	if fixedAnnuity == 0 {
		return 0, fmt.Errorf("ParRate: %s has no remaining fixed flows", p.swap.Name)
	}
	return pv.FloatLegPV / fixedAnnuity, nil
}

// ParSpread is the float spread that values the swap at zero.
func (p *Pricer) ParSpread() (float64, error) {
	pv, _, floatAnnuity, err := p.valuation()
	if err != nil {
		return 0, err
	}
	if floatAnnuity == 0 {
		return 0, fmt.Errorf("ParSpread: %s has no remaining float flows", p.swap.Name)
	}
	return p.swap.FloatSpread + (pv.FixedLegPV-pv.FloatLegPV)/floatAnnuity, nil
}

func (p *Pricer) npv() (float64, error) {
	pv, err := p.PVByLeg()
	if err != nil {
		return 0, err
	}
	return pv.TotalPV, nil
}

func (p *Pricer) Value(m pricer.Metric) (float64, error) {
	switch m {
	case pricer.NativeMarketValue, pricer.NativeModelValue:
		return p.npv()
	case pricer.ReportingValue, pricer.ReportingMarketValue, pricer.ReportingModelValue:
		v, err := p.npv()
		if err != nil {
			return 0, err
		}
		return pricer.ToReporting(p.view, p.Currency(), v)
	case pricer.ParRate:
		return p.ParRate()
	case pricer.ParSpread:
		return p.ParSpread()
	}
	return 0, pricer.Unsupported(p.Name(), m)
}

func (p *Pricer) Values(m pricer.Metric) (currency.Amounts, error) {
	switch m {
	case pricer.Value, pricer.MarketValue, pricer.ModelValue, pricer.RiskValue:
		v, err := p.npv()
		if err != nil {
			return nil, err
		}
		return currency.Amounts{p.Currency(): v}, nil
	}
	return nil, pricer.Unsupported(p.Name(), m)
}

// Cashflows lists both legs from the pricing date, signed for the holder:
// fixed coupons are positive when receiving.
func (p *Pricer) Cashflows() (pricer.Cashflows, error) {
	_, proj, err := p.curves()
	if err != nil {
		return nil, err
	}
	fixed, float, rates, err := p.legFlows(proj)
	if err != nil {
		return nil, err
	}
	pricing := p.view.PricingDate()
	n, sign := p.trade.Amount, p.trade.Direction()
	ccy := p.Currency()
	var out pricer.Cashflows
	for i, per := range p.fixed {
		if per.PayDate.Before(pricing) {
			continue
		}
		out = append(out, pricer.Cashflow{
			Currency: ccy, Date: per.PayDate, Amount: sign * n * fixed[i], Notional: n,
			Kind: pricer.KindFixed, Rate: p.swap.FixedCoupon,
			AccrualStart: per.StartDate, AccrualEnd: per.EndDate, AccrualFraction: per.Accrual,
		})
	}
	for i, per := range p.float {
		if per.PayDate.Before(pricing) {
			continue
		}
		out = append(out, pricer.Cashflow{
			Currency: ccy, Date: per.PayDate, Amount: -sign * n * float[i], Notional: n,
			Kind: pricer.KindFloating, Index: p.swap.Index.Name, Rate: rates[i] + p.swap.FloatSpread,
			AccrualStart: per.StartDate, AccrualEnd: per.EndDate, AccrualFraction: per.Accrual,
		})
	}
	zap.L().Named("swap").Debug("cashflows", zap.String("swap", p.swap.Name), zap.Int("count", len(out)))
	return out, nil
}
