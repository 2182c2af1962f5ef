package bond

import (
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// Pricer values a bond position. The quote is a yield, clean price or
// dirty price per 100 as of the settlement date implied by the pricing
// date. Market values come from the quote, model values from discounting
// on the currency (or CSA) curve.
type Pricer struct {
	bond       *Bond
	view       *market.View
	quote      float64
	convention instrument.QuoteConvention
	trade      pricer.TradeInfo

	flows   []Cashflow
	settle  time.Time
	accrued float64
	dirty   float64
}

var _ pricer.Pricer = (*Pricer)(nil)

// NewPricer prices b against v from a quote in the given convention.
func NewPricer(b *Bond, v *market.View, quote float64, convention instrument.QuoteConvention, trade pricer.TradeInfo) (*Pricer, error) {
	flows, err := b.Cashflows()
	if err != nil {
		return nil, fmt.Errorf("NewPricer: %w", err)
	}
	p := &Pricer{bond: b, quote: quote, convention: convention, trade: trade, flows: flows}
	if err := p.setMarket(v); err != nil {
		return nil, fmt.Errorf("NewPricer: %w", err)
	}
	return p, nil
}

func (p *Pricer) setMarket(v *market.View) error {
	p.view = v
	p.settle = p.bond.Type.SettlementDate(v.PricingDate())
	p.accrued = accrued(p.bond, p.flows, p.settle)
	switch p.convention {
	case instrument.QuoteYield:
		dirty, _, _ := pricer.PriceAtYield(p.yieldFlows(), p.quote, p.freq())
		p.dirty = dirty
	case instrument.QuoteCleanPrice:
		p.dirty = p.quote + p.accrued
	case instrument.QuoteDirtyPrice:
		p.dirty = p.quote
	default:
		return fmt.Errorf("bond %s: unsupported quote convention %q", p.bond.Name, p.convention)
	}
	return nil
}

func (p *Pricer) Name() string                { return p.bond.Name }
func (p *Pricer) Bond() *Bond                 { return p.bond }
func (p *Pricer) Trade() pricer.TradeInfo     { return p.trade }
func (p *Pricer) Market() *market.View        { return p.view }
func (p *Pricer) Currency() currency.Currency { return p.bond.Type.Currency }

func (p *Pricer) WithMarket(v *market.View) (pricer.Pricer, error) {
	out := *p
	if err := out.setMarket(v); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Pricer) freq() int { return int(p.bond.Type.Frequency) }

func (p *Pricer) yieldFlows() []pricer.TimedFlow {
	return yieldFlows(p.flows, p.settle, p.bond.Type)
}

// multiplier turns per-100 prices into position values.
func (p *Pricer) multiplier() float64 {
	return p.trade.Amount * p.trade.Direction() / 100
}

// SettlementDate of a trade done on the pricing date.
func (p *Pricer) SettlementDate() time.Time { return p.settle }

// AccruedInterest at settlement per 100.
func (p *Pricer) AccruedInterest() float64 { return p.accrued }

// DirtyPrice from the market quote.
func (p *Pricer) DirtyPrice() float64 { return p.dirty }

// CleanPrice from the market quote.
func (p *Pricer) CleanPrice() float64 { return p.dirty - p.accrued }

func (p *Pricer) discountCurve() (*curve.Curve, error) {
	c, err := p.view.DiscountingCurve(p.Currency(), p.trade.CSAID)
	if err != nil {
		return nil, fmt.Errorf("bond %s: %w", p.bond.Name, err)
	}
	return c, nil
}

// DirtyPriceModel discounts the flows after settlement to settlement.
func (p *Pricer) DirtyPriceModel() (float64, error) {
	c, err := p.discountCurve()
	if err != nil {
		return 0, err
	}
	pv := 0.0
	for _, cf := range p.flows {
		if cf.Date.After(p.settle) {
			pv += cf.Amount() * c.DiscountFactor(cf.Date)
		}
	}
	return pv / c.DiscountFactor(p.settle), nil
}

// CleanPriceModel is DirtyPriceModel less accrued interest.
func (p *Pricer) CleanPriceModel() (float64, error) {
	d, err := p.DirtyPriceModel()
	if err != nil {
		return 0, err
	}
	return d - p.accrued, nil
}

// MarketValue of the position from the quote.
func (p *Pricer) MarketValue() float64 { return p.dirty * p.multiplier() }

// ModelValue discounts the flows a buyer settling today receives to the
// pricing date. Flows paid on or before settlement go to the seller.
func (p *Pricer) ModelValue() (float64, error) {
	c, err := p.discountCurve()
	if err != nil {
		return 0, err
	}
	pv := 0.0
	for _, cf := range p.flows {
		if cf.Date.After(p.settle) {
			pv += cf.Amount() * c.DiscountFactor(cf.Date)
		}
	}
	return pv * p.multiplier(), nil
}

// PriceToYield converts a clean price to the standard yield, compounded
// at the bond frequency on the bond day count.
func (p *Pricer) PriceToYield(clean float64) (float64, error) {
	return pricer.SolveYield(p.yieldFlows(), clean+p.accrued, p.freq())
}

// YieldToPrice converts a standard yield to a clean price.
func (p *Pricer) YieldToPrice(y float64) float64 {
	dirty, _, _ := pricer.PriceAtYield(p.yieldFlows(), y, p.freq())
	return dirty - p.accrued
}

// StandardYield of the market quote.
func (p *Pricer) StandardYield() (float64, error) {
	if p.convention == instrument.QuoteYield {
		return p.quote, nil
	}
	return p.PriceToYield(p.CleanPrice())
}

// IRR of the market quote on ACT/365F with annual compounding.
func (p *Pricer) IRR() (float64, error) {
	return pricer.SolveYield(irrFlows(p.flows, p.settle), p.dirty, 1)
}

// YieldRisk returns durations and convexity at the standard yield.
func (p *Pricer) YieldRisk() (pricer.Risk, error) {
	y, err := p.StandardYield()
	if err != nil {
		return pricer.Risk{}, err
	}
	return pricer.YieldRisk(p.yieldFlows(), y, p.freq())
}

// ZSpread is the continuous spread over the discount curve that prices
// the flows after settlement at the market dirty price.
func (p *Pricer) ZSpread() (float64, error) {
	c, err := p.discountCurve()
	if err != nil {
		return 0, err
	}
	var flows pricer.Cashflows
	for _, cf := range p.flows {
		if cf.Date.After(p.settle) && cf.Amount() != 0 {
			flows = append(flows, pricer.Cashflow{Currency: p.Currency(), Date: cf.Date, Amount: cf.Amount()})
		}
	}
	return pricer.SolveZSpread(c, flows, p.dirty*c.DiscountFactor(p.settle))
}

// AssetSwapSpread is the par asset swap spread over the type's swap index.
func (p *Pricer) AssetSwapSpread() (float64, error) {
	ix := p.bond.Type.SwapIndex
	if ix == nil {
		return 0, pricer.Unsupported(p.Name(), pricer.AssetSwapSpread)
	}
	c, err := p.discountCurve()
	if err != nil {
		return 0, err
	}
	res, err := ComputeASWSpread(ASWInput{
		SettlementDate: p.settle,
		DirtyPrice:     p.dirty,
		Cashflows:      p.flows,
		FloatIndex:     ix,
		DiscountCurve:  c,
	})
	if err != nil {
		return 0, err
	}
	return res.Spread, nil
}

func (p *Pricer) Value(m pricer.Metric) (float64, error) {
	switch m {
	case pricer.NativeMarketValue:
		return p.MarketValue(), nil
	case pricer.NativeModelValue:
		return p.ModelValue()
	case pricer.ReportingValue, pricer.ReportingMarketValue:
		return pricer.ToReporting(p.view, p.Currency(), p.MarketValue())
	case pricer.ReportingModelValue:
		v, err := p.ModelValue()
		if err != nil {
			return 0, err
		}
		return pricer.ToReporting(p.view, p.Currency(), v)
	case pricer.IRR:
		return p.IRR()
	case pricer.Yield:
		return p.StandardYield()
	case pricer.Duration, pricer.DurationMacaulay, pricer.Convexity:
		r, err := p.YieldRisk()
		if err != nil {
			return 0, err
		}
		switch m {
		case pricer.Duration:
			return r.Modified, nil
		case pricer.DurationMacaulay:
			return r.Macaulay, nil
		}
		return r.Convexity, nil
	case pricer.ZSpread:
		return p.ZSpread()
	case pricer.AssetSwapSpread:
		return p.AssetSwapSpread()
	}
	return 0, pricer.Unsupported(p.Name(), m)
}

func (p *Pricer) Values(m pricer.Metric) (currency.Amounts, error) {
	switch m {
	case pricer.Value, pricer.MarketValue:
		return currency.Amounts{p.Currency(): p.MarketValue()}, nil
	case pricer.ModelValue, pricer.RiskValue:
		v, err := p.ModelValue()
		if err != nil {
			return nil, err
		}
		return currency.Amounts{p.Currency(): v}, nil
	}
	return nil, pricer.Unsupported(p.Name(), m)
}

// Cashflows lists coupons and redemption paid on or after the pricing
// date, scaled to the position.
func (p *Pricer) Cashflows() (pricer.Cashflows, error) {
	pricing := p.view.PricingDate()
	mult := p.multiplier()
	var out pricer.Cashflows
	for _, cf := range p.flows {
		if cf.Date.Before(pricing) || cf.Amount() == 0 {
			continue
		}
		flow := pricer.Cashflow{
			Currency: p.Currency(),
			Date:     cf.Date,
			Amount:   cf.Amount() * mult,
			Notional: p.trade.Amount,
		}
		if cf.Principal != 0 {
			flow.Kind = pricer.KindRedemption
		} else {
			flow.Kind = pricer.KindFixed
			flow.Rate = *p.bond.Coupon
			flow.AccrualStart, flow.AccrualEnd = cf.AccrualStart, cf.AccrualEnd
		}
		out = append(out, flow)
	}
	return out, nil
}
