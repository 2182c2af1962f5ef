package pricer

import (
	"fmt"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/market"
)

// CashflowPricer values a fixed set of single-currency cash flows. The
// market price, when set, is the traded value of the whole set.
type CashflowPricer struct {
	name        string
	flows       Cashflows
	ccy         currency.Currency
	marketPrice float64
	csa         string
	view        *market.View
}

// NewCashflowPricer prices flows against v. A zero marketPrice makes the
// model value stand in for the market.
func NewCashflowPricer(name string, flows Cashflows, marketPrice float64, v *market.View) (*CashflowPricer, error) {
	if len(flows) == 0 {
		return nil, fmt.Errorf("NewCashflowPricer: %s has no cash flows", name)
	}
	ccy := flows[0].Currency
	for _, f := range flows[1:] {
		if f.Currency != ccy {
			return nil, fmt.Errorf("NewCashflowPricer: %s mixes %s and %s flows", name, ccy, f.Currency)
		}
	}
	return &CashflowPricer{name: name, flows: flows.Sorted(), ccy: ccy, marketPrice: marketPrice, view: v}, nil
}

// WithCSA discounts on the curve registered for the CSA id.
func (p *CashflowPricer) WithCSA(id string) *CashflowPricer {
	out := *p
	out.csa = id
	return &out
}

func (p *CashflowPricer) Name() string                { return p.name }
func (p *CashflowPricer) Market() *market.View        { return p.view }
func (p *CashflowPricer) Currency() currency.Currency { return p.ccy }

func (p *CashflowPricer) WithMarket(v *market.View) (Pricer, error) {
	out := *p
	out.view = v
	return &out, nil
}

// Cashflows returns the flows paid on or after the pricing date.
func (p *CashflowPricer) Cashflows() (Cashflows, error) {
	return p.flows.From(p.view.PricingDate()), nil
}

func (p *CashflowPricer) modelValue() (float64, error) {
	c, err := p.view.DiscountingCurve(p.ccy, p.csa)
	if err != nil {
		return 0, err
	}
	pv := 0.0
	for _, f := range p.flows.From(p.view.PricingDate()) {
		pv += f.Amount * c.DiscountFactor(f.Date)
	}
	return pv, nil
}

func (p *CashflowPricer) marketValue() (float64, error) {
	if p.marketPrice != 0 {
		return p.marketPrice, nil
	}
	return p.modelValue()
}

// timedFlows measures time on ACT/365F from the pricing date.
func (p *CashflowPricer) timedFlows() []TimedFlow {
	pricing := p.view.PricingDate()
	var out []TimedFlow
	for _, f := range p.flows.From(pricing) {
		out = append(out, TimedFlow{T: dates.YearFraction(pricing, f.Date, dates.ACT365F), Amount: f.Amount})
	}
	return out
}

func (p *CashflowPricer) irr() (float64, error) {
	mv, err := p.marketValue()
	if err != nil {
		return 0, err
	}
	return SolveYield(p.timedFlows(), mv, int(dates.Annual))
}

func (p *CashflowPricer) Value(m Metric) (float64, error) {
	switch m {
	case NativeMarketValue:
		return p.marketValue()
	case NativeModelValue:
		return p.modelValue()
	case ReportingValue, ReportingMarketValue:
		mv, err := p.marketValue()
		if err != nil {
			return 0, err
		}
		return ToReporting(p.view, p.ccy, mv)
	case ReportingModelValue:
		mv, err := p.modelValue()
		if err != nil {
			return 0, err
		}
		return ToReporting(p.view, p.ccy, mv)
	case IRR, Yield:
		return p.irr()
	case Duration, DurationMacaulay, Convexity:
		y, err := p.irr()
		if err != nil {
			return 0, err
		}
		r, err := YieldRisk(p.timedFlows(), y, int(dates.Annual))
		if err != nil {
			return 0, err
		}
		switch m {
		case Duration:
			return r.Modified, nil
		case DurationMacaulay:
			return r.Macaulay, nil
		}
		return r.Convexity, nil
	case ZSpread:
		c, err := p.view.DiscountingCurve(p.ccy, p.csa)
		if err != nil {
			return 0, err
		}
		mv, err := p.marketValue()
		if err != nil {
			return 0, err
		}
		return SolveZSpread(c, p.flows.From(p.view.PricingDate()), mv)
	}
	return 0, Unsupported(p.name, m)
}

func (p *CashflowPricer) Values(m Metric) (currency.Amounts, error) {
	var (
		v   float64
		err error
	)
	switch m {
	case Value, MarketValue:
		v, err = p.marketValue()
	case ModelValue, RiskValue:
		v, err = p.modelValue()
	default:
		return nil, Unsupported(p.name, m)
	}
	if err != nil {
		return nil, err
	}
	return currency.Amounts{p.ccy: v}, nil
}
