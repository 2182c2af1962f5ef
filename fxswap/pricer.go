package fxswap

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// Pricer values an FXSwap. Receive means receiving base on the near leg
// and paying it back on the far leg.
type Pricer struct {
	swap  *FXSwap
	view  *market.View
	trade pricer.TradeInfo

	// Discounting ids per currency; empty means the currency code.
	baseCSA, quoteCSA string
}

var _ pricer.Pricer = (*Pricer)(nil)

// NewPricer checks the swap.
func NewPricer(s *FXSwap, v *market.View, trade pricer.TradeInfo) (*Pricer, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("NewPricer: %w", err)
	}
	return &Pricer{swap: s, view: v, trade: trade}, nil
}

// WithCSA discounts the base and quote flows on the curves registered
// under the given ids, such as a quote currency curve bootstrapped
// against base collateral. An empty id keeps the currency curve.
func (p *Pricer) WithCSA(baseID, quoteID string) *Pricer {
	out := *p
	out.baseCSA, out.quoteCSA = baseID, quoteID
	return &out
}

// Name is the trade id when set, else the swap name.
func (p *Pricer) Name() string {
	if p.trade.TradeID != "" {
		return p.trade.TradeID
	}
	return p.swap.Name
}

func (p *Pricer) Swap() *FXSwap               { return p.swap }
func (p *Pricer) Trade() pricer.TradeInfo     { return p.trade }
func (p *Pricer) Market() *market.View        { return p.view }
func (p *Pricer) Currency() currency.Currency { return p.swap.Base }

func (p *Pricer) WithMarket(v *market.View) (pricer.Pricer, error) {
	out := *p
	out.view = v
	return &out, nil
}

func (p *Pricer) curves() (base, quote *curve.Curve, err error) {
	base, err = p.view.DiscountingCurve(p.swap.Base, p.baseCSA)
	if err != nil {
		return nil, nil, fmt.Errorf("fxswap %s: %w", p.swap.Name, err)
	}
	quote, err = p.view.DiscountingCurve(p.swap.Quote, p.quoteCSA)
	if err != nil {
		return nil, nil, fmt.Errorf("fxswap %s: %w", p.swap.Name, err)
	}
	return base, quote, nil
}

// Cashflows lists the exchanges still to settle, signed for the holder.
func (p *Pricer) Cashflows() (pricer.Cashflows, error) {
	s := p.swap
	n, sign := p.trade.Amount, p.trade.Direction()
	var out pricer.Cashflows
	if !s.ForwardOnly {
		out = append(out,
			pricer.Cashflow{Currency: s.Base, Date: s.Start, Amount: sign * n, Notional: n, Kind: pricer.KindExchange},
			pricer.Cashflow{Currency: s.Quote, Date: s.Start, Amount: -sign * n * s.BaseFX, Notional: n, Kind: pricer.KindExchange, Rate: s.BaseFX},
		)
	}
	out = append(out,
		pricer.Cashflow{Currency: s.Base, Date: s.Maturity, Amount: -sign * n, Notional: n, Kind: pricer.KindExchange},
		pricer.Cashflow{Currency: s.Quote, Date: s.Maturity, Amount: sign * n * s.FarRate(), Notional: n, Kind: pricer.KindExchange, Rate: s.FarRate()},
	)
	return out.From(p.view.PricingDate()), nil
}

// PV discounts every remaining flow in its own currency.
func (p *Pricer) PV() (currency.Amounts, error) {
	base, quote, err := p.curves()
	if err != nil {
		return nil, err
	}
	flows, err := p.Cashflows()
	if err != nil {
		return nil, err
	}
	out := currency.Amounts{p.swap.Base: 0, p.swap.Quote: 0}
	for _, f := range flows {
		c := base
		if f.Currency == p.swap.Quote {
			c = quote
		}
		out[f.Currency] += f.Amount * c.DiscountFactor(f.Date)
	}
	return out, nil
}

// FairForwardPoints are the points that make the far leg at market given
// the near leg at BaseFX, from the growth of both discounting curves
// between the near date, or today once it has passed, and maturity.
func (p *Pricer) FairForwardPoints() (float64, error) {
	base, quote, err := p.curves()
	if err != nil {
		return 0, err
	}
	start := p.swap.Start
	if pricing := p.view.PricingDate(); start.Before(pricing) {
		start = pricing
	}
	return forwardPoints(p.swap.BaseFX, base, quote, start, p.swap.Maturity), nil
}

func forwardPoints(rate float64, base, quote *curve.Curve, start, end time.Time) float64 {
	growthBase := base.DiscountFactor(end) / base.DiscountFactor(start)
	growthQuote := quote.DiscountFactor(end) / quote.DiscountFactor(start)
	return rate * (growthBase/growthQuote - 1)
}

func (p *Pricer) valueIn(ccy currency.Currency) (float64, error) {
	pv, err := p.PV()
	if err != nil {
		return 0, err
	}
	v, err := pricer.ConvertToReporting(pv, p.view, ccy)
	if err != nil {
		return 0, fmt.Errorf("fxswap %s: %w", p.swap.Name, err)
	}
	return v, nil
}

// Value reports NATIVE values in the base currency, converted at spot.
func (p *Pricer) Value(m pricer.Metric) (float64, error) {
	switch m {
	case pricer.NativeMarketValue, pricer.NativeModelValue:
		return p.valueIn(p.swap.Base)
	case pricer.ReportingValue, pricer.ReportingMarketValue, pricer.ReportingModelValue:
		return p.valueIn(pricer.GetSettings().ReportingCurrency)
	case pricer.ForwardPoints:
		return p.FairForwardPoints()
	}
	return 0, pricer.Unsupported(p.Name(), m)
}

func (p *Pricer) Values(m pricer.Metric) (currency.Amounts, error) {
	switch m {
	case pricer.Value, pricer.MarketValue, pricer.ModelValue, pricer.RiskValue:
		pv, err := p.PV()
		if err != nil {
			return nil, err
		}
		zap.L().Named("fxswap").Debug("valued",
			zap.String("swap", p.swap.Name),
			zap.Float64(string(p.swap.Base), pv[p.swap.Base]),
			zap.Float64(string(p.swap.Quote), pv[p.swap.Quote]))
		return pv, nil
	}
	return nil, pricer.Unsupported(p.Name(), m)
}
