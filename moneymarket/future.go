package moneymarket

import (
	"fmt"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// FuturePricer values a position in an overnight index future against the
// price it was traded or last settled at, TradeInfo.Price. The trade
// amount is the contract notional, so one price point is worth
// amount * months / 1200.
type FuturePricer struct {
	contract *instrument.Type
	family   *instrument.OIFutureFamily
	view     *market.View
	trade    pricer.TradeInfo

	// marketPrice is the exchange price; zero means use the model.
	marketPrice float64
}

var _ pricer.Pricer = (*FuturePricer)(nil)

// NewFuturePricer prices a contract type such as FUT-ICE-SR3-H24.
func NewFuturePricer(contract *instrument.Type, v *market.View, trade pricer.TradeInfo, marketPrice float64) (*FuturePricer, error) {
	f, ok := contract.Family.(*instrument.OIFutureFamily)
	if !ok {
		return nil, fmt.Errorf("NewFuturePricer: %s is not an overnight index future", contract.Name)
	}
	if trade.Price <= 0 {
		return nil, fmt.Errorf("NewFuturePricer: %s needs the traded price", contract.Name)
	}
	return &FuturePricer{contract: contract, family: f, view: v, trade: trade, marketPrice: marketPrice}, nil
}

// Name is the trade id when set, else the contract name.
func (p *FuturePricer) Name() string {
	if p.trade.TradeID != "" {
		return p.trade.TradeID
	}
	return p.contract.Name
}

func (p *FuturePricer) Contract() *instrument.Type  { return p.contract }
func (p *FuturePricer) Trade() pricer.TradeInfo     { return p.trade }
func (p *FuturePricer) Market() *market.View        { return p.view }
func (p *FuturePricer) Currency() currency.Currency { return p.family.Meta().Currency }

func (p *FuturePricer) WithMarket(v *market.View) (pricer.Pricer, error) {
	out := *p
	out.view = v
	return &out, nil
}

// Cashflows is empty: futures settle through daily margin.
func (p *FuturePricer) Cashflows() (pricer.Cashflows, error) { return pricer.Cashflows{}, nil }

// ModelPrice is 100 * (1 - rate) for the rate averaged or compounded over
// the contract period, using realized fixings for its elapsed part and
// the index projection curve for the rest.
func (p *FuturePricer) ModelPrice() (float64, error) {
	ix := p.family.Contract.Index()
	proj, err := p.view.IndexCurve(ix.Name)
	if err != nil {
		return 0, fmt.Errorf("future %s: %w", p.contract.Name, err)
	}
	h, err := p.family.NewHelper(instrument.HelperRequest{Source: p.view, Specifics: p.contract.Specifics})
	if err != nil {
		return 0, fmt.Errorf("future %s: %w", p.contract.Name, err)
	}
	return h.ImpliedQuote(proj)
}

func (p *FuturePricer) pointValue() float64 {
	return p.trade.Amount * float64(p.family.Contract.PeriodMonths()) / 1200
}

func (p *FuturePricer) valueAt(price float64) float64 {
	return p.trade.Direction() * (price - p.trade.Price) * p.pointValue()
}

func (p *FuturePricer) modelValue() (float64, error) {
	price, err := p.ModelPrice()
	if err != nil {
		return 0, err
	}
	return p.valueAt(price), nil
}

func (p *FuturePricer) marketValue() (float64, error) {
	if p.marketPrice > 0 {
		return p.valueAt(p.marketPrice), nil
	}
	return p.modelValue()
}

func (p *FuturePricer) Value(m pricer.Metric) (float64, error) {
	var (
		v   float64
		err error
	)
	switch m {
	case pricer.FuturesPrice:
		return p.ModelPrice()
	case pricer.ParRate:
		price, err := p.ModelPrice()
		if err != nil {
			return 0, err
		}
		return 1 - price/100, nil
	case pricer.NativeMarketValue:
		return p.marketValue()
	case pricer.NativeModelValue:
		return p.modelValue()
	case pricer.ReportingValue, pricer.ReportingMarketValue:
		v, err = p.marketValue()
	case pricer.ReportingModelValue:
		v, err = p.modelValue()
	default:
		return 0, pricer.Unsupported(p.Name(), m)
	}
	if err != nil {
		return 0, err
	}
	return pricer.ToReporting(p.view, p.Currency(), v)
}

func (p *FuturePricer) Values(m pricer.Metric) (currency.Amounts, error) {
	var (
		v   float64
		err error
	)
	switch m {
	case pricer.Value, pricer.MarketValue:
		v, err = p.marketValue()
	case pricer.ModelValue, pricer.RiskValue:
		v, err = p.modelValue()
	default:
		return nil, pricer.Unsupported(p.Name(), m)
	}
	if err != nil {
		return nil, err
	}
	return currency.Amounts{p.Currency(): v}, nil
}
