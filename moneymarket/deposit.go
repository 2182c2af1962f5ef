// Package moneymarket prices short-dated rate products: simple-interest
// cash deposits and overnight index futures.
package moneymarket

import (
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// Deposit lends the notional on Start and repays it with simple interest
// on Maturity.
type Deposit struct {
	Name     string
	Currency currency.Currency
	Start    time.Time
	Maturity time.Time
	Rate     float64
	DayCount dates.DayCount
}

// DepositFromFamily returns the spot-starting deposit that a calibration
// instrument of family f with the given tenor represents.
func DepositFromFamily(name string, f *instrument.CashDepoFamily, pricing time.Time, tenor dates.Term, rate float64) *Deposit {
	start, end := f.SpotAndMaturity(pricing, tenor)
	return &Deposit{
		Name:     name,
		Currency: f.Meta().Currency,
		Start:    start,
		Maturity: end,
		Rate:     rate,
		DayCount: f.DayCount,
	}
}

func (d *Deposit) Validate() error {
	switch {
	case d.Currency == "":
		return fmt.Errorf("deposit %s: currency is required", d.Name)
	case !d.Maturity.After(d.Start):
		return fmt.Errorf("deposit %s: maturity %s not after start %s", d.Name, dates.Format(d.Maturity), dates.Format(d.Start))
	}
	return nil
}

func (d *Deposit) dayCount() dates.DayCount {
	if d.DayCount == "" {
		return dates.ACT365F
	}
	return d.DayCount
}

// Accrual is the year fraction of the deposit.
func (d *Deposit) Accrual() float64 { return dates.YearFraction(d.Start, d.Maturity, d.dayCount()) }

// DepositPricer values a Deposit. Receive means lending: the holder pays
// the notional and receives it back with interest.
type DepositPricer struct {
	deposit *Deposit
	trade   pricer.TradeInfo
	flows   *pricer.CashflowPricer
}

var _ pricer.Pricer = (*DepositPricer)(nil)

// NewDepositPricer discounts on the currency curve, or the CSA curve of
// the trade when set.
func NewDepositPricer(d *Deposit, v *market.View, trade pricer.TradeInfo) (*DepositPricer, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("NewDepositPricer: %w", err)
	}
	n, sign := trade.Amount, trade.Direction()
	tau := d.Accrual()
	flows := pricer.Cashflows{
		{Currency: d.Currency, Date: d.Start, Amount: -sign * n, Notional: n, Kind: pricer.KindSimple},
		{Currency: d.Currency, Date: d.Maturity, Amount: sign * n * (1 + d.Rate*tau), Notional: n, Kind: pricer.KindFixed,
			Rate: d.Rate, AccrualStart: d.Start, AccrualEnd: d.Maturity, AccrualFraction: tau},
	}
	name := d.Name
	if trade.TradeID != "" {
		name = trade.TradeID
	}
	cf, err := pricer.NewCashflowPricer(name, flows, 0, v)
	if err != nil {
		return nil, fmt.Errorf("NewDepositPricer: %w", err)
	}
	return &DepositPricer{deposit: d, trade: trade, flows: cf.WithCSA(trade.CSAID)}, nil
}

func (p *DepositPricer) Name() string                { return p.flows.Name() }
func (p *DepositPricer) Deposit() *Deposit           { return p.deposit }
func (p *DepositPricer) Trade() pricer.TradeInfo     { return p.trade }
func (p *DepositPricer) Market() *market.View        { return p.flows.Market() }
func (p *DepositPricer) Currency() currency.Currency { return p.deposit.Currency }

func (p *DepositPricer) WithMarket(v *market.View) (pricer.Pricer, error) {
	moved, err := p.flows.WithMarket(v)
	if err != nil {
		return nil, err
	}
	out := *p
	out.flows = moved.(*pricer.CashflowPricer)
	return &out, nil
}

func (p *DepositPricer) Cashflows() (pricer.Cashflows, error) { return p.flows.Cashflows() }

// ParRate is the simple rate implied by the discounting curve over the
// deposit period.
func (p *DepositPricer) ParRate() (float64, error) {
	d := p.deposit
	if d.Start.Before(p.Market().PricingDate()) {
		return 0, fmt.Errorf("deposit %s: started %s, no par rate", d.Name, dates.Format(d.Start))
	}
	c, err := p.Market().DiscountingCurve(d.Currency, p.trade.CSAID)
	if err != nil {
		return 0, fmt.Errorf("deposit %s: %w", d.Name, err)
	}
	return (c.DiscountFactor(d.Start)/c.DiscountFactor(d.Maturity) - 1) / d.Accrual(), nil
}

func (p *DepositPricer) Value(m pricer.Metric) (float64, error) {
	if m == pricer.ParRate {
		return p.ParRate()
	}
	return p.flows.Value(m)
}

func (p *DepositPricer) Values(m pricer.Metric) (currency.Amounts, error) {
	return p.flows.Values(m)
}
