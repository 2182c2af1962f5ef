package moneymarket_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/moneymarket"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

var pricing = dates.YMD(2024, time.January, 10)

func position(amount float64, receive bool) pricer.TradeInfo {
	tr := pricer.NewTradeInfo()
	tr.TradeID = ""
	tr.Amount = amount
	tr.IsReceive = receive
	return tr
}

func cashMarket(t *testing.T) (*market.View, []instrument.Instrument) {
	t.Helper()
	insts, err := instrument.Default().CreateAll(map[string]float64{
		"Cash-USD-1M": 0.053,
		"Cash-USD-3M": 0.054,
		"Cash-USD-6M": 0.052,
		"Cash-USD-1Y": 0.049,
	})
	require.NoError(t, err)
	v := market.NewView("cash", pricing)
	_, err = v.AddBootstrappedDiscountingCurve("USD-CASH", insts, currency.USD, curve.PiecewiseLogLinearDiscount)
	require.NoError(t, err)
	return v, insts
}

func TestDepositsRepriceAtPar(t *testing.T) {
	t.Parallel()

	v, insts := cashMarket(t)
	for _, inst := range insts {
		f, ok := inst.Family().(*instrument.CashDepoFamily)
		require.True(t, ok)
		d := moneymarket.DepositFromFamily(inst.Name(), f, pricing, dates.MustTerm(inst.Specifics()), inst.Quote)
		p, err := moneymarket.NewDepositPricer(d, v, position(1e6, true))
		require.NoError(t, err)

		par, err := p.Value(pricer.ParRate)
		require.NoError(t, err)
		assert.InDelta(t, inst.Quote, par, 1e-9, inst.Name())
		mv, err := p.Value(pricer.NativeModelValue)
		require.NoError(t, err)
		assert.InDelta(t, 0, mv, 1e-3, inst.Name())
	}
}

func TestDepositValueAndFlows(t *testing.T) {
	t.Parallel()

	v, _ := cashMarket(t)
	f, err := instrument.Default().Family("Cash-USD")
	require.NoError(t, err)
	d := moneymarket.DepositFromFamily("USD 6M", f.(*instrument.CashDepoFamily), pricing, dates.MustTerm("6M"), 0.06)
	lend, err := moneymarket.NewDepositPricer(d, v, position(1e6, true))
	require.NoError(t, err)
	borrow, err := moneymarket.NewDepositPricer(d, v, position(1e6, false))
	require.NoError(t, err)

	flows, err := lend.Cashflows()
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, -1e6, flows[0].Amount)
	assert.InDelta(t, 1e6*(1+0.06*d.Accrual()), flows[1].Amount, 1e-6)

	c, err := v.DiscountingCurve(currency.USD, "")
	require.NoError(t, err)
	want := -1e6*c.DiscountFactor(d.Start) + flows[1].Amount*c.DiscountFactor(d.Maturity)
	lv, err := lend.Value(pricer.NativeModelValue)
	require.NoError(t, err)
	assert.InDelta(t, want, lv, 1e-6)
	assert.Positive(t, lv)
	bv, err := borrow.Value(pricer.NativeModelValue)
	require.NoError(t, err)
	assert.InDelta(t, -lv, bv, 1e-6)

	// Once started only the repayment is left and there is no par rate.
	later := market.NewView("later", d.Start.AddDate(0, 1, 0))
	moved, err := lend.WithMarket(later)
	require.NoError(t, err)
	flows, err = moved.Cashflows()
	require.NoError(t, err)
	assert.Len(t, flows, 1)
	_, err = moved.Value(pricer.ParRate)
	assert.Error(t, err)

	bad := *d
	bad.Maturity = bad.Start
	_, err = moneymarket.NewDepositPricer(&bad, v, position(1, true))
	assert.Error(t, err)
}

func sofrMarket(t *testing.T) (*market.View, []instrument.Instrument) {
	t.Helper()
	insts, err := instrument.Default().CreateAll(map[string]float64{
		"FUT-ICE-SR3-H24": 94.80,
		"FUT-ICE-SR3-M24": 95.05,
		"FUT-ICE-SR3-U24": 95.40,
		"IRS-SOFR-2Y":     0.0420,
	})
	require.NoError(t, err)
	v := market.NewView("sofr", pricing)
	_, err = v.AddBootstrappedDiscountingRateCurve("USD-SOFR", insts, index.SOFR, curve.PiecewiseLogLinearDiscount)
	require.NoError(t, err)
	return v, insts
}

func TestFuturesRepriceOnCalibratedCurve(t *testing.T) {
	t.Parallel()

	v, insts := sofrMarket(t)
	for _, inst := range insts {
		if _, ok := inst.Family().(*instrument.OIFutureFamily); !ok {
			continue
		}
		p, err := moneymarket.NewFuturePricer(inst.Type, v, position(1e6, true), 0)
		require.NoError(t, err)
		price, err := p.Value(pricer.FuturesPrice)
		require.NoError(t, err)
		assert.InDelta(t, inst.Quote, price, 1e-6, inst.Name())
		rate, err := p.Value(pricer.ParRate)
		require.NoError(t, err)
		assert.InDelta(t, 1-inst.Quote/100, rate, 1e-8, inst.Name())
	}
}

func TestFutureValue(t *testing.T) {
	t.Parallel()

	v, _ := sofrMarket(t)
	typ, err := instrument.Default().Type("FUT-ICE-SR3-M24")
	require.NoError(t, err)

	tr := position(1e6, true)
	tr.Price = 95.00
	long, err := moneymarket.NewFuturePricer(typ, v, tr, 95.10)
	require.NoError(t, err)
	model, err := long.ModelPrice()
	require.NoError(t, err)

	// One point on a three month contract is 1e6 * 3 / 1200.
	mv, err := long.Value(pricer.NativeModelValue)
	require.NoError(t, err)
	assert.InDelta(t, (model-95.00)*2500, mv, 1e-6)
	mkt, err := long.Value(pricer.NativeMarketValue)
	require.NoError(t, err)
	assert.InDelta(t, 0.10*2500, mkt, 1e-6)

	vals, err := long.Values(pricer.Value)
	require.NoError(t, err)
	assert.InDelta(t, 0.10*2500, vals[currency.USD], 1e-6)
	vals, err = long.Values(pricer.RiskValue)
	require.NoError(t, err)
	assert.InDelta(t, mv, vals[currency.USD], 1e-9)

	tr.IsReceive = false
	short, err := moneymarket.NewFuturePricer(typ, v, tr, 95.10)
	require.NoError(t, err)
	sv, err := short.Value(pricer.NativeModelValue)
	require.NoError(t, err)
	assert.InDelta(t, -mv, sv, 1e-9)

	flows, err := long.Cashflows()
	require.NoError(t, err)
	assert.Empty(t, flows)
	_, err = long.Value(pricer.Yield)
	assert.ErrorIs(t, err, pricer.ErrUnsupportedMetric)

	_, err = moneymarket.NewFuturePricer(typ, v, position(1e6, true), 0)
	assert.Error(t, err)
	swapType, err := instrument.Default().Type("IRS-SOFR-2Y")
	require.NoError(t, err)
	_, err = moneymarket.NewFuturePricer(swapType, v, tr, 0)
	assert.Error(t, err)
}
