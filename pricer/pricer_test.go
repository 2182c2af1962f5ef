package pricer

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/market"
)

var pricing = dates.YMD(2024, time.January, 15)

// flatMarket discounts USD and EUR at a flat continuous rate r.
func flatMarket(t *testing.T, r float64) *market.View {
	t.Helper()
	v := market.NewView("flat", pricing)
	for _, ccy := range []currency.Currency{currency.USD, currency.EUR} {
		var ds []time.Time
		var dfs []float64
		for y := 1; y <= 30; y++ {
			d := pricing.AddDate(y, 0, 0)
			ds = append(ds, d)
			dfs = append(dfs, math.Exp(-r*dates.YearFraction(pricing, d, curve.TimeBasis)))
		}
		name := string(ccy) + "-FLAT"
		_, err := v.AddCurve(&market.FixedSpec{CurveName: name, Dates: ds, DiscountFactors: dfs})
		require.NoError(t, err)
		require.NoError(t, v.AddDiscountingCurve(string(ccy), name))
	}
	require.NoError(t, v.AddSpotFX(currency.EUR, currency.USD, 1.1))
	return v
}

func annualFlows(ccy currency.Currency, coupon float64, years int) Cashflows {
	var out Cashflows
	for y := 1; y <= years; y++ {
		amt := coupon
		if y == years {
			amt += 100
		}
		out = append(out, Cashflow{Currency: ccy, Date: pricing.AddDate(y, 0, 0), Amount: amt, Kind: KindFixed})
	}
	return out
}

func TestParseMetric(t *testing.T) {
	t.Parallel()

	m, err := ParseMetric(" native_model_value ")
	require.NoError(t, err)
	assert.Equal(t, NativeModelValue, m)
	_, err = ParseMetric("GAMMA")
	assert.Error(t, err)
	assert.True(t, Value.PerCurrency())
	assert.False(t, NativeMarketValue.PerCurrency())
	assert.Len(t, Metrics(), 22)
}

func TestCashflowsTotalAndTable(t *testing.T) {
	t.Parallel()

	flows := Cashflows{
		{Currency: currency.USD, Date: pricing.AddDate(1, 0, 0), Amount: 0.1},
		{Currency: currency.USD, Date: pricing.AddDate(0, 6, 0), Amount: 0.2},
		{Currency: currency.EUR, Date: pricing.AddDate(2, 0, 0), Amount: -1234567.891, Rate: 0.035},
	}
	total := flows.Total()
	assert.Equal(t, 0.3, total[currency.USD])
	assert.Equal(t, -1234567.891, total[currency.EUR])

	sorted := flows.Sorted()
	assert.Equal(t, currency.EUR, sorted[0].Currency)
	assert.Equal(t, 0.2, sorted[1].Amount)

	assert.Len(t, flows.From(pricing.AddDate(0, 7, 0)), 2)

	var buf bytes.Buffer
	require.NoError(t, flows.Table(&buf))
	assert.Contains(t, buf.String(), "-1,234,567.89")
	assert.Contains(t, buf.String(), "3.5000%")
	assert.Contains(t, buf.String(), "2024-07-15")
}

func TestMoney(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{
		0:          "0.00",
		999.999:    "1,000.00",
		1068021.98: "1,068,021.98",
		-12.5:      "-12.50",
		123456:     "123,456.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, Money(in), "%v", in)
	}
}

func TestSolveYieldRoundTrip(t *testing.T) {
	t.Parallel()

	flows := []TimedFlow{{0.5, 4}, {1, 4}, {1.5, 4}, {2, 104}}
	for _, y := range []float64{-0.01, 0.0, 0.03, 0.08, 0.25} {
		price, _, _ := PriceAtYield(flows, y, 2)
		got, err := SolveYield(flows, price, 2)
		require.NoError(t, err)
		assert.InDelta(t, y, got, 1e-10)
	}

	_, err := SolveYield(nil, 100, 2)
	assert.Error(t, err)
	_, err = SolveYield(flows, 100, 0)
	assert.Error(t, err)
}

func TestYieldRiskZeroCoupon(t *testing.T) {
	t.Parallel()

	y, T := 0.05, 5.0
	r, err := YieldRisk([]TimedFlow{{T, 100}}, y, 1)
	require.NoError(t, err)
	assert.InDelta(t, T/(1+y), r.Modified, 1e-12)
	assert.InDelta(t, T, r.Macaulay, 1e-12)
	assert.InDelta(t, T*(T+1)/((1+y)*(1+y)), r.Convexity, 1e-12)

	// Numerical check of the analytic derivatives.
	flows := []TimedFlow{{0.5, 3}, {1, 3}, {1.5, 103}}
	p, d1, d2 := PriceAtYield(flows, 0.04, 2)
	h := 1e-5
	up, _, _ := PriceAtYield(flows, 0.04+h, 2)
	dn, _, _ := PriceAtYield(flows, 0.04-h, 2)
	assert.InDelta(t, (up-dn)/(2*h), d1, 1e-6)
	assert.InDelta(t, (up-2*p+dn)/(h*h), d2, 1e-3)
}

func TestSolveZSpread(t *testing.T) {
	t.Parallel()

	v := flatMarket(t, 0.03)
	c, err := v.DiscountingCurve(currency.USD, "")
	require.NoError(t, err)

	flows := annualFlows(currency.USD, 5, 10)
	target := 0.0
	for _, f := range flows {
		target += f.Amount * math.Exp(-0.04*c.TimeOf(f.Date))
	}
	z, err := SolveZSpread(c, flows, target)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, z, 1e-10)
}

func TestCashflowPricer(t *testing.T) {
	t.Parallel()

	v := flatMarket(t, 0.03)
	flows := annualFlows(currency.EUR, 4, 5)
	p, err := NewCashflowPricer("strip", flows, 0, v)
	require.NoError(t, err)

	want := 0.0
	for _, f := range flows {
		want += f.Amount * math.Exp(-0.03*dates.YearFraction(pricing, f.Date, dates.ACT365F))
	}
	model, err := p.Value(NativeModelValue)
	require.NoError(t, err)
	assert.InDelta(t, want, model, 1e-9)

	t.Run("market falls back to model", func(t *testing.T) {
		mv, err := p.Value(NativeMarketValue)
		require.NoError(t, err)
		assert.Equal(t, model, mv)

		irr, err := p.Value(IRR)
		require.NoError(t, err)
		assert.InDelta(t, math.Exp(0.03)-1, irr, 1e-9)

		z, err := p.Value(ZSpread)
		require.NoError(t, err)
		assert.InDelta(t, 0, z, 1e-10)
	})

	t.Run("durations at irr", func(t *testing.T) {
		mod, err := p.Value(Duration)
		require.NoError(t, err)
		mac, err := p.Value(DurationMacaulay)
		require.NoError(t, err)
		irr, err := p.Value(IRR)
		require.NoError(t, err)
		assert.InDelta(t, mod*(1+irr), mac, 1e-12)
		assert.Greater(t, mac, 4.0)
		assert.Less(t, mac, 5.0)
	})

	t.Run("quoted price", func(t *testing.T) {
		quoted, err := NewCashflowPricer("strip", flows, 98, v)
		require.NoError(t, err)
		vals, err := quoted.Values(Value)
		require.NoError(t, err)
		assert.Equal(t, currency.Amounts{currency.EUR: 98}, vals)

		risk, err := quoted.Values(RiskValue)
		require.NoError(t, err)
		assert.InDelta(t, model, risk[currency.EUR], 1e-9)

		rep, err := quoted.Value(ReportingValue)
		require.NoError(t, err)
		assert.InDelta(t, 98*1.1, rep, 1e-9)

		z, err := quoted.Value(ZSpread)
		require.NoError(t, err)
		assert.Greater(t, z, 0.0)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := p.Value(ParRate)
		assert.ErrorIs(t, err, ErrUnsupportedMetric)
		_, err = p.Values(NativeModelValue)
		assert.ErrorIs(t, err, ErrUnsupportedMetric)
	})

	t.Run("calculate", func(t *testing.T) {
		ccy, err := Calculate(p, CurrencyMetric)
		require.NoError(t, err)
		assert.Equal(t, currency.EUR, ccy)
		cf, err := Calculate(p, CashflowsMetric)
		require.NoError(t, err)
		assert.Len(t, cf, 5)
	})
}

func TestCashflowPricerRejectsMixedCurrencies(t *testing.T) {
	t.Parallel()

	v := flatMarket(t, 0.03)
	_, err := NewCashflowPricer("empty", nil, 0, v)
	assert.Error(t, err)
	flows := append(annualFlows(currency.EUR, 4, 2), annualFlows(currency.USD, 4, 2)...)
	_, err = NewCashflowPricer("mixed", flows, 0, v)
	assert.Error(t, err)
}

func TestTradeInfo(t *testing.T) {
	t.Parallel()

	a, b := NewTradeInfo(), NewTradeInfo()
	assert.NotEqual(t, a.TradeID, b.TradeID)
	assert.Equal(t, 100.0, a.Amount)
	assert.Equal(t, 1.0, a.Direction())
	a.IsReceive = false
	assert.Equal(t, -1.0, a.Direction())
}
