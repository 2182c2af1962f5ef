package swap_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
	"github.com/Aqumen-Tech/aqumenlib/swap"
)

var pricing = dates.YMD(2024, time.January, 10)

func quotes(t *testing.T, m map[string]float64) []instrument.Instrument {
	t.Helper()
	insts, err := instrument.Default().CreateAll(m)
	require.NoError(t, err)
	return insts
}

func eurMarket(t *testing.T) *market.View {
	t.Helper()
	v := market.NewView("eur", pricing)
	_, err := v.AddBootstrappedDiscountingRateCurve("EUR-ESTR", quotes(t, map[string]float64{
		"IRS-ESTR-1Y":  0.038,
		"IRS-ESTR-5Y":  0.028,
		"IRS-ESTR-10Y": 0.027,
	}), index.ESTR, curve.PiecewiseLogLinearDiscount)
	require.NoError(t, err)
	_, err = v.AddBootstrappedRateCurve("EUR-EURIBOR6M", quotes(t, map[string]float64{
		"IRS-EURIBOR6M-1Y":  0.039,
		"IRS-EURIBOR6M-5Y":  0.030,
		"IRS-EURIBOR6M-10Y": 0.029,
	}), index.EURIBOR6M, "")
	require.NoError(t, err)
	return v
}

func familySwap(t *testing.T, family, tenor string, coupon float64) *swap.InterestRateSwap {
	t.Helper()
	f, err := instrument.Default().Family(family)
	require.NoError(t, err)
	irs, ok := f.(*instrument.IRSwapFamily)
	require.True(t, ok)
	return swap.FromFamily(family+"-"+tenor, irs, pricing, dates.MustTerm(tenor), coupon)
}

func trade(amount float64, receive bool) pricer.TradeInfo {
	tr := pricer.NewTradeInfo()
	tr.TradeID = ""
	tr.Amount = amount
	tr.IsReceive = receive
	return tr
}

func TestCalibrationSwapsPriceAtPar(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	tests := []struct {
		family, tenor string
		quote         float64
	}{
		{"IRS-ESTR", "1Y", 0.038},
		{"IRS-ESTR", "5Y", 0.028},
		{"IRS-ESTR", "10Y", 0.027},
		{"IRS-EURIBOR6M", "5Y", 0.030},
		{"IRS-EURIBOR6M", "10Y", 0.029},
	}
	for _, tt := range tests {
		t.Run(tt.family+"-"+tt.tenor, func(t *testing.T) {
			p, err := swap.NewPricer(familySwap(t, tt.family, tt.tenor, tt.quote), v, trade(1e6, true))
			require.NoError(t, err)

			par, err := p.Value(pricer.ParRate)
			require.NoError(t, err)
			assert.InDelta(t, tt.quote, par, 1e-9)

			npv, err := p.Value(pricer.NativeModelValue)
			require.NoError(t, err)
			assert.InDelta(t, 0, npv, 1e-3)
		})
	}
}

func TestDirectionAndParSpread(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	s := familySwap(t, "IRS-EURIBOR6M", "5Y", 0.032)
	rec, err := swap.NewPricer(s, v, trade(1e6, true))
	require.NoError(t, err)
	pay, err := swap.NewPricer(s, v, trade(1e6, false))
	require.NoError(t, err)

	recPV, err := rec.PVByLeg()
	require.NoError(t, err)
	payPV, err := pay.PVByLeg()
	require.NoError(t, err)
	assert.Greater(t, recPV.TotalPV, 0.0)
	assert.InDelta(t, -recPV.TotalPV, payPV.TotalPV, 1e-9)
	assert.InDelta(t, recPV.FixedLegPV-recPV.FloatLegPV, recPV.TotalPV, 1e-9)

	spread, err := rec.Value(pricer.ParSpread)
	require.NoError(t, err)
	assert.Greater(t, spread, 0.0)

	adjusted := *s
	adjusted.FloatSpread = spread
	p, err := swap.NewPricer(&adjusted, v, trade(1e6, true))
	require.NoError(t, err)
	npv, err := p.Value(pricer.NativeModelValue)
	require.NoError(t, err)
	assert.InDelta(t, 0, npv, 1e-6)

	vals, err := rec.Values(pricer.RiskValue)
	require.NoError(t, err)
	assert.InDelta(t, recPV.TotalPV, vals[currency.EUR], 1e-9)

	_, err = rec.Value(pricer.Yield)
	assert.ErrorIs(t, err, pricer.ErrUnsupportedMetric)
}

func TestCashflowsAreSignedForHolder(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	p, err := swap.NewPricer(familySwap(t, "IRS-EURIBOR6M", "2Y", 0.03), v, trade(1e6, true))
	require.NoError(t, err)

	flows, err := p.Cashflows()
	require.NoError(t, err)
	var nFixed, nFloat int
	for _, f := range flows {
		switch f.Kind {
		case pricer.KindFixed:
			nFixed++
			assert.Greater(t, f.Amount, 0.0)
			assert.Equal(t, 0.03, f.Rate)
		case pricer.KindFloating:
			nFloat++
			assert.Less(t, f.Amount, 0.0)
			assert.Equal(t, "EURIBOR6M", f.Index)
		}
		assert.Equal(t, currency.EUR, f.Currency)
		assert.False(t, f.Date.Before(pricing))
	}
	assert.Equal(t, 2, nFixed)
	assert.Equal(t, 4, nFloat)
}

func TestSeasonedIBORSwapNeedsFixing(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	s := &swap.InterestRateSwap{
		Name:            "seasoned",
		Index:           index.EURIBOR6M,
		Effective:       dates.YMD(2023, time.October, 10),
		Maturity:        dates.YMD(2026, time.October, 10),
		Frequency:       dates.Annual,
		FixedCoupon:     0.03,
		FixedDayCount:   dates.Thirty360,
		PaymentCalendar: calendar.TARGET,
		PeriodAdjust:    calendar.ModifiedFollowing,
		PaymentAdjust:   calendar.ModifiedFollowing,
		MaturityAdjust:  calendar.ModifiedFollowing,
	}
	p, err := swap.NewPricer(s, v, trade(1e6, true))
	require.NoError(t, err)

	_, err = p.Value(pricer.NativeModelValue)
	require.ErrorIs(t, err, swap.ErrMissingFixing)
	assert.Contains(t, err.Error(), "EURIBOR6M on 2023-10-06")

	fixed := v.Clone()
	fixed.AddIndexFixings(index.EURIBOR6M, []market.Fixing{{Date: dates.YMD(2023, time.October, 6), Value: 0.041}})
	pf, err := p.WithMarket(fixed)
	require.NoError(t, err)
	_, err = pf.Value(pricer.NativeModelValue)
	require.NoError(t, err)

	flows, err := pf.Cashflows()
	require.NoError(t, err)
	var first pricer.Cashflow
	for _, f := range flows {
		if f.Kind == pricer.KindFloating {
			first = f
			break
		}
	}
	assert.Equal(t, 0.041, first.Rate)
	assert.Equal(t, dates.YMD(2024, time.April, 10), first.Date)
}

func TestSeasonedOISCompoundsFixings(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	s := &swap.InterestRateSwap{
		Name:            "ois",
		Index:           index.ESTR,
		Effective:       dates.YMD(2023, time.December, 11),
		Maturity:        dates.YMD(2025, time.December, 11),
		Frequency:       dates.Annual,
		FixedCoupon:     0.035,
		FixedDayCount:   dates.ACT360,
		PaymentCalendar: calendar.TARGET,
		PeriodAdjust:    calendar.ModifiedFollowing,
		PaymentAdjust:   calendar.ModifiedFollowing,
		MaturityAdjust:  calendar.ModifiedFollowing,
	}
	p, err := swap.NewPricer(s, v, trade(1e6, true))
	require.NoError(t, err)
	_, err = p.Value(pricer.NativeModelValue)
	require.ErrorIs(t, err, swap.ErrMissingFixing)

	withFixings := func(rate float64) float64 {
		m := v.Clone()
		var fs []market.Fixing
		for d := s.Effective; d.Before(pricing); d = d.AddDate(0, 0, 1) {
			fs = append(fs, market.Fixing{Date: d, Value: rate})
		}
		m.AddIndexFixings(index.ESTR, fs)
		pm, err := p.WithMarket(m)
		require.NoError(t, err)
		npv, err := pm.Value(pricer.NativeModelValue)
		require.NoError(t, err)
		return npv
	}
	low, high := withFixings(0.03), withFixings(0.05)
	assert.Greater(t, low, high)
	// One month of 2% extra accrual on 1m notional is roughly 1,600.
	assert.InDelta(t, 1650, low-high, 150)
}

func TestReportingValue(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	require.NoError(t, v.AddSpotFX(currency.EUR, currency.USD, 1.1))
	p, err := swap.NewPricer(familySwap(t, "IRS-ESTR", "5Y", 0.03), v, trade(1e6, true))
	require.NoError(t, err)
	native, err := p.Value(pricer.NativeModelValue)
	require.NoError(t, err)
	rep, err := p.Value(pricer.ReportingValue)
	require.NoError(t, err)
	assert.InDelta(t, native*1.1, rep, 1e-6)
}

func TestSwapJSON(t *testing.T) {
	t.Parallel()

	var s swap.InterestRateSwap
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "5Y SOFR",
		"index": "SOFR",
		"effective": "2024-01-12",
		"maturity": "2029-01-12",
		"fixed_coupon": 0.04
	}`), &s))
	assert.Equal(t, index.SOFR, s.Index)
	assert.Equal(t, dates.Annual, s.Frequency)
	assert.Equal(t, index.SOFR.DayCount, s.FixedDayCount)
	assert.Equal(t, index.SOFR.Calendar, s.PaymentCalendar)

	b, err := json.Marshal(&s)
	require.NoError(t, err)
	var back swap.InterestRateSwap
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, s, back)

	err = json.Unmarshal([]byte(`{"name":"bad","index":"SOFR","effective":"2024-01-12","maturity":"2023-01-12"}`), &s)
	assert.Error(t, err)
}
