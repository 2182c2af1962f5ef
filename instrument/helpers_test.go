package instrument

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

type fakeSource struct {
	pricing time.Time
	curves  map[string]*curve.Curve
	fixings map[string]map[time.Time]float64
}

func (s *fakeSource) PricingDate() time.Time { return s.pricing }

func (s *fakeSource) DiscountingCurveByID(id string) (*curve.Curve, error) {
	if c, ok := s.curves[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("no curve %s", id)
}

func (s *fakeSource) IndexCurve(name string) (*curve.Curve, error) {
	return s.DiscountingCurveByID(name)
}

func (s *fakeSource) Fixing(name string, d time.Time) (float64, bool) {
	v, ok := s.fixings[name][d]
	return v, ok
}

var pricing = dates.YMD(2024, time.January, 10)

// flatCurve has a constant continuously compounded rate r.
func flatCurve(t *testing.T, r float64) *curve.Curve {
	t.Helper()
	var ds []time.Time
	var dfs []float64
	for y := 1; y <= 40; y++ {
		d := pricing.AddDate(y, 0, 0)
		ds = append(ds, d)
		dfs = append(dfs, math.Exp(-r*dates.YearFraction(pricing, d, curve.TimeBasis)))
	}
	c, err := curve.New(pricing, ds, dfs, curve.PiecewiseLogLinearDiscount)
	require.NoError(t, err)
	return c
}

func helperFor(t *testing.T, src CurveSource, name string, quote float64, disc, target string) curve.Helper {
	t.Helper()
	inst, err := Default().Create(name, quote)
	require.NoError(t, err)
	h, err := inst.Helper(src, disc, target)
	require.NoError(t, err)
	return h
}

func TestDepositAndZeroHelpers(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pricing: pricing}
	c := flatCurve(t, 0.04)

	h := helperFor(t, src, "Cash-USD-6M", 0.05, "", "")
	start := pricing.AddDate(0, 0, 2)
	end := start.AddDate(0, 6, 0)
	assert.Equal(t, end, h.Pillar())
	tau := dates.YearFraction(start, end, dates.ACT365F)
	q, err := h.ImpliedQuote(c)
	require.NoError(t, err)
	assert.InDelta(t, (math.Exp(0.04*tau)-1)/tau, q, 1e-14)

	z := helperFor(t, src, "ZCB-USD-2Y", 0.05, "", "")
	q, err = z.ImpliedQuote(c)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(0.04)-1, q, 1e-14)
}

func TestOISHelper(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pricing: pricing}
	c := flatCurve(t, 0.04)

	h := helperFor(t, src, "IRS-SOFR-1Y", 0.05, "", "")
	start := calendar.AddBusinessDays(calendar.USGS, pricing, 2)
	end := calendar.Adjust(calendar.USGS, start.AddDate(1, 0, 0))
	assert.Equal(t, end, h.Pillar())

	q, err := h.ImpliedQuote(c)
	require.NoError(t, err)
	tau := dates.YearFraction(start, end, dates.ACT360)
	assert.InDelta(t, (c.DiscountFactor(start)/c.DiscountFactor(end)-1)/tau, q, 1e-14)
}

func TestIRSHelperUsesExternalDiscounting(t *testing.T) {
	t.Parallel()

	ois := flatCurve(t, 0.03)
	src := &fakeSource{pricing: pricing, curves: map[string]*curve.Curve{"EUR": ois}}
	proj := flatCurve(t, 0.035)

	h := helperFor(t, src, "IRS-EURIBOR6M-5Y", 0.035, "EUR", "EURIBOR6M")
	dual, err := h.ImpliedQuote(proj)
	require.NoError(t, err)

	h = helperFor(t, src, "IRS-EURIBOR6M-5Y", 0.035, "", "")
	single, err := h.ImpliedQuote(proj)
	require.NoError(t, err)

	assert.Greater(t, dual, 0.03)
	assert.NotEqual(t, dual, single)
}

func TestBasisHelperNeedsTarget(t *testing.T) {
	t.Parallel()

	estr := flatCurve(t, 0.03)
	src := &fakeSource{pricing: pricing, curves: map[string]*curve.Curve{"EUR": estr, "ESTR": estr}}
	inst, err := Default().Create("IRS-ESTR-EURIBOR3M-5Y", 0.001)
	require.NoError(t, err)

	_, err = inst.Helper(src, "EUR", "")
	assert.Error(t, err)

	h, err := inst.Helper(src, "EUR", "EURIBOR3M")
	require.NoError(t, err)
	// Same projection on both legs means zero basis.
	q, err := h.ImpliedQuote(estr)
	require.NoError(t, err)
	assert.InDelta(t, 0, q, 1e-12)

	// A higher EURIBOR curve needs a positive spread on the ESTR leg.
	q, err = h.ImpliedQuote(flatCurve(t, 0.032))
	require.NoError(t, err)
	assert.Greater(t, q, 0.0)
}

func TestFutureHelper(t *testing.T) {
	t.Parallel()

	c := flatCurve(t, 0.04)
	src := &fakeSource{pricing: pricing}

	h := helperFor(t, src, "FUT-ICE-SR3-H24", 95, "", "")
	start, end := dates.YMD(2024, time.March, 20), dates.YMD(2024, time.June, 18)
	assert.Equal(t, end, h.Pillar())
	tau := dates.YearFraction(start, end, dates.ACT360)
	q, err := h.ImpliedQuote(c)
	require.NoError(t, err)
	rate := (c.DiscountFactor(start)/c.DiscountFactor(end) - 1) / tau
	assert.InDelta(t, 100*(1-rate), q, 1e-12)

	h = helperFor(t, src, "FUT-ICE-SR1-G24", 95, "", "")
	assert.Equal(t, dates.YMD(2024, time.February, 29), h.Pillar())
	q, err = h.ImpliedQuote(c)
	require.NoError(t, err)
	tau = dates.YearFraction(dates.YMD(2024, time.February, 1), h.Pillar(), dates.ACT360)
	assert.InDelta(t, 100*(1-math.Log(c.DiscountFactor(dates.YMD(2024, time.February, 1))/c.DiscountFactor(h.Pillar()))/tau), q, 1e-12)
}

func TestFutureHelperRealizedFixings(t *testing.T) {
	t.Parallel()

	c := flatCurve(t, 0.04)
	today := dates.YMD(2024, time.January, 10)
	src := &fakeSource{pricing: today, fixings: map[string]map[time.Time]float64{"SOFR": {}}}

	inst, err := Default().Create("FUT-ICE-SR1-F24", 95)
	require.NoError(t, err)

	// January 2024 accrual started on the 1st, a holiday, so the fixing of
	// 29 December 2023 applies first.
	_, err = inst.Helper(src, "", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing SOFR fixing")

	for d := dates.YMD(2023, time.December, 29); d.Before(today); d = d.AddDate(0, 0, 1) {
		src.fixings["SOFR"][d] = 0.053
	}
	h, err := inst.Helper(src, "", "")
	require.NoError(t, err)
	q, err := h.ImpliedQuote(c)
	require.NoError(t, err)
	// Nine days at 5.3% and the rest near 4% average to between the two.
	rate := 1 - q/100
	assert.Greater(t, rate, 0.04)
	assert.Less(t, rate, 0.053)

	expired := &fakeSource{pricing: dates.YMD(2024, time.March, 1)}
	_, err = inst.Helper(expired, "", "")
	assert.ErrorContains(t, err, "accrual ended")
}

func TestBootstrapFromSwaps(t *testing.T) {
	t.Parallel()

	src := &fakeSource{pricing: pricing}
	quotes := map[string]float64{"IRS-SOFR-1Y": 0.045, "IRS-SOFR-5Y": 0.052, "IRS-SOFR-30Y": 0.057}
	var helpers []curve.Helper
	for n, q := range quotes {
		helpers = append(helpers, helperFor(t, src, n, q, "", ""))
	}
	c, err := curve.Bootstrap(pricing, helpers, curve.PiecewiseLogLinearDiscount)
	require.NoError(t, err)
	for _, h := range helpers {
		q, err := h.ImpliedQuote(c)
		require.NoError(t, err)
		assert.InDelta(t, h.Quote(), q, 1e-10)
	}
	assert.InDelta(t, 0.052, c.ZeroRate(pricing.AddDate(5, 0, 0)), 0.005)
}

type fakeFXSource struct {
	fakeSource
	spot float64
}

func (s *fakeFXSource) SpotFX(c1, c2 currency.Currency) (float64, error) {
	if c1 == currency.EUR && c2 == currency.USD {
		return s.spot, nil
	}
	return 0, fmt.Errorf("no spot %s%s", c1, c2)
}

func TestFXSwapHelper(t *testing.T) {
	t.Parallel()

	eur := flatCurve(t, 0.03)
	usd := flatCurve(t, 0.05)
	src := &fakeFXSource{fakeSource: fakeSource{pricing: pricing, curves: map[string]*curve.Curve{"EUR": eur, "USD": usd}}, spot: 1.1}
	inst, err := Default().Create("FXS-EURUSD-1Y", 0.02)
	require.NoError(t, err)
	assert.Equal(t, RiskFX, inst.RiskType())
	assert.Equal(t, QuoteForwardPoints, inst.Family().QuoteConvention())

	// USD discounting calibrated under EUR collateral.
	h, err := inst.HelperFor(HelperRequest{Source: src, DiscountingID: "EUR", TargetCurrency: currency.USD})
	require.NoError(t, err)
	start := calendar.AddBusinessDays(calendar.TARGET, pricing, 2)
	end := calendar.AdjustWith(calendar.TARGET, start.AddDate(1, 0, 0), calendar.ModifiedFollowing)
	assert.Equal(t, end, h.Pillar())
	q, err := h.ImpliedQuote(usd)
	require.NoError(t, err)
	tau := dates.YearFraction(start, end, curve.TimeBasis)
	assert.InDelta(t, 1.1*(math.Exp(0.02*tau)-1), q, 1e-12)

	// Same curves with the roles swapped give the same points.
	h, err = inst.HelperFor(HelperRequest{Source: src, DiscountingID: "USD", TargetCurrency: currency.EUR})
	require.NoError(t, err)
	swapped, err := h.ImpliedQuote(eur)
	require.NoError(t, err)
	assert.InDelta(t, q, swapped, 1e-12)

	_, err = inst.HelperFor(HelperRequest{Source: src, DiscountingID: "EUR", TargetCurrency: currency.GBP})
	assert.Error(t, err)
	_, err = inst.HelperFor(HelperRequest{Source: src, TargetCurrency: currency.USD})
	assert.Error(t, err)
	_, err = inst.HelperFor(HelperRequest{Source: &src.fakeSource, DiscountingID: "EUR", TargetCurrency: currency.USD})
	assert.ErrorIs(t, err, ErrNoSpotFX)
}
