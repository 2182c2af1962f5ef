package market

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

var pricing = dates.YMD(2024, time.January, 10)

func quotes(t *testing.T, m map[string]float64) []instrument.Instrument {
	t.Helper()
	insts, err := instrument.Default().CreateAll(m)
	require.NoError(t, err)
	return insts
}

// eurMarket has an ESTR curve that discounts EUR and a EURIBOR6M
// projection curve built on top of it.
func eurMarket(t *testing.T) *View {
	t.Helper()
	v := NewView("eur", pricing)
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

func flatSpec(name string, r float64) *FixedSpec {
	var ds []time.Time
	var dfs []float64
	for y := 1; y <= 30; y++ {
		d := pricing.AddDate(y, 0, 0)
		ds = append(ds, d)
		dfs = append(dfs, math.Exp(-r*dates.YearFraction(pricing, d, curve.TimeBasis)))
	}
	return &FixedSpec{CurveName: name, Dates: ds, DiscountFactors: dfs}
}

func TestAddInstrument(t *testing.T) {
	t.Parallel()

	v := NewView("test", pricing)
	insts := quotes(t, map[string]float64{"IRS-SOFR-5Y": 0.045})
	require.NoError(t, v.AddInstrument(insts[0]))
	require.NoError(t, v.AddInstrument(insts[0]), "same quote is a no-op")

	err := v.AddInstrument(insts[0].WithQuote(0.046))
	assert.True(t, errors.Is(err, ErrDuplicateInstrument))

	_, err = v.Instrument("IRS-SOFR-7Y")
	assert.True(t, errors.Is(err, ErrInstrumentNotFound))
	assert.Len(t, v.InstrumentMap(), 1)
}

func TestCurvesByRole(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	estr, err := v.DiscountingCurveByID("EUR")
	require.NoError(t, err)
	byIndex, err := v.IndexCurve("ESTR")
	require.NoError(t, err)
	assert.Same(t, estr, byIndex)

	e6, err := v.IndexCurve("EURIBOR6M")
	require.NoError(t, err)
	assert.NotSame(t, estr, e6)

	// Unknown CSA ids fall back to the currency curve.
	c, err := v.DiscountingCurve(currency.EUR, "CSA-XYZ")
	require.NoError(t, err)
	assert.Same(t, estr, c)

	_, err = v.DiscountingCurveByID("USD")
	assert.True(t, errors.Is(err, ErrCurveNotFound))
	assert.Equal(t, []string{"EUR-ESTR", "EUR-EURIBOR6M"}, v.CurveNames())

	for _, inst := range v.Instruments() {
		h, err := inst.Helper(v, "", "")
		if inst.Family().Name() == "IRS-ESTR" {
			require.NoError(t, err)
			q, err := h.ImpliedQuote(estr)
			require.NoError(t, err)
			assert.InDelta(t, inst.Quote, q, 1e-10, inst.Name())
		}
	}
}

func TestIndirectCurveInstruments(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	ids, err := v.IndirectCurveInstruments("EUR-EURIBOR6M")
	require.NoError(t, err)
	want := []string{
		"IRS-ESTR-10Y", "IRS-ESTR-1Y", "IRS-ESTR-5Y",
		"IRS-EURIBOR6M-10Y", "IRS-EURIBOR6M-1Y", "IRS-EURIBOR6M-5Y",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("IndirectCurveInstruments() mismatch (-want +got):\n%s", diff)
	}

	deps, err := v.IndirectCurveDependencies("EUR-EURIBOR6M")
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR-ESTR"}, deps)

	ids, err = v.IndirectCurveInstruments("EUR-ESTR")
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestWithInstrumentsRebuildsOnlyDependents(t *testing.T) {
	t.Parallel()

	base := eurMarket(t)
	estr, _ := base.CurveByName("EUR-ESTR")
	e6, _ := base.CurveByName("EUR-EURIBOR6M")
	d := pricing.AddDate(5, 0, 0)

	inst, err := base.Instrument("IRS-EURIBOR6M-5Y")
	require.NoError(t, err)
	nv, err := base.WithInstruments([]instrument.Instrument{inst.WithQuote(0.031)})
	require.NoError(t, err)

	nestr, _ := nv.CurveByName("EUR-ESTR")
	ne6, _ := nv.CurveByName("EUR-EURIBOR6M")
	assert.Same(t, estr, nestr)
	assert.NotSame(t, e6, ne6)
	assert.Less(t, ne6.DiscountFactor(d), e6.DiscountFactor(d))

	old, _ := base.Instrument("IRS-EURIBOR6M-5Y")
	assert.Equal(t, 0.030, old.Quote)
	cur, _ := base.CurveByName("EUR-EURIBOR6M")
	assert.Same(t, e6, cur)

	inst, _ = base.Instrument("IRS-ESTR-5Y")
	nv, err = base.WithInstruments([]instrument.Instrument{inst.WithQuote(0.029)})
	require.NoError(t, err)
	nestr, _ = nv.CurveByName("EUR-ESTR")
	ne6, _ = nv.CurveByName("EUR-EURIBOR6M")
	assert.NotSame(t, estr, nestr)
	assert.NotSame(t, e6, ne6)
}

func TestMaybeRebuildDetectsCycles(t *testing.T) {
	t.Parallel()

	v := NewView("cycle", pricing)
	v.curves["A"] = &curveEntry{spec: &BootstrapSpec{CurveName: "A", CurveIDs: []string{"B"}}}
	v.curves["B"] = &curveEntry{spec: &BootstrapSpec{CurveName: "B", CurveIDs: []string{"A"}}}

	err := v.MaybeRebuild("A")
	assert.True(t, errors.Is(err, ErrCurveCycle))
	_, err = v.IndirectCurveDependencies("B")
	assert.True(t, errors.Is(err, ErrCurveCycle))

	err = v.MaybeRebuild("C")
	assert.True(t, errors.Is(err, ErrCurveNotFound))
}

func TestAddCurveErrors(t *testing.T) {
	t.Parallel()

	v := NewView("errs", pricing)
	_, err := v.AddCurve(flatSpec("USD-FLAT", 0.04))
	require.NoError(t, err)
	_, err = v.AddCurve(flatSpec("USD-FLAT", 0.05))
	assert.True(t, errors.Is(err, ErrCurveExists))

	_, err = v.AddCurve(&BootstrapSpec{CurveName: "BAD", InstrumentIDs: []string{"IRS-SOFR-5Y"}})
	assert.True(t, errors.Is(err, ErrInstrumentNotFound))
	_, ok := v.CurveSpec("BAD")
	assert.False(t, ok, "failed curves are not kept")

	require.NoError(t, v.AddDiscountingCurve("USD", "USD-FLAT"))
	assert.True(t, errors.Is(v.AddDiscountingCurve("USD", "USD-FLAT"), ErrCurveExists))
	assert.True(t, errors.Is(v.AddIndexCurve("SOFR", "NOPE"), ErrCurveNotFound))

	_, err = v.AddBootstrappedRateCurve("EUR-6M", nil, index.EURIBOR6M, "")
	assert.True(t, errors.Is(err, ErrCurveNotFound))

	v.ClearCurves()
	assert.Empty(t, v.Curves())
}

func TestFixings(t *testing.T) {
	t.Parallel()

	v := NewView("fix", pricing)
	kept := v.AddIndexFixings(index.SOFR, []Fixing{
		{dates.YMD(2024, time.January, 5), 0.0531},
		{dates.YMD(2024, time.January, 6), 0.0999}, // Saturday
		{dates.YMD(2024, time.January, 8), 0.0532},
		{dates.YMD(2024, time.January, 9), 0.0533},
	})
	assert.Equal(t, 3, kept)

	f, ok := v.Fixing("SOFR", dates.YMD(2024, time.January, 8))
	assert.True(t, ok)
	assert.Equal(t, 0.0532, f)
	_, ok = v.Fixing("SOFR", dates.YMD(2024, time.January, 6))
	assert.False(t, ok)
	_, ok = v.Fixing("SONIA", dates.YMD(2024, time.January, 8))
	assert.False(t, ok)

	between := v.FixingsBetween("SOFR", dates.YMD(2024, time.January, 6), dates.YMD(2024, time.January, 8))
	assert.Equal(t, []Fixing{{dates.YMD(2024, time.January, 8), 0.0532}}, between)
	assert.Len(t, v.IndexFixings("SOFR"), 3)

	// Clones do not share fixings.
	c := v.Clone()
	c.AddIndexFixings(index.SOFR, []Fixing{{dates.YMD(2024, time.January, 10), 0.05}})
	assert.Len(t, v.IndexFixings("SOFR"), 3)
	assert.Len(t, c.IndexFixings("SOFR"), 4)
}

func TestCloneSharesFixingsSafely(t *testing.T) {
	t.Parallel()

	v := NewView("fix", pricing)
	v.AddIndexFixings(index.SOFR, []Fixing{{dates.YMD(2024, time.January, 8), 0.0532}})
	clones := make([]*View, 8)
	var wg sync.WaitGroup
	for i := range clones {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clones[i] = v.Clone()
		}()
	}
	wg.Wait()

	clones[0].AddIndexFixings(index.SOFR, []Fixing{{dates.YMD(2024, time.January, 9), 0.0533}})
	assert.Len(t, clones[0].IndexFixings("SOFR"), 2)
	for _, c := range clones[1:] {
		assert.Len(t, c.IndexFixings("SOFR"), 1)
	}
	assert.Len(t, v.IndexFixings("SOFR"), 1)
}

func TestSpotFX(t *testing.T) {
	t.Parallel()

	v := NewView("fx", pricing)
	require.NoError(t, v.AddSpotFX(currency.EUR, currency.ZAR, 20.52))
	require.NoError(t, v.AddSpotFX(currency.EUR, currency.GBP, 0.859))
	require.NoError(t, v.AddSpotFX(currency.EUR, currency.USD, 1.071))
	assert.Error(t, v.AddSpotFX(currency.EUR, currency.EUR, 1))

	tests := []struct {
		c1, c2 currency.Currency
		want   float64
	}{
		{currency.USD, currency.USD, 1},
		{currency.EUR, currency.USD, 1.071},
		{currency.USD, currency.EUR, 0.93370681606},
		{currency.USD, currency.GBP, 0.80205415500},
		{currency.USD, currency.ZAR, 19.1596638655},
	}
	for _, tt := range tests {
		got, err := v.SpotFX(tt.c1, tt.c2)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-10, "%s%s", tt.c1, tt.c2)
	}

	_, err := v.SpotFX(currency.USD, currency.JPY)
	assert.True(t, errors.Is(err, ErrFXNotFound))
}

func TestForwardFX(t *testing.T) {
	t.Parallel()

	v := NewView("fwd", pricing)
	for ccy, r := range map[currency.Currency]float64{currency.USD: 0.05, currency.EUR: 0.03} {
		name := string(ccy) + "-FLAT"
		_, err := v.AddCurve(flatSpec(name, r))
		require.NoError(t, err)
		require.NoError(t, v.AddDiscountingCurve(string(ccy), name))
	}
	require.NoError(t, v.AddSpotFX(currency.EUR, currency.USD, 1.10))

	d := pricing.AddDate(2, 0, 0)
	tau := dates.YearFraction(pricing, d, curve.TimeBasis)
	fwd, err := v.ForwardFX(d, currency.EUR, currency.USD, "", "")
	require.NoError(t, err)
	assert.InDelta(t, 1.10*math.Exp(0.02*tau), fwd, 1e-12)
	eur, err := v.DiscountingCurve(currency.EUR, "")
	require.NoError(t, err)
	usd, err := v.DiscountingCurve(currency.USD, "")
	require.NoError(t, err)
	assert.InDelta(t, 1.10*eur.DiscountFactor(d)/usd.DiscountFactor(d), fwd, 1e-12)
	assert.Greater(t, fwd, 1.10)

	inv, err := v.ForwardFX(d, currency.USD, currency.EUR, "", "")
	require.NoError(t, err)
	assert.InDelta(t, 1/fwd, inv, 1e-12)
}

func TestBumpedMarkets(t *testing.T) {
	t.Parallel()

	base := eurMarket(t)
	filter := &instrument.Filter{Families: []string{"IRS-EURIBOR6M"}}
	bumped, err := base.BumpedMarkets(filter, BumpAbsolute)
	require.NoError(t, err)
	require.Len(t, bumped, 3)

	d := pricing.AddDate(7, 0, 0)
	inPlace := map[string]float64{}
	err = base.BumpInPlace(filter, BumpAbsolute, func(b BumpedMarket) error {
		c, err := b.Market.IndexCurve("EURIBOR6M")
		if err != nil {
			return err
		}
		inPlace[b.Instrument.Name()] = c.DiscountFactor(d)
		return nil
	})
	require.NoError(t, err)

	for _, b := range bumped {
		assert.Equal(t, 0.0001, b.BumpSize)
		got, err := b.Market.Instrument(b.Instrument.Name())
		require.NoError(t, err)
		assert.InDelta(t, b.Instrument.Quote+0.0001, got.Quote, 1e-15)

		c, err := b.Market.IndexCurve("EURIBOR6M")
		require.NoError(t, err)
		assert.InDelta(t, c.DiscountFactor(d), inPlace[b.Instrument.Name()], 1e-14, b.Instrument.Name())
	}

	// The base view is untouched by either path.
	orig, _ := base.Instrument("IRS-EURIBOR6M-5Y")
	assert.Equal(t, 0.030, orig.Quote)

	rel, err := base.BumpedMarkets(&instrument.Filter{Names: []string{"IRS-ESTR-5Y"}}, BumpRelative)
	require.NoError(t, err)
	require.Len(t, rel, 1)
	got, _ := rel[0].Market.Instrument("IRS-ESTR-5Y")
	assert.InDelta(t, 0.028*1.0001, got.Quote, 1e-15)

	stop := errors.New("stop")
	err = base.BumpInPlace(nil, BumpAbsolute, func(BumpedMarket) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestParseBumpType(t *testing.T) {
	t.Parallel()

	bt, err := ParseBumpType("relative")
	require.NoError(t, err)
	assert.Equal(t, BumpRelative, bt)
	bt, err = ParseBumpType("")
	require.NoError(t, err)
	assert.Equal(t, BumpAbsolute, bt)
	_, err = ParseBumpType("fixed")
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	v := eurMarket(t)
	v.AddIndexFixings(index.ESTR, []Fixing{{dates.YMD(2024, time.January, 9), 0.039}})
	require.NoError(t, v.AddSpotFX(currency.EUR, currency.USD, 1.09))
	_, err := v.AddCurve(flatSpec("USD-FLAT", 0.05))
	require.NoError(t, err)

	b, err := json.Marshal(v)
	require.NoError(t, err)

	var got View
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "eur", got.Name())
	assert.Equal(t, pricing, got.PricingDate())
	assert.Equal(t, v.CurveNames(), got.CurveNames())
	assert.Len(t, got.Instruments(), 6)

	d := pricing.AddDate(8, 0, 0)
	for _, n := range v.CurveNames() {
		want, _ := v.CurveByName(n)
		c, err := got.CurveByName(n)
		require.NoError(t, err)
		assert.InDelta(t, want.DiscountFactor(d), c.DiscountFactor(d), 1e-12, n)
	}
	fx, err := got.SpotFX(currency.USD, currency.EUR)
	require.NoError(t, err)
	assert.InDelta(t, 1/1.09, fx, 1e-15)
	f, ok := got.Fixing("ESTR", dates.YMD(2024, time.January, 9))
	assert.True(t, ok)
	assert.Equal(t, 0.039, f)

	assert.Error(t, json.Unmarshal([]byte(`{"name":"x","pricing_date":"2024-01-10","curves":[{"kind":"magic","spec":{}}]}`), &got))
}
