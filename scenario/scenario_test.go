package scenario_test

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
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
	"github.com/Aqumen-Tech/aqumenlib/pricer"
	"github.com/Aqumen-Tech/aqumenlib/scenario"
	"github.com/Aqumen-Tech/aqumenlib/swap"
)

var pricing = dates.YMD(2024, time.January, 10)

func estrMarket(t *testing.T) *market.View {
	t.Helper()
	insts, err := instrument.Default().CreateAll(map[string]float64{
		"IRS-ESTR-1Y":  0.038,
		"IRS-ESTR-5Y":  0.028,
		"IRS-ESTR-10Y": 0.027,
	})
	require.NoError(t, err)
	v := market.NewView("eur", pricing)
	_, err = v.AddBootstrappedDiscountingRateCurve("EUR-ESTR", insts, index.ESTR, curve.PiecewiseLogLinearDiscount)
	require.NoError(t, err)
	return v
}

func receiver(t *testing.T, v *market.View, tenor string, coupon float64) pricer.Pricer {
	t.Helper()
	f, err := instrument.Default().Family("IRS-ESTR")
	require.NoError(t, err)
	s := swap.FromFamily("ESTR-"+tenor, f.(*instrument.IRSwapFamily), pricing, dates.MustTerm(tenor), coupon)
	tr := pricer.NewTradeInfo()
	tr.TradeID = ""
	tr.Amount = 1e6
	p, err := swap.NewPricer(s, v, tr)
	require.NoError(t, err)
	return p
}

func quote(t *testing.T, v *market.View, name string) float64 {
	t.Helper()
	inst, err := v.Instrument(name)
	require.NoError(t, err)
	return inst.Quote
}

func TestAdjustmentTypes(t *testing.T) {
	t.Parallel()

	v := estrMarket(t)
	tests := []struct {
		name string
		typ  scenario.AdjustmentType
		val  float64
		want float64
	}{
		{"absolute", scenario.Absolute, 0.001, 0.029},
		{"relative", scenario.Relative, 0.5, 0.042},
		{"fixed", scenario.Fixed, 0.01, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scenario.NewAdjustQuotesScenario(tt.name, tt.typ, tt.val, &instrument.Filter{Names: []string{"IRS-ESTR-5Y"}})
			nv, err := s.CreateMarket(v)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, quote(t, nv, "IRS-ESTR-5Y"), 1e-15)
			assert.InDelta(t, 0.038, quote(t, nv, "IRS-ESTR-1Y"), 0)
			assert.InDelta(t, 0.028, quote(t, v, "IRS-ESTR-5Y"), 0)
		})
	}
}

func TestParseAdjustmentType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]scenario.AdjustmentType{"": scenario.Absolute, "relative": scenario.Relative, " FIXED ": scenario.Fixed} {
		got, err := scenario.ParseAdjustmentType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := scenario.ParseAdjustmentType("log")
	assert.Error(t, err)
}

func TestShapes(t *testing.T) {
	t.Parallel()

	lin := scenario.LinearShape(0.001, 0.0002)
	assert.InDelta(t, 0.003, lin(10), 1e-15)

	pw := scenario.PiecewiseShape([]scenario.Point{{T: 10, V: 0.002}, {T: 2, V: -0.002}})
	assert.InDelta(t, -0.002, pw(0.5), 0)
	assert.InDelta(t, 0.0, pw(6), 1e-15)
	assert.InDelta(t, 0.002, pw(30), 0)
	assert.Zero(t, scenario.PiecewiseShape(nil)(5))
}

func TestCurveShapeScenario(t *testing.T) {
	t.Parallel()

	v := estrMarket(t)
	s := scenario.NewCurveShapeScenario("steepener", scenario.Absolute, scenario.LinearShape(0, 0.0001), nil)
	nv, err := s.CreateMarket(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.0381, quote(t, nv, "IRS-ESTR-1Y"), 1e-15)
	assert.InDelta(t, 0.0285, quote(t, nv, "IRS-ESTR-5Y"), 1e-15)
	assert.InDelta(t, 0.028, quote(t, nv, "IRS-ESTR-10Y"), 1e-15)
}

func TestFirstMatchingAdjusterWins(t *testing.T) {
	t.Parallel()

	v := estrMarket(t)
	s := &scenario.AdjustQuotesScenario{
		ScenarioName: "layered",
		Adjusters: []scenario.SelectiveQuoteAdjuster{
			{Adjuster: scenario.SimpleQuoteAdjuster{Type: scenario.Fixed, Value: 0.05}, Filter: &instrument.Filter{Names: []string{"IRS-ESTR-1Y"}}},
			{Adjuster: scenario.SimpleQuoteAdjuster{Type: scenario.Absolute, Value: 0.01}},
		},
	}
	nv, err := s.CreateMarket(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, quote(t, nv, "IRS-ESTR-1Y"), 0)
	assert.InDelta(t, 0.038, quote(t, nv, "IRS-ESTR-5Y"), 1e-15)
}

func TestCalculateImpact(t *testing.T) {
	v := estrMarket(t)
	atPar := receiver(t, v, "5Y", 0.028)
	offMarket := receiver(t, v, "10Y", 0.03)

	up := scenario.NewAdjustQuotesScenario("up10", scenario.Absolute, 0.001, nil)
	down := scenario.NewAdjustQuotesScenario("down10", scenario.Absolute, -0.001, &instrument.Filter{Currencies: []currency.Currency{currency.EUR}})

	res, err := scenario.CalculateImpact(context.Background(), []scenario.Scenario{up, down}, []pricer.Pricer{atPar, offMarket}, pricer.NativeModelValue)
	require.NoError(t, err)
	require.Len(t, res.Rows, 4)
	assert.NotEmpty(t, res.ID)

	upPar := res.Rows[0]
	assert.Equal(t, "up10", upPar.Scenario)
	assert.Equal(t, "ESTR-5Y", upPar.Pricer)
	assert.Less(t, upPar.AbsChange, 0.0)
	assert.InDelta(t, upPar.ScenarioValue-upPar.BaseValue, upPar.AbsChange, 1e-9)
	assert.False(t, math.IsNaN(upPar.RelChange))

	downPar := res.Rows[2]
	assert.Equal(t, "down10", downPar.Scenario)
	assert.Greater(t, downPar.AbsChange, 0.0)

	vals, err := scenario.CalculateImpact(context.Background(), []scenario.Scenario{up}, []pricer.Pricer{atPar}, pricer.Value)
	require.NoError(t, err)
	assert.InDelta(t, upPar.ScenarioValue, vals.Rows[0].ScenarioValue, 1e-6)

	_, err = scenario.CalculateImpact(context.Background(), []scenario.Scenario{up}, []pricer.Pricer{atPar}, pricer.CashflowsMetric)
	assert.Error(t, err)

	all := scenario.Combine(res, vals, nil)
	assert.Len(t, all.Rows, 5)
	var buf bytes.Buffer
	require.NoError(t, all.Table(&buf))
	assert.Contains(t, buf.String(), "Percent Diff")
	assert.Contains(t, buf.String(), "down10")
}

func TestCalculateImpactWithFixingsConcurrently(t *testing.T) {
	t.Parallel()

	v := estrMarket(t)
	v.AddIndexFixings(index.ESTR, []market.Fixing{
		{Date: dates.YMD(2024, time.January, 8), Value: 0.039},
		{Date: dates.YMD(2024, time.January, 9), Value: 0.0391},
	})
	p := receiver(t, v, "5Y", 0.028)

	var scens []scenario.Scenario
	for i := range 8 {
		scens = append(scens, scenario.NewAdjustQuotesScenario(fmt.Sprintf("shift%d", i), scenario.Absolute, float64(i)*0.0001, nil))
	}
	res, err := scenario.CalculateImpact(context.Background(), scens, []pricer.Pricer{p}, pricer.NativeModelValue)
	require.NoError(t, err)
	require.Len(t, res.Rows, 8)
	assert.InDelta(t, 0, res.Rows[0].AbsChange, 1e-6)
	assert.Less(t, res.Rows[7].AbsChange, res.Rows[1].AbsChange)
	assert.Len(t, v.IndexFixings("ESTR"), 2)
}

func TestZeroBaseHasZeroRelativeChange(t *testing.T) {
	t.Parallel()

	v := estrMarket(t)
	p := receiver(t, v, "5Y", 0.028)
	fixed := scenario.NewAdjustQuotesScenario("noop", scenario.Absolute, 0, nil)
	res, err := scenario.CalculateImpact(context.Background(), []scenario.Scenario{fixed}, []pricer.Pricer{p}, pricer.ParSpread)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 0, res.Rows[0].AbsChange, 1e-12)
	assert.False(t, math.IsNaN(res.Rows[0].RelChange))
	assert.False(t, math.IsInf(res.Rows[0].RelChange, 0))
}

const scenariosYAML = `
scenarios:
  - name: parallel_up_10bp
    type: ABSOLUTE
    value: 0.001
    filter: {currencies: [EUR]}
  - name: steepener
    linear: {intercept: -0.0005, slope: 0.0001}
  - name: twist
    adjusters:
      - piecewise: [{t: 1, v: -0.001}, {t: 10, v: 0.001}]
        filter: {families: [IRS-ESTR]}
      - type: relative
        value: 0.1
`

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenariosYAML), 0o600))
	scs, err := scenario.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, scs, 3)
	assert.Equal(t, "parallel_up_10bp", scs[0].Name())

	v := estrMarket(t)
	nv, err := scs[2].CreateMarket(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.038-0.001+0.002*(1-1)/9, quote(t, nv, "IRS-ESTR-1Y"), 1e-12)
	assert.InDelta(t, 0.028+0.001*(-1+2*4.0/9), quote(t, nv, "IRS-ESTR-5Y"), 1e-12)
	assert.InDelta(t, 0.028, quote(t, nv, "IRS-ESTR-10Y"), 1e-12)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	bad := []string{
		"scenarios:\n  - name: a\n",
		"scenarios:\n  - value: 0.1\n",
		"scenarios:\n  - name: a\n    value: 0.1\n    linear: {slope: 1}\n",
		"scenarios:\n  - name: a\n    value: 0.1\n  - name: a\n    value: 0.2\n",
		"scenarios:\n  - name: a\n    value: 0.1\n    colour: red\n",
		"scenarios:\n  - name: a\n    type: log\n    value: 0.1\n",
	}
	for _, in := range bad {
		_, err := scenario.Decode(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}
