package marketdata_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aqumen-Tech/aqumenlib/config"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/marketdata"
	"github.com/Aqumen-Tech/aqumenlib/quotestore"
)

const snapshot = `
name: eod
pricing_date: 2024-01-10
fx:
  - {base: EUR, quote: USD, rate: 1.1}
fixings:
  ESTR:
    - {date: 2024-01-08, value: 0.0391}
    - {date: 2024-01-09, value: 0.0390}
    - {date: 2024-01-06, value: 0.0390}
curves:
  - name: EUR-ESTR
    kind: discounting_rate
    index: ESTR
    instruments: {IRS-ESTR-1Y: 0.038, IRS-ESTR-5Y: 0.028, IRS-ESTR-10Y: 0.027}
  - name: EUR-EURIBOR6M
    kind: rate
    index: EURIBOR6M
    interpolation: PiecewiseLinearZero
    instruments: {IRS-EURIBOR6M-1Y: 0.039, IRS-EURIBOR6M-5Y: 0.030}
  - name: USD-FLAT
    kind: fixed
    currency: USD
    dates: [2025-01-10, 2034-01-10]
    discount_factors: [0.96, 0.67]
csa:
  EUR-CSA: EUR-ESTR
`

func TestLoadSnapshot(t *testing.T) {
	t.Parallel()

	v, err := marketdata.Load(context.Background(), strings.NewReader(snapshot), marketdata.Options{})
	require.NoError(t, err)
	assert.Equal(t, "eod", v.Name())
	assert.Equal(t, dates.YMD(2024, time.January, 10), v.PricingDate())
	assert.Equal(t, []string{"EUR-ESTR", "EUR-EURIBOR6M", "USD-FLAT"}, v.CurveNames())

	fx, err := v.SpotFX(currency.USD, currency.EUR)
	require.NoError(t, err)
	assert.InDelta(t, 1/1.1, fx, 1e-15)

	assert.Len(t, v.IndexFixings("ESTR"), 2)
	r, ok := v.Fixing("ESTR", dates.YMD(2024, time.January, 8))
	assert.True(t, ok)
	assert.InDelta(t, 0.0391, r, 0)

	csa, err := v.DiscountingCurve(currency.EUR, "EUR-CSA")
	require.NoError(t, err)
	eur, err := v.DiscountingCurve(currency.EUR, "")
	require.NoError(t, err)
	assert.Same(t, eur, csa)

	usd, err := v.DiscountingCurve(currency.USD, "")
	require.NoError(t, err)
	assert.InDelta(t, 0.96, usd.DiscountFactor(dates.YMD(2025, time.January, 10)), 1e-12)

	_, err = v.IndexCurve("EURIBOR6M")
	assert.NoError(t, err)
}

func TestLoadFromStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := quotestore.Open(ctx, config.Data{DBType: "sqlite", SQLiteDir: quotestore.MemoryDir})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.SaveQuotes(ctx, dates.YMD(2024, time.January, 9), []quotestore.Pair{
		{InstrumentID: "IRS-SOFR-1Y", Value: 0.05},
		{InstrumentID: "IRS-SOFR-5Y", Value: 0.041},
	}, "CLOSE", "TEST"))

	in := `
pricing_date: 2024-01-10
curves:
  - name: USD-SOFR
    kind: discounting_rate
    index: SOFR
    from_store: true
    instruments: {IRS-SOFR-1Y: ~, IRS-SOFR-5Y: ~}
`
	_, err = marketdata.Load(ctx, strings.NewReader(in), marketdata.Options{Store: store})
	require.Error(t, err, "quotes are a day old")

	v, err := marketdata.Load(ctx, strings.NewReader(in), marketdata.Options{Store: store, Window: 3})
	require.NoError(t, err)
	inst, err := v.Instrument("IRS-SOFR-5Y")
	require.NoError(t, err)
	assert.InDelta(t, 0.041, inst.Quote, 0)
	assert.Equal(t, "2024-01-10", v.Name())

	_, err = marketdata.Load(ctx, strings.NewReader(in), marketdata.Options{})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "market.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o600))
	v, err := marketdata.LoadFile(context.Background(), path, marketdata.Options{})
	require.NoError(t, err)
	assert.Len(t, v.Instruments(), 5)

	_, err = marketdata.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), marketdata.Options{})
	assert.Error(t, err)
}

func TestSnapshotErrors(t *testing.T) {
	t.Parallel()

	bad := map[string]string{
		"date":        "pricing_date: someday\ncurves: []\n",
		"unknown key": "pricing_date: 2024-01-10\nwibble: 1\n",
		"kind":        "pricing_date: 2024-01-10\ncurves:\n  - {name: X, kind: spline, instruments: {IRS-SOFR-1Y: 0.05}}\n",
		"no quote":    "pricing_date: 2024-01-10\ncurves:\n  - {name: X, kind: discounting_rate, index: SOFR, instruments: {IRS-SOFR-1Y: ~}}\n",
		"index":       "pricing_date: 2024-01-10\ncurves:\n  - {name: X, kind: rate, index: NOPE, instruments: {IRS-SOFR-1Y: 0.05}}\n",
		"fixed":       "pricing_date: 2024-01-10\ncurves:\n  - {name: X, kind: fixed, dates: [2025-01-10], discount_factors: [0.9, 0.8]}\n",
		"csa":         "pricing_date: 2024-01-10\ncurves: []\ncsa: {C: MISSING}\n",
		"fx":          "pricing_date: 2024-01-10\nfx: [{base: EUR, quote: EUR, rate: 1}]\n",
	}
	for name, in := range bad {
		_, err := marketdata.Load(context.Background(), strings.NewReader(in), marketdata.Options{})
		assert.Error(t, err, name)
	}
}
