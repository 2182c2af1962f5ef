package instrument

import (
	"fmt"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

type iborConvention struct {
	index     *index.RateIndex
	frequency dates.Frequency
	dayCount  dates.DayCount
}

var iborSwapConventions = []iborConvention{
	{index.BBSW3M, dates.Quarterly, dates.ACT365F},
	{index.BBSW6M, dates.Semiannual, dates.ACT365F},
	{index.BKBM3M, dates.Semiannual, dates.ACT365F},
	{index.BUBOR6M, dates.Annual, dates.ACT365F},
	{index.CIBOR6M, dates.Annual, dates.Thirty360},
	{index.EURIBOR3M, dates.Annual, dates.Thirty360},
	{index.EURIBOR6M, dates.Annual, dates.Thirty360},
	{index.HIBOR3M, dates.Quarterly, dates.ACT365F},
	{index.JIBAR3M, dates.Quarterly, dates.ACT365F},
	{index.NIBOR6M, dates.Annual, dates.Thirty360},
	{index.PRIBOR6M, dates.Annual, dates.ACT365F},
	{index.STIBOR3M, dates.Annual, dates.Thirty360},
	{index.TIIE28D, dates.Annual, dates.ACT360},
	{index.WIBOR6M, dates.Annual, dates.ACTACTISDA},
}

var oisSettleDays = []struct {
	index  *index.RateIndex
	settle int
}{
	{index.AONIA, 2},
	{index.CORRA, 1},
	{index.FEDFUNDS, 1},
	{index.ESTR, 1},
	{index.SARON, 2},
	{index.SOFR, 2},
	{index.SONIA, 1},
	{index.TONAR, 2},
}

// zeroCurrencies are the currencies with ZCB- and Cash- families.
var zeroCurrencies = []currency.Currency{
	currency.EUR, currency.GBP, currency.USD, currency.MXN, currency.CHF, currency.CNY,
	currency.SEK, currency.JPY, currency.NZD, currency.CAD, currency.AUD, currency.SGD,
	currency.KRW, currency.IDR, currency.THB, currency.MYR, currency.PLN, currency.DKK,
	currency.PEN, currency.NOK, currency.ILS, currency.RON, currency.COP, currency.CLP,
	currency.CZK, currency.HUF, currency.BRL, currency.ZAR, currency.EGP, currency.TRY,
	currency.ARS, currency.RUB, currency.PHP, currency.HKD,
}

var fxSwapPairs = []struct {
	base, quote currency.Currency
	calendar    calendar.CalendarID
}{
	{currency.EUR, currency.USD, calendar.TARGET},
	{currency.GBP, currency.USD, calendar.GBLO},
	{currency.USD, currency.JPY, calendar.USNY},
	{currency.EUR, currency.GBP, calendar.TARGET},
	{currency.EUR, currency.AUD, calendar.TARGET},
	{currency.AUD, currency.USD, calendar.USNY},
	{currency.USD, currency.CAD, calendar.USNY},
	{currency.EUR, currency.CHF, calendar.TARGET},
}

func registerBuiltins(r *Registry) {
	for _, o := range oisSettleDays {
		r.AddFamily(NewIRSwapFamily("IRS-"+o.index.Name, o.index, IRSwapFamily{SettleDays: o.settle}))
	}
	for _, c := range iborSwapConventions {
		r.AddFamily(NewIRSwapFamily("IRS-"+c.index.Name, c.index, IRSwapFamily{
			FixedFrequency: c.frequency,
			FixedDayCount:  c.dayCount,
			SettleDays:     -1,
		}))
	}

	euribor := []*index.RateIndex{index.EURIBOR1M, index.EURIBOR3M, index.EURIBOR6M, index.EURIBOR12M}
	for _, ix := range euribor {
		r.AddFamily(mustBasis(fmt.Sprintf("IRS-ESTR-%s", ix.Name), index.ESTR, ix))
	}
	for i, ix1 := range euribor {
		for _, ix2 := range euribor[i+1:] {
			r.AddFamily(mustBasis(fmt.Sprintf("IRS-%s-%s", ix1.Name, ix2.Name), ix1, ix2))
		}
	}

	for _, ccy := range zeroCurrencies {
		r.AddFamily(NewZeroCouponBondFamily("ZCB-"+string(ccy), ccy, 0))
		r.AddFamily(NewCashDepoFamily("Cash-"+string(ccy), ccy, 2))
	}

	for _, fx := range fxSwapPairs {
		r.AddFamily(NewFXSwapFamily(fx.base, fx.quote, fx.calendar))
	}

	for _, sym := range []string{"SR1", "SR3"} {
		f, err := NewOIFutureFamily("ICE", sym)
		if err != nil {
			panic(err)
		}
		r.AddFamily(f)
	}
}

func mustBasis(name string, ix1, ix2 *index.RateIndex) *IRBasisSwapFamily {
	f, err := NewIRBasisSwapFamily(name, ix1, ix2)
	if err != nil {
		panic(err)
	}
	return f
}
