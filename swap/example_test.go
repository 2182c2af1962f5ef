package swap_test

import (
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
	"github.com/Aqumen-Tech/aqumenlib/swap"
)

func ExampleNewPricer() {
	insts, err := instrument.Default().CreateAll(map[string]float64{
		"IRS-ESTR-1Y":  0.038,
		"IRS-ESTR-5Y":  0.028,
		"IRS-ESTR-10Y": 0.027,
	})
	if err != nil {
		panic(err)
	}
	v := market.NewView("eod", dates.YMD(2024, time.January, 10))
	if _, err := v.AddBootstrappedDiscountingRateCurve("EUR-ESTR", insts, index.ESTR, curve.PiecewiseLogLinearDiscount); err != nil {
		panic(err)
	}

	f, err := instrument.Default().Family("IRS-ESTR")
	if err != nil {
		panic(err)
	}
	s := swap.FromFamily("IRS-ESTR-5Y", f.(*instrument.IRSwapFamily), v.PricingDate(), dates.MustTerm("5Y"), 0.03)

	tr := pricer.NewTradeInfo()
	tr.Amount = 10_000_000
	p, err := swap.NewPricer(s, v, tr)
	if err != nil {
		panic(err)
	}
	par, err := p.ParRate()
	if err != nil {
		panic(err)
	}
	npv, err := p.Value(pricer.NativeModelValue)
	if err != nil {
		panic(err)
	}
	fmt.Printf("par rate %.4f\n", par)
	fmt.Println("receiver in the money:", npv > 0)
	// Output:
	// par rate 0.0280
	// receiver in the money: true
}
