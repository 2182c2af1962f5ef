package pricer

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// Cashflow kinds.
const (
	KindFixed      = "FIXED"
	KindFloating   = "FLOATING"
	KindRedemption = "REDEMPTION"
	KindSimple     = "SIMPLE"
	KindExchange   = "EXCHANGE"
)

// Cashflow is a single payment with the coupon details that produced it.
type Cashflow struct {
	Currency        currency.Currency `json:"currency" yaml:"currency"`
	Date            time.Time         `json:"date" yaml:"date"`
	Amount          float64           `json:"amount" yaml:"amount"`
	Notional        float64           `json:"notional,omitempty" yaml:"notional,omitempty"`
	Kind            string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	Index           string            `json:"index,omitempty" yaml:"index,omitempty"`
	Rate            float64           `json:"rate,omitempty" yaml:"rate,omitempty"`
	AccrualStart    time.Time         `json:"accrual_start,omitzero" yaml:"accrual_start,omitempty"`
	AccrualEnd      time.Time         `json:"accrual_end,omitzero" yaml:"accrual_end,omitempty"`
	AccrualFraction float64           `json:"accrual_fraction,omitempty" yaml:"accrual_fraction,omitempty"`
}

// Cashflows is a list of payments.
type Cashflows []Cashflow

// Total sums amounts per currency.
func (c Cashflows) Total() currency.Amounts {
	sums := map[currency.Currency]decimal.Decimal{}
	for _, f := range c {
		sums[f.Currency] = sums[f.Currency].Add(decimal.NewFromFloat(f.Amount))
	}
	out := make(currency.Amounts, len(sums))
	for ccy, d := range sums {
		out[ccy] = d.InexactFloat64()
	}
	return out
}

// From keeps the payments on or after d.
func (c Cashflows) From(d time.Time) Cashflows {
	var out Cashflows
	for _, f := range c {
		if !f.Date.Before(d) {
			out = append(out, f)
		}
	}
	return out
}

// Sorted orders by currency, date and notional.
func (c Cashflows) Sorted() Cashflows {
	out := append(Cashflows(nil), c...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Currency != b.Currency {
			return a.Currency < b.Currency
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Notional < b.Notional
	})
	return out
}

// Table writes the sorted flows with amounts rounded to cents.
func (c Cashflows) Table(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Currency\tDate\tAmount\tKind\tRate\tAccrual Start\tAccrual End\t")
	for _, f := range c.Sorted() {
		rate, start, end := "", "", ""
		if f.Rate != 0 {
			rate = decimal.NewFromFloat(f.Rate * 100).StringFixed(4) + "%"
		}
		if !f.AccrualStart.IsZero() {
			start, end = dates.Format(f.AccrualStart), dates.Format(f.AccrualEnd)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			f.Currency, dates.Format(f.Date), Money(f.Amount), f.Kind, rate, start, end)
	}
	return tw.Flush()
}

// Money renders an amount with two decimals and thousands separators.
func Money(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b = append(b, ',')
		}
		b = append(b, intPart[i])
	}
	return sign + string(b) + frac
}
