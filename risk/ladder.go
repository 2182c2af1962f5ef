package risk

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// Row is the sensitivity of the value in one currency to one instrument.
type Row struct {
	RiskCurrency currency.Currency     `json:"risk_currency" yaml:"risk_currency"`
	Instrument   string                `json:"instrument" yaml:"instrument"`
	Risk         float64               `json:"risk" yaml:"risk"`
	Family       string                `json:"family" yaml:"family"`
	Specifics    string                `json:"specifics" yaml:"specifics"`
	InstCurrency currency.Currency     `json:"instrument_currency" yaml:"instrument_currency"`
	Quote        float64               `json:"quote" yaml:"quote"`
	AssetClass   instrument.AssetClass `json:"asset_class" yaml:"asset_class"`
	RiskType     instrument.RiskType   `json:"risk_type" yaml:"risk_type"`
	// TenorTime is nil when the instrument has no tenor.
	TenorTime *float64 `json:"tenor_time,omitempty" yaml:"tenor_time,omitempty"`
}

// Ladder is the result of a risk run.
type Ladder struct {
	ID   string `json:"id" yaml:"id"`
	Rows []Row  `json:"rows" yaml:"rows"`
}

func (l *Ladder) merge(rows []Row) {
	at := make(map[[2]string]int, len(l.Rows))
	for i, r := range l.Rows {
		at[[2]string{string(r.RiskCurrency), r.Instrument}] = i
	}
	for _, r := range rows {
		k := [2]string{string(r.RiskCurrency), r.Instrument}
		if i, ok := at[k]; ok {
			l.Rows[i].Risk += r.Risk
			continue
		}
		at[k] = len(l.Rows)
		l.Rows = append(l.Rows, r)
	}
}

func (l *Ladder) removeZeros(threshold float64) {
	if threshold <= 0 {
		return
	}
	kept := l.Rows[:0]
	for _, r := range l.Rows {
		if math.Abs(r.Risk) >= threshold {
			kept = append(kept, r)
		}
	}
	l.Rows = kept
}

// sort orders rows by risk currency, family and tenor time; rows without
// a tenor go last within their family.
func (l *Ladder) sort() {
	sort.SliceStable(l.Rows, func(i, j int) bool {
		a, b := l.Rows[i], l.Rows[j]
		if a.RiskCurrency != b.RiskCurrency {
			return a.RiskCurrency < b.RiskCurrency
		}
		if a.Family != b.Family {
			return a.Family < b.Family
		}
		switch {
		case a.TenorTime == nil:
			return false
		case b.TenorTime == nil:
			return true
		}
		return *a.TenorTime < *b.TenorTime
	})
}

// TotalForFamily sums the rows of an instrument family over all currencies.
func (l *Ladder) TotalForFamily(family string) float64 {
	total := 0.0
	for _, r := range l.Rows {
		if r.Family == family {
			total += r.Risk
		}
	}
	return total
}

// TotalForRiskType sums the rows of a risk type in one risk currency.
func (l *Ladder) TotalForRiskType(rt instrument.RiskType, ccy currency.Currency) float64 {
	total := 0.0
	for _, r := range l.Rows {
		if r.RiskType == rt && r.RiskCurrency == ccy {
			total += r.Risk
		}
	}
	return total
}

// ByCurrency sums the rows per risk currency.
func (l *Ladder) ByCurrency() currency.Amounts {
	out := currency.Amounts{}
	for _, r := range l.Rows {
		out[r.RiskCurrency] += r.Risk
	}
	return out
}

// Table writes the ladder as an aligned text table.
func (l *Ladder) Table(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Risk Ccy\tInstrument\tRisk\tFamily\tSpecifics\tInstr Ccy\tQuote\tAsset Class\tRisk Class\tTime\t")
	for _, r := range l.Rows {
		t := ""
		if r.TenorTime != nil {
			t = decimal.NewFromFloat(*r.TenorTime).StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.RiskCurrency, r.Instrument, pricer.Money(r.Risk), r.Family, r.Specifics,
			r.InstCurrency, decimal.NewFromFloat(r.Quote).String(), r.AssetClass, r.RiskType, t)
	}
	return tw.Flush()
}

func sortCurrencies(cs []currency.Currency) {
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
}
