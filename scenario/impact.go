package scenario

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/metrics"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// Row is the value of one metric for one pricer under one scenario.
type Row struct {
	Pricer        string        `json:"pricer" yaml:"pricer"`
	Scenario      string        `json:"scenario" yaml:"scenario"`
	Metric        pricer.Metric `json:"metric" yaml:"metric"`
	BaseValue     float64       `json:"base_value" yaml:"base_value"`
	ScenarioValue float64       `json:"scenario_value" yaml:"scenario_value"`
	AbsChange     float64       `json:"abs_change" yaml:"abs_change"`
	// RelChange is AbsChange/BaseValue, or 0 when the base value is 0.
	RelChange float64 `json:"rel_change" yaml:"rel_change"`
}

func newRow(pricerName, scenarioName string, m pricer.Metric, base, scen float64) Row {
	r := Row{Pricer: pricerName, Scenario: scenarioName, Metric: m, BaseValue: base, ScenarioValue: scen, AbsChange: scen - base}
	if base != 0 {
		r.RelChange = r.AbsChange / base
	}
	return r
}

// Result is a table of scenario rows.
type Result struct {
	ID   string `json:"id" yaml:"id"`
	Rows []Row  `json:"rows" yaml:"rows"`
}

// Combine concatenates the rows of several results.
func Combine(results ...*Result) *Result {
	out := &Result{ID: uuid.NewString()}
	for _, r := range results {
		if r != nil {
			out.Rows = append(out.Rows, r.Rows...)
		}
	}
	return out
}

// Table writes the rows sorted by pricer and scenario.
func (r *Result) Table(w io.Writer) error {
	rows := append([]Row(nil), r.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Pricer != rows[j].Pricer {
			return rows[i].Pricer < rows[j].Pricer
		}
		return rows[i].Scenario < rows[j].Scenario
	})
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Pricer\tScenario\tMetric\tBase Value\tScen Value\tAbs Diff\tPercent Diff\t")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Pricer, row.Scenario, row.Metric,
			pricer.Money(row.BaseValue), pricer.Money(row.ScenarioValue), pricer.Money(row.AbsChange),
			decimal.NewFromFloat(row.RelChange*100).StringFixed(2))
	}
	return tw.Flush()
}

// metricValue reduces any numeric metric to a number; per-currency
// metrics are converted to the reporting currency.
func metricValue(p pricer.Pricer, m pricer.Metric) (float64, error) {
	if !m.PerCurrency() {
		return p.Value(m)
	}
	vals, err := p.Values(m)
	if err != nil {
		return 0, err
	}
	if len(vals) == 1 {
		for c, a := range vals {
			if c == p.Currency() {
				return a, nil
			}
		}
	}
	return pricer.ConvertToReporting(vals, p.Market(), reportingCurrency())
}

func reportingCurrency() currency.Currency {
	return pricer.GetSettings().ReportingCurrency
}

// CalculateImpact values metric for every pricer in its base market and in
// each scenario market. Scenarios run concurrently; a scenario market is
// built once per distinct base market.
func CalculateImpact(ctx context.Context, scenarios []Scenario, pricers []pricer.Pricer, metric pricer.Metric) (*Result, error) {
	if metric == pricer.CashflowsMetric || metric == pricer.CurrencyMetric {
		return nil, fmt.Errorf("CalculateImpact: metric %s is not numeric", metric)
	}
	base := make([]float64, len(pricers))
	for i, p := range pricers {
		v, err := metricValue(p, metric)
		if err != nil {
			return nil, fmt.Errorf("CalculateImpact: base %s: %w", p.Name(), err)
		}
		base[i] = v
	}

	rows := make([][]Row, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for si, sc := range scenarios {
		g.Go(func() error {
			markets := map[*market.View]*market.View{}
			out := make([]Row, 0, len(pricers))
			for i, p := range pricers {
				if err := ctx.Err(); err != nil {
					return err
				}
				sv, ok := markets[p.Market()]
				if !ok {
					var err error
					sv, err = sc.CreateMarket(p.Market())
					if err != nil {
						return err
					}
					markets[p.Market()] = sv
				}
				sp, err := p.WithMarket(sv)
				if err != nil {
					return fmt.Errorf("scenario %s: %s: %w", sc.Name(), p.Name(), err)
				}
				val, err := metricValue(sp, metric)
				if err != nil {
					return fmt.Errorf("scenario %s: %s: %w", sc.Name(), p.Name(), err)
				}
				out = append(out, newRow(p.Name(), sc.Name(), metric, base[i], val))
			}
			metrics.AddRepricings("scenario", len(pricers))
			rows[si] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("CalculateImpact: %w", err)
	}
	res := &Result{ID: uuid.NewString()}
	for _, r := range rows {
		res.Rows = append(res.Rows, r...)
	}
	zap.L().Named("scenario").Info("scenario impact computed",
		zap.String("id", res.ID),
		zap.Int("scenarios", len(scenarios)),
		zap.Int("pricers", len(pricers)),
		zap.String("metric", string(metric)))
	return res, nil
}
