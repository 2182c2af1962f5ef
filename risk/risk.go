// Package risk computes bump-and-reprice sensitivities of positions to
// the instruments their market views are calibrated from.
package risk

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/metrics"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

// DefaultRemoveZeroThreshold drops rows with smaller absolute sensitivity.
const DefaultRemoveZeroThreshold = 1e-5

// Options controls a ladder run.
type Options struct {
	// Filter limits the instruments bumped; nil bumps all of them.
	Filter   *instrument.Filter
	BumpType market.BumpType
	// InPlace bumps one working copy of each market sequentially instead
	// of building a separate market per bump.
	InPlace bool
	// RemoveZeroThreshold drops rows with |sensitivity| below it; 0 keeps
	// every row.
	RemoveZeroThreshold float64
	// Concurrency bounds the bumped markets repriced at once; 0 means
	// GOMAXPROCS.
	Concurrency int
}

// DefaultOptions bumps every instrument absolutely and drops zero rows.
func DefaultOptions() Options {
	return Options{BumpType: market.BumpAbsolute, RemoveZeroThreshold: DefaultRemoveZeroThreshold}
}

func (o Options) limit() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// Calculate bumps each instrument of the pricers' markets and records the
// change in RISK_VALUE per unit bump. Pricers sharing a market view are
// bumped together; the results of different views are summed by
// instrument and risk currency.
func Calculate(ctx context.Context, pricers []pricer.Pricer, opts Options) (*Ladder, error) {
	ladder := &Ladder{ID: uuid.NewString()}
	if len(pricers) == 0 {
		return ladder, nil
	}
	log := zap.L().Named("risk")

	var views []*market.View
	groups := map[*market.View][]pricer.Pricer{}
	for _, p := range pricers {
		v := p.Market()
		if _, ok := groups[v]; !ok {
			views = append(views, v)
		}
		groups[v] = append(groups[v], p)
	}

	for _, v := range views {
		ps := groups[v]
		base, err := riskValues(ps)
		if err != nil {
			return nil, fmt.Errorf("risk.Calculate: base values: %w", err)
		}
		var rows []Row
		if opts.InPlace {
			rows, err = inPlace(v, ps, base, opts)
		} else {
			rows, err = fullRebuild(ctx, v, ps, base, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("risk.Calculate: %s: %w", v.Name(), err)
		}
		ladder.merge(rows)
	}
	ladder.removeZeros(opts.RemoveZeroThreshold)
	ladder.sort()
	log.Info("risk ladder computed",
		zap.String("id", ladder.ID),
		zap.Int("pricers", len(pricers)),
		zap.Int("markets", len(views)),
		zap.Int("rows", len(ladder.Rows)),
		zap.Bool("in_place", opts.InPlace))
	return ladder, nil
}

func riskValues(ps []pricer.Pricer) (currency.Amounts, error) {
	out := currency.Amounts{}
	for _, p := range ps {
		vals, err := p.Values(pricer.RiskValue)
		if err != nil {
			return nil, err
		}
		for c, a := range vals {
			out[c] += a
		}
	}
	return out, nil
}

func bumpedValues(ps []pricer.Pricer, v *market.View) (currency.Amounts, error) {
	moved := make([]pricer.Pricer, 0, len(ps))
	for _, p := range ps {
		np, err := p.WithMarket(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		moved = append(moved, np)
	}
	metrics.AddRepricings("risk", len(moved))
	return riskValues(moved)
}

// fullRebuild builds each bumped market inside its worker so at most
// opts.limit() of them are alive at once, and stops scheduling bumps once
// ctx is done.
func fullRebuild(ctx context.Context, v *market.View, ps []pricer.Pricer, base currency.Amounts, opts Options) ([]Row, error) {
	insts := opts.Filter.Select(v.Instruments())
	results := make([][]Row, len(insts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.limit())
	for i, inst := range insts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bm, err := v.BumpedMarket(inst, opts.BumpType)
			if err != nil {
				return err
			}
			vals, err := bumpedValues(ps, bm.Market)
			if err != nil {
				return fmt.Errorf("%s: %w", inst.Name(), err)
			}
			results[i] = sensitivities(v, bm, base, vals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []Row
	for _, r := range results {
		rows = append(rows, r...)
	}
	return rows, nil
}

func inPlace(v *market.View, ps []pricer.Pricer, base currency.Amounts, opts Options) ([]Row, error) {
	var rows []Row
	err := v.BumpInPlace(opts.Filter, opts.BumpType, func(bm market.BumpedMarket) error {
		vals, err := bumpedValues(ps, bm.Market)
		if err != nil {
			return fmt.Errorf("%s: %w", bm.Instrument.Name(), err)
		}
		rows = append(rows, sensitivities(v, bm, base, vals)...)
		return nil
	})
	return rows, err
}

func sensitivities(v *market.View, bm market.BumpedMarket, base, bumped currency.Amounts) []Row {
	inst := bm.Instrument
	rows := make([]Row, 0, len(base))
	for _, c := range sortedCurrencies(base) {
		row := Row{
			RiskCurrency: c,
			Instrument:   inst.Name(),
			Risk:         (bumped[c] - base[c]) / bm.BumpSize,
			Family:       inst.Family().Name(),
			Specifics:    inst.Specifics(),
			InstCurrency: inst.Currency(),
			Quote:        inst.Quote,
			AssetClass:   inst.AssetClass(),
			RiskType:     inst.RiskType(),
		}
		if t, ok := inst.TenorTime(v.PricingDate()); ok {
			row.TenorTime = &t
		}
		rows = append(rows, row)
	}
	return rows
}

func sortedCurrencies(a currency.Amounts) []currency.Currency {
	out := make([]currency.Currency, 0, len(a))
	for c := range a {
		out = append(out, c)
	}
	sortCurrencies(out)
	return out
}
