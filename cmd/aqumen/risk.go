package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/risk"
)

func newRiskCmd(a *app) *cobra.Command {
	var (
		marketPath, tradePath string
		families, currencies  string
		bumpType, format      string
		inPlace               bool
		threshold             float64
		window                int
	)
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Bump market instruments one at a time and report the value sensitivities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("unknown format %q", format)
			}
			bt, err := market.ParseBumpType(bumpType)
			if err != nil {
				return err
			}
			v, err := a.loadMarket(cmd.Context(), marketPath, window)
			if err != nil {
				return err
			}
			ps, err := loadPricers(tradePath, v)
			if err != nil {
				return err
			}
			opts := risk.Options{
				BumpType:            bt,
				InPlace:             inPlace,
				RemoveZeroThreshold: a.settings.Risk.RemoveZeroThreshold,
				Concurrency:         a.settings.Risk.Concurrency,
			}
			if cmd.Flags().Changed("threshold") {
				opts.RemoveZeroThreshold = threshold
			}
			if fs, cs := splitList(families), splitList(currencies); len(fs) > 0 || len(cs) > 0 {
				opts.Filter = &instrument.Filter{Families: fs}
				for _, c := range cs {
					ccy, err := currency.Parse(c)
					if err != nil {
						return err
					}
					opts.Filter.Currencies = append(opts.Filter.Currencies, ccy)
				}
			}
			ladder, err := risk.Calculate(cmd.Context(), ps, opts)
			if err != nil {
				return err
			}
			if format == "table" {
				return ladder.Table(cmd.OutOrStdout())
			}
			return writeJSON(cmd.OutOrStdout(), ladder)
		},
	}
	cmd.Flags().StringVar(&marketPath, "market", "", "market snapshot YAML")
	cmd.Flags().StringVar(&tradePath, "trade", "", "trade JSON file")
	cmd.Flags().StringVar(&families, "filter-family", "", "comma separated instrument families to bump")
	cmd.Flags().StringVar(&currencies, "filter-currency", "", "comma separated instrument currencies to bump")
	cmd.Flags().StringVar(&bumpType, "bump-type", string(market.BumpAbsolute), "ABSOLUTE or RELATIVE")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "bump a single working market sequentially")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "drop rows with smaller absolute risk; defaults to risk.remove_zero_threshold")
	cmd.Flags().StringVar(&format, "format", "json", "json or table")
	cmd.Flags().IntVar(&window, "window", 0, "quote store lookback in days")
	return cmd
}
