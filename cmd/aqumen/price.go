package main

import (
	"github.com/spf13/cobra"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

type priceOutput struct {
	TradeID   string                   `json:"trade_id"`
	Name      string                   `json:"name"`
	Currency  currency.Currency        `json:"currency"`
	Metrics   map[pricer.Metric]any    `json:"metrics"`
	Errors    map[pricer.Metric]string `json:"errors,omitempty"`
	Cashflows pricer.Cashflows         `json:"cashflows,omitempty"`
}

// tradeIDer is implemented by pricers that carry their trade details.
type tradeIDer interface {
	Trade() pricer.TradeInfo
}

func newPriceCmd(a *app) *cobra.Command {
	var (
		marketPath, tradePath, metricList string
		withCashflows                     bool
		window                            int
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Value trades against a market snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ms := splitList(metricList)
			metrics := make([]pricer.Metric, 0, len(ms))
			for _, s := range ms {
				m, err := pricer.ParseMetric(s)
				if err != nil {
					return err
				}
				metrics = append(metrics, m)
			}
			v, err := a.loadMarket(cmd.Context(), marketPath, window)
			if err != nil {
				return err
			}
			ps, err := loadPricers(tradePath, v)
			if err != nil {
				return err
			}
			out := make([]priceOutput, 0, len(ps))
			for _, p := range ps {
				po := priceOutput{Name: p.Name(), Currency: p.Currency(), Metrics: map[pricer.Metric]any{}}
				if t, ok := p.(tradeIDer); ok {
					po.TradeID = t.Trade().TradeID
				}
				for _, m := range metrics {
					val, err := pricer.Calculate(p, m)
					if err != nil {
						if po.Errors == nil {
							po.Errors = map[pricer.Metric]string{}
						}
						po.Errors[m] = err.Error()
						continue
					}
					po.Metrics[m] = val
				}
				if withCashflows {
					if po.Cashflows, err = p.Cashflows(); err != nil {
						return err
					}
				}
				out = append(out, po)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&marketPath, "market", "", "market snapshot YAML")
	cmd.Flags().StringVar(&tradePath, "trade", "", "trade JSON file")
	cmd.Flags().StringVar(&metricList, "metrics", "VALUE,NATIVE_MODEL_VALUE", "comma separated metrics")
	cmd.Flags().BoolVar(&withCashflows, "cashflows", false, "include projected cashflows")
	cmd.Flags().IntVar(&window, "window", 0, "quote store lookback in days")
	return cmd
}
