package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

type curvePoint struct {
	Date           string  `json:"date"`
	Tenor          string  `json:"tenor,omitempty"`
	Time           float64 `json:"time"`
	DiscountFactor float64 `json:"discount_factor"`
	ZeroRate       float64 `json:"zero_rate"`
}

type curveOutput struct {
	Name   string       `json:"name"`
	Nodes  []curvePoint `json:"nodes"`
	Points []curvePoint `json:"points,omitempty"`
}

func newCurveCmd(a *app) *cobra.Command {
	var (
		marketPath string
		names      string
		tenors     string
		window     int
	)
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Build the curves of a market snapshot and print their nodes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.loadMarket(cmd.Context(), marketPath, window)
			if err != nil {
				return err
			}
			selected := splitList(names)
			if len(selected) == 0 {
				selected = v.CurveNames()
			}
			var terms []dates.Term
			for _, s := range splitList(tenors) {
				t, err := dates.ParseTerm(s)
				if err != nil {
					return err
				}
				terms = append(terms, t)
			}
			out := make([]curveOutput, 0, len(selected))
			for _, n := range selected {
				c, err := v.CurveByName(n)
				if err != nil {
					return err
				}
				co := curveOutput{Name: n}
				for _, nd := range c.Nodes() {
					co.Nodes = append(co.Nodes, point(c, nd.Date, ""))
				}
				for _, t := range terms {
					co.Points = append(co.Points, point(c, t.AddTo(v.PricingDate(), 1), t.String()))
				}
				out = append(out, co)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&marketPath, "market", "", "market snapshot YAML")
	cmd.Flags().StringVar(&names, "curve", "", "comma separated curve names; all when empty")
	cmd.Flags().StringVar(&tenors, "tenors", "", "comma separated tenors to sample, e.g. 1Y,5Y,10Y")
	cmd.Flags().IntVar(&window, "window", 0, "quote store lookback in days")
	return cmd
}

func point(c *curve.Curve, d time.Time, tenor string) curvePoint {
	return curvePoint{
		Date:           dates.Format(d),
		Tenor:          tenor,
		Time:           c.TimeOf(d),
		DiscountFactor: c.DiscountFactor(d),
		ZeroRate:       c.ZeroRate(d),
	}
}
