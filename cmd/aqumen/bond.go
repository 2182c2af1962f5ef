package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aqumen-Tech/aqumenlib/bond"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
)

type fwdYieldOutput struct {
	TradeID         string  `json:"trade_id"`
	Name            string  `json:"name"`
	DeliveryDate    string  `json:"delivery_date"`
	FuturesPrice    float64 `json:"futures_price"`
	InvoicePrice    float64 `json:"invoice_price"`
	AccruedInterest float64 `json:"accrued_interest"`
	ForwardYield    float64 `json:"forward_yield"`
}

type aswOutput struct {
	TradeID        string  `json:"trade_id"`
	Name           string  `json:"name"`
	SettlementDate string  `json:"settlement_date"`
	FloatIndex     string  `json:"float_index"`
	DirtyPrice     float64 `json:"dirty_price"`
	PVBondRF       float64 `json:"pv_bond_rf"`
	PV01           float64 `json:"pv01"`
	Spread         float64 `json:"spread"`
	SpreadBP       float64 `json:"spread_bp"`
}

func newBondCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bond",
		Short: "Bond analytics: futures forward yield and asset swap spread",
	}
	cmd.AddCommand(newFwdYieldCmd(a), newASWCmd(a))
	return cmd
}

// bondPricers keeps only the bond trades of a trade file.
func bondPricers(path string, v *market.View) ([]*bond.Pricer, error) {
	ps, err := loadPricers(path, v)
	if err != nil {
		return nil, err
	}
	var out []*bond.Pricer
	for _, p := range ps {
		if bp, ok := p.(*bond.Pricer); ok {
			out = append(out, bp)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s holds no bond trades", path)
	}
	return out, nil
}

func newFwdYieldCmd(a *app) *cobra.Command {
	var (
		marketPath, tradePath, delivery string
		futuresPrice, cf                float64
	)
	cmd := &cobra.Command{
		Use:   "fwdyield",
		Short: "Solve the forward yield implied by a bond futures price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := dates.Parse(delivery)
			if err != nil {
				return fmt.Errorf("--delivery: %w", err)
			}
			v, err := a.loadMarket(cmd.Context(), marketPath, 0)
			if err != nil {
				return err
			}
			ps, err := bondPricers(tradePath, v)
			if err != nil {
				return err
			}
			out := make([]fwdYieldOutput, 0, len(ps))
			for _, p := range ps {
				r, err := p.ForwardYield(d, futuresPrice, cf)
				if err != nil {
					return err
				}
				out = append(out, fwdYieldOutput{
					TradeID:         p.Trade().TradeID,
					Name:            p.Name(),
					DeliveryDate:    dates.Format(d),
					FuturesPrice:    futuresPrice,
					InvoicePrice:    r.InvoicePrice,
					AccruedInterest: r.AccruedInterest,
					ForwardYield:    r.ForwardYield,
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&marketPath, "market", "", "market snapshot YAML")
	cmd.Flags().StringVar(&tradePath, "trade", "", "trade JSON file with bond trades")
	cmd.Flags().StringVar(&delivery, "delivery", "", "futures delivery date")
	cmd.Flags().Float64Var(&futuresPrice, "futures-price", 0, "futures price per 100")
	cmd.Flags().Float64Var(&cf, "conversion-factor", 1, "conversion factor of the bond")
	return cmd
}

func newASWCmd(a *app) *cobra.Command {
	var marketPath, tradePath, indexName string
	cmd := &cobra.Command{
		Use:   "asw",
		Short: "Par asset swap spread of bonds over a floating index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.loadMarket(cmd.Context(), marketPath, 0)
			if err != nil {
				return err
			}
			ps, err := bondPricers(tradePath, v)
			if err != nil {
				return err
			}
			out := make([]aswOutput, 0, len(ps))
			for _, p := range ps {
				ix, err := aswIndex(p, indexName)
				if err != nil {
					return err
				}
				disc, err := v.DiscountingCurve(p.Currency(), p.Trade().CSAID)
				if err != nil {
					return err
				}
				flows, err := p.Bond().Cashflows()
				if err != nil {
					return err
				}
				r, err := bond.ComputeASWSpread(bond.ASWInput{
					SettlementDate: p.SettlementDate(),
					DirtyPrice:     p.DirtyPrice(),
					Cashflows:      flows,
					FloatIndex:     ix,
					DiscountCurve:  disc,
				})
				if err != nil {
					return fmt.Errorf("%s: %w", p.Name(), err)
				}
				out = append(out, aswOutput{
					TradeID:        p.Trade().TradeID,
					Name:           p.Name(),
					SettlementDate: dates.Format(p.SettlementDate()),
					FloatIndex:     ix.Name,
					DirtyPrice:     p.DirtyPrice(),
					PVBondRF:       r.PVBondRF,
					PV01:           r.PV01,
					Spread:         r.Spread,
					SpreadBP:       r.Spread * 1e4,
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&marketPath, "market", "", "market snapshot YAML")
	cmd.Flags().StringVar(&tradePath, "trade", "", "trade JSON file with bond trades")
	cmd.Flags().StringVar(&indexName, "index", "", "floating index; defaults to the swap index of the bond type")
	return cmd
}

func aswIndex(p *bond.Pricer, name string) (*index.RateIndex, error) {
	if name != "" {
		return index.Lookup(name)
	}
	if ix := p.Bond().Type.SwapIndex; ix != nil {
		return ix, nil
	}
	return nil, pricer.Unsupported(p.Name(), pricer.AssetSwapSpread)
}
