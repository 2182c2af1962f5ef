package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aqumen-Tech/aqumenlib/pricer"
	"github.com/Aqumen-Tech/aqumenlib/scenario"
)

func newScenarioCmd(a *app) *cobra.Command {
	var (
		marketPath, tradePath, scenarioPath string
		metric, format                      string
		window                              int
	)
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Reprice trades under quote scenarios and report the change in a metric",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("unknown format %q", format)
			}
			m, err := pricer.ParseMetric(metric)
			if err != nil {
				return err
			}
			if scenarioPath == "" {
				return fmt.Errorf("--scenarios is required")
			}
			scens, err := scenario.LoadFile(scenarioPath)
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
			res, err := scenario.CalculateImpact(cmd.Context(), scens, ps, m)
			if err != nil {
				return err
			}
			if format == "table" {
				return res.Table(cmd.OutOrStdout())
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&marketPath, "market", "", "market snapshot YAML")
	cmd.Flags().StringVar(&tradePath, "trade", "", "trade JSON file")
	cmd.Flags().StringVar(&scenarioPath, "scenarios", "", "scenario YAML file")
	cmd.Flags().StringVar(&metric, "metric", string(pricer.NativeModelValue), "metric to compare")
	cmd.Flags().StringVar(&format, "format", "json", "json or table")
	cmd.Flags().IntVar(&window, "window", 0, "quote store lookback in days")
	return cmd
}
