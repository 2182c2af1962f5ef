package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Aqumen-Tech/aqumenlib/config"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/logging"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/marketdata"
	"github.com/Aqumen-Tech/aqumenlib/metrics"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
	"github.com/Aqumen-Tech/aqumenlib/quotestore"
)

// app carries what the persistent flags set up for every subcommand.
type app struct {
	configPath string
	logLevel   string
	metricsOut string

	settings config.Settings
	flush    func() error
	store    *quotestore.Store
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "aqumen",
		Short:         "Curve building, pricing, risk and scenarios for rates products",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (TOML or YAML); defaults to $"+config.EnvVar)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.metricsOut, "metrics-out", "", "write prometheus metrics to this file on exit")

	root.AddCommand(
		newCurveCmd(a),
		newPriceCmd(a),
		newRiskCmd(a),
		newScenarioCmd(a),
		newQuotesCmd(a),
		newBondCmd(a),
	)
	return root
}

func (a *app) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Set("logging.level", a.logLevel)
	}
	if err := cfg.Apply(); err != nil {
		return err
	}
	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	a.settings = s

	rep, err := currency.Parse(s.Pricing.ReportingCurrency)
	if err != nil {
		return fmt.Errorf("pricing.reporting_currency: %w", err)
	}
	pricer.SetSettings(pricer.Settings{ReportingCurrency: rep})

	flush, err := logging.Init(s.Logging, s.Name)
	if err != nil {
		return err
	}
	a.flush = flush
	zap.L().Debug("configuration loaded", zap.String("config_name", s.Name), zap.String("db_type", s.Data.DBType))
	return nil
}

// teardown runs after every command, failed or not.
func (a *app) teardown() error {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.metricsOut != "" {
		if err := metrics.WriteTextfile(a.metricsOut); err != nil {
			return err
		}
	}
	if a.flush != nil {
		_ = a.flush()
	}
	return nil
}

func (a *app) quoteStore(ctx context.Context) (*quotestore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := quotestore.Open(ctx, a.settings.Data)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// loadMarket builds a snapshot, opening the quote store only when a curve
// reads from it.
func (a *app) loadMarket(ctx context.Context, path string, window int) (*market.View, error) {
	if path == "" {
		return nil, fmt.Errorf("--market is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := marketdata.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts := marketdata.Options{Window: window}
	for _, c := range snap.Curves {
		if c.FromStore {
			if opts.Store, err = a.quoteStore(ctx); err != nil {
				return nil, err
			}
			break
		}
	}
	v, err := snap.Build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
