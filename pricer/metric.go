// Package pricer defines the valuation interface shared by product
// pricers, trade details, cash flows and a pricer for fixed cash flows.
package pricer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedMetric is returned when a pricer cannot produce a metric.
var ErrUnsupportedMetric = errors.New("unsupported metric")

// Metric names a result a pricer can compute.
//
// MARKET values come from the quote of the security itself, MODEL values
// from discounting with the market's curves. NATIVE values are in the
// product currency and REPORTING values are converted to the reporting
// currency; plain VALUE metrics are per currency.
type Metric string

const (
	Value                Metric = "VALUE"
	MarketValue          Metric = "MARKET_VALUE"
	ModelValue           Metric = "MODEL_VALUE"
	NativeMarketValue    Metric = "NATIVE_MARKET_VALUE"
	NativeModelValue     Metric = "NATIVE_MODEL_VALUE"
	ReportingValue       Metric = "REPORTING_VALUE"
	ReportingMarketValue Metric = "REPORTING_MARKET_VALUE"
	ReportingModelValue  Metric = "REPORTING_MODEL_VALUE"
	RiskValue            Metric = "RISK_VALUE"
	CurrencyMetric       Metric = "CURRENCY"
	CashflowsMetric      Metric = "CASHFLOWS"
	IRR                  Metric = "IRR"
	Yield                Metric = "YIELD"
	Duration             Metric = "DURATION"
	DurationMacaulay     Metric = "DURATION_MACAULAY"
	Convexity            Metric = "CONVEXITY"
	ZSpread              Metric = "ZSPREAD"
	ParRate              Metric = "PAR_RATE"
	ParSpread            Metric = "PAR_SPREAD"
	AssetSwapSpread      Metric = "ASW_SPREAD"
	ForwardPoints        Metric = "FORWARD_POINTS"
	FuturesPrice         Metric = "FUTURES_PRICE"
)

var allMetrics = []Metric{
	Value, MarketValue, ModelValue, NativeMarketValue, NativeModelValue,
	ReportingValue, ReportingMarketValue, ReportingModelValue, RiskValue,
	CurrencyMetric, CashflowsMetric, IRR, Yield, Duration, DurationMacaulay,
	Convexity, ZSpread, ParRate, ParSpread, AssetSwapSpread, ForwardPoints,
	FuturesPrice,
}

// Metrics lists every metric.
func Metrics() []Metric {
	return append([]Metric(nil), allMetrics...)
}

// ParseMetric accepts a metric name in any case.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range allMetrics {
		if k == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("ParseMetric: unknown metric %q", s)
}

// PerCurrency reports whether the metric is returned by Values rather than Value.
func (m Metric) PerCurrency() bool {
	switch m {
	case Value, MarketValue, ModelValue, RiskValue:
		return true
	}
	return false
}

// Unsupported wraps ErrUnsupportedMetric for a pricer name.
func Unsupported(name string, m Metric) error {
	return fmt.Errorf("%s: %w: %s", name, ErrUnsupportedMetric, m)
}
