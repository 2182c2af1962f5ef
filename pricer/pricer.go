package pricer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/market"
)

// Pricer values one position against a market view.
type Pricer interface {
	Name() string
	Market() *market.View
	// WithMarket returns a copy of the pricer bound to another view.
	WithMarket(v *market.View) (Pricer, error)
	Currency() currency.Currency
	// Value returns scalar metrics such as NATIVE_MODEL_VALUE or YIELD.
	Value(m Metric) (float64, error)
	// Values returns per-currency metrics such as VALUE or RISK_VALUE.
	Values(m Metric) (currency.Amounts, error)
	Cashflows() (Cashflows, error)
}

// Calculate returns any metric: a currency for CURRENCY, Cashflows for
// CASHFLOWS, Amounts for per-currency metrics and a float64 otherwise.
func Calculate(p Pricer, m Metric) (any, error) {
	switch {
	case m == CurrencyMetric:
		return p.Currency(), nil
	case m == CashflowsMetric:
		return p.Cashflows()
	case m.PerCurrency():
		return p.Values(m)
	}
	return p.Value(m)
}

// TradeInfo holds the trade details that are not part of the product.
type TradeInfo struct {
	TradeID      string    `json:"trade_id" yaml:"trade_id"`
	Amount       float64   `json:"amount" yaml:"amount"`
	IsReceive    bool      `json:"is_receive" yaml:"is_receive"`
	Price        float64   `json:"price,omitempty" yaml:"price,omitempty"`
	TradeDate    time.Time `json:"trade_date,omitzero" yaml:"trade_date,omitempty"`
	SettleDate   time.Time `json:"settle_date,omitzero" yaml:"settle_date,omitempty"`
	Counterparty string    `json:"counterparty,omitempty" yaml:"counterparty,omitempty"`
	// CSAID selects a collateral-specific discounting curve.
	CSAID string `json:"csa_id,omitempty" yaml:"csa_id,omitempty"`
}

// NewTradeInfo returns a receive trade of 100 with a fresh id. Decode
// trade files into it so absent fields keep these defaults.
func NewTradeInfo() TradeInfo {
	return TradeInfo{TradeID: uuid.NewString(), Amount: 100, IsReceive: true}
}

// Direction is +1 for receive and -1 for pay.
func (t TradeInfo) Direction() float64 {
	if t.IsReceive {
		return 1
	}
	return -1
}

// Settings controls valuation defaults shared by all pricers.
type Settings struct {
	ReportingCurrency currency.Currency `mapstructure:"reporting_currency"`
}

var (
	settingsMu sync.RWMutex
	settings   = Settings{ReportingCurrency: currency.USD}
)

// SetSettings replaces the global pricer settings.
func SetSettings(s Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = s
}

// GetSettings returns the global pricer settings.
func GetSettings() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

// ToReporting converts a native amount to the reporting currency at spot.
func ToReporting(v *market.View, ccy currency.Currency, amount float64) (float64, error) {
	rep := GetSettings().ReportingCurrency
	fx, err := v.SpotFX(rep, ccy)
	if err != nil {
		return 0, fmt.Errorf("ToReporting: %w", err)
	}
	return amount / fx, nil
}

// ConvertToReporting sums per-currency amounts in ccy at spot.
func ConvertToReporting(amounts currency.Amounts, v *market.View, ccy currency.Currency) (float64, error) {
	total := 0.0
	for c, a := range amounts {
		fx, err := v.SpotFX(ccy, c)
		if err != nil {
			return 0, fmt.Errorf("ConvertToReporting: %w", err)
		}
		total += a / fx
	}
	return total, nil
}
