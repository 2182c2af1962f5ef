// Package scenario builds shocked market views by adjusting instrument
// quotes and measures how pricer metrics respond.
package scenario

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
)

// Scenario turns a market view into a scenario view.
type Scenario interface {
	Name() string
	CreateMarket(v *market.View) (*market.View, error)
}

// AdjustQuotesScenario changes the quotes of the instruments its adjusters
// select. Each instrument gets the first adjuster that matches it.
type AdjustQuotesScenario struct {
	ScenarioName string
	Adjusters    []SelectiveQuoteAdjuster
}

var _ Scenario = (*AdjustQuotesScenario)(nil)

// NewAdjustQuotesScenario adjusts every instrument passing filter by value.
func NewAdjustQuotesScenario(name string, t AdjustmentType, value float64, filter *instrument.Filter) *AdjustQuotesScenario {
	return &AdjustQuotesScenario{
		ScenarioName: name,
		Adjusters:    []SelectiveQuoteAdjuster{{Adjuster: SimpleQuoteAdjuster{Type: t, Value: value}, Filter: filter}},
	}
}

// NewCurveShapeScenario adjusts instruments by a function of their tenor time.
func NewCurveShapeScenario(name string, t AdjustmentType, shape func(float64) float64, filter *instrument.Filter) *AdjustQuotesScenario {
	return &AdjustQuotesScenario{
		ScenarioName: name,
		Adjusters:    []SelectiveQuoteAdjuster{{Adjuster: TermStructureQuoteAdjuster{Type: t, Func: shape}, Filter: filter}},
	}
}

func (s *AdjustQuotesScenario) Name() string { return s.ScenarioName }

// CreateMarket returns a new view with the adjusted quotes; v is unchanged.
func (s *AdjustQuotesScenario) CreateMarket(v *market.View) (*market.View, error) {
	var changed []instrument.Instrument
	for _, inst := range v.Instruments() {
		for _, adj := range s.Adjusters {
			if !adj.Matches(inst) {
				continue
			}
			q, err := adj.Adjuster.Adjust(inst, v.PricingDate())
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %s: %w", s.ScenarioName, inst.Name(), err)
			}
			changed = append(changed, inst.WithQuote(q))
			break
		}
	}
	zap.L().Named("scenario").Debug("scenario market",
		zap.String("scenario", s.ScenarioName),
		zap.Int("adjusted", len(changed)))
	nv, err := v.WithInstruments(changed)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.ScenarioName, err)
	}
	return nv, nil
}
