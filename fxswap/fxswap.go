// Package fxswap prices FX swaps and FX forwards, discounting each
// currency's flows on its own or a collateral-specific curve.
package fxswap

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

// FXSwap exchanges one unit of Base for BaseFX units of Quote on Start and
// swaps them back at BaseFX+ForwardPoints on Maturity. The trade amount
// scales the base notional.
type FXSwap struct {
	Name          string
	Base          currency.Currency
	Quote         currency.Currency
	Start         time.Time
	Maturity      time.Time
	BaseFX        float64
	ForwardPoints float64
	// ForwardOnly drops the near exchange, leaving an FX forward.
	ForwardOnly bool
}

// FromFamily returns the spot-starting swap that a calibration instrument
// of family f with the given tenor represents.
func FromFamily(name string, f *instrument.FXSwapFamily, pricing time.Time, tenor dates.Term, spot, points float64) *FXSwap {
	start, end := f.SpotAndMaturity(pricing, tenor)
	return &FXSwap{
		Name:          name,
		Base:          f.Base,
		Quote:         f.Quote,
		Start:         start,
		Maturity:      end,
		BaseFX:        spot,
		ForwardPoints: points,
	}
}

// Validate checks the currencies, dates and rate.
func (s *FXSwap) Validate() error {
	switch {
	case s.Base == "" || s.Quote == "":
		return fmt.Errorf("fxswap %s: both currencies are required", s.Name)
	case s.Base == s.Quote:
		return fmt.Errorf("fxswap %s: base and quote are both %s", s.Name, s.Base)
	case !s.Maturity.After(s.Start):
		return fmt.Errorf("fxswap %s: maturity %s not after start %s", s.Name, dates.Format(s.Maturity), dates.Format(s.Start))
	case s.BaseFX <= 0:
		return fmt.Errorf("fxswap %s: base fx %g must be positive", s.Name, s.BaseFX)
	}
	return nil
}

// FarRate is the exchange rate of the far leg.
func (s *FXSwap) FarRate() float64 { return s.BaseFX + s.ForwardPoints }

type fxSwapJSON struct {
	Name          string  `json:"name"`
	Base          string  `json:"base_currency"`
	Quote         string  `json:"quote_currency"`
	Start         string  `json:"start_date"`
	Maturity      string  `json:"maturity_date"`
	BaseFX        float64 `json:"base_fx"`
	ForwardPoints float64 `json:"forward_points"`
	ForwardOnly   bool    `json:"forward_only,omitempty"`
}

func (s *FXSwap) MarshalJSON() ([]byte, error) {
	return json.Marshal(fxSwapJSON{
		Name:          s.Name,
		Base:          string(s.Base),
		Quote:         string(s.Quote),
		Start:         dates.Format(s.Start),
		Maturity:      dates.Format(s.Maturity),
		BaseFX:        s.BaseFX,
		ForwardPoints: s.ForwardPoints,
		ForwardOnly:   s.ForwardOnly,
	})
}

// UnmarshalJSON decodes and validates a swap.
func (s *FXSwap) UnmarshalJSON(b []byte) error {
	var in fxSwapJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("fxswap: %w", err)
	}
	base, err := currency.Parse(in.Base)
	if err != nil {
		return fmt.Errorf("fxswap %s: %w", in.Name, err)
	}
	quote, err := currency.Parse(in.Quote)
	if err != nil {
		return fmt.Errorf("fxswap %s: %w", in.Name, err)
	}
	start, err := dates.Parse(in.Start)
	if err != nil {
		return fmt.Errorf("fxswap %s: start_date: %w", in.Name, err)
	}
	maturity, err := dates.Parse(in.Maturity)
	if err != nil {
		return fmt.Errorf("fxswap %s: maturity_date: %w", in.Name, err)
	}
	*s = FXSwap{
		Name:          in.Name,
		Base:          base,
		Quote:         quote,
		Start:         start,
		Maturity:      maturity,
		BaseFX:        in.BaseFX,
		ForwardPoints: in.ForwardPoints,
		ForwardOnly:   in.ForwardOnly,
	}
	return s.Validate()
}
