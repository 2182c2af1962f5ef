package market

import (
	"fmt"
	"sort"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/currency"
)

// AddSpotFX stores the price of one unit of c1 in c2.
func (v *View) AddSpotFX(c1, c2 currency.Currency, rate float64) error {
	if c1 == c2 {
		return fmt.Errorf("AddSpotFX: cannot add a rate for identical currencies %s", c1)
	}
	if rate <= 0 {
		return fmt.Errorf("AddSpotFX: %s%s rate must be positive, got %g", c1, c2, rate)
	}
	if v.fx[c1] == nil {
		v.fx[c1] = map[currency.Currency]float64{}
	}
	v.fx[c1][c2] = rate
	return nil
}

// SpotFX returns the c1c2 rate: stored directly, as an inverse, or
// triangulated through a third currency.
func (v *View) SpotFX(c1, c2 currency.Currency) (float64, error) {
	if c1 == c2 {
		return 1, nil
	}
	if r, ok := v.quotedFX(c1, c2); ok {
		return r, nil
	}
	for _, via := range v.fxCurrencies() {
		if via == c1 || via == c2 {
			continue
		}
		r1, ok1 := v.quotedFX(c1, via)
		r2, ok2 := v.quotedFX(via, c2)
		if ok1 && ok2 {
			return r1 * r2, nil
		}
	}
	return 0, fmt.Errorf("SpotFX: %w: %s%s", ErrFXNotFound, c1, c2)
}

func (v *View) quotedFX(c1, c2 currency.Currency) (float64, bool) {
	if r, ok := v.fx[c1][c2]; ok {
		return r, true
	}
	if r, ok := v.fx[c2][c1]; ok {
		return 1 / r, true
	}
	return 0, false
}

func (v *View) fxCurrencies() []currency.Currency {
	seen := map[currency.Currency]struct{}{}
	for c1, m := range v.fx {
		seen[c1] = struct{}{}
		for c2 := range m {
			seen[c2] = struct{}{}
		}
	}
	out := make([]currency.Currency, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ForwardFX projects the c1c2 rate to d from the discounting curves of
// both currencies, or of the given CSA ids when set.
func (v *View) ForwardFX(d time.Time, c1, c2 currency.Currency, csa1, csa2 string) (float64, error) {
	if c1 == c2 {
		return 1, nil
	}
	spot, err := v.SpotFX(c1, c2)
	if err != nil {
		return 0, fmt.Errorf("ForwardFX: %w", err)
	}
	dc1, err := v.DiscountingCurve(c1, csa1)
	if err != nil {
		return 0, fmt.Errorf("ForwardFX: %w", err)
	}
	dc2, err := v.DiscountingCurve(c2, csa2)
	if err != nil {
		return 0, fmt.Errorf("ForwardFX: %w", err)
	}
	return spot * dc1.DiscountFactor(d) / dc2.DiscountFactor(d), nil
}

// Convert turns an amount in from into to at spot.
func (v *View) Convert(amount float64, from, to currency.Currency) (float64, error) {
	r, err := v.SpotFX(from, to)
	if err != nil {
		return 0, err
	}
	return amount * r, nil
}
