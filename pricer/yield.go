package pricer

import (
	"fmt"
	"math"

	"github.com/Aqumen-Tech/aqumenlib/curve"
)

// TimedFlow is an amount paid T years after the valuation date.
type TimedFlow struct {
	T      float64
	Amount float64
}

const (
	yieldTolerance = 1e-12
	yieldMaxIter   = 100
	yieldFloor     = -0.5
	yieldCeiling   = 2.0
)

// PriceAtYield discounts flows at yield y compounded freq times a year
// and returns the price with its first and second derivatives in y.
//
//	price   = Σ CF_k (1+y/f)^(-f t_k)
//	dP/dy   = Σ -t_k CF_k (1+y/f)^(-f t_k - 1)
//	d2P/dy2 = Σ t_k (f t_k + 1)/f CF_k (1+y/f)^(-f t_k - 2)
func PriceAtYield(flows []TimedFlow, y float64, freq int) (price, d1, d2 float64) {
	f := float64(freq)
	base := 1 + y/f
	for _, cf := range flows {
		n := f * cf.T
		disc := math.Pow(base, -n)
		price += cf.Amount * disc
		d1 -= cf.T * cf.Amount * disc / base
		d2 += cf.T * (n + 1) / f * cf.Amount * disc / (base * base)
	}
	return price, d1, d2
}

// SolveYield finds y with PriceAtYield(flows, y, freq) == target by
// Newton-Raphson with the analytic derivative, clamped to a sane range.
func SolveYield(flows []TimedFlow, target float64, freq int) (float64, error) {
	if len(flows) == 0 {
		return 0, fmt.Errorf("SolveYield: no cash flows")
	}
	if freq <= 0 {
		return 0, fmt.Errorf("SolveYield: frequency must be positive, got %d", freq)
	}
	y := 0.05
	for iter := 0; iter < yieldMaxIter; iter++ {
		price, dPdy, _ := PriceAtYield(flows, y, freq)
		f := price - target
		if math.Abs(f) < yieldTolerance*math.Max(1, math.Abs(target)) {
			return y, nil
		}
		if math.Abs(dPdy) < 1e-15 {
			return y, fmt.Errorf("SolveYield: derivative too small at iter %d", iter)
		}
		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}
	return y, fmt.Errorf("SolveYield: did not converge after %d iterations", yieldMaxIter)
}

// Risk holds yield-based sensitivities of a flow set.
type Risk struct {
	Modified  float64
	Macaulay  float64
	Convexity float64
}

// YieldRisk computes modified and Macaulay duration and convexity at y.
func YieldRisk(flows []TimedFlow, y float64, freq int) (Risk, error) {
	price, d1, d2 := PriceAtYield(flows, y, freq)
	if price == 0 {
		return Risk{}, fmt.Errorf("YieldRisk: zero price")
	}
	mod := -d1 / price
	return Risk{
		Modified:  mod,
		Macaulay:  mod * (1 + y/float64(freq)),
		Convexity: d2 / price,
	}, nil
}

// SolveZSpread finds the continuously compounded spread over c at which
// the flows are worth target.
func SolveZSpread(c *curve.Curve, flows Cashflows, target float64) (float64, error) {
	if len(flows) == 0 {
		return 0, fmt.Errorf("SolveZSpread: no cash flows")
	}
	discounted := make([]TimedFlow, len(flows))
	for i, f := range flows {
		discounted[i] = TimedFlow{T: c.TimeOf(f.Date), Amount: f.Amount * c.DiscountFactor(f.Date)}
	}
	z := 0.0
	for iter := 0; iter < yieldMaxIter; iter++ {
		price, deriv := 0.0, 0.0
		for _, f := range discounted {
			pv := f.Amount * math.Exp(-z*f.T)
			price += pv
			deriv -= f.T * pv
		}
		diff := price - target
		if math.Abs(diff) < yieldTolerance*math.Max(1, math.Abs(target)) {
			return z, nil
		}
		if math.Abs(deriv) < 1e-15 {
			return z, fmt.Errorf("SolveZSpread: derivative too small at iter %d", iter)
		}
		z = clamp(z-diff/deriv, -yieldCeiling, yieldCeiling)
	}
	return z, fmt.Errorf("SolveZSpread: did not converge after %d iterations", yieldMaxIter)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
