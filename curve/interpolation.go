package curve

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Interpolation selects how a curve is filled between its nodes.
type Interpolation string

const (
	// PiecewiseLogLinearDiscount interpolates ln(DF) linearly in time.
	PiecewiseLogLinearDiscount Interpolation = "PiecewiseLogLinearDiscount"
	// PiecewiseFlatForward holds the instantaneous forward constant between
	// nodes, which gives the same discount factors as log-linear DF.
	PiecewiseFlatForward Interpolation = "PiecewiseFlatForward"
	// PiecewiseLinearZero interpolates continuously compounded zero rates linearly.
	PiecewiseLinearZero Interpolation = "PiecewiseLinearZero"
	// PiecewiseNaturalCubicZero fits a natural cubic spline through zero rates.
	PiecewiseNaturalCubicZero Interpolation = "PiecewiseNaturalCubicZero"
	// PiecewiseLinearDiscount interpolates discount factors linearly.
	PiecewiseLinearDiscount Interpolation = "PiecewiseLinearDiscount"
)

// DefaultInterpolation is used when a spec leaves interpolation empty.
const DefaultInterpolation = PiecewiseLogLinearDiscount

// ParseInterpolation accepts the interpolation names case-insensitively.
func ParseInterpolation(s string) (Interpolation, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultInterpolation, nil
	}
	for _, i := range []Interpolation{
		PiecewiseLogLinearDiscount, PiecewiseFlatForward, PiecewiseLinearZero,
		PiecewiseNaturalCubicZero, PiecewiseLinearDiscount,
	} {
		if strings.EqualFold(string(i), strings.TrimSpace(s)) {
			return i, nil
		}
	}
	return "", fmt.Errorf("curve.ParseInterpolation: unknown interpolation %q", s)
}

// zeroBased reports whether the interpolation works on zero rates.
func (i Interpolation) zeroBased() bool {
	return i == PiecewiseLinearZero || i == PiecewiseNaturalCubicZero
}

// local reports whether moving one node only changes the curve next to it.
func (i Interpolation) local() bool {
	return i != PiecewiseNaturalCubicZero
}

// segment returns the index k of the first node with times[k] >= t, clamped to [1, n-1].
func segment(times []float64, t float64) int {
	k := sort.SearchFloat64s(times, t)
	if k < 1 {
		return 1
	}
	if k > len(times)-1 {
		return len(times) - 1
	}
	return k
}

func logLinearDF(times, dfs []float64, t float64) float64 {
	k := segment(times, t)
	t1, t2 := times[k-1], times[k]
	if t2 == t1 {
		return dfs[k]
	}
	forward := math.Log(dfs[k-1]/dfs[k]) / (t2 - t1)
	return dfs[k-1] * math.Exp(-forward*(t-t1))
}

func linearDF(times, dfs []float64, t float64) float64 {
	k := segment(times, t)
	t1, t2 := times[k-1], times[k]
	w := (t - t1) / (t2 - t1)
	return dfs[k-1] + w*(dfs[k]-dfs[k-1])
}

func linearZero(times, zeros []float64, t float64) float64 {
	k := segment(times, t)
	t1, t2 := times[k-1], times[k]
	w := (t - t1) / (t2 - t1)
	return zeros[k-1] + w*(zeros[k]-zeros[k-1])
}

// fitSpline fits a natural cubic spline through zero rates. With fewer than
// three distinct points the spline degenerates and nil is returned so callers
// fall back to linear zero.
func fitSpline(times, zeros []float64) *interp.NaturalCubic {
	if len(times) < 3 {
		return nil
	}
	var nc interp.NaturalCubic
	if err := nc.Fit(times, zeros); err != nil {
		return nil
	}
	return &nc
}
