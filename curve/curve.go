// Package curve holds interpolated discount curves and the generic
// bootstrapper that calibrates them to quoted instruments.
package curve

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// TimeBasis is the day count of the curve time axis. Coupon accruals use
// their own leg day counts; only interpolation and zero rates use this.
const TimeBasis = dates.ACT365F

// Node is one calibrated point of a curve.
type Node struct {
	Date           time.Time
	Time           float64
	DiscountFactor float64
}

// Curve is a discount curve anchored at a reference date. Node 0 is the
// reference date itself with a discount factor of 1.
type Curve struct {
	ref    time.Time
	dates  []time.Time
	times  []float64
	dfs    []float64
	zeros  []float64 // continuously compounded; zeros[0] = zeros[1]
	spline *interp.NaturalCubic
	interp Interpolation
	spread float64
}

// New creates a curve from discount factors at the given dates. A leading
// date equal to ref is dropped; every other date must be after ref and the
// dates must be strictly increasing.
func New(ref time.Time, nodeDates []time.Time, dfs []float64, interpolation Interpolation) (*Curve, error) {
	if len(nodeDates) != len(dfs) {
		return nil, fmt.Errorf("curve.New: %d dates but %d discount factors", len(nodeDates), len(dfs))
	}
	ref = dates.Date(ref)
	if len(nodeDates) > 0 && dates.Date(nodeDates[0]).Equal(ref) {
		nodeDates, dfs = nodeDates[1:], dfs[1:]
	}
	if len(nodeDates) == 0 {
		return nil, fmt.Errorf("curve.New: need at least one node after %s", dates.Format(ref))
	}
	if interpolation == "" {
		interpolation = DefaultInterpolation
	}
	c := &Curve{
		ref:    ref,
		dates:  make([]time.Time, 0, len(nodeDates)+1),
		times:  make([]float64, 0, len(nodeDates)+1),
		dfs:    make([]float64, 0, len(nodeDates)+1),
		interp: interpolation,
	}
	c.dates = append(c.dates, ref)
	c.times = append(c.times, 0)
	c.dfs = append(c.dfs, 1)
	for i, d := range nodeDates {
		d = dates.Date(d)
		if !d.After(c.dates[len(c.dates)-1]) {
			return nil, fmt.Errorf("curve.New: node %s is not after %s", dates.Format(d), dates.Format(c.dates[len(c.dates)-1]))
		}
		if !(dfs[i] > 0) {
			return nil, fmt.Errorf("curve.New: non-positive discount factor %g at %s", dfs[i], dates.Format(d))
		}
		c.dates = append(c.dates, d)
		c.times = append(c.times, dates.YearFraction(ref, d, TimeBasis))
		c.dfs = append(c.dfs, dfs[i])
	}
	c.refresh()
	return c, nil
}

// refresh recomputes the zero rates and the spline after node changes.
func (c *Curve) refresh() {
	if !c.interp.zeroBased() {
		c.zeros, c.spline = nil, nil
		return
	}
	if len(c.zeros) != len(c.dfs) {
		c.zeros = make([]float64, len(c.dfs))
	}
	for i := 1; i < len(c.dfs); i++ {
		c.zeros[i] = -math.Log(c.dfs[i]) / c.times[i]
	}
	c.zeros[0] = c.zeros[1]
	c.spline = nil
	if c.interp == PiecewiseNaturalCubicZero {
		c.spline = fitSpline(c.times, c.zeros)
	}
}

// ReferenceDate is the date at which the discount factor is 1.
func (c *Curve) ReferenceDate() time.Time { return c.ref }

// Interpolation returns the interpolation method.
func (c *Curve) Interpolation() Interpolation { return c.interp }

// TimeOf converts a date to curve time.
func (c *Curve) TimeOf(d time.Time) float64 {
	return dates.YearFraction(c.ref, d, TimeBasis)
}

// DiscountFactor returns the discount factor for a payment on d.
func (c *Curve) DiscountFactor(d time.Time) float64 {
	return c.DiscountFactorAt(c.TimeOf(d))
}

// DiscountFactorAt returns the discount factor at curve time t.
func (c *Curve) DiscountFactorAt(t float64) float64 {
	if t <= 0 {
		return 1
	}
	df := c.baseDF(t)
	if c.spread != 0 {
		df *= math.Exp(-c.spread * t)
	}
	return df
}

func (c *Curve) baseDF(t float64) float64 {
	last := len(c.times) - 1
	switch c.interp {
	case PiecewiseLinearZero:
		if t >= c.times[last] {
			return math.Exp(-c.zeros[last] * t)
		}
		return math.Exp(-linearZero(c.times, c.zeros, t) * t)
	case PiecewiseNaturalCubicZero:
		if t >= c.times[last] {
			return math.Exp(-c.zeros[last] * t)
		}
		if c.spline == nil {
			return math.Exp(-linearZero(c.times, c.zeros, t) * t)
		}
		return math.Exp(-c.spline.Predict(t) * t)
	case PiecewiseLinearDiscount:
		if t >= c.times[last] {
			return logLinearDF(c.times, c.dfs, t)
		}
		return linearDF(c.times, c.dfs, t)
	default:
		return logLinearDF(c.times, c.dfs, t)
	}
}

// ZeroRate returns the annually compounded zero rate to d on an ACT/365F basis.
func (c *Curve) ZeroRate(d time.Time) float64 {
	t := c.TimeOf(d)
	if t <= 0 {
		t = 1.0 / 365.0
	}
	return math.Pow(c.DiscountFactorAt(t), -1/t) - 1
}

// ContinuousZeroRate returns the continuously compounded zero rate to d.
func (c *Curve) ContinuousZeroRate(d time.Time) float64 {
	t := c.TimeOf(d)
	if t <= 0 {
		t = 1.0 / 365.0
	}
	return -math.Log(c.DiscountFactorAt(t)) / t
}

// ForwardRate returns the simply compounded forward rate between start and
// end, accrued on dc.
func (c *Curve) ForwardRate(start, end time.Time, dc dates.DayCount) float64 {
	tau := dates.YearFraction(start, end, dc)
	if tau == 0 {
		return 0
	}
	return (c.DiscountFactor(start)/c.DiscountFactor(end) - 1) / tau
}

// Nodes returns the curve nodes including the reference node.
func (c *Curve) Nodes() []Node {
	out := make([]Node, len(c.dates))
	for i := range c.dates {
		out[i] = Node{Date: c.dates[i], Time: c.times[i], DiscountFactor: c.dfs[i]}
	}
	return out
}

// PillarDates returns the node dates after the reference date.
func (c *Curve) PillarDates() []time.Time {
	out := make([]time.Time, len(c.dates)-1)
	copy(out, c.dates[1:])
	return out
}

// Spread returns a copy of the curve with a continuously compounded zero
// spread s added on top of any existing spread.
func (c *Curve) Spread(s float64) *Curve {
	out := *c
	out.spread += s
	return &out
}

// ZeroSpread is the spread applied by Spread, zero for calibrated curves.
func (c *Curve) ZeroSpread() float64 { return c.spread }

func (c *Curve) String() string {
	return fmt.Sprintf("Curve(%s, %s, %d nodes)", dates.Format(c.ref), c.interp, len(c.dates)-1)
}
