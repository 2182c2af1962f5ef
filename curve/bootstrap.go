package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Aqumen-Tech/aqumenlib/config"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// ErrNoConvergence is returned when a pillar cannot be calibrated.
var ErrNoConvergence = errors.New("bootstrap did not converge")

// Helper is a quoted instrument that pins one curve node.
type Helper interface {
	// Pillar is the latest date whose discount factor the helper depends on.
	Pillar() time.Time
	// Quote is the market quote to reproduce.
	Quote() float64
	// ImpliedQuote values the instrument off a trial curve.
	ImpliedQuote(c *Curve) (float64, error)
}

// Bootstrap calibrates a curve using the process-wide solver settings.
func Bootstrap(ref time.Time, helpers []Helper, interpolation Interpolation) (*Curve, error) {
	return BootstrapWith(ref, helpers, interpolation, config.GetSolver())
}

// BootstrapWith calibrates one node per helper, in pillar order.
//
// Each node is solved by damped Newton-Raphson on the quote error with a
// central-difference derivative, falling back to bisection. Local
// interpolations need a single sweep. The natural cubic spline moves earlier
// nodes when a later one changes, so sweeps repeat until no node moves by
// more than the tolerance.
func BootstrapWith(ref time.Time, helpers []Helper, interpolation Interpolation, s config.Solver) (*Curve, error) {
	if len(helpers) == 0 {
		return nil, fmt.Errorf("Bootstrap: no instruments")
	}
	if interpolation == "" {
		interpolation = DefaultInterpolation
	}
	ref = dates.Date(ref)

	sorted := make([]Helper, len(helpers))
	copy(sorted, helpers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pillar().Before(sorted[j].Pillar()) })

	n := len(sorted)
	c := &Curve{
		ref:    ref,
		dates:  make([]time.Time, n+1),
		times:  make([]float64, n+1),
		dfs:    make([]float64, n+1),
		interp: interpolation,
	}
	c.dates[0], c.dfs[0] = ref, 1
	for i, h := range sorted {
		p := dates.Date(h.Pillar())
		if !p.After(ref) {
			return nil, fmt.Errorf("Bootstrap: pillar %s is not after reference date %s", dates.Format(p), dates.Format(ref))
		}
		if i > 0 && p.Equal(c.dates[i]) {
			return nil, fmt.Errorf("Bootstrap: duplicate pillar %s", dates.Format(p))
		}
		c.dates[i+1] = p
		c.times[i+1] = dates.YearFraction(ref, p, TimeBasis)
	}

	log := zap.L().Named("curve")

	// First sweep: grow the curve one node at a time.
	for k := 1; k <= n; k++ {
		work := c.prefix(k)
		work.dfs[k] = initialGuess(work, k)
		if err := solveNode(work, k, sorted[k-1], s); err != nil {
			return nil, err
		}
	}

	if !interpolation.local() {
		converged := false
		for pass := 1; pass <= s.MaxPasses; pass++ {
			maxChange := 0.0
			for k := 1; k <= n; k++ {
				before := c.dfs[k]
				if err := solveNode(c, k, sorted[k-1], s); err != nil {
					return nil, err
				}
				maxChange = math.Max(maxChange, math.Abs(c.dfs[k]-before))
			}
			log.Debug("bootstrap pass", zap.Int("pass", pass), zap.Float64("max_change", maxChange))
			if maxChange < s.Tolerance {
				converged = true
				break
			}
		}
		if !converged {
			if worst, err := maxQuoteError(c, sorted); err != nil || worst > math.Sqrt(s.Tolerance) {
				return nil, fmt.Errorf("Bootstrap: %w after %d passes", ErrNoConvergence, s.MaxPasses)
			}
		}
	}
	c.refresh()
	log.Debug("bootstrapped curve", zap.Time("reference", ref), zap.Int("nodes", n), zap.String("interpolation", string(interpolation)))
	return c, nil
}

// prefix returns a curve over nodes [0, k] sharing storage with c.
func (c *Curve) prefix(k int) *Curve {
	return &Curve{
		ref:    c.ref,
		dates:  c.dates[:k+1],
		times:  c.times[:k+1],
		dfs:    c.dfs[:k+1],
		interp: c.interp,
	}
}

// initialGuess extends the previous segment's forward rate, or 3% for the first node.
func initialGuess(c *Curve, k int) float64 {
	if k >= 2 {
		dt := c.times[k-1] - c.times[k-2]
		if dt > 0 {
			fwd := math.Log(c.dfs[k-2]/c.dfs[k-1]) / dt
			return c.dfs[k-1] * math.Exp(-fwd*(c.times[k]-c.times[k-1]))
		}
	}
	return c.dfs[k-1] * math.Exp(-0.03*(c.times[k]-c.times[k-1]))
}

func maxQuoteError(c *Curve, helpers []Helper) (float64, error) {
	worst := 0.0
	for _, h := range helpers {
		q, err := h.ImpliedQuote(c)
		if err != nil {
			return 0, err
		}
		worst = math.Max(worst, math.Abs(q-h.Quote())/math.Max(1, math.Abs(h.Quote())))
	}
	return worst, nil
}

// solveNode sets c.dfs[k] so that h reprices to its quote.
func solveNode(c *Curve, k int, h Helper, s config.Solver) error {
	quote := h.Quote()
	tol := s.Tolerance * math.Max(1, math.Abs(quote))

	f := func(x float64) (float64, error) {
		c.dfs[k] = x
		c.refresh()
		q, err := h.ImpliedQuote(c)
		if err != nil {
			return 0, err
		}
		return q - quote, nil
	}

	x := c.dfs[k]
	if !(x > s.MinDiscountFactor) {
		x = c.dfs[k-1]
	}
	for iter := 0; iter < s.MaxIterations; iter++ {
		fx, err := f(x)
		if err != nil {
			return fmt.Errorf("Bootstrap: pillar %s: %w", dates.Format(c.dates[k]), err)
		}
		if math.Abs(fx) < tol {
			return nil
		}
		hstep := math.Max(1e-7*x, 1e-12)
		up, err := f(x + hstep)
		if err != nil {
			return fmt.Errorf("Bootstrap: pillar %s: %w", dates.Format(c.dates[k]), err)
		}
		down, err := f(x - hstep)
		if err != nil {
			return fmt.Errorf("Bootstrap: pillar %s: %w", dates.Format(c.dates[k]), err)
		}
		deriv := (up - down) / (2 * hstep)
		if math.IsNaN(deriv) || math.Abs(deriv) < s.DerivativeThreshold {
			break
		}
		delta := fx / deriv
		if limit := s.Damping * x; math.Abs(delta) > limit {
			delta = math.Copysign(limit, delta)
		}
		next := x - delta
		if math.IsNaN(next) || next < s.MinDiscountFactor {
			next = s.MinDiscountFactor
		}
		if math.Abs(next-x) <= 1e-16*x {
			// Step below machine precision: x is as good as it gets.
			x = next
			if _, err := f(x); err != nil {
				return err
			}
			return nil
		}
		x = next
	}
	return bisect(c, k, f, tol, s)
}

// bisect brackets the root in [MinDiscountFactor, 2 * previous DF].
func bisect(c *Curve, k int, f func(float64) (float64, error), tol float64, s config.Solver) error {
	lo, hi := s.MinDiscountFactor, 2*c.dfs[k-1]
	flo, err := f(lo)
	if err != nil {
		return fmt.Errorf("Bootstrap: pillar %s: %w", dates.Format(c.dates[k]), err)
	}
	fhi, err := f(hi)
	if err != nil {
		return fmt.Errorf("Bootstrap: pillar %s: %w", dates.Format(c.dates[k]), err)
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return fmt.Errorf("Bootstrap: pillar %s: %w: root not bracketed", dates.Format(c.dates[k]), ErrNoConvergence)
	}
	for iter := 0; iter < 200; iter++ {
		mid := 0.5 * (lo + hi)
		fm, err := f(mid)
		if err != nil {
			return fmt.Errorf("Bootstrap: pillar %s: %w", dates.Format(c.dates[k]), err)
		}
		if math.Abs(fm) < tol || hi-lo <= 1e-16*hi {
			return nil
		}
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return fmt.Errorf("Bootstrap: pillar %s: %w", dates.Format(c.dates[k]), ErrNoConvergence)
}
