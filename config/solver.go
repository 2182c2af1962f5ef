package config

import "sync"

// Solver holds root-finding and curve construction parameters.
type Solver struct {
	// Tolerance is the absolute quote error accepted when calibrating a pillar.
	Tolerance float64 `mapstructure:"tolerance"`

	// MaxIterations bounds Newton-Raphson steps per pillar.
	MaxIterations int `mapstructure:"max_iterations"`

	// Damping limits the Newton step size to prevent overshooting.
	// A step is clamped to Damping * current guess.
	Damping float64 `mapstructure:"damping"`

	// MinDiscountFactor is the floor for discount factors.
	MinDiscountFactor float64 `mapstructure:"min_discount_factor"`

	// DerivativeThreshold is the smallest derivative magnitude Newton will divide by.
	DerivativeThreshold float64 `mapstructure:"derivative_threshold"`

	// MaxPasses bounds full re-calibration sweeps for non-local interpolation.
	MaxPasses int `mapstructure:"max_passes"`
}

// DefaultSolver provides production-ready default values.
var DefaultSolver = Solver{
	Tolerance:           1e-12,
	MaxIterations:       100,
	Damping:             0.5,
	MinDiscountFactor:   1e-9,
	DerivativeThreshold: 1e-15,
	MaxPasses:           30,
}

var (
	solverMu sync.RWMutex
	solver   = DefaultSolver
)

// SetSolver replaces the active solver settings.
func SetSolver(s Solver) {
	solverMu.Lock()
	solver = s
	solverMu.Unlock()
}

// GetSolver returns the active solver settings.
func GetSolver() Solver {
	solverMu.RLock()
	defer solverMu.RUnlock()
	return solver
}
