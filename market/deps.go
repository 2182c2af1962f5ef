package market

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/metrics"
)

// MaybeRebuild builds the named curve if it is not built, building its
// prerequisite curves first.
func (v *View) MaybeRebuild(name string) error {
	return v.rebuild(name, map[string]bool{})
}

func (v *View) rebuild(name string, visiting map[string]bool) error {
	e, ok := v.curves[name]
	if !ok {
		return fmt.Errorf("MaybeRebuild: %w: %s", ErrCurveNotFound, name)
	}
	if e.built != nil {
		return nil
	}
	if visiting[name] {
		return fmt.Errorf("MaybeRebuild: %w: %s", ErrCurveCycle, name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	for _, dep := range e.spec.PrerequisiteCurveIDs() {
		if err := v.rebuild(dep, visiting); err != nil {
			return err
		}
	}

	start := time.Now()
	c, err := e.spec.Build(v)
	elapsed := time.Since(start)
	metrics.ObserveCurveBuild(name, elapsed, err)
	if err != nil {
		return fmt.Errorf("MaybeRebuild: %w", err)
	}
	e.built = c
	v.logger().Debug("curve built",
		zap.String("curve", name),
		zap.String("kind", e.spec.Kind()),
		zap.Int("nodes", len(c.Nodes())),
		zap.Duration("elapsed", elapsed))
	return nil
}

// IndirectCurveDependencies lists every curve the named curve depends on,
// directly or through other curves, sorted by name.
func (v *View) IndirectCurveDependencies(name string) ([]string, error) {
	seen := map[string]struct{}{}
	if err := v.collectDeps(name, seen, map[string]bool{}); err != nil {
		return nil, err
	}
	return sortedKeys(seen), nil
}

func (v *View) collectDeps(name string, seen map[string]struct{}, visiting map[string]bool) error {
	e, ok := v.curves[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCurveNotFound, name)
	}
	if visiting[name] {
		return fmt.Errorf("%w: %s", ErrCurveCycle, name)
	}
	visiting[name] = true
	defer delete(visiting, name)
	for _, dep := range e.spec.PrerequisiteCurveIDs() {
		seen[dep] = struct{}{}
		if err := v.collectDeps(dep, seen, visiting); err != nil {
			return err
		}
	}
	return nil
}

// IndirectCurveInstruments lists every instrument the named curve depends
// on, including those of its prerequisite curves, sorted by name.
func (v *View) IndirectCurveInstruments(name string) ([]string, error) {
	deps, err := v.IndirectCurveDependencies(name)
	if err != nil {
		return nil, err
	}
	ids := map[string]struct{}{}
	for _, n := range append(deps, name) {
		for _, id := range v.curves[n].spec.PrerequisiteInstrumentIDs() {
			ids[id] = struct{}{}
		}
	}
	return sortedKeys(ids), nil
}

// WithInstruments returns a new view where the given instruments replace
// those of the same name. Exactly the curves that depend on a changed
// instrument are rebuilt; v is left untouched.
func (v *View) WithInstruments(insts []instrument.Instrument) (*View, error) {
	nv := v.Clone()
	if _, _, err := nv.applyQuotes(insts); err != nil {
		return nil, fmt.Errorf("WithInstruments: %w", err)
	}
	return nv, nil
}

// applyQuotes swaps instruments in place, resets and rebuilds the affected
// curves and returns what it replaced so the caller can undo it.
func (v *View) applyQuotes(insts []instrument.Instrument) (oldInsts map[string]instrument.Instrument, oldCurves map[string]*curve.Curve, err error) {
	changed := map[string]struct{}{}
	oldInsts = map[string]instrument.Instrument{}
	for _, inst := range insts {
		if old, ok := v.instruments[inst.Name()]; ok {
			oldInsts[inst.Name()] = old
		}
		v.instruments[inst.Name()] = inst
		changed[inst.Name()] = struct{}{}
	}

	names := v.CurveNames()
	var affected []string
	for _, n := range names {
		ids, err := v.IndirectCurveInstruments(n)
		if err != nil {
			return oldInsts, nil, err
		}
		for _, id := range ids {
			if _, ok := changed[id]; ok {
				affected = append(affected, n)
				break
			}
		}
	}

	oldCurves = make(map[string]*curve.Curve, len(affected))
	for _, n := range affected {
		oldCurves[n] = v.curves[n].built
		v.curves[n].built = nil
	}
	for _, n := range affected {
		if err := v.MaybeRebuild(n); err != nil {
			return oldInsts, oldCurves, err
		}
	}
	return oldInsts, oldCurves, nil
}

// restore undoes applyQuotes.
func (v *View) restore(insts []instrument.Instrument, oldInsts map[string]instrument.Instrument, oldCurves map[string]*curve.Curve) {
	for _, inst := range insts {
		if old, ok := oldInsts[inst.Name()]; ok {
			v.instruments[inst.Name()] = old
		} else {
			delete(v.instruments, inst.Name())
		}
	}
	for n, c := range oldCurves {
		v.curves[n].built = c
	}
}

// rebuildAll builds every curve that is not built yet, in name order.
func (v *View) rebuildAll() error {
	for _, n := range v.CurveNames() {
		if err := v.MaybeRebuild(n); err != nil {
			return err
		}
	}
	return nil
}
