package uqfit

import (
	"fmt"
	"math"
	"sort"
)

// PruneState is the terminal state of a pruning loop.
type PruneState string

const (
	// PruneRunning means the loop was still removing when it stopped; only
	// seen on error returns.
	PruneRunning PruneState = "RUNNING"
	// PruneConverged means no further candidate met the removal criterion.
	PruneConverged PruneState = "CONVERGED"
)

// Removal records one pruning decision for audit.
type Removal struct {
	Name                string
	Consistency         float64
	WeightedConsistency float64
	UncertaintyRatio    float64 // σ_opt / σ_exp at removal time
	EntropyFlux         float64
}

// PruneReport summarizes a pruning run.
type PruneReport struct {
	State      PruneState
	Iterations int
	Removed    []Removal
}

// PruneInconsistent alternates optimization and validation, removing the
// worst statistically inconsistent measurement each round until none
// remains:
//
//	Optimize → Validate → scan by W descending → remove first with |Z| > threshold
//
// At most one measurement is removed per iteration: a removal changes the
// fit, so every remaining score is stale until the next pass. Removed
// measurements move to the Removed list with status Inconsistent. The loop
// converges in at most M iterations (each non-terminal iteration shrinks
// the active list by one); exhausting the active list is an error.
func (p *Project) PruneInconsistent() (PruneReport, error) {
	report := PruneReport{State: PruneRunning}
	if len(p.Measurements) == 0 {
		return report, fmt.Errorf("prune inconsistent: %w", ErrEmptyActiveSet)
	}

	// One iteration per possible removal, plus the converging pass.
	maxIterations := len(p.Measurements) + 1

	for iter := 0; iter < maxIterations; iter++ {
		report.Iterations = iter + 1

		if len(p.Measurements) == 0 {
			return report, fmt.Errorf("prune inconsistent: all measurements removed: %w", ErrEmptyActiveSet)
		}
		if _, err := p.Optimize(); err != nil {
			return report, fmt.Errorf("prune inconsistent: %w", err)
		}
		if err := p.Validate(); err != nil {
			return report, fmt.Errorf("prune inconsistent: %w", err)
		}

		idx := p.worstInconsistent()
		if idx < 0 {
			report.State = PruneConverged
			p.logger().Info("no inconsistent measurements",
				"iterations", report.Iterations,
				"removed", len(report.Removed),
				"remaining", len(p.Measurements))
			return report, nil
		}

		removed := p.removeMeasurement(idx, StatusInconsistent)
		removal := Removal{
			Name:                removed.Name,
			Consistency:         removed.Consistency,
			WeightedConsistency: removed.WeightedConsistency,
			UncertaintyRatio:    removed.OptimizedUncertainty / removed.Uncertainty,
		}
		report.Removed = append(report.Removed, removal)

		p.logger().Info("removed inconsistent measurement",
			"name", removal.Name,
			"consistency", removal.Consistency,
			"weighted_consistency", removal.WeightedConsistency,
			"uncertainty_ratio", removal.UncertaintyRatio)
	}

	// Unreachable with a correct cap; surfaced rather than looping forever.
	return report, fmt.Errorf("prune inconsistent: no convergence in %d iterations: %w",
		maxIterations, ErrNonConvergence)
}

// worstInconsistent returns the index of the active measurement to remove:
// scanning by weighted consistency descending, the first with |Z| above the
// threshold. Returns -1 when every measurement is consistent.
func (p *Project) worstInconsistent() int {
	order := make([]int, len(p.Measurements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Measurements[order[a]].WeightedConsistency > p.Measurements[order[b]].WeightedConsistency
	})

	for _, i := range order {
		if math.Abs(p.Measurements[i].Consistency) > p.Config.ConsistencyThreshold {
			return i
		}
	}
	return -1
}

// removeMeasurement moves the active measurement at index i to the audit
// list for the given status, preserving the order of both lists.
func (p *Project) removeMeasurement(i int, status Status) *Measurement {
	m := p.Measurements[i]
	p.Measurements = append(p.Measurements[:i], p.Measurements[i+1:]...)
	m.Status = status

	switch status {
	case StatusLowInformation:
		p.LowInformation = append(p.LowInformation, m)
	default:
		p.Removed = append(p.Removed, m)
	}
	return m
}
