package uqfit

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Validate recomputes the derived fields of every measurement the project
// holds — active, application, and pruned alike — against the current
// Solution:
//
//   - OptimizedValue, OptimizedUncertainty: linearized propagation of the
//     posterior covariance through the response gradient at x*.
//   - ModelUncertainty: intrinsic curvature-based uncertainty of the
//     response surface, independent of calibration.
//
// Active measurements additionally receive their consistency scores:
//
//	Z = (y(x*) − y_exp) / (2σ_exp)
//	W = |Z| · (σ_exp / σ_opt)²
//
// Per-measurement evaluations are independent and run concurrently; every
// goroutine reads the same immutable Solution snapshot and writes only its
// own measurement.
func (p *Project) Validate() error {
	sol := p.solution
	if sol == nil {
		return fmt.Errorf("validate: %w", ErrNoSolution)
	}

	x := mat.NewVecDense(sol.Dim(), sol.X())
	cov := sol.Covariance()

	var g errgroup.Group
	for _, m := range p.Items() {
		m := m
		g.Go(func() error {
			if m.Response == nil {
				return fmt.Errorf("validate: measurement %q has no response surface", m.Name)
			}
			if m.Response.Dim() != sol.Dim() {
				return fmt.Errorf("validate: measurement %q spans %d parameters, solution has %d: %w",
					m.Name, m.Response.Dim(), sol.Dim(), ErrDimensionMismatch)
			}

			m.OptimizedValue, m.OptimizedUncertainty = m.EvaluateUncertainty(x, cov)
			m.ModelUncertainty = m.modelUncertainty()

			if m.Status == StatusActive {
				scoreConsistency(m)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log := p.logger()
	for _, m := range p.Items() {
		_, _, z := m.Response.Coefficients()
		log.Debug("validated",
			"name", m.Name,
			"status", m.Status,
			"value", m.Value,
			"uncertainty", m.Uncertainty,
			"optimized_value", m.OptimizedValue,
			"optimized_uncertainty", m.OptimizedUncertainty,
			"model_value", z,
			"model_uncertainty", m.ModelUncertainty)
	}

	return nil
}

// scoreConsistency writes the consistency scores for an active measurement
// whose OptimizedValue and OptimizedUncertainty are current.
//
// The signed score Z measures disagreement in units of twice the
// experimental uncertainty. The weighted score W scales |Z| by how much the
// calibration tightened this measurement's prediction relative to its
// experimental uncertainty: a tightly-predicted outlier is a stronger
// removal candidate than a loosely-predicted one.
func scoreConsistency(m *Measurement) {
	m.Consistency = (m.OptimizedValue - m.Value) / (2 * m.Uncertainty)

	ratio := m.Uncertainty / m.OptimizedUncertainty
	m.WeightedConsistency = math.Abs(m.Consistency) * ratio * ratio
}
