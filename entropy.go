package uqfit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// CalculateEntropy writes the entropy flux of every active and application
// measurement against the current Solution.
//
// For each pair (i, r) with i drawn from the active list and r from the
// active and application lists, the cross-sensitivity
//
//	E[i,r] = ( a_rᵀ·Σ a_i a_iᵀ Σ·a_r + 2·tr(b_r Σ b_r Σ a_i a_iᵀ Σ) )
//	         / ( σ_exp,i² · σ_opt,r² )
//
// estimates d ln σ_opt,r / d ln σ_exp,i — how strongly measurement r's
// post-fit precision depends on measurement i's assumed experimental
// uncertainty. Here a_i = J_i(x*) is the response gradient and b_r the
// quadratic coefficient matrix.
//
// The net flux per measurement is
//
//	Φ = diag(EEᵀ − EᵀE)
//
// Positive Φ marks a net information source, negative Φ a net sink. The
// diagonal of EEᵀ−EᵀE has zero trace, so flux is conserved across the set.
//
// Requires a prior Validate pass: σ_opt enters every denominator.
func (p *Project) CalculateEntropy() error {
	sol := p.solution
	if sol == nil {
		return fmt.Errorf("calculate entropy: %w", ErrNoSolution)
	}

	active := p.Active()
	n := len(active)
	if n == 0 {
		return fmt.Errorf("calculate entropy: %w", ErrEmptyActiveSet)
	}

	x := mat.NewVecDense(sol.Dim(), sol.X())
	cov := sol.Covariance()
	dim := sol.Dim()

	entropy := mat.NewDense(n, n, nil)

	aat := mat.NewDense(dim, dim, nil)
	caatc := mat.NewDense(dim, dim, nil)
	tmp := mat.NewDense(dim, dim, nil)
	brc := mat.NewDense(dim, dim, nil)
	brd := mat.NewDense(dim, dim, nil)
	prod := mat.NewDense(dim, dim, nil)

	// Rows: only active measurements have an experimental uncertainty to
	// perturb. Application rows stay zero.
	for i, mi := range p.Measurements {
		_, ai := mi.SensitivityResponse(x)

		aat.Outer(1, ai, ai)
		tmp.Mul(cov, aat)
		caatc.Mul(tmp, cov)

		for r, mr := range active {
			_, ar := mr.SensitivityResponse(x)
			_, br, _ := mr.Response.Coefficients()

			quad := mat.Inner(ar, caatc, ar)

			brc.Mul(br, cov)
			brd.Mul(br, caatc)
			prod.Mul(brc, brd)
			trace := 2 * mat.Trace(prod)

			denom := mi.Uncertainty * mr.OptimizedUncertainty
			entropy.Set(i, r, (quad+trace)/(denom*denom))
		}
	}

	var eet, ete mat.Dense
	eet.Mul(entropy, entropy.T())
	ete.Mul(entropy.T(), entropy)

	log := p.logger()
	for k, m := range active {
		m.EntropyFlux = eet.At(k, k) - ete.At(k, k)
		log.Debug("entropy flux", "name", m.Name, "flux", m.EntropyFlux)
	}

	return nil
}

// PruneLowInformation alternates covariance refresh, validation, and entropy
// analysis, removing the worst net information sink each round:
//
//	RefreshUncertainty → Validate → CalculateEntropy → remove most negative Φ
//
// The parameter estimate x* is kept throughout; only the covariance is
// recomputed as the information content shrinks. The loop terminates when no
// active measurement has negative flux. Removed measurements move to the
// LowInformation list. Requires a completed optimization.
func (p *Project) PruneLowInformation() (PruneReport, error) {
	report := PruneReport{State: PruneRunning}
	if len(p.Measurements) == 0 {
		return report, fmt.Errorf("prune low information: %w", ErrEmptyActiveSet)
	}

	maxIterations := len(p.Measurements) + 1

	for iter := 0; iter < maxIterations; iter++ {
		report.Iterations = iter + 1

		if len(p.Measurements) == 0 {
			return report, fmt.Errorf("prune low information: all measurements removed: %w", ErrEmptyActiveSet)
		}
		if _, err := p.RefreshUncertainty(); err != nil {
			return report, fmt.Errorf("prune low information: %w", err)
		}
		if err := p.Validate(); err != nil {
			return report, fmt.Errorf("prune low information: %w", err)
		}
		if err := p.CalculateEntropy(); err != nil {
			return report, fmt.Errorf("prune low information: %w", err)
		}

		idx := p.worstSink()
		if idx < 0 {
			report.State = PruneConverged
			p.logger().Info("no low-information measurements",
				"iterations", report.Iterations,
				"removed", len(report.Removed),
				"remaining", len(p.Measurements))
			return report, nil
		}

		removed := p.removeMeasurement(idx, StatusLowInformation)
		removal := Removal{
			Name:        removed.Name,
			EntropyFlux: removed.EntropyFlux,
		}
		report.Removed = append(report.Removed, removal)

		p.logger().Info("removed low-information measurement",
			"name", removal.Name,
			"entropy_flux", removal.EntropyFlux)
	}

	return report, fmt.Errorf("prune low information: no convergence in %d iterations: %w",
		maxIterations, ErrNonConvergence)
}

// worstSink returns the index of the active measurement with the most
// negative entropy flux, or -1 when no active flux is negative.
func (p *Project) worstSink() int {
	idx := -1
	worst := 0.0
	for i, m := range p.Measurements {
		if m.EntropyFlux < worst {
			worst = m.EntropyFlux
			idx = i
		}
	}
	return idx
}
