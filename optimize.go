package uqfit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Prior is the Bayesian regularization term for an optimization: parameter
// values x₀ and inverse covariance Σ₀⁻¹ in active-parameter space. A nil
// Prior means x₀ = 0 and Σ₀⁻¹ = 4·I, the convention for parameters
// normalized to their uncertainty bounds.
type Prior struct {
	Mean          []float64
	InvCovariance *mat.SymDense
}

// prior is a resolved Prior: dimension-checked and factorized. The weight
// block Lᵀ satisfies L·Lᵀ = Σ₀⁻¹, so the prior rows of the augmented
// Jacobian contribute exactly Σ₀⁻¹ to the information matrix and a
// measurement-free fit recovers Σ* = Σ₀.
type prior struct {
	mean   *mat.VecDense
	invCov *mat.SymDense
	weight *mat.TriDense // L, lower triangular
}

// resolvePrior applies defaults and validates dimensions against the active
// parameter count n.
func resolvePrior(n int, pr *Prior) (*prior, error) {
	if pr == nil {
		invCov := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			invCov.SetSym(i, i, 4)
		}
		pr = &Prior{Mean: make([]float64, n), InvCovariance: invCov}
	}
	if len(pr.Mean) != n {
		return nil, fmt.Errorf("prior mean has %d entries for %d active parameters: %w",
			len(pr.Mean), n, ErrDimensionMismatch)
	}
	if pr.InvCovariance == nil || pr.InvCovariance.SymmetricDim() != n {
		dim := 0
		if pr.InvCovariance != nil {
			dim = pr.InvCovariance.SymmetricDim()
		}
		return nil, fmt.Errorf("prior inverse covariance is %d×%d for %d active parameters: %w",
			dim, dim, n, ErrDimensionMismatch)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(pr.InvCovariance); !ok {
		return nil, fmt.Errorf("prior inverse covariance is not positive definite")
	}
	weight := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(weight)

	mean := mat.NewVecDense(n, nil)
	for i, v := range pr.Mean {
		mean.SetVec(i, v)
	}

	return &prior{mean: mean, invCov: copySym(pr.InvCovariance), weight: weight}, nil
}

// assembleSystem binds the active measurement list and prior into a pure
// residual/Jacobian function over x. Row layout of the augmented system,
// with P active parameters and M active measurements:
//
//	rows 0..P:   Lᵀ(x − x₀)              Jacobian block Lᵀ
//	rows P..P+M: (yₘ(x) − y_exp,ₘ)/σₘ    Jacobian row  Jₘ(x)/σₘ
//
// The measurement rows use each response surface's analytic gradient; no
// finite differencing anywhere.
func assembleSystem(measurements []*Measurement, pr *prior) residualJacobian {
	p := pr.mean.Len()
	m := len(measurements)

	return func(x *mat.VecDense) (*mat.VecDense, *mat.Dense) {
		f := mat.NewVecDense(p+m, nil)
		jac := mat.NewDense(p+m, p, nil)

		dx := mat.NewVecDense(p, nil)
		dx.SubVec(x, pr.mean)
		pf := mat.NewVecDense(p, nil)
		pf.MulVec(pr.weight.T(), dx)

		for i := 0; i < p; i++ {
			f.SetVec(i, pf.AtVec(i))
			for j := 0; j < p; j++ {
				jac.Set(i, j, pr.weight.At(j, i))
			}
		}

		for k, meas := range measurements {
			value, grad := meas.SensitivityResponse(x)
			w := 1 / meas.Uncertainty
			f.SetVec(p+k, (value-meas.Value)*w)
			for j := 0; j < p; j++ {
				jac.Set(p+k, j, grad.AtVec(j)*w)
			}
		}

		return f, jac
	}
}

// posteriorCovariance forms the Gauss–Newton information matrix I = JᵀJ and
// inverts it. A singular I means the system is under-determined.
func posteriorCovariance(jac *mat.Dense) (*mat.SymDense, error) {
	_, p := jac.Dims()
	info := mat.NewSymDense(p, nil)
	info.SymOuterK(1, jac.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(info); !ok {
		return nil, fmt.Errorf("JᵀJ is not invertible (under-determined system): %w", ErrSingularInformation)
	}
	cov := mat.NewSymDense(p, nil)
	if err := chol.InverseTo(cov); err != nil {
		return nil, fmt.Errorf("inverting information matrix: %w", ErrSingularInformation)
	}
	return cov, nil
}

// Optimize fits the active parameters to the active measurement list,
// regularized by the project's Prior (defaults apply when nil), and replaces
// the project Solution with the posterior (x*, Σ*).
//
// The solve is a derivative-supplied Levenberg–Marquardt minimization of the
// augmented residual; the posterior covariance is the inverse Gauss–Newton
// information matrix at x*. Errors: ErrDimensionMismatch before any solve
// attempt, ErrNonConvergence from the solver, ErrSingularInformation from
// covariance recovery.
func (p *Project) Optimize() (*Solution, error) {
	n := p.ActiveParameterCount()
	if n == 0 {
		return nil, fmt.Errorf("optimize: no active parameters: %w", ErrEmptyActiveSet)
	}

	pr, err := resolvePrior(n, p.Prior)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	fn := assembleSystem(p.Measurements, pr)

	xOpt, err := marquardt(fn, pr.mean, p.Config.Solver)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	// Recompute at the optimum for the linearized posterior covariance.
	_, jac := fn(xOpt)
	cov, err := posteriorCovariance(jac)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	sol, err := newSolution(xOpt, cov, pr)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	p.solution = sol

	p.logger().Debug("optimization complete",
		"active_parameters", n,
		"active_measurements", len(p.Measurements))

	return sol, nil
}

// RefreshUncertainty recomputes the posterior covariance at the current x*
// without re-optimizing: the residual Jacobian is assembled at x* for the
// current measurement list and Σ = (JᵀJ)⁻¹ replaces the covariance in a new
// Solution. Used by the information pruner, where removals change the
// information content but the parameter estimate is kept.
func (p *Project) RefreshUncertainty() (*Solution, error) {
	if p.solution == nil {
		return nil, fmt.Errorf("refresh uncertainty: %w", ErrNoSolution)
	}

	resolved, err := resolvePrior(p.solution.Dim(), &Prior{
		Mean:          p.solution.PriorMean(),
		InvCovariance: p.solution.priorInvCov,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh uncertainty: %w", err)
	}

	x := mat.NewVecDense(p.solution.Dim(), p.solution.X())
	fn := assembleSystem(p.Measurements, resolved)
	_, jac := fn(x)

	cov, err := posteriorCovariance(jac)
	if err != nil {
		return nil, fmt.Errorf("refresh uncertainty: %w", err)
	}

	sol, err := newSolution(x, cov, resolved)
	if err != nil {
		return nil, fmt.Errorf("refresh uncertainty: %w", err)
	}
	p.solution = sol

	return sol, nil
}
