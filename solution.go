package uqfit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Solution is an immutable snapshot of a completed calibration: the
// parameter estimate x*, its covariance Σ*, a lower-triangular factor α with
// ααᵀ = Σ*, and the prior the fit was regularized against.
//
// A Solution is constructed fresh after every optimization or covariance
// refresh and swapped in wholesale. Derived measurement fields computed
// against an older Solution are stale by definition; the swap-not-mutate
// rule is what makes staleness detectable.
type Solution struct {
	x      *mat.VecDense
	cov    *mat.SymDense
	factor *mat.TriDense

	priorMean   *mat.VecDense
	priorInvCov *mat.SymDense
}

// newSolution captures a posterior (x, cov) together with the prior it was
// computed under. The covariance must be positive definite; its Cholesky
// factor is stored alongside it.
func newSolution(x *mat.VecDense, cov *mat.SymDense, pr *prior) (*Solution, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("posterior covariance is not positive definite: %w", ErrSingularInformation)
	}
	factor := mat.NewTriDense(cov.SymmetricDim(), mat.Lower, nil)
	chol.LTo(factor)

	return &Solution{
		x:           mat.VecDenseCopyOf(x),
		cov:         copySym(cov),
		factor:      factor,
		priorMean:   mat.VecDenseCopyOf(pr.mean),
		priorInvCov: copySym(pr.invCov),
	}, nil
}

// Dim returns the number of active parameters in the snapshot.
func (s *Solution) Dim() int { return s.x.Len() }

// X returns a copy of the parameter estimate.
func (s *Solution) X() []float64 {
	out := make([]float64, s.x.Len())
	copy(out, s.x.RawVector().Data)
	return out
}

// Covariance returns a copy of the posterior parameter covariance.
func (s *Solution) Covariance() *mat.SymDense { return copySym(s.cov) }

// Factor returns a copy of the lower-triangular factor α with ααᵀ = Σ*.
func (s *Solution) Factor() *mat.TriDense {
	n, _ := s.factor.Triangle()
	out := mat.NewTriDense(n, mat.Lower, nil)
	out.Copy(s.factor)
	return out
}

// PriorMean returns a copy of the prior parameter values.
func (s *Solution) PriorMean() []float64 {
	out := make([]float64, s.priorMean.Len())
	copy(out, s.priorMean.RawVector().Data)
	return out
}

// PriorInvCovariance returns a copy of the prior inverse covariance.
func (s *Solution) PriorInvCovariance() *mat.SymDense { return copySym(s.priorInvCov) }

func copySym(a mat.Symmetric) *mat.SymDense {
	out := mat.NewSymDense(a.SymmetricDim(), nil)
	out.CopySym(a)
	return out
}
