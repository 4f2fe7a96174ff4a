package uqfit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Response is the capability a measurement's local surrogate must provide:
// point evaluation with an analytic gradient, plus the quadratic
// coefficients used for curvature-based uncertainty and entropy analysis.
//
// Quadratic is the standard implementation. Any surrogate that can express
// these two contracts in active-parameter space may stand in for it.
type Response interface {
	// ValueGradient evaluates the surrogate and its gradient at x.
	ValueGradient(x *mat.VecDense) (float64, *mat.VecDense)

	// Coefficients returns the local quadratic coefficients (a, b, z) such
	// that y(x) ≈ xᵀbx + aᵀx + z near the expansion point.
	Coefficients() (a *mat.VecDense, b *mat.Dense, z float64)

	// Dim is the number of active parameters the surrogate spans.
	Dim() int
}

// Quadratic is a second-order response surface
//
//	y(x) = xᵀBx + Aᵀx + Z
//
// with the exact gradient
//
//	J(x) = 2Bx + A
//
// B is expected to be symmetric; the gradient formula assumes it.
type Quadratic struct {
	a *mat.VecDense
	b *mat.Dense
	z float64
}

// NewQuadratic builds a quadratic response surface from its linear
// coefficients a, quadratic coefficient rows b (n×n, symmetric), and
// constant term z. Panics if the b rows are ragged or disagree with len(a);
// surfaces are constructed from fitted coefficient tables, so a shape
// mismatch is a programming error, not a runtime condition.
func NewQuadratic(a []float64, b [][]float64, z float64) *Quadratic {
	n := len(a)
	if len(b) != n {
		panic(fmt.Sprintf("uqfit: quadratic coefficient rows %d != %d parameters", len(b), n))
	}
	bm := mat.NewDense(n, n, nil)
	for i, row := range b {
		if len(row) != n {
			panic(fmt.Sprintf("uqfit: quadratic coefficient row %d has %d entries, want %d", i, len(row), n))
		}
		for j, v := range row {
			bm.Set(i, j, v)
		}
	}
	av := mat.NewVecDense(n, nil)
	for i, v := range a {
		av.SetVec(i, v)
	}
	return &Quadratic{a: av, b: bm, z: z}
}

// ValueGradient evaluates y(x) and J(x) at the given point.
func (q *Quadratic) ValueGradient(x *mat.VecDense) (float64, *mat.VecDense) {
	n := q.a.Len()

	bx := mat.NewVecDense(n, nil)
	bx.MulVec(q.b, x)

	value := mat.Dot(x, bx) + mat.Dot(q.a, x) + q.z

	grad := mat.NewVecDense(n, nil)
	grad.AddScaledVec(q.a, 2, bx)

	return value, grad
}

// Coefficients returns copies of the quadratic coefficients so callers
// cannot mutate the surface.
func (q *Quadratic) Coefficients() (*mat.VecDense, *mat.Dense, float64) {
	return mat.VecDenseCopyOf(q.a), mat.DenseCopyOf(q.b), q.z
}

// Dim returns the number of active parameters the surface spans.
func (q *Quadratic) Dim() int {
	return q.a.Len()
}
