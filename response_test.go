package uqfit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestQuadraticValueGradient verifies y = xᵀBx + Aᵀx + Z and J = 2Bx + A
// against hand-computed values.
func TestQuadraticValueGradient(t *testing.T) {
	// y = 2x₀² + x₀x₁ + 3x₀ - x₁ + 0.5
	q := NewQuadratic(
		[]float64{3, -1},
		[][]float64{
			{2, 0.5},
			{0.5, 0},
		},
		0.5,
	)

	x := mat.NewVecDense(2, []float64{1, 2})
	value, grad := q.ValueGradient(x)

	// xᵀBx = 2 + 0.5·2 + 0.5·2 = 4; Aᵀx = 3 - 2 = 1; z = 0.5
	wantValue := 5.5
	if math.Abs(value-wantValue) > 1e-12 {
		t.Errorf("value = %.12f, want %.12f", value, wantValue)
	}

	// 2Bx = [2·(2+1), 2·0.5] = [6, 1]; J = [9, 0]
	wantGrad := []float64{9, 0}
	for i, w := range wantGrad {
		if math.Abs(grad.AtVec(i)-w) > 1e-12 {
			t.Errorf("grad[%d] = %.12f, want %.12f", i, grad.AtVec(i), w)
		}
	}

	t.Logf("✓ Quadratic surface: y = %.2f, J = [%.2f, %.2f]", value, grad.AtVec(0), grad.AtVec(1))
}

// TestQuadraticGradientMatchesFiniteDifference cross-checks the analytic
// gradient numerically.
func TestQuadraticGradientMatchesFiniteDifference(t *testing.T) {
	q := NewQuadratic(
		[]float64{0.7, -0.3, 1.2},
		[][]float64{
			{0.4, 0.1, 0},
			{0.1, -0.2, 0.3},
			{0, 0.3, 0.6},
		},
		2.0,
	)

	x := mat.NewVecDense(3, []float64{0.2, -0.5, 0.9})
	_, grad := q.ValueGradient(x)

	const h = 1e-6
	for i := 0; i < 3; i++ {
		xp := mat.VecDenseCopyOf(x)
		xp.SetVec(i, x.AtVec(i)+h)
		xm := mat.VecDenseCopyOf(x)
		xm.SetVec(i, x.AtVec(i)-h)

		vp, _ := q.ValueGradient(xp)
		vm, _ := q.ValueGradient(xm)
		numeric := (vp - vm) / (2 * h)

		if math.Abs(grad.AtVec(i)-numeric) > 1e-6 {
			t.Errorf("grad[%d] = %.9f, finite difference %.9f", i, grad.AtVec(i), numeric)
		}
	}

	t.Logf("✓ Analytic gradient matches central differences")
}

// TestQuadraticCoefficientsAreCopies verifies callers cannot mutate the
// surface through Coefficients.
func TestQuadraticCoefficientsAreCopies(t *testing.T) {
	q := NewQuadratic([]float64{1}, [][]float64{{2}}, 3)

	a, b, _ := q.Coefficients()
	a.SetVec(0, 99)
	b.Set(0, 0, 99)

	a2, b2, z := q.Coefficients()
	if a2.AtVec(0) != 1 || b2.At(0, 0) != 2 || z != 3 {
		t.Errorf("surface mutated through Coefficients: a=%.1f b=%.1f z=%.1f",
			a2.AtVec(0), b2.At(0, 0), z)
	}

	t.Logf("✓ Coefficients returns defensive copies")
}
