package uqfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// residualJacobian evaluates the augmented residual vector and its exact
// analytic Jacobian at x. Implementations must be pure functions of x:
// everything else (measurement list, prior) is bound at assembly time, so
// evaluations may run against any immutable snapshot without ambient state.
type residualJacobian func(x *mat.VecDense) (*mat.VecDense, *mat.Dense)

// SolverConfig controls the Levenberg–Marquardt iteration.
type SolverConfig struct {
	MaxIterations     int     // Outer iteration budget
	GradientTolerance float64 // Converged when ‖Jᵀf‖∞ falls below this
	StepTolerance     float64 // Converged when the relative step falls below this
	InitialDamping    float64 // Starting λ
	DampingIncrease   float64 // λ multiplier after a rejected step
	DampingDecrease   float64 // λ multiplier after an accepted step
	MaxDamping        float64 // λ above this is reported as non-convergence
}

// DefaultSolverConfig returns tolerances suited to response surfaces with
// O(1) coefficients.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MaxIterations:     200,
		GradientTolerance: 1e-10,
		StepTolerance:     1e-12,
		InitialDamping:    1e-3,
		DampingIncrease:   10,
		DampingDecrease:   0.1,
		MaxDamping:        1e12,
	}
}

// marquardt minimizes ½‖f(x)‖² with a damped Gauss–Newton (Levenberg–
// Marquardt) iteration using the supplied analytic Jacobian:
//
//	(JᵀJ + λ·diag(JᵀJ)) δ = −Jᵀf
//
// λ shrinks after accepted steps (toward Gauss–Newton) and grows after
// rejected ones (toward gradient descent). Returns the converged x.
func marquardt(fn residualJacobian, x0 *mat.VecDense, cfg SolverConfig) (*mat.VecDense, error) {
	n := x0.Len()
	x := mat.VecDenseCopyOf(x0)

	f, jac := fn(x)
	cost := 0.5 * mat.Dot(f, f)
	damping := cfg.InitialDamping

	grad := mat.NewVecDense(n, nil)
	step := mat.NewVecDense(n, nil)
	normal := mat.NewSymDense(n, nil)
	damped := mat.NewSymDense(n, nil)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		grad.MulVec(jac.T(), f)
		if mat.Norm(grad, math.Inf(1)) < cfg.GradientTolerance {
			return x, nil
		}

		normal.SymOuterK(1, jac.T())

		// Inner loop: grow λ until a step reduces the cost.
		accepted := false
		for damping <= cfg.MaxDamping {
			damped.CopySym(normal)
			for i := 0; i < n; i++ {
				d := normal.At(i, i)
				if d == 0 {
					d = 1
				}
				damped.SetSym(i, i, normal.At(i, i)+damping*d)
			}

			var chol mat.Cholesky
			if ok := chol.Factorize(damped); !ok {
				damping *= cfg.DampingIncrease
				continue
			}
			if err := chol.SolveVecTo(step, grad); err != nil {
				damping *= cfg.DampingIncrease
				continue
			}

			trial := mat.NewVecDense(n, nil)
			trial.SubVec(x, step)

			fTrial, jacTrial := fn(trial)
			costTrial := 0.5 * mat.Dot(fTrial, fTrial)

			if costTrial < cost || math.Abs(costTrial-cost) <= cfg.StepTolerance*cost {
				x, f, jac, cost = trial, fTrial, jacTrial, costTrial
				damping = math.Max(damping*cfg.DampingDecrease, 1e-12)
				accepted = true
				break
			}
			damping *= cfg.DampingIncrease
		}
		if !accepted {
			return nil, fmt.Errorf("damping exceeded %.0e after %d iterations: %w",
				cfg.MaxDamping, iter+1, ErrNonConvergence)
		}

		if mat.Norm(step, 2) <= cfg.StepTolerance*(mat.Norm(x, 2)+cfg.StepTolerance) {
			return x, nil
		}
	}

	return nil, fmt.Errorf("no convergence in %d iterations (‖g‖∞ = %.3e): %w",
		cfg.MaxIterations, mat.Norm(grad, math.Inf(1)), ErrNonConvergence)
}
