package uqfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Status tags a measurement's role in the calibration.
type Status string

const (
	// StatusActive measurements constrain the fit.
	StatusActive Status = "ACTIVE"
	// StatusApplication measurements are prediction targets only; they carry
	// no experimental value and never enter the residual vector.
	StatusApplication Status = "APPLICATION"
	// StatusInconsistent measurements were removed by the consistency pruner.
	StatusInconsistent Status = "INCONSISTENT"
	// StatusLowInformation measurements were removed by the information pruner.
	StatusLowInformation Status = "LOW_INFORMATION"
)

// SensitivityFunc supplies per-parameter sensitivities of a measurement over
// the full model parameter list. It is invoked once, when active parameter
// selection needs sensitivities that are not already cached.
type SensitivityFunc func() ([]float64, error)

// Measurement pairs an experimental observation with its response surface.
//
// Value and Uncertainty are owned by the caller and never written by the
// engine. The derived fields below them are written only by a validation or
// entropy pass and are meaningful only for the Solution current at that
// time; they go stale whenever the Solution is replaced.
type Measurement struct {
	Name        string
	Value       float64 // experimental value y_exp
	Uncertainty float64 // experimental 1σ uncertainty, > 0 for active measurements
	Response    Response
	Status      Status

	// Sensitivities caches d(ln y)/d(ln p) over the full parameter list.
	// Left nil, it is requested from Sensitivity on first use.
	Sensitivities []float64
	Sensitivity   SensitivityFunc

	// Derived fields, written by Validate and CalculateEntropy.
	OptimizedValue       float64
	OptimizedUncertainty float64
	ModelUncertainty     float64
	Consistency          float64
	WeightedConsistency  float64
	EntropyFlux          float64
}

// SensitivityResponse evaluates the response surface and its gradient at x.
func (m *Measurement) SensitivityResponse(x *mat.VecDense) (float64, *mat.VecDense) {
	return m.Response.ValueGradient(x)
}

// EvaluateUncertainty propagates the parameter covariance through the
// response gradient at x:
//
//	value = y(x)
//	uncertainty = sqrt( J(x)ᵀ Σ J(x) )
func (m *Measurement) EvaluateUncertainty(x *mat.VecDense, cov mat.Symmetric) (float64, float64) {
	value, grad := m.Response.ValueGradient(x)
	variance := mat.Inner(grad, cov, grad)
	if variance < 0 {
		// Round-off on a semi-definite covariance.
		variance = 0
	}
	return value, math.Sqrt(variance)
}

// modelUncertainty is the intrinsic curvature-based uncertainty of the
// response surface, independent of any calibration:
//
//	σ_model = sqrt( aᵀa + 2·tr(b·b) ) / 2
func (m *Measurement) modelUncertainty() float64 {
	a, b, _ := m.Response.Coefficients()

	var bb mat.Dense
	bb.Mul(b, b)

	return math.Sqrt(mat.Dot(a, a)+2*mat.Trace(&bb)) / 2
}

// sensitivityList returns the cached sensitivities, requesting them from the
// measurement's SensitivityFunc if absent.
func (m *Measurement) sensitivityList(numParams int) ([]float64, error) {
	if m.Sensitivities == nil {
		if m.Sensitivity == nil {
			return nil, fmt.Errorf("measurement %q has no sensitivities and no sensitivity source", m.Name)
		}
		s, err := m.Sensitivity()
		if err != nil {
			return nil, fmt.Errorf("measurement %q: evaluating sensitivities: %w", m.Name, err)
		}
		m.Sensitivities = s
	}
	if len(m.Sensitivities) != numParams {
		return nil, fmt.Errorf("measurement %q: %d sensitivities for %d model parameters",
			m.Name, len(m.Sensitivities), numParams)
	}
	return m.Sensitivities, nil
}
