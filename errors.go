package uqfit

import "errors"

// Sentinel errors for the failure modes of the calibration engine.
// Callers should test with errors.Is; all errors returned by the package
// wrap one of these where the taxonomy applies.
var (
	// ErrDimensionMismatch indicates a supplied prior mean or covariance
	// whose dimension disagrees with the active parameter count. Detected
	// before any solve attempt.
	ErrDimensionMismatch = errors.New("prior dimension disagrees with active parameter count")

	// ErrSingularInformation indicates a non-invertible information matrix
	// JᵀJ at convergence: the system is under-determined (fewer informative
	// measurements than active parameters).
	ErrSingularInformation = errors.New("information matrix is singular")

	// ErrNonConvergence indicates the nonlinear solver failed to converge
	// within its iteration budget. Not retried automatically.
	ErrNonConvergence = errors.New("solver did not converge")

	// ErrEmptyActiveSet indicates a pruning loop or selection pass was asked
	// to operate on zero measurements or zero parameters.
	ErrEmptyActiveSet = errors.New("active set is empty")

	// ErrNoSolution indicates an operation that needs a calibrated Solution
	// (validation, entropy analysis, covariance refresh) ran before any
	// optimization completed.
	ErrNoSolution = errors.New("no solution: run Optimize first")
)
