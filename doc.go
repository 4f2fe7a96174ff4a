// Package uqfit calibrates model parameters against experimental measurements
// and curates the measurement set by statistical consistency and information
// content.
//
// # Overview
//
// uqfit solves the constrained-model problem: given a set of measurements,
// each with a local quadratic response surface
//
//	y(x) = xᵀBx + Aᵀx + Z
//
// and an experimental value y_exp with uncertainty σ_exp, find the parameter
// vector x* that minimizes the regularized weighted residual
//
//	x* = argmin_x ‖ L₀ᵀ(x − x₀) ‖² + Σᵢ [ (yᵢ(x) − y_exp,ᵢ) / σ_exp,ᵢ ]²
//
// where L₀L₀ᵀ = Σ₀⁻¹ is the prior inverse covariance. The posterior
// parameter covariance follows from the Gauss–Newton linearization
//
//	Σ* = (JᵀJ)⁻¹
//
// evaluated at x*, where J is the augmented Jacobian of the residual vector.
//
// # Pipeline
//
// The package components:
//
//   - response.go    - Quadratic response surface (value + analytic gradient)
//   - measurement.go - Measurement record with propagation contracts
//   - solution.go    - Immutable posterior snapshot (x*, Σ*, Cholesky factor)
//   - levmar.go      - Derivative-supplied Levenberg–Marquardt solver
//   - optimize.go    - Residual/Jacobian assembly and covariance recovery
//   - validate.go    - Predicted values, uncertainties, consistency scores
//   - consistency.go - Iterative removal of inconsistent measurements
//   - entropy.go     - Information flux analysis and low-information pruning
//   - params.go      - Sensitivity-weighted active parameter selection
//
// Control flow: select active parameters, then alternate optimization and
// validation while pruning inconsistent measurements, then alternate
// uncertainty refresh and entropy analysis while pruning low-information
// measurements. The Solution snapshot is the shared state threaded through
// every stage; it is replaced wholesale, never mutated.
//
// # Quick Start
//
//	proj := uqfit.NewProject(params, uqfit.DefaultConfig())
//	proj.AddMeasurement(&uqfit.Measurement{
//	    Name: "flame-speed-1", Value: 1.0, Uncertainty: 0.1,
//	    Response: uqfit.NewQuadratic([]float64{2.0}, [][]float64{{0}}, 0),
//	})
//
//	sol, err := proj.Optimize()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("x* = %v\n", sol.X())
//
//	// Remove measurements the calibrated model cannot reproduce.
//	report, err := proj.PruneInconsistent()
//
//	// Remove measurements that drain more information than they supply.
//	report, err = proj.PruneLowInformation()
//
// # Consistency
//
// After each fit the validator scores every active measurement:
//
//	Z = (y(x*) − y_exp) / (2σ_exp)
//	W = |Z| · (σ_exp / σ_opt)²
//
// A measurement with |Z| > 1 disagrees with the calibrated model by more
// than twice its own stated uncertainty. The consistency pruner removes the
// worst such measurement (largest W), refits, and repeats until every
// survivor satisfies |Z| ≤ 1.
//
// # Entropy flux
//
// The entropy analyzer estimates d ln σ_opt,r / d ln σ_exp,i for every
// measurement pair — how much measurement i's assumed precision controls
// measurement r's post-fit precision. The net flux
//
//	Φ = diag(EEᵀ − EᵀE)
//
// is positive for information sources and negative for sinks. The
// information pruner removes the worst sink, refreshes the posterior
// covariance, and repeats until no active measurement has negative flux.
//
// Removed measurements are never discarded: they move to audit lists with
// status Inconsistent or LowInformation and keep their final scores.
package uqfit
