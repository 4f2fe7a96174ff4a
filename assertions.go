package uqfit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// AssertionConfig contains tolerances for calibration properties.
type AssertionConfig struct {
	// Minimum eigenvalue for the posterior covariance to count as positive
	// definite.
	MinEigenvalue float64

	// Tolerance on symmetry of the posterior covariance.
	SymmetryTolerance float64

	// Consistency bound no surviving measurement may exceed after pruning.
	MaxConsistency float64
}

// DefaultAssertionConfig returns conservative tolerances.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		MinEigenvalue:     1e-12,
		SymmetryTolerance: 1e-10,
		MaxConsistency:    1.0,
	}
}

// AssertPosteriorSPD verifies the solution covariance is symmetric with
// strictly positive eigenvalues.
//
// A posterior covariance that is not SPD means the information matrix
// inversion produced garbage; every downstream score would be meaningless.
func AssertPosteriorSPD(t *testing.T, sol *Solution, cfg AssertionConfig) {
	t.Helper()

	if sol == nil {
		t.Fatal("no solution to check")
	}
	cov := sol.Covariance()
	n := cov.SymmetricDim()

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(cov.At(i, j)-cov.At(j, i)) > cfg.SymmetryTolerance {
				t.Errorf("Covariance asymmetric at (%d,%d): %.12g vs %.12g",
					i, j, cov.At(i, j), cov.At(j, i))
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, false); !ok {
		t.Fatal("eigendecomposition of covariance failed")
	}
	for i, v := range eig.Values(nil) {
		if v < cfg.MinEigenvalue {
			t.Errorf("Covariance eigenvalue %d not positive: %.3e (min: %.3e)",
				i, v, cfg.MinEigenvalue)
		}
	}

	t.Logf("✓ Posterior covariance SPD (%d×%d)", n, n)
}

// AssertAllConsistent verifies no active measurement exceeds the consistency
// bound — the termination condition of the consistency pruner.
func AssertAllConsistent(t *testing.T, p *Project, cfg AssertionConfig) {
	t.Helper()

	for _, m := range p.Measurements {
		if math.Abs(m.Consistency) > cfg.MaxConsistency {
			t.Errorf("Measurement %q still inconsistent: |Z| = %.4f (max: %.4f)",
				m.Name, math.Abs(m.Consistency), cfg.MaxConsistency)
		}
	}

	t.Logf("✓ All %d surviving measurements consistent (|Z| ≤ %.2f)",
		len(p.Measurements), cfg.MaxConsistency)
}

// AssertNoSinks verifies no active measurement carries negative entropy
// flux — the termination condition of the information pruner.
func AssertNoSinks(t *testing.T, p *Project) {
	t.Helper()

	for _, m := range p.Measurements {
		if m.EntropyFlux < 0 {
			t.Errorf("Measurement %q is still an information sink: Φ = %.6f",
				m.Name, m.EntropyFlux)
		}
	}

	t.Logf("✓ No information sinks among %d surviving measurements", len(p.Measurements))
}
