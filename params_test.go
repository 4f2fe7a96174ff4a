package uqfit

import (
	"errors"
	"math"
	"testing"
)

func threeParamProject() *Project {
	e := math.E
	return NewProject([]Parameter{
		{Index: 0, Name: "k0", UncertaintyFactor: e},
		{Index: 1, Name: "k1", UncertaintyFactor: e},
		{Index: 2, Name: "k2", UncertaintyFactor: e},
	}, DefaultConfig())
}

// TestSelectActiveParametersCutoff verifies the impact-factor criterion
// |S·ln f| > cutoff·max against hand-picked sensitivities.
func TestSelectActiveParametersCutoff(t *testing.T) {
	p := threeParamProject()
	p.AddMeasurement(&Measurement{
		Name:          "m1",
		Value:         1,
		Uncertainty:   0.1,
		Sensitivities: []float64{1.0, 0.5, 0.05}, // ln f = 1, impacts = sensitivities
	})

	if err := p.SelectActiveParameters(0.6); err != nil {
		t.Fatalf("SelectActiveParameters failed: %v", err)
	}
	if len(p.ActiveParameters) != 1 || p.ActiveParameters[0] != 0 {
		t.Errorf("cutoff 0.6: active = %v, want [0]", p.ActiveParameters)
	}

	if err := p.SelectActiveParameters(0.3); err != nil {
		t.Fatalf("SelectActiveParameters failed: %v", err)
	}
	if len(p.ActiveParameters) != 2 {
		t.Errorf("cutoff 0.3: active = %v, want [0 1]", p.ActiveParameters)
	}

	if err := p.SelectActiveParameters(0.01); err != nil {
		t.Fatalf("SelectActiveParameters failed: %v", err)
	}
	if len(p.ActiveParameters) != 3 {
		t.Errorf("cutoff 0.01: active = %v, want all three", p.ActiveParameters)
	}

	if len(p.ActiveUncertainties) != 3 {
		t.Errorf("active uncertainties = %v, want factors of the active subset", p.ActiveUncertainties)
	}
	if p.ActiveParameterCount() != 3 {
		t.Errorf("ActiveParameterCount = %d, want 3", p.ActiveParameterCount())
	}

	t.Logf("✓ Cutoff sweep: 0.6 → 1 param, 0.3 → 2, 0.01 → 3")
}

// TestSelectActiveParametersMonotonic verifies lowering the cutoff never
// shrinks the active set.
func TestSelectActiveParametersMonotonic(t *testing.T) {
	p := threeParamProject()
	p.AddMeasurement(&Measurement{
		Name: "m1", Value: 1, Uncertainty: 0.1,
		Sensitivities: []float64{0.9, 0.4, 0.1},
	})
	p.AddMeasurement(&Measurement{
		Name: "m2", Value: 2, Uncertainty: 0.1,
		Sensitivities: []float64{0.1, 0.8, 0.3},
	})

	cutoffs := []float64{0.9, 0.6, 0.3, 0.1, 0.01}
	prev := map[int]bool{}
	for _, cutoff := range cutoffs {
		if err := p.SelectActiveParameters(cutoff); err != nil {
			t.Fatalf("cutoff %.2f: %v", cutoff, err)
		}
		current := map[int]bool{}
		for _, i := range p.ActiveParameters {
			current[i] = true
		}
		for i := range prev {
			if !current[i] {
				t.Errorf("cutoff %.2f dropped parameter %d active at a higher cutoff", cutoff, i)
			}
		}
		prev = current
	}

	t.Logf("✓ Active set grows monotonically as cutoff falls")
}

// TestSelectActiveParametersUnion verifies the project-wide set is the
// union of per-measurement selections.
func TestSelectActiveParametersUnion(t *testing.T) {
	p := threeParamProject()
	p.AddMeasurement(&Measurement{
		Name: "m1", Value: 1, Uncertainty: 0.1,
		Sensitivities: []float64{1.0, 0.01, 0.01},
	})
	p.AddMeasurement(&Measurement{
		Name: "m2", Value: 2, Uncertainty: 0.1,
		Sensitivities: []float64{0.01, 0.01, 1.0},
	})

	if err := p.SelectActiveParameters(0.5); err != nil {
		t.Fatalf("SelectActiveParameters failed: %v", err)
	}
	if len(p.ActiveParameters) != 2 || p.ActiveParameters[0] != 0 || p.ActiveParameters[1] != 2 {
		t.Errorf("active = %v, want [0 2]", p.ActiveParameters)
	}

	t.Logf("✓ Union over measurements: %v", p.ActiveParameters)
}

// TestSelectActiveParametersLazySensitivities verifies the sensitivity
// contract is invoked once and cached.
func TestSelectActiveParametersLazySensitivities(t *testing.T) {
	calls := 0
	p := threeParamProject()
	p.AddMeasurement(&Measurement{
		Name: "m1", Value: 1, Uncertainty: 0.1,
		Sensitivity: func() ([]float64, error) {
			calls++
			return []float64{1.0, 0.5, 0.05}, nil
		},
	})

	if err := p.SelectActiveParameters(0.3); err != nil {
		t.Fatalf("SelectActiveParameters failed: %v", err)
	}
	if err := p.SelectActiveParameters(0.6); err != nil {
		t.Fatalf("SelectActiveParameters failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("sensitivity contract invoked %d times, want 1 (cached after first use)", calls)
	}

	t.Logf("✓ Sensitivities requested once, cached thereafter")
}

// TestSelectActiveParametersEmptyResult verifies a cutoff that admits
// nothing is surfaced as an empty active set.
func TestSelectActiveParametersEmptyResult(t *testing.T) {
	p := threeParamProject()
	p.AddMeasurement(&Measurement{
		Name: "m1", Value: 1, Uncertainty: 0.1,
		Sensitivities: []float64{1.0, 0.5, 0.05},
	})

	if err := p.SelectActiveParameters(1.0); !errors.Is(err, ErrEmptyActiveSet) {
		t.Fatalf("err = %v, want ErrEmptyActiveSet", err)
	}

	p2 := threeParamProject()
	if err := p2.SelectActiveParameters(0.5); !errors.Is(err, ErrEmptyActiveSet) {
		t.Fatalf("no measurements: err = %v, want ErrEmptyActiveSet", err)
	}
}

// TestSensitivityListWrongLength verifies a sensitivity vector that does not
// span the full parameter list is rejected.
func TestSensitivityListWrongLength(t *testing.T) {
	p := threeParamProject()
	p.AddMeasurement(&Measurement{
		Name: "m1", Value: 1, Uncertainty: 0.1,
		Sensitivities: []float64{1.0, 0.5},
	})

	if err := p.SelectActiveParameters(0.5); err == nil {
		t.Fatal("expected error for short sensitivity list")
	}
}
