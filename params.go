package uqfit

import (
	"fmt"
	"math"
	"sort"
)

// SelectActiveParameters chooses which model parameters participate in
// calibration, based on sensitivity weighted by parameter uncertainty.
//
// For each active measurement and each parameter p, the impact factor is
//
//	I_p = S_p · ln(f_p)
//
// where S_p is the measurement's sensitivity to p and f_p the parameter's
// multiplicative uncertainty factor. A parameter is active for that
// measurement when |I_p| > cutoff · max_p|I_p|; the project-wide active set
// is the union over all active measurements.
//
// Lowering the cutoff toward 0 admits more parameters, raising it toward 1
// fewer. Sensitivities are requested through each measurement's sensitivity
// contract when not cached.
func (p *Project) SelectActiveParameters(cutoff float64) error {
	if len(p.Measurements) == 0 {
		return fmt.Errorf("select active parameters: %w", ErrEmptyActiveSet)
	}
	if len(p.Parameters) == 0 {
		return fmt.Errorf("select active parameters: no model parameters: %w", ErrEmptyActiveSet)
	}

	numParams := len(p.Parameters)
	selected := make(map[int]bool)

	for _, m := range p.Measurements {
		sens, err := m.sensitivityList(numParams)
		if err != nil {
			return fmt.Errorf("select active parameters: %w", err)
		}

		impacts := make([]float64, numParams)
		maxImpact := 0.0
		for i, param := range p.Parameters {
			impacts[i] = sens[i] * math.Log(param.UncertaintyFactor)
			if a := math.Abs(impacts[i]); a > maxImpact {
				maxImpact = a
			}
		}

		threshold := maxImpact * cutoff
		for i := range impacts {
			if math.Abs(impacts[i]) > threshold {
				selected[i] = true
			}
		}
	}

	if len(selected) == 0 {
		return fmt.Errorf("select active parameters: cutoff %.3f admits no parameters: %w",
			cutoff, ErrEmptyActiveSet)
	}

	active := make([]int, 0, len(selected))
	for i := range selected {
		active = append(active, i)
	}
	sort.Ints(active)

	uncertainties := make([]float64, len(active))
	for k, i := range active {
		uncertainties[k] = p.Parameters[i].UncertaintyFactor
	}

	p.ActiveParameters = active
	p.ActiveUncertainties = uncertainties

	p.logger().Info("active parameters selected",
		"cutoff", cutoff,
		"active", len(active),
		"total", numParams)

	return nil
}
