package uqfit

import (
	"io"
	"log/slog"
)

// Parameter describes one model parameter: its index in the full model's
// parameter list, a display name, and a multiplicative uncertainty factor
// f > 1. Parameters are immutable once defined; which of them are active is
// a selection recomputed by SelectActiveParameters.
type Parameter struct {
	Index             int
	Name              string
	UncertaintyFactor float64
}

// Config controls the calibration engine.
type Config struct {
	// ConsistencyThreshold is the |Z| above which a measurement is declared
	// inconsistent. The default of 1 flags deviations beyond twice the
	// experimental uncertainty; raise to 2 for a ~95% bound.
	ConsistencyThreshold float64

	// Solver configures the Levenberg–Marquardt iteration.
	Solver SolverConfig
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		ConsistencyThreshold: 1.0,
		Solver:               DefaultSolverConfig(),
	}
}

// Project owns a model's parameter list, the measurements constraining it,
// and the calibration state threaded between the engine's stages.
//
// The four measurement lists are ordered; order matters only for stable
// display and audit. The engine moves measurements from Measurements to
// Removed or LowInformation during pruning and never deletes them.
type Project struct {
	// Measurements actively constrain the fit.
	Measurements []*Measurement
	// Applications are prediction targets: validated and entropy-scored but
	// never part of the residual vector.
	Applications []*Measurement
	// Removed holds measurements pruned as inconsistent, in removal order.
	Removed []*Measurement
	// LowInformation holds measurements pruned as net information sinks.
	LowInformation []*Measurement

	// Parameters is the full model parameter list.
	Parameters []Parameter
	// ActiveParameters indexes Parameters; set by SelectActiveParameters.
	ActiveParameters []int
	// ActiveUncertainties are the uncertainty factors of the active subset.
	ActiveUncertainties []float64

	// Prior regularizes Optimize. Nil selects x₀ = 0, Σ₀⁻¹ = 4·I.
	Prior *Prior

	// Config holds thresholds and solver settings.
	Config Config

	// Logger receives validation tables and pruning decisions. Nil disables
	// reporting.
	Logger *slog.Logger

	solution *Solution
}

// NewProject creates a project over the given model parameters.
func NewProject(parameters []Parameter, cfg Config) *Project {
	return &Project{
		Parameters: parameters,
		Config:     cfg,
	}
}

// AddMeasurement appends a measurement to the active list.
func (p *Project) AddMeasurement(m *Measurement) {
	m.Status = StatusActive
	p.Measurements = append(p.Measurements, m)
}

// AddApplication appends a prediction target to the application list.
func (p *Project) AddApplication(m *Measurement) {
	m.Status = StatusApplication
	p.Applications = append(p.Applications, m)
}

// Items returns every measurement the project has ever held, in list order:
// active, applications, removed, low-information.
func (p *Project) Items() []*Measurement {
	items := make([]*Measurement, 0, p.Len())
	items = append(items, p.Measurements...)
	items = append(items, p.Applications...)
	items = append(items, p.Removed...)
	items = append(items, p.LowInformation...)
	return items
}

// Active returns the measurements participating in validation and entropy
// analysis: the active list followed by the applications.
func (p *Project) Active() []*Measurement {
	active := make([]*Measurement, 0, len(p.Measurements)+len(p.Applications))
	active = append(active, p.Measurements...)
	active = append(active, p.Applications...)
	return active
}

// Len returns the total number of measurements across all lists.
func (p *Project) Len() int {
	return len(p.Measurements) + len(p.Applications) + len(p.Removed) + len(p.LowInformation)
}

// ByName looks a measurement up by name across all lists.
func (p *Project) ByName(name string) (*Measurement, bool) {
	for _, m := range p.Items() {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// ActiveParameterCount returns the size of the current calibration vector.
// With no explicit selection, every model parameter is active.
func (p *Project) ActiveParameterCount() int {
	if p.ActiveParameters != nil {
		return len(p.ActiveParameters)
	}
	return len(p.Parameters)
}

// Solution returns the current calibration snapshot, or nil before the
// first optimization.
func (p *Project) Solution() *Solution { return p.solution }

func (p *Project) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
