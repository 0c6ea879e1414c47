package plants

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/plant-simulator/core"
)

// Scenario is one plant campaign loaded from JSON: which plant to build,
// on which regolith, and how much product to demand per step.
type Scenario struct {
	Plant    string
	Regolith RegolithModel
	Addon    Addon
	RefineO2 bool

	// TargetMassKg is the per-step production demand placed on the
	// plant's depot.
	TargetMassKg float64
	TimeStepS    float64
	Steps        int
}

// internal JSON shape – unexported so the file format can evolve freely.
type scenarioJSON struct {
	Plant        string   `json:"plant"`    // "lo2_lh2" | "lo2_ch4" | "metals"
	Regolith     string   `json:"regolith"` // "dry" | "hydrate" | "icy" | "glacial_ice"
	Addon        string   `json:"addon"`    // "none" | "bagging" | "sinter_bagging" | "sinter_mre" | "mre"
	RefineO2     bool     `json:"refine_o2"`
	TargetMassKg float64  `json:"target_mass_kg"`
	TimeStepS    *float64 `json:"time_step_s"` // optional; defaults to one sol-ish day
	Steps        *int     `json:"steps"`       // optional; defaults to 1
}

// LoadScenario reads a JSON scenario from r. Structural problems and
// unknown enum values fail here; topology problems surface when the plant
// is built.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	s := &Scenario{
		Plant:        payload.Plant,
		RefineO2:     payload.RefineO2,
		TargetMassKg: payload.TargetMassKg,
		TimeStepS:    24 * 60 * 60,
		Steps:        1,
	}
	switch payload.Plant {
	case "lo2_lh2", "lo2_ch4", "metals":
	case "":
		return nil, fmt.Errorf("LoadScenario: missing plant selection")
	default:
		return nil, fmt.Errorf("LoadScenario: unknown plant %q", payload.Plant)
	}
	if s.TargetMassKg <= 0 {
		return nil, fmt.Errorf("LoadScenario: target_mass_kg must be positive, got %g", payload.TargetMassKg)
	}

	switch payload.Regolith {
	case "dry":
		s.Regolith = RegolithDry
	case "hydrate", "":
		s.Regolith = RegolithHydrate
	case "icy":
		s.Regolith = RegolithIcy
	case "glacial_ice":
		s.Regolith = RegolithGlacialIce
	default:
		return nil, fmt.Errorf("LoadScenario: unknown regolith model %q", payload.Regolith)
	}

	switch payload.Addon {
	case "none", "":
		s.Addon = AddonNone
	case "bagging":
		s.Addon = AddonBagging
	case "sinter_bagging":
		s.Addon = AddonSinterBagging
	case "sinter_mre":
		s.Addon = AddonSinterMRE
	case "mre":
		s.Addon = AddonMRE
	default:
		return nil, fmt.Errorf("LoadScenario: unknown addon %q", payload.Addon)
	}

	if payload.TimeStepS != nil {
		if *payload.TimeStepS <= 0 {
			return nil, fmt.Errorf("LoadScenario: time_step_s must be positive, got %g", *payload.TimeStepS)
		}
		s.TimeStepS = *payload.TimeStepS
	}
	if payload.Steps != nil {
		if *payload.Steps < 1 {
			return nil, fmt.Errorf("LoadScenario: steps must be at least 1, got %d", *payload.Steps)
		}
		s.Steps = *payload.Steps
	}
	return s, nil
}

// DepotName returns the depot the scenario's production target addresses.
func (s *Scenario) DepotName() string {
	if s.Plant == "metals" {
		return MetalsStorageName
	}
	return FuelStorageName
}

// Build assembles the scenario's plant against the given kind factory and
// ambient environment.
func (s *Scenario) Build(f core.Factory, env core.Environment) (*core.Plant, error) {
	switch s.Plant {
	case "lo2_lh2":
		return LO2LH2Plant(s.Regolith, s.Addon, f, env)
	case "lo2_ch4":
		return LO2CH4Plant(s.Regolith, s.Addon, f, env)
	case "metals":
		return MetalsPlant(s.RefineO2, f, env)
	default:
		return nil, fmt.Errorf("unknown plant %q", s.Plant)
	}
}
