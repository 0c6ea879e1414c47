// Package catalog holds the closed registry of resource kinds a plant can
// handle: per-kind physical property records and the factory that stamps
// out resource quantities from them. Every node receives the registry as a
// core.Factory at construction; kinds are never resolved dynamically.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/plant-simulator/core"
)

// Kind identifiers known to the default catalog.
const (
	Water          = "water"
	Oxygen         = "oxygen"
	Nitrogen       = "nitrogen"
	Hydrogen       = "hydrogen"
	Methane        = "methane"
	CarbonDioxide  = "carbon_dioxide"
	CarbonMonoxide = "carbon_monoxide"
	Argon          = "argon"
	SulphurDioxide = "sulphur_dioxide"
	Regolith       = "mars_regolith"
	RegolithBagged = "mars_regolith_bagged"
	HydrateWet     = "mars_mineral_hydrate_wet"
	HydrateDry     = "mars_mineral_hydrate_dry"
	BasalticGlass  = "mars_basaltic_glass"
	MetalAlloy     = "mars_metal_alloy"
	Slag           = "mars_slag"
)

// Properties is the physical record of one resource kind. Density is by
// phase in kg/m³ and may be partial; kinds that never condense carry no
// entries. MolarMass is kg/mol, Gamma the heat-capacity ratio for the gas
// phase, SpecificHeat the cp in J/(kg·K) for condensed phases.
type Properties struct {
	DefaultPhase core.Phase
	MolarMass    float64
	Gamma        float64
	SpecificHeat float64
	Density      map[core.Phase]float64
}

var (
	ErrUnknownKind   = fmt.Errorf("%w: unknown resource kind", core.ErrConfiguration)
	ErrDuplicateKind = fmt.Errorf("%w: duplicate resource kind", core.ErrConfiguration)
)

// Registry is a concurrency-safe kind table implementing core.Factory.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Properties
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Properties)}
}

// Register adds a kind to the registry. Registering a kind twice is an
// error; property records are immutable once added.
func (r *Registry) Register(kind string, props Properties) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKind, kind)
	}
	r.kinds[kind] = props
	return nil
}

// Lookup returns the property record for a kind.
func (r *Registry) Lookup(kind string) (Properties, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	props, ok := r.kinds[kind]
	if !ok {
		return Properties{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return props, nil
}

// Kinds returns the registered kind identifiers in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// New stamps out a resource quantity of a registered kind, deriving its
// volume from the given conditions. Implements core.Factory.
func (r *Registry) New(kind string, massKg, temperatureK, pressurePa float64, phase core.Phase) (*core.Resource, error) {
	props, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	res := &core.Resource{
		Kind:         kind,
		Phase:        phase,
		Temperature:  temperatureK,
		Pressure:     pressurePa,
		MolarMass:    props.MolarMass,
		Gamma:        props.Gamma,
		SpecificHeat: props.SpecificHeat,
		Density:      props.Density,
	}
	if err := res.SetMass(massKg); err != nil {
		return nil, err
	}
	return res, nil
}

// Default returns a registry loaded with the full Mars ISRU kind table.
// Densities are nominal values; the regolith records average several MGS-1
// simulants.
func Default() *Registry {
	r := NewRegistry()
	regolith := Properties{
		DefaultPhase: core.PhaseSolid,
		SpecificHeat: 620,
		Density:      map[core.Phase]float64{core.PhaseSolid: 1300},
	}
	for kind, props := range map[string]Properties{
		Water: {
			DefaultPhase: core.PhaseSolid,
			MolarMass:    0.01802,
			Gamma:        1.32,
			SpecificHeat: 2050,
			Density:      map[core.Phase]float64{core.PhaseSolid: 916, core.PhaseLiquid: 1000},
		},
		Oxygen: {
			DefaultPhase: core.PhaseGas,
			MolarMass:    0.032,
			Gamma:        1.4,
			SpecificHeat: 1452,
			Density:      map[core.Phase]float64{core.PhaseLiquid: 1141},
		},
		Nitrogen: {
			DefaultPhase: core.PhaseGas,
			MolarMass:    0.02802,
			Gamma:        1.45,
			SpecificHeat: 2000,
			Density:      map[core.Phase]float64{core.PhaseLiquid: 807},
		},
		Hydrogen: {
			DefaultPhase: core.PhaseGas,
			MolarMass:    0.002016,
			Gamma:        1.41,
			SpecificHeat: 14290,
			Density:      map[core.Phase]float64{core.PhaseLiquid: 70.85},
		},
		Methane: {
			DefaultPhase: core.PhaseGas,
			MolarMass:    0.016,
			Gamma:        1.35,
			SpecificHeat: 2191,
			Density:      map[core.Phase]float64{core.PhaseSolid: 433, core.PhaseLiquid: 422},
		},
		CarbonDioxide: {
			DefaultPhase: core.PhaseGas,
			MolarMass:    0.044,
			Gamma:        1.3,
			SpecificHeat: 815,
			Density:      map[core.Phase]float64{core.PhaseSolid: 1564},
		},
		CarbonMonoxide: {
			DefaultPhase: core.PhaseGas,
			MolarMass:    0.028,
			Gamma:        1.4,
			SpecificHeat: 1036,
		},
		Argon: {
			DefaultPhase: core.PhaseGas,
			MolarMass:    0.03995,
			Gamma:        1.67,
		},
		SulphurDioxide: {
			DefaultPhase: core.PhaseGas,
			MolarMass:    0.06401,
			Gamma:        1.29,
			SpecificHeat: 622,
		},
		Regolith:       regolith,
		RegolithBagged: regolith,
		HydrateWet:     regolith,
		HydrateDry:     regolith,
		MetalAlloy:     regolith,
		Slag:           regolith,
		BasalticGlass: {
			DefaultPhase: core.PhaseSolid,
			SpecificHeat: 620,
			Density:      map[core.Phase]float64{core.PhaseSolid: 1300, core.PhaseLiquid: 1300},
		},
	} {
		if err := r.Register(kind, props); err != nil {
			panic(err)
		}
	}
	return r
}
