package core

import (
	"fmt"
	"math"
	"testing"
)

// tableFactory is a minimal Factory over a fixed property table, standing in
// for the full kind catalog in these tests.
type kindProps struct {
	molarMass float64
	gamma     float64
	cp        float64
	density   map[Phase]float64
}

type tableFactory map[string]kindProps

func (f tableFactory) New(kind string, massKg, temperatureK, pressurePa float64, phase Phase) (*Resource, error) {
	props, ok := f[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown resource kind %q", ErrConfiguration, kind)
	}
	r := &Resource{
		Kind:         kind,
		Phase:        phase,
		Temperature:  temperatureK,
		Pressure:     pressurePa,
		MolarMass:    props.molarMass,
		Gamma:        props.gamma,
		SpecificHeat: props.cp,
		Density:      props.density,
	}
	if err := r.SetMass(massKg); err != nil {
		return nil, err
	}
	return r, nil
}

func testFactory() tableFactory {
	return tableFactory{
		"water": {molarMass: 0.018, gamma: 1.33, cp: 4184,
			density: map[Phase]float64{PhaseSolid: 920, PhaseLiquid: 1000}},
		"oxygen": {molarMass: 0.032, gamma: 1.40, cp: 918,
			density: map[Phase]float64{PhaseLiquid: 1141}},
		"hydrogen": {molarMass: 0.002, gamma: 1.41, cp: 14300,
			density: map[Phase]float64{PhaseLiquid: 71}},
		"gravel": {cp: 840, density: map[Phase]float64{PhaseSolid: 1700}},
		"alloy":  {cp: 500, density: map[Phase]float64{PhaseSolid: 7000}},
	}
}

var testEnv = Environment{TemperatureK: 210, PressurePa: 600}

func newResource(t *testing.T, f Factory, kind string, mass, tempK, pressPa float64, phase Phase) *Resource {
	t.Helper()
	r, err := f.New(kind, mass, tempK, pressPa, phase)
	if err != nil {
		t.Fatalf("New(%q): %v", kind, err)
	}
	return r
}

func relClose(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= 1e-9*scale
}
