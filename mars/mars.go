// Package mars holds the physical constants of the Martian surface
// environment used throughout the simulator.
package mars

import (
	"github.com/signalsfoundry/plant-simulator/catalog"
	"github.com/signalsfoundry/plant-simulator/core"
)

// Surface conditions. Nominal values; neither seasonal nor regional
// variation is modeled.
const (
	SurfaceGravity     = 3.73          // m/s²
	SurfaceTemperature = -65 + 273.15  // K
	SurfacePressure    = 610           // Pa
)

// AtmosphericComposition returns the mass fractions of the Martian
// atmosphere, down to the trace species the plants care about.
func AtmosphericComposition() map[string]float64 {
	return map[string]float64{
		catalog.CarbonDioxide:  0.9532,
		catalog.Nitrogen:       0.027,
		catalog.Argon:          0.016,
		catalog.Oxygen:         0.0013,
		catalog.CarbonMonoxide: 0.0007,
		catalog.Water:          0.0002,
	}
}

// Surface returns the ambient environment at the Martian surface.
func Surface() core.Environment {
	return core.Environment{
		TemperatureK: SurfaceTemperature,
		PressurePa:   SurfacePressure,
	}
}
