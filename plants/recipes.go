// Package plants holds the concrete Mars ISRU process recipes, deposit and
// depot models, and the assembled plant topologies the simulator runs.
// Rates and power draws come from the literature cited alongside each
// recipe; all mass flows are kg/s.
package plants

import (
	"github.com/signalsfoundry/plant-simulator/catalog"
	"github.com/signalsfoundry/plant-simulator/core"
)

// mustTransform guards the static recipe tables below. The component lists
// are compile-time constants, so a failure here is a programming error.
func mustTransform(t *core.Transform, err error) *core.Transform {
	if err != nil {
		panic(err)
	}
	return t
}

// WaterElectrolysis is a SOXE electrolyzer bank splitting steam into
// hydrogen and oxygen at 700 °C and 200 kPa.
func WaterElectrolysis(name string, f core.Factory, env core.Environment) *core.Multiplex {
	t := mustTransform(core.NewTransform(
		[]core.Component{{Kind: catalog.Water, Phase: core.PhaseGas, Rate: 0.72 / 3600}},
		[]core.Component{
			{Kind: catalog.Hydrogen, Phase: core.PhaseGas, Rate: 0.08 / 3600},
			{Kind: catalog.Oxygen, Phase: core.PhaseGas, Rate: 0.64 / 3600},
		},
		3904))
	return core.NewMultiplex(core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(700 + 273.15),
		Pressure:    core.Float(200 * 1000),
		Filtered:    true,
	}))
}

// MethaneSabatier reacts hydrogen with atmospheric CO2 into liquid methane.
// Gas heating and compression carry the energy cost, so the reactor itself
// draws no power.
// https://ntrs.nasa.gov/api/citations/20180004697/downloads/20180004697.pdf
func MethaneSabatier(name string, f core.Factory, env core.Environment) *core.Multiplex {
	t := mustTransform(core.NewTransform(
		[]core.Component{
			{Kind: catalog.Hydrogen, Phase: core.PhaseGas, Rate: 0.224 / 3600},
			{Kind: catalog.CarbonDioxide, Phase: core.PhaseGas, Rate: 0.984 / 3600},
		},
		[]core.Component{{Kind: catalog.Methane, Phase: core.PhaseLiquid, Rate: 0.34 / 3600}},
		0))
	return core.NewMultiplex(core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(375 + 273.15),
		Pressure:    core.Float(517107),
		Filtered:    true,
	}))
}

// H2O2Cryocooler liquefies hydrogen and oxygen together at the 1:8 SOXE
// output ratio.
// https://ntrs.nasa.gov/api/citations/20230014845/downloads/Ascend23_H2Liq_Paper_v1.pdf
func H2O2Cryocooler(name string, f core.Factory, env core.Environment, filtered bool) *core.Multiplex {
	t := mustTransform(core.NewTransform(
		[]core.Component{
			{Kind: catalog.Hydrogen, Phase: core.PhaseGas, Rate: 0.3 / 3600},
			{Kind: catalog.Oxygen, Phase: core.PhaseGas, Rate: 2.4 / 3600},
		},
		[]core.Component{
			{Kind: catalog.Hydrogen, Phase: core.PhaseLiquid, Rate: 0.3 / 3600},
			{Kind: catalog.Oxygen, Phase: core.PhaseLiquid, Rate: 2.4 / 3600},
		},
		35000))
	return core.NewMultiplex(core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(env.TemperatureK),
		Filtered:    filtered,
	}))
}

// O2Cryocooler liquefies oxygen alone. Sized from the industry standard
// 700 kWh/mT at 2.4 kg/hr.
func O2Cryocooler(name string, f core.Factory, env core.Environment, filtered bool) *core.Multiplex {
	t := mustTransform(core.NewTransform(
		[]core.Component{{Kind: catalog.Oxygen, Phase: core.PhaseGas, Rate: 2.4 / 3600}},
		[]core.Component{{Kind: catalog.Oxygen, Phase: core.PhaseLiquid, Rate: 2.4 / 3600}},
		1700))
	return core.NewMultiplex(core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(env.TemperatureK),
		Filtered:    filtered,
	}))
}

// WaterSublimation turns water ice directly to vapor at low Martian
// pressure. Modeled as a high-capacity process; the conditioning step that
// heats the ice to the working temperature carries the energy cost.
func WaterSublimation(name string, f core.Factory, env core.Environment) *core.Process {
	t := mustTransform(core.NewTransform(
		[]core.Component{{Kind: catalog.Water, Phase: core.PhaseSolid, Rate: 100.0 / 3600}},
		[]core.Component{{Kind: catalog.Water, Phase: core.PhaseGas, Rate: 100.0 / 3600}},
		0))
	return core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(600 + 273.15),
		Pressure:    core.Float(env.PressurePa),
	})
}

// HydrateLiberationLowTemp frees water from hydrated minerals at 600 °C,
// hot enough to recover about two thirds of the bound water while keeping
// sulfide contamination negligible. The liberated hydrates are roughly 20%
// water by mass.
func HydrateLiberationLowTemp(name string, f core.Factory, env core.Environment) *core.Process {
	t := mustTransform(core.NewTransform(
		[]core.Component{{Kind: catalog.HydrateWet, Phase: core.PhaseSolid, Rate: 100.0 / 3600}},
		[]core.Component{
			{Kind: catalog.HydrateWet, Phase: core.PhaseSolid, Rate: 33.3 / 3600},
			{Kind: catalog.HydrateDry, Phase: core.PhaseSolid, Rate: 53.3 / 3600},
			{Kind: catalog.Water, Phase: core.PhaseGas, Rate: 13.3 / 3600},
		},
		0))
	return core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(600 + 273.15),
		Pressure:    core.Float(env.PressurePa),
	})
}

// HydrateLiberationHighTemp drives off all bound water at 1000 °C at the
// cost of sulphur dioxide contamination, estimated at 1.5% of hydrate mass.
func HydrateLiberationHighTemp(name string, f core.Factory, env core.Environment) *core.Process {
	t := mustTransform(core.NewTransform(
		[]core.Component{{Kind: catalog.HydrateWet, Phase: core.PhaseSolid, Rate: 100.0 / 3600}},
		[]core.Component{
			{Kind: catalog.HydrateDry, Phase: core.PhaseSolid, Rate: 80.0 / 3600},
			{Kind: catalog.Water, Phase: core.PhaseGas, Rate: 20.0 / 3600},
			{Kind: catalog.SulphurDioxide, Phase: core.PhaseGas, Rate: 1.5 / 3600},
		},
		0))
	return core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(1000 + 273.15),
		Pressure:    core.Float(env.PressurePa),
	})
}

// RegolithPulverization crushes raw regolith for downstream heating.
func RegolithPulverization(name string, f core.Factory, env core.Environment) *core.Process {
	t := mustTransform(core.NewTransform(
		[]core.Component{{Kind: catalog.Regolith, Phase: core.PhaseSolid, Rate: 30.0 / 3600}},
		[]core.Component{{Kind: catalog.Regolith, Phase: core.PhaseSolid, Rate: 30.0 / 3600}},
		2000))
	return core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(env.TemperatureK),
		Pressure:    core.Float(env.PressurePa),
	})
}

// BaggingRate is 120 cubic feet of bags per day at nominal regolith
// density, as a per-second mass rate. The reference system runs 8 hours a
// day; continuous operation is assumed here and intermittency handled by
// the power side.
// https://ntrs.nasa.gov/api/citations/19900015907/downloads/19900015907.pdf
const BaggingRate = 120 * 0.0283 * 1400 / 3600

// RegolithBagging bags whatever solid material reaches it, regardless of
// kind.
func RegolithBagging(name string, f core.Factory, env core.Environment) *core.Process {
	t := mustTransform(core.NewWildcardTransform(
		core.WildcardInput{Phase: core.PhaseSolid, Rate: BaggingRate},
		nil,
		[]core.Component{{Kind: catalog.RegolithBagged, Phase: core.PhaseSolid, Rate: BaggingRate}},
		3760))
	return core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(env.TemperatureK),
		Pressure:    core.Float(env.PressurePa),
	})
}

// RegolithSintering melts pooled solids into basaltic glass. Sized from the
// best case of ~20 g sintered per 1000 W over ~200 s, scaled tenfold. The
// liquid output phase keeps the glass out of downstream solid pools.
// https://oro.open.ac.uk/66214/
func RegolithSintering(name string, f core.Factory, env core.Environment) *core.Process {
	t := mustTransform(core.NewWildcardTransform(
		core.WildcardInput{Phase: core.PhaseSolid, Rate: 10 * 0.02 / 200},
		nil,
		[]core.Component{{Kind: catalog.BasalticGlass, Phase: core.PhaseLiquid, Rate: 10 * 0.02 / 200}},
		10*1000))
	return core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(env.TemperatureK),
		Pressure:    core.Float(env.PressurePa),
	})
}

// MoltenRegolithElectrolysis refines regolith into metal alloy, slag, and
// oxygen. Sized from Guerrero-Gonzalez et al.'s lunar MRE plant producing
// 25 mT of metal per year, with half the input remaining as slag; the power
// estimate covers the phase-change heating.
func MoltenRegolithElectrolysis(name string, f core.Factory, env core.Environment) *core.Process {
	t := mustTransform(core.NewTransform(
		[]core.Component{{Kind: catalog.Regolith, Phase: core.PhaseSolid, Rate: 73.9 * 1000 / (365 * 3600)}},
		[]core.Component{
			{Kind: catalog.MetalAlloy, Phase: core.PhaseSolid, Rate: 25 * 1000 / (365 * 3600)},
			{Kind: catalog.Slag, Phase: core.PhaseSolid, Rate: 25 * 1000 / (365 * 3600)},
			{Kind: catalog.Oxygen, Phase: core.PhaseGas, Rate: 23.9 * 1000 / (365 * 3600)},
		},
		300000))
	return core.NewProcess(name, t, f, env, core.ProcessOptions{
		Temperature: core.Float(env.TemperatureK),
		Pressure:    core.Float(env.PressurePa),
	})
}
