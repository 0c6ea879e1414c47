package plants

import (
	"fmt"

	"github.com/signalsfoundry/plant-simulator/catalog"
	"github.com/signalsfoundry/plant-simulator/core"
)

// Depot node names, used to address production targets at Setup.
const (
	FuelStorageName   = "fuel_storage"
	MetalsStorageName = "metals_storage"
)

// Addon selects an optional regolith-handling tail grafted onto a fuel
// plant, consuming the solids the heating step leaves behind.
type Addon int

const (
	AddonNone Addon = iota
	// AddonBagging bags the spent regolith directly.
	AddonBagging
	// AddonSinterBagging sinters the spent regolith and bags what the
	// sinter cannot keep up with.
	AddonSinterBagging
	// AddonSinterMRE sinters the spent regolith and refines the remainder
	// by molten regolith electrolysis.
	AddonSinterMRE
	// AddonMRE refines the spent regolith directly.
	AddonMRE
)

// String returns the addon name as used in scenario files.
func (a Addon) String() string {
	switch a {
	case AddonNone:
		return "none"
	case AddonBagging:
		return "bagging"
	case AddonSinterBagging:
		return "sinter_bagging"
	case AddonSinterMRE:
		return "sinter_mre"
	case AddonMRE:
		return "mre"
	default:
		return fmt.Sprintf("addon(%d)", int(a))
	}
}

func (a Addon) specs(f core.Factory, env core.Environment) []core.NodeSpec {
	switch a {
	case AddonBagging:
		return []core.NodeSpec{
			{Impl: RegolithBagging("bagging", f, env), From: []string{"heating"}},
		}
	case AddonSinterBagging:
		return []core.NodeSpec{
			{Impl: RegolithSintering("sinter", f, env), From: []string{"heating"}},
			{Impl: RegolithBagging("bagging", f, env), From: []string{"sinter"}},
		}
	case AddonSinterMRE:
		return []core.NodeSpec{
			{Impl: RegolithSintering("sinter", f, env), From: []string{"heating"}},
			{Impl: MoltenRegolithElectrolysis("mre", f, env), From: []string{"sinter"}},
		}
	case AddonMRE:
		return []core.NodeSpec{
			{Impl: MoltenRegolithElectrolysis("mre", f, env), From: []string{"heating"}},
		}
	default:
		return nil
	}
}

// heatingStep picks the water-recovery process matching the regolith: free
// ice sublimates, bound water needs hydrate liberation.
func heatingStep(model RegolithModel, f core.Factory, env core.Environment) *core.Process {
	if model.Icy() {
		return WaterSublimation("heating", f, env)
	}
	return HydrateLiberationLowTemp("heating", f, env)
}

// LO2LH2Plant assembles the liquid oxygen / liquid hydrogen fuel plant:
// crush the site regolith, recover water, electrolyze it, and liquefy both
// product gases into a 6:1 oxygen-to-hydrogen fuel store.
func LO2LH2Plant(model RegolithModel, addon Addon, f core.Factory, env core.Environment) (*core.Plant, error) {
	specs := []core.NodeSpec{
		{Impl: SiteRegolith(model, f, env)},
		{Impl: RegolithPulverization("crushing", f, env), From: []string{"site_regolith"}},
		{Impl: heatingStep(model, f, env), From: []string{"crushing"}},
		{Impl: WaterElectrolysis("electrolysis", f, env), From: []string{"heating"}},
		{Impl: H2O2Cryocooler("h2o2_liquefaction", f, env, true), From: []string{"electrolysis"}},
		{Impl: core.NewDepot(FuelStorageName,
			map[string]float64{catalog.Oxygen: 0.857, catalog.Hydrogen: 0.143},
			core.PhaseLiquid, f, env, core.DepotOptions{}),
			From: []string{"h2o2_liquefaction"}},
	}
	specs = append(specs, addon.specs(f, env)...)
	return core.NewPlant(specs)
}

// LO2CH4Plant assembles the liquid oxygen / liquid methane fuel plant: the
// water chain feeds a SOXE electrolyzer whose hydrogen reacts with
// atmospheric CO2 in a Sabatier loop, while the oxygen is liquefied
// separately into a 3:1 oxygen-to-methane fuel store.
func LO2CH4Plant(model RegolithModel, addon Addon, f core.Factory, env core.Environment) (*core.Plant, error) {
	specs := []core.NodeSpec{
		{Impl: SiteRegolith(model, f, env)},
		{Impl: Atmosphere(f, env)},
		{Impl: RegolithPulverization("crushing", f, env), From: []string{"site_regolith"}},
		{Impl: heatingStep(model, f, env), From: []string{"crushing"}},
		{Impl: WaterElectrolysis("electrolysis", f, env), From: []string{"heating"}},
		{Impl: MethaneSabatier("methane_production", f, env),
			From: []string{"electrolysis", "mars_atmosphere"}},
		{Impl: O2Cryocooler("o2_liquefaction", f, env, true), From: []string{"electrolysis"}},
		{Impl: core.NewDepot(FuelStorageName,
			map[string]float64{catalog.Oxygen: 0.75, catalog.Methane: 0.25},
			core.PhaseLiquid, f, env, core.DepotOptions{}),
			From: []string{"o2_liquefaction", "methane_production"}},
	}
	specs = append(specs, addon.specs(f, env)...)
	return core.NewPlant(specs)
}

// MetalsPlant assembles the molten regolith electrolysis plant on hydrate
// regolith, with water and sulphur dioxide as unrefined side streams.
// refineO2 adds a cryocooler condensing the MRE oxygen output.
func MetalsPlant(refineO2 bool, f core.Factory, env core.Environment) (*core.Plant, error) {
	specs := []core.NodeSpec{
		{Impl: SiteRegolith(RegolithHydrate, f, env)},
		{Impl: RegolithPulverization("crushing", f, env), From: []string{"site_regolith"}},
		{Impl: HydrateLiberationHighTemp("heating", f, env), From: []string{"crushing"}},
		{Impl: MoltenRegolithElectrolysis("mre", f, env), From: []string{"heating"}},
		{Impl: core.NewDepot(MetalsStorageName,
			map[string]float64{catalog.MetalAlloy: 1.0},
			core.PhaseSolid, f, env, core.DepotOptions{}),
			From: []string{"mre"}},
	}
	if refineO2 {
		specs = append(specs, core.NodeSpec{
			Impl: O2Cryocooler("o2_liquefaction", f, env, true), From: []string{"mre"},
		})
	}
	return core.NewPlant(specs)
}
