package plants

import (
	"fmt"

	"github.com/signalsfoundry/plant-simulator/catalog"
	"github.com/signalsfoundry/plant-simulator/core"
	"github.com/signalsfoundry/plant-simulator/mars"
)

// RegolithModel selects the site regolith composition, which varies with
// ice content and hydrate fraction.
type RegolithModel int

const (
	// RegolithDry is the worst case: no substantial ice, ~12% hydrates for
	// about 2.5% water by mass overall.
	RegolithDry RegolithModel = iota
	// RegolithHydrate uses the hydrate ratio of global simulants, likely
	// the high end of the expected water mass fraction.
	RegolithHydrate
	// RegolithIcy is a mix of porous dust and ice as expected in areas
	// like Utopia Planitia, rich in hydrates as well.
	RegolithIcy
	// RegolithGlacialIce is a true glacial deposit, 75-90% pure ice.
	RegolithGlacialIce
)

// String returns the model name as used in scenario files.
func (m RegolithModel) String() string {
	switch m {
	case RegolithDry:
		return "dry"
	case RegolithHydrate:
		return "hydrate"
	case RegolithIcy:
		return "icy"
	case RegolithGlacialIce:
		return "glacial_ice"
	default:
		return fmt.Sprintf("regolith(%d)", int(m))
	}
}

// Icy reports whether the model carries free water ice, which changes the
// heating step from hydrate liberation to sublimation.
func (m RegolithModel) Icy() bool {
	return m == RegolithIcy || m == RegolithGlacialIce
}

func (m RegolithModel) fractions() map[string]float64 {
	switch m {
	case RegolithHydrate:
		return map[string]float64{catalog.Regolith: 0.6, catalog.HydrateWet: 0.4}
	case RegolithIcy:
		return map[string]float64{catalog.Regolith: 0.5, catalog.HydrateWet: 0.25, catalog.Water: 0.25}
	case RegolithGlacialIce:
		return map[string]float64{catalog.Water: 0.8, catalog.Regolith: 0.15, catalog.HydrateWet: 0.05}
	default:
		return map[string]float64{catalog.Regolith: 0.825, catalog.HydrateWet: 0.175}
	}
}

// SiteRegolith builds the site deposit for the chosen regolith model.
func SiteRegolith(model RegolithModel, f core.Factory, env core.Environment) *core.Deposit {
	return core.NewDeposit("site_regolith", model.fractions(), core.PhaseSolid,
		env.TemperatureK, env.PressurePa, f)
}

// Atmosphere builds the Martian atmosphere deposit, invariant across
// plants.
func Atmosphere(f core.Factory, env core.Environment) *core.Deposit {
	return core.NewDeposit("mars_atmosphere", mars.AtmosphericComposition(), core.PhaseGas,
		env.TemperatureK, env.PressurePa, f)
}
