package core

import "fmt"

// GasConstant is the universal gas constant in J/(mol·K).
const GasConstant = 8.314

// MassTolerance is the relative tolerance below which a residual mass is
// treated as fully consumed, absorbing floating-point error in the
// stoichiometric bookkeeping.
const MassTolerance = 1e-5

// Phase identifies the state of matter of a resource quantity.
type Phase int

const (
	PhaseSolid Phase = iota
	PhaseLiquid
	PhaseGas
	PhasePlasma
)

// String returns the canonical upper-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSolid:
		return "SOLID"
	case PhaseLiquid:
		return "LIQUID"
	case PhaseGas:
		return "GAS"
	case PhasePlasma:
		return "PLASMA"
	default:
		return fmt.Sprintf("PHASE(%d)", int(p))
	}
}

// GasVariable selects which ideal-gas state variable SolveIdealGas derives
// from the other two.
type GasVariable int

const (
	GasPressure GasVariable = iota
	GasVolume
	GasTemperature
)

// Resource is a quantity of one material kind together with the physical
// properties needed to condition and transform it. Mass is in kg, volume in
// m³, temperature in K, pressure in Pa, molar mass in kg/mol. Density is
// indexed by phase in kg/m³; Gamma is the heat-capacity ratio used for
// gases, SpecificHeat the cp in J/(kg·K) used for solids and liquids.
type Resource struct {
	Kind        string
	Mass        float64
	Volume      float64
	Phase       Phase
	Temperature float64
	Pressure    float64

	MolarMass    float64
	Density      map[Phase]float64
	Gamma        float64
	SpecificHeat float64
}

// SetMass assigns the mass and re-derives the volume from the active phase:
// solids and liquids through the density table, gases and plasmas through
// the ideal gas law. Plasma gets no special treatment beyond the gas law;
// nothing in the current plants needs magnetohydrodynamics.
func (r *Resource) SetMass(mass float64) error {
	r.Mass = mass
	switch r.Phase {
	case PhaseSolid, PhaseLiquid:
		density, ok := r.Density[r.Phase]
		if !ok {
			return fmt.Errorf("%w: no %s density for %q, cannot derive volume",
				ErrNumeric, r.Phase, r.Kind)
		}
		r.Volume = r.Mass * density
	default:
		if r.Pressure == 0 {
			return fmt.Errorf("%w: zero pressure for %q, cannot derive volume",
				ErrNumeric, r.Kind)
		}
		if r.MolarMass == 0 {
			return fmt.Errorf("%w: zero molar mass for %q, cannot derive volume",
				ErrNumeric, r.Kind)
		}
		return r.SolveIdealGas(GasVolume)
	}
	return nil
}

// SolveIdealGas derives the selected state variable from the other two and
// the current mass, using PV = (m/M)·R·T. Valid only for gas and plasma:
// plasma rides the ideal gas law the same way SetMass routes it, since no
// plant models plasma-specific behavior.
func (r *Resource) SolveIdealGas(target GasVariable) error {
	if r.Phase == PhaseSolid || r.Phase == PhaseLiquid {
		return fmt.Errorf("%w: ideal gas solve for %q in %s phase",
			ErrNumeric, r.Kind, r.Phase)
	}
	switch target {
	case GasPressure:
		r.Pressure = r.Mass * r.Temperature * GasConstant / (r.Volume * r.MolarMass)
	case GasVolume:
		r.Volume = r.Mass * r.Temperature * GasConstant / (r.Pressure * r.MolarMass)
	case GasTemperature:
		r.Temperature = r.Pressure * r.Volume * r.MolarMass / (GasConstant * r.Mass)
	default:
		return fmt.Errorf("%w: unknown gas variable %d", ErrNumeric, int(target))
	}
	return nil
}

// Clone returns an independent copy of the resource, including its density
// table. Used where a caller must keep a snapshot of a flow that the
// scheduler will go on to drain.
func (r *Resource) Clone() *Resource {
	cp := *r
	if r.Density != nil {
		cp.Density = make(map[Phase]float64, len(r.Density))
		for ph, d := range r.Density {
			cp.Density[ph] = d
		}
	}
	return &cp
}
