package core

import (
	"fmt"
	"math"
)

// CompressorEfficiency is the assumed efficiency of both liquid and gas
// compression equipment.
const CompressorEfficiency = 0.8

// compressTo raises (or relaxes) a resource's pressure to the target and
// returns the energy required in J, adjusting the resource in place.
//
// Solids compress for free. Liquids are treated as incompressible, so the
// energy is V·ΔP through the compressor efficiency. Gases follow the
// adiabatic relations (NASA Glenn compression/expansion equations), which
// also shift volume and temperature.
func compressTo(targetPa float64, r *Resource) (float64, error) {
	switch r.Phase {
	case PhaseSolid:
		return 0, nil
	case PhaseLiquid:
		deltaP := targetPa - r.Pressure
		energy := deltaP * r.Volume / CompressorEfficiency
		r.Pressure = targetPa
		return energy, nil
	default:
		if r.Pressure == 0 {
			return 0, fmt.Errorf("%w: compressing %q from zero pressure", ErrNumeric, r.Kind)
		}
		if r.Gamma == 0 {
			return 0, fmt.Errorf("%w: compressing %q with zero heat-capacity ratio", ErrNumeric, r.Kind)
		}
		pressureRatio := targetPa / r.Pressure
		invVolRatio := math.Exp(math.Log(pressureRatio) / r.Gamma)
		newVolume := r.Volume / invVolRatio
		tempRatio := math.Pow(pressureRatio, (r.Gamma-1)/r.Gamma)
		energy := (targetPa - r.Pressure) * (r.Volume - newVolume) / CompressorEfficiency
		r.Pressure = targetPa
		r.Volume = newVolume
		r.Temperature *= tempRatio
		return energy, nil
	}
}

// heatTo brings a resource's temperature to the target and returns the
// energy required in J, adjusting the resource in place. Solids and liquids
// use the specific heat directly; gases derive a capacity from the
// heat-capacity ratio and scale volume linearly at constant pressure.
func heatTo(targetK float64, r *Resource) (float64, error) {
	deltaT := targetK - r.Temperature
	switch r.Phase {
	case PhaseSolid, PhaseLiquid:
		energy := r.Mass * deltaT * r.SpecificHeat
		r.Temperature = targetK
		return energy, nil
	default:
		if r.MolarMass == 0 {
			return 0, fmt.Errorf("%w: heating %q with zero molar mass", ErrNumeric, r.Kind)
		}
		if r.Gamma == 1 {
			return 0, fmt.Errorf("%w: heating %q with unit heat-capacity ratio", ErrNumeric, r.Kind)
		}
		if r.Temperature == 0 {
			return 0, fmt.Errorf("%w: heating %q from zero temperature", ErrNumeric, r.Kind)
		}
		cp := r.Gamma * GasConstant * r.Mass / (r.MolarMass * (r.Gamma - 1))
		energy := r.Mass * deltaT * cp
		r.Volume *= targetK / r.Temperature
		r.Temperature = targetK
		return energy, nil
	}
}

// conditionFlow brings every resource of the flow to the given optional
// pressure and temperature targets, accumulating the energy spent. Raising
// pressure or temperature is costed; lowering either is free as long as the
// target stays at or above ambient, because the surrounding environment
// absorbs the difference. Conditioning below ambient has no energy model
// and is rejected.
func conditionFlow(flow Flow, targetTempK, targetPressPa *float64, env Environment, owner string) (float64, error) {
	var energy float64
	for _, kind := range flow.Kinds() {
		r := flow[kind]
		if targetPressPa != nil {
			switch {
			case r.Pressure < *targetPressPa:
				e, err := compressTo(*targetPressPa, r)
				if err != nil {
					return energy, err
				}
				energy += e
			case r.Pressure > *targetPressPa:
				if *targetPressPa < env.PressurePa {
					return energy, fmt.Errorf(
						"%w: %s would depressurize %q below ambient (%g Pa < %g Pa)",
						ErrPhysicalConstraint, owner, kind, *targetPressPa, env.PressurePa)
				}
				r.Pressure = *targetPressPa
			}
		}
		if targetTempK != nil {
			switch {
			case r.Temperature < *targetTempK:
				e, err := heatTo(*targetTempK, r)
				if err != nil {
					return energy, err
				}
				energy += e
			case r.Temperature > *targetTempK:
				if *targetTempK < env.TemperatureK {
					return energy, fmt.Errorf(
						"%w: %s would cool %q below ambient (%g K < %g K)",
						ErrPhysicalConstraint, owner, kind, *targetTempK, env.TemperatureK)
				}
				r.Temperature = *targetTempK
			}
		}
	}
	return energy, nil
}

// Float returns a pointer to v, for optional condition targets.
func Float(v float64) *float64 { return &v }
