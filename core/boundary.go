package core

import (
	"fmt"
	"sort"
)

// Deposit is an unconstrained supply of raw material at fixed composition.
// The backward pass resolves the output rate needed to satisfy the merged
// downstream demand; the forward pass then emits material at that rate. The
// rate is scratch state owned by one Setup/Run cycle and is re-armed by the
// scheduler between steps.
type Deposit struct {
	name        string
	fractions   map[string]float64
	kinds       []string
	phase       Phase
	temperature float64
	pressure    float64
	factory     Factory

	rate *float64
}

// NewDeposit builds a deposit emitting the given mass fractions, all in one
// phase at the given conditions.
func NewDeposit(name string, fractions map[string]float64, phase Phase, temperatureK, pressurePa float64, factory Factory) *Deposit {
	kinds := make([]string, 0, len(fractions))
	for kind := range fractions {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return &Deposit{
		name:        name,
		fractions:   fractions,
		kinds:       kinds,
		phase:       phase,
		temperature: temperatureK,
		pressure:    pressurePa,
		factory:     factory,
	}
}

func (d *Deposit) Name() string            { return d.name }
func (d *Deposit) Role() Role              { return RoleSource }
func (d *Deposit) AcceptedKinds() []string { return nil }
func (d *Deposit) ProducedKinds() []string { return d.kinds }
func (d *Deposit) Filtered() bool          { return false }
func (d *Deposit) DutyCycle() float64      { return 1 }
func (d *Deposit) EnergyDemand() float64   { return 0 }

func (d *Deposit) ResetRate()         { d.rate = nil }
func (d *Deposit) RateResolved() bool { return d.rate != nil }

// Rate returns the resolved output rate in kg/s, or 0 before resolution.
func (d *Deposit) Rate() float64 {
	if d.rate == nil {
		return 0
	}
	return *d.rate
}

// Request resolves the output rate: the smallest rate at which every
// demanded kind arrives at least as fast as asked, given the fixed
// composition. An empty or nil demand resolves to rate zero. Deposits are
// chain heads, so no request propagates further and the return is nil.
func (d *Deposit) Request(deltaT float64, desired Flow) (Flow, error) {
	rate := 0.0
	for _, kind := range desired.Kinds() {
		frac, ok := d.fractions[kind]
		if !ok {
			return nil, fmt.Errorf("%w: requested resource %q not present in deposit %q",
				ErrPhysicalConstraint, kind, d.name)
		}
		rate = max(rate, desired[kind].Mass/(deltaT*frac))
	}
	d.rate = &rate
	return nil, nil
}

// Run emits one step of material at the resolved rate. A deposit is a chain
// head: delivering material to it is a wiring error, as is running it
// before the backward pass resolved its rate.
func (d *Deposit) Run(deltaT float64, inputs Flow) (Flow, error) {
	if inputs != nil {
		return nil, fmt.Errorf("%w: unexpected input material delivered to deposit %q",
			ErrConfiguration, d.name)
	}
	if d.rate == nil {
		return nil, fmt.Errorf("%w: output rate of deposit %q never resolved",
			ErrConfiguration, d.name)
	}
	outputs := make(Flow, len(d.kinds))
	for _, kind := range d.kinds {
		r, err := d.factory.New(kind, deltaT*(*d.rate)*d.fractions[kind], d.temperature, d.pressure, d.phase)
		if err != nil {
			return nil, err
		}
		outputs[kind] = r
	}
	return outputs, nil
}

// DepotOptions carries the optional storage conditions of a Depot; nil
// leaves the corresponding axis unconditioned.
type DepotOptions struct {
	Temperature *float64
	Pressure    *float64
}

// Depot is an accumulating end point storing a fixed product composition.
// The backward pass turns its target mass into the demand that seeds the
// chain; the forward pass conditions arriving material to the storage
// conditions, stores the largest batch matching the composition, and sets
// everything left over aside as excess.
type Depot struct {
	name      string
	fractions map[string]float64
	kinds     []string
	phase     Phase
	env       Environment
	factory   Factory

	temperature *float64
	pressure    *float64

	targetMass   *float64
	inferred     bool
	energyDemand float64
	contents     Flow
	overage      Flow
}

// NewDepot builds a depot storing the given mass fractions in one phase at
// the optional storage conditions.
func NewDepot(name string, fractions map[string]float64, phase Phase, factory Factory, env Environment, opts DepotOptions) *Depot {
	kinds := make([]string, 0, len(fractions))
	for kind := range fractions {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return &Depot{
		name:        name,
		fractions:   fractions,
		kinds:       kinds,
		phase:       phase,
		env:         env,
		factory:     factory,
		temperature: opts.Temperature,
		pressure:    opts.Pressure,
	}
}

func (d *Depot) Name() string            { return d.name }
func (d *Depot) Role() Role              { return RoleSink }
func (d *Depot) AcceptedKinds() []string { return d.kinds }
func (d *Depot) ProducedKinds() []string { return nil }
func (d *Depot) Filtered() bool          { return false }
func (d *Depot) DutyCycle() float64      { return 1 }
func (d *Depot) EnergyDemand() float64   { return d.energyDemand }

func (d *Depot) SetTargetMass(kg float64) { d.targetMass = &kg }
func (d *Depot) ResetInference()          { d.inferred = false }

// Stored returns the composition-matched material captured by the most
// recent forward step.
func (d *Depot) Stored() Flow { return d.contents }

// Excess returns the material the most recent forward step could not store.
func (d *Depot) Excess() Flow { return d.overage }

// Request seeds the backward pass: the depot asks for its full target mass
// split by composition, at the storage conditions. A depot terminates the
// chain's demand side, so receiving a request from elsewhere is a wiring
// error, and each step may infer its demand only once.
func (d *Depot) Request(deltaT float64, desired Flow) (Flow, error) {
	if desired != nil {
		return nil, fmt.Errorf("%w: unexpected resource request given to depot %q",
			ErrConfiguration, d.name)
	}
	if d.targetMass == nil {
		return nil, fmt.Errorf("%w: no target mass specified for depot %q",
			ErrConfiguration, d.name)
	}
	if d.inferred {
		return nil, fmt.Errorf("%w: demand of depot %q already inferred this step",
			ErrConfiguration, d.name)
	}
	d.inferred = true
	d.energyDemand = 0

	requests := make(Flow, len(d.kinds))
	for _, kind := range d.kinds {
		r, err := d.factory.New(kind, *d.targetMass*d.fractions[kind],
			orAmbient(d.temperature, d.env.TemperatureK),
			orAmbient(d.pressure, d.env.PressurePa),
			d.phase)
		if err != nil {
			return nil, err
		}
		requests[kind] = r
	}
	return requests, nil
}

// Run stores one step of arriving material. Every composition kind must be
// present in the storage phase. All inputs are conditioned to the storage
// conditions, then the largest batch matching the composition exactly is
// moved to Stored; leftovers and off-composition kinds become Excess. A
// depot terminates the chain, so the returned flow is nil.
func (d *Depot) Run(deltaT float64, inputs Flow) (Flow, error) {
	if d.targetMass == nil {
		return nil, fmt.Errorf("%w: no target mass specified for depot %q",
			ErrConfiguration, d.name)
	}
	for _, kind := range d.kinds {
		r, ok := inputs[kind]
		if !ok {
			return nil, fmt.Errorf("%w: depot %q not provided with requested resource %q",
				ErrPhysicalConstraint, d.name, kind)
		}
		if r.Phase != d.phase {
			return nil, fmt.Errorf("%w: depot %q given resource %q in %s phase, stores %s",
				ErrPhysicalConstraint, d.name, kind, r.Phase, d.phase)
		}
	}

	energy, err := conditionFlow(inputs, d.temperature, d.pressure, d.env, "depot "+d.name)
	if err != nil {
		return nil, err
	}
	d.energyDemand = energy

	// The stored batch is limited by whichever composition kind arrived
	// shortest relative to its fraction.
	mTot := 100 * (*d.targetMass) * (*d.targetMass)
	for _, kind := range d.kinds {
		mTot = min(mTot, inputs[kind].Mass/d.fractions[kind])
	}

	d.contents = make(Flow)
	d.overage = make(Flow)
	for _, kind := range inputs.Kinds() {
		r := inputs[kind]
		frac, ok := d.fractions[kind]
		if !ok {
			d.overage[kind] = r
			continue
		}
		massRemoved := mTot * frac
		switch {
		case massRemoved == 0:
			if r.Mass > 0 {
				d.overage[kind] = r
			}
		case fullyConsumed(r.Mass, massRemoved):
		default:
			if err := r.SetMass(r.Mass - massRemoved); err != nil {
				return nil, err
			}
			d.overage[kind] = r
		}
		stored, err := d.factory.New(kind, massRemoved, r.Temperature, r.Pressure, d.phase)
		if err != nil {
			return nil, err
		}
		d.contents[kind] = stored
	}
	return nil, nil
}
