package core

import "fmt"

// ProcessOptions carries the optional construction parameters of a Process.
// Temperature and Pressure are the working conditions incoming material is
// conditioned to; nil disables conditioning on that axis. Filtered marks the
// process as claiming only its accepted kinds from upstream pools.
type ProcessOptions struct {
	Temperature *float64
	Pressure    *float64
	Filtered    bool
}

// Process applies one Transform bidirectionally: forward execution given
// available inputs, backward demand inference given desired outputs. The
// duty-cycle and energy fields are step-scoped observation state, rewritten
// on every call; a Process is not safe to share between concurrent plants.
type Process struct {
	name      string
	transform *Transform
	factory   Factory
	env       Environment

	temperature *float64
	pressure    *float64
	filtered    bool

	accepted []string
	produced []string

	dutyCycle            float64
	energyDemand         float64
	upstreamEnergyDemand float64
}

// NewProcess builds a process around a transform, with resource
// construction delegated to the injected factory and ambient conditions
// taken from env.
func NewProcess(name string, transform *Transform, factory Factory, env Environment, opts ProcessOptions) *Process {
	return &Process{
		name:        name,
		transform:   transform,
		factory:     factory,
		env:         env,
		temperature: opts.Temperature,
		pressure:    opts.Pressure,
		filtered:    opts.Filtered,
		accepted:    transform.InputKinds(),
		produced:    transform.OutputKinds(),
	}
}

func (p *Process) Name() string            { return p.name }
func (p *Process) Role() Role              { return RoleTransform }
func (p *Process) AcceptedKinds() []string { return p.accepted }
func (p *Process) ProducedKinds() []string { return p.produced }
func (p *Process) Filtered() bool          { return p.filtered }
func (p *Process) DutyCycle() float64      { return p.dutyCycle }
func (p *Process) EnergyDemand() float64   { return p.energyDemand }

// UpstreamEnergyDemand is the conditioning cost the most recent backward
// inference attributed to the upstream supplier rather than to this node.
func (p *Process) UpstreamEnergyDemand() float64 { return p.upstreamEnergyDemand }

// Transform exposes the process's behavior table.
func (p *Process) Transform() *Transform { return p.transform }

// Run executes one forward step: validate the required inputs, split off
// passthrough material, condition the consumed set to the working
// conditions, run the transform at the duty cycle the limiting input
// allows, and return the produced outputs together with passthrough and
// unconsumed leftovers.
func (p *Process) Run(deltaT float64, inputs Flow) (Flow, error) {
	p.upstreamEnergyDemand = 0

	for _, comp := range p.transform.Inputs() {
		r, ok := inputs[comp.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: process %q not provided with required resource %q",
				ErrPhysicalConstraint, p.name, comp.Kind)
		}
		if r.Phase != comp.Phase {
			return nil, fmt.Errorf("%w: process %q given resource %q in %s phase, expected %s",
				ErrPhysicalConstraint, p.name, comp.Kind, r.Phase, comp.Phase)
		}
	}

	// With a wildcard declared, pool membership is decided by phase alone:
	// named kinds of the wildcard phase join the pool like any other and
	// named kinds of a different phase pass through.
	wildcard := p.transform.Wildcard()
	consumed := make(Flow)
	passthrough := make(Flow)
	for _, kind := range inputs.Kinds() {
		r := inputs[kind]
		switch {
		case wildcard != nil:
			if r.Phase == wildcard.Phase {
				consumed[kind] = r
			} else {
				passthrough[kind] = r
			}
		default:
			if _, named := p.transform.Input(kind); named {
				consumed[kind] = r
			} else {
				passthrough[kind] = r
			}
		}
	}

	conditioningEnergy, err := conditionFlow(consumed, p.temperature, p.pressure, p.env, "process "+p.name)
	if err != nil {
		return nil, err
	}

	// The limiting input sets the duty cycle; a wildcard transform is
	// limited by the pooled mass of everything it consumes, named kinds
	// included, against the wildcard rate alone.
	ratio := 1.0
	var pooledMass float64
	if wildcard != nil {
		for _, r := range consumed {
			pooledMass += r.Mass
		}
		ratio = min(ratio, pooledMass/(wildcard.Rate*deltaT))
	} else {
		maxUsed := p.transform.InputMasses(deltaT)
		for _, comp := range p.transform.Inputs() {
			if maxUsed[comp.Kind] > 0 {
				ratio = min(ratio, consumed[comp.Kind].Mass/maxUsed[comp.Kind])
			}
		}
	}
	p.dutyCycle = ratio
	p.energyDemand = conditioningEnergy + deltaT*p.transform.Power()*ratio

	outputs := make(Flow)
	for _, comp := range p.transform.Outputs() {
		out, err := p.factory.New(comp.Kind,
			deltaT*ratio*comp.Rate,
			orAmbient(p.temperature, p.env.TemperatureK),
			orAmbient(p.pressure, p.env.PressurePa),
			comp.Phase)
		if err != nil {
			return nil, err
		}
		outputs[comp.Kind] = out
	}

	for _, kind := range consumed.Kinds() {
		r := consumed[kind]
		var massRemoved float64
		if wildcard != nil {
			if pooledMass > 0 {
				massRemoved = deltaT * ratio * wildcard.Rate * r.Mass / pooledMass
			}
		} else if comp, named := p.transform.Input(kind); named {
			massRemoved = deltaT * ratio * comp.Rate
		}
		switch {
		case massRemoved == 0:
			if r.Mass > 0 {
				passthrough[kind] = r
			}
		case fullyConsumed(r.Mass, massRemoved):
			// Residual below tolerance is floating-point dust, not material.
		default:
			if err := r.SetMass(r.Mass - massRemoved); err != nil {
				return nil, err
			}
			passthrough[kind] = r
		}
	}

	if err := MergeFlows(outputs, passthrough); err != nil {
		return nil, fmt.Errorf("process %q: %w", p.name, err)
	}
	return outputs, nil
}

// Request infers one backward step: given the outputs the downstream side
// wants, determine the duty cycle, the inputs that must arrive from
// upstream, and the projected energy. Conditioning the requested outputs to
// this process's working conditions is costed to the upstream supplier and
// recorded separately. A nil desired flow means the branch carries no
// demand and short-circuits to nil.
func (p *Process) Request(deltaT float64, desired Flow) (Flow, error) {
	if desired == nil {
		return nil, nil
	}

	targeted := make(Flow)
	passthrough := make(Flow)
	for _, kind := range desired.Kinds() {
		r := desired[kind]
		comp, produced := p.transform.Output(kind)
		if !produced {
			passthrough[kind] = r
			continue
		}
		if r.Phase != comp.Phase {
			return nil, fmt.Errorf("%w: process %q asked for resource %q in %s phase, produces %s",
				ErrPhysicalConstraint, p.name, kind, r.Phase, comp.Phase)
		}
		if r.Mass/deltaT > comp.Rate*(1+MassTolerance) {
			return nil, fmt.Errorf("%w: process %q cannot produce %g kg of %q in %g s (max rate %g kg/s)",
				ErrPhysicalConstraint, p.name, r.Mass, kind, deltaT, comp.Rate)
		}
		targeted[kind] = r
	}

	// Downstream wants the outputs at its own conditions; bringing them
	// there from this process's working point is work the next node
	// upstream of the requester will have to do, so it is recorded as
	// upstream-attributed cost, not added to this node's own demand.
	var upstream float64
	for _, kind := range targeted.Kinds() {
		r := targeted[kind]
		if p.pressure != nil && r.Pressure > *p.pressure {
			e, err := compressTo(*p.pressure, r)
			if err != nil {
				return nil, err
			}
			upstream -= e
		}
		if p.temperature != nil && r.Temperature > *p.temperature {
			e, err := heatTo(*p.temperature, r)
			if err != nil {
				return nil, err
			}
			upstream -= e
		}
	}
	p.upstreamEnergyDemand = upstream

	maxMade := p.transform.OutputMasses(deltaT)
	ratio := 0.0
	for _, kind := range targeted.Kinds() {
		if maxMade[kind] > 0 {
			ratio = max(ratio, targeted[kind].Mass/maxMade[kind])
		}
	}
	p.dutyCycle = ratio
	p.energyDemand = deltaT * p.transform.Power() * ratio

	requests := make(Flow)
	for _, comp := range p.transform.Inputs() {
		req, err := p.factory.New(comp.Kind,
			deltaT*ratio*comp.Rate,
			orAmbient(p.temperature, p.env.TemperatureK),
			orAmbient(p.pressure, p.env.PressurePa),
			comp.Phase)
		if err != nil {
			return nil, err
		}
		requests[comp.Kind] = req
	}

	if err := MergeFlows(requests, passthrough); err != nil {
		return nil, fmt.Errorf("process %q: %w", p.name, err)
	}
	return requests, nil
}

// fullyConsumed reports whether removing massRemoved from mass leaves only
// floating-point residue.
func fullyConsumed(mass, massRemoved float64) bool {
	frac := mass / massRemoved
	if frac > 1 {
		return frac-1 <= MassTolerance
	}
	return 1-frac <= MassTolerance
}

func orAmbient(v *float64, ambient float64) float64 {
	if v != nil {
		return *v
	}
	return ambient
}
