package core

import "math"

// Multiplex wraps a Process that models one unit of parallelizable
// equipment. Each call sizes the bank: the backward pass picks the minimum
// whole number of units that can satisfy the demand, the forward pass the
// minimum that can absorb the offered input. The flow is scaled down to a
// single unit, delegated, and the result scaled back up.
type Multiplex struct {
	*Process
	units int
}

// NewMultiplex wraps a per-unit process in a self-sizing bank.
func NewMultiplex(unit *Process) *Multiplex {
	return &Multiplex{Process: unit, units: 1}
}

// UnitCount returns the number of parallel units the most recent call
// resolved.
func (m *Multiplex) UnitCount() int { return m.units }

func (m *Multiplex) Run(deltaT float64, inputs Flow) (Flow, error) {
	ratio := 0.0
	if w := m.transform.Wildcard(); w != nil && w.Rate > 0 {
		// Same pooling rule as the wrapped process: everything of the
		// wildcard phase counts against the wildcard rate, named kinds
		// included.
		var pooled float64
		for _, r := range inputs {
			if r.Phase == w.Phase {
				pooled += r.Mass
			}
		}
		ratio = pooled / (w.Rate * deltaT)
	} else {
		maxPerUnit := m.transform.InputMasses(deltaT)
		for _, comp := range m.transform.Inputs() {
			if r, ok := inputs[comp.Kind]; ok && maxPerUnit[comp.Kind] > 0 {
				ratio = max(ratio, r.Mass/maxPerUnit[comp.Kind])
			}
		}
	}
	m.units = unitCeil(ratio)

	n := float64(m.units)
	for _, kind := range inputs.Kinds() {
		if err := inputs[kind].SetMass(inputs[kind].Mass / n); err != nil {
			return nil, err
		}
	}
	outputs, err := m.Process.Run(deltaT, inputs)
	if err != nil {
		return nil, err
	}
	m.energyDemand *= n
	for _, kind := range outputs.Kinds() {
		if err := outputs[kind].SetMass(outputs[kind].Mass * n); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

func (m *Multiplex) Request(deltaT float64, desired Flow) (Flow, error) {
	if desired == nil {
		return nil, nil
	}
	maxPerUnit := m.transform.OutputMasses(deltaT)
	ratio := 0.0
	for _, kind := range desired.Kinds() {
		if maxPerUnit[kind] > 0 {
			ratio = max(ratio, desired[kind].Mass/maxPerUnit[kind])
		}
	}
	m.units = unitCeil(ratio)

	n := float64(m.units)
	for _, kind := range desired.Kinds() {
		if err := desired[kind].SetMass(desired[kind].Mass / n); err != nil {
			return nil, err
		}
	}
	requests, err := m.Process.Request(deltaT, desired)
	if err != nil {
		return nil, err
	}
	m.energyDemand *= n
	for _, kind := range requests.Kinds() {
		if err := requests[kind].SetMass(requests[kind].Mass * n); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

// unitCeil rounds a utilization ratio up to a whole unit count, never below
// one so the scaling divisions stay defined.
func unitCeil(ratio float64) int {
	n := int(math.Ceil(ratio))
	if n < 1 {
		return 1
	}
	return n
}
