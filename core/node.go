package core

// Role tags a node's position in the plant network. Boundary behavior is
// dispatched through the Source/Sink capability interfaces below rather
// than by inspecting concrete types.
type Role int

const (
	// RoleTransform is an interior node applying a Transform.
	RoleTransform Role = iota
	// RoleSource is an unconstrained-supply boundary (a deposit).
	RoleSource
	// RoleSink is an accumulating boundary (a depot).
	RoleSink
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleTransform:
		return "transform"
	case RoleSource:
		return "source"
	case RoleSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Environment holds the ambient conditions the plant operates in.
// Conditioning toward ambient is free; conditioning below ambient has no
// energy model and is rejected.
type Environment struct {
	TemperatureK float64
	PressurePa   float64
}

// Factory constructs resources of a named kind with the kind's physical
// property tables filled in. It is the closed-registry capability injected
// into every node at construction; kinds are never resolved by reflective
// lookup at call time.
type Factory interface {
	New(kind string, massKg, temperatureK, pressurePa float64, phase Phase) (*Resource, error)
}

// Node is one named step in the plant network. Run executes the node's
// physical step forward given upstream material (nil for sources); Request
// infers upstream demand backward given desired outputs (nil meaning the
// branch carries no demand). Both directions mutate the node's step-scoped
// observation state (duty cycle, energy demand).
type Node interface {
	Name() string
	Role() Role

	Run(deltaT float64, inputs Flow) (Flow, error)
	Request(deltaT float64, desired Flow) (Flow, error)

	// AcceptedKinds is the node's input whitelist; ProducedKinds the kinds
	// it can emit. The scheduler uses them to route flows at fan-in and
	// fan-out points.
	AcceptedKinds() []string
	ProducedKinds() []string

	// Filtered reports whether the node claims only its whitelisted kinds
	// from upstream pools, leaving the rest for sibling consumers.
	Filtered() bool

	DutyCycle() float64
	EnergyDemand() float64
}

// Source is the capability of RoleSource nodes: the backward pass resolves
// their output rate, which must then be consumed by exactly one forward
// pass. ResetRate is called by the scheduler at Setup entry.
type Source interface {
	Node
	ResetRate()
	RateResolved() bool
}

// Sink is the capability of RoleSink nodes: the scheduler seeds their
// target mass before the backward pass and collects stored material and
// excess after the forward pass. ResetInference re-arms the one-shot
// backward inference at Setup entry.
type Sink interface {
	Node
	SetTargetMass(kg float64)
	ResetInference()
	Stored() Flow
	Excess() Flow
}

// UnitCounted is implemented by nodes that model discrete parallel
// equipment; reporting layers use it to surface the rounded unit count.
type UnitCounted interface {
	UnitCount() int
}
