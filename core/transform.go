package core

import "fmt"

// Component declares one named resource stream of a transform: the kind,
// the phase the transform expects or emits it in, and the rated mass flow
// in kg/s.
type Component struct {
	Kind  string
	Phase Phase
	Rate  float64
}

// WildcardInput declares an open input stream: the transform consumes any
// resource of the given phase, up to the rated mass flow, regardless of
// kind. It is a distinct field rather than a sentinel kind name so it can
// never collide with a real kind.
type WildcardInput struct {
	Phase Phase
	Rate  float64
}

// Transform is the physical behavior table of one process: per-kind input
// and output rates plus a constant power draw in W. Immutable after
// construction; the per-step masses are derived from the elapsed time.
type Transform struct {
	inputs   []Component
	outputs  []Component
	wildcard *WildcardInput
	power    float64

	inputsByKind  map[string]Component
	outputsByKind map[string]Component
}

// NewTransform builds a transform from its named input and output
// components and power draw. Duplicate kinds within a side are rejected.
func NewTransform(inputs, outputs []Component, powerW float64) (*Transform, error) {
	t := &Transform{
		inputs:        inputs,
		outputs:       outputs,
		power:         powerW,
		inputsByKind:  make(map[string]Component, len(inputs)),
		outputsByKind: make(map[string]Component, len(outputs)),
	}
	for _, c := range inputs {
		if _, dup := t.inputsByKind[c.Kind]; dup {
			return nil, fmt.Errorf("%w: duplicate transform input kind %q", ErrConfiguration, c.Kind)
		}
		t.inputsByKind[c.Kind] = c
	}
	for _, c := range outputs {
		if _, dup := t.outputsByKind[c.Kind]; dup {
			return nil, fmt.Errorf("%w: duplicate transform output kind %q", ErrConfiguration, c.Kind)
		}
		t.outputsByKind[c.Kind] = c
	}
	return t, nil
}

// NewWildcardTransform builds a transform whose input side accepts any
// resource of the wildcard phase, optionally alongside named inputs.
func NewWildcardTransform(wildcard WildcardInput, inputs, outputs []Component, powerW float64) (*Transform, error) {
	t, err := NewTransform(inputs, outputs, powerW)
	if err != nil {
		return nil, err
	}
	t.wildcard = &wildcard
	return t, nil
}

// Power returns the constant power draw in W.
func (t *Transform) Power() float64 { return t.power }

// Inputs returns the named input components in declaration order.
func (t *Transform) Inputs() []Component { return t.inputs }

// Outputs returns the output components in declaration order.
func (t *Transform) Outputs() []Component { return t.outputs }

// Wildcard returns the open input declaration, or nil.
func (t *Transform) Wildcard() *WildcardInput { return t.wildcard }

// Input returns the named input component for a kind.
func (t *Transform) Input(kind string) (Component, bool) {
	c, ok := t.inputsByKind[kind]
	return c, ok
}

// Output returns the output component for a kind.
func (t *Transform) Output(kind string) (Component, bool) {
	c, ok := t.outputsByKind[kind]
	return c, ok
}

// InputKinds returns the named input kinds in declaration order.
func (t *Transform) InputKinds() []string {
	kinds := make([]string, len(t.inputs))
	for i, c := range t.inputs {
		kinds[i] = c.Kind
	}
	return kinds
}

// OutputKinds returns the output kinds in declaration order.
func (t *Transform) OutputKinds() []string {
	kinds := make([]string, len(t.outputs))
	for i, c := range t.outputs {
		kinds[i] = c.Kind
	}
	return kinds
}

// InputMasses returns, per named input kind, the mass consumed over deltaT
// seconds at full duty.
func (t *Transform) InputMasses(deltaT float64) map[string]float64 {
	masses := make(map[string]float64, len(t.inputs))
	for _, c := range t.inputs {
		masses[c.Kind] = deltaT * c.Rate
	}
	return masses
}

// OutputMasses returns, per output kind, the mass produced over deltaT
// seconds at full duty.
func (t *Transform) OutputMasses(deltaT float64) map[string]float64 {
	masses := make(map[string]float64, len(t.outputs))
	for _, c := range t.outputs {
		masses[c.Kind] = deltaT * c.Rate
	}
	return masses
}
