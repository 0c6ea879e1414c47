package core

import (
	"fmt"
	"sort"
)

// Flow is a set of resources in transit between nodes, keyed by kind. A nil
// Flow is meaningful and distinct from an empty one: nil marks "no demand"
// on the backward pass and "no upstream material" on the forward pass.
type Flow map[string]*Resource

// Kinds returns the kind names in the flow in sorted order, for
// deterministic iteration.
func (f Flow) Kinds() []string {
	kinds := make([]string, 0, len(f))
	for kind := range f {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// TotalMass sums the masses in the flow.
func (f Flow) TotalMass() float64 {
	var total float64
	for _, r := range f {
		total += r.Mass
	}
	return total
}

// Clone returns a deep copy of the flow.
func (f Flow) Clone() Flow {
	if f == nil {
		return nil
	}
	cp := make(Flow, len(f))
	for kind, r := range f {
		cp[kind] = r.Clone()
	}
	return cp
}

// MergeFlows moves every entry of src into dst, failing on a duplicate
// kind. The model assumes no two branches ever deliver the same kind to
// the same consumer in one step; a collision means the topology or a
// transform violates that assumption, and silently keeping either entry
// would corrupt the mass balance.
func MergeFlows(dst, src Flow) error {
	for _, kind := range src.Kinds() {
		if _, exists := dst[kind]; exists {
			return fmt.Errorf("%w: duplicate resource kind %q while merging flows",
				ErrConfiguration, kind)
		}
		dst[kind] = src[kind]
	}
	return nil
}
