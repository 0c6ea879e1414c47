package core

import "fmt"

// NodeSpec declares one node of a plant: the implementation and the names
// of the nodes it draws material from. Declaration order is meaningful: when
// several nodes become runnable in the same wave, they execute in the order
// they were declared, which fixes how residual claimers split a shared
// upstream pool.
type NodeSpec struct {
	Impl Node
	From []string
}

type plantNode struct {
	impl Node
	from []string
	to   []string
}

// Plant schedules a DAG of processes between deposits and depots. Setup
// walks the chain backward from the depots, inferring demand and resolving
// deposit rates; Run walks it forward from the deposits, executing each
// node once and routing flows at fan-out and fan-in points. The exported
// result fields are rewritten by each Setup/Run cycle. A Plant is not safe
// for concurrent use.
type Plant struct {
	order []string
	nodes map[string]*plantNode

	sources map[string]Source
	sinks   map[string]Sink

	setupDone bool

	// Backward-pass results.
	ProjectedEnergy  float64
	ProjectedPower   float64
	BaselineRequests map[string]Flow

	// Forward-pass results.
	ActualEnergy float64
	ActualPower  float64
	Consumed     map[string]Flow
	Produced     map[string]Flow
	Overages     map[string]Flow
}

// NewPlant links the declared nodes into a doubly-linked chain and
// validates its structure: every predecessor must exist, sources head
// chains, sinks terminate them, and no upstream pool may have two residual
// claimants that would race for the same material.
func NewPlant(specs []NodeSpec) (*Plant, error) {
	p := &Plant{
		order:   make([]string, 0, len(specs)),
		nodes:   make(map[string]*plantNode, len(specs)),
		sources: make(map[string]Source),
		sinks:   make(map[string]Sink),
	}
	for _, spec := range specs {
		name := spec.Impl.Name()
		if _, dup := p.nodes[name]; dup {
			return nil, fmt.Errorf("%w: duplicate node name %q", ErrConfiguration, name)
		}
		p.order = append(p.order, name)
		p.nodes[name] = &plantNode{impl: spec.Impl, from: spec.From}
		switch spec.Impl.Role() {
		case RoleSource:
			src, ok := spec.Impl.(Source)
			if !ok {
				return nil, fmt.Errorf("%w: node %q tagged as source but lacks the source capability",
					ErrConfiguration, name)
			}
			p.sources[name] = src
		case RoleSink:
			sink, ok := spec.Impl.(Sink)
			if !ok {
				return nil, fmt.Errorf("%w: node %q tagged as sink but lacks the sink capability",
					ErrConfiguration, name)
			}
			p.sinks[name] = sink
		}
	}

	for _, name := range p.order {
		node := p.nodes[name]
		if node.impl.Role() == RoleSource && len(node.from) > 0 {
			return nil, fmt.Errorf("%w: source %q cannot have predecessors", ErrConfiguration, name)
		}
		for _, upstream := range node.from {
			up, ok := p.nodes[upstream]
			if !ok {
				return nil, fmt.Errorf("%w: node %q links to unknown node %q",
					ErrConfiguration, name, upstream)
			}
			if up.impl.Role() == RoleSink {
				return nil, fmt.Errorf("%w: sink %q cannot feed node %q",
					ErrConfiguration, upstream, name)
			}
			up.to = append(up.to, name)
		}
	}

	// At a fan-out, every filtered successor claims its own kinds and the
	// residual goes to the unfiltered ones. An unfiltered successor with
	// named inputs claims everything its siblings do not; two of those on
	// one pool would race for the same material.
	for _, name := range p.order {
		node := p.nodes[name]
		if len(node.to) < 2 {
			continue
		}
		claimants := 0
		for _, succ := range node.to {
			s := p.nodes[succ].impl
			if !s.Filtered() && len(s.AcceptedKinds()) > 0 {
				claimants++
			}
		}
		if claimants > 1 {
			return nil, fmt.Errorf("%w: node %q feeds %d unfiltered consumers with named inputs",
				ErrConfiguration, name, claimants)
		}
	}
	return p, nil
}

// NodeNames returns the node names in declaration order.
func (p *Plant) NodeNames() []string { return p.order }

// Node returns the named node implementation, or nil.
func (p *Plant) Node(name string) Node {
	if n, ok := p.nodes[name]; ok {
		return n.impl
	}
	return nil
}

// SourceNames returns the deposit names in declaration order.
func (p *Plant) SourceNames() []string {
	names := make([]string, 0, len(p.sources))
	for _, name := range p.order {
		if _, ok := p.sources[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// SinkNames returns the depot names in declaration order.
func (p *Plant) SinkNames() []string {
	names := make([]string, 0, len(p.sinks))
	for _, name := range p.order {
		if _, ok := p.sinks[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// setupScratch is the per-call scheduling record of the backward pass.
type setupScratch struct {
	ready   bool
	run     bool
	request Flow
}

// Setup runs the backward pass: seed each named depot with its target mass,
// then walk from the sinks toward the sources in dependency waves, letting
// every node turn the demand below it into the demand above it. Deposits
// resolve their output rate from the demand that reaches them; a deposit no
// demand reaches is a configuration error, as is a wave that cannot make
// progress.
func (p *Plant) Setup(desired map[string]float64, deltaT float64) error {
	p.ProjectedEnergy = 0
	p.ProjectedPower = 0
	p.BaselineRequests = make(map[string]Flow)
	p.setupDone = false

	for _, src := range p.sources {
		src.ResetRate()
	}
	for _, sink := range p.sinks {
		sink.ResetInference()
	}
	for name, mass := range desired {
		sink, ok := p.sinks[name]
		if !ok {
			return fmt.Errorf("%w: requested output from unknown depot %q", ErrConfiguration, name)
		}
		sink.SetTargetMass(mass)
	}

	scratch := make(map[string]*setupScratch, len(p.order))
	outstanding := make([]string, 0, len(p.order))
	for _, name := range p.order {
		scratch[name] = &setupScratch{ready: len(p.nodes[name].to) == 0}
		outstanding = append(outstanding, name)
	}

	for len(outstanding) > 0 {
		var ran int
		remaining := outstanding[:0]
		for _, name := range outstanding {
			st := scratch[name]
			if !st.ready {
				remaining = append(remaining, name)
				continue
			}
			node := p.nodes[name]

			var demand Flow
			if len(node.to) > 0 {
				demand = make(Flow)
				produced := kindSet(node.impl.ProducedKinds())
				for _, succ := range node.to {
					req := scratch[succ].request
					if req == nil {
						continue
					}
					if len(p.nodes[succ].from) > 1 {
						// The successor draws from several branches; forward
						// it only the part of its request this branch can
						// actually produce.
						overlap := make(Flow)
						for kind, r := range req {
							if produced[kind] {
								overlap[kind] = r
							}
						}
						if err := MergeFlows(demand, overlap); err != nil {
							return fmt.Errorf("demand for node %q: %w", name, err)
						}
					} else if err := MergeFlows(demand, req); err != nil {
						return fmt.Errorf("demand for node %q: %w", name, err)
					}
				}
			}
			if _, isSource := p.sources[name]; isSource {
				p.BaselineRequests[name] = demand
			}

			req, err := node.impl.Request(deltaT, demand)
			if err != nil {
				return err
			}
			st.request = req
			st.run = true
			p.ProjectedEnergy += node.impl.EnergyDemand()
			ran++
		}
		if ran == 0 {
			return fmt.Errorf("%w: no runnable node left during demand inference, cycle or dead end in chain",
				ErrConfiguration)
		}
		outstanding = remaining

		for _, name := range outstanding {
			ready := true
			for _, succ := range p.nodes[name].to {
				if !scratch[succ].run {
					ready = false
				}
			}
			scratch[name].ready = ready
		}
	}

	for name, src := range p.sources {
		if !src.RateResolved() {
			return fmt.Errorf("%w: deposit %q received no output request", ErrConfiguration, name)
		}
	}

	p.ProjectedPower = p.ProjectedEnergy / deltaT
	p.setupDone = true
	return nil
}

// runScratch is the per-call scheduling record of the forward pass. The
// output buffer holds material a node emitted that no successor has claimed
// yet; whatever is left in it at the end is that node's overage.
type runScratch struct {
	ready  bool
	run    bool
	output Flow
}

// Run executes the forward pass prepared by the previous Setup: walk from
// the sources toward the sinks in dependency waves, routing each node's
// output to its consumers. Filtered consumers claim their accepted kinds
// from the upstream pool; at a fan-out, an unfiltered consumer takes the
// residual its siblings leave behind. Each Setup authorizes exactly one
// Run.
func (p *Plant) Run(deltaT float64) error {
	if !p.setupDone {
		return fmt.Errorf("%w: plant run without a completed setup", ErrConfiguration)
	}
	p.setupDone = false

	p.ActualEnergy = 0
	p.ActualPower = 0
	p.Consumed = make(map[string]Flow)
	p.Produced = make(map[string]Flow)
	p.Overages = make(map[string]Flow)

	scratch := make(map[string]*runScratch, len(p.order))
	outstanding := make([]string, 0, len(p.order))
	for _, name := range p.order {
		scratch[name] = &runScratch{ready: len(p.nodes[name].from) == 0}
		outstanding = append(outstanding, name)
	}

	for len(outstanding) > 0 {
		var ran int
		remaining := outstanding[:0]
		for _, name := range outstanding {
			st := scratch[name]
			if !st.ready {
				remaining = append(remaining, name)
				continue
			}
			node := p.nodes[name]

			var inputs Flow
			if len(node.from) > 0 {
				inputs = make(Flow)
				for _, upstream := range node.from {
					claimed, err := p.claimFrom(name, upstream, scratch[upstream])
					if err != nil {
						return err
					}
					if err := MergeFlows(inputs, claimed); err != nil {
						return fmt.Errorf("inputs for node %q: %w", name, err)
					}
				}
			}

			out, err := node.impl.Run(deltaT, inputs)
			if err != nil {
				return err
			}
			st.output = out
			st.run = true
			p.ActualEnergy += node.impl.EnergyDemand()

			if sink, isSink := p.sinks[name]; isSink {
				p.Produced[name] = sink.Stored()
			}
			if _, isSource := p.sources[name]; isSource {
				p.Consumed[name] = out.Clone()
			}
			ran++
		}
		if ran == 0 {
			return fmt.Errorf("%w: no runnable node left during execution, cycle or dead end in chain",
				ErrConfiguration)
		}
		outstanding = remaining

		for _, name := range outstanding {
			ready := true
			for _, upstream := range p.nodes[name].from {
				if !scratch[upstream].run {
					ready = false
				}
			}
			scratch[name].ready = ready
		}
	}

	for _, name := range p.order {
		if sink, isSink := p.sinks[name]; isSink {
			p.Overages[name] = sink.Excess()
			continue
		}
		if _, isSource := p.sources[name]; isSource {
			continue
		}
		if left := scratch[name].output; len(left) > 0 {
			p.Overages[name] = left
		}
	}

	p.ActualPower = p.ActualEnergy / deltaT
	return nil
}

// claimFrom moves the part of the upstream node's unclaimed output that
// belongs to the named consumer out of the buffer and returns it.
func (p *Plant) claimFrom(consumer, upstream string, upScratch *runScratch) (Flow, error) {
	node := p.nodes[consumer].impl
	buf := upScratch.output
	claimed := make(Flow)

	switch {
	case node.Filtered():
		accepted := kindSet(node.AcceptedKinds())
		for _, kind := range buf.Kinds() {
			if accepted[kind] {
				claimed[kind] = buf[kind]
				delete(buf, kind)
			}
		}
	case len(p.nodes[upstream].to) > 1:
		// Residual claim: take everything no sibling consumer is entitled
		// to. Wildcard consumers have no named kinds, so they never block a
		// sibling's residual.
		blacklist := make(map[string]bool)
		for _, sibling := range p.nodes[upstream].to {
			if sibling == consumer {
				continue
			}
			for _, kind := range p.nodes[sibling].impl.AcceptedKinds() {
				blacklist[kind] = true
			}
		}
		for _, kind := range buf.Kinds() {
			if !blacklist[kind] {
				claimed[kind] = buf[kind]
				delete(buf, kind)
			}
		}
	default:
		for _, kind := range buf.Kinds() {
			claimed[kind] = buf[kind]
			delete(buf, kind)
		}
	}
	return claimed, nil
}

func kindSet(kinds []string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, kind := range kinds {
		set[kind] = true
	}
	return set
}
