package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/plant-simulator/core"
)

// PlantCollector exposes per-node Prometheus metrics sampled from a plant
// after each production pass.
type PlantCollector struct {
	gatherer prometheus.Gatherer

	NodeDutyCycle   *prometheus.GaugeVec
	NodeEnergy      *prometheus.GaugeVec
	DepotStoredMass *prometheus.GaugeVec
	NodeOverageMass *prometheus.GaugeVec
}

// NewPlantCollector registers per-node metrics against the provided registerer.
func NewPlantCollector(reg prometheus.Registerer) (*PlantCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	duty := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plant_node_duty_cycle",
		Help: "Fraction of rated throughput each node ran at during the last step.",
	}, []string{"node"})
	duty, err := registerGaugeVec(reg, duty, "plant_node_duty_cycle")
	if err != nil {
		return nil, err
	}

	energy := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plant_node_energy_joules",
		Help: "Energy each node drew during the last step, conditioning included.",
	}, []string{"node"})
	energy, err = registerGaugeVec(reg, energy, "plant_node_energy_joules")
	if err != nil {
		return nil, err
	}

	stored := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plant_depot_stored_mass_kg",
		Help: "Mass banked at each depot during the last step, by kind.",
	}, []string{"depot", "kind"})
	stored, err = registerGaugeVec(reg, stored, "plant_depot_stored_mass_kg")
	if err != nil {
		return nil, err
	}

	overage := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plant_node_overage_mass_kg",
		Help: "Unclaimed mass stranded behind each node after the last step, by kind.",
	}, []string{"node", "kind"})
	overage, err = registerGaugeVec(reg, overage, "plant_node_overage_mass_kg")
	if err != nil {
		return nil, err
	}

	return &PlantCollector{
		gatherer:        gatherer,
		NodeDutyCycle:   duty,
		NodeEnergy:      energy,
		DepotStoredMass: stored,
		NodeOverageMass: overage,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *PlantCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Sample refreshes every per-node gauge from the plant's last step. Stale
// label sets from earlier steps are dropped so one-shot overages do not
// linger.
func (c *PlantCollector) Sample(p *core.Plant) {
	if c == nil || p == nil {
		return
	}

	if c.NodeDutyCycle != nil && c.NodeEnergy != nil {
		for _, name := range p.NodeNames() {
			node := p.Node(name)
			c.NodeDutyCycle.WithLabelValues(name).Set(node.DutyCycle())
			c.NodeEnergy.WithLabelValues(name).Set(node.EnergyDemand())
		}
	}

	if c.DepotStoredMass != nil {
		c.DepotStoredMass.Reset()
		for depot, flow := range p.Produced {
			for kind, r := range flow {
				c.DepotStoredMass.WithLabelValues(depot, kind).Set(r.Mass)
			}
		}
	}

	if c.NodeOverageMass != nil {
		c.NodeOverageMass.Reset()
		for node, flow := range p.Overages {
			for kind, r := range flow {
				c.NodeOverageMass.WithLabelValues(node, kind).Set(r.Mass)
			}
		}
	}
}
