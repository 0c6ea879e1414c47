package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/signalsfoundry/plant-simulator/core"
)

const joulesPerKWh = 3.6e6

// NodeReport summarizes one node over the campaign.
type NodeReport struct {
	Name      string
	DutyCycle float64 // last step
	EnergyKWh float64
	Units     int // 0 when the node is not unit-counted
}

// Report holds the campaign totals a finished run produced.
type Report struct {
	Steps      int
	SimulatedS float64

	ProjectedEnergyKWh float64
	ActualEnergyKWh    float64
	AveragePowerKW     float64
	PeakPowerKW        float64

	Nodes []NodeReport

	// Masses in kg, accumulated over all steps.
	Produced         map[string]map[string]float64
	Consumed         map[string]map[string]float64
	Overages         map[string]map[string]float64
	BaselineRequests map[string]map[string]float64
}

// Report snapshots the campaign totals accumulated so far.
func (r *Runner) Report() *Report {
	rep := &Report{
		Steps:              r.steps,
		SimulatedS:         float64(r.steps) * r.cfg.TimeStepS,
		ProjectedEnergyKWh: r.projectedEnergy / joulesPerKWh,
		ActualEnergyKWh:    r.actualEnergy / joulesPerKWh,
		PeakPowerKW:        r.peakPower / 1000,
		Produced:           r.produced,
		Consumed:           r.consumed,
		Overages:           r.overages,
		BaselineRequests:   r.baseline,
	}
	if rep.SimulatedS > 0 {
		rep.AveragePowerKW = r.actualEnergy / rep.SimulatedS / 1000
	}
	for _, name := range r.plant.NodeNames() {
		node := r.plant.Node(name)
		nr := NodeReport{
			Name:      name,
			DutyCycle: node.DutyCycle(),
			EnergyKWh: r.nodeEnergy[name] / joulesPerKWh,
		}
		if uc, ok := node.(core.UnitCounted); ok {
			nr.Units = uc.UnitCount()
		}
		rep.Nodes = append(rep.Nodes, nr)
	}
	return rep
}

// Summary renders the report as a human-readable block for the console.
func (rep *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "campaign: %d steps, %.0f s simulated\n", rep.Steps, rep.SimulatedS)
	fmt.Fprintf(&b, "energy: %.2f kWh actual (%.2f kWh projected)\n",
		rep.ActualEnergyKWh, rep.ProjectedEnergyKWh)
	fmt.Fprintf(&b, "power: %.2f kW average, %.2f kW peak\n",
		rep.AveragePowerKW, rep.PeakPowerKW)

	b.WriteString("\nnodes:\n")
	for _, nr := range rep.Nodes {
		fmt.Fprintf(&b, "  %-22s duty %5.3f  energy %10.2f kWh", nr.Name, nr.DutyCycle, nr.EnergyKWh)
		if nr.Units > 0 {
			fmt.Fprintf(&b, "  units %d", nr.Units)
		}
		b.WriteByte('\n')
	}

	writeMassSection(&b, "products", rep.Produced)
	writeMassSection(&b, "extracted", rep.Consumed)
	writeMassSection(&b, "baseline requests", rep.BaselineRequests)
	writeMassSection(&b, "overages", rep.Overages)
	return b.String()
}

func writeMassSection(b *strings.Builder, title string, masses map[string]map[string]float64) {
	if len(masses) == 0 {
		return
	}
	names := make([]string, 0, len(masses))
	for name := range masses {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, name := range names {
		kinds := make([]string, 0, len(masses[name]))
		for kind := range masses[name] {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(b, "  %-22s %-28s %12.3f kg\n", name, kind, masses[name][kind])
		}
	}
}
