package sim

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/signalsfoundry/plant-simulator/catalog"
	"github.com/signalsfoundry/plant-simulator/internal/observability"
	"github.com/signalsfoundry/plant-simulator/mars"
	"github.com/signalsfoundry/plant-simulator/plants"
)

const (
	dayS        = 24 * 60 * 60.0
	alloyTarget = 25000.0 / 365
)

func metalsRunner(t *testing.T, sim *observability.SimCollector, nodes *observability.PlantCollector) *Runner {
	t.Helper()
	plant, err := plants.MetalsPlant(false, catalog.Default(), mars.Surface())
	if err != nil {
		t.Fatalf("MetalsPlant: %v", err)
	}
	r, err := NewRunner(plant, Config{
		Depot:        plants.MetalsStorageName,
		TargetMassKg: alloyTarget,
		TimeStepS:    dayS,
	}, nil, sim, nodes)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func TestRunnerAccumulatesCampaignTotals(t *testing.T) {
	r := metalsRunner(t, nil, nil)
	ctx := context.Background()
	for step := 1; step <= 3; step++ {
		if err := r.Step(ctx, step); err != nil {
			t.Fatalf("Step %d: %v", step, err)
		}
	}

	rep := r.Report()
	if rep.Steps != 3 || rep.SimulatedS != 3*dayS {
		t.Errorf("report covers %d steps / %g s, want 3 / %g", rep.Steps, rep.SimulatedS, 3*dayS)
	}
	alloy := rep.Produced[plants.MetalsStorageName][catalog.MetalAlloy]
	if math.Abs(alloy-3*alloyTarget) > 1e-6*alloyTarget {
		t.Errorf("produced alloy = %g kg over 3 steps, want %g", alloy, 3*alloyTarget)
	}
	if rep.ActualEnergyKWh <= 0 || rep.ActualEnergyKWh < rep.ProjectedEnergyKWh {
		t.Errorf("energy totals look wrong: actual %g kWh, projected %g kWh",
			rep.ActualEnergyKWh, rep.ProjectedEnergyKWh)
	}
	if rep.PeakPowerKW < rep.AveragePowerKW {
		t.Errorf("peak power %g kW below average %g kW", rep.PeakPowerKW, rep.AveragePowerKW)
	}
	if rep.BaselineRequests["site_regolith"] == nil {
		t.Errorf("no baseline request recorded for the deposit")
	}
}

func TestRunnerFeedsCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	simMetrics, err := observability.NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	nodeMetrics, err := observability.NewPlantCollector(reg)
	if err != nil {
		t.Fatalf("NewPlantCollector: %v", err)
	}

	r := metalsRunner(t, simMetrics, nodeMetrics)
	if err := r.Step(context.Background(), 1); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if got := testutil.ToFloat64(simMetrics.RunsTotal); got != 1 {
		t.Errorf("sim_runs_total = %v, want 1", got)
	}
	duty := testutil.ToFloat64(nodeMetrics.NodeDutyCycle.WithLabelValues("mre"))
	if math.Abs(duty-1) > 1e-9 {
		t.Errorf("mre duty gauge = %v, want 1", duty)
	}
	stored := testutil.ToFloat64(nodeMetrics.DepotStoredMass.WithLabelValues(plants.MetalsStorageName, catalog.MetalAlloy))
	if math.Abs(stored-alloyTarget) > 1e-6*alloyTarget {
		t.Errorf("stored mass gauge = %v, want %g", stored, alloyTarget)
	}
}

func TestRunnerRejectsBadConfig(t *testing.T) {
	plant, err := plants.MetalsPlant(false, catalog.Default(), mars.Surface())
	if err != nil {
		t.Fatalf("MetalsPlant: %v", err)
	}
	if _, err := NewRunner(plant, Config{Depot: plants.MetalsStorageName, TargetMassKg: 1}, nil, nil, nil); err == nil {
		t.Errorf("zero time step accepted")
	}
	if _, err := NewRunner(plant, Config{Depot: plants.MetalsStorageName, TimeStepS: dayS}, nil, nil, nil); err == nil {
		t.Errorf("zero target mass accepted")
	}
	if _, err := NewRunner(nil, Config{Depot: "x", TargetMassKg: 1, TimeStepS: 1}, nil, nil, nil); err == nil {
		t.Errorf("nil plant accepted")
	}
}

func TestRunnerStepReportsUnknownDepot(t *testing.T) {
	plant, err := plants.MetalsPlant(false, catalog.Default(), mars.Surface())
	if err != nil {
		t.Fatalf("MetalsPlant: %v", err)
	}
	r, err := NewRunner(plant, Config{Depot: "nowhere", TargetMassKg: 1, TimeStepS: dayS}, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if err := r.Step(context.Background(), 1); err == nil {
		t.Fatalf("step against unknown depot succeeded")
	}
	if rep := r.Report(); rep.Steps != 0 {
		t.Errorf("failed step counted in report: %d", rep.Steps)
	}
}

func TestReportSummaryMentionsKeyStreams(t *testing.T) {
	r := metalsRunner(t, nil, nil)
	if err := r.Step(context.Background(), 1); err != nil {
		t.Fatalf("Step: %v", err)
	}

	summary := r.Report().Summary()
	for _, want := range []string{
		"campaign: 1 steps",
		"mre",
		plants.MetalsStorageName,
		catalog.MetalAlloy,
		catalog.Slag,
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
