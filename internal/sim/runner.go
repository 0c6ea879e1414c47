package sim

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/plant-simulator/core"
	"github.com/signalsfoundry/plant-simulator/internal/logging"
	"github.com/signalsfoundry/plant-simulator/internal/observability"
)

const tracerName = "github.com/signalsfoundry/plant-simulator/internal/sim"

// Config fixes the production campaign a Runner drives: which depot is
// asked for how much product each step, and how long a step lasts.
type Config struct {
	Depot        string
	TargetMassKg float64
	TimeStepS    float64
}

// Runner drives a plant through repeated setup/run cycles, folding each
// step's results into campaign totals and feeding the observability stack.
type Runner struct {
	plant *core.Plant
	cfg   Config

	log    logging.Logger
	tracer trace.Tracer
	sim    *observability.SimCollector
	nodes  *observability.PlantCollector

	steps           int
	projectedEnergy float64
	actualEnergy    float64
	peakPower       float64

	nodeEnergy map[string]float64
	produced   map[string]map[string]float64
	consumed   map[string]map[string]float64
	overages   map[string]map[string]float64
	baseline   map[string]map[string]float64
}

// NewRunner constructs a runner. The logger and collectors may be nil, in
// which case the corresponding outputs are dropped.
func NewRunner(plant *core.Plant, cfg Config, log logging.Logger,
	simMetrics *observability.SimCollector, nodeMetrics *observability.PlantCollector) (*Runner, error) {
	if plant == nil {
		return nil, fmt.Errorf("%w: runner needs a plant", core.ErrConfiguration)
	}
	if cfg.TimeStepS <= 0 {
		return nil, fmt.Errorf("%w: time step must be positive, got %g", core.ErrConfiguration, cfg.TimeStepS)
	}
	if cfg.TargetMassKg <= 0 {
		return nil, fmt.Errorf("%w: target mass must be positive, got %g", core.ErrConfiguration, cfg.TargetMassKg)
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Runner{
		plant:      plant,
		cfg:        cfg,
		log:        log,
		tracer:     otel.Tracer(tracerName),
		sim:        simMetrics,
		nodes:      nodeMetrics,
		nodeEnergy: make(map[string]float64),
		produced:   make(map[string]map[string]float64),
		consumed:   make(map[string]map[string]float64),
		overages:   make(map[string]map[string]float64),
		baseline:   make(map[string]map[string]float64),
	}, nil
}

// Step performs one backward demand pass and one forward production pass,
// then samples the plant into the campaign totals and metrics.
func (r *Runner) Step(ctx context.Context, step int) error {
	ctx, span := r.tracer.Start(ctx, "plant.step",
		trace.WithAttributes(
			attribute.Int("sim.step", step),
			attribute.String("sim.depot", r.cfg.Depot),
			attribute.Float64("sim.target_mass_kg", r.cfg.TargetMassKg),
		))
	defer span.End()

	began := time.Now()
	if err := r.plant.Setup(map[string]float64{r.cfg.Depot: r.cfg.TargetMassKg}, r.cfg.TimeStepS); err != nil {
		r.sim.RecordError("setup")
		span.RecordError(err)
		span.SetStatus(codes.Error, "setup failed")
		r.log.Error(ctx, "demand pass failed", logging.Int("step", step), logging.Any("error", err))
		return fmt.Errorf("step %d setup: %w", step, err)
	}
	r.sim.RecordSetup()

	if err := r.plant.Run(r.cfg.TimeStepS); err != nil {
		r.sim.RecordError("run")
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		r.log.Error(ctx, "production pass failed", logging.Int("step", step), logging.Any("error", err))
		return fmt.Errorf("step %d run: %w", step, err)
	}
	r.sim.RecordRun(time.Since(began))
	r.sim.SetPower(r.plant.ProjectedPower, r.plant.ActualPower)
	r.nodes.Sample(r.plant)

	r.accumulate()
	span.SetAttributes(
		attribute.Float64("sim.projected_power_w", r.plant.ProjectedPower),
		attribute.Float64("sim.actual_power_w", r.plant.ActualPower),
	)
	r.log.Info(ctx, "step complete",
		logging.Int("step", step),
		logging.Float("projected_power_w", r.plant.ProjectedPower),
		logging.Float("actual_power_w", r.plant.ActualPower),
	)
	return nil
}

func (r *Runner) accumulate() {
	r.steps++
	r.projectedEnergy += r.plant.ProjectedEnergy
	r.actualEnergy += r.plant.ActualEnergy

	// Peak draw assumes each node concentrates its energy into its active
	// fraction of the step; idle nodes contribute nothing.
	var peak float64
	for _, name := range r.plant.NodeNames() {
		node := r.plant.Node(name)
		r.nodeEnergy[name] += node.EnergyDemand()
		if duty := node.DutyCycle(); duty > 1e-4 {
			peak += node.EnergyDemand() / (r.cfg.TimeStepS * min(duty, 1))
		}
	}
	if peak > r.peakPower {
		r.peakPower = peak
	}

	addFlows(r.produced, r.plant.Produced)
	addFlows(r.consumed, r.plant.Consumed)
	addFlows(r.overages, r.plant.Overages)
	addFlows(r.baseline, r.plant.BaselineRequests)
}

func addFlows(into map[string]map[string]float64, flows map[string]core.Flow) {
	for name, flow := range flows {
		if len(flow) == 0 {
			continue
		}
		bucket := into[name]
		if bucket == nil {
			bucket = make(map[string]float64, len(flow))
			into[name] = bucket
		}
		for kind, res := range flow {
			bucket[kind] += res.Mass
		}
	}
}
