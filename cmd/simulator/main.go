package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/signalsfoundry/plant-simulator/catalog"
	"github.com/signalsfoundry/plant-simulator/internal/logging"
	"github.com/signalsfoundry/plant-simulator/internal/observability"
	"github.com/signalsfoundry/plant-simulator/internal/sim"
	"github.com/signalsfoundry/plant-simulator/mars"
	"github.com/signalsfoundry/plant-simulator/plants"
	"github.com/signalsfoundry/plant-simulator/timectrl"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/scenario.json", "path to the JSON scenario file")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus /metrics on (empty disables)")
	flag.Parse()

	ctx, log := logging.WithRunLogger(context.Background(), logging.NewFromEnv())

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		fatal(ctx, log, "tracing init failed", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	f, err := os.Open(*scenarioPath)
	if err != nil {
		fatal(ctx, log, "cannot open scenario", err)
	}
	scenario, err := plants.LoadScenario(f)
	f.Close()
	if err != nil {
		fatal(ctx, log, "cannot parse scenario", err)
	}

	plant, err := scenario.Build(catalog.Default(), mars.Surface())
	if err != nil {
		fatal(ctx, log, "cannot build plant", err)
	}
	log.Info(ctx, "plant assembled",
		logging.String("plant", scenario.Plant),
		logging.String("regolith", scenario.Regolith.String()),
		logging.String("addon", scenario.Addon.String()),
		logging.Int("nodes", len(plant.NodeNames())),
	)

	simMetrics, err := observability.NewSimCollector(nil)
	if err != nil {
		fatal(ctx, log, "metrics init failed", err)
	}
	nodeMetrics, err := observability.NewPlantCollector(nil)
	if err != nil {
		fatal(ctx, log, "metrics init failed", err)
	}
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", simMetrics.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Warn(ctx, "metrics server stopped", logging.Any("error", err))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsAddr))
	}

	runner, err := sim.NewRunner(plant, sim.Config{
		Depot:        scenario.DepotName(),
		TargetMassKg: scenario.TargetMassKg,
		TimeStepS:    scenario.TimeStepS,
	}, log, simMetrics, nodeMetrics)
	if err != nil {
		fatal(ctx, log, "cannot build runner", err)
	}

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	tick := time.Duration(scenario.TimeStepS * float64(time.Second))
	tc := timectrl.NewTimeController(time.Now().UTC(), tick, mode)

	var stepErr error
	tc.AddListener(func(step int, simTime time.Time) {
		if stepErr != nil {
			return
		}
		stepErr = runner.Step(ctx, step)
	})

	log.Info(ctx, "starting campaign",
		logging.Int("steps", scenario.Steps),
		logging.Float("time_step_s", scenario.TimeStepS),
		logging.Float("target_mass_kg", scenario.TargetMassKg),
	)
	<-tc.Start(scenario.Steps)
	if stepErr != nil {
		fatal(ctx, log, "campaign aborted", stepErr)
	}

	fmt.Print(runner.Report().Summary())
}

func fatal(ctx context.Context, log logging.Logger, msg string, err error) {
	log.Error(ctx, msg, logging.Any("error", err))
	os.Exit(1)
}
