package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the simulation loop: step
// counts, step latency, and plant-wide power figures.
type SimCollector struct {
	gatherer prometheus.Gatherer

	SetupsTotal  prometheus.Counter
	RunsTotal    prometheus.Counter
	ErrorsTotal  *prometheus.CounterVec
	StepDuration prometheus.Histogram

	ProjectedPower prometheus.Gauge
	ActualPower    prometheus.Gauge
}

// NewSimCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	setups, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_setups_total",
		Help: "Total number of completed demand-propagation passes.",
	}), "sim_setups_total")
	if err != nil {
		return nil, err
	}
	runs, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_runs_total",
		Help: "Total number of completed production passes.",
	}), "sim_runs_total")
	if err != nil {
		return nil, err
	}

	errors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_step_errors_total",
		Help: "Total number of failed simulation steps, labeled by pass.",
	}, []string{"pass"})
	errors, err = registerCounterVec(reg, errors, "sim_step_errors_total")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_step_duration_seconds",
		Help:    "Wall-clock latency of one setup+run simulation step.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
	duration, err = registerHistogram(reg, duration, "sim_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	projected, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plant_projected_power_watts",
		Help: "Power the demand-propagation pass projected for the last step.",
	}), "plant_projected_power_watts")
	if err != nil {
		return nil, err
	}
	actual, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plant_actual_power_watts",
		Help: "Power the production pass actually drew over the last step.",
	}), "plant_actual_power_watts")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:       gatherer,
		SetupsTotal:    setups,
		RunsTotal:      runs,
		ErrorsTotal:    errors,
		StepDuration:   duration,
		ProjectedPower: projected,
		ActualPower:    actual,
	}, nil
}

// RecordSetup counts one completed demand-propagation pass.
func (c *SimCollector) RecordSetup() {
	if c == nil || c.SetupsTotal == nil {
		return
	}
	c.SetupsTotal.Inc()
}

// RecordRun counts one completed production pass and its step latency.
func (c *SimCollector) RecordRun(d time.Duration) {
	if c == nil {
		return
	}
	if c.RunsTotal != nil {
		c.RunsTotal.Inc()
	}
	if c.StepDuration != nil {
		c.StepDuration.Observe(d.Seconds())
	}
}

// RecordError counts a failed step by pass name ("setup" or "run").
func (c *SimCollector) RecordError(pass string) {
	if c == nil || c.ErrorsTotal == nil {
		return
	}
	c.ErrorsTotal.WithLabelValues(pass).Inc()
}

// SetPower updates the plant-wide power gauges.
func (c *SimCollector) SetPower(projected, actual float64) {
	if c == nil {
		return
	}
	if c.ProjectedPower != nil {
		c.ProjectedPower.Set(projected)
	}
	if c.ActualPower != nil {
		c.ActualPower.Set(actual)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
