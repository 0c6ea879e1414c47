package timectrl

import (
	"sync"
	"time"
)

// SimClock is an interface for reading simulation time. Components observe
// the campaign clock through this abstraction rather than a concrete
// controller type, which keeps them testable.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime paces each tick by wall-clock time, for demos that watch
	// the plant operate live.
	RealTime Mode = iota
	// Accelerated advances as quickly as the listeners can run while still
	// stepping simulation time by Tick.
	Accelerated
)

// TimeController drives simulation time and notifies registered listeners
// once per step. It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time

	listeners []func(step int, simTime time.Time)
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime moves the simulation clock without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every step with the 1-based
// step number and the simulation time the step advanced to. Listeners must
// be registered before Start.
func (tc *TimeController) AddListener(fn func(step int, simTime time.Time)) {
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller for the given number of steps in a separate
// goroutine and returns a channel that is closed when it finishes. In
// RealTime mode each step waits out one Tick of wall-clock time;
// Accelerated mode steps back-to-back, paced only by the listeners.
func (tc *TimeController) Start(steps int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		simTime := tc.StartTime
		tc.currentTime = simTime
		tc.mu.Unlock()

		var ticker *time.Ticker
		if tc.Mode == RealTime {
			ticker = time.NewTicker(tc.Tick)
			defer ticker.Stop()
		}

		for step := 1; step <= steps; step++ {
			if ticker != nil {
				<-ticker.C
			}
			simTime = simTime.Add(tc.Tick)

			tc.mu.Lock()
			tc.currentTime = simTime
			tc.mu.Unlock()

			for _, fn := range tc.listeners {
				fn(step, simTime)
			}
		}
	}()
	return done
}
