// Package anneal drives the step engine over a temperature schedule,
// checking graph invariants and flushing stats at each temperature
// boundary.
package anneal

import (
	"context"
	"fmt"
	"math"

	"github.com/lunny/log"

	"github.com/rscholer/domkin/kmc"
	"github.com/rscholer/domkin/model"
)

// Flusher is implemented by stats sinks that batch writes and need an
// explicit flush point. anneal depends only on this narrow interface to
// avoid importing the stats package directly.
type Flusher interface {
	Flush() error
}

// Schedule describes one temperature sweep: T_start -> T_finish stepping
// by deltaT, running nPerT steps at each temperature.
type Schedule struct {
	TStart, TFinish float64 // Kelvin
	DeltaT          float64
	NPerT           int
}

// Validate checks the precondition from spec.md 4.5: deltaT != 0, and the
// sign of deltaT must agree with the direction of the sweep.
func (s Schedule) Validate() error {
	if s.DeltaT == 0 {
		return &model.ConfigError{Detail: "anneal: deltaT must be nonzero"}
	}
	if s.NPerT <= 0 {
		return &model.ConfigError{Detail: "anneal: nPerT must be positive"}
	}
	descending := s.TStart > s.TFinish
	if descending != (s.DeltaT < 0) {
		return &model.ConfigError{Detail: "anneal: deltaT sign must match the direction from TStart to TFinish"}
	}
	return nil
}

// temperatures returns the arithmetic progression from TStart to TFinish,
// inclusive of TStart, and of TFinish when the progression lands on it
// (within 1e-9); no temperature beyond TFinish is included.
func (s Schedule) temperatures() []float64 {
	var out []float64
	if s.DeltaT > 0 {
		for t := s.TStart; t <= s.TFinish+1e-9; t += s.DeltaT {
			out = append(out, t)
		}
	} else {
		for t := s.TStart; t >= s.TFinish-1e-9; t += s.DeltaT {
			out = append(out, t)
		}
	}
	return out
}

// Run sweeps sched over sim, flushing sim.Stats (if it implements
// Flusher) and checking sim.Tube's invariants after every temperature.
// It stops (returning the context's error) if ctx is cancelled between
// steps.
func Run(ctx context.Context, sim *kmc.Simulator, sched Schedule) error {
	if err := sched.Validate(); err != nil {
		return err
	}

	for _, t := range sched.temperatures() {
		if err := sim.Simulate(ctx, t, sched.NPerT); err != nil {
			return fmt.Errorf("anneal: simulating at T=%.2fK: %w", t, err)
		}

		if err := sim.Tube.CheckInvariants(); err != nil {
			return fmt.Errorf("anneal: invariant check failed at T=%.2fK: %w", t, err)
		}

		if flusher, ok := sim.Stats.(Flusher); ok {
			if err := flusher.Flush(); err != nil {
				return fmt.Errorf("anneal: flushing stats at T=%.2fK: %w", t, err)
			}
		}

		log.Infof("anneal: T=%.2fK f_dom_hyb=%.4f", t, fractionDomainsHybridized(sim))
	}
	return nil
}

func fractionDomainsHybridized(sim *kmc.Simulator) float64 {
	n := sim.Tube.NDomains()
	if n == 0 {
		return math.NaN()
	}
	return float64(sim.Tube.NDomainsHybridized) / float64(n)
}
