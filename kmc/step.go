package kmc

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/lunny/log"

	"github.com/rscholer/domkin/energy"
	"github.com/rscholer/domkin/model"
)

// StatsSink receives a snapshot whenever a step changes the graph or a
// periodic timesampling tick fires. It is satisfied by stats.CSVSink and
// stats.SQLiteSink; kmc depends only on this narrow interface to avoid an
// import cycle with the stats package.
type StatsSink interface {
	Record(stream string, t float64, nDomHyb int, fDomHyb float64, nStrandHyb int, fStrandHyb float64) error
}

// Simulator drives the kinetic Monte Carlo step loop over one tube, using
// a single seedable generator for both the categorical selection draw and
// the uniform acceptance draw, per the single-generator determinism
// requirement.
type Simulator struct {
	Tube         *model.Tube
	Energy       *energy.Model
	Rng          *rand.Rand
	Oversampling float64 // probablity_oversampling_factor; 1 disables oversampling
	Q            float64 // acceptance bias factor; defaults to 1 if zero

	Stats                 StatsSink
	TimesamplingFrequency int // steps between timesampling snapshots; 0 disables
	RecordStats           bool
}

// NewSimulator returns a Simulator with the documented defaults
// (Oversampling=1, Q=1, TimesamplingFrequency=10, RecordStats=true);
// callers change the exported fields afterwards to override them.
func NewSimulator(tube *model.Tube, energyModel *energy.Model, rng *rand.Rand) *Simulator {
	return &Simulator{
		Tube:                  tube,
		Energy:                energyModel,
		Rng:                   rng,
		Oversampling:          1,
		Q:                     1,
		TimesamplingFrequency: 10,
		RecordStats:           true,
	}
}

// strandsHybridized counts strands with at least one hybridized domain,
// and updates the tube's NStrandsHybridized counter to match.
func (s *Simulator) strandsHybridized() int {
	hyb := 0
	for _, strand := range s.Tube.Strands() {
		if strand.IsHybridized() {
			hyb++
		}
	}
	s.Tube.NStrandsHybridized = hyb
	return hyb
}

func (s *Simulator) record(stream string, tempK float64) error {
	if !s.RecordStats || s.Stats == nil {
		return nil
	}
	nDom := s.Tube.NDomains()
	nStrand := s.Tube.NStrands()
	nStrandHyb := s.strandsHybridized()

	var fDomHyb, fStrandHyb float64
	if nDom > 0 {
		fDomHyb = float64(s.Tube.NDomainsHybridized) / float64(nDom)
	}
	if nStrand > 0 {
		fStrandHyb = float64(nStrandHyb) / float64(nStrand)
	}

	return s.Stats.Record(stream, tempK, s.Tube.NDomainsHybridized, fDomHyb, nStrandHyb, fStrandHyb)
}

// Step runs one kinetic Monte Carlo step at temperature tempK, per
// spec.md section 4.4. A no-encounter draw is a normal no-op, not an
// error.
func (s *Simulator) Step(tempK float64) error {
	s.Tube.NSteps++

	evt, err := SelectEvent(s.Rng, s.Tube, s.Oversampling)
	if err != nil {
		return fmt.Errorf("kmc: selecting event at step %d: %w", s.Tube.NSteps, err)
	}
	if evt.D2 == nil {
		return nil
	}

	q := s.Q
	if q == 0 {
		q = 1
	}
	result, err := s.Energy.Hybridization(evt.D1, evt.D2, tempK)
	if err != nil {
		return fmt.Errorf("kmc: evaluating energy at step %d: %w", s.Tube.NSteps, err)
	}
	pHyb := energy.AcceptanceProbability(result.DeltaG, tempK, q)

	if evt.IsHybridize && s.Oversampling > 1 {
		pHyb = 1 - s.Oversampling*(1-pHyb)
		if pHyb < 0 {
			pHyb = 0
		} else if pHyb > 1 {
			pHyb = 1
		}
	}

	desiredHybridized := s.Rng.Float64() <= pHyb

	switch {
	case !evt.IsHybridize && desiredHybridized:
		if err := s.Tube.Hybridize(evt.D1, evt.D2); err != nil {
			return fmt.Errorf("kmc: hybridizing at step %d: %w", s.Tube.NSteps, err)
		}
	case evt.IsHybridize && !desiredHybridized:
		if err := s.Tube.Dehybridize(evt.D1, evt.D2); err != nil {
			return fmt.Errorf("kmc: dehybridizing at step %d: %w", s.Tube.NSteps, err)
		}
	default:
		return nil
	}

	s.Tube.NChanges++
	if err := s.record("changesampling", tempK); err != nil {
		return fmt.Errorf("kmc: recording changesampling at step %d: %w", s.Tube.NSteps, err)
	}
	return nil
}

// Simulate runs n steps at a fixed temperature, emitting a timesampling
// snapshot every TimesamplingFrequency steps, and returns early if ctx is
// cancelled at a step boundary.
func (s *Simulator) Simulate(ctx context.Context, tempK float64, n int) error {
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Step(tempK); err != nil {
			return err
		}
		if s.TimesamplingFrequency > 0 && (i+1)%s.TimesamplingFrequency == 0 {
			if err := s.record("timesampling", tempK); err != nil {
				return fmt.Errorf("kmc: recording timesampling at step %d: %w", s.Tube.NSteps, err)
			}
		}
	}
	log.Infof("simulate: T=%.2fK steps=%d N_changes=%d", tempK, n, s.Tube.NChanges)
	return nil
}
