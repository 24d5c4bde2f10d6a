// Package kmc implements the kinetic Monte Carlo event selection and step
// engine: pick a candidate domain pair biased by activity, evaluate its
// hybridization energy, and mutate the graph on acceptance.
package kmc

import (
	"fmt"
	"math/rand"

	weightedrand "github.com/mroth/weightedrand"

	"github.com/rscholer/domkin/model"
)

// weightScale converts a float64 activity weight into the unsigned
// integer weight weightedrand.Choice requires, at fixed precision. 1e9
// gives nine significant decimal digits of resolution on weights that are
// themselves fractions of 1 (selection weights are normalized to sum to
// at most 1 before a null candidate tops up the remainder).
const weightScale = 1e9

// Event is the outcome of one event-selection draw: a chosen first
// domain, optionally a second domain it encounters, and whether that
// encounter is with its existing hybridization partner.
type Event struct {
	D1          *model.Domain
	D2          *model.Domain // nil if no encounter was drawn
	IsHybridize bool          // true iff D2 == D1.Partner()
}

// EffectiveActivity returns the selection weight for candidate c
// encountering d1: the standard molar-concentration-equivalent weight for
// inter-complex candidates, or a larger, distance-dependent weight for
// intra-complex candidates, each scaled by oversampling.
func EffectiveActivity(tube *model.Tube, d1, c *model.Domain, oversampling float64) float64 {
	base := tube.Concentration()
	if d1.Complex() != nil && d1.Complex() == c.Complex() {
		base *= intraComplexBoost(d1, c)
	}
	return base * oversampling
}

// intraComplexBoost scales the base activity up for domains already in the
// same complex, more so the closer the candidate is to d1 by actual
// backbone+interaction hop count within the complex graph (not by domain
// id, which only tracks construction order and is meaningless across
// strands).
func intraComplexBoost(d1, c *model.Domain) float64 {
	hops, ok := d1.Complex().InteractionHopDistance(d1, c)
	if !ok {
		// same complex but no path under current edges (e.g. between
		// disjoint sub-assemblies mid-merge); fall back to the weakest
		// boost rather than treating the pair as arbitrarily close.
		hops = 1e6
	}
	return 1e6 / float64(1+hops)
}

// SelectEvent runs the two-stage lottery from the step engine: pick d1
// uniformly; if it already has a partner, report the existing
// hybridization; otherwise draw a candidate complement (or no encounter)
// weighted by effective activity.
func SelectEvent(rng *rand.Rand, tube *model.Tube, oversampling float64) (Event, error) {
	domains := tube.Domains()
	if len(domains) == 0 {
		return Event{}, fmt.Errorf("kmc: tube has no domains")
	}
	d1 := domains[rng.Intn(len(domains))]

	if d1.IsHybridized() {
		return Event{D1: d1, D2: d1.Partner(), IsHybridize: true}, nil
	}

	complement, ok := tube.Complement(d1.Species())
	if !ok {
		return Event{D1: d1}, nil
	}

	var candidates []*model.Domain
	var weights []float64
	var total float64
	for _, c := range tube.DomainsByName(complement) {
		if c == d1 || c.IsHybridized() {
			continue
		}
		w := EffectiveActivity(tube, d1, c, oversampling)
		candidates = append(candidates, c)
		weights = append(weights, w)
		total += w
	}
	if len(candidates) == 0 {
		return Event{D1: d1}, nil
	}

	if total > 1 {
		for i := range weights {
			weights[i] /= total
		}
		total = 1
	}

	choices := make([]weightedrand.Choice, 0, len(candidates)+1)
	var scaledTotal uint
	for i, c := range candidates {
		w := uint(weights[i] * weightScale)
		scaledTotal += w
		choices = append(choices, weightedrand.Choice{Item: c, Weight: w})
	}
	nullWeight := uint((1 - total) * weightScale)
	if total < 1 {
		choices = append(choices, weightedrand.Choice{Item: (*model.Domain)(nil), Weight: nullWeight})
		scaledTotal += nullWeight
	}
	if scaledTotal == 0 {
		// every weight rounded to zero under fixed-point scaling: treat as
		// no encounter rather than handing weightedrand an all-zero table.
		return Event{D1: d1}, nil
	}

	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return Event{}, fmt.Errorf("kmc: building weighted chooser: %w", err)
	}
	picked := chooser.PickSource(rng).(*model.Domain)
	if picked == nil {
		return Event{D1: d1}, nil
	}
	return Event{D1: d1, D2: picked, IsHybridize: false}, nil
}
