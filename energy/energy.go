// Package energy computes hybridization free energies and the resulting
// acceptance probabilities used by the step engine, following the
// nearest-neighbor model with neighbor, stacking, and intra-complex
// entropy corrections.
package energy

import (
	"fmt"
	"math"

	"github.com/rscholer/domkin/model"
	"github.com/rscholer/domkin/nnparams"
)

// GasConstant is R in cal/mol*K.
const GasConstant = 1.987

// Result carries the decomposed free-energy calculation, for logging and
// tests that want to inspect the correction terms independently of the
// final ΔG.
type Result struct {
	DeltaG     float64 // cal/mol
	DeltaH     float64 // cal/mol
	DeltaS     float64 // cal/mol*K
	DeltaHCorr float64 // cal/mol
	DeltaSCorr float64 // cal/mol*K
}

// Model evaluates hybridization energies for a declared domain pair using
// a nearest-neighbor table, memoizing the per-species-pair ΔH/ΔS lookup
// (that part of the calculation does not depend on dynamic graph state,
// only on sequence identity).
type Model struct {
	table nnparams.Table
	cache map[[2]string]cachedHS
}

type cachedHS struct {
	dH, dS float64
}

// NewModel returns an energy Model backed by the given nearest-neighbor
// table.
func NewModel(table nnparams.Table) *Model {
	return &Model{table: table, cache: make(map[[2]string]cachedHS)}
}

func (m *Model) lookup(a, b *model.Domain) (float64, float64, error) {
	key := [2]string{a.Species(), b.Species()}
	if v, ok := m.cache[key]; ok {
		return v.dH, v.dS, nil
	}
	dH, dS, err := m.table.Lookup(a.Sequence(), b.Sequence())
	if err != nil {
		return 0, 0, fmt.Errorf("energy: nearest-neighbor lookup for %s/%s: %w", a, b, err)
	}
	m.cache[key] = cachedHS{dH, dS}
	return dH, dS, nil
}

// neighborCount counts N_n, the number of existing adjacent backbone
// neighbors on either side of the would-be duplex (5' and 3' of both
// domains).
func neighborCount(a, b *model.Domain) int {
	n := 0
	if a.Domain5p() != nil {
		n++
	}
	if a.Domain3p() != nil {
		n++
	}
	if b.Domain5p() != nil {
		n++
	}
	if b.Domain3p() != nil {
		n++
	}
	return n
}

// stackingCount counts N_stacking: the number of hybridized
// adjacent-backbone neighbors on either duplex side, evaluated as four
// independent boolean checks summed as integers (0-4). This definition
// resolves the "sum of booleans, not boolean-or" ambiguity in the
// reference computation.
func stackingCount(a, b *model.Domain) int {
	n := 0
	if a.Domain5pIsHybridized() {
		n++
	}
	if a.Domain3pIsHybridized() {
		n++
	}
	if b.Domain5pIsHybridized() {
		n++
	}
	if b.Domain3pIsHybridized() {
		n++
	}
	return n
}

// Hybridization computes ΔG (and its components) for a and b forming a
// duplex at temperature T (Kelvin). a and b need not currently be
// hybridized; they need only be a declared-complementary pair.
func (m *Model) Hybridization(a, b *model.Domain, tempK float64) (Result, error) {
	dH, dS, err := m.lookup(a, b)
	if err != nil {
		return Result{}, err
	}

	nn := neighborCount(a, b)
	ns := stackingCount(a, b)
	dHcorr := -3*float64(nn) + -7*float64(ns)
	dScorr := -10*float64(nn) + -20*float64(ns)

	if a.Complex() != nil && a.Complex() == b.Complex() {
		dScorr += 4
	}

	dHcal := dH*1000 + dHcorr
	dScal := dS + dScorr
	dG := dHcal - tempK*dScal

	return Result{
		DeltaG:     dG,
		DeltaH:     dH * 1000,
		DeltaS:     dS,
		DeltaHCorr: dHcorr,
		DeltaSCorr: dScorr,
	}, nil
}

// AcceptanceProbability converts a free energy at temperature T into a
// hybridization probability, given bias factor q (K*Q / (1 + K*Q)).
// Saturates to [0, 1] for large-magnitude ΔG rather than overflowing.
func AcceptanceProbability(deltaG, tempK, q float64) float64 {
	x := -deltaG / (GasConstant * tempK)
	if x > 700 {
		return 1 // exp(x) would overflow; K*Q dominates 1 either way
	}
	if x < -700 {
		return 0
	}
	k := math.Exp(x)
	kq := k * q
	return kq / (1 + kq)
}
