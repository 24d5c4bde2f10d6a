// Package nnparams defines the nearest-neighbor thermodynamic table
// contract consumed by the energy model, and ships one concrete table so
// that callers have real numbers to simulate against without supplying
// their own.
//
// The contract and one implementation are in scope here; sourcing,
// fitting, or validating nearest-neighbor parameters against experimental
// melting data is not.
package nnparams

import "fmt"

// pairEnergy holds the standard enthalpy (kcal/mol) and entropy
// (cal/mol*K) of one nearest-neighbor base-pair step, following the same
// two-field shape as the teacher's internal folding energy tables.
type pairEnergy struct {
	enthalpyH float64 // kcal/mol
	entropyS  float64 // cal/mol*K
}

// Table is the external collaborator contract: given the two domain
// sequences being tested for hybridization, return their standard
// enthalpy (kcal/mol) and entropy (cal/mol*K) of duplex formation.
type Table interface {
	Lookup(seqA, seqB string) (dH, dS float64, err error)
}

// SantaLucia1998 implements Table using the unified nearest-neighbor
// parameters of SantaLucia (1998), PNAS 95:1460-1465, table 1 ("unified"
// NN parameters), plus the initiation terms for helix formation. Domain
// sequences are treated as full duplex participants: seqB is expected to
// be the reverse complement of seqA over the region that actually pairs,
// matching how the step engine only calls Lookup for domains it has
// already determined are declared-complementary.
type SantaLucia1998 struct {
	nn   map[string]pairEnergy
	init map[string]pairEnergy
}

// NewSantaLucia1998 returns a Table backed by the unified 1998 parameter
// set.
func NewSantaLucia1998() *SantaLucia1998 {
	return &SantaLucia1998{
		nn: map[string]pairEnergy{
			"AA": {-7.9, -22.2}, "TT": {-7.9, -22.2},
			"AT": {-7.2, -20.4},
			"TA": {-7.2, -21.3},
			"CA": {-8.5, -22.7}, "TG": {-8.5, -22.7},
			"GT": {-8.4, -22.4}, "AC": {-8.4, -22.4},
			"CT": {-7.8, -21.0}, "AG": {-7.8, -21.0},
			"GA": {-8.2, -22.2}, "TC": {-8.2, -22.2},
			"CG": {-10.6, -27.2},
			"GC": {-9.8, -24.4},
			"GG": {-8.0, -19.9}, "CC": {-8.0, -19.9},
		},
		// Terminal AT/GC initiation penalties, SantaLucia 1998 table 1.
		init: map[string]pairEnergy{
			"AT_TERM": {2.3, 4.1},
			"GC_TERM": {0.1, -2.8},
		},
	}
}

func complementBase(b byte) (byte, bool) {
	switch b {
	case 'A':
		return 'T', true
	case 'T':
		return 'A', true
	case 'C':
		return 'G', true
	case 'G':
		return 'C', true
	default:
		return 0, false
	}
}

// Lookup sums nearest-neighbor stacking energies along seqA (assuming
// seqB is its reverse complement across the paired region) plus terminal
// initiation penalties, and returns (dH in kcal/mol, dS in cal/mol*K).
func (t *SantaLucia1998) Lookup(seqA, seqB string) (float64, float64, error) {
	if len(seqA) == 0 {
		return 0, 0, fmt.Errorf("nnparams: empty domain sequence")
	}
	if len(seqA) != len(seqB) {
		return 0, 0, fmt.Errorf("nnparams: domain length mismatch %d != %d", len(seqA), len(seqB))
	}
	for i := 0; i < len(seqA); i++ {
		want, ok := complementBase(seqA[i])
		if !ok {
			return 0, 0, fmt.Errorf("nnparams: invalid base %q in %q", seqA[i], seqA)
		}
		if seqB[len(seqB)-1-i] != want {
			return 0, 0, fmt.Errorf("nnparams: %q is not the reverse complement of %q at position %d", seqB, seqA, i)
		}
	}

	var dHkcal, dS float64
	for i := 0; i+1 < len(seqA); i++ {
		step := seqA[i : i+2]
		e, ok := t.nn[step]
		if !ok {
			return 0, 0, fmt.Errorf("nnparams: no nearest-neighbor parameter for step %q", step)
		}
		dHkcal += e.enthalpyH
		dS += e.entropyS
	}

	for _, end := range []byte{seqA[0], seqA[len(seqA)-1]} {
		if end == 'A' || end == 'T' {
			dHkcal += t.init["AT_TERM"].enthalpyH
			dS += t.init["AT_TERM"].entropyS
		} else {
			dHkcal += t.init["GC_TERM"].enthalpyH
			dS += t.init["GC_TERM"].entropyS
		}
	}

	return dHkcal, dS, nil // kcal/mol, cal/mol*K
}
