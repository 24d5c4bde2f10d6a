package model

import (
	"encoding/binary"
	"sort"
)

// SuperEdge names one blunt-end stacking contact between two otherwise
// separate complexes.
type SuperEdge struct {
	From, To ComplexID
}

// SuperComplex is a graph whose nodes are complexes and whose edges are
// blunt-end stacking pairs between them. In this implementation, any
// stacking interaction merges the two complexes it connects (see
// Tube.AddStackingJunction), so a SuperComplex never arises as a side
// effect of normal simulation; it is exposed for callers that want to
// track stacking contacts between complexes without committing to a
// merge, e.g. a coarser multi-complex aggregate tube.go does not build on
// its own.
type SuperComplex struct {
	members map[ComplexID]*Complex
	edges   []SuperEdge
}

// NewSuperComplex builds a SuperComplex over the given complexes and edges.
// Edges whose endpoints are not both present in members are dropped.
func NewSuperComplex(members []*Complex, edges []SuperEdge) *SuperComplex {
	sc := &SuperComplex{members: make(map[ComplexID]*Complex, len(members))}
	for _, c := range members {
		sc.members[c.id] = c
	}
	for _, e := range edges {
		if _, ok := sc.members[e.From]; !ok {
			continue
		}
		if _, ok := sc.members[e.To]; !ok {
			continue
		}
		sc.edges = append(sc.edges, e)
	}
	return sc
}

// Members returns the complexes that make up this super-complex.
func (sc *SuperComplex) Members() []*Complex {
	out := make([]*Complex, 0, len(sc.members))
	for _, c := range sc.members {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Edges returns the blunt-end stacking edges between members.
func (sc *SuperComplex) Edges() []SuperEdge { return sc.edges }

// Fingerprint is the unordered multiset of member-complex state
// fingerprints, reduced to a single 64-bit value. Unlike a Complex's own
// fingerprint, it carries no information about which complexes are
// stacking-adjacent to which; it answers only "is this the same bag of
// complexes, structurally".
func (sc *SuperComplex) Fingerprint() (uint64, error) {
	fps := make([]uint64, 0, len(sc.members))
	for _, c := range sc.members {
		fp, err := c.StateFingerprint()
		if err != nil {
			return 0, err
		}
		fps = append(fps, fp)
	}
	sort.Slice(fps, func(i, j int) bool { return fps[i] < fps[j] })
	var buf []byte
	for _, fp := range fps {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], fp)
		buf = append(buf, b[:]...)
	}
	return hashBytes(buf), nil
}
