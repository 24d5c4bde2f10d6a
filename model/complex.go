package model

import (
	"sort"
)

// StrictInvariants controls whether mutators that are documented to change
// a Complex's state fingerprint panic (debug builds) or return an
// *InvariantError (release builds) when the fingerprint does not actually
// change. It stands in for the reference implementation's
// state_should_change decorator, which is a compile-time concept in the
// source language but a runtime switch here.
var StrictInvariants = true

// hybPair is the canonical (sorted) key for an unordered hybridized domain
// pair.
type hybPair struct {
	lo, hi DomainID
}

func newHybPair(a, b *Domain) hybPair {
	if a.id < b.id {
		return hybPair{a.id, b.id}
	}
	return hybPair{b.id, a.id}
}

// StackingEdge names one directed stacking contact: from's 3' end stacks
// against to's 5' end. A full stacking junction is a pair of StackingEdges,
// one for each strand of the junction.
type StackingEdge struct {
	From DomainEnd
	To   DomainEnd
}

type stackKey struct {
	from, to DomainID
}

func newStackKey(e StackingEdge) stackKey {
	return stackKey{e.From.Domain.id, e.To.Domain.id}
}

// Complex is a connected component under the union of backbone,
// hybridization, and stacking interactions.
type Complex struct {
	id    ComplexID
	tube  *Tube
	uuid  uint64 // debugging-only unique id, distinct from id which can be reassigned on split
	strands map[StrandID]*Strand

	strandSpeciesCount map[string]int
	domainSpeciesCount map[string]int

	hybridizedPairs map[hybPair]struct{}
	stackedPairs    map[stackKey]StackingEdge

	icidRadius      int
	icidUseInstance bool

	history []string

	stateFP   *uint64
	strandsFP *uint64
	hybFP     *uint64
	stackFP   *uint64
	icidCache map[DomainID]uint64
}

const complexHistoryLimit = 100

func newComplex(id ComplexID, tube *Tube) *Complex {
	return &Complex{
		id:                 id,
		tube:               tube,
		uuid:               tube.nextUUID(),
		strands:            make(map[StrandID]*Strand),
		strandSpeciesCount: make(map[string]int),
		domainSpeciesCount: make(map[string]int),
		hybridizedPairs:    make(map[hybPair]struct{}),
		stackedPairs:       make(map[stackKey]StackingEdge),
		icidRadius:         5,
		icidUseInstance:    false,
	}
}

func (c *Complex) ID() ComplexID { return c.id }

// Strands returns the complex's strands. The returned slice is a fresh
// copy; it is safe to mutate.
func (c *Complex) Strands() []*Strand {
	out := make([]*Strand, 0, len(c.strands))
	for _, s := range c.strands {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Domains returns every domain belonging to every strand of the complex.
func (c *Complex) Domains() []*Domain {
	var out []*Domain
	for _, s := range c.Strands() {
		out = append(out, s.domains...)
	}
	return out
}

func (c *Complex) recordHistory(entry string) {
	c.history = append(c.history, entry)
	if len(c.history) > complexHistoryLimit {
		c.history = c.history[len(c.history)-complexHistoryLimit:]
	}
}

// History returns a copy of the bounded history ring, oldest first.
func (c *Complex) History() []string {
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Complex) invalidateFingerprints() {
	c.stateFP = nil
	c.strandsFP = nil
	c.hybFP = nil
	c.stackFP = nil
	c.icidCache = nil
}

// withStateChange runs fn, which must mutate the complex, and then enforces
// the state_should_change contract: the fingerprint after fn must differ
// from the fingerprint before. See StrictInvariants.
func (c *Complex) withStateChange(op string, fn func()) error {
	before, err := c.StateFingerprint()
	if err != nil {
		return err
	}
	fn()
	c.invalidateFingerprints()
	after, err := c.StateFingerprint()
	if err != nil {
		return err
	}
	if after == before {
		ierr := &InvariantError{
			Op:      op,
			Complex: c.id,
			Detail:  "fingerprint unchanged after a mutation that claims to change state",
			History: c.History(),
		}
		if StrictInvariants {
			panic(ierr)
		}
		return ierr
	}
	return nil
}

// AddStrand adds strand to the complex, updating species counters. Fails if
// the strand is already present.
func (c *Complex) AddStrand(s *Strand) error {
	if _, ok := c.strands[s.id]; ok {
		return &InvariantError{Op: "AddStrand", Complex: c.id, Detail: "strand already present"}
	}
	return c.withStateChange("AddStrand", func() {
		c.strands[s.id] = s
		c.strandSpeciesCount[s.species]++
		s.complex = c
		for _, d := range s.domains {
			c.domainSpeciesCount[d.species]++
			d.setComplex(c)
		}
		c.recordHistory("add_strand: " + s.String())
	})
}

// RemoveStrand removes strand from the complex, returning the hybridization
// and stacking pairs that became invalid as a result (the caller is
// responsible for rewiring any global indices keyed on those pairs). Fails
// if the strand is not present.
func (c *Complex) RemoveStrand(s *Strand) (removedHyb []hybPair, removedStack []StackingEdge, err error) {
	if _, ok := c.strands[s.id]; !ok {
		return nil, nil, &InvariantError{Op: "RemoveStrand", Complex: c.id, Detail: "strand not present"}
	}
	err = c.withStateChange("RemoveStrand", func() {
		delete(c.strands, s.id)
		c.strandSpeciesCount[s.species]--
		if c.strandSpeciesCount[s.species] <= 0 {
			delete(c.strandSpeciesCount, s.species)
		}
		if s.complex == c {
			s.complex = nil
		}
		removedSet := make(map[DomainID]bool, len(s.domains))
		for _, d := range s.domains {
			removedSet[d.id] = true
		}
		for _, d := range s.domains {
			c.domainSpeciesCount[d.species]--
			if c.domainSpeciesCount[d.species] <= 0 {
				delete(c.domainSpeciesCount, d.species)
			}
			for p := range c.hybridizedPairs {
				if p.lo == d.id || p.hi == d.id {
					removedHyb = append(removedHyb, p)
				}
			}
			for k, e := range c.stackedPairs {
				if k.from == d.id || k.to == d.id {
					removedStack = append(removedStack, e)
				}
			}
			d.setComplex(nil)
		}
		for _, p := range removedHyb {
			delete(c.hybridizedPairs, p)
		}
		for _, e := range removedStack {
			delete(c.stackedPairs, newStackKey(e))
		}
		c.recordHistory("remove_strand: " + s.String())
	})
	return removedHyb, removedStack, err
}

func complementaryRequired(a, b *Domain) error {
	if a == b {
		return &InvariantError{Detail: "a domain cannot hybridize to itself"}
	}
	return nil
}

// AddHybridizationEdge adds an unordered hybridization edge between a and b.
// Both domains must already reside in this complex.
func (c *Complex) AddHybridizationEdge(a, b *Domain) error {
	if err := complementaryRequired(a, b); err != nil {
		return err
	}
	if a.complex != c || b.complex != c {
		return &InvariantError{Op: "AddHybridizationEdge", Complex: c.id, Detail: "both domains must already reside in this complex"}
	}
	return c.withStateChange("AddHybridizationEdge", func() {
		c.hybridizedPairs[newHybPair(a, b)] = struct{}{}
		c.recordHistory("add_hybridization_edge: " + a.String() + "-" + b.String())
	})
}

// RemoveHybridizationEdge removes the hybridization edge between a and b.
func (c *Complex) RemoveHybridizationEdge(a, b *Domain) error {
	key := newHybPair(a, b)
	if _, ok := c.hybridizedPairs[key]; !ok {
		return &InvariantError{Op: "RemoveHybridizationEdge", Complex: c.id, Detail: "no such hybridization edge"}
	}
	return c.withStateChange("RemoveHybridizationEdge", func() {
		delete(c.hybridizedPairs, key)
		c.recordHistory("remove_hybridization_edge: " + a.String() + "-" + b.String())
	})
}

// AddStackingEdge adds the ordered pair of stacking edges that form one
// stack junction: e1.From's 3' end stacks to e1.To's 5' end, and
// symmetrically for e2.
func (c *Complex) AddStackingEdge(e1, e2 StackingEdge) error {
	return c.withStateChange("AddStackingEdge", func() {
		c.stackedPairs[newStackKey(e1)] = e1
		c.stackedPairs[newStackKey(e2)] = e2
		c.recordHistory("add_stacking_edge")
	})
}

// RemoveStackingEdge removes the ordered pair of stacking edges that form
// one stack junction.
func (c *Complex) RemoveStackingEdge(e1, e2 StackingEdge) error {
	return c.withStateChange("RemoveStackingEdge", func() {
		delete(c.stackedPairs, newStackKey(e1))
		delete(c.stackedPairs, newStackKey(e2))
		c.recordHistory("remove_stacking_edge")
	})
}

// neighbors returns every domain directly interaction-connected to d within
// this complex: backbone neighbors, hybridization partner, and stacking
// partners.
func (c *Complex) neighbors(d *Domain) []*Domain {
	var out []*Domain
	if n := d.Domain5p(); n != nil {
		out = append(out, n)
	}
	if n := d.Domain3p(); n != nil {
		out = append(out, n)
	}
	if d.partner != nil {
		out = append(out, d.partner)
	}
	if d.stack5p != nil {
		out = append(out, d.stack5p.Domain)
	}
	if d.stack3p != nil {
		out = append(out, d.stack3p.Domain)
	}
	return out
}

// IsConnected reports whether every domain of the complex is reachable from
// every other domain under the union of backbone, hybridization, and
// stacking edges.
func (c *Complex) IsConnected() bool {
	domains := c.Domains()
	if len(domains) == 0 {
		return true
	}
	seen := make(map[DomainID]bool, len(domains))
	queue := []*Domain{domains[0]}
	seen[domains[0].id] = true
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		for _, n := range c.neighbors(d) {
			if n.complex == c && !seen[n.id] {
				seen[n.id] = true
				queue = append(queue, n)
			}
		}
	}
	return len(seen) == len(domains)
}

// InteractionHopDistance returns the number of backbone/hybridization/
// stacking hops on the shortest path from a to b within this complex, and
// whether such a path exists. It is the actual graph-proximity measure the
// icid traversal and connectivity checks already use, exposed for callers
// (like the kmc event-selection activity boost) that need "how close are
// these two domains" rather than just "are they connected".
func (c *Complex) InteractionHopDistance(a, b *Domain) (int, bool) {
	if a == b {
		return 0, true
	}
	seen := map[DomainID]bool{a.id: true}
	queue := []*Domain{a}
	dist := map[DomainID]int{a.id: 0}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		for _, n := range c.neighbors(d) {
			if n.complex != c || seen[n.id] {
				continue
			}
			seen[n.id] = true
			dist[n.id] = dist[d.id] + 1
			if n.id == b.id {
				return dist[n.id], true
			}
			queue = append(queue, n)
		}
	}
	return 0, false
}

// connectedComponents partitions this complex's domains into connected
// components under the same relations as IsConnected, returning one
// []*Domain per component.
func (c *Complex) connectedComponents() [][]*Domain {
	domains := c.Domains()
	seen := make(map[DomainID]bool, len(domains))
	var components [][]*Domain
	for _, start := range domains {
		if seen[start.id] {
			continue
		}
		var comp []*Domain
		queue := []*Domain{start}
		seen[start.id] = true
		for len(queue) > 0 {
			d := queue[0]
			queue = queue[1:]
			comp = append(comp, d)
			for _, n := range c.neighbors(d) {
				if n.complex == c && !seen[n.id] {
					seen[n.id] = true
					queue = append(queue, n)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}
