package model

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NAvogadro is Avogadro's constant, per mole.
const NAvogadro = 6.022e23

// ComplementMap maps a domain species to the species it is declared to
// hybridize with.
type ComplementMap map[string]string

// DefaultComplement builds the default complementarity map: each species'
// complement is its case-swap (as the reference simulator does when no
// domain_pairs map is supplied).
func DefaultComplement(species []string) ComplementMap {
	m := make(ComplementMap, len(species))
	for _, sp := range species {
		if sp == strings.ToUpper(sp) {
			m[sp] = strings.ToLower(sp)
		} else {
			m[sp] = strings.ToUpper(sp)
		}
	}
	return m
}

// Tube is the top-level container: a volume and a population of strands,
// grouped into complexes (a strand with no hybridizations is a singleton
// complex).
type Tube struct {
	Volume float64 // liters

	strands []*Strand
	domains []*Domain

	domainsByID   map[DomainID]*Domain
	domainsByName map[string][]*Domain

	complexes     map[ComplexID]*Complex
	nextComplexID ComplexID
	uuidCounter   uint64

	complement ComplementMap

	NDomainsHybridized int
	NStrandsHybridized int
	NSteps             int
	NChanges           int
}

// Concentration returns c = 1/(N_A * V), the per-molecule molar
// concentration implied by the tube's volume.
func (t *Tube) Concentration() float64 {
	return 1 / (NAvogadro * t.Volume)
}

func (t *Tube) nextUUID() uint64 {
	t.uuidCounter++
	return t.uuidCounter
}

func (t *Tube) allocComplexID() ComplexID {
	id := t.nextComplexID
	t.nextComplexID++
	return id
}

func (t *Tube) domainByID(id DomainID) *Domain { return t.domainsByID[id] }

// New builds a Tube from a volume and a set of strand definitions. If
// complement is nil, DefaultComplement is used. It is an error for any
// species to be declared complementary to itself (self-complementary
// domains are disallowed).
func New(volume float64, defs []StrandDef, complement ComplementMap) (*Tube, error) {
	t := &Tube{
		Volume:        volume,
		domainsByID:   make(map[DomainID]*Domain),
		domainsByName: make(map[string][]*Domain),
		complexes:     make(map[ComplexID]*Complex),
		nextComplexID: 1,
	}

	var domainID DomainID = 1
	var strandID StrandID = 1
	speciesSeen := map[string]bool{}

	for _, sdef := range defs {
		strand := &Strand{id: strandID, species: sdef.Species}
		strandID++
		strand.domains = make([]*Domain, 0, len(sdef.Domains))
		for i, ddef := range sdef.Domains {
			d, err := NewDomain(domainID, ddef.Species, ddef.Sequence)
			if err != nil {
				return nil, err
			}
			d.strand = strand
			d.pos = i
			domainID++
			strand.domains = append(strand.domains, d)
			t.domains = append(t.domains, d)
			t.domainsByID[d.id] = d
			t.domainsByName[d.species] = append(t.domainsByName[d.species], d)
			speciesSeen[d.species] = true
		}
		t.strands = append(t.strands, strand)
	}

	if complement == nil {
		species := make([]string, 0, len(speciesSeen))
		for sp := range speciesSeen {
			species = append(species, sp)
		}
		sort.Strings(species)
		complement = DefaultComplement(species)
	}
	for k, v := range complement {
		if k == v {
			return nil, &ConfigError{Detail: fmt.Sprintf("domain species %q is declared complementary to itself", k)}
		}
	}
	t.complement = complement

	// Every strand starts out as its own singleton complex.
	for _, strand := range t.strands {
		c := newComplex(t.allocComplexID(), t)
		if err := c.AddStrand(strand); err != nil {
			return nil, err
		}
		t.complexes[c.id] = c
	}

	return t, nil
}

func (t *Tube) Strands() []*Strand { return t.strands }
func (t *Tube) Domains() []*Domain { return t.domains }

func (t *Tube) NDomains() int { return len(t.domains) }
func (t *Tube) NStrands() int { return len(t.strands) }

// Complexes returns every complex currently present in the tube.
func (t *Tube) Complexes() []*Complex {
	out := maps.Values(t.complexes)
	slices.SortFunc(out, func(a, b *Complex) bool { return a.id < b.id })
	return out
}

// Complement returns the species declared complementary to sp, and whether
// one was found.
func (t *Tube) Complement(sp string) (string, bool) {
	c, ok := t.complement[sp]
	return c, ok
}

// DomainsByName returns every domain of the given species.
func (t *Tube) DomainsByName(species string) []*Domain {
	return t.domainsByName[species]
}

// Hybridize forms a hybridization bond between a and b: sets their
// reciprocal Partner fields, merges their complexes if they differ (or
// keeps both in the same complex if they already match), adds the
// hybridization edge to the resulting complex, and increments the global
// hybridized-domain counter by 2. a and b must both be currently
// unhybridized and of declared-complementary species.
func (t *Tube) Hybridize(a, b *Domain) error {
	if a == b {
		return &InvariantError{Detail: "cannot hybridize a domain to itself"}
	}
	if a.IsHybridized() || b.IsHybridized() {
		return &InvariantError{Detail: "both domains must be unhybridized to form a new bond"}
	}
	comp, ok := t.complement[a.species]
	if !ok || comp != b.species {
		return &InvariantError{Detail: fmt.Sprintf("%s and %s are not declared complementary", a.species, b.species)}
	}

	target, err := t.mergeComplexes(a.complex, b.complex)
	if err != nil {
		return err
	}
	if err := target.AddHybridizationEdge(a, b); err != nil {
		return err
	}
	a.partner = b
	b.partner = a
	t.NDomainsHybridized += 2
	return nil
}

// mergeComplexes merges cb into ca (or vice versa, keeping the lower
// ComplexID as the survivor) and returns the surviving complex. If ca ==
// cb, it is returned unchanged.
func (t *Tube) mergeComplexes(ca, cb *Complex) (*Complex, error) {
	if ca == cb {
		return ca, nil
	}
	survivor, absorbed := ca, cb
	if cb.id < ca.id {
		survivor, absorbed = cb, ca
	}
	// Snapshot absorbed's internal pairs before RemoveStrand starts deleting
	// them: RemoveStrand strips every pair touching the strand it removes,
	// so by the end of the loop below absorbed.hybridizedPairs/stackedPairs
	// would otherwise be empty and those pairs would never reach survivor.
	hybPairs := make(map[hybPair]struct{}, len(absorbed.hybridizedPairs))
	for p := range absorbed.hybridizedPairs {
		hybPairs[p] = struct{}{}
	}
	stackPairs := make(map[stackKey]StackingEdge, len(absorbed.stackedPairs))
	for k, e := range absorbed.stackedPairs {
		stackPairs[k] = e
	}
	for _, s := range absorbed.Strands() {
		if _, _, err := absorbed.RemoveStrand(s); err != nil {
			return nil, err
		}
		if err := survivor.AddStrand(s); err != nil {
			return nil, err
		}
	}
	for p := range hybPairs {
		survivor.hybridizedPairs[p] = struct{}{}
	}
	for k, e := range stackPairs {
		survivor.stackedPairs[k] = e
	}
	survivor.invalidateFingerprints()
	delete(t.complexes, absorbed.id)
	return survivor, nil
}

// Dehybridize removes the hybridization bond between a and b. If removing
// the bond disconnects the interaction graph, the detached component is
// moved into a newly allocated complex.
func (t *Tube) Dehybridize(a, b *Domain) error {
	if a.partner != b || b.partner != a {
		return &InvariantError{Detail: "a and b are not hybridized to each other"}
	}
	complex := a.complex
	if err := complex.RemoveHybridizationEdge(a, b); err != nil {
		return err
	}
	a.partner = nil
	b.partner = nil
	t.NDomainsHybridized -= 2

	if !complex.IsConnected() {
		if err := t.splitComplex(complex); err != nil {
			return err
		}
	}
	return nil
}

// AddStackingJunction adds a pair of stacking edges forming one stack
// junction, merging complexes as needed.
func (t *Tube) AddStackingJunction(e1, e2 StackingEdge) error {
	target, err := t.mergeComplexes(e1.From.Domain.complex, e1.To.Domain.complex)
	if err != nil {
		return err
	}
	if err := target.AddStackingEdge(e1, e2); err != nil {
		return err
	}
	applyStackingEdge(e1)
	applyStackingEdge(e2)
	return nil
}

// RemoveStackingJunction removes a pair of stacking edges forming one stack
// junction, splitting the complex if that disconnects it.
func (t *Tube) RemoveStackingJunction(e1, e2 StackingEdge) error {
	complex := e1.From.Domain.complex
	if err := complex.RemoveStackingEdge(e1, e2); err != nil {
		return err
	}
	clearStackingEdge(e1)
	clearStackingEdge(e2)

	if !complex.IsConnected() {
		if err := t.splitComplex(complex); err != nil {
			return err
		}
	}
	return nil
}

func minDomainID(ds []*Domain) DomainID {
	min := ds[0].id
	for _, d := range ds[1:] {
		if d.id < min {
			min = d.id
		}
	}
	return min
}

// splitComplex partitions old into its connected components. The largest
// component (ties broken by lowest domain id) keeps old's identifier and
// object identity; every other component is allocated a fresh Complex.
func (t *Tube) splitComplex(old *Complex) error {
	comps := old.connectedComponents()
	if len(comps) <= 1 {
		return nil
	}
	sort.Slice(comps, func(i, j int) bool {
		if len(comps[i]) != len(comps[j]) {
			return len(comps[i]) > len(comps[j])
		}
		return minDomainID(comps[i]) < minDomainID(comps[j])
	})

	domainComponent := make(map[DomainID]int, len(old.Domains()))
	for i, comp := range comps {
		for _, d := range comp {
			domainComponent[d.id] = i
		}
	}

	targets := make([]*Complex, len(comps))
	targets[0] = old
	for i := 1; i < len(comps); i++ {
		targets[i] = newComplex(t.allocComplexID(), t)
	}

	oldStrands := old.Strands()
	oldHyb := old.hybridizedPairs
	oldStack := old.stackedPairs

	old.strands = make(map[StrandID]*Strand)
	old.strandSpeciesCount = make(map[string]int)
	old.domainSpeciesCount = make(map[string]int)
	old.hybridizedPairs = make(map[hybPair]struct{})
	old.stackedPairs = make(map[stackKey]StackingEdge)
	old.invalidateFingerprints()

	for _, s := range oldStrands {
		idx := domainComponent[s.domains[0].id]
		if err := targets[idx].AddStrand(s); err != nil {
			return err
		}
	}
	for p := range oldHyb {
		idx := domainComponent[p.lo]
		targets[idx].hybridizedPairs[p] = struct{}{}
	}
	for k, e := range oldStack {
		idx := domainComponent[k.from]
		targets[idx].stackedPairs[k] = e
	}
	for i, c := range targets {
		c.invalidateFingerprints()
		if i > 0 {
			t.complexes[c.id] = c
		}
	}
	return nil
}

// CheckInvariants verifies the universally quantified invariants from the
// spec: reciprocal, complementary partners, and a domain-hybridized counter
// consistent with the actual partner relation. It is meant to be called at
// temperature boundaries by the annealer.
func (t *Tube) CheckInvariants() error {
	pairCount := 0
	for _, d := range t.domains {
		if d.partner == nil {
			continue
		}
		if d.partner.partner != d {
			return &InvariantError{Detail: fmt.Sprintf("domain %s partner relation is not reciprocal", d)}
		}
		comp, ok := t.complement[d.species]
		if !ok || comp != d.partner.species {
			return &InvariantError{Detail: fmt.Sprintf("domain %s is hybridized to non-complementary %s", d, d.partner)}
		}
		if d.id < d.partner.id {
			pairCount++
		}
	}
	if 2*pairCount != t.NDomainsHybridized {
		return &InvariantError{Detail: fmt.Sprintf("NDomainsHybridized=%d does not match actual hybridized pair count %d", t.NDomainsHybridized, pairCount)}
	}
	for _, c := range t.complexes {
		if !c.IsConnected() {
			return &InvariantError{Complex: c.id, Detail: "complex is not connected"}
		}
	}
	return nil
}
