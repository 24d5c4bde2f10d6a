package model

import (
	"fmt"

	"github.com/rscholer/domkin/checks"
)

// Domain is a named, oriented segment of a strand: a contiguous nucleotide
// subsequence treated as an atomic binding unit.
type Domain struct {
	id       DomainID
	species  string
	sequence string
	strand   *Strand
	pos      int // index into strand.Domains

	// partner is the domain currently hybridized to this one, or nil.
	partner *Domain

	// stack5p/stack3p name the domain end currently stacked against this
	// domain's 5' and 3' ends, respectively.
	stack5p *DomainEnd
	stack3p *DomainEnd

	complex *Complex
}

// NewDomain validates seq as DNA or RNA (via the same alphabet checks the
// teacher's checks package uses for sequence validation) and returns an
// unattached Domain. New calls this while building strands; it is
// exported so that collaborators constructing strand definitions can
// validate eagerly.
func NewDomain(id DomainID, species, seq string) (*Domain, error) {
	if !checks.IsDNA(seq) && !checks.IsRNA(seq) {
		return nil, fmt.Errorf("model: domain %s sequence %q is neither valid DNA nor valid RNA", species, seq)
	}
	return &Domain{id: id, species: species, sequence: seq}, nil
}

func (d *Domain) ID() DomainID        { return d.id }
func (d *Domain) Species() string     { return d.species }
func (d *Domain) Sequence() string    { return d.sequence }
func (d *Domain) Strand() *Strand     { return d.strand }
func (d *Domain) Complex() *Complex   { return d.complex }
func (d *Domain) Partner() *Domain    { return d.partner }
func (d *Domain) IsHybridized() bool  { return d.partner != nil }
func (d *Domain) Stack5p() *DomainEnd { return d.stack5p }
func (d *Domain) Stack3p() *DomainEnd { return d.stack3p }

// GCContent reports the fraction of this domain's sequence that is G or C,
// adapted from the teacher's checks.GcContent. It plays no role in the
// energy model (which only consults an nnparams.Table) and exists purely
// for diagnostic logging of strand composition.
func (d *Domain) GCContent() float64 {
	return checks.GcContent(d.sequence)
}

// Domain5p returns the backbone neighbor on the 5' side of this domain
// within its strand, or nil if this domain is the strand's 5'-most domain.
func (d *Domain) Domain5p() *Domain {
	if d.strand == nil || d.pos == 0 {
		return nil
	}
	return d.strand.domains[d.pos-1]
}

// Domain3p returns the backbone neighbor on the 3' side of this domain
// within its strand, or nil if this domain is the strand's 3'-most domain.
func (d *Domain) Domain3p() *Domain {
	if d.strand == nil || d.pos == len(d.strand.domains)-1 {
		return nil
	}
	return d.strand.domains[d.pos+1]
}

// Domain5pIsHybridized reports whether the 5' backbone neighbor exists and
// is currently hybridized.
func (d *Domain) Domain5pIsHybridized() bool {
	n := d.Domain5p()
	return n != nil && n.IsHybridized()
}

// Domain3pIsHybridized reports whether the 3' backbone neighbor exists and
// is currently hybridized.
func (d *Domain) Domain3pIsHybridized() bool {
	n := d.Domain3p()
	return n != nil && n.IsHybridized()
}

// End5p and End3p name this domain's two ends, for use in stacking edges.
func (d *Domain) End5p() DomainEnd { return DomainEnd{Domain: d, End: End5p} }
func (d *Domain) End3p() DomainEnd { return DomainEnd{Domain: d, End: End3p} }

func (d *Domain) String() string {
	return fmt.Sprintf("%s#%d", d.species, d.id)
}

// setComplex is an internal bookkeeping setter used by Complex mutators; it
// does not itself touch strand/species counters or caches.
func (d *Domain) setComplex(c *Complex) {
	d.complex = c
}

func setDomainEnd(d *Domain, end End, other *DomainEnd) {
	if end == End5p {
		d.stack5p = other
	} else {
		d.stack3p = other
	}
}

// applyStackingEdge records e on its From domain's named end, and the
// reciprocal relation on its To domain's named end.
func applyStackingEdge(e StackingEdge) {
	setDomainEnd(e.From.Domain, e.From.End, &DomainEnd{Domain: e.To.Domain, End: e.To.End})
	setDomainEnd(e.To.Domain, e.To.End, &DomainEnd{Domain: e.From.Domain, End: e.From.End})
}

// clearStackingEdge removes the stacking relation recorded by a prior
// applyStackingEdge call.
func clearStackingEdge(e StackingEdge) {
	setDomainEnd(e.From.Domain, e.From.End, nil)
	setDomainEnd(e.To.Domain, e.To.End, nil)
}
