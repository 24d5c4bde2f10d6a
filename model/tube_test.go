package model_test

import (
	"testing"

	"github.com/rscholer/domkin/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsSingletonComplexes(t *testing.T) {
	defs := []model.StrandDef{
		{Species: "s1", Domains: []model.DomainDef{{Species: "a", Sequence: "ACGT"}}},
		{Species: "s2", Domains: []model.DomainDef{{Species: "b", Sequence: "ACGT"}}},
	}
	tube, err := model.New(1e-15, defs, model.ComplementMap{"a": "A", "b": "B"})
	require.NoError(t, err)

	assert.Len(t, tube.Complexes(), 2)
	assert.Equal(t, 2, tube.NStrands())
	assert.Equal(t, 2, tube.NDomains())
}

func TestDefaultComplementIsCaseSwap(t *testing.T) {
	m := model.DefaultComplement([]string{"a", "B"})
	assert.Equal(t, "A", m["a"])
	assert.Equal(t, "b", m["B"])
}

func TestConcentration(t *testing.T) {
	tube := &model.Tube{Volume: 1 / model.NAvogadro}
	assert.InDelta(t, 1.0, tube.Concentration(), 1e-9)
}

func TestCheckInvariantsPassesOnFreshTube(t *testing.T) {
	defs := []model.StrandDef{
		{Species: "s1", Domains: []model.DomainDef{{Species: "a", Sequence: "ACGT"}}},
	}
	tube, err := model.New(1e-15, defs, model.ComplementMap{"a": "A"})
	require.NoError(t, err)
	assert.NoError(t, tube.CheckInvariants())
}

func TestCheckInvariantsCatchesCounterMismatch(t *testing.T) {
	defs := []model.StrandDef{
		{Species: "s1", Domains: []model.DomainDef{{Species: "a", Sequence: "ACGT"}}},
		{Species: "s2", Domains: []model.DomainDef{{Species: "A", Sequence: "ACGT"}}},
	}
	tube, err := model.New(1e-15, defs, nil)
	require.NoError(t, err)
	a, b := tube.Strands()[0].Domains()[0], tube.Strands()[1].Domains()[0]
	require.NoError(t, tube.Hybridize(a, b))

	tube.NDomainsHybridized = 0 // corrupt the counter directly
	assert.Error(t, tube.CheckInvariants())
}

func TestLargerSplitKeepsOriginalComplexID(t *testing.T) {
	// Three strands chained a-b-c via hybridization; removing the a-b bond
	// should leave {b,c} (the larger remaining component) holding the
	// original complex identifier.
	defs := []model.StrandDef{
		{Species: "s1", Domains: []model.DomainDef{{Species: "a", Sequence: "ACGT"}}},
		{Species: "s2", Domains: []model.DomainDef{
			{Species: "A", Sequence: "ACGT"},
			{Species: "c", Sequence: "TTTT"},
		}},
		{Species: "s3", Domains: []model.DomainDef{{Species: "C", Sequence: "TTTT"}}},
	}
	tube, err := model.New(1e-15, defs, nil)
	require.NoError(t, err)
	a := tube.Strands()[0].Domains()[0]
	bMiddle := tube.Strands()[1].Domains()
	cEnd := tube.Strands()[2].Domains()[0]

	require.NoError(t, tube.Hybridize(a, bMiddle[0]))
	require.NoError(t, tube.Hybridize(bMiddle[1], cEnd))
	originalID := a.Complex().ID()

	require.NoError(t, tube.Dehybridize(a, bMiddle[0]))

	// the two-strand component {b,c} is larger, so it keeps originalID
	assert.Equal(t, originalID, bMiddle[0].Complex().ID())
	assert.NotEqual(t, originalID, a.Complex().ID())
}

func TestMergePreservesAbsorbedComplexInternalPairs(t *testing.T) {
	// Strand order is chosen so the two-strand duplex (s1-s2, already
	// carrying an internal hybridization pair) ends up as the
	// higher-ComplexID, and therefore absorbed, side when it is later
	// merged into x's complex.
	defs := []model.StrandDef{
		{Species: "x", Domains: []model.DomainDef{{Species: "C", Sequence: "TTTT"}}},
		{Species: "s1", Domains: []model.DomainDef{
			{Species: "a", Sequence: "ACGT"},
			{Species: "c", Sequence: "TTTT"},
		}},
		{Species: "s2", Domains: []model.DomainDef{{Species: "A", Sequence: "ACGT"}}},
	}
	tube, err := model.New(1e-15, defs, nil)
	require.NoError(t, err)

	xDom := tube.Strands()[0].Domains()[0]
	s1Doms := tube.Strands()[1].Domains()
	s2Dom := tube.Strands()[2].Domains()[0]

	// Form the duplex first: its complex survives as the lower id (2 vs 3)
	// among {s1, s2}, and carries the internal a-A pair.
	require.NoError(t, tube.Hybridize(s1Doms[0], s2Dom))
	duplexID := s1Doms[0].Complex().ID()

	// Merge x's complex (id 1) into the duplex's complex (id 2): x survives
	// as the lower id, so the duplex complex is the absorbed side.
	require.NoError(t, tube.Hybridize(xDom, s1Doms[1]))
	merged := xDom.Complex()
	assert.NotEqual(t, duplexID, merged.ID())

	assert.Len(t, merged.Strands(), 3)
	assert.Equal(t, 4, tube.NDomainsHybridized)
	require.NoError(t, tube.CheckInvariants())

	// The a-A pair formed before the merge must have survived it: a
	// subsequent dehybridize of that pair must succeed, not hit "no such
	// hybridization edge".
	require.NoError(t, tube.Dehybridize(s1Doms[0], s2Dom))
}
