package model_test

import (
	"testing"

	"github.com/rscholer/domkin/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoCopyComplex builds a single complex containing two copies of strand
// species S, each carrying an A/a domain pair, all hybridized together so
// the icid machinery has to disambiguate the two A-domain instances.
func twoCopyComplex(t *testing.T) (*model.Tube, *model.Domain, *model.Domain) {
	t.Helper()
	defs := []model.StrandDef{
		{Species: "S", Domains: []model.DomainDef{
			{Species: "A", Sequence: "ACGTACGTACGTACGT"},
			{Species: "a", Sequence: "ACGTACGTACGTACGT"},
		}},
		{Species: "S", Domains: []model.DomainDef{
			{Species: "A", Sequence: "ACGTACGTACGTACGT"},
			{Species: "a", Sequence: "ACGTACGTACGTACGT"},
		}},
	}
	tube, err := model.New(1e-15, defs, nil)
	require.NoError(t, err)
	strands := tube.Strands()
	a0, b0 := strands[0].Domains()[0], strands[0].Domains()[1]
	a1, b1 := strands[1].Domains()[0], strands[1].Domains()[1]
	// cross-hybridize the two copies: A of each S pairs with a of the other
	require.NoError(t, tube.Hybridize(a0, b1))
	require.NoError(t, tube.Hybridize(a1, b0))
	return tube, a0, b1
}

func TestFingerprintStableUnderIcidExpansion(t *testing.T) {
	tube, a0, b0 := twoCopyComplex(t)
	complex := a0.Complex()

	fp1, err := complex.StateFingerprint()
	require.NoError(t, err)

	require.NoError(t, tube.Dehybridize(a0, b0))
	require.NoError(t, tube.Hybridize(a0, b0))

	fp2, err := complex.StateFingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestStrandsFingerprintReflectsComplexMembership(t *testing.T) {
	defs := []model.StrandDef{
		{Species: "s1", Domains: []model.DomainDef{{Species: "a", Sequence: "ACGTACGT"}}},
		{Species: "s2", Domains: []model.DomainDef{{Species: "A", Sequence: "ACGTACGT"}}},
	}
	tube, err := model.New(1e-15, defs, nil)
	require.NoError(t, err)
	a, b := tube.Strands()[0].Domains()[0], tube.Strands()[1].Domains()[0]

	before := a.Complex().StrandsFingerprint()
	require.NoError(t, tube.Hybridize(a, b))
	after := a.Complex().StrandsFingerprint()

	// strand multiset ({s1,s2}) is the same before and after merge, but the
	// fingerprint is per-complex, so the two singleton fingerprints (each
	// with one strand) differ from the merged two-strand fingerprint.
	assert.NotEqual(t, before, after)
}
