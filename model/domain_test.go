package model_test

import (
	"testing"

	"github.com/rscholer/domkin/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainRejectsInvalidSequence(t *testing.T) {
	_, err := model.NewDomain(1, "a", "ACGTXYZ")
	assert.Error(t, err)
}

func TestNewDomainAcceptsDNA(t *testing.T) {
	d, err := model.NewDomain(1, "a", "ACGTACGT")
	require.NoError(t, err)
	assert.Equal(t, "a", d.Species())
	assert.False(t, d.IsHybridized())
	assert.Nil(t, d.Partner())
}

func twoDomainStrand(t *testing.T) *model.Tube {
	t.Helper()
	defs := []model.StrandDef{
		{Species: "top", Domains: []model.DomainDef{
			{Species: "a", Sequence: "ACGTACGTACGTACGT"},
			{Species: "b", Sequence: "TTTTGGGGCCCCAAAA"},
		}},
	}
	tube, err := model.New(1e-15, defs, nil)
	require.NoError(t, err)
	return tube
}

func TestDomainBackboneNeighbors(t *testing.T) {
	tube := twoDomainStrand(t)
	ds := tube.Strands()[0].Domains()
	require.Len(t, ds, 2)
	a, b := ds[0], ds[1]

	assert.Nil(t, a.Domain5p())
	assert.Equal(t, b, a.Domain3p())
	assert.Equal(t, a, b.Domain5p())
	assert.Nil(t, b.Domain3p())
}

func TestGCContent(t *testing.T) {
	d, err := model.NewDomain(1, "a", "GGCC")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d.GCContent(), 1e-9)
}
