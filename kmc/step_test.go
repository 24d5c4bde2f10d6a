package kmc_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rscholer/domkin/energy"
	"github.com/rscholer/domkin/kmc"
	"github.com/rscholer/domkin/model"
	"github.com/rscholer/domkin/nnparams"
)

func buildTube(t *testing.T) *model.Tube {
	t.Helper()
	defs := []model.StrandDef{
		{Species: "s1", Domains: []model.DomainDef{{Species: "a", Sequence: "ACGTACGTACGTACGT"}}},
		{Species: "s2", Domains: []model.DomainDef{{Species: "A", Sequence: "ACGTACGTACGTACGT"}}},
	}
	tube, err := model.New(1e-15, defs, nil)
	require.NoError(t, err)
	return tube
}

func TestSelectEventWithNoComplementIsNoEncounter(t *testing.T) {
	defs := []model.StrandDef{
		{Species: "lonely", Domains: []model.DomainDef{{Species: "z", Sequence: "ACGT"}}},
	}
	tube, err := model.New(1e-15, defs, model.ComplementMap{"z": "Z"})
	require.NoError(t, err)

	evt, err := kmc.SelectEvent(rand.New(rand.NewSource(1)), tube, 1)
	require.NoError(t, err)
	assert.Nil(t, evt.D2)
}

func TestSelectEventReturnsExistingPartner(t *testing.T) {
	tube := buildTube(t)
	a, b := tube.Strands()[0].Domains()[0], tube.Strands()[1].Domains()[0]
	require.NoError(t, tube.Hybridize(a, b))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		evt, err := kmc.SelectEvent(rng, tube, 1)
		require.NoError(t, err)
		if evt.D1 == a {
			assert.True(t, evt.IsHybridize)
			assert.Equal(t, b, evt.D2)
			return
		}
	}
	t.Fatal("never drew the hybridized domain in 20 tries")
}

func TestDehybridizeThenRehybridizeRestoresFingerprint(t *testing.T) {
	tube := buildTube(t)
	a, b := tube.Strands()[0].Domains()[0], tube.Strands()[1].Domains()[0]
	require.NoError(t, tube.Hybridize(a, b))

	fp0, err := a.Complex().StateFingerprint()
	require.NoError(t, err)

	require.NoError(t, tube.Dehybridize(a, b))
	fp1, err := a.Complex().StateFingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fp0, fp1)

	require.NoError(t, tube.Hybridize(a, b))
	fp2, err := a.Complex().StateFingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp0, fp2)
}

func TestSimulateNoComplementProducesNoChanges(t *testing.T) {
	defs := []model.StrandDef{
		{Species: "lonely", Domains: []model.DomainDef{{Species: "z", Sequence: "ACGTACGTACGTACGT"}}},
	}
	tube, err := model.New(1e-15, defs, model.ComplementMap{"z": "Z"})
	require.NoError(t, err)

	sim := kmc.NewSimulator(tube, energy.NewModel(nnparams.NewSantaLucia1998()), rand.New(rand.NewSource(7)))
	require.NoError(t, sim.Simulate(context.Background(), 310, 200))

	assert.Equal(t, 0, tube.NChanges)
}
