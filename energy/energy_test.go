package energy_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rscholer/domkin/energy"
	"github.com/rscholer/domkin/model"
	"github.com/rscholer/domkin/nnparams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(t *testing.T) (*model.Domain, *model.Domain) {
	t.Helper()
	a, err := model.NewDomain(1, "a", "ACGTACGTACGTACGT")
	require.NoError(t, err)
	b, err := model.NewDomain(2, "A", "ACGTACGTACGTACGT") // reverse complement of a's seq
	require.NoError(t, err)
	return a, b
}

func TestAcceptanceProbabilitySaturates(t *testing.T) {
	assert.InDelta(t, 1.0, energy.AcceptanceProbability(-1e6, 310, 1), 1e-9)
	assert.InDelta(t, 0.0, energy.AcceptanceProbability(1e6, 310, 1), 1e-9)
}

func TestAcceptanceProbabilityAtMeltingPoint(t *testing.T) {
	assert.InDelta(t, 0.5, energy.AcceptanceProbability(0, 310, 1), 1e-9)
}

func TestHybridizationEnergyNoCorrectionForIsolatedDomains(t *testing.T) {
	m := energy.NewModel(nnparams.NewSantaLucia1998())
	a, b := pair(t)

	result, err := m.Hybridization(a, b, 310)
	require.NoError(t, err)

	// two isolated domains (no backbone neighbors, no existing
	// hybridizations, not in the same complex): no corrections apply.
	assert.Equal(t, 0.0, result.DeltaHCorr)
	assert.Equal(t, 0.0, result.DeltaSCorr)
	assert.NotZero(t, result.DeltaG)
}

func TestHybridizationEnergyIsMemoized(t *testing.T) {
	m := energy.NewModel(nnparams.NewSantaLucia1998())
	a, b := pair(t)

	r1, err := m.Hybridization(a, b, 300)
	require.NoError(t, err)
	r2, err := m.Hybridization(a, b, 300)
	require.NoError(t, err)
	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Errorf("memoized result changed between calls (-first +second):\n%s", diff)
	}
}
