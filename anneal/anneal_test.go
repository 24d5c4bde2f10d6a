package anneal_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rscholer/domkin/anneal"
	"github.com/rscholer/domkin/energy"
	"github.com/rscholer/domkin/kmc"
	"github.com/rscholer/domkin/model"
	"github.com/rscholer/domkin/nnparams"
)

func TestScheduleValidateRejectsZeroDeltaT(t *testing.T) {
	s := anneal.Schedule{TStart: 360, TFinish: 300, DeltaT: 0, NPerT: 10}
	assert.Error(t, s.Validate())
}

func TestScheduleValidateRejectsMismatchedSign(t *testing.T) {
	s := anneal.Schedule{TStart: 360, TFinish: 300, DeltaT: 2, NPerT: 10}
	assert.Error(t, s.Validate())
}

func TestScheduleValidateAcceptsDescendingSweep(t *testing.T) {
	s := anneal.Schedule{TStart: 360, TFinish: 300, DeltaT: -2, NPerT: 10}
	assert.NoError(t, s.Validate())
}

func TestRunSweepsToCompletion(t *testing.T) {
	defs := []model.StrandDef{
		{Species: "s1", Domains: []model.DomainDef{{Species: "a", Sequence: "ACGTACGTACGTACGT"}}},
		{Species: "s2", Domains: []model.DomainDef{{Species: "A", Sequence: "ACGTACGTACGTACGT"}}},
	}
	tube, err := model.New(1e-15, defs, nil)
	require.NoError(t, err)

	sim := kmc.NewSimulator(tube, energy.NewModel(nnparams.NewSantaLucia1998()), rand.New(rand.NewSource(42)))
	sim.RecordStats = false

	sched := anneal.Schedule{TStart: 320, TFinish: 310, DeltaT: -5, NPerT: 50}
	require.NoError(t, anneal.Run(context.Background(), sim, sched))
	assert.NoError(t, tube.CheckInvariants())
}
