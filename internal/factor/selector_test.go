package factor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIdentityA = "a@x.com"
	testIdentityB = "b@x.com"
	testIdentityC = "c@x.com"

	testTolerance = 1e-9
)

func TestFromKnowledge_ThresholdScenario(t *testing.T) {
	t.Parallel()

	knowledge := map[string]float64{
		testIdentityA: 60,
		testIdentityB: 25,
		testIdentityC: 15,
	}

	entries := FromKnowledge(100, knowledge, DefaultCriticalLoss)

	require.Len(t, entries, 1)
	assert.Equal(t, testIdentityA, entries[0].Identity)
	assert.InDelta(t, 60.0, entries[0].Value, testTolerance)
	assert.InDelta(t, 100.0, entries[0].Total, testTolerance)
}

func TestFromKnowledge_StopsOnExactThreshold(t *testing.T) {
	t.Parallel()

	knowledge := map[string]float64{
		testIdentityA: 50,
		testIdentityB: 30,
		testIdentityC: 20,
	}

	// Removing A leaves exactly half, which the inclusive
	// comparison counts as crossed.
	entries := FromKnowledge(100, knowledge, DefaultCriticalLoss)

	require.Len(t, entries, 1)
	assert.Equal(t, testIdentityA, entries[0].Identity)
}

func TestFromAuthorship_ExactThresholdKeepsWalking(t *testing.T) {
	t.Parallel()

	authored := map[string]int{
		testIdentityA: 50,
		testIdentityB: 30,
		testIdentityC: 20,
	}

	// Exactly half remaining is not strictly below, so the strict
	// comparison takes one more contributor.
	entries := FromAuthorship(100, authored, DefaultCriticalLoss)

	require.Len(t, entries, 2)
	assert.Equal(t, testIdentityA, entries[0].Identity)
	assert.Equal(t, testIdentityB, entries[1].Identity)
}

func TestFromAuthorship_ThresholdScenario(t *testing.T) {
	t.Parallel()

	authored := map[string]int{
		testIdentityA: 60,
		testIdentityB: 25,
		testIdentityC: 15,
	}

	entries := FromAuthorship(100, authored, DefaultCriticalLoss)

	require.Len(t, entries, 1)
	assert.Equal(t, testIdentityA, entries[0].Identity)
}

func TestFromKnowledge_ExhaustionReturnsEverything(t *testing.T) {
	t.Parallel()

	knowledge := map[string]float64{
		testIdentityA: 40,
		testIdentityB: 35,
		testIdentityC: 25,
	}

	// An unreachable threshold exhausts the tally.
	entries := FromKnowledge(100, knowledge, -1)

	require.Len(t, entries, 3)
	assert.Equal(t, testIdentityA, entries[0].Identity)
	assert.Equal(t, testIdentityB, entries[1].Identity)
	assert.Equal(t, testIdentityC, entries[2].Identity)
}

func TestFromKnowledge_HighCriticalLoss(t *testing.T) {
	t.Parallel()

	knowledge := map[string]float64{
		testIdentityA: 10,
		testIdentityB: 10,
		testIdentityC: 10,
	}

	// Removing one of three leaves 2/3, already at or below 0.9.
	entries := FromKnowledge(30, knowledge, 0.9)

	require.Len(t, entries, 1)
}

func TestFromAuthorship_HighCriticalLoss(t *testing.T) {
	t.Parallel()

	authored := map[string]int{
		testIdentityA: 10,
		testIdentityB: 10,
		testIdentityC: 10,
	}

	entries := FromAuthorship(30, authored, 0.9)

	require.Len(t, entries, 1)
}

func TestTieOrderIsDeterministic(t *testing.T) {
	t.Parallel()

	knowledge := map[string]float64{
		testIdentityC: 10,
		testIdentityA: 10,
		testIdentityB: 10,
	}

	entries := FromKnowledge(30, knowledge, -1)

	require.Len(t, entries, 3)
	assert.Equal(t, testIdentityA, entries[0].Identity)
	assert.Equal(t, testIdentityB, entries[1].Identity)
	assert.Equal(t, testIdentityC, entries[2].Identity)
}

func TestNonPositiveTotal(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromKnowledge(0, map[string]float64{testIdentityA: 5}, DefaultCriticalLoss))
	assert.Nil(t, FromAuthorship(0, map[string]int{testIdentityA: 5}, DefaultCriticalLoss))
}
