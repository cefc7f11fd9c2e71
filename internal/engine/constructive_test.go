package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructSingleOptionAlwaysSelected(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "b", Section: "B", BlockSize: 1, Options: []PlacementOption{opt(2, 0, "R1", "F2")}},
		{ID: "c", Section: "C", BlockSize: 2, Options: []PlacementOption{opt(3, 0, "L1", "F3")}},
	}, testRooms(), testFaculty())

	for _, randomized := range []bool{false, true} {
		for seed := int64(1); seed <= 5; seed++ {
			genes := Construct(p, rand.New(rand.NewSource(seed)), ConstructOptions{Randomized: randomized, RCLAlpha: 0.3})
			assert.Equal(t, []int{0, 0, 0}, genes, "randomized=%v seed=%d", randomized, seed)
		}
	}
}

func TestConstructProducesTotalAssignment(t *testing.T) {
	p, err := CompileRequests(testSnapshot(), 3, DefaultWeights())
	require.NoError(t, err)

	genes := Construct(p, rand.New(rand.NewSource(42)), ConstructOptions{Randomized: true, RCLAlpha: 0.2})

	require.Len(t, genes, len(p.Requests))
	for i, g := range genes {
		assert.GreaterOrEqual(t, g, 0, "request %d left unassigned", i)
		assert.Less(t, g, len(p.Requests[i].Options))
	}
}

func TestConstructKeepsLockedGenes(t *testing.T) {
	p, err := CompileRequests(testSnapshot(), 3, DefaultWeights())
	require.NoError(t, err)
	// Pin one theory block to its last option.
	var pinned int
	for i, req := range p.Requests {
		if !req.IsLab {
			pinned = i
			p.FixedGenes[i] = len(req.Options) - 1
			break
		}
	}

	genes := Construct(p, rand.New(rand.NewSource(7)), ConstructOptions{Randomized: true})

	assert.Equal(t, p.FixedGenes[pinned], genes[pinned])
}

func TestConstructionOrderScarcestFirst(t *testing.T) {
	many := make([]PlacementOption, 5)
	for i := range many {
		many[i] = opt(1, i%4, "R1", "F1")
	}
	p := manualProblem([]BlockRequest{
		{ID: "theory-wide", Section: "A", BlockSize: 1, Options: many},
		{ID: "lab", Section: "A", IsLab: true, BlockSize: 2, Options: many},
		{ID: "theory-narrow", Section: "A", BlockSize: 1, Options: many[:2]},
	}, testRooms(), testFaculty())

	assert.Equal(t, []int{1, 2, 0}, constructionOrder(p), "labs, then scarce, then the rest")
}

func TestConstructFallsBackWhenNothingConflictFree(t *testing.T) {
	// Both requests can only ever land on the same room and slot; construction
	// must still assign both so the evaluator reports the damage.
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "b", Section: "B", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F2")}},
	}, testRooms(), testFaculty())

	genes := Construct(p, rand.New(rand.NewSource(1)), ConstructOptions{})

	assert.Equal(t, []int{0, 0}, genes)
	assert.Equal(t, 1, Evaluate(p, genes).HardConflicts)
}
