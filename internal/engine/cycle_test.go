package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func TestGenerateCyclePropagatesStructuralErrors(t *testing.T) {
	_, err := GenerateCycle(cycleSnapshot(), []int{3, 9}, CycleSettings{})

	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "unknown term", serr.Reason)
}

func TestGenerateCycleRanksAlternativesPerTerm(t *testing.T) {
	result, err := GenerateCycle(cycleSnapshot(), []int{3, 4}, CycleSettings{
		GenerationSettings: GenerationSettings{RandomSeed: 11},
		Alternatives:       4,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 4}, result.TermNumbers)
	require.Len(t, result.Terms, 2)
	for _, term := range result.Terms {
		require.Len(t, term.Alternatives, 4)
		for i, alt := range term.Alternatives {
			assert.Equal(t, i+1, alt.Rank)
			assert.Equal(t, term.TermNumber, alt.TermNumber)
			require.Len(t, alt.Slots, 1, "one theory hour per term")
			assert.NotNil(t, alt.OccupancyMatrix)
		}
	}
}

func TestGenerateCycleAvoidsCrossTermFacultyOverlap(t *testing.T) {
	// Both terms' single course can only be taught by F1, so any combination
	// placing them at the same day and hour burns a resource penalty. The
	// selected combination must be overlap-free whenever one exists.
	result, err := GenerateCycle(cycleSnapshot(), []int{3, 4}, CycleSettings{
		GenerationSettings: GenerationSettings{RandomSeed: 11},
		Alternatives:       4,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ParetoFront)

	term3 := result.Terms[0].Alternatives
	term4 := result.Terms[1].Alternatives
	overlapFreeExists := false
	for _, a := range term3 {
		for _, b := range term4 {
			if !a.Slots[0].Overlaps(b.Slots[0]) {
				overlapFreeExists = true
			}
		}
	}
	require.True(t, overlapFreeExists, "the alternative pool never separated the terms")

	selected := result.ParetoFront[0]
	assert.Equal(t, selected.Rank, result.SelectedSolutionRank)
	assert.Equal(t, 1, selected.Rank)
	assert.Zero(t, selected.ResourcePenalty)

	// Verify against the actual chosen slots, not just the penalty bookkeeping.
	var chosen []models.TimetableSlot
	for _, term := range result.Terms {
		rank := selected.AlternativeRanks[term.TermNumber]
		for _, alt := range term.Alternatives {
			if alt.Rank == rank {
				chosen = append(chosen, alt.Slots...)
			}
		}
	}
	require.Len(t, chosen, 2)
	assert.False(t, chosen[0].Overlaps(chosen[1]), "F1 is double-booked across terms")
}

func TestGenerateCycleParetoFrontIsNonDominated(t *testing.T) {
	result, err := GenerateCycle(cycleSnapshot(), []int{3, 4}, CycleSettings{
		GenerationSettings: GenerationSettings{RandomSeed: 23},
		Alternatives:       3,
		ParetoLimit:        10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ParetoFront)

	for i, a := range result.ParetoFront {
		assert.Equal(t, i+1, a.Rank)
		for j, b := range result.ParetoFront {
			if i == j {
				continue
			}
			assert.False(t, dominates(a, b), "front member %d dominates member %d", i, j)
		}
	}
}

func TestDominates(t *testing.T) {
	base := CycleCombination{ResourcePenalty: 1, FacultyPreferencePenalty: 2, WorkloadGapPenalty: 3}

	better := base
	better.ResourcePenalty = 0
	assert.True(t, dominates(better, base))
	assert.False(t, dominates(base, better))

	tradeoff := base
	tradeoff.ResourcePenalty = 0
	tradeoff.WorkloadGapPenalty = 5
	assert.False(t, dominates(tradeoff, base))
	assert.False(t, dominates(base, tradeoff))

	assert.False(t, dominates(base, base), "equal points do not dominate")
}

func TestCycleSettingsDefaults(t *testing.T) {
	s := CycleSettings{}.WithDefaults()

	assert.Equal(t, 3, s.Alternatives)
	assert.Equal(t, 5, s.ParetoLimit)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, StrategyAuto, s.Strategy)
}
