package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func TestTrackerDetectsRoomCollision(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "b", Section: "B", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F2"), opt(1, 1, "R1", "F2")}},
	}, testRooms(), testFaculty())

	tr := NewTracker(p)
	tr.Record(0, 0)

	assert.False(t, tr.IsConflictFree(1, 0), "same room, same slot")
	assert.True(t, tr.IsConflictFree(1, 1), "same room, next slot")

	tr.Unrecord(0, 0)
	assert.True(t, tr.IsConflictFree(1, 0))
	assert.Equal(t, []int{-1, -1}, tr.Genes())
}

func TestTrackerBatchExemption(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "lab-b1", Section: "A", Batch: "B1", IsLab: true, BlockSize: 2, BatchGroupKey: "g", Options: []PlacementOption{opt(1, 0, "L1", "F1")}},
		{ID: "lab-b2", Section: "A", Batch: "B2", IsLab: true, BlockSize: 2, BatchGroupKey: "g", Options: []PlacementOption{opt(1, 0, "L2", "F2")}},
		{ID: "theory", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F3")}},
	}, testRooms(), testFaculty())

	tr := NewTracker(p)
	tr.Record(0, 0)

	assert.True(t, tr.IsConflictFree(1, 0), "distinct batches of one section run concurrently")
	assert.False(t, tr.IsConflictFree(2, 0), "unbatched request still collides with the section")
}

func TestTrackerSharedGroupExemption(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "sh-a", Section: "A", BlockSize: 1, SharedGroupKey: "sg", Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "sh-b", Section: "B", BlockSize: 1, SharedGroupKey: "sg", Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
	}, testRooms(), testFaculty())

	tr := NewTracker(p)
	tr.Record(0, 0)

	assert.True(t, tr.IsConflictFree(1, 0), "shared lecture sections co-occupy room and faculty")
}

func TestTrackerFacultyMaxHoursCap(t *testing.T) {
	faculty := []models.Faculty{{ID: "FX", Name: "Dr. Shah", MaxHours: 1, Active: true}}
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "FX")}},
		{ID: "b", Section: "B", BlockSize: 1, Options: []PlacementOption{opt(2, 0, "R1", "FX")}},
	}, testRooms(), faculty)

	tr := NewTracker(p)
	require.True(t, tr.IsConflictFree(0, 0))
	tr.Record(0, 0)

	assert.False(t, tr.IsConflictFree(1, 0), "second hour exceeds the one-hour cap")
}

func TestTrackerMaxHoursPerDayCap(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "b", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 1, "R2", "F2")}},
		{ID: "c", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 2, "R1", "F3"), opt(2, 0, "R1", "F3")}},
	}, testRooms(), testFaculty())
	p.Constraint = models.SemesterConstraint{TermNumber: 1, MaxHoursPerDay: 2}

	tr := NewTracker(p)
	tr.Record(0, 0)
	tr.Record(1, 0)

	assert.False(t, tr.IsConflictFree(2, 0), "third Monday hour exceeds the daily cap")
	assert.True(t, tr.IsConflictFree(2, 1), "Tuesday is still open")
}

func TestTrackerMaxConsecutiveHoursCap(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 2, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "b", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 2, "R2", "F2"), opt(1, 3, "R2", "F2")}},
	}, testRooms(), testFaculty())
	p.Constraint = models.SemesterConstraint{TermNumber: 1, MaxConsecutiveHours: 2}

	tr := NewTracker(p)
	tr.Record(0, 0)

	assert.False(t, tr.IsConflictFree(1, 0), "adjacent slot extends the run to three")
	assert.True(t, tr.IsConflictFree(1, 1), "a gap keeps the run at two")
}

func TestTrackerRebuildFromMatchesIncrementalRecords(t *testing.T) {
	p, err := CompileRequests(testSnapshot(), 3, DefaultWeights())
	require.NoError(t, err)

	incremental := NewTracker(p)
	genes := make([]int, len(p.Requests))
	for i := range p.Requests {
		incremental.Record(i, 0)
		genes[i] = 0
	}

	rebuilt := NewTracker(p)
	rebuilt.RebuildFrom(genes)

	assert.Equal(t, incremental.Genes(), rebuilt.Genes())
	for i := range p.Requests {
		for c := range p.Requests[i].Options {
			assert.Equal(t, incremental.IsConflictFree(i, c), rebuilt.IsConflictFree(i, c), "request %d option %d", i, c)
		}
	}
}
