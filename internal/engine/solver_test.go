package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallSettings(strategy Strategy, seed int64) GenerationSettings {
	return GenerationSettings{
		Strategy:            strategy,
		PopulationSize:      10,
		Generations:         15,
		AnnealingIterations: 400,
		RandomSeed:          seed,
		Deadline:            30 * time.Second,
	}
}

func TestSolveIsDeterministicPerSeed(t *testing.T) {
	p, err := CompileRequests(testSnapshot(), 3, DefaultWeights())
	require.NoError(t, err)

	for _, strategy := range []Strategy{StrategyFast, StrategyGenetic, StrategyAnnealing, StrategyHybrid} {
		first := Solve(p, smallSettings(strategy, 42))
		second := Solve(p, smallSettings(strategy, 42))
		assert.Equal(t, first.Genes, second.Genes, "strategy %s", strategy)
		assert.Equal(t, first.Eval, second.Eval, "strategy %s", strategy)
	}
}

func TestSolveFindsConflictFreeTimetable(t *testing.T) {
	p, err := CompileRequests(testSnapshot(), 3, DefaultWeights())
	require.NoError(t, err)

	sol := Solve(p, smallSettings(StrategyFast, 7))

	assert.Equal(t, 0, sol.Eval.HardConflicts)
	for i, g := range sol.Genes {
		require.GreaterOrEqual(t, g, 0, "request %d unassigned", i)
	}
}

func TestSolveAgreesWithAuditor(t *testing.T) {
	snap := testSnapshot()
	p, err := CompileRequests(snap, 3, DefaultWeights())
	require.NoError(t, err)

	for _, strategy := range []Strategy{StrategyFast, StrategyGenetic} {
		sol := Solve(p, smallSettings(strategy, 11))
		slots := Decode(p, sol.Genes)
		report := Audit(slots, snap.Rooms, snap.Faculty)
		assert.Equal(t, sol.Eval.HardConflicts, report.HardConflicts(), "strategy %s", strategy)
	}
}

func TestSolveSharedCourseWithLabAgreesWithAuditor(t *testing.T) {
	snap := sharedSnapshot()
	snap.Courses[0].LabHours = 2
	snap.Courses[0].HoursPerWeek = 5
	p, err := CompileRequests(snap, 3, DefaultWeights())
	require.NoError(t, err)

	sol := Solve(p, smallSettings(StrategyFast, 13))
	slots := Decode(p, sol.Genes)
	report := Audit(slots, snap.Rooms, snap.Faculty)

	assert.Equal(t, sol.Eval.HardConflicts, report.HardConflicts())
	assert.Equal(t, 0, report.HardConflicts(), "labs of a shared course fit their own lab rooms")
}

func TestSolveParallelBatchesStaySynchronized(t *testing.T) {
	snap := batchSnapshot()
	p, err := CompileRequests(snap, 3, DefaultWeights())
	require.NoError(t, err)

	sol := Solve(p, smallSettings(StrategyFast, 3))
	require.Equal(t, 0, sol.Eval.HardConflicts)

	slots := Decode(p, sol.Genes)
	assert.Equal(t, 0, Audit(slots, snap.Rooms, snap.Faculty).HardConflicts())

	var batchSlots []int
	for i, s := range slots {
		if s.Batch != "" {
			batchSlots = append(batchSlots, i)
		}
	}
	require.Len(t, batchSlots, 2)
	a, b := slots[batchSlots[0]], slots[batchSlots[1]]
	assert.Equal(t, a.DayOfWeek, b.DayOfWeek)
	assert.Equal(t, a.StartMinute, b.StartMinute)
	assert.NotEqual(t, a.RoomID, b.RoomID, "parallel batches need separate labs")
}

func TestSolveSharedLectureStaysSynchronized(t *testing.T) {
	snap := sharedSnapshot()
	p, err := CompileRequests(snap, 3, DefaultWeights())
	require.NoError(t, err)

	sol := Solve(p, smallSettings(StrategyFast, 5))
	require.Equal(t, 0, sol.Eval.HardConflicts)

	slots := Decode(p, sol.Genes)
	assert.Equal(t, 0, Audit(slots, snap.Rooms, snap.Faculty).HardConflicts())

	byGroup := make(map[string][]int)
	for i, s := range slots {
		if s.SharedGroupID != "" {
			byGroup[s.SharedGroupID] = append(byGroup[s.SharedGroupID], i)
		}
	}
	require.Len(t, byGroup, 3)
	for group, members := range byGroup {
		require.Len(t, members, 2, "group %s", group)
		a, b := slots[members[0]], slots[members[1]]
		assert.Equal(t, a.DayOfWeek, b.DayOfWeek, "group %s", group)
		assert.Equal(t, a.StartMinute, b.StartMinute, "group %s", group)
		assert.Equal(t, a.RoomID, b.RoomID, "group %s", group)
		assert.Equal(t, a.FacultyID, b.FacultyID, "group %s", group)
	}
}

func TestSolveDegradesInsteadOfFailing(t *testing.T) {
	// Two demands, one possible placement: no clean timetable exists.
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "b", Section: "B", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F2")}},
	}, testRooms(), testFaculty())

	sol := Solve(p, smallSettings(StrategyHybrid, 1))

	assert.Equal(t, 1, sol.Eval.HardConflicts, "best effort result, not an error")
	assert.Equal(t, []int{0, 0}, sol.Genes)
}

func TestSolveHonorsDeadline(t *testing.T) {
	p, err := CompileRequests(testSnapshot(), 3, DefaultWeights())
	require.NoError(t, err)

	s := smallSettings(StrategyGenetic, 9)
	s.Generations = 1000000
	s.StagnationLimit = 1000000
	s.Deadline = 50 * time.Millisecond

	done := make(chan Solution, 1)
	go func() { done <- Solve(p, s) }()

	select {
	case sol := <-done:
		for i, g := range sol.Genes {
			require.GreaterOrEqual(t, g, 0, "request %d unassigned", i)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("solver ignored its deadline")
	}
}
