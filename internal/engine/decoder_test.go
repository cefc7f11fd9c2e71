package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func TestDecodeExpandsBlocks(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "lab-1", CourseID: "c-os-lab", CourseCode: "CS202L", Section: "A", Batch: "B1", StudentCount: 23,
			IsLab: true, BlockSize: 2, SessionType: models.SessionTypeLab,
			Options: []PlacementOption{opt(1, 2, "L1", "F2")}},
		{ID: "theory-1", CourseID: "c-alg", CourseCode: "CS201", Section: "A", StudentCount: 45,
			BlockSize: 1, SessionType: models.SessionTypeTheory, SharedGroupKey: "sg",
			Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
	}, testRooms(), testFaculty())

	slots := Decode(p, []int{0, 0})

	require.Len(t, slots, 2)
	// Sorted by day then start: the theory hour comes first.
	assert.Equal(t, "theory-1", slots[0].ID)
	assert.Equal(t, 540, slots[0].StartMinute)
	assert.Equal(t, 600, slots[0].EndMinute)
	assert.Equal(t, "sg", slots[0].SharedGroupID)

	assert.Equal(t, "lab-1", slots[1].ID)
	assert.Equal(t, 660, slots[1].StartMinute)
	assert.Equal(t, 780, slots[1].EndMinute, "two-slot block spans both segments")
	assert.Equal(t, "B1", slots[1].Batch)
	assert.Equal(t, models.SessionTypeLab, slots[1].SessionType)
	assert.Equal(t, 23, slots[1].StudentCount)
}

func TestDecodeSkipsUnassignedGenes(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "b", Section: "B", BlockSize: 1, Options: []PlacementOption{opt(2, 0, "R1", "F2")}},
	}, testRooms(), testFaculty())

	slots := Decode(p, []int{0, -1})

	require.Len(t, slots, 1)
	assert.Equal(t, "a", slots[0].ID)
}

func TestOccupancyMatrixLabelsCells(t *testing.T) {
	p := manualProblem([]BlockRequest{
		{ID: "t", CourseCode: "CS201", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "l", CourseCode: "CS202L", Section: "A", Batch: "B1", IsLab: true, BlockSize: 2, Options: []PlacementOption{opt(2, 1, "L1", "F2")}},
	}, testRooms(), testFaculty())

	matrix := OccupancyMatrix(p, []int{0, 0})

	require.Contains(t, matrix, "A")
	monday := matrix["A"]["MONDAY"]
	require.Len(t, monday, 4)
	assert.Equal(t, []string{"CS201", "", "", ""}, monday)

	tuesday := matrix["A"]["TUESDAY"]
	assert.Equal(t, []string{"", "CS202L/B1", "CS202L/B1", ""}, tuesday)
}

func TestWorkloadGapSuggestions(t *testing.T) {
	faculty := []models.Faculty{
		{ID: "F1", Name: "Dr. Rao", WorkloadHours: 4, Active: true},
		{ID: "F2", Name: "Dr. Iyer", WorkloadHours: 1, Active: true},
	}
	p := manualProblem([]BlockRequest{
		{ID: "a", Section: "A", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R1", "F1")}},
		{ID: "b", Section: "B", BlockSize: 1, Options: []PlacementOption{opt(1, 0, "R2", "F2")}},
		{ID: "c", Section: "C", BlockSize: 1, Options: []PlacementOption{opt(2, 0, "R2", "F2")}},
		{ID: "d", Section: "D", BlockSize: 1, Options: []PlacementOption{opt(3, 0, "R2", "F2")}},
	}, testRooms(), faculty)

	suggestions := WorkloadGapSuggestions(p, []int{0, 0, 0, 0})

	require.Len(t, suggestions, 2)
	assert.Contains(t, suggestions[0], "Dr. Rao")
	assert.Contains(t, suggestions[0], "under target")
	assert.Contains(t, suggestions[1], "Dr. Iyer")
	assert.Contains(t, suggestions[1], "over target")
}
