package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func slot(id string, day, start, end int, section, batch, roomID, facultyID string) models.TimetableSlot {
	return models.TimetableSlot{
		ID: id, DayOfWeek: day, StartMinute: start, EndMinute: end,
		CourseID: "c-alg", CourseCode: "CS201",
		Section: section, Batch: batch, RoomID: roomID, FacultyID: facultyID,
		StudentCount: 40, SessionType: models.SessionTypeTheory,
	}
}

func kinds(report AuditReport) []models.ConflictKind {
	out := make([]models.ConflictKind, 0, len(report.Conflicts))
	for _, c := range report.Conflicts {
		out = append(out, c.Kind)
	}
	return out
}

func TestAuditEmptyPayload(t *testing.T) {
	report := Audit(nil, testRooms(), testFaculty())
	assert.Empty(t, report.Conflicts)
	assert.Empty(t, report.SuggestedResolutions)
	assert.Equal(t, 0, report.HardConflicts())
}

func TestAuditRoomDoubleBooking(t *testing.T) {
	report := Audit([]models.TimetableSlot{
		slot("s1", 1, 540, 600, "A", "", "R1", "F1"),
		slot("s2", 1, 540, 600, "B", "", "R1", "F2"),
	}, testRooms(), testFaculty())

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, models.ConflictRoom, report.Conflicts[0].Kind)
	assert.Equal(t, models.SeverityHard, report.Conflicts[0].Severity)
	assert.ElementsMatch(t, []string{"s1", "s2"}, report.Conflicts[0].AffectedSlotIDs)

	require.Len(t, report.SuggestedResolutions, 1)
	assert.Equal(t, "change_room", report.SuggestedResolutions[0].ActionType)
}

func TestAuditFacultyDoubleBooking(t *testing.T) {
	report := Audit([]models.TimetableSlot{
		slot("s1", 1, 540, 660, "A", "", "R1", "F1"),
		slot("s2", 1, 600, 660, "B", "", "R2", "F1"),
	}, testRooms(), testFaculty())

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, models.ConflictFaculty, report.Conflicts[0].Kind)
	assert.Contains(t, report.Conflicts[0].Description, "Dr. Rao")
	assert.Equal(t, "move_slot", report.SuggestedResolutions[0].ActionType)
}

func TestAuditSectionBatchSuppression(t *testing.T) {
	cases := []struct {
		name     string
		batchA   string
		batchB   string
		conflict bool
	}{
		{name: "distinct batches run in parallel", batchA: "B1", batchB: "B2", conflict: false},
		{name: "identical batches collide", batchA: "B1", batchB: "B1", conflict: true},
		{name: "missing batch collides", batchA: "", batchB: "B2", conflict: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := Audit([]models.TimetableSlot{
				slot("s1", 2, 540, 600, "A", tc.batchA, "L1", "F1"),
				slot("s2", 2, 540, 600, "A", tc.batchB, "L2", "F2"),
			}, testRooms(), testFaculty())

			if tc.conflict {
				assert.Contains(t, kinds(report), models.ConflictSection)
			} else {
				assert.NotContains(t, kinds(report), models.ConflictSection)
			}
		})
	}
}

func TestAuditRoomCapacityOverflow(t *testing.T) {
	s := slot("s1", 1, 540, 600, "A", "", "R1", "F1")
	s.StudentCount = 80

	report := Audit([]models.TimetableSlot{s}, testRooms(), testFaculty())

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, models.ConflictRoomCapacity, report.Conflicts[0].Kind)
	assert.Equal(t, models.SeverityHard, report.Conflicts[0].Severity)
	assert.Equal(t, "change_room", report.SuggestedResolutions[0].ActionType)
	assert.Equal(t, "80", report.SuggestedResolutions[0].Parameters["min_capacity"])
}

func TestAuditRoomTypeMismatch(t *testing.T) {
	s := slot("s1", 1, 540, 660, "A", "", "R1", "F1")
	s.SessionType = models.SessionTypeLab

	report := Audit([]models.TimetableSlot{s}, testRooms(), testFaculty())

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, models.ConflictRoomType, report.Conflicts[0].Kind)
	assert.Equal(t, string(models.RoomTypeLab), report.SuggestedResolutions[0].Parameters["required_type"])
}

func TestAuditSharedLectureGroups(t *testing.T) {
	rooms := append(testRooms(), models.Room{ID: "R0", Name: "Main Auditorium", Capacity: 120, Type: models.RoomTypeLecture})

	t.Run("synchronized with room to spare", func(t *testing.T) {
		a := slot("s1", 1, 540, 600, "A", "", "R0", "F1")
		b := slot("s2", 1, 540, 600, "B", "", "R0", "F1")
		a.SharedGroupID, b.SharedGroupID = "sg", "sg"

		report := Audit([]models.TimetableSlot{a, b}, rooms, testFaculty())
		assert.Empty(t, report.Conflicts)
	})

	t.Run("desynchronized times are rejected", func(t *testing.T) {
		a := slot("s1", 1, 540, 600, "A", "", "R0", "F1")
		b := slot("s2", 1, 600, 660, "B", "", "R0", "F1")
		a.SharedGroupID, b.SharedGroupID = "sg", "sg"

		report := Audit([]models.TimetableSlot{a, b}, rooms, testFaculty())
		assert.Contains(t, kinds(report), models.ConflictSharedLectureSync)
	})

	t.Run("combined head count must fit", func(t *testing.T) {
		a := slot("s1", 1, 540, 600, "A", "", "R1", "F1")
		b := slot("s2", 1, 540, 600, "B", "", "R1", "F1")
		a.SharedGroupID, b.SharedGroupID = "sg", "sg"
		a.StudentCount, b.StudentCount = 40, 35

		report := Audit([]models.TimetableSlot{a, b}, rooms, testFaculty())
		require.Contains(t, kinds(report), models.ConflictRoomCapacity)
		for _, c := range report.Conflicts {
			if c.Kind == models.ConflictRoomCapacity {
				assert.ElementsMatch(t, []string{"s1", "s2"}, c.AffectedSlotIDs)
			}
		}
	})
}

func TestAuditParallelBatchDesync(t *testing.T) {
	a := slot("s1", 2, 540, 660, "A", "B1", "L1", "F1")
	b := slot("s2", 3, 540, 660, "A", "B2", "L2", "F2")
	a.SessionType, b.SessionType = models.SessionTypeLab, models.SessionTypeLab

	report := Audit([]models.TimetableSlot{a, b}, testRooms(), testFaculty())
	require.Contains(t, kinds(report), models.ConflictBatchSync)
	assert.Equal(t, 1, report.HardConflicts())
	require.Len(t, report.SuggestedResolutions, 1)
	assert.Equal(t, "move_slot", report.SuggestedResolutions[0].ActionType)

	// Bringing the batches back onto the same day and hour clears the report.
	b.DayOfWeek = 2
	report = Audit([]models.TimetableSlot{a, b}, testRooms(), testFaculty())
	assert.Empty(t, report.Conflicts)
}

func TestAuditIgnoresNonOverlappingSlots(t *testing.T) {
	report := Audit([]models.TimetableSlot{
		slot("s1", 1, 540, 600, "A", "", "R1", "F1"),
		slot("s2", 1, 600, 660, "A", "", "R1", "F1"),
		slot("s3", 2, 540, 600, "A", "", "R1", "F1"),
	}, testRooms(), testFaculty())

	assert.Empty(t, report.Conflicts, "back to back and cross-day slots do not collide")
}
