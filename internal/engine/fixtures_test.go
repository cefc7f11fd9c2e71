package engine

import (
	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func weekdayHours(days ...int) []models.WorkingHours {
	hours := make([]models.WorkingHours, 0, len(days))
	for _, d := range days {
		hours = append(hours, models.WorkingHours{DayOfWeek: d, StartMinute: 540, EndMinute: 780, Enabled: true})
	}
	return hours
}

// testPolicy yields a 9:00-13:00 week, 60-minute periods, labs in 2-slot blocks.
func testPolicy() models.SchedulePolicy {
	return models.SchedulePolicy{
		PeriodMinutes:      60,
		LabContiguousSlots: 2,
		WorkingHours:       weekdayHours(1, 2, 3, 4, 5),
	}
}

func testRooms() []models.Room {
	return []models.Room{
		{ID: "R1", Name: "Lecture Hall 1", Capacity: 60, Type: models.RoomTypeLecture},
		{ID: "R2", Name: "Lecture Hall 2", Capacity: 50, Type: models.RoomTypeLecture},
		{ID: "L1", Name: "Computing Lab 1", Capacity: 50, Type: models.RoomTypeLab},
		{ID: "L2", Name: "Computing Lab 2", Capacity: 50, Type: models.RoomTypeLab},
	}
}

func testFaculty() []models.Faculty {
	return []models.Faculty{
		{ID: "F1", Name: "Dr. Rao", MaxHours: 20, WorkloadHours: 12, Active: true},
		{ID: "F2", Name: "Dr. Iyer", MaxHours: 20, WorkloadHours: 12, Active: true},
		{ID: "F3", Name: "Dr. Menon", MaxHours: 20, WorkloadHours: 12, Active: true},
	}
}

// testSnapshot is the baseline single-section term: three theory hours of
// CS201 and one two-slot lab block of CS202L.
func testSnapshot() Snapshot {
	return Snapshot{
		Rooms:   testRooms(),
		Faculty: testFaculty(),
		Courses: []models.Course{
			{ID: "c-alg", Code: "CS201", Name: "Algorithms", Type: models.CourseTypeTheory, Credits: 4, HoursPerWeek: 3, TheoryHours: 3},
			{ID: "c-os-lab", Code: "CS202L", Name: "OS Lab", Type: models.CourseTypeLab, Credits: 2, HoursPerWeek: 2, LabHours: 2},
		},
		Program: models.ProgramStructure{
			ID:   "prog-cse",
			Name: "B.Tech CSE",
			Terms: []models.TermPlan{{
				TermNumber: 3,
				Sections:   []models.Section{{Name: "A", StudentCount: 45}},
				Courses: []models.ProgramCourse{
					{CourseID: "c-alg", PrimaryFacultyID: "F1"},
					{CourseID: "c-os-lab", PrimaryFacultyID: "F2"},
				},
			}},
		},
		Policy: testPolicy(),
	}
}

// batchSnapshot splits the lab of the baseline term into two parallel batches.
func batchSnapshot() Snapshot {
	snap := testSnapshot()
	snap.Program.Terms[0].Courses[1].LabBatchCount = 2
	snap.Program.Terms[0].Courses[1].AllowParallelBatches = true
	return snap
}

// sharedSnapshot adds a second section and makes CS201 a shared lecture for
// both, hosted in a hall big enough for the combined head count.
func sharedSnapshot() Snapshot {
	snap := testSnapshot()
	snap.Rooms = append(snap.Rooms, models.Room{ID: "R0", Name: "Main Auditorium", Capacity: 120, Type: models.RoomTypeLecture})
	snap.Program.Terms[0].Sections = append(snap.Program.Terms[0].Sections, models.Section{Name: "B", StudentCount: 40})
	snap.Program.Terms[0].SharedLectureGroups = []models.SharedLectureGroup{
		{ID: "shared-alg", CourseID: "c-alg", Sections: []string{"A", "B"}},
	}
	return snap
}

// cycleSnapshot carries two terms whose single theory course each can only be
// taught by F1, forcing the cycle orchestrator to separate them in time.
func cycleSnapshot() Snapshot {
	return Snapshot{
		Rooms: []models.Room{
			{ID: "R1", Name: "Lecture Hall 1", Capacity: 60, Type: models.RoomTypeLecture},
		},
		Faculty: []models.Faculty{
			{ID: "F1", Name: "Dr. Rao", Active: true},
		},
		Courses: []models.Course{
			{ID: "c-dbms", Code: "CS301", Name: "Databases", Type: models.CourseTypeTheory, Credits: 4, HoursPerWeek: 1, TheoryHours: 1},
			{ID: "c-net", Code: "CS401", Name: "Networks", Type: models.CourseTypeTheory, Credits: 4, HoursPerWeek: 1, TheoryHours: 1},
		},
		Program: models.ProgramStructure{
			ID:   "prog-cse",
			Name: "B.Tech CSE",
			Terms: []models.TermPlan{
				{
					TermNumber: 3,
					Sections:   []models.Section{{Name: "A", StudentCount: 40}},
					Courses:    []models.ProgramCourse{{CourseID: "c-dbms", PrimaryFacultyID: "F1"}},
				},
				{
					TermNumber: 4,
					Sections:   []models.Section{{Name: "A", StudentCount: 40}},
					Courses:    []models.ProgramCourse{{CourseID: "c-net", PrimaryFacultyID: "F1"}},
				},
			},
		},
		Policy: testPolicy(),
	}
}

// manualProblem builds a Problem straight from explicit requests, bypassing
// the compiler, for tracker and evaluator tests that need exact placements.
func manualProblem(reqs []BlockRequest, rooms []models.Room, faculty []models.Faculty) *Problem {
	p := &Problem{
		ProgramID:    "prog-test",
		TermNumber:   1,
		Policy:       testPolicy(),
		Grid:         BuildDayGrid(testPolicy()),
		Requests:     reqs,
		FixedGenes:   make(map[int]int),
		BatchGroups:  make(map[string][]int),
		SharedGroups: make(map[string][]int),
		Rooms:        make(map[string]models.Room, len(rooms)),
		Faculty:      make(map[string]models.Faculty, len(faculty)),
		Weights:      DefaultWeights(),
	}
	for _, r := range rooms {
		p.Rooms[r.ID] = r
	}
	for _, f := range faculty {
		p.Faculty[f.ID] = f
	}
	for i, r := range reqs {
		if r.BatchGroupKey != "" {
			p.BatchGroups[r.BatchGroupKey] = append(p.BatchGroups[r.BatchGroupKey], i)
		}
		if r.SharedGroupKey != "" {
			p.SharedGroups[r.SharedGroupKey] = append(p.SharedGroups[r.SharedGroupKey], i)
		}
	}
	return p
}

func opt(day, start int, roomID, facultyID string) PlacementOption {
	return PlacementOption{Day: day, StartIndex: start, RoomID: roomID, FacultyID: facultyID}
}
