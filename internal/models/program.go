package models

import "time"

// Section is a named cohort of students within a term.
type Section struct {
	Name         string `json:"name"`
	StudentCount int    `json:"student_count"`
}

// ProgramCourse binds a course into a term plan with its delivery rules.
type ProgramCourse struct {
	CourseID              string   `json:"course_id"`
	PrimaryFacultyID      string   `json:"primary_faculty_id"`
	PreferredFacultyIDs   []string `json:"preferred_faculty_ids,omitempty"`
	PrerequisiteCourseIDs []string `json:"prerequisite_course_ids,omitempty"`
	LabBatchCount         int      `json:"lab_batch_count"`
	AllowParallelBatches  bool     `json:"allow_parallel_batches"`
}

// ElectiveGroup is a basket of elective courses whose sessions must not overlap.
type ElectiveGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CourseIDs []string `json:"course_ids"`
}

// SharedLectureGroup names sections that attend one lecture of a course together.
type SharedLectureGroup struct {
	ID       string   `json:"id"`
	CourseID string   `json:"course_id"`
	Sections []string `json:"sections"`
}

// TermPlan describes everything one term of a program must schedule.
type TermPlan struct {
	TermNumber          int                  `json:"term_number"`
	Sections            []Section            `json:"sections"`
	Courses             []ProgramCourse      `json:"courses"`
	ElectiveGroups      []ElectiveGroup      `json:"elective_groups,omitempty"`
	SharedLectureGroups []SharedLectureGroup `json:"shared_lecture_groups,omitempty"`
	MinCreditTotal      int                  `json:"min_credit_total"`
}

// ProgramStructure is the full multi-term curriculum of a program.
type ProgramStructure struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Terms     []TermPlan `db:"-" json:"terms"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Term returns the plan for the given term number.
func (p ProgramStructure) Term(termNumber int) (TermPlan, bool) {
	for _, t := range p.Terms {
		if t.TermNumber == termNumber {
			return t, true
		}
	}
	return TermPlan{}, false
}
