package models

import "time"

// CourseType classifies an academic course.
type CourseType string

const (
	CourseTypeTheory   CourseType = "THEORY"
	CourseTypeLab      CourseType = "LAB"
	CourseTypeElective CourseType = "ELECTIVE"
)

// SessionType classifies one weekly block of a course.
type SessionType string

const (
	SessionTypeTheory   SessionType = "THEORY"
	SessionTypeLab      SessionType = "LAB"
	SessionTypeTutorial SessionType = "TUTORIAL"
)

// Course represents an academic course in the catalog.
type Course struct {
	ID            string     `db:"id" json:"id"`
	Code          string     `db:"code" json:"code"`
	Name          string     `db:"name" json:"name"`
	Type          CourseType `db:"type" json:"type"`
	Credits       int        `db:"credits" json:"credits"`
	HoursPerWeek  int        `db:"hours_per_week" json:"hours_per_week"`
	TheoryHours   int        `db:"theory_hours" json:"theory_hours"`
	LabHours      int        `db:"lab_hours" json:"lab_hours"`
	TutorialHours int        `db:"tutorial_hours" json:"tutorial_hours"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
