package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for generated timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// TimetableSlot is one concrete weekly teaching block in a decoded timetable.
type TimetableSlot struct {
	ID            string      `db:"id" json:"id"`
	TimetableID   string      `db:"timetable_id" json:"timetable_id,omitempty"`
	DayOfWeek     int         `db:"day_of_week" json:"day_of_week"`
	StartMinute   int         `db:"start_minute" json:"start_minute"`
	EndMinute     int         `db:"end_minute" json:"end_minute"`
	CourseID      string      `db:"course_id" json:"course_id"`
	CourseCode    string      `db:"course_code" json:"course_code"`
	Section       string      `db:"section" json:"section"`
	Batch         string      `db:"batch" json:"batch,omitempty"`
	RoomID        string      `db:"room_id" json:"room_id"`
	FacultyID     string      `db:"faculty_id" json:"faculty_id"`
	StudentCount  int         `db:"student_count" json:"student_count"`
	SessionType   SessionType `db:"session_type" json:"session_type"`
	SharedGroupID string      `db:"shared_group_id" json:"shared_group_id,omitempty"`
}

// Overlaps reports whether two slots intersect in time on the same day.
func (s TimetableSlot) Overlaps(other TimetableSlot) bool {
	return s.DayOfWeek == other.DayOfWeek &&
		s.StartMinute < other.EndMinute && other.StartMinute < s.EndMinute
}

// Timetable captures a versioned generated timetable for a program term.
type Timetable struct {
	ID         string          `db:"id" json:"id"`
	ProgramID  string          `db:"program_id" json:"program_id"`
	TermNumber int             `db:"term_number" json:"term_number"`
	Version    int             `db:"version" json:"version"`
	Status     TimetableStatus `db:"status" json:"status"`
	Meta       types.JSONText  `db:"meta" json:"meta"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// ConflictKind enumerates audit violation categories.
type ConflictKind string

const (
	ConflictRoom              ConflictKind = "room_conflict"
	ConflictFaculty           ConflictKind = "faculty_conflict"
	ConflictSection           ConflictKind = "section_conflict"
	ConflictRoomCapacity      ConflictKind = "room_capacity"
	ConflictRoomType          ConflictKind = "room_type"
	ConflictSharedLectureSync ConflictKind = "shared_lecture_sync"
	ConflictBatchSync         ConflictKind = "batch_sync"
)

// ConflictSeverity splits blocking violations from quality deductions.
type ConflictSeverity string

const (
	SeverityHard ConflictSeverity = "hard"
	SeveritySoft ConflictSeverity = "soft"
)

// ConflictDetail is one violation found while auditing a timetable.
type ConflictDetail struct {
	ID              string           `json:"id"`
	Kind            ConflictKind     `json:"kind"`
	Severity        ConflictSeverity `json:"severity"`
	Description     string           `json:"description"`
	AffectedSlotIDs []string         `json:"affected_slot_ids"`
}

// ResolutionAction proposes a generic fix for a detected conflict.
type ResolutionAction struct {
	ActionType   string            `json:"action_type"`
	TargetSlotID string            `json:"target_slot_id"`
	Parameters   map[string]string `json:"parameters,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
