package models

// WorkingHours defines the teaching window for one day of the week.
type WorkingHours struct {
	DayOfWeek   int  `json:"day_of_week"`
	StartMinute int  `json:"start_minute"`
	EndMinute   int  `json:"end_minute"`
	Enabled     bool `json:"enabled"`
}

// BreakWindow is a slice of the day no teaching segment may overlap.
type BreakWindow struct {
	Name        string `json:"name"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	IsLunch     bool   `json:"is_lunch"`
}

// SchedulePolicy carries institution-wide slot shaping rules.
type SchedulePolicy struct {
	PeriodMinutes      int            `json:"period_minutes"`
	LabContiguousSlots int            `json:"lab_contiguous_slots"`
	MinBreakMinutes    int            `json:"min_break_minutes"`
	WorkingHours       []WorkingHours `json:"working_hours"`
	BreakWindows       []BreakWindow  `json:"break_windows"`
}

// SemesterConstraint bounds placements for one term.
type SemesterConstraint struct {
	TermNumber          int `db:"term_number" json:"term_number"`
	EarliestStartMinute int `db:"earliest_start_minute" json:"earliest_start_minute"`
	LatestEndMinute     int `db:"latest_end_minute" json:"latest_end_minute"`
	MaxHoursPerDay      int `db:"max_hours_per_day" json:"max_hours_per_day"`
	MaxHoursPerWeek     int `db:"max_hours_per_week" json:"max_hours_per_week"`
	MinBreakMinutes     int `db:"min_break_minutes" json:"min_break_minutes"`
	MaxConsecutiveHours int `db:"max_consecutive_hours" json:"max_consecutive_hours"`
}

// SlotLock pins a course block to an exact weekly position before solving.
type SlotLock struct {
	ID          string  `db:"id" json:"id"`
	ProgramID   string  `db:"program_id" json:"program_id"`
	TermNumber  int     `db:"term_number" json:"term_number"`
	DayOfWeek   int     `db:"day_of_week" json:"day_of_week"`
	StartMinute int     `db:"start_minute" json:"start_minute"`
	EndMinute   int     `db:"end_minute" json:"end_minute"`
	Section     string  `db:"section" json:"section"`
	CourseID    string  `db:"course_id" json:"course_id"`
	Batch       string  `db:"batch" json:"batch"`
	RoomID      *string `db:"room_id" json:"room_id,omitempty"`
	FacultyID   *string `db:"faculty_id" json:"faculty_id,omitempty"`
}
