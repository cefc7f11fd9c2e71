package models

import "time"

// Faculty represents an instructor record with workload and preference rules.
type Faculty struct {
	ID                       string               `db:"id" json:"id"`
	Name                     string               `db:"name" json:"name"`
	Department               string               `db:"department" json:"department"`
	MaxHours                 int                  `db:"max_hours" json:"max_hours"`
	WorkloadHours            int                  `db:"workload_hours" json:"workload_hours"`
	AvoidBackToBack          bool                 `db:"avoid_back_to_back" json:"avoid_back_to_back"`
	PreferredMinBreakMinutes int                  `db:"preferred_min_break_minutes" json:"preferred_min_break_minutes"`
	PreferredSubjectCodes    []string             `db:"-" json:"preferred_subject_codes,omitempty"`
	SemesterPreferences      []int                `db:"-" json:"semester_preferences,omitempty"`
	AvailabilityWindows      []AvailabilityWindow `db:"-" json:"availability_windows,omitempty"`
	Active                   bool                 `db:"active" json:"active"`
	CreatedAt                time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time            `db:"updated_at" json:"updated_at"`
}

// Available reports whether the faculty member can teach [start, end) on the day.
// No declared windows means always available.
func (f Faculty) Available(day, start, end int) bool {
	if len(f.AvailabilityWindows) == 0 {
		return true
	}
	for _, w := range f.AvailabilityWindows {
		if w.Contains(day, start, end) {
			return true
		}
	}
	return false
}

// PrefersSubject reports whether the course code is on the faculty's preference list.
func (f Faculty) PrefersSubject(code string) bool {
	for _, c := range f.PreferredSubjectCodes {
		if c == code {
			return true
		}
	}
	return false
}

// PrefersTerm reports whether the faculty member opted into the term number.
// An empty preference list means no opinion.
func (f Faculty) PrefersTerm(termNumber int) bool {
	if len(f.SemesterPreferences) == 0 {
		return true
	}
	for _, t := range f.SemesterPreferences {
		if t == termNumber {
			return true
		}
	}
	return false
}
