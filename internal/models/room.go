package models

import "time"

// RoomType classifies what kind of sessions a room can host.
type RoomType string

const (
	RoomTypeLecture RoomType = "LECTURE"
	RoomTypeLab     RoomType = "LAB"
	RoomTypeSeminar RoomType = "SEMINAR"
)

// AvailabilityWindow describes when a resource may be used.
// Minutes are counted from midnight; DayOfWeek follows ISO numbering (1 = Monday).
type AvailabilityWindow struct {
	DayOfWeek   int `json:"day_of_week"`
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Contains reports whether the window covers [start, end) on the given day.
func (w AvailabilityWindow) Contains(day, start, end int) bool {
	return w.DayOfWeek == day && w.StartMinute <= start && end <= w.EndMinute
}

// Room represents a bookable teaching space.
type Room struct {
	ID                  string               `db:"id" json:"id"`
	Name                string               `db:"name" json:"name"`
	Capacity            int                  `db:"capacity" json:"capacity"`
	Type                RoomType             `db:"type" json:"type"`
	AvailabilityWindows []AvailabilityWindow `db:"-" json:"availability_windows,omitempty"`
	CreatedAt           time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time            `db:"updated_at" json:"updated_at"`
}

// Available reports whether the room is usable for [start, end) on the day.
// A room without windows is considered always available.
func (r Room) Available(day, start, end int) bool {
	if len(r.AvailabilityWindows) == 0 {
		return true
	}
	for _, w := range r.AvailabilityWindows {
		if w.Contains(day, start, end) {
			return true
		}
	}
	return false
}
