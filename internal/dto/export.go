package dto

import "time"

// ExportTimetableRequest renders a stored timetable into a downloadable file.
type ExportTimetableRequest struct {
	Format string `form:"format" json:"format" validate:"required,oneof=csv pdf"`
}

// ExportTimetableResponse carries the signed download location.
type ExportTimetableResponse struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expiresAt"`
}
