package dto

import "github.com/noah-isme/uni-timetable-api/internal/models"

// AuditTimetableRequest audits either a stored timetable or an ad-hoc slot
// payload. Exactly one of the two sources must be provided.
type AuditTimetableRequest struct {
	TimetableID string                 `json:"timetableId" validate:"required_without=Slots,excluded_with=Slots"`
	Slots       []models.TimetableSlot `json:"slots" validate:"required_without=TimetableID,omitempty,min=1"`
}

// AuditTimetableResponse lists every violation with its suggested fix.
type AuditTimetableResponse struct {
	Conflicts            []models.ConflictDetail   `json:"conflicts"`
	SuggestedResolutions []models.ResolutionAction `json:"suggestedResolutions"`
	HardConflicts        int                       `json:"hardConflicts"`
	TotalConflicts       int                       `json:"totalConflicts"`
}
