package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
)

type auditServiceMock struct {
	captured dto.AuditTimetableRequest
	response *dto.AuditTimetableResponse
	err      error
}

func (m *auditServiceMock) Audit(ctx context.Context, req dto.AuditTimetableRequest) (*dto.AuditTimetableResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func TestAuditByTimetableID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &auditServiceMock{response: &dto.AuditTimetableResponse{
		Conflicts:      []models.ConflictDetail{{Kind: models.ConflictRoom, Severity: models.SeverityHard}},
		HardConflicts:  1,
		TotalConflicts: 1,
	}}
	h := &AuditHandler{service: mockSvc}

	payload := []byte(`{"timetableId":"tt-1"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/audit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Audit(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "tt-1", mockSvc.captured.TimetableID)

	var envelope struct {
		Data dto.AuditTimetableResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 1, envelope.Data.HardConflicts)
	require.Len(t, envelope.Data.Conflicts, 1)
}

func TestAuditInlineSlots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &auditServiceMock{response: &dto.AuditTimetableResponse{}}
	h := &AuditHandler{service: mockSvc}

	payload := []byte(`{"slots":[{"day_of_week":1,"start_minute":540,"end_minute":630,"course_id":"c1","course_code":"CS101","section":"A","room_id":"r1","faculty_id":"f1","student_count":40,"session_type":"THEORY"}]}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/audit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Audit(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockSvc.captured.Slots, 1)
	require.Equal(t, "CS101", mockSvc.captured.Slots[0].CourseCode)
}

func TestAuditMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &AuditHandler{service: &auditServiceMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/timetables/audit", bytes.NewReader([]byte(`{"slots":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Audit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
