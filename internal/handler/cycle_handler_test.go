package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/engine"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type cycleServiceMock struct {
	captured dto.GenerateCycleRequest
	response *dto.GenerateCycleResponse
	jobID    string
}

func (m *cycleServiceMock) Generate(ctx context.Context, req dto.GenerateCycleRequest) (*dto.GenerateCycleResponse, error) {
	m.captured = req
	return m.response, nil
}

func (m *cycleServiceMock) GetJob(jobID string) (*dto.GenerateCycleResponse, error) {
	m.jobID = jobID
	if jobID == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle job not found")
	}
	return &dto.GenerateCycleResponse{JobID: jobID, Status: service.CycleJobRunning}, nil
}

func TestCycleGenerateSync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &cycleServiceMock{response: &dto.GenerateCycleResponse{
		Status: service.CycleJobCompleted,
		Result: &engine.CycleResult{},
	}}
	h := &CycleHandler{service: mockSvc}

	payload := []byte(`{"programId":"prog-1","termNumbers":[1,2,3]}`)
	req, _ := http.NewRequest(http.MethodPost, "/cycles/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []int{1, 2, 3}, mockSvc.captured.TermNumbers)
}

func TestCycleGenerateAsyncAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &cycleServiceMock{response: &dto.GenerateCycleResponse{
		JobID:  "job-1",
		Status: service.CycleJobQueued,
	}}
	h := &CycleHandler{service: mockSvc}

	payload := []byte(`{"programId":"prog-1","termNumbers":[1,2],"async":true}`)
	req, _ := http.NewRequest(http.MethodPost, "/cycles/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.True(t, mockSvc.captured.Async)
}

func TestCycleGenerateMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &CycleHandler{service: &cycleServiceMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/cycles/generate", bytes.NewReader([]byte(`{"programId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCycleGetJob(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &cycleServiceMock{}
	h := &CycleHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodGet, "/cycles/jobs/job-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	h.GetJob(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "job-1", mockSvc.jobID)
}

func TestCycleGetJobNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &CycleHandler{service: &cycleServiceMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/cycles/jobs/missing", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.GetJob(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
