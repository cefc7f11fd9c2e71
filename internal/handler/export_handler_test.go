package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type exportServiceMock struct {
	timetableID string
	format      string
	parseErr    error
	relPath     string
	openDir     string
}

func (m *exportServiceMock) Generate(ctx context.Context, timetableID, format string) (*service.ExportResult, error) {
	m.timetableID = timetableID
	m.format = format
	return &service.ExportResult{
		RelativePath: "2026/01/tt.csv",
		Token:        "signed-token",
		URL:          "/api/v1/exports/signed-token",
		Format:       format,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (m *exportServiceMock) ParseToken(token string, allowExpired bool) (string, string, time.Time, error) {
	if m.parseErr != nil {
		return "", "", time.Time{}, m.parseErr
	}
	return "tt-1", m.relPath, time.Now().Add(time.Hour), nil
}

func (m *exportServiceMock) Open(relPath string) (*os.File, error) {
	return os.Open(filepath.Join(m.openDir, relPath))
}

func TestExportTimetableCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{}
	h := &ExportHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodGet, "/timetables/tt-1/export?format=csv", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "tt-1", mockSvc.timetableID)
	require.Equal(t, "csv", mockSvc.format)
	require.Contains(t, w.Body.String(), "signed-token")
}

func TestExportMissingFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &ExportHandler{service: &exportServiceMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/timetables/tt-1/export", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	h.Export(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadServesFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tt.csv"), []byte("Day,Start\nMonday,09:00\n"), 0o644))
	mockSvc := &exportServiceMock{relPath: "tt.csv", openDir: dir}
	h := &ExportHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodGet, "/exports/signed-token", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "signed-token"}}

	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), "Monday")
}

func TestDownloadRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{parseErr: appErrors.Clone(appErrors.ErrValidation, "signature mismatch")}
	h := &ExportHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodGet, "/exports/tampered", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "tampered"}}

	h.Download(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}
