package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type cycleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateCycleRequest) (*dto.GenerateCycleResponse, error)
	GetJob(jobID string) (*dto.GenerateCycleResponse, error)
}

// CycleHandler exposes multi-term cycle generation endpoints.
type CycleHandler struct {
	service cycleGenerator
}

// NewCycleHandler constructs the handler.
func NewCycleHandler(svc *service.CycleService) *CycleHandler {
	return &CycleHandler{service: svc}
}

// Generate godoc
// @Summary Generate timetables for several terms of one program
// @Description Runs inline by default. With async=true the run is queued and the response carries a job id to poll.
// @Tags Cycles
// @Accept json
// @Produce json
// @Param payload body dto.GenerateCycleRequest true "Generate cycle payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /cycles/generate [post]
func (h *CycleHandler) Generate(c *gin.Context) {
	var req dto.GenerateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cycle payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Status == service.CycleJobQueued {
		status = http.StatusAccepted
	}
	response.JSON(c, status, result, nil)
}

// GetJob godoc
// @Summary Poll a queued cycle generation run
// @Tags Cycles
// @Produce json
// @Param id path string true "Cycle job ID"
// @Success 200 {object} response.Envelope
// @Router /cycles/jobs/{id} [get]
func (h *CycleHandler) GetJob(c *gin.Context) {
	result, err := h.service.GetJob(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
