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

type timetableAuditor interface {
	Audit(ctx context.Context, req dto.AuditTimetableRequest) (*dto.AuditTimetableResponse, error)
}

// AuditHandler exposes the conflict audit endpoint.
type AuditHandler struct {
	service timetableAuditor
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// Audit godoc
// @Summary Audit a stored or ad-hoc timetable for conflicts
// @Description Accepts either a timetable id or an inline slot list. Conflicts are reported in the payload, never as an error status.
// @Tags Audit
// @Accept json
// @Produce json
// @Param payload body dto.AuditTimetableRequest true "Audit payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/audit [post]
func (h *AuditHandler) Audit(c *gin.Context) {
	var req dto.AuditTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid audit payload"))
		return
	}
	result, err := h.service.Audit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
