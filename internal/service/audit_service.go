package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/engine"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type timetableSlotReader interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
}

type resourceCatalog interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListFaculty(ctx context.Context) ([]models.Faculty, error)
}

// AuditService re-checks stored or ad-hoc timetables against the hard rules.
type AuditService struct {
	timetables timetableSlotReader
	resources  resourceCatalog
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAuditService wires audit dependencies.
func NewAuditService(timetables timetableSlotReader, resources resourceCatalog, validate *validator.Validate, logger *zap.Logger) *AuditService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{timetables: timetables, resources: resources, validator: validate, logger: logger}
}

// Audit resolves the slot payload, runs every conflict check and returns the
// full report. Auditing never fails on a conflicted timetable; conflicts are
// the result, not an error.
func (s *AuditService) Audit(ctx context.Context, req dto.AuditTimetableRequest) (*dto.AuditTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid audit payload")
	}

	slots := req.Slots
	if req.TimetableID != "" {
		if _, err := s.timetables.FindByID(ctx, req.TimetableID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
		}
		stored, err := s.timetables.ListSlots(ctx, req.TimetableID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable slots")
		}
		slots = stored
	}

	rooms, err := s.resources.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room catalog")
	}
	faculty, err := s.resources.ListFaculty(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty catalog")
	}

	report := engine.Audit(slots, rooms, faculty)
	if len(report.Conflicts) > 0 {
		s.logger.Info("timetable audit found conflicts",
			zap.String("timetable_id", req.TimetableID),
			zap.Int("conflicts", len(report.Conflicts)),
			zap.Int("hard", report.HardConflicts()))
	}

	return &dto.AuditTimetableResponse{
		Conflicts:            report.Conflicts,
		SuggestedResolutions: report.SuggestedResolutions,
		HardConflicts:        report.HardConflicts(),
		TotalConflicts:       len(report.Conflicts),
	}, nil
}
