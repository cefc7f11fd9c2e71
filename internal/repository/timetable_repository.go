package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// TimetableRepository persists versioned generated timetables and their slots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a timetable assigning the next version for the
// program-term tuple.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.ProgramID == "" || timetable.TermNumber <= 0 {
		return fmt.Errorf("program_id and term_number are required")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.Status == "" {
		timetable.Status = models.TimetableStatusDraft
	}
	if len(timetable.Meta) == 0 {
		timetable.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE program_id = $1 AND term_number = $2`
	if err := sqlx.GetContext(ctx, target, &timetable.Version, nextVersionQuery, timetable.ProgramID, timetable.TermNumber); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetables (id, program_id, term_number, version, status, meta, created_at, updated_at)
VALUES (:id, :program_id, :term_number, :version, :status, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// ReplaceSlots rewrites the slot set of a timetable inside the caller's transaction.
func (r *TimetableRepository) ReplaceSlots(ctx context.Context, exec sqlx.ExtContext, timetableID string, slots []models.TimetableSlot) error {
	target := r.exec(exec)

	const deleteQuery = `DELETE FROM timetable_slots WHERE timetable_id = $1`
	if _, err := target.ExecContext(ctx, deleteQuery, timetableID); err != nil {
		return fmt.Errorf("clear timetable slots: %w", err)
	}

	const insertQuery = `
INSERT INTO timetable_slots (id, timetable_id, day_of_week, start_minute, end_minute, course_id,
course_code, section, batch, room_id, faculty_id, student_count, session_type, shared_group_id)
VALUES (:id, :timetable_id, :day_of_week, :start_minute, :end_minute, :course_id,
:course_code, :section, :batch, :room_id, :faculty_id, :student_count, :session_type, :shared_group_id)`
	for i := range slots {
		slot := slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.TimetableID = timetableID
		if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, slot); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}
	return nil
}

// FindByID loads a timetable header by its identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, program_id, term_number, version, status, meta, created_at, updated_at
FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListByProgramTerm returns all versions for the program-term tuple, newest first.
func (r *TimetableRepository) ListByProgramTerm(ctx context.Context, programID string, termNumber int) ([]models.Timetable, error) {
	const query = `SELECT id, program_id, term_number, version, status, meta, created_at, updated_at
FROM timetables WHERE program_id = $1 AND term_number = $2 ORDER BY version DESC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, programID, termNumber); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// ListSlots returns the ordered slot set of one timetable.
func (r *TimetableRepository) ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	const query = `SELECT id, timetable_id, day_of_week, start_minute, end_minute, course_id,
course_code, section, batch, room_id, faculty_id, student_count, session_type, shared_group_id
FROM timetable_slots WHERE timetable_id = $1 ORDER BY day_of_week, start_minute, section`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// UpdateStatus moves a timetable through its lifecycle. Publishing a version
// archives every other published version of the same program-term tuple.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	if status == models.TimetableStatusPublished {
		const demoteQuery = `UPDATE timetables SET status = $1, updated_at = $2
WHERE status = $3 AND id <> $4
AND program_id = (SELECT program_id FROM timetables WHERE id = $4)
AND term_number = (SELECT term_number FROM timetables WHERE id = $4)`
		if _, err := target.ExecContext(ctx, demoteQuery, models.TimetableStatusArchived, now, models.TimetableStatusPublished, id); err != nil {
			return fmt.Errorf("archive superseded timetables: %w", err)
		}
	}

	const query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := target.ExecContext(ctx, query, status, now, id)
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a stored timetable version and its slots.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const slotsQuery = `DELETE FROM timetable_slots WHERE timetable_id = $1`
	if _, err := r.db.ExecContext(ctx, slotsQuery, id); err != nil {
		return fmt.Errorf("delete timetable slots: %w", err)
	}

	const query = `DELETE FROM timetables WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
