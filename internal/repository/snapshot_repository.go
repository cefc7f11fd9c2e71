package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/uni-timetable-api/internal/engine"
	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// SnapshotRepository loads everything a solve needs in one immutable snapshot.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type roomRow struct {
	ID                  string         `db:"id"`
	Name                string         `db:"name"`
	Capacity            int            `db:"capacity"`
	Type                string         `db:"type"`
	AvailabilityWindows types.JSONText `db:"availability_windows"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

// ListRooms returns the full room catalog.
func (r *SnapshotRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, type, availability_windows, created_at, updated_at
FROM rooms ORDER BY name`
	var rows []roomRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	rooms := make([]models.Room, 0, len(rows))
	for _, row := range rows {
		room := models.Room{
			ID:        row.ID,
			Name:      row.Name,
			Capacity:  row.Capacity,
			Type:      models.RoomType(row.Type),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		if err := unmarshalJSONColumn(row.AvailabilityWindows, &room.AvailabilityWindows); err != nil {
			return nil, fmt.Errorf("room %s availability windows: %w", row.ID, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

type facultyRow struct {
	ID                       string         `db:"id"`
	Name                     string         `db:"name"`
	Department               string         `db:"department"`
	MaxHours                 int            `db:"max_hours"`
	WorkloadHours            int            `db:"workload_hours"`
	AvoidBackToBack          bool           `db:"avoid_back_to_back"`
	PreferredMinBreakMinutes int            `db:"preferred_min_break_minutes"`
	PreferredSubjectCodes    types.JSONText `db:"preferred_subject_codes"`
	SemesterPreferences      types.JSONText `db:"semester_preferences"`
	AvailabilityWindows      types.JSONText `db:"availability_windows"`
	Active                   bool           `db:"active"`
	CreatedAt                time.Time      `db:"created_at"`
	UpdatedAt                time.Time      `db:"updated_at"`
}

// ListFaculty returns every active and inactive instructor.
func (r *SnapshotRepository) ListFaculty(ctx context.Context) ([]models.Faculty, error) {
	const query = `SELECT id, name, department, max_hours, workload_hours, avoid_back_to_back,
preferred_min_break_minutes, preferred_subject_codes, semester_preferences, availability_windows,
active, created_at, updated_at
FROM faculty ORDER BY name`
	var rows []facultyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	faculty := make([]models.Faculty, 0, len(rows))
	for _, row := range rows {
		f := models.Faculty{
			ID:                       row.ID,
			Name:                     row.Name,
			Department:               row.Department,
			MaxHours:                 row.MaxHours,
			WorkloadHours:            row.WorkloadHours,
			AvoidBackToBack:          row.AvoidBackToBack,
			PreferredMinBreakMinutes: row.PreferredMinBreakMinutes,
			Active:                   row.Active,
			CreatedAt:                row.CreatedAt,
			UpdatedAt:                row.UpdatedAt,
		}
		if err := unmarshalJSONColumn(row.PreferredSubjectCodes, &f.PreferredSubjectCodes); err != nil {
			return nil, fmt.Errorf("faculty %s subject codes: %w", row.ID, err)
		}
		if err := unmarshalJSONColumn(row.SemesterPreferences, &f.SemesterPreferences); err != nil {
			return nil, fmt.Errorf("faculty %s semester preferences: %w", row.ID, err)
		}
		if err := unmarshalJSONColumn(row.AvailabilityWindows, &f.AvailabilityWindows); err != nil {
			return nil, fmt.Errorf("faculty %s availability windows: %w", row.ID, err)
		}
		faculty = append(faculty, f)
	}
	return faculty, nil
}

// ListCourses returns the course catalog.
func (r *SnapshotRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, code, name, type, credits, hours_per_week, theory_hours, lab_hours,
tutorial_hours, created_at, updated_at
FROM courses ORDER BY code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

type programRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Terms     types.JSONText `db:"terms"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// GetProgram loads a program with its full term-plan structure.
func (r *SnapshotRepository) GetProgram(ctx context.Context, programID string) (*models.ProgramStructure, error) {
	const query = `SELECT id, name, terms, created_at, updated_at FROM programs WHERE id = $1`
	var row programRow
	if err := r.db.GetContext(ctx, &row, query, programID); err != nil {
		return nil, err
	}
	program := &models.ProgramStructure{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := unmarshalJSONColumn(row.Terms, &program.Terms); err != nil {
		return nil, fmt.Errorf("program %s terms: %w", row.ID, err)
	}
	return program, nil
}

// ListConstraints returns per-term placement bounds.
func (r *SnapshotRepository) ListConstraints(ctx context.Context) ([]models.SemesterConstraint, error) {
	const query = `SELECT term_number, earliest_start_minute, latest_end_minute, max_hours_per_day,
max_hours_per_week, min_break_minutes, max_consecutive_hours
FROM semester_constraints ORDER BY term_number`
	var constraints []models.SemesterConstraint
	if err := r.db.SelectContext(ctx, &constraints, query); err != nil {
		return nil, fmt.Errorf("list semester constraints: %w", err)
	}
	return constraints, nil
}

type policyRow struct {
	PeriodMinutes      int            `db:"period_minutes"`
	LabContiguousSlots int            `db:"lab_contiguous_slots"`
	WorkingHours       types.JSONText `db:"working_hours"`
	BreakWindows       types.JSONText `db:"break_windows"`
}

// GetPolicy loads the institution-wide slot shaping policy.
func (r *SnapshotRepository) GetPolicy(ctx context.Context) (*models.SchedulePolicy, error) {
	const query = `SELECT period_minutes, lab_contiguous_slots, working_hours, break_windows
FROM schedule_policies ORDER BY updated_at DESC LIMIT 1`
	var row policyRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, err
	}
	policy := &models.SchedulePolicy{
		PeriodMinutes:      row.PeriodMinutes,
		LabContiguousSlots: row.LabContiguousSlots,
	}
	if err := unmarshalJSONColumn(row.WorkingHours, &policy.WorkingHours); err != nil {
		return nil, fmt.Errorf("policy working hours: %w", err)
	}
	if err := unmarshalJSONColumn(row.BreakWindows, &policy.BreakWindows); err != nil {
		return nil, fmt.Errorf("policy break windows: %w", err)
	}
	return policy, nil
}

// ListLocks returns pre-solve slot pins for the program.
func (r *SnapshotRepository) ListLocks(ctx context.Context, programID string) ([]models.SlotLock, error) {
	const query = `SELECT id, program_id, term_number, day_of_week, start_minute, end_minute,
section, course_id, batch, room_id, faculty_id
FROM slot_locks WHERE program_id = $1 ORDER BY id`
	var locks []models.SlotLock
	if err := r.db.SelectContext(ctx, &locks, query, programID); err != nil {
		return nil, fmt.Errorf("list slot locks: %w", err)
	}
	return locks, nil
}

// Load assembles the complete compile input for one program.
func (r *SnapshotRepository) Load(ctx context.Context, programID string) (engine.Snapshot, error) {
	var snap engine.Snapshot

	program, err := r.GetProgram(ctx, programID)
	if err != nil {
		return snap, err
	}
	snap.Program = *program

	if snap.Rooms, err = r.ListRooms(ctx); err != nil {
		return snap, err
	}
	if snap.Faculty, err = r.ListFaculty(ctx); err != nil {
		return snap, err
	}
	if snap.Courses, err = r.ListCourses(ctx); err != nil {
		return snap, err
	}
	if snap.Constraints, err = r.ListConstraints(ctx); err != nil {
		return snap, err
	}
	policy, err := r.GetPolicy(ctx)
	if err != nil {
		return snap, err
	}
	snap.Policy = *policy
	if snap.Locks, err = r.ListLocks(ctx, programID); err != nil {
		return snap, err
	}
	return snap, nil
}

func unmarshalJSONColumn(raw types.JSONText, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
