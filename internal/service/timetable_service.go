package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/engine"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type snapshotLoader interface {
	Load(ctx context.Context, programID string) (engine.Snapshot, error)
}

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	ReplaceSlots(ctx context.Context, exec sqlx.ExtContext, timetableID string, slots []models.TimetableSlot) error
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListByProgramTerm(ctx context.Context, programID string, termNumber int) ([]models.Timetable, error)
	ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error
	Delete(ctx context.Context, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableService drives the generation engine and persists chosen results.
type TimetableService struct {
	snapshots  snapshotLoader
	timetables timetableRepository
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	engineCfg  config.EngineConfig
	store      *proposalStore
}

// NewTimetableService wires generation dependencies.
func NewTimetableService(
	snapshots snapshotLoader,
	timetables timetableRepository,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	engineCfg config.EngineConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engineCfg.ProposalTTL <= 0 {
		engineCfg.ProposalTTL = 30 * time.Minute
	}
	if engineCfg.Alternatives <= 0 {
		engineCfg.Alternatives = 3
	}
	return &TimetableService{
		snapshots:  snapshots,
		timetables: timetables,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		engineCfg:  engineCfg,
		store:      newProposalStore(engineCfg.ProposalTTL),
	}
}

// Generate compiles the term, solves the requested number of independently
// seeded alternatives and parks them in the proposal store until one is saved.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	snap, err := s.snapshots.Load(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling snapshot")
	}

	settings := s.buildSettings(req.Settings, req.Weights)
	problem, err := engine.CompileRequests(snap, req.TermNumber, settings.Weights)
	if err != nil {
		var structural *engine.StructuralError
		if errors.As(err, &structural) {
			return nil, appErrors.Wrap(err, appErrors.ErrInfeasible.Code, appErrors.ErrInfeasible.Status, structural.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compile scheduling problem")
	}

	alternatives := req.Alternatives
	if alternatives <= 0 {
		alternatives = s.engineCfg.Alternatives
	}

	solutions := s.solveAlternatives(problem, settings, alternatives)

	proposal := timetableProposal{
		ProposalID:   uuid.NewString(),
		ProgramID:    req.ProgramID,
		TermNumber:   req.TermNumber,
		Strategy:     string(settings.Strategy),
		Alternatives: solutions,
		Problem:      problem,
		RequestedAt:  time.Now().UTC(),
	}
	s.store.Save(proposal)

	resp := &dto.GenerateTimetableResponse{
		ProposalID:   proposal.ProposalID,
		ProgramID:    req.ProgramID,
		TermNumber:   req.TermNumber,
		Strategy:     proposal.Strategy,
		Alternatives: make([]dto.TimetableAlternative, 0, len(solutions)),
		ExpiresAt:    proposal.RequestedAt.Add(s.engineCfg.ProposalTTL),
	}
	for _, alt := range solutions {
		resp.Alternatives = append(resp.Alternatives, alt.DTO)
	}
	return resp, nil
}

type rankedSolution struct {
	DTO   dto.TimetableAlternative
	Genes []int
}

// solveAlternatives runs the solver once per alternative on derived seeds and
// returns the results best first. Determinism per seed is preserved so the
// same request with the same seed reproduces its alternatives exactly.
func (s *TimetableService) solveAlternatives(problem *engine.Problem, settings engine.GenerationSettings, count int) []rankedSolution {
	solutions := make([]rankedSolution, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			altSettings := settings
			altSettings.RandomSeed = settings.RandomSeed + int64(i)

			start := time.Now()
			sol := engine.Solve(problem, altSettings)
			if s.metrics != nil {
				s.metrics.ObserveSolverRun(string(altSettings.Strategy), sol.Eval.HardConflicts, time.Since(start))
			}

			solutions[i] = rankedSolution{
				DTO: dto.TimetableAlternative{
					Fitness:                sol.Eval.Fitness,
					HardConflicts:          sol.Eval.HardConflicts,
					SoftPenalty:            sol.Eval.SoftPenalty,
					Slots:                  engine.Decode(problem, sol.Genes),
					OccupancyMatrix:        engine.OccupancyMatrix(problem, sol.Genes),
					WorkloadGapSuggestions: engine.WorkloadGapSuggestions(problem, sol.Genes),
				},
				Genes: sol.Genes,
			}
		}(i)
	}
	wg.Wait()

	sort.SliceStable(solutions, func(a, b int) bool {
		ea := engine.EvaluationResult{HardConflicts: solutions[a].DTO.HardConflicts, SoftPenalty: solutions[a].DTO.SoftPenalty}
		eb := engine.EvaluationResult{HardConflicts: solutions[b].DTO.HardConflicts, SoftPenalty: solutions[b].DTO.SoftPenalty}
		return ea.Better(eb)
	})
	for i := range solutions {
		solutions[i].DTO.Rank = i + 1
	}
	return solutions
}

// Save persists one alternative of a held proposal as a new draft version.
// Publishing is refused while hard conflicts remain.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (*dto.SaveTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if req.AlternativeRank > len(proposal.Alternatives) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("proposal has only %d alternatives", len(proposal.Alternatives)))
	}
	chosen := proposal.Alternatives[req.AlternativeRank-1]
	if req.Publish && chosen.DTO.HardConflicts > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot publish a timetable with unresolved hard conflicts")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	txStart := time.Now()
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaPayload := map[string]any{
		"fitness":       chosen.DTO.Fitness,
		"hardConflicts": chosen.DTO.HardConflicts,
		"softPenalty":   chosen.DTO.SoftPenalty,
		"strategy":      proposal.Strategy,
		"generated":     proposal.RequestedAt,
	}
	metaBytes, marshalErr := json.Marshal(metaPayload)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
		return nil, err
	}

	record := &models.Timetable{
		ProgramID:  proposal.ProgramID,
		TermNumber: proposal.TermNumber,
		Status:     models.TimetableStatusDraft,
		Meta:       types.JSONText(metaBytes),
	}
	if err = s.timetables.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable version")
		return nil, err
	}

	slots := make([]models.TimetableSlot, len(chosen.DTO.Slots))
	copy(slots, chosen.DTO.Slots)
	for i := range slots {
		slots[i].ID = uuid.NewString()
		slots[i].TimetableID = record.ID
	}
	if err = s.timetables.ReplaceSlots(ctx, tx, record.ID, slots); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable slots")
		return nil, err
	}

	if req.Publish {
		if err = s.timetables.UpdateStatus(ctx, tx, record.ID, models.TimetableStatusPublished); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
			return nil, err
		}
		record.Status = models.TimetableStatusPublished
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return nil, err
	}
	s.metrics.ObserveDBQuery("timetable_save", time.Since(txStart))

	s.store.Delete(req.ProposalID)
	s.invalidateCache(ctx, proposal.ProgramID, proposal.TermNumber)

	return &dto.SaveTimetableResponse{Timetable: *record, Slots: slots}, nil
}

// List returns stored versions for a program-term tuple, newest first.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error) {
	if query.ProgramID == "" || query.TermNumber <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "programId and termNumber are required")
	}
	list, err := s.timetables.ListByProgramTerm(ctx, query.ProgramID, query.TermNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, nil
}

// Get loads a stored timetable with its slots, serving published versions from
// cache when caching is enabled. The bool reports whether the cache answered.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableDetailResponse, bool, error) {
	if id == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}

	cacheKey := timetableCacheKey(id)
	if s.cache.Enabled() {
		var cached dto.TimetableDetailResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, true, nil
		}
	}

	dbStart := time.Now()
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	slots, err := s.timetables.ListSlots(ctx, id)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable slots")
	}
	s.metrics.ObserveDBQuery("timetable_get", time.Since(dbStart))

	detail := &dto.TimetableDetailResponse{Timetable: *record, Slots: slots}
	if record.Status == models.TimetableStatusPublished {
		_ = s.cache.Set(ctx, cacheKey, detail, 0)
	}
	return detail, false, nil
}

// UpdateStatus moves a stored timetable through its lifecycle.
func (s *TimetableService) UpdateStatus(ctx context.Context, id string, req dto.UpdateTimetableStatusRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	status := models.TimetableStatus(req.Status)
	if record.Status == models.TimetableStatusArchived && status == models.TimetableStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrConflict, "archived timetables cannot be republished")
	}
	if err := s.timetables.UpdateStatus(ctx, nil, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable status")
	}
	record.Status = status
	s.invalidateCache(ctx, record.ProgramID, record.TermNumber)
	_ = s.cache.Invalidate(ctx, timetableCacheKey(id))
	return record, nil
}

// Delete removes a draft timetable version.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	return nil
}

func (s *TimetableService) buildSettings(override *dto.SolverSettings, weights *dto.ObjectiveWeights) engine.GenerationSettings {
	settings := engine.GenerationSettings{
		PopulationSize:      s.engineCfg.PopulationSize,
		Generations:         s.engineCfg.Generations,
		MutationRate:        s.engineCfg.MutationRate,
		CrossoverRate:       s.engineCfg.CrossoverRate,
		EliteCount:          s.engineCfg.EliteCount,
		TournamentSize:      s.engineCfg.TournamentSize,
		StagnationLimit:     s.engineCfg.StagnationLimit,
		AnnealingIterations: s.engineCfg.AnnealingIterations,
		InitialTemperature:  s.engineCfg.InitialTemperature,
		CoolingRate:         s.engineCfg.CoolingRate,
		Deadline:            s.engineCfg.SolveDeadline,
	}
	if override != nil {
		if override.Strategy != "" {
			settings.Strategy = engine.Strategy(override.Strategy)
		}
		if override.PopulationSize > 0 {
			settings.PopulationSize = override.PopulationSize
		}
		if override.Generations > 0 {
			settings.Generations = override.Generations
		}
		if override.MutationRate > 0 {
			settings.MutationRate = override.MutationRate
		}
		if override.CrossoverRate > 0 {
			settings.CrossoverRate = override.CrossoverRate
		}
		if override.EliteCount > 0 {
			settings.EliteCount = override.EliteCount
		}
		if override.TournamentSize > 0 {
			settings.TournamentSize = override.TournamentSize
		}
		if override.StagnationLimit > 0 {
			settings.StagnationLimit = override.StagnationLimit
		}
		if override.AnnealingIterations > 0 {
			settings.AnnealingIterations = override.AnnealingIterations
		}
		if override.InitialTemperature > 0 {
			settings.InitialTemperature = override.InitialTemperature
		}
		if override.CoolingRate > 0 {
			settings.CoolingRate = override.CoolingRate
		}
		settings.RandomSeed = override.RandomSeed
		if override.DeadlineSeconds > 0 {
			settings.Deadline = time.Duration(override.DeadlineSeconds) * time.Second
		}
	}
	if settings.RandomSeed == 0 {
		settings.RandomSeed = time.Now().UnixNano()
	}
	settings.Weights = buildWeights(weights)
	return settings.WithDefaults()
}

func buildWeights(override *dto.ObjectiveWeights) engine.ObjectiveWeights {
	weights := engine.DefaultWeights()
	if override == nil {
		return weights
	}
	if override.WorkloadOver > 0 {
		weights.WorkloadOver = override.WorkloadOver
	}
	if override.WorkloadUnder > 0 {
		weights.WorkloadUnder = override.WorkloadUnder
	}
	if override.BackToBack > 0 {
		weights.BackToBack = override.BackToBack
	}
	if override.SubjectPreference > 0 {
		weights.SubjectPreference = override.SubjectPreference
	}
	if override.DaySpread > 0 {
		weights.DaySpread = override.DaySpread
	}
	if override.Resource > 0 {
		weights.Resource = override.Resource
	}
	if override.FacultyPreference > 0 {
		weights.FacultyPreference = override.FacultyPreference
	}
	if override.WorkloadGap > 0 {
		weights.WorkloadGap = override.WorkloadGap
	}
	return weights
}

func (s *TimetableService) invalidateCache(ctx context.Context, programID string, termNumber int) {
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("timetables:%s:%d:*", programID, termNumber))
}

func timetableCacheKey(id string) string {
	return fmt.Sprintf("timetable:%s", id)
}

// --- Proposal cache ---

type timetableProposal struct {
	ProposalID   string
	ProgramID    string
	TermNumber   int
	Strategy     string
	Alternatives []rankedSolution
	Problem      *engine.Problem
	RequestedAt  time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]timetableProposal),
	}
}

func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
