package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/engine"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/jobs"
)

// Cycle job lifecycle states.
const (
	CycleJobQueued    = "QUEUED"
	CycleJobRunning   = "RUNNING"
	CycleJobCompleted = "COMPLETED"
	CycleJobFailed    = "FAILED"
)

type cyclePayload struct {
	JobID    string
	Snapshot engine.Snapshot
	Terms    []int
	Settings engine.CycleSettings
}

type cycleJobState struct {
	Status string
	Result *engine.CycleResult
	Err    string
}

// CycleService orchestrates multi-term generation runs, synchronously or via
// the background queue.
type CycleService struct {
	snapshots snapshotLoader
	validator *validator.Validate
	logger    *zap.Logger
	engineCfg config.EngineConfig
	cycleCfg  config.CycleConfig

	queue *jobs.Queue

	mu   sync.RWMutex
	runs map[string]cycleJobState
}

// NewCycleService wires cycle dependencies. Start must be called before async
// runs are accepted.
func NewCycleService(snapshots snapshotLoader, validate *validator.Validate, logger *zap.Logger, engineCfg config.EngineConfig, cycleCfg config.CycleConfig) *CycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CycleService{
		snapshots: snapshots,
		validator: validate,
		logger:    logger,
		engineCfg: engineCfg,
		cycleCfg:  cycleCfg,
		runs:      make(map[string]cycleJobState),
	}
	s.queue = jobs.NewQueue("cycle-generation", s.handleJob, jobs.QueueConfig{
		Workers:    cycleCfg.JobWorkers,
		MaxRetries: cycleCfg.JobRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the background workers.
func (s *CycleService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the background workers.
func (s *CycleService) Stop() {
	s.queue.Stop()
}

// Generate runs the cycle inline, or enqueues it and returns the job handle
// when the request (or configuration) asks for async execution.
func (s *CycleService) Generate(ctx context.Context, req dto.GenerateCycleRequest) (*dto.GenerateCycleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cycle generation payload")
	}

	snap, err := s.snapshots.Load(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling snapshot")
	}

	settings := s.buildCycleSettings(req)

	if req.Async || s.cycleCfg.Async {
		jobID := uuid.NewString()
		s.setState(jobID, cycleJobState{Status: CycleJobQueued})
		err := s.queue.Enqueue(jobs.Job{
			ID:   jobID,
			Type: "generate_cycle",
			Payload: cyclePayload{
				JobID:    jobID,
				Snapshot: snap,
				Terms:    req.TermNumbers,
				Settings: settings,
			},
		})
		if err != nil {
			s.deleteState(jobID)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue cycle run")
		}
		return &dto.GenerateCycleResponse{JobID: jobID, Status: CycleJobQueued}, nil
	}

	result, err := engine.GenerateCycle(snap, req.TermNumbers, settings)
	if err != nil {
		var structural *engine.StructuralError
		if errors.As(err, &structural) {
			return nil, appErrors.Wrap(err, appErrors.ErrInfeasible.Code, appErrors.ErrInfeasible.Status, structural.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "cycle generation failed")
	}
	return &dto.GenerateCycleResponse{Status: CycleJobCompleted, Result: result}, nil
}

// GetJob reports the state of a queued cycle run.
func (s *CycleService) GetJob(jobID string) (*dto.GenerateCycleResponse, error) {
	if jobID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "job id is required")
	}
	s.mu.RLock()
	state, ok := s.runs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle job not found")
	}
	resp := &dto.GenerateCycleResponse{JobID: jobID, Status: state.Status, Result: state.Result}
	return resp, nil
}

func (s *CycleService) handleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(cyclePayload)
	if !ok {
		s.logger.Error("cycle job carries unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	s.setState(payload.JobID, cycleJobState{Status: CycleJobRunning})

	start := time.Now()
	result, err := engine.GenerateCycle(payload.Snapshot, payload.Terms, payload.Settings)
	if err != nil {
		s.setState(payload.JobID, cycleJobState{Status: CycleJobFailed, Err: err.Error()})
		var structural *engine.StructuralError
		if errors.As(err, &structural) {
			// Structural failures never succeed on retry.
			return nil
		}
		return err
	}
	s.setState(payload.JobID, cycleJobState{Status: CycleJobCompleted, Result: result})
	s.logger.Info("cycle generation completed",
		zap.String("job_id", payload.JobID),
		zap.Ints("terms", payload.Terms),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (s *CycleService) buildCycleSettings(req dto.GenerateCycleRequest) engine.CycleSettings {
	generation := engine.GenerationSettings{
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
	settings := engine.CycleSettings{
		GenerationSettings: generation,
		Alternatives:       s.cycleCfg.Alternatives,
		ParetoLimit:        s.cycleCfg.ParetoLimit,
		Workers:            s.cycleCfg.Workers,
	}
	if req.Alternatives > 0 {
		settings.Alternatives = req.Alternatives
	}
	if req.ParetoLimit > 0 {
		settings.ParetoLimit = req.ParetoLimit
	}
	if req.Settings != nil {
		if req.Settings.Strategy != "" {
			settings.Strategy = engine.Strategy(req.Settings.Strategy)
		}
		if req.Settings.PopulationSize > 0 {
			settings.PopulationSize = req.Settings.PopulationSize
		}
		if req.Settings.Generations > 0 {
			settings.Generations = req.Settings.Generations
		}
		if req.Settings.AnnealingIterations > 0 {
			settings.AnnealingIterations = req.Settings.AnnealingIterations
		}
		if req.Settings.DeadlineSeconds > 0 {
			settings.Deadline = time.Duration(req.Settings.DeadlineSeconds) * time.Second
		}
		settings.RandomSeed = req.Settings.RandomSeed
	}
	if settings.RandomSeed == 0 {
		settings.RandomSeed = time.Now().UnixNano()
	}
	settings.Weights = buildWeights(req.Weights)
	return settings
}

func (s *CycleService) setState(jobID string, state cycleJobState) {
	s.mu.Lock()
	s.runs[jobID] = state
	s.mu.Unlock()
}

func (s *CycleService) deleteState(jobID string) {
	s.mu.Lock()
	delete(s.runs, jobID)
	s.mu.Unlock()
}
