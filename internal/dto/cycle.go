package dto

import "github.com/noah-isme/uni-timetable-api/internal/engine"

// GenerateCycleRequest schedules several terms of one program in a single run
// so cross-term resource contention is scored explicitly.
type GenerateCycleRequest struct {
	ProgramID    string            `json:"programId" validate:"required"`
	TermNumbers  []int             `json:"termNumbers" validate:"required,min=1,max=8,dive,min=1,max=12"`
	Alternatives int               `json:"alternatives" validate:"omitempty,min=1,max=10"`
	ParetoLimit  int               `json:"paretoLimit" validate:"omitempty,min=1,max=50"`
	Settings     *SolverSettings   `json:"settings" validate:"omitempty"`
	Weights      *ObjectiveWeights `json:"weights" validate:"omitempty"`
	Async        bool              `json:"async"`
}

// GenerateCycleResponse returns the finished cycle, or the job handle when the
// run was queued.
type GenerateCycleResponse struct {
	JobID  string              `json:"jobId,omitempty"`
	Status string              `json:"status"`
	Result *engine.CycleResult `json:"result,omitempty"`
}
