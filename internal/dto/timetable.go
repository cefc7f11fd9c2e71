package dto

import (
	"time"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// SolverSettings overrides engine defaults for a single generation request.
type SolverSettings struct {
	Strategy            string  `json:"strategy" validate:"omitempty,oneof=auto fast genetic annealing hybrid"`
	PopulationSize      int     `json:"populationSize" validate:"omitempty,min=2,max=500"`
	Generations         int     `json:"generations" validate:"omitempty,min=1,max=10000"`
	MutationRate        float64 `json:"mutationRate" validate:"omitempty,gt=0,lt=1"`
	CrossoverRate       float64 `json:"crossoverRate" validate:"omitempty,gt=0,lte=1"`
	EliteCount          int     `json:"eliteCount" validate:"omitempty,min=1,max=20"`
	TournamentSize      int     `json:"tournamentSize" validate:"omitempty,min=2,max=16"`
	StagnationLimit     int     `json:"stagnationLimit" validate:"omitempty,min=1"`
	AnnealingIterations int     `json:"annealingIterations" validate:"omitempty,min=1,max=1000000"`
	InitialTemperature  float64 `json:"initialTemperature" validate:"omitempty,gt=0"`
	CoolingRate         float64 `json:"coolingRate" validate:"omitempty,gt=0,lt=1"`
	RandomSeed          int64   `json:"randomSeed"`
	DeadlineSeconds     int     `json:"deadlineSeconds" validate:"omitempty,min=1,max=300"`
}

// ObjectiveWeights tunes soft-penalty scoring for a single request.
type ObjectiveWeights struct {
	WorkloadOver      float64 `json:"workloadOver" validate:"omitempty,gt=0"`
	WorkloadUnder     float64 `json:"workloadUnder" validate:"omitempty,gt=0"`
	BackToBack        float64 `json:"backToBack" validate:"omitempty,gt=0"`
	SubjectPreference float64 `json:"subjectPreference" validate:"omitempty,gt=0"`
	DaySpread         float64 `json:"daySpread" validate:"omitempty,gt=0"`
	Resource          float64 `json:"resource" validate:"omitempty,gt=0"`
	FacultyPreference float64 `json:"facultyPreference" validate:"omitempty,gt=0"`
	WorkloadGap       float64 `json:"workloadGap" validate:"omitempty,gt=0"`
}

// GenerateTimetableRequest asks the engine for ranked timetable alternatives
// for one program term.
type GenerateTimetableRequest struct {
	ProgramID    string            `json:"programId" validate:"required"`
	TermNumber   int               `json:"termNumber" validate:"required,min=1,max=12"`
	Alternatives int               `json:"alternatives" validate:"omitempty,min=1,max=10"`
	Settings     *SolverSettings   `json:"settings" validate:"omitempty"`
	Weights      *ObjectiveWeights `json:"weights" validate:"omitempty"`
}

// TimetableAlternative is one ranked candidate timetable in a proposal.
type TimetableAlternative struct {
	Rank                   int                            `json:"rank"`
	Fitness                float64                        `json:"fitness"`
	HardConflicts          int                            `json:"hardConflicts"`
	SoftPenalty            float64                        `json:"softPenalty"`
	Slots                  []models.TimetableSlot         `json:"slots"`
	OccupancyMatrix        map[string]map[string][]string `json:"occupancyMatrix"`
	WorkloadGapSuggestions []string                       `json:"workloadGapSuggestions,omitempty"`
}

// GenerateTimetableResponse returns the proposal with its alternatives.
type GenerateTimetableResponse struct {
	ProposalID   string                 `json:"proposalId"`
	ProgramID    string                 `json:"programId"`
	TermNumber   int                    `json:"termNumber"`
	Strategy     string                 `json:"strategy"`
	Alternatives []TimetableAlternative `json:"alternatives"`
	ExpiresAt    time.Time              `json:"expiresAt"`
}

// SaveTimetableRequest persists one alternative of a held proposal.
type SaveTimetableRequest struct {
	ProposalID      string `json:"proposalId" validate:"required"`
	AlternativeRank int    `json:"alternativeRank" validate:"required,min=1"`
	Publish         bool   `json:"publish"`
}

// SaveTimetableResponse returns the stored timetable with its slots.
type SaveTimetableResponse struct {
	Timetable models.Timetable       `json:"timetable"`
	Slots     []models.TimetableSlot `json:"slots"`
}

// TimetableQuery filters stored timetables by program and term.
type TimetableQuery struct {
	ProgramID  string `form:"programId" json:"programId"`
	TermNumber int    `form:"termNumber" json:"termNumber"`
}

// UpdateTimetableStatusRequest moves a stored timetable through its lifecycle.
type UpdateTimetableStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// TimetableDetailResponse pairs a stored timetable header with its slots.
type TimetableDetailResponse struct {
	Timetable models.Timetable       `json:"timetable"`
	Slots     []models.TimetableSlot `json:"slots"`
}
