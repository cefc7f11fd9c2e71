package engine

import (
	"time"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// SlotSegment is one discrete teaching period within a day.
type SlotSegment struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// DayGrid maps an ISO day number to its ordered slot segments.
type DayGrid map[int][]SlotSegment

// Days returns the enabled days in ascending order.
func (g DayGrid) Days() []int {
	days := make([]int, 0, len(g))
	for d := 1; d <= 7; d++ {
		if len(g[d]) > 0 {
			days = append(days, d)
		}
	}
	return days
}

// PlacementOption is one precomputed hard-feasible candidate placement.
type PlacementOption struct {
	Day        int    `json:"day"`
	StartIndex int    `json:"start_index"`
	RoomID     string `json:"room_id"`
	FacultyID  string `json:"faculty_id"`
}

// BlockRequest is one indivisible scheduling demand with its candidate placements.
// Requests and their options are immutable once compiled.
type BlockRequest struct {
	ID                   string
	CourseID             string
	CourseCode           string
	Section              string
	Batch                string
	StudentCount         int
	PrimaryFacultyID     string
	PreferredFacultyIDs  []string
	BlockSize            int
	IsLab                bool
	SessionType          models.SessionType
	AllowParallelBatches bool
	BatchGroupKey        string
	SharedGroupKey       string
	RoomCandidateIDs     []string
	Options              []PlacementOption
}

// Problem is the compiled, immutable input of one solve invocation.
type Problem struct {
	ProgramID  string
	TermNumber int
	Policy     models.SchedulePolicy
	Constraint models.SemesterConstraint
	Grid       DayGrid
	Requests   []BlockRequest

	// FixedGenes maps request index to the option index forced by a slot lock.
	FixedGenes map[int]int
	// ElectivePairs lists request index pairs that must not overlap in time.
	ElectivePairs [][2]int
	// BatchGroups maps a parallel-lab group key to its member request indices.
	BatchGroups map[string][]int
	// SharedGroups maps a shared-lecture group key to its member request indices.
	SharedGroups map[string][]int

	Rooms   map[string]models.Room
	Faculty map[string]models.Faculty
	Weights ObjectiveWeights
}

// EvaluationResult scores one complete gene vector.
type EvaluationResult struct {
	Fitness       float64 `json:"fitness"`
	HardConflicts int     `json:"hard_conflicts"`
	SoftPenalty   float64 `json:"soft_penalty"`
}

// Better reports whether r beats other: fewer hard conflicts first, then lower soft penalty.
func (r EvaluationResult) Better(other EvaluationResult) bool {
	if r.HardConflicts != other.HardConflicts {
		return r.HardConflicts < other.HardConflicts
	}
	return r.SoftPenalty < other.SoftPenalty
}

// Solution is the best gene vector a strategy found plus its score.
type Solution struct {
	Genes []int
	Eval  EvaluationResult
}

// Strategy selects the search algorithm for one solve.
type Strategy string

const (
	StrategyAuto      Strategy = "auto"
	StrategyFast      Strategy = "fast"
	StrategyGenetic   Strategy = "genetic"
	StrategyAnnealing Strategy = "annealing"
	StrategyHybrid    Strategy = "hybrid"
)

// autoFastThreshold is the request count below which auto picks the fast strategy.
const autoFastThreshold = 30

// ObjectiveWeights tunes the per-violation-kind scoring.
type ObjectiveWeights struct {
	Hard              float64 `json:"hard"`
	WorkloadOver      float64 `json:"workload_over"`
	WorkloadUnder     float64 `json:"workload_under"`
	BackToBack        float64 `json:"back_to_back"`
	SubjectPreference float64 `json:"subject_preference"`
	DaySpread         float64 `json:"day_spread"`

	// Cross-term scalarization weights used by the cycle orchestrator.
	Resource          float64 `json:"resource"`
	FacultyPreference float64 `json:"faculty_preference"`
	WorkloadGap       float64 `json:"workload_gap"`
}

// DefaultWeights returns the stock objective weighting.
func DefaultWeights() ObjectiveWeights {
	return ObjectiveWeights{
		Hard:              10000,
		WorkloadOver:      4,
		WorkloadUnder:     1,
		BackToBack:        2,
		SubjectPreference: 3,
		DaySpread:         1,
		Resource:          100,
		FacultyPreference: 5,
		WorkloadGap:       1,
	}
}

func (w ObjectiveWeights) withDefaults() ObjectiveWeights {
	d := DefaultWeights()
	if w.Hard <= 0 {
		w.Hard = d.Hard
	}
	if w.WorkloadOver <= 0 {
		w.WorkloadOver = d.WorkloadOver
	}
	if w.WorkloadUnder <= 0 {
		w.WorkloadUnder = d.WorkloadUnder
	}
	if w.BackToBack <= 0 {
		w.BackToBack = d.BackToBack
	}
	if w.SubjectPreference <= 0 {
		w.SubjectPreference = d.SubjectPreference
	}
	if w.DaySpread <= 0 {
		w.DaySpread = d.DaySpread
	}
	if w.Resource <= 0 {
		w.Resource = d.Resource
	}
	if w.FacultyPreference <= 0 {
		w.FacultyPreference = d.FacultyPreference
	}
	if w.WorkloadGap <= 0 {
		w.WorkloadGap = d.WorkloadGap
	}
	return w
}

// GenerationSettings is the immutable configuration for one solve.
type GenerationSettings struct {
	Strategy            Strategy      `json:"strategy"`
	PopulationSize      int           `json:"population_size"`
	Generations         int           `json:"generations"`
	MutationRate        float64       `json:"mutation_rate"`
	CrossoverRate       float64       `json:"crossover_rate"`
	EliteCount          int           `json:"elite_count"`
	TournamentSize      int           `json:"tournament_size"`
	StagnationLimit     int           `json:"stagnation_limit"`
	AnnealingIterations int           `json:"annealing_iterations"`
	InitialTemperature  float64       `json:"initial_temperature"`
	CoolingRate         float64       `json:"cooling_rate"`
	RandomSeed          int64         `json:"random_seed"`
	CandidateCap        int           `json:"candidate_cap"`
	RCLAlpha            float64       `json:"rcl_alpha"`
	Deadline            time.Duration `json:"deadline"`
	Weights             ObjectiveWeights
}

// WithDefaults fills unset fields with the stock tuning.
func (s GenerationSettings) WithDefaults() GenerationSettings {
	if s.Strategy == "" {
		s.Strategy = StrategyAuto
	}
	if s.PopulationSize <= 0 {
		s.PopulationSize = 40
	}
	if s.Generations <= 0 {
		s.Generations = 120
	}
	if s.MutationRate <= 0 {
		s.MutationRate = 0.08
	}
	if s.CrossoverRate <= 0 {
		s.CrossoverRate = 0.85
	}
	if s.EliteCount <= 0 {
		s.EliteCount = 2
	}
	if s.TournamentSize <= 0 {
		s.TournamentSize = 3
	}
	if s.StagnationLimit <= 0 {
		s.StagnationLimit = 25
	}
	if s.AnnealingIterations <= 0 {
		s.AnnealingIterations = 4000
	}
	if s.InitialTemperature <= 0 {
		s.InitialTemperature = 50
	}
	if s.CoolingRate <= 0 || s.CoolingRate >= 1 {
		s.CoolingRate = 0.995
	}
	if s.CandidateCap <= 0 {
		s.CandidateCap = 64
	}
	if s.Deadline <= 0 {
		s.Deadline = 10 * time.Second
	}
	s.Weights = s.Weights.withDefaults()
	return s
}
