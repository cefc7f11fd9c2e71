package engine

import (
	"sort"
	"sync"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// CycleSettings configures one multi-term generation cycle.
type CycleSettings struct {
	GenerationSettings
	// Alternatives is how many independently seeded solutions each term gets.
	Alternatives int `json:"alternatives"`
	// ParetoLimit caps the non-dominated combinations kept in the response.
	ParetoLimit int `json:"pareto_limit"`
	// Workers bounds the goroutines solving term alternatives concurrently.
	Workers int `json:"workers"`
}

// WithDefaults fills unset cycle fields with the stock tuning.
func (s CycleSettings) WithDefaults() CycleSettings {
	s.GenerationSettings = s.GenerationSettings.WithDefaults()
	if s.Alternatives <= 0 {
		s.Alternatives = 3
	}
	if s.ParetoLimit <= 0 {
		s.ParetoLimit = 5
	}
	if s.Workers <= 0 {
		s.Workers = 4
	}
	return s
}

// TermAlternative is one ranked solution for a single term.
type TermAlternative struct {
	TermNumber             int                            `json:"term_number"`
	Rank                   int                            `json:"rank"`
	Fitness                float64                        `json:"fitness"`
	HardConflicts          int                            `json:"hard_conflicts"`
	SoftPenalty            float64                        `json:"soft_penalty"`
	Slots                  []models.TimetableSlot         `json:"slots"`
	OccupancyMatrix        map[string]map[string][]string `json:"occupancy_matrix"`
	WorkloadGapSuggestions []string                       `json:"workload_gap_suggestions"`

	genes   []int
	problem *Problem
}

// TermResult holds a term's alternatives, best first.
type TermResult struct {
	TermNumber   int               `json:"term_number"`
	Alternatives []TermAlternative `json:"alternatives"`
}

// CycleCombination picks one alternative rank per term and carries the
// cross-term penalties of that choice.
type CycleCombination struct {
	Rank                     int         `json:"rank"`
	AlternativeRanks         map[int]int `json:"alternative_ranks"`
	HardConflicts            int         `json:"hard_conflicts"`
	ResourcePenalty          float64     `json:"resource_penalty"`
	FacultyPreferencePenalty float64     `json:"faculty_preference_penalty"`
	WorkloadGapPenalty       float64     `json:"workload_gap_penalty"`
	Scalar                   float64     `json:"scalar"`
}

// CycleResult is the full multi-term response.
type CycleResult struct {
	TermNumbers          []int              `json:"term_numbers"`
	Terms                []TermResult       `json:"terms"`
	ParetoFront          []CycleCombination `json:"pareto_front"`
	SelectedSolutionRank int                `json:"selected_solution_rank"`
}

// maxCombinations bounds the cross-term product enumerated during the Pareto
// reduction; per-term alternative counts are trimmed until under the cap.
const maxCombinations = 20000

// GenerateCycle solves every requested term independently, each alternative on
// its own derived seed, then reduces the cross product of per-term choices to
// a Pareto front over cross-term penalties. Per-term solves run concurrently;
// the final reduction is a single-threaded pure read.
func GenerateCycle(snap Snapshot, terms []int, settings CycleSettings) (*CycleResult, error) {
	s := settings.WithDefaults()

	problems := make(map[int]*Problem, len(terms))
	for _, term := range terms {
		p, err := CompileRequests(snap, term, s.Weights)
		if err != nil {
			return nil, err
		}
		problems[term] = p
	}

	type job struct {
		term     int
		altIndex int
	}
	jobs := make([]job, 0, len(terms)*s.Alternatives)
	for _, term := range terms {
		for alt := 0; alt < s.Alternatives; alt++ {
			jobs = append(jobs, job{term: term, altIndex: alt})
		}
	}

	solutions := make([]TermAlternative, len(jobs))
	sem := make(chan struct{}, s.Workers)
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			p := problems[j.term]
			altSettings := s.GenerationSettings
			altSettings.RandomSeed = s.RandomSeed + int64(j.term)*1000 + int64(j.altIndex)
			sol := Solve(p, altSettings)
			solutions[i] = TermAlternative{
				TermNumber:             j.term,
				Fitness:                sol.Eval.Fitness,
				HardConflicts:          sol.Eval.HardConflicts,
				SoftPenalty:            sol.Eval.SoftPenalty,
				Slots:                  Decode(p, sol.Genes),
				OccupancyMatrix:        OccupancyMatrix(p, sol.Genes),
				WorkloadGapSuggestions: WorkloadGapSuggestions(p, sol.Genes),
				genes:                  sol.Genes,
				problem:                p,
			}
		}(i, j)
	}
	wg.Wait()

	result := &CycleResult{TermNumbers: append([]int(nil), terms...)}
	for _, term := range terms {
		var alts []TermAlternative
		for _, sol := range solutions {
			if sol.TermNumber == term {
				alts = append(alts, sol)
			}
		}
		sort.SliceStable(alts, func(a, b int) bool {
			ea := EvaluationResult{HardConflicts: alts[a].HardConflicts, SoftPenalty: alts[a].SoftPenalty}
			eb := EvaluationResult{HardConflicts: alts[b].HardConflicts, SoftPenalty: alts[b].SoftPenalty}
			return ea.Better(eb)
		})
		for i := range alts {
			alts[i].Rank = i + 1
		}
		result.Terms = append(result.Terms, TermResult{TermNumber: term, Alternatives: alts})
	}

	front := paretoFront(result.Terms, s)
	if len(front) > s.ParetoLimit {
		front = front[:s.ParetoLimit]
	}
	result.ParetoFront = front
	if len(front) > 0 {
		result.SelectedSolutionRank = front[0].Rank
	}
	return result, nil
}

// paretoFront enumerates combinations of per-term alternatives, scores their
// cross-term penalties and keeps the non-dominated set, ranked by the
// scalarized weighting.
func paretoFront(terms []TermResult, s CycleSettings) []CycleCombination {
	if len(terms) == 0 {
		return nil
	}

	// Trim per-term alternative counts until the cross product fits the cap.
	counts := make([]int, len(terms))
	for i, tr := range terms {
		counts[i] = len(tr.Alternatives)
		if counts[i] == 0 {
			return nil
		}
	}
	for product(counts) > maxCombinations {
		widest := 0
		for i := range counts {
			if counts[i] > counts[widest] {
				widest = i
			}
		}
		if counts[widest] <= 1 {
			break
		}
		counts[widest]--
	}

	var combos []CycleCombination
	pick := make([]int, len(terms))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(terms) {
			combos = append(combos, scoreCombination(terms, pick, s.Weights))
			return
		}
		for i := 0; i < counts[depth]; i++ {
			pick[depth] = i
			walk(depth + 1)
		}
	}
	walk(0)

	var front []CycleCombination
	for i, c := range combos {
		dominated := false
		for j, other := range combos {
			if i != j && dominates(other, c) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, c)
		}
	}

	sort.SliceStable(front, func(a, b int) bool {
		if front[a].HardConflicts != front[b].HardConflicts {
			return front[a].HardConflicts < front[b].HardConflicts
		}
		return front[a].Scalar < front[b].Scalar
	})
	for i := range front {
		front[i].Rank = i + 1
	}
	return front
}

func product(counts []int) int {
	p := 1
	for _, c := range counts {
		p *= c
		if p > maxCombinations {
			return p
		}
	}
	return p
}

// dominates reports whether a is at least as good as b on every penalty
// dimension and strictly better on at least one.
func dominates(a, b CycleCombination) bool {
	if a.HardConflicts > b.HardConflicts ||
		a.ResourcePenalty > b.ResourcePenalty ||
		a.FacultyPreferencePenalty > b.FacultyPreferencePenalty ||
		a.WorkloadGapPenalty > b.WorkloadGapPenalty {
		return false
	}
	return a.HardConflicts < b.HardConflicts ||
		a.ResourcePenalty < b.ResourcePenalty ||
		a.FacultyPreferencePenalty < b.FacultyPreferencePenalty ||
		a.WorkloadGapPenalty < b.WorkloadGapPenalty
}

// scoreCombination computes cross-term penalties for one choice of per-term
// alternatives. Resource penalty counts faculty and room double-use across
// terms; faculty preference counts assignments into terms the faculty did not
// opt into; workload gap sums per-faculty distance from target hours over the
// whole cycle.
func scoreCombination(terms []TermResult, pick []int, w ObjectiveWeights) CycleCombination {
	combo := CycleCombination{AlternativeRanks: make(map[int]int, len(terms))}

	var all []models.TimetableSlot
	facultyMinutes := make(map[string]int)
	faculty := make(map[string]models.Faculty)
	for i, tr := range terms {
		alt := tr.Alternatives[pick[i]]
		combo.AlternativeRanks[tr.TermNumber] = alt.Rank
		combo.HardConflicts += alt.HardConflicts

		for _, slot := range alt.Slots {
			all = append(all, slot)
			facultyMinutes[slot.FacultyID] += slot.EndMinute - slot.StartMinute
		}
		for id, f := range alt.problem.Faculty {
			faculty[id] = f
			if f.Active && !f.PrefersTerm(tr.TermNumber) {
				taught := false
				for _, slot := range alt.Slots {
					if slot.FacultyID == id {
						taught = true
						break
					}
				}
				if taught {
					combo.FacultyPreferencePenalty++
				}
			}
		}
	}

	// Cross-term resource reuse: same faculty or room, overlapping time, slots
	// from different terms. Within-term conflicts were already counted by each
	// alternative's own evaluation.
	termOf := make(map[string]int, len(all))
	for i, tr := range terms {
		for _, slot := range tr.Alternatives[pick[i]].Slots {
			termOf[slot.ID] = tr.TermNumber
		}
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if termOf[all[i].ID] == termOf[all[j].ID] {
				continue
			}
			if !all[i].Overlaps(all[j]) {
				continue
			}
			if all[i].FacultyID != "" && all[i].FacultyID == all[j].FacultyID {
				combo.ResourcePenalty++
			}
			if all[i].RoomID != "" && all[i].RoomID == all[j].RoomID {
				combo.ResourcePenalty++
			}
		}
	}

	for id, minutes := range facultyMinutes {
		f, ok := faculty[id]
		if !ok || f.WorkloadHours <= 0 {
			continue
		}
		gap := minutes/60 - f.WorkloadHours
		if gap < 0 {
			gap = -gap
		}
		combo.WorkloadGapPenalty += float64(gap)
	}

	combo.Scalar = w.Resource*combo.ResourcePenalty +
		w.FacultyPreference*combo.FacultyPreferencePenalty +
		w.WorkloadGap*combo.WorkloadGapPenalty
	return combo
}
