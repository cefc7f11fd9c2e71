package engine

import (
	"math"
	"math/rand"
	"time"
)

// RunAnnealing perturbs one gene at a time from the starting vector, accepting
// improving moves always and worsening moves with probability exp(-Δ/T).
// Move deltas come from the incremental evaluator; candidate bests are
// confirmed with a full evaluation before being kept.
func RunAnnealing(p *Problem, start []int, s GenerationSettings, rng *rand.Rand, deadline time.Time) Solution {
	genes := cloneGenes(start)
	t := NewTracker(p)
	t.RebuildFrom(genes)

	best := Solution{Genes: cloneGenes(genes), Eval: Evaluate(p, genes)}

	// Mutable requests with more than one option.
	var movable []int
	for i, req := range p.Requests {
		if _, locked := p.FixedGenes[i]; locked {
			continue
		}
		if len(req.Options) > 1 {
			movable = append(movable, i)
		}
	}
	if len(movable) == 0 {
		return best
	}

	temperature := s.InitialTemperature
	for iter := 0; iter < s.AnnealingIterations; iter++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		reqIdx := movable[rng.Intn(len(movable))]
		current := genes[reqIdx]
		trial := rng.Intn(len(p.Requests[reqIdx].Options))
		if trial == current {
			temperature *= s.CoolingRate
			continue
		}

		t.Unrecord(reqIdx, current)
		oldHard, oldSoft := Delta(p, t, reqIdx, current)
		newHard, newSoft := Delta(p, t, reqIdx, trial)
		deltaEnergy := float64(newHard-oldHard)*p.Weights.Hard + (newSoft - oldSoft)

		if deltaEnergy <= 0 || rng.Float64() < math.Exp(-deltaEnergy/math.Max(temperature, 1e-9)) {
			t.Record(reqIdx, trial)
			genes[reqIdx] = trial
			if deltaEnergy < 0 {
				if eval := Evaluate(p, genes); eval.Better(best.Eval) {
					best = Solution{Genes: cloneGenes(genes), Eval: eval}
				}
			}
		} else {
			t.Record(reqIdx, current)
		}
		temperature *= s.CoolingRate
	}

	if eval := Evaluate(p, genes); eval.Better(best.Eval) {
		best = Solution{Genes: cloneGenes(genes), Eval: eval}
	}
	return best
}
