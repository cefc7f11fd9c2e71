package engine

import (
	"math/rand"
	"time"
)

// Solve runs the configured strategy against the problem and returns the best
// gene vector found. Given identical inputs and the same random seed the
// result is reproducible; on deadline expiry the best-so-far is returned
// rather than an error.
func Solve(p *Problem, settings GenerationSettings) Solution {
	s := settings.WithDefaults()
	rng := rand.New(rand.NewSource(s.RandomSeed))
	deadline := time.Now().Add(s.Deadline)

	strategy := s.Strategy
	if strategy == StrategyAuto {
		if len(p.Requests) <= autoFastThreshold {
			strategy = StrategyFast
		} else {
			strategy = StrategyHybrid
		}
	}

	switch strategy {
	case StrategyFast:
		return runFast(p, s, rng)
	case StrategyGenetic:
		return RunGenetic(p, s, rng, deadline)
	case StrategyAnnealing:
		start := Construct(p, rng, ConstructOptions{Randomized: true, RCLAlpha: s.RCLAlpha, CandidateCap: s.CandidateCap})
		return RunAnnealing(p, start, s, rng, deadline)
	case StrategyHybrid:
		return runHybrid(p, s, rng, deadline)
	default:
		return runFast(p, s, rng)
	}
}

// runHybrid combines global recombination with local refinement: constructive
// seeding inside a shortened GA, then annealing polish on the GA's best.
func runHybrid(p *Problem, s GenerationSettings, rng *rand.Rand, deadline time.Time) Solution {
	gaSettings := s
	gaSettings.Generations = s.Generations / 2
	if gaSettings.Generations < 1 {
		gaSettings.Generations = 1
	}
	gaBest := RunGenetic(p, gaSettings, rng, deadline)
	saBest := RunAnnealing(p, gaBest.Genes, s, rng, deadline)
	if gaBest.Eval.Better(saBest.Eval) {
		return gaBest
	}
	return saBest
}

// runFast is the sub-second path: one constructive pass plus a single bounded
// repair sweep over requests still in hard conflict. Construction is shuffled
// so different seeds yield different (still reproducible) alternatives.
func runFast(p *Problem, s GenerationSettings, rng *rand.Rand) Solution {
	genes := Construct(p, rng, ConstructOptions{Randomized: true, RCLAlpha: s.RCLAlpha, CandidateCap: s.CandidateCap})
	genes = repairPass(p, genes, rng, s)
	return Solution{Genes: genes, Eval: Evaluate(p, genes)}
}

// repairPass re-places every gene still contributing hard conflicts using the
// same best-fit scoring as construction. One pass only; a request that cannot
// be repaired keeps its least-bad placement.
func repairPass(p *Problem, genes []int, rng *rand.Rand, s GenerationSettings) []int {
	t := NewTracker(p)
	t.RebuildFrom(genes)

	for reqIdx := range p.Requests {
		if _, locked := p.FixedGenes[reqIdx]; locked {
			continue
		}
		current := genes[reqIdx]
		if current < 0 {
			continue
		}
		t.Unrecord(reqIdx, current)
		hard, _ := Delta(p, t, reqIdx, current)
		if hard == 0 {
			t.Record(reqIdx, current)
			continue
		}
		chosen := pickOption(p, t, reqIdx, rng, ConstructOptions{CandidateCap: s.CandidateCap})
		t.Record(reqIdx, chosen)
		genes[reqIdx] = chosen
	}
	return genes
}
