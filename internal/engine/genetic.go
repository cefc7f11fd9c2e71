package engine

import (
	"math/rand"
	"sort"
	"time"
)

type individual struct {
	genes []int
	eval  EvaluationResult
}

// RunGenetic refines a population of randomized constructive solutions with
// tournament selection, single-point crossover, per-gene mutation and elitism.
// It stops after the configured number of generations, earlier on stagnation
// or deadline expiry, and always returns the best individual seen.
func RunGenetic(p *Problem, s GenerationSettings, rng *rand.Rand, deadline time.Time) Solution {
	pop := make([]individual, s.PopulationSize)
	for i := range pop {
		genes := Construct(p, rng, ConstructOptions{Randomized: true, RCLAlpha: s.RCLAlpha, CandidateCap: s.CandidateCap})
		pop[i] = individual{genes: genes, eval: Evaluate(p, genes)}
	}

	best := cloneIndividual(pop[0])
	for _, ind := range pop[1:] {
		if ind.eval.Better(best.eval) {
			best = cloneIndividual(ind)
		}
	}

	stagnant := 0
	for gen := 0; gen < s.Generations; gen++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if stagnant >= s.StagnationLimit {
			break
		}

		sort.SliceStable(pop, func(i, j int) bool {
			return pop[i].eval.Better(pop[j].eval)
		})

		next := make([]individual, 0, s.PopulationSize)
		eliteCount := s.EliteCount
		if eliteCount > len(pop) {
			eliteCount = len(pop)
		}
		for i := 0; i < eliteCount; i++ {
			next = append(next, cloneIndividual(pop[i]))
		}

		for len(next) < s.PopulationSize {
			a := tournament(pop, s.TournamentSize, rng)
			b := tournament(pop, s.TournamentSize, rng)
			childA, childB := cloneGenes(a.genes), cloneGenes(b.genes)
			if rng.Float64() < s.CrossoverRate {
				singlePointCrossover(childA, childB, rng)
			}
			mutate(p, childA, s.MutationRate, rng)
			mutate(p, childB, s.MutationRate, rng)
			next = append(next, individual{genes: childA, eval: Evaluate(p, childA)})
			if len(next) < s.PopulationSize {
				next = append(next, individual{genes: childB, eval: Evaluate(p, childB)})
			}
		}
		pop = next

		improved := false
		for _, ind := range pop {
			if ind.eval.Better(best.eval) {
				best = cloneIndividual(ind)
				improved = true
			}
		}
		if improved {
			stagnant = 0
		} else {
			stagnant++
		}
	}
	return Solution{Genes: best.genes, Eval: best.eval}
}

func tournament(pop []individual, size int, rng *rand.Rand) individual {
	if size < 1 {
		size = 1
	}
	winner := pop[rng.Intn(len(pop))]
	for i := 1; i < size; i++ {
		challenger := pop[rng.Intn(len(pop))]
		if challenger.eval.Better(winner.eval) {
			winner = challenger
		}
	}
	return winner
}

func singlePointCrossover(a, b []int, rng *rand.Rand) {
	if len(a) != len(b) || len(a) < 2 {
		return
	}
	point := rng.Intn(len(a))
	for i := point; i < len(a); i++ {
		a[i], b[i] = b[i], a[i]
	}
}

// mutate replaces genes with a random option of the same request. Fixed genes
// are never touched.
func mutate(p *Problem, genes []int, rate float64, rng *rand.Rand) {
	for i := range genes {
		if _, locked := p.FixedGenes[i]; locked {
			genes[i] = p.FixedGenes[i]
			continue
		}
		if rng.Float64() >= rate {
			continue
		}
		genes[i] = rng.Intn(len(p.Requests[i].Options))
	}
}

func cloneGenes(genes []int) []int {
	out := make([]int, len(genes))
	copy(out, genes)
	return out
}

func cloneIndividual(ind individual) individual {
	return individual{genes: cloneGenes(ind.genes), eval: ind.eval}
}
