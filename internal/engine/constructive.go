package engine

import (
	"math/rand"
	"sort"
)

// ConstructOptions tunes one greedy construction run.
type ConstructOptions struct {
	Randomized   bool
	RCLAlpha     float64
	CandidateCap int
}

// hardScale is the scoring multiplier that makes any hard-conflict delta
// dominate every soft consideration during candidate ranking.
const hardScale = 10000

// Construct produces one total assignment: every request receives a gene even
// when no conflict-free placement exists, so downstream refiners always start
// from a complete vector.
func Construct(p *Problem, rng *rand.Rand, opts ConstructOptions) []int {
	if opts.CandidateCap <= 0 {
		opts.CandidateCap = 64
	}
	t := NewTracker(p)
	order := constructionOrder(p)

	genes := make([]int, len(p.Requests))
	for i := range genes {
		genes[i] = -1
	}

	for _, reqIdx := range order {
		if forced, locked := p.FixedGenes[reqIdx]; locked {
			t.Record(reqIdx, forced)
			genes[reqIdx] = forced
			continue
		}
		chosen := pickOption(p, t, reqIdx, rng, opts)
		t.Record(reqIdx, chosen)
		genes[reqIdx] = chosen
	}
	return genes
}

// constructionOrder sorts requests scarcest-first. The sort key is stable and
// explicit: labs before theory, larger blocks first, fewer options first,
// original index as the final tie-break.
func constructionOrder(p *Problem) []int {
	order := make([]int, len(p.Requests))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := p.Requests[order[a]], p.Requests[order[b]]
		if ra.IsLab != rb.IsLab {
			return ra.IsLab
		}
		if ra.BlockSize != rb.BlockSize {
			return ra.BlockSize > rb.BlockSize
		}
		if len(ra.Options) != len(rb.Options) {
			return len(ra.Options) < len(rb.Options)
		}
		return order[a] < order[b]
	})
	return order
}

type scoredOption struct {
	optIdx int
	score  float64
}

func pickOption(p *Problem, t *Tracker, reqIdx int, rng *rand.Rand, opts ConstructOptions) int {
	req := p.Requests[reqIdx]

	candidates := make([]int, len(req.Options))
	for i := range candidates {
		candidates[i] = i
	}
	if opts.Randomized && rng != nil {
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}
	if len(candidates) > opts.CandidateCap {
		candidates = candidates[:opts.CandidateCap]
	}

	feasible := candidates[:0:0]
	for _, c := range candidates {
		if t.IsConflictFree(reqIdx, c) {
			feasible = append(feasible, c)
		}
	}
	// No perfect placement: fall back to the full candidate set so the
	// assignment stays total and the evaluator reports the damage instead.
	if len(feasible) == 0 {
		feasible = candidates
	}

	scored := make([]scoredOption, 0, len(feasible))
	for _, c := range feasible {
		hard, soft := Delta(p, t, reqIdx, c)
		score := float64(hard)*hardScale + soft + capacityWaste(p, req.StudentCount, req.Options[c].RoomID)
		scored = append(scored, scoredOption{optIdx: c, score: score})
	}
	if len(scored) == 0 {
		// Historical tie-break: an unscorable request takes its first option.
		return 0
	}

	best, worst := scored[0].score, scored[0].score
	bestIdx := 0
	for i, s := range scored {
		if s.score < best {
			best = s.score
			bestIdx = i
		}
		if s.score > worst {
			worst = s.score
		}
	}

	if opts.Randomized && opts.RCLAlpha > 0 && rng != nil && worst > best {
		threshold := best + opts.RCLAlpha*(worst-best)
		var rcl []int
		for _, s := range scored {
			if s.score <= threshold {
				rcl = append(rcl, s.optIdx)
			}
		}
		if len(rcl) > 0 {
			return rcl[rng.Intn(len(rcl))]
		}
	}
	return scored[bestIdx].optIdx
}

// capacityWaste nudges the scorer toward the tightest room that still fits.
func capacityWaste(p *Problem, studentCount int, roomID string) float64 {
	room, ok := p.Rooms[roomID]
	if !ok || room.Capacity <= studentCount {
		return 0
	}
	return float64(room.Capacity-studentCount) * 0.1
}
