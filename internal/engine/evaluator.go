package engine

import "github.com/noah-isme/uni-timetable-api/internal/models"

// pairKey identifies one counted hard conflict between two requests on one
// resource kind. Counting distinct pairs keeps the evaluator's totals at the
// same granularity the conflict auditor reports after decoding.
type pairKey struct {
	kind string
	a, b int
}

func makePair(kind string, a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{kind, a, b}
}

// Evaluate rebuilds occupancy from empty and scores the full gene vector.
func Evaluate(p *Problem, genes []int) EvaluationResult {
	t := NewTracker(p)
	t.RebuildFrom(genes)
	hard := countHardConflicts(p, t, genes)
	soft := softPenalty(p, t, genes)
	return EvaluationResult{
		Fitness:       -(float64(hard)*p.Weights.Hard + soft),
		HardConflicts: hard,
		SoftPenalty:   soft,
	}
}

func countHardConflicts(p *Problem, t *Tracker, genes []int) int {
	pairs := make(map[pairKey]bool)
	collectPairs(pairs, "room", t.room, t, nil)
	collectPairs(pairs, "faculty", t.faculty, t, nil)
	collectPairs(pairs, "section", t.section, t, t.sectionExempt)
	hard := len(pairs)

	hard += capacityConflicts(p, genes)
	hard += roomTypeConflicts(p, genes)

	for reqIdx, forced := range p.FixedGenes {
		if genes[reqIdx] >= 0 && genes[reqIdx] != forced {
			hard++
		}
	}

	for _, pair := range p.ElectivePairs {
		if placementsOverlap(p, genes, pair[0], pair[1]) {
			hard++
		}
	}

	// Parallel batches sync on time only (they run in different rooms);
	// shared lectures must agree on the full placement signature.
	hard += desyncedGroups(p, genes, p.BatchGroups, false)
	hard += desyncedGroups(p, genes, p.SharedGroups, true)
	return hard
}

type exemptFn func(a, b int) bool

func collectPairs(pairs map[pairKey]bool, kind string, cells map[occKey][]int, t *Tracker, exempt exemptFn) {
	if exempt == nil {
		exempt = t.exempt
	}
	for _, occupants := range cells {
		for i := 0; i < len(occupants); i++ {
			for j := i + 1; j < len(occupants); j++ {
				if exempt(occupants[i], occupants[j]) {
					continue
				}
				pairs[makePair(kind, occupants[i], occupants[j])] = true
			}
		}
	}
}

// capacityConflicts counts overflows once per plain request and once per
// shared-lecture group (the grouped sections fill one room together).
func capacityConflicts(p *Problem, genes []int) int {
	count := 0
	countedGroup := make(map[string]bool)
	for i, req := range p.Requests {
		if genes[i] < 0 {
			continue
		}
		room, ok := p.Rooms[req.Options[genes[i]].RoomID]
		if !ok {
			continue
		}
		if req.SharedGroupKey != "" {
			if countedGroup[req.SharedGroupKey] {
				continue
			}
			combined := 0
			for _, idx := range p.SharedGroups[req.SharedGroupKey] {
				combined += p.Requests[idx].StudentCount
			}
			if combined > room.Capacity {
				count++
			}
			countedGroup[req.SharedGroupKey] = true
			continue
		}
		if req.StudentCount > room.Capacity {
			count++
		}
	}
	return count
}

func roomTypeConflicts(p *Problem, genes []int) int {
	count := 0
	for i, req := range p.Requests {
		if genes[i] < 0 || !req.IsLab {
			continue
		}
		if room, ok := p.Rooms[req.Options[genes[i]].RoomID]; ok && room.Type != models.RoomTypeLab {
			count++
		}
	}
	return count
}

func placementsOverlap(p *Problem, genes []int, a, b int) bool {
	if genes[a] < 0 || genes[b] < 0 {
		return false
	}
	oa, ob := p.Requests[a].Options[genes[a]], p.Requests[b].Options[genes[b]]
	if oa.Day != ob.Day {
		return false
	}
	aEnd := oa.StartIndex + p.Requests[a].BlockSize
	bEnd := ob.StartIndex + p.Requests[b].BlockSize
	return oa.StartIndex < bEnd && ob.StartIndex < aEnd
}

// desyncedGroups counts groups whose assigned members disagree on the
// (day, start) time signature, or on room and faculty too when fullSignature
// is set.
func desyncedGroups(p *Problem, genes []int, groups map[string][]int, fullSignature bool) int {
	count := 0
	for _, members := range groups {
		first := true
		var ref PlacementOption
		synced := true
		for _, idx := range members {
			if genes[idx] < 0 {
				continue
			}
			opt := p.Requests[idx].Options[genes[idx]]
			if first {
				ref = opt
				first = false
				continue
			}
			if opt.Day != ref.Day || opt.StartIndex != ref.StartIndex {
				synced = false
				break
			}
			if fullSignature && (opt.RoomID != ref.RoomID || opt.FacultyID != ref.FacultyID) {
				synced = false
				break
			}
		}
		if !synced {
			count++
		}
	}
	return count
}

func softPenalty(p *Problem, t *Tracker, genes []int) float64 {
	w := p.Weights
	penalty := 0.0

	// Workload distance from each assigned faculty member's target hours.
	for facultyID, minutes := range t.facultyMinutes {
		f, ok := p.Faculty[facultyID]
		if !ok || minutes <= 0 || f.WorkloadHours <= 0 {
			continue
		}
		assigned := float64(minutes) / 60
		target := float64(f.WorkloadHours)
		if assigned > target {
			penalty += (assigned - target) * w.WorkloadOver
		} else {
			penalty += (target - assigned) * w.WorkloadUnder
		}
	}

	// Session spacing per faculty member and day: back-to-back blocks for
	// faculty who opted out of them, plus idle gaps shorter than the preferred
	// break. A missing personal preference falls back to the policy minimum.
	facultyDaySlots := make(map[sectionDay]map[int]bool)
	for i, req := range p.Requests {
		if genes[i] < 0 {
			continue
		}
		opt := req.Options[genes[i]]
		f, ok := p.Faculty[opt.FacultyID]
		if !ok || (!f.AvoidBackToBack && minBreakMinutes(f, p.Policy) <= 0) {
			continue
		}
		key := sectionDay{opt.FacultyID, opt.Day}
		if facultyDaySlots[key] == nil {
			facultyDaySlots[key] = make(map[int]bool)
		}
		for s := opt.StartIndex; s < opt.StartIndex+req.BlockSize; s++ {
			facultyDaySlots[key][s] = true
		}
	}
	for key, slots := range facultyDaySlots {
		f := p.Faculty[key.section]
		gridLen := len(p.Grid[key.day])
		if f.AvoidBackToBack {
			penalty += float64(adjacentPairs(slots, gridLen)) * w.BackToBack
		}
		if minBreak := minBreakMinutes(f, p.Policy); minBreak > 0 {
			penalty += float64(shortBreaks(slots, gridLen, t.periodMinutes(), minBreak)) * w.BackToBack
		}
	}

	// Faculty subject-preference mismatches.
	for i, req := range p.Requests {
		if genes[i] < 0 {
			continue
		}
		f, ok := p.Faculty[req.Options[genes[i]].FacultyID]
		if ok && len(f.PreferredSubjectCodes) > 0 && !f.PrefersSubject(req.CourseCode) {
			penalty += w.SubjectPreference
		}
	}

	// Day-spread imbalance per section.
	days := p.Grid.Days()
	sectionCounts := make(map[string]map[int]int)
	for i, req := range p.Requests {
		if genes[i] < 0 {
			continue
		}
		if sectionCounts[req.Section] == nil {
			sectionCounts[req.Section] = make(map[int]int)
		}
		sectionCounts[req.Section][req.Options[genes[i]].Day] += req.BlockSize
	}
	for _, counts := range sectionCounts {
		minCount, maxCount := -1, 0
		for _, d := range days {
			c := counts[d]
			if c > maxCount {
				maxCount = c
			}
			if minCount == -1 || c < minCount {
				minCount = c
			}
		}
		if minCount >= 0 && maxCount > minCount {
			penalty += float64(maxCount-minCount) * w.DaySpread
		}
	}
	return penalty
}

func adjacentPairs(slots map[int]bool, gridLen int) int {
	pairs := 0
	for s := 0; s+1 < gridLen; s++ {
		if slots[s] && slots[s+1] {
			pairs++
		}
	}
	return pairs
}

// minBreakMinutes resolves a faculty member's break requirement, falling back
// to the policy-wide minimum when no personal preference is set.
func minBreakMinutes(f models.Faculty, policy models.SchedulePolicy) int {
	if f.PreferredMinBreakMinutes > 0 {
		return f.PreferredMinBreakMinutes
	}
	return policy.MinBreakMinutes
}

// shortBreaks counts idle gaps between a day's teaching runs that are shorter
// than the required break. Contiguous slots form one run, not a break.
func shortBreaks(slots map[int]bool, gridLen, periodMinutes, breakMinutes int) int {
	count := 0
	gap := 0
	seen := false
	for s := 0; s < gridLen; s++ {
		if !slots[s] {
			if seen {
				gap++
			}
			continue
		}
		if seen && gap > 0 && gap*periodMinutes < breakMinutes {
			count++
		}
		seen = true
		gap = 0
	}
	return count
}

// Delta computes how hard-conflict count and soft penalty would change if the
// request were placed at the option, given a tracker populated for all other
// assigned requests. Soft spacing and workload terms are approximated locally;
// this is the scoring primitive behind constructive best-fit and the
// metaheuristic neighborhood moves.
func Delta(p *Problem, t *Tracker, reqIdx, optIdx int) (int, float64) {
	req := p.Requests[reqIdx]
	opt := req.Options[optIdx]
	hard := 0

	seen := make(map[pairKey]bool)
	for s := opt.StartIndex; s < opt.StartIndex+req.BlockSize; s++ {
		for _, other := range t.room[occKey{opt.Day, s, opt.RoomID}] {
			if !t.exempt(reqIdx, other) {
				seen[makePair("room", reqIdx, other)] = true
			}
		}
		for _, other := range t.faculty[occKey{opt.Day, s, opt.FacultyID}] {
			if !t.exempt(reqIdx, other) {
				seen[makePair("faculty", reqIdx, other)] = true
			}
		}
		for _, other := range t.section[occKey{opt.Day, s, req.Section}] {
			if !t.sectionExempt(reqIdx, other) {
				seen[makePair("section", reqIdx, other)] = true
			}
		}
	}
	hard += len(seen)

	if room, ok := p.Rooms[opt.RoomID]; ok {
		if req.SharedGroupKey == "" && req.StudentCount > room.Capacity {
			hard++
		}
		if req.IsLab && room.Type != models.RoomTypeLab {
			hard++
		}
	}
	if forced, locked := p.FixedGenes[reqIdx]; locked && optIdx != forced {
		hard++
	}
	for _, pair := range p.ElectivePairs {
		other := -1
		if pair[0] == reqIdx {
			other = pair[1]
		} else if pair[1] == reqIdx {
			other = pair[0]
		}
		if other < 0 || t.genes[other] < 0 {
			continue
		}
		if optionsOverlap(p, reqIdx, optIdx, other, t.genes[other]) {
			hard++
		}
	}
	hard += groupSyncDelta(p, t, reqIdx, opt, req.BatchGroupKey, p.BatchGroups, false)
	hard += groupSyncDelta(p, t, reqIdx, opt, req.SharedGroupKey, p.SharedGroups, true)

	soft := 0.0
	if f, ok := p.Faculty[opt.FacultyID]; ok {
		if len(f.PreferredSubjectCodes) > 0 && !f.PrefersSubject(req.CourseCode) {
			soft += p.Weights.SubjectPreference
		}
		if f.WorkloadHours > 0 {
			assigned := float64(t.facultyMinutes[opt.FacultyID]+req.BlockSize*t.periodMinutes()) / 60
			if over := assigned - float64(f.WorkloadHours); over > 0 {
				soft += over * p.Weights.WorkloadOver
			}
		}
		if f.AvoidBackToBack {
			before := occKey{opt.Day, opt.StartIndex - 1, opt.FacultyID}
			after := occKey{opt.Day, opt.StartIndex + req.BlockSize, opt.FacultyID}
			if len(t.faculty[before]) > 0 {
				soft += p.Weights.BackToBack
			}
			if len(t.faculty[after]) > 0 {
				soft += p.Weights.BackToBack
			}
		}
		if minBreak := minBreakMinutes(f, p.Policy); minBreak > 0 {
			maxGap := (minBreak - 1) / t.periodMinutes()
			for g := 1; g <= maxGap; g++ {
				before := occKey{opt.Day, opt.StartIndex - 1 - g, opt.FacultyID}
				after := occKey{opt.Day, opt.StartIndex + req.BlockSize + g, opt.FacultyID}
				if len(t.faculty[before]) > 0 || len(t.faculty[after]) > 0 {
					soft += p.Weights.BackToBack
					break
				}
			}
		}
	}
	return hard, soft
}

func optionsOverlap(p *Problem, a, aOpt, b, bOpt int) bool {
	oa, ob := p.Requests[a].Options[aOpt], p.Requests[b].Options[bOpt]
	if oa.Day != ob.Day {
		return false
	}
	aEnd := oa.StartIndex + p.Requests[a].BlockSize
	bEnd := ob.StartIndex + p.Requests[b].BlockSize
	return oa.StartIndex < bEnd && ob.StartIndex < aEnd
}

// groupSyncDelta returns 1 when the option desynchronizes the request from an
// already-assigned member of its batch or shared-lecture group.
func groupSyncDelta(p *Problem, t *Tracker, reqIdx int, opt PlacementOption, key string, groups map[string][]int, fullSignature bool) int {
	if key == "" {
		return 0
	}
	for _, idx := range groups[key] {
		if idx == reqIdx || t.genes[idx] < 0 {
			continue
		}
		other := p.Requests[idx].Options[t.genes[idx]]
		if other.Day != opt.Day || other.StartIndex != opt.StartIndex {
			return 1
		}
		if fullSignature && (other.RoomID != opt.RoomID || other.FacultyID != opt.FacultyID) {
			return 1
		}
	}
	return 0
}
