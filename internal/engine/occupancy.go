package engine

// occKey addresses one (day, slot, resource) cell in an occupancy map.
type occKey struct {
	day  int
	slot int
	res  string
}

type sectionDay struct {
	section string
	day     int
}

// Tracker is the single source of truth for per-solve occupancy state. It is
// consulted by the constructive solver and the incremental evaluator, and can
// always be rebuilt from scratch from a gene vector.
type Tracker struct {
	p *Problem

	room    map[occKey][]int
	faculty map[occKey][]int
	section map[occKey][]int

	facultyMinutes map[string]int
	sectionSlots   map[sectionDay]map[int]bool

	genes []int
}

// NewTracker returns an empty tracker for the problem. All genes start
// unassigned (-1).
func NewTracker(p *Problem) *Tracker {
	t := &Tracker{p: p}
	t.Reset()
	return t
}

// Reset clears all occupancy state.
func (t *Tracker) Reset() {
	t.room = make(map[occKey][]int)
	t.faculty = make(map[occKey][]int)
	t.section = make(map[occKey][]int)
	t.facultyMinutes = make(map[string]int)
	t.sectionSlots = make(map[sectionDay]map[int]bool)
	t.genes = make([]int, len(t.p.Requests))
	for i := range t.genes {
		t.genes[i] = -1
	}
}

// Genes returns a copy of the currently recorded assignment.
func (t *Tracker) Genes() []int {
	out := make([]int, len(t.genes))
	copy(out, t.genes)
	return out
}

// RebuildFrom resets the tracker and replays the full gene vector. Used when
// evaluating candidate solutions that do not share lineage with the current
// tracker state (crossover/mutation offspring).
func (t *Tracker) RebuildFrom(genes []int) {
	t.Reset()
	for i, g := range genes {
		if g >= 0 {
			t.Record(i, g)
		}
	}
}

// Record marks the option's block as occupied in all three resource maps and
// advances the faculty's cumulative minutes.
func (t *Tracker) Record(reqIdx, optIdx int) {
	req := t.p.Requests[reqIdx]
	opt := req.Options[optIdx]
	for s := opt.StartIndex; s < opt.StartIndex+req.BlockSize; s++ {
		t.room[occKey{opt.Day, s, opt.RoomID}] = append(t.room[occKey{opt.Day, s, opt.RoomID}], reqIdx)
		t.faculty[occKey{opt.Day, s, opt.FacultyID}] = append(t.faculty[occKey{opt.Day, s, opt.FacultyID}], reqIdx)
		t.section[occKey{opt.Day, s, req.Section}] = append(t.section[occKey{opt.Day, s, req.Section}], reqIdx)
		sd := sectionDay{req.Section, opt.Day}
		if t.sectionSlots[sd] == nil {
			t.sectionSlots[sd] = make(map[int]bool)
		}
		t.sectionSlots[sd][s] = true
	}
	t.facultyMinutes[opt.FacultyID] += req.BlockSize * t.periodMinutes()
	t.genes[reqIdx] = optIdx
}

// Unrecord reverses a prior Record of the same (request, option) pair.
func (t *Tracker) Unrecord(reqIdx, optIdx int) {
	req := t.p.Requests[reqIdx]
	opt := req.Options[optIdx]
	for s := opt.StartIndex; s < opt.StartIndex+req.BlockSize; s++ {
		t.room[occKey{opt.Day, s, opt.RoomID}] = removeOccupant(t.room[occKey{opt.Day, s, opt.RoomID}], reqIdx)
		t.faculty[occKey{opt.Day, s, opt.FacultyID}] = removeOccupant(t.faculty[occKey{opt.Day, s, opt.FacultyID}], reqIdx)
		t.section[occKey{opt.Day, s, req.Section}] = removeOccupant(t.section[occKey{opt.Day, s, req.Section}], reqIdx)
		if set := t.sectionSlots[sectionDay{req.Section, opt.Day}]; set != nil {
			if len(t.section[occKey{opt.Day, s, req.Section}]) == 0 {
				delete(set, s)
			}
		}
	}
	t.facultyMinutes[opt.FacultyID] -= req.BlockSize * t.periodMinutes()
	t.genes[reqIdx] = -1
}

func removeOccupant(list []int, reqIdx int) []int {
	for i, v := range list {
		if v == reqIdx {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// IsConflictFree checks, without mutating, whether placing the option would
// collide with current room/faculty/section occupancy or break workload and
// semester caps.
func (t *Tracker) IsConflictFree(reqIdx, optIdx int) bool {
	req := t.p.Requests[reqIdx]
	opt := req.Options[optIdx]

	for s := opt.StartIndex; s < opt.StartIndex+req.BlockSize; s++ {
		for _, other := range t.room[occKey{opt.Day, s, opt.RoomID}] {
			if !t.exempt(reqIdx, other) {
				return false
			}
		}
		for _, other := range t.faculty[occKey{opt.Day, s, opt.FacultyID}] {
			if !t.exempt(reqIdx, other) {
				return false
			}
		}
		for _, other := range t.section[occKey{opt.Day, s, req.Section}] {
			if !t.sectionExempt(reqIdx, other) {
				return false
			}
		}
	}

	period := t.periodMinutes()
	if f, ok := t.p.Faculty[opt.FacultyID]; ok && f.MaxHours > 0 {
		if t.facultyMinutes[opt.FacultyID]+req.BlockSize*period > f.MaxHours*60 {
			return false
		}
	}

	if max := t.p.Constraint.MaxHoursPerDay; max > 0 {
		used := len(t.sectionSlots[sectionDay{req.Section, opt.Day}])
		if (used+req.BlockSize)*period > max*60 {
			return false
		}
	}
	if max := t.p.Constraint.MaxHoursPerWeek; max > 0 {
		used := 0
		for sd, set := range t.sectionSlots {
			if sd.section == req.Section {
				used += len(set)
			}
		}
		if (used+req.BlockSize)*period > max*60 {
			return false
		}
	}
	if max := t.p.Constraint.MaxConsecutiveHours; max > 0 {
		if t.consecutiveRunWith(req.Section, opt.Day, opt.StartIndex, req.BlockSize)*period > max*60 {
			return false
		}
	}
	return true
}

// exempt reports whether two requests may co-occupy a room/faculty cell:
// only members of the same shared-lecture group attend one physical lecture.
func (t *Tracker) exempt(a, b int) bool {
	ra, rb := t.p.Requests[a], t.p.Requests[b]
	return ra.SharedGroupKey != "" && ra.SharedGroupKey == rb.SharedGroupKey
}

// sectionExempt additionally allows distinct parallel batches of one section
// to run concurrently.
func (t *Tracker) sectionExempt(a, b int) bool {
	if t.exempt(a, b) {
		return true
	}
	ra, rb := t.p.Requests[a], t.p.Requests[b]
	return ra.Batch != "" && rb.Batch != "" && ra.Batch != rb.Batch
}

// consecutiveRunWith computes the longest consecutive slot run for the section
// on the day if the block were added.
func (t *Tracker) consecutiveRunWith(section string, day, startIdx, blockSize int) int {
	used := make(map[int]bool, len(t.sectionSlots[sectionDay{section, day}])+blockSize)
	for s := range t.sectionSlots[sectionDay{section, day}] {
		used[s] = true
	}
	for s := startIdx; s < startIdx+blockSize; s++ {
		used[s] = true
	}
	best, run := 0, 0
	for s := 0; s < len(t.p.Grid[day]); s++ {
		if used[s] {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

func (t *Tracker) periodMinutes() int {
	if t.p.Policy.PeriodMinutes > 0 {
		return t.p.Policy.PeriodMinutes
	}
	return 60
}
