package engine

import (
	"fmt"
	"sort"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// Snapshot is the read-only, point-in-time input of one compile. The engine
// never mutates it and performs no I/O of its own.
type Snapshot struct {
	Rooms       []models.Room
	Faculty     []models.Faculty
	Courses     []models.Course
	Program     models.ProgramStructure
	Constraints []models.SemesterConstraint
	Policy      models.SchedulePolicy
	Locks       []models.SlotLock
}

// StructuralError reports a pre-solve data or configuration failure. These are
// never retried internally; the caller must fix the snapshot.
type StructuralError struct {
	Reason string
	Detail string
}

func (e *StructuralError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// CompileRequests turns the snapshot of one term into an immutable Problem:
// every course/section/batch that needs placement becomes a BlockRequest with
// its full set of hard-feasible PlacementOptions precomputed.
func CompileRequests(snap Snapshot, termNumber int, weights ObjectiveWeights) (*Problem, error) {
	plan, ok := snap.Program.Term(termNumber)
	if !ok {
		return nil, &StructuralError{Reason: "unknown term", Detail: fmt.Sprintf("program %s has no term %d", snap.Program.ID, termNumber)}
	}

	grid := BuildDayGrid(snap.Policy)
	if len(grid) == 0 {
		return nil, &StructuralError{Reason: "empty day grid", Detail: "no enabled working hours produce any slot segment"}
	}

	courses := make(map[string]models.Course, len(snap.Courses))
	for _, c := range snap.Courses {
		courses[c.ID] = c
	}
	rooms := make(map[string]models.Room, len(snap.Rooms))
	for _, r := range snap.Rooms {
		rooms[r.ID] = r
	}
	faculty := make(map[string]models.Faculty, len(snap.Faculty))
	for _, f := range snap.Faculty {
		faculty[f.ID] = f
	}

	if err := checkStructure(snap.Program, plan, courses); err != nil {
		return nil, err
	}

	constraint := constraintFor(snap.Constraints, termNumber)
	sharedByCourse := sharedGroupIndex(plan)

	p := &Problem{
		ProgramID:    snap.Program.ID,
		TermNumber:   termNumber,
		Policy:       snap.Policy,
		Constraint:   constraint,
		Grid:         grid,
		FixedGenes:   make(map[int]int),
		BatchGroups:  make(map[string][]int),
		SharedGroups: make(map[string][]int),
		Rooms:        rooms,
		Faculty:      faculty,
		Weights:      weights.withDefaults(),
	}

	sharedEmitted := make(map[string]bool)
	for _, section := range plan.Sections {
		for _, pc := range plan.Courses {
			course, ok := courses[pc.CourseID]
			if !ok {
				return nil, &StructuralError{Reason: "unknown course", Detail: pc.CourseID}
			}
			if group, shared := sharedByCourse[course.ID]; shared {
				// One request per grouped section, emitted once for the whole
				// group so their option signatures stay identical.
				if sharedEmitted[group.ID] {
					continue
				}
				sharedEmitted[group.ID] = true
				if err := appendSharedLectureRequests(p, snap, plan, pc, course, group); err != nil {
					return nil, err
				}
				continue
			}
			if err := appendSectionRequests(p, snap, plan, pc, course, section); err != nil {
				return nil, err
			}
		}
	}

	p.ElectivePairs = electivePairs(p, plan)

	if err := applyLocks(p, snap.Locks); err != nil {
		return nil, err
	}
	return p, nil
}

// checkStructure validates prerequisite ordering and term credit totals before
// any placement is attempted.
func checkStructure(program models.ProgramStructure, plan models.TermPlan, courses map[string]models.Course) error {
	offeredBefore := make(map[string]bool)
	for _, t := range program.Terms {
		if t.TermNumber >= plan.TermNumber {
			continue
		}
		for _, pc := range t.Courses {
			offeredBefore[pc.CourseID] = true
		}
	}
	credits := 0
	for _, pc := range plan.Courses {
		course, ok := courses[pc.CourseID]
		if !ok {
			return &StructuralError{Reason: "unknown course", Detail: pc.CourseID}
		}
		credits += course.Credits
		for _, prereq := range pc.PrerequisiteCourseIDs {
			if !offeredBefore[prereq] {
				return &StructuralError{
					Reason: "unmet prerequisite",
					Detail: fmt.Sprintf("course %s requires %s before term %d", pc.CourseID, prereq, plan.TermNumber),
				}
			}
		}
	}
	if plan.MinCreditTotal > 0 && credits < plan.MinCreditTotal {
		return &StructuralError{
			Reason: "credit total below term minimum",
			Detail: fmt.Sprintf("term %d offers %d credits, needs %d", plan.TermNumber, credits, plan.MinCreditTotal),
		}
	}
	for _, g := range plan.ElectiveGroups {
		if len(g.CourseIDs) < 2 {
			return &StructuralError{Reason: "elective group misconfigured", Detail: fmt.Sprintf("group %s needs at least two courses", g.ID)}
		}
	}
	for _, g := range plan.SharedLectureGroups {
		if len(g.Sections) < 2 {
			return &StructuralError{Reason: "shared lecture group misconfigured", Detail: fmt.Sprintf("group %s needs at least two sections", g.ID)}
		}
	}
	return nil
}

func constraintFor(constraints []models.SemesterConstraint, termNumber int) models.SemesterConstraint {
	for _, c := range constraints {
		if c.TermNumber == termNumber {
			return c
		}
	}
	return models.SemesterConstraint{TermNumber: termNumber}
}

func sharedGroupIndex(plan models.TermPlan) map[string]models.SharedLectureGroup {
	idx := make(map[string]models.SharedLectureGroup, len(plan.SharedLectureGroups))
	for _, g := range plan.SharedLectureGroups {
		idx[g.CourseID] = g
	}
	return idx
}

// sessionSpec is one weekly block demand derived from the course hour split.
type sessionSpec struct {
	sessionType models.SessionType
	blockSize   int
	count       int
}

func sessionSpecs(course models.Course, policy models.SchedulePolicy) []sessionSpec {
	period := policy.PeriodMinutes
	if period <= 0 {
		period = 60
	}
	labBlock := policy.LabContiguousSlots
	if labBlock <= 0 {
		labBlock = 2
	}
	var specs []sessionSpec
	if slots := minutesToSlots(course.TheoryHours*60, period); slots > 0 {
		specs = append(specs, sessionSpec{sessionType: models.SessionTypeTheory, blockSize: 1, count: slots})
	}
	if slots := minutesToSlots(course.LabHours*60, period); slots > 0 {
		count := slots / labBlock
		if count < 1 {
			count = 1
		}
		specs = append(specs, sessionSpec{sessionType: models.SessionTypeLab, blockSize: labBlock, count: count})
	}
	if slots := minutesToSlots(course.TutorialHours*60, period); slots > 0 {
		specs = append(specs, sessionSpec{sessionType: models.SessionTypeTutorial, blockSize: 1, count: slots})
	}
	return specs
}

func minutesToSlots(minutes, period int) int {
	return minutes / period
}

func appendSectionRequests(p *Problem, snap Snapshot, plan models.TermPlan, pc models.ProgramCourse, course models.Course, section models.Section) error {
	for _, spec := range sessionSpecs(course, snap.Policy) {
		if err := appendSpecRequests(p, snap, pc, course, section, spec); err != nil {
			return err
		}
	}
	return nil
}

// appendSpecRequests emits the block requests of one session spec for one
// section, splitting labs into parallel batches when the course allows it.
func appendSpecRequests(p *Problem, snap Snapshot, pc models.ProgramCourse, course models.Course, section models.Section, spec sessionSpec) error {
	batches := 1
	batched := spec.sessionType == models.SessionTypeLab && pc.AllowParallelBatches && pc.LabBatchCount > 1
	if batched {
		batches = pc.LabBatchCount
	}
	for n := 0; n < spec.count; n++ {
		groupKey := ""
		if batched {
			groupKey = fmt.Sprintf("%s|t%d|%s|%s|lab%d", p.ProgramID, p.TermNumber, section.Name, course.ID, n)
		}
		for b := 0; b < batches; b++ {
			req := BlockRequest{
				ID:                   requestID(p.ProgramID, p.TermNumber, section.Name, course.Code, string(spec.sessionType), n, b, batched),
				CourseID:             course.ID,
				CourseCode:           course.Code,
				Section:              section.Name,
				StudentCount:         section.StudentCount,
				PrimaryFacultyID:     pc.PrimaryFacultyID,
				PreferredFacultyIDs:  pc.PreferredFacultyIDs,
				BlockSize:            spec.blockSize,
				IsLab:                spec.sessionType == models.SessionTypeLab,
				SessionType:          spec.sessionType,
				AllowParallelBatches: pc.AllowParallelBatches,
				BatchGroupKey:        groupKey,
			}
			if batched {
				req.Batch = fmt.Sprintf("B%d", b+1)
				req.StudentCount = splitCount(section.StudentCount, batches, b)
			}
			if err := finishRequest(p, snap, course, &req); err != nil {
				return err
			}
		}
	}
	return nil
}

// appendSharedLectureRequests emits one request per grouped section for the
// theory sessions of a shared course. All members carry the same shared key
// and identical option signatures; the evaluator enforces synchronization.
// Only the lecture is shared: lab and tutorial sessions stay per-section so
// room-type and capacity filters apply to each section on its own.
func appendSharedLectureRequests(p *Problem, snap Snapshot, plan models.TermPlan, pc models.ProgramCourse, course models.Course, group models.SharedLectureGroup) error {
	sections := make(map[string]models.Section, len(plan.Sections))
	for _, s := range plan.Sections {
		sections[s.Name] = s
	}
	combined := 0
	for _, name := range group.Sections {
		s, ok := sections[name]
		if !ok {
			return &StructuralError{Reason: "shared lecture group misconfigured", Detail: fmt.Sprintf("unknown section %s in group %s", name, group.ID)}
		}
		combined += s.StudentCount
	}
	for _, spec := range sessionSpecs(course, snap.Policy) {
		if spec.sessionType != models.SessionTypeTheory {
			for _, name := range group.Sections {
				if err := appendSpecRequests(p, snap, pc, course, sections[name], spec); err != nil {
					return err
				}
			}
			continue
		}
		for n := 0; n < spec.count; n++ {
			sharedKey := fmt.Sprintf("%s|n%d", group.ID, n)
			for _, name := range group.Sections {
				req := BlockRequest{
					ID:                  requestID(p.ProgramID, p.TermNumber, name, course.Code, string(spec.sessionType), n, 0, false),
					CourseID:            course.ID,
					CourseCode:          course.Code,
					Section:             name,
					StudentCount:        sections[name].StudentCount,
					PrimaryFacultyID:    pc.PrimaryFacultyID,
					PreferredFacultyIDs: pc.PreferredFacultyIDs,
					BlockSize:           spec.blockSize,
					SessionType:         spec.sessionType,
					SharedGroupKey:      sharedKey,
				}
				// The shared room must hold every grouped section at once.
				if err := finishRequestWithCapacity(p, snap, course, &req, combined); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func finishRequest(p *Problem, snap Snapshot, course models.Course, req *BlockRequest) error {
	return finishRequestWithCapacity(p, snap, course, req, req.StudentCount)
}

func finishRequestWithCapacity(p *Problem, snap Snapshot, course models.Course, req *BlockRequest, capacityNeed int) error {
	req.RoomCandidateIDs = roomCandidates(snap.Rooms, req.IsLab, capacityNeed)
	facultyIDs := facultyCandidates(snap.Faculty, course, *req, p.TermNumber)
	req.Options = enumerateOptions(p, *req, facultyIDs)
	if len(req.Options) == 0 {
		return &StructuralError{
			Reason: "zero-option block request",
			Detail: fmt.Sprintf("%s (%s %s section %s) has no feasible placement", req.ID, req.CourseCode, req.SessionType, req.Section),
		}
	}
	idx := len(p.Requests)
	p.Requests = append(p.Requests, *req)
	if req.BatchGroupKey != "" {
		p.BatchGroups[req.BatchGroupKey] = append(p.BatchGroups[req.BatchGroupKey], idx)
	}
	if req.SharedGroupKey != "" {
		p.SharedGroups[req.SharedGroupKey] = append(p.SharedGroups[req.SharedGroupKey], idx)
	}
	return nil
}

func requestID(programID string, term int, section, code, session string, n, batch int, batched bool) string {
	if batched {
		return fmt.Sprintf("%s-t%d-%s-%s-%s%d-b%d", programID, term, section, code, session, n+1, batch+1)
	}
	return fmt.Sprintf("%s-t%d-%s-%s-%s%d", programID, term, section, code, session, n+1)
}

func splitCount(total, batches, idx int) int {
	base := total / batches
	if idx < total%batches {
		base++
	}
	return base
}

// roomCandidates filters rooms by type and capacity and orders them tightest
// fit first so constructive scoring wastes as little capacity as possible.
func roomCandidates(all []models.Room, isLab bool, studentCount int) []string {
	var matched []models.Room
	for _, r := range all {
		if isLab && r.Type != models.RoomTypeLab {
			continue
		}
		if !isLab && r.Type == models.RoomTypeLab {
			continue
		}
		if r.Capacity < studentCount {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Capacity != matched[j].Capacity {
			return matched[i].Capacity < matched[j].Capacity
		}
		return matched[i].ID < matched[j].ID
	})
	ids := make([]string, len(matched))
	for i, r := range matched {
		ids[i] = r.ID
	}
	return ids
}

// facultyCandidates orders faculty: primary, explicit preferences, subject or
// semester preference matches, then anyone else still active. The order is a
// stable sort key, not a scoring function.
func facultyCandidates(all []models.Faculty, course models.Course, req BlockRequest, termNumber int) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	add(req.PrimaryFacultyID)
	for _, id := range req.PreferredFacultyIDs {
		add(id)
	}
	for _, f := range all {
		if f.Active && (f.PrefersSubject(course.Code) || f.PrefersTerm(termNumber)) {
			add(f.ID)
		}
	}
	for _, f := range all {
		if f.Active {
			add(f.ID)
		}
	}
	return out
}

// enumerateOptions crosses faculty and room candidates with every grid start
// index where the block fits: contiguous segments, no break crossing, within
// the term's earliest/latest window, and inside both resources' availability.
func enumerateOptions(p *Problem, req BlockRequest, facultyIDs []string) []PlacementOption {
	var options []PlacementOption
	for _, day := range p.Grid.Days() {
		segments := p.Grid[day]
		for start := 0; start < len(segments); start++ {
			if !contiguous(segments, start, req.BlockSize) {
				continue
			}
			blockStart := segments[start].StartMinute
			blockEnd := segments[start+req.BlockSize-1].EndMinute
			if p.Constraint.EarliestStartMinute > 0 && blockStart < p.Constraint.EarliestStartMinute {
				continue
			}
			if p.Constraint.LatestEndMinute > 0 && blockEnd > p.Constraint.LatestEndMinute {
				continue
			}
			for _, roomID := range req.RoomCandidateIDs {
				room := p.Rooms[roomID]
				if !room.Available(day, blockStart, blockEnd) {
					continue
				}
				for _, facultyID := range facultyIDs {
					f, ok := p.Faculty[facultyID]
					if !ok || !f.Available(day, blockStart, blockEnd) {
						continue
					}
					options = append(options, PlacementOption{Day: day, StartIndex: start, RoomID: roomID, FacultyID: facultyID})
				}
			}
		}
	}
	return options
}

// electivePairs records the mutual non-overlap constraints of every elective
// basket as request index pairs the evaluator consults.
func electivePairs(p *Problem, plan models.TermPlan) [][2]int {
	var pairs [][2]int
	for _, g := range plan.ElectiveGroups {
		member := make(map[string]bool, len(g.CourseIDs))
		for _, id := range g.CourseIDs {
			member[id] = true
		}
		var indices []int
		for i, req := range p.Requests {
			if member[req.CourseID] {
				indices = append(indices, i)
			}
		}
		for a := 0; a < len(indices); a++ {
			for b := a + 1; b < len(indices); b++ {
				ra, rb := p.Requests[indices[a]], p.Requests[indices[b]]
				// Blocks of one course are already bound by section occupancy;
				// the basket rule binds distinct courses against each other.
				if ra.CourseID == rb.CourseID {
					continue
				}
				pairs = append(pairs, [2]int{indices[a], indices[b]})
			}
		}
	}
	return pairs
}

// applyLocks resolves each slot lock to a forced option index. A lock whose
// placement is not among the enumerated options gets it appended: locks are
// authoritative even when the candidate filters would have excluded them.
func applyLocks(p *Problem, locks []models.SlotLock) error {
	for _, lock := range locks {
		if lock.ProgramID != p.ProgramID || lock.TermNumber != p.TermNumber {
			continue
		}
		reqIdx := -1
		for i, req := range p.Requests {
			if req.CourseID == lock.CourseID && req.Section == lock.Section && req.Batch == lock.Batch {
				if _, taken := p.FixedGenes[i]; !taken {
					reqIdx = i
					break
				}
			}
		}
		if reqIdx < 0 {
			return &StructuralError{Reason: "orphan slot lock", Detail: fmt.Sprintf("lock %s matches no block request", lock.ID)}
		}
		segments := p.Grid[lock.DayOfWeek]
		startIdx := -1
		for i, seg := range segments {
			if seg.StartMinute == lock.StartMinute {
				startIdx = i
				break
			}
		}
		if startIdx < 0 {
			return &StructuralError{Reason: "slot lock off the grid", Detail: fmt.Sprintf("lock %s pins a start outside the day grid", lock.ID)}
		}
		req := p.Requests[reqIdx]
		roomID := req.RoomCandidateIDs[0]
		if lock.RoomID != nil {
			roomID = *lock.RoomID
		}
		facultyID := req.PrimaryFacultyID
		if lock.FacultyID != nil {
			facultyID = *lock.FacultyID
		}
		optIdx := -1
		for i, opt := range req.Options {
			if opt.Day == lock.DayOfWeek && opt.StartIndex == startIdx && opt.RoomID == roomID && opt.FacultyID == facultyID {
				optIdx = i
				break
			}
		}
		if optIdx < 0 {
			p.Requests[reqIdx].Options = append(p.Requests[reqIdx].Options, PlacementOption{
				Day: lock.DayOfWeek, StartIndex: startIdx, RoomID: roomID, FacultyID: facultyID,
			})
			optIdx = len(p.Requests[reqIdx].Options) - 1
		}
		p.FixedGenes[reqIdx] = optIdx
	}
	return nil
}
