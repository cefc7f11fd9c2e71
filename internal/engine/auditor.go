package engine

import (
	"fmt"
	"sort"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// AuditReport lists every violation found in a timetable payload plus a
// generic proposed fix per violation. An empty report is a valid result.
type AuditReport struct {
	Conflicts            []models.ConflictDetail   `json:"conflicts"`
	SuggestedResolutions []models.ResolutionAction `json:"suggested_resolutions"`
}

// HardConflicts counts the blocking violations in the report.
func (r AuditReport) HardConflicts() int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Severity == models.SeverityHard {
			n++
		}
	}
	return n
}

// Audit checks an arbitrary timetable payload, solver-produced or not, against
// the room and faculty catalogs. It counts one conflict per distinct slot pair
// per resource kind, the same granularity the evaluator uses, and never
// returns an error.
func Audit(slots []models.TimetableSlot, rooms []models.Room, faculty []models.Faculty) AuditReport {
	roomByID := make(map[string]models.Room, len(rooms))
	for _, r := range rooms {
		roomByID[r.ID] = r
	}
	facultyByID := make(map[string]models.Faculty, len(faculty))
	for _, f := range faculty {
		facultyByID[f.ID] = f
	}

	var report AuditReport

	byDay := make(map[int][]models.TimetableSlot)
	for _, s := range slots {
		byDay[s.DayOfWeek] = append(byDay[s.DayOfWeek], s)
	}
	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	for _, d := range days {
		daySlots := byDay[d]
		sort.SliceStable(daySlots, func(i, j int) bool {
			if daySlots[i].StartMinute != daySlots[j].StartMinute {
				return daySlots[i].StartMinute < daySlots[j].StartMinute
			}
			return daySlots[i].ID < daySlots[j].ID
		})
		for i := 0; i < len(daySlots); i++ {
			for j := i + 1; j < len(daySlots); j++ {
				auditPair(&report, daySlots[i], daySlots[j], facultyByID)
			}
		}
	}

	auditSlotChecks(&report, slots, roomByID)
	auditSharedGroups(&report, slots, roomByID)
	auditBatchGroups(&report, slots)
	return report
}

// auditPair emits room/faculty/section conflicts for one overlapping same-day
// pair. Slots of the same shared-lecture group are intentionally co-located
// and exempt; distinct declared batches suppress the section check because
// parallel batches run concurrently by design of the lab split.
func auditPair(report *AuditReport, a, b models.TimetableSlot, faculty map[string]models.Faculty) {
	if !a.Overlaps(b) {
		return
	}
	sameSharedGroup := a.SharedGroupID != "" && a.SharedGroupID == b.SharedGroupID

	if !sameSharedGroup && a.RoomID != "" && a.RoomID == b.RoomID {
		addConflict(report, models.ConflictRoom, models.SeverityHard,
			fmt.Sprintf("room %s double-booked on day %d: %s and %s overlap", a.RoomID, a.DayOfWeek, describeSlot(a), describeSlot(b)),
			[]string{a.ID, b.ID},
			models.ResolutionAction{ActionType: "change_room", TargetSlotID: b.ID, Parameters: map[string]string{"conflicting_slot_id": a.ID}})
	}

	if !sameSharedGroup && a.FacultyID != "" && a.FacultyID == b.FacultyID {
		name := a.FacultyID
		if f, ok := faculty[a.FacultyID]; ok {
			name = f.Name
		}
		addConflict(report, models.ConflictFaculty, models.SeverityHard,
			fmt.Sprintf("faculty %s double-booked on day %d: %s and %s overlap", name, a.DayOfWeek, describeSlot(a), describeSlot(b)),
			[]string{a.ID, b.ID},
			models.ResolutionAction{ActionType: "move_slot", TargetSlotID: b.ID, Parameters: map[string]string{"conflicting_slot_id": a.ID}})
	}

	distinctBatches := a.Batch != "" && b.Batch != "" && a.Batch != b.Batch
	if !sameSharedGroup && !distinctBatches && a.Section != "" && a.Section == b.Section {
		addConflict(report, models.ConflictSection, models.SeverityHard,
			fmt.Sprintf("section %s double-booked on day %d: %s and %s overlap", a.Section, a.DayOfWeek, describeSlot(a), describeSlot(b)),
			[]string{a.ID, b.ID},
			models.ResolutionAction{ActionType: "move_slot", TargetSlotID: b.ID, Parameters: map[string]string{"conflicting_slot_id": a.ID}})
	}
}

// auditSlotChecks flags per-slot capacity overflow and lab-session rooms of
// the wrong type. Shared-lecture slots are skipped here; their capacity is
// judged against the group's combined head count instead.
func auditSlotChecks(report *AuditReport, slots []models.TimetableSlot, rooms map[string]models.Room) {
	for _, s := range slots {
		room, known := rooms[s.RoomID]
		if known && s.SharedGroupID == "" && s.StudentCount > room.Capacity {
			addConflict(report, models.ConflictRoomCapacity, models.SeverityHard,
				fmt.Sprintf("room %s seats %d but %s brings %d students", room.ID, room.Capacity, describeSlot(s), s.StudentCount),
				[]string{s.ID},
				models.ResolutionAction{ActionType: "change_room", TargetSlotID: s.ID, Parameters: map[string]string{"min_capacity": fmt.Sprintf("%d", s.StudentCount)}})
		}
		if known && s.SessionType == models.SessionTypeLab && room.Type != models.RoomTypeLab {
			addConflict(report, models.ConflictRoomType, models.SeverityHard,
				fmt.Sprintf("lab session %s placed in %s room %s", describeSlot(s), room.Type, room.ID),
				[]string{s.ID},
				models.ResolutionAction{ActionType: "change_room", TargetSlotID: s.ID, Parameters: map[string]string{"required_type": string(models.RoomTypeLab)}})
		}
	}
}

// auditSharedGroups verifies that every shared-lecture group publishes one
// synchronized slot per section and that the shared room fits the combined
// head count.
func auditSharedGroups(report *AuditReport, slots []models.TimetableSlot, rooms map[string]models.Room) {
	groups := make(map[string][]models.TimetableSlot)
	for _, s := range slots {
		if s.SharedGroupID != "" {
			groups[s.SharedGroupID] = append(groups[s.SharedGroupID], s)
		}
	}
	groupIDs := make([]string, 0, len(groups))
	for id := range groups {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	for _, id := range groupIDs {
		members := groups[id]
		ref := members[0]
		synced := true
		for _, m := range members[1:] {
			if m.DayOfWeek != ref.DayOfWeek || m.StartMinute != ref.StartMinute ||
				m.EndMinute != ref.EndMinute || m.RoomID != ref.RoomID || m.FacultyID != ref.FacultyID {
				synced = false
				break
			}
		}
		ids := make([]string, 0, len(members))
		combined := 0
		for _, m := range members {
			ids = append(ids, m.ID)
			combined += m.StudentCount
		}
		sort.Strings(ids)

		if !synced {
			addConflict(report, models.ConflictSharedLectureSync, models.SeverityHard,
				fmt.Sprintf("shared lecture group %s is desynchronized across its %d sections", id, len(members)),
				ids,
				models.ResolutionAction{ActionType: "move_slot", TargetSlotID: ids[0], Parameters: map[string]string{"shared_group_id": id}})
			continue
		}
		if room, known := rooms[ref.RoomID]; known && combined > room.Capacity {
			addConflict(report, models.ConflictRoomCapacity, models.SeverityHard,
				fmt.Sprintf("room %s seats %d but shared lecture group %s brings %d students combined", room.ID, room.Capacity, id, combined),
				ids,
				models.ResolutionAction{ActionType: "change_room", TargetSlotID: ids[0], Parameters: map[string]string{"min_capacity": fmt.Sprintf("%d", combined)}})
		}
	}
}

// auditBatchGroups verifies that the parallel lab batches of one course and
// section run concurrently. Each batch's slots are ordered by day and start
// so the n-th session of every batch lines up; rooms and faculty may differ.
func auditBatchGroups(report *AuditReport, slots []models.TimetableSlot) {
	type splitKey struct {
		courseID string
		section  string
	}
	splits := make(map[splitKey]map[string][]models.TimetableSlot)
	for _, s := range slots {
		if s.Batch == "" {
			continue
		}
		key := splitKey{s.CourseID, s.Section}
		if splits[key] == nil {
			splits[key] = make(map[string][]models.TimetableSlot)
		}
		splits[key][s.Batch] = append(splits[key][s.Batch], s)
	}

	keys := make([]splitKey, 0, len(splits))
	for key := range splits {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].courseID != keys[j].courseID {
			return keys[i].courseID < keys[j].courseID
		}
		return keys[i].section < keys[j].section
	})

	for _, key := range keys {
		batches := splits[key]
		if len(batches) < 2 {
			continue
		}
		names := make([]string, 0, len(batches))
		for name := range batches {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			members := batches[name]
			sort.SliceStable(members, func(i, j int) bool {
				if members[i].DayOfWeek != members[j].DayOfWeek {
					return members[i].DayOfWeek < members[j].DayOfWeek
				}
				if members[i].StartMinute != members[j].StartMinute {
					return members[i].StartMinute < members[j].StartMinute
				}
				return members[i].ID < members[j].ID
			})
		}

		ref := batches[names[0]]
		for pos, lead := range ref {
			ids := []string{lead.ID}
			desynced := false
			for _, name := range names[1:] {
				others := batches[name]
				if pos >= len(others) {
					desynced = true
					continue
				}
				o := others[pos]
				ids = append(ids, o.ID)
				if o.DayOfWeek != lead.DayOfWeek || o.StartMinute != lead.StartMinute || o.EndMinute != lead.EndMinute {
					desynced = true
				}
			}
			if !desynced {
				continue
			}
			sort.Strings(ids)
			addConflict(report, models.ConflictBatchSync, models.SeverityHard,
				fmt.Sprintf("parallel batches of %s section %s drift apart in time", lead.CourseCode, key.section),
				ids,
				models.ResolutionAction{ActionType: "move_slot", TargetSlotID: ids[0], Parameters: map[string]string{"course_id": key.courseID, "section": key.section}})
		}
	}
}

func addConflict(report *AuditReport, kind models.ConflictKind, severity models.ConflictSeverity, description string, slotIDs []string, resolution models.ResolutionAction) {
	report.Conflicts = append(report.Conflicts, models.ConflictDetail{
		ID:              fmt.Sprintf("%s:%s", kind, joinIDs(slotIDs)),
		Kind:            kind,
		Severity:        severity,
		Description:     description,
		AffectedSlotIDs: slotIDs,
	})
	report.SuggestedResolutions = append(report.SuggestedResolutions, resolution)
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += "+"
		}
		out += id
	}
	return out
}

func describeSlot(s models.TimetableSlot) string {
	label := s.CourseCode
	if s.Batch != "" {
		label += "/" + s.Batch
	}
	return fmt.Sprintf("%s %s %d:%02d-%d:%02d", label, s.Section, s.StartMinute/60, s.StartMinute%60, s.EndMinute/60, s.EndMinute%60)
}
