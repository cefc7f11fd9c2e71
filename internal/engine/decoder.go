package engine

import (
	"fmt"
	"sort"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

var dayNames = map[int]string{
	1: "MONDAY",
	2: "TUESDAY",
	3: "WEDNESDAY",
	4: "THURSDAY",
	5: "FRIDAY",
	6: "SATURDAY",
	7: "SUNDAY",
}

// DayName returns the canonical upper-case weekday name.
func DayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return "MONDAY"
}

// Decode expands a gene vector into the externally consumed timetable payload.
// Pure function: feasibility was already judged during search, so nothing is
// re-checked here.
func Decode(p *Problem, genes []int) []models.TimetableSlot {
	slots := make([]models.TimetableSlot, 0, len(genes))
	for i, req := range p.Requests {
		if genes[i] < 0 {
			continue
		}
		opt := req.Options[genes[i]]
		segments := p.Grid[opt.Day]
		start := segments[opt.StartIndex].StartMinute
		end := segments[opt.StartIndex+req.BlockSize-1].EndMinute
		slots = append(slots, models.TimetableSlot{
			ID:            req.ID,
			DayOfWeek:     opt.Day,
			StartMinute:   start,
			EndMinute:     end,
			CourseID:      req.CourseID,
			CourseCode:    req.CourseCode,
			Section:       req.Section,
			Batch:         req.Batch,
			RoomID:        opt.RoomID,
			FacultyID:     opt.FacultyID,
			StudentCount:  req.StudentCount,
			SessionType:   req.SessionType,
			SharedGroupID: req.SharedGroupKey,
		})
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		if slots[i].StartMinute != slots[j].StartMinute {
			return slots[i].StartMinute < slots[j].StartMinute
		}
		return slots[i].Section < slots[j].Section
	})
	return slots
}

// OccupancyMatrix renders the assignment as section -> weekday -> one course
// code (or "") per grid segment, the shape UI grids consume directly.
func OccupancyMatrix(p *Problem, genes []int) map[string]map[string][]string {
	matrix := make(map[string]map[string][]string)
	ensure := func(section string) map[string][]string {
		if matrix[section] == nil {
			matrix[section] = make(map[string][]string)
			for _, d := range p.Grid.Days() {
				matrix[section][DayName(d)] = make([]string, len(p.Grid[d]))
			}
		}
		return matrix[section]
	}
	for i, req := range p.Requests {
		if genes[i] < 0 {
			continue
		}
		opt := req.Options[genes[i]]
		row := ensure(req.Section)[DayName(opt.Day)]
		for s := opt.StartIndex; s < opt.StartIndex+req.BlockSize && s < len(row); s++ {
			label := req.CourseCode
			if req.Batch != "" {
				label = fmt.Sprintf("%s/%s", req.CourseCode, req.Batch)
			}
			row[s] = label
		}
	}
	return matrix
}

// WorkloadGapSuggestions reports faculty whose assigned hours sit far from
// their target workload, as human-readable hints for the caller.
func WorkloadGapSuggestions(p *Problem, genes []int) []string {
	minutes := make(map[string]int)
	period := p.Policy.PeriodMinutes
	if period <= 0 {
		period = 60
	}
	for i, req := range p.Requests {
		if genes[i] < 0 {
			continue
		}
		minutes[req.Options[genes[i]].FacultyID] += req.BlockSize * period
	}

	ids := make([]string, 0, len(minutes))
	for id := range minutes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var suggestions []string
	for _, id := range ids {
		f, ok := p.Faculty[id]
		if !ok || f.WorkloadHours <= 0 {
			continue
		}
		assigned := minutes[id] / 60
		gap := assigned - f.WorkloadHours
		switch {
		case gap >= 2:
			suggestions = append(suggestions, fmt.Sprintf("faculty %s is %dh over target (%dh assigned, %dh target)", f.Name, gap, assigned, f.WorkloadHours))
		case gap <= -2:
			suggestions = append(suggestions, fmt.Sprintf("faculty %s is %dh under target (%dh assigned, %dh target)", f.Name, -gap, assigned, f.WorkloadHours))
		}
	}
	return suggestions
}
