package engine

import "github.com/noah-isme/uni-timetable-api/internal/models"

// BuildDayGrid slices the enabled working hours of each day into period-sized
// segments, skipping any segment that would overlap a break window.
func BuildDayGrid(policy models.SchedulePolicy) DayGrid {
	grid := make(DayGrid, len(policy.WorkingHours))
	period := policy.PeriodMinutes
	if period <= 0 {
		return grid
	}

	for _, wh := range policy.WorkingHours {
		if !wh.Enabled || wh.EndMinute-wh.StartMinute < period {
			continue
		}
		var segments []SlotSegment
		cursor := wh.StartMinute
		for cursor+period <= wh.EndMinute {
			end := cursor + period
			if brk, overlaps := breakOverlapping(policy.BreakWindows, cursor, end); overlaps {
				// Jump past the break rather than sliding minute by minute.
				cursor = brk.EndMinute
				continue
			}
			segments = append(segments, SlotSegment{StartMinute: cursor, EndMinute: end})
			cursor = end
		}
		if len(segments) > 0 {
			grid[wh.DayOfWeek] = segments
		}
	}
	return grid
}

func breakOverlapping(breaks []models.BreakWindow, start, end int) (models.BreakWindow, bool) {
	for _, b := range breaks {
		if start < b.EndMinute && b.StartMinute < end {
			return b, true
		}
	}
	return models.BreakWindow{}, false
}

// contiguous reports whether blockSize segments starting at startIdx exist and
// run back to back with no intervening break.
func contiguous(segments []SlotSegment, startIdx, blockSize int) bool {
	if startIdx < 0 || startIdx+blockSize > len(segments) {
		return false
	}
	for i := startIdx; i < startIdx+blockSize-1; i++ {
		if segments[i].EndMinute != segments[i+1].StartMinute {
			return false
		}
	}
	return true
}
