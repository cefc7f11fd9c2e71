package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func TestBuildDayGridSlicesWorkingHours(t *testing.T) {
	policy := models.SchedulePolicy{
		PeriodMinutes: 60,
		WorkingHours:  []models.WorkingHours{{DayOfWeek: 1, StartMinute: 540, EndMinute: 780, Enabled: true}},
	}

	grid := BuildDayGrid(policy)

	require.Len(t, grid, 1)
	assert.Equal(t, []SlotSegment{
		{StartMinute: 540, EndMinute: 600},
		{StartMinute: 600, EndMinute: 660},
		{StartMinute: 660, EndMinute: 720},
		{StartMinute: 720, EndMinute: 780},
	}, grid[1])
}

func TestBuildDayGridSkipsBreaks(t *testing.T) {
	policy := models.SchedulePolicy{
		PeriodMinutes: 60,
		WorkingHours:  []models.WorkingHours{{DayOfWeek: 2, StartMinute: 540, EndMinute: 780, Enabled: true}},
		BreakWindows:  []models.BreakWindow{{Name: "lunch", StartMinute: 660, EndMinute: 690, IsLunch: true}},
	}

	grid := BuildDayGrid(policy)

	require.Len(t, grid[2], 3)
	assert.Equal(t, []SlotSegment{
		{StartMinute: 540, EndMinute: 600},
		{StartMinute: 600, EndMinute: 660},
		{StartMinute: 690, EndMinute: 750},
	}, grid[2])
}

func TestBuildDayGridIgnoresDisabledDays(t *testing.T) {
	policy := models.SchedulePolicy{
		PeriodMinutes: 60,
		WorkingHours: []models.WorkingHours{
			{DayOfWeek: 1, StartMinute: 540, EndMinute: 780, Enabled: true},
			{DayOfWeek: 6, StartMinute: 540, EndMinute: 780, Enabled: false},
		},
	}

	grid := BuildDayGrid(policy)

	assert.Equal(t, []int{1}, grid.Days())
	assert.Empty(t, grid[6])
}

func TestBuildDayGridNeedsPositivePeriod(t *testing.T) {
	grid := BuildDayGrid(models.SchedulePolicy{WorkingHours: weekdayHours(1)})
	assert.Empty(t, grid)
}

func TestContiguousStopsAtBreaks(t *testing.T) {
	segments := []SlotSegment{
		{StartMinute: 540, EndMinute: 600},
		{StartMinute: 600, EndMinute: 660},
		{StartMinute: 690, EndMinute: 750},
	}

	assert.True(t, contiguous(segments, 0, 2))
	assert.False(t, contiguous(segments, 1, 2), "block may not straddle the break")
	assert.False(t, contiguous(segments, 2, 2), "block may not run past the day")
	assert.True(t, contiguous(segments, 2, 1))
}
