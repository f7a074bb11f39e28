package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/quickcourt/internal/model"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", DayMinutes, true},
		{"24:01", 0, false},
		{"9:00", 0, false},
		{"09-00", 0, false},
		{"+9:00", 0, false},
		{"09:+5", 0, false},
		{"-1:00", 0, false},
		{"ab:cd", 0, false},
		{"12:60", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrBadClock, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseSlotMidnightEnd(t *testing.T) {
	iv, err := ParseSlot(model.TimeSlot{StartTime: "23:00", EndTime: "00:00"})
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 1380, End: DayMinutes}, iv)
	assert.Equal(t, "24:00", iv.Slot().EndTime)

	_, err = ParseSlot(model.TimeSlot{StartTime: "10:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, ErrEmptySlot)

	_, err = ParseSlot(model.TimeSlot{StartTime: "00:00", EndTime: "00:00"})
	assert.ErrorIs(t, err, ErrEmptySlot)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := Interval{Start: 540, End: 600}
	assert.True(t, a.Overlaps(Interval{Start: 570, End: 630}))
	assert.True(t, a.Overlaps(a))
	assert.False(t, a.Overlaps(Interval{Start: 600, End: 660}))
	assert.False(t, a.Overlaps(Interval{Start: 480, End: 540}))
}

func TestHoursForPicksWeekendSchedule(t *testing.T) {
	oh := model.OperatingHours{
		Weekday: model.DayHours{Open: "06:00", Close: "22:00"},
		Weekend: model.DayHours{Open: "08:00", Close: "24:00"},
	}
	monday, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	saturday, err := ParseDate("2025-03-15")
	require.NoError(t, err)

	assert.False(t, IsWeekend(monday))
	assert.True(t, IsWeekend(saturday))

	wd, err := HoursFor(oh, monday)
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 360, End: 1320}, wd)

	we, err := HoursFor(oh, saturday)
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 480, End: DayMinutes}, we)
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "10/03/2025", "2025-02-30"} {
		_, err := ParseDate(s)
		assert.ErrorIs(t, err, ErrBadDate, s)
	}
}

func TestGridAndAlignment(t *testing.T) {
	hours := Interval{Start: 390, End: 600} // 06:30-10:00
	grid := Grid(hours, 60)
	require.Len(t, grid, 3)
	assert.Equal(t, model.TimeSlot{StartTime: "06:30", EndTime: "07:30"}, grid[0].Slot())
	assert.Equal(t, model.TimeSlot{StartTime: "08:30", EndTime: "09:30"}, grid[2].Slot())

	assert.True(t, Aligned(hours, Interval{Start: 450, End: 510}, 60))
	assert.False(t, Aligned(hours, Interval{Start: 420, End: 480}, 60))
}

func TestNormalizeSortsAndRejectsConflicts(t *testing.T) {
	ivs, err := Normalize([]model.TimeSlot{
		{StartTime: "11:00", EndTime: "12:00"},
		{StartTime: "09:00", EndTime: "10:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{540, 600}, {660, 720}}, ivs)

	_, err = Normalize([]model.TimeSlot{
		{StartTime: "09:00", EndTime: "10:00"},
		{StartTime: "09:00", EndTime: "10:00"},
	})
	assert.True(t, errors.Is(err, ErrDuplicate))

	_, err = Normalize([]model.TimeSlot{
		{StartTime: "09:00", EndTime: "10:00"},
		{StartTime: "09:30", EndTime: "10:30"},
	})
	assert.ErrorIs(t, err, ErrOverlapping)
}

func TestAnyOverlap(t *testing.T) {
	booked := []Interval{{540, 600}}
	assert.True(t, AnyOverlap([]Interval{{540, 600}}, booked))
	assert.False(t, AnyOverlap([]Interval{{600, 660}, {480, 540}}, booked))
}
