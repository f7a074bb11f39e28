// Package schedule holds the wall-clock arithmetic behind court bookings:
// parsing "HH:MM" values, slot intervals, weekday/weekend hours and the
// slot grid of a day.  Everything here is pure and works in minutes since
// midnight of a venue-local date.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/quickcourt/internal/model"
)

// DayMinutes is the number of minutes in a booking day.
const DayMinutes = 24 * 60

// DateLayout is the booking date format.
const DateLayout = "2006-01-02"

var (
	ErrBadClock    = errors.New("time must be HH:MM")
	ErrBadDate     = errors.New("date must be YYYY-MM-DD")
	ErrEmptySlot   = errors.New("slot end must be after start")
	ErrDuplicate   = errors.New("duplicate time slot")
	ErrOverlapping = errors.New("time slots overlap")
)

// Interval is a half open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Minutes returns the length of the interval.
func (iv Interval) Minutes() int { return iv.End - iv.Start }

// Overlaps reports whether two half open intervals share any minute.
// Adjacent intervals such as 09:00-10:00 and 10:00-11:00 do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

// Contains reports whether o lies entirely within iv.
func (iv Interval) Contains(o Interval) bool {
	return o.Start >= iv.Start && o.End <= iv.End
}

// Slot converts the interval back into its "HH:MM" representation.
func (iv Interval) Slot() model.TimeSlot {
	return model.TimeSlot{StartTime: FormatClock(iv.Start), EndTime: FormatClock(iv.End)}
}

// ParseClock parses a strict "HH:MM" value into minutes since midnight.
// "24:00" is accepted and yields DayMinutes.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' || !isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	if h == 24 && m == 0 {
		return DayMinutes, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return h*60 + m, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// FormatClock renders minutes since midnight as "HH:MM".  DayMinutes is
// rendered as "24:00".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseSlot converts a TimeSlot into an Interval.  An end of "00:00" after
// a non-zero start means midnight at the end of the day.
func ParseSlot(ts model.TimeSlot) (Interval, error) {
	start, err := ParseClock(ts.StartTime)
	if err != nil {
		return Interval{}, err
	}
	if start == DayMinutes {
		return Interval{}, fmt.Errorf("%w: start %q", ErrBadClock, ts.StartTime)
	}
	end, err := ParseClock(ts.EndTime)
	if err != nil {
		return Interval{}, err
	}
	if end == 0 && start > 0 {
		end = DayMinutes
	}
	if end <= start {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrEmptySlot, ts.StartTime, ts.EndTime)
	}
	return Interval{Start: start, End: end}, nil
}

// ParseDate parses a "YYYY-MM-DD" booking date.  The result is a UTC
// midnight timestamp used only for its calendar fields.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return d, nil
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// HoursFor returns the opening window that applies to the given date.
func HoursFor(oh model.OperatingHours, d time.Time) (Interval, error) {
	dh := oh.Weekday
	if IsWeekend(d) {
		dh = oh.Weekend
	}
	return ParseHours(dh)
}

// ParseHours parses a DayHours window.  A close of "00:00" means midnight.
func ParseHours(dh model.DayHours) (Interval, error) {
	open, err := ParseClock(dh.Open)
	if err != nil {
		return Interval{}, err
	}
	closing, err := ParseClock(dh.Close)
	if err != nil {
		return Interval{}, err
	}
	if closing == 0 {
		closing = DayMinutes
	}
	if closing <= open {
		return Interval{}, fmt.Errorf("%w: hours %s-%s", ErrEmptySlot, dh.Open, dh.Close)
	}
	return Interval{Start: open, End: closing}, nil
}

// Aligned reports whether iv starts on the grid of step minutes anchored
// at hours.Start.
func Aligned(hours, iv Interval, step int) bool {
	if step <= 0 {
		return true
	}
	return (iv.Start-hours.Start)%step == 0
}

// Grid lists every slot of step minutes that fits inside hours, starting
// at the opening time.
func Grid(hours Interval, step int) []Interval {
	if step <= 0 {
		return nil
	}
	out := make([]Interval, 0, hours.Minutes()/step)
	for s := hours.Start; s+step <= hours.End; s += step {
		out = append(out, Interval{Start: s, End: s + step})
	}
	return out
}

// Normalize parses the slots, sorts them by start time and rejects
// duplicates or slots that overlap each other.
func Normalize(slots []model.TimeSlot) ([]Interval, error) {
	out := make([]Interval, 0, len(slots))
	for _, ts := range slots {
		iv, err := ParseSlot(ts)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		if prev == cur {
			return nil, fmt.Errorf("%w: %s-%s", ErrDuplicate, FormatClock(cur.Start), FormatClock(cur.End))
		}
		if prev.Overlaps(cur) {
			return nil, fmt.Errorf("%w: %s-%s", ErrOverlapping, FormatClock(cur.Start), FormatClock(cur.End))
		}
	}
	return out, nil
}

// AnyOverlap reports whether any interval of a overlaps any interval of b.
func AnyOverlap(a, b []Interval) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Overlaps(y) {
				return true
			}
		}
	}
	return false
}

// Slots converts intervals back to TimeSlots.
func Slots(ivs []Interval) []model.TimeSlot {
	out := make([]model.TimeSlot, len(ivs))
	for i, iv := range ivs {
		out[i] = iv.Slot()
	}
	return out
}
