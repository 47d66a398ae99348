// Package clock owns simulated time: a monotonic minute counter, the
// calendar derived from it, and a queue of scheduled callbacks fired as
// time advances.
package clock

import (
	"fmt"

	"fableweave.dev/internal/sim/fault"
)

const (
	MinutesPerHour = 60
	HoursPerDay    = 24
	DaysPerMonth   = 30
	MonthsPerYear  = 12
	MinutesPerDay  = MinutesPerHour * HoursPerDay
	MinutesPerYear = MinutesPerDay * DaysPerMonth * MonthsPerYear
)

type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

type TimeOfDay string

const (
	Dawn      TimeOfDay = "dawn"      // 05:00–07:00
	Morning   TimeOfDay = "morning"   // 07:00–12:00
	Afternoon TimeOfDay = "afternoon" // 12:00–17:00
	Dusk      TimeOfDay = "dusk"      // 17:00–19:00
	Evening   TimeOfDay = "evening"   // 19:00–22:00
	Night     TimeOfDay = "night"     // 22:00–05:00
)

// periodBoundaries are the hours at which the time-of-day bucket flips.
var periodBoundaries = [...]int{5, 7, 12, 17, 19, 22}

// Window is a daily working window in whole hours, [Start, End).
type Window struct {
	StartHour int
	EndHour   int
}

func (w Window) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

// Snapshot is a read-only view of one instant of simulated time.
type Snapshot struct {
	Minute uint64 `json:"minute"`

	Year         int       `json:"year"`  // 1-based
	Month        int       `json:"month"` // 1..12
	Day          int       `json:"day"`   // 1..30
	Hour         int       `json:"hour"`  // 0..23
	MinuteOfHour int       `json:"minute_of_hour"`
	Season       Season    `json:"season"`
	TimeOfDay    TimeOfDay `json:"time_of_day"`
	Daytime      bool      `json:"daytime"`
}

func (s Snapshot) String() string {
	return fmt.Sprintf("y%d m%02d d%02d %02d:%02d (%s, %s)",
		s.Year, s.Month, s.Day, s.Hour, s.MinuteOfHour, s.Season, s.TimeOfDay)
}

// Clock is the world's single source of simulated time. Not safe for
// concurrent use; the world drives it from the tick path only.
type Clock struct {
	minute uint64

	workday   Window
	overrides map[string]Window

	sched scheduler
}

func New(startMinute uint64, workday Window) *Clock {
	return &Clock{
		minute:    startMinute,
		workday:   workday,
		overrides: map[string]Window{},
	}
}

// SetProfessionWindow overrides the default working window for one
// profession. Passing the zero Window removes the override.
func (c *Clock) SetProfessionWindow(profession string, w Window) {
	if w == (Window{}) {
		delete(c.overrides, profession)
		return
	}
	c.overrides[profession] = w
}

// Advance moves simulated time forward and fires every callback whose
// trigger minute falls inside the advanced span, in trigger order with
// insertion order breaking ties. Each callback sees the time at its own
// trigger point.
func (c *Clock) Advance(minutes int) error {
	if minutes <= 0 {
		return fault.New(fault.InvalidArgument, "advance by %d minutes", minutes)
	}
	target := c.minute + uint64(minutes)
	for {
		e, ok := c.sched.peekDue(target)
		if !ok {
			break
		}
		c.sched.pop()
		e.fn(At(e.at))
		if e.every > 0 {
			e.at += e.every
			c.sched.push(e)
		}
	}
	c.minute = target
	return nil
}

// Now derives the full calendar view from the minute counter.
func (c *Clock) Now() Snapshot { return At(c.minute) }

func (c *Clock) Minute() uint64 { return c.minute }

// At derives calendar fields for an arbitrary minute.
func At(minute uint64) Snapshot {
	mins := minute % MinutesPerHour
	hours := (minute / MinutesPerHour) % HoursPerDay
	days := minute / MinutesPerDay
	day := days % DaysPerMonth
	months := days / DaysPerMonth
	month := months % MonthsPerYear
	year := months / MonthsPerYear

	hour := int(hours)
	return Snapshot{
		Minute:       minute,
		Year:         int(year) + 1,
		Month:        int(month) + 1,
		Day:          int(day) + 1,
		Hour:         hour,
		MinuteOfHour: int(mins),
		Season:       seasonOf(int(month) + 1),
		TimeOfDay:    timeOfDay(hour),
		Daytime:      hour >= 6 && hour < 18,
	}
}

func seasonOf(month int) Season {
	switch (month - 1) / 3 {
	case 0:
		return Spring
	case 1:
		return Summer
	case 2:
		return Autumn
	default:
		return Winter
	}
}

func timeOfDay(hour int) TimeOfDay {
	switch {
	case hour >= 22 || hour < 5:
		return Night
	case hour < 7:
		return Dawn
	case hour < 12:
		return Morning
	case hour < 17:
		return Afternoon
	case hour < 19:
		return Dusk
	default:
		return Evening
	}
}

// MinutesUntilNextPeriod reports how many minutes remain before the
// time-of-day bucket changes.
func (c *Clock) MinutesUntilNextPeriod() int {
	hour := int((c.minute / MinutesPerHour) % HoursPerDay)
	minuteOfDay := int(c.minute % MinutesPerDay)
	for _, b := range periodBoundaries {
		if hour < b {
			return b*MinutesPerHour - minuteOfDay
		}
	}
	// Wrap past midnight to the 05:00 boundary.
	return MinutesPerDay - minuteOfDay + periodBoundaries[0]*MinutesPerHour
}

// WithinWorkingHours reports whether the current hour falls inside the
// given profession's working window (the default window unless the
// profession has an override).
func (c *Clock) WithinWorkingHours(profession string) bool {
	w := c.workday
	if ov, ok := c.overrides[profession]; ok {
		w = ov
	}
	return w.Contains(c.Now().Hour)
}
