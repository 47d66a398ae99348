package clock_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fableweave.dev/internal/sim/clock"
	"fableweave.dev/internal/sim/fault"
)

func newClock(start uint64) *clock.Clock {
	return clock.New(start, clock.Window{StartHour: 8, EndHour: 18})
}

func TestAdvance_RejectsNonPositive(t *testing.T) {
	c := newClock(0)
	require.True(t, fault.IsInvalidArgument(c.Advance(0)))
	require.True(t, fault.IsInvalidArgument(c.Advance(-1)))
	require.Equal(t, uint64(0), c.Minute())
}

func TestAdvance_CalendarDerivation(t *testing.T) {
	c := newClock(0)

	// 1 year, 2 months, 3 days, 4 hours, 5 minutes.
	total := clock.MinutesPerYear + 2*30*clock.MinutesPerDay + 3*clock.MinutesPerDay + 4*60 + 5
	require.NoError(t, c.Advance(total))

	now := c.Now()
	require.Equal(t, 2, now.Year)
	require.Equal(t, 3, now.Month)
	require.Equal(t, 4, now.Day)
	require.Equal(t, 4, now.Hour)
	require.Equal(t, 5, now.MinuteOfHour)
	require.Equal(t, clock.Spring, now.Season)
}

func TestAdvance_MonotonicAndInRange(t *testing.T) {
	c := newClock(0)
	prev := c.Minute()
	for i := 0; i < 500; i++ {
		require.NoError(t, c.Advance(137))
		now := c.Now()
		require.Greater(t, c.Minute(), prev)
		prev = c.Minute()

		require.GreaterOrEqual(t, now.Month, 1)
		require.LessOrEqual(t, now.Month, 12)
		require.GreaterOrEqual(t, now.Day, 1)
		require.LessOrEqual(t, now.Day, 30)
		require.Less(t, now.Hour, 24)
		require.Less(t, now.MinuteOfHour, 60)
	}
}

func TestTimeOfDayBuckets(t *testing.T) {
	cases := []struct {
		hour int
		want clock.TimeOfDay
	}{
		{0, clock.Night}, {4, clock.Night}, {5, clock.Dawn}, {6, clock.Dawn},
		{7, clock.Morning}, {11, clock.Morning}, {12, clock.Afternoon},
		{16, clock.Afternoon}, {17, clock.Dusk}, {18, clock.Dusk},
		{19, clock.Evening}, {21, clock.Evening}, {22, clock.Night}, {23, clock.Night},
	}
	for _, tc := range cases {
		got := clock.At(uint64(tc.hour) * 60)
		require.Equal(t, tc.want, got.TimeOfDay, "hour %d", tc.hour)
	}

	require.True(t, clock.At(6*60).Daytime)
	require.False(t, clock.At(18*60).Daytime)
}

func TestMinutesUntilNextPeriod(t *testing.T) {
	c := newClock(0) // 00:00, night until 05:00
	require.Equal(t, 5*60, c.MinutesUntilNextPeriod())

	require.NoError(t, c.Advance(6*60+30)) // 06:30, dawn until 07:00
	require.Equal(t, 30, c.MinutesUntilNextPeriod())

	c2 := newClock(23 * 60) // 23:00, wraps to 05:00 next day
	require.Equal(t, 6*60, c2.MinutesUntilNextPeriod())
}

func TestScheduler_OrderAndRecurrence(t *testing.T) {
	c := newClock(0)
	var fired []string

	c.ScheduleAt(30, func(now clock.Snapshot) {
		fired = append(fired, "a")
		require.Equal(t, uint64(30), now.Minute)
	})
	c.ScheduleAt(30, func(clock.Snapshot) { fired = append(fired, "b") }) // same minute, later insertion
	c.ScheduleAt(10, func(clock.Snapshot) { fired = append(fired, "c") })
	c.ScheduleEvery(20, 25, func(clock.Snapshot) { fired = append(fired, "r") })

	require.NoError(t, c.Advance(60)) // fires 10:c 20:r 30:a 30:b 45:r
	require.Equal(t, []string{"c", "r", "a", "b", "r"}, fired)

	fired = fired[:0]
	require.NoError(t, c.Advance(60)) // recurring at 70, 95, 120
	require.Equal(t, []string{"r", "r", "r"}, fired)
}

func TestScheduler_Cancel(t *testing.T) {
	c := newClock(0)
	count := 0
	id := c.ScheduleEvery(10, 10, func(clock.Snapshot) { count++ })

	require.NoError(t, c.Advance(25)) // 10, 20
	require.Equal(t, 2, count)

	c.CancelSchedule(id)
	require.NoError(t, c.Advance(100))
	require.Equal(t, 2, count)
}

func TestWithinWorkingHours(t *testing.T) {
	c := newClock(9 * 60) // 09:00
	require.True(t, c.WithinWorkingHours("blacksmith"))

	c.SetProfessionWindow("innkeeper", clock.Window{StartHour: 16, EndHour: 24})
	require.False(t, c.WithinWorkingHours("innkeeper"))

	require.NoError(t, c.Advance(8*60)) // 17:00
	require.True(t, c.WithinWorkingHours("innkeeper"))
	require.True(t, c.WithinWorkingHours("blacksmith"))

	require.NoError(t, c.Advance(60)) // 18:00
	require.False(t, c.WithinWorkingHours("blacksmith"))
	require.True(t, c.WithinWorkingHours("innkeeper"))
}
