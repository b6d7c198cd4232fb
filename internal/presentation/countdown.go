package presentation

import (
	"fmt"
	"time"
)

// Countdown is the deal-of-the-day timer value.
type Countdown struct {
	Hours, Mins, Secs int
}

// Tick returns the value one second later, stopping at zero.
func (c Countdown) Tick() Countdown {
	switch {
	case c.Secs > 0:
		c.Secs--
	case c.Mins > 0:
		c.Mins--
		c.Secs = 59
	case c.Hours > 0:
		c.Hours--
		c.Mins, c.Secs = 59, 59
	}
	return c
}

func (c Countdown) Done() bool {
	return c.Hours == 0 && c.Mins == 0 && c.Secs == 0
}

func (c Countdown) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Mins, c.Secs)
}

// CountdownUntil is the timer value from now to end, zero once end has passed.
func CountdownUntil(now, end time.Time) Countdown {
	d := end.Sub(now)
	if d <= 0 {
		return Countdown{}
	}
	secs := int(d / time.Second)
	return Countdown{Hours: secs / 3600, Mins: secs % 3600 / 60, Secs: secs % 60}
}

// EndOfDay is the next UTC midnight after now, when the daily deal resets.
func EndOfDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
