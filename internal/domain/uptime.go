package domain

import (
	"fmt"
	"time"
)

// Uptime is an approximate duration: years are 365 days and months 30 days.
type Uptime struct {
	Years  int
	Months int
	Days   int
}

// Elapsed returns the approximate time between the calendar dates of start and today.
// Clock time and location offsets are ignored. A today before start yields zero.
func Elapsed(start, today time.Time) Uptime {
	days := int(civil(today).Sub(civil(start)).Hours() / 24)
	if days < 0 {
		days = 0
	}
	rem := days % 365
	return Uptime{
		Years:  days / 365,
		Months: rem / 30,
		Days:   rem % 30,
	}
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (u Uptime) String() string {
	return fmt.Sprintf("%s, %s, %s", plural(u.Years, "year"), plural(u.Months, "month"), plural(u.Days, "day"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
