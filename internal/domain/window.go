package domain

import "time"

// Window is a half-open contribution window [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// YearlyWindows partitions [from, to) into disjoint, contiguous windows that split
// on 1 January UTC. The first window starts at from and the last ends at to.
// It returns nil when from is not before to.
func YearlyWindows(from, to time.Time) []Window {
	from, to = from.UTC(), to.UTC()
	var windows []Window
	for cursor := from; cursor.Before(to); {
		next := time.Date(cursor.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := next
		if to.Before(end) {
			end = to
		}
		windows = append(windows, Window{From: cursor, To: end})
		cursor = next
	}
	return windows
}
