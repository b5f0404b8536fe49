package gamification

import "time"

// Week is an ISO week in UTC: Monday 00:00:00 through Sunday 23:59:59.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the week containing t
func WeekOf(t time.Time) Week {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
	return Week{
		Start: start,
		End:   start.Add(7*24*time.Hour - time.Second),
	}
}

// Contains reports whether t falls inside the week, bounds included
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Key is a stable identifier for the week, used for locks and logs
func (w Week) Key() string {
	return w.Start.Format("2006-01-02")
}
