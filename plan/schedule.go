package plan

import (
	"time"
)

const (
	workdayStartHour = 9
	workdayEndHour   = 17
)

// Schedule assigns start_time and deadline to every task. Scheduling is
// sequential for a single worker: a task starts at the later of its
// latest dependency's finish and the previous task's finish, and work
// only advances through 8-hour weekdays (09:00-17:00, no weekends).
// Invariant: a task's deadline is never before any dependency's deadline.
func Schedule(tasks []Task, startDate string) []Task {
	cursor := nextWorkMoment(planStart(startDate))
	ends := make([]time.Time, len(tasks))

	for i := range tasks {
		t := &tasks[i]
		start := cursor
		for _, dep := range t.Dependencies {
			if dep >= 0 && dep < i && ends[dep].After(start) {
				start = ends[dep]
			}
		}
		start = nextWorkMoment(start)
		end := addWorkHours(start, t.EstimatedHours)

		t.StartTime = start.Format(time.RFC3339)
		t.Deadline = end.Format(time.RFC3339)
		ends[i] = end
		cursor = end
	}
	return tasks
}

// planStart parses a YYYY-MM-DD or RFC3339 start date, defaulting to
// today, and pins the clock to the start of the workday.
func planStart(startDate string) time.Time {
	var day time.Time
	if startDate != "" {
		if d, err := time.Parse("2006-01-02", startDate); err == nil {
			day = d
		} else if d, err := time.Parse(time.RFC3339, startDate); err == nil {
			day = d
		}
	}
	if day.IsZero() {
		day = time.Now()
	}
	return time.Date(day.Year(), day.Month(), day.Day(), workdayStartHour, 0, 0, 0, time.UTC)
}

// nextWorkMoment rolls a time forward to the nearest moment work can
// happen: weekdays between 09:00 and 17:00.
func nextWorkMoment(t time.Time) time.Time {
	for isWeekend(t) {
		t = morningOf(t.AddDate(0, 0, 1))
	}
	if t.Hour() < workdayStartHour {
		t = morningOf(t)
	}
	if t.Hour() >= workdayEndHour {
		t = morningOf(t.AddDate(0, 0, 1))
		for isWeekend(t) {
			t = morningOf(t.AddDate(0, 0, 1))
		}
	}
	return t
}

// addWorkHours advances through workdays until the given hours are used
func addWorkHours(start time.Time, hours float64) time.Time {
	cur := nextWorkMoment(start)
	remaining := hours
	for remaining > 0 {
		dayEnd := time.Date(cur.Year(), cur.Month(), cur.Day(), workdayEndHour, 0, 0, 0, cur.Location())
		left := dayEnd.Sub(cur).Hours()
		if remaining <= left {
			return cur.Add(time.Duration(remaining * float64(time.Hour)))
		}
		remaining -= left
		cur = nextWorkMoment(morningOf(cur.AddDate(0, 0, 1)))
	}
	return cur
}

func morningOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), workdayStartHour, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
