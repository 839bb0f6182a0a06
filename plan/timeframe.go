package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	hoursPerWorkday = 8.0

	// A plan fits its timeframe when total hours land between 80% and
	// 120% of the available working hours.
	complianceMin       = 0.8
	complianceMax       = 1.2
	complianceTolerance = 0.01

	// Oversized plans compress at most this far; past that the
	// violation surfaces instead of gutting the estimates.
	minScaleFactor = 0.8
)

var timeframePattern = regexp.MustCompile(`(\d+)\s*(week|day|month|year)s?`)

// ParseTimeframeDays converts a free-text timeframe like "2 weeks" or
// "30 days" into calendar days. Bare numbers up to 31 are read as days,
// larger ones as weeks.
func ParseTimeframeDays(timeframe string) (int, error) {
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	if tf == "" {
		return 0, fmt.Errorf("empty timeframe")
	}

	if m := timeframePattern.FindStringSubmatch(tf); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid timeframe quantity %q", m[1])
		}
		switch m[2] {
		case "day":
			return n, nil
		case "week":
			return n * 7, nil
		case "month":
			return n * 30, nil
		case "year":
			return n * 365, nil
		}
	}

	if n, err := strconv.Atoi(tf); err == nil && n > 0 {
		if n <= 31 {
			return n, nil
		}
		return n * 7, nil
	}

	return 0, fmt.Errorf("could not parse timeframe %q", timeframe)
}

// AvailableHours returns the working hours a timeframe provides,
// assuming 8-hour days. Returns 0 when the timeframe is unparseable.
func AvailableHours(timeframe string) float64 {
	days, err := ParseTimeframeDays(timeframe)
	if err != nil {
		return 0
	}
	return float64(days) * hoursPerWorkday
}

// ComplianceError reports a plan whose workload cannot be made to fit
// its timeframe even after scaling.
type ComplianceError struct {
	TotalHours     float64
	AvailableHours float64
	Suggestions    []string
}

func (e *ComplianceError) Error() string {
	if e.TotalHours > e.AvailableHours {
		return fmt.Sprintf("plan requires %.1f hours but timeframe only provides %.1f", e.TotalHours, e.AvailableHours)
	}
	return fmt.Sprintf("plan requires only %.1f hours for a timeframe providing %.1f", e.TotalHours, e.AvailableHours)
}

// EnsureFits checks the total workload against the timeframe. Mildly
// oversized plans compress to fit, but never by more than the minimum
// scale factor, and estimates are never inflated to pad out an
// underfilled timeframe. Anything outside those bounds returns a
// ComplianceError with actionable suggestions.
func EnsureFits(tasks []Task, timeframe string) ([]Task, error) {
	available := AvailableHours(timeframe)
	if available <= 0 || len(tasks) == 0 {
		return tasks, nil
	}

	total := totalHours(tasks)
	if fitsTimeframe(total, available) {
		return tasks, nil
	}

	if total > available && available/total >= minScaleFactor {
		scaleTasks(tasks, available)
		total = totalHours(tasks)
		if fitsTimeframe(total, available) {
			return tasks, nil
		}
	}

	cerr := &ComplianceError{TotalHours: total, AvailableHours: available}
	if total > available*complianceMax {
		cerr.Suggestions = []string{
			"Extend the timeframe to accommodate the work",
			"Reduce the scope of the goal",
			"Add more people to the project",
		}
	} else {
		cerr.Suggestions = []string{
			"Shorten the timeframe",
			"Expand the scope with additional goals",
		}
	}
	return tasks, cerr
}

func fitsTimeframe(total, available float64) bool {
	ratio := total / available
	return ratio >= complianceMin-complianceTolerance && ratio <= complianceMax+complianceTolerance
}

// scaleTasks compresses estimates toward the available hours. High
// priority work shrinks less than low priority work, oversized tasks
// give up proportionally more, and nothing drops below an hour.
func scaleTasks(tasks []Task, available float64) {
	total := totalHours(tasks)
	if total <= 0 {
		return
	}
	base := available / total

	for i := range tasks {
		t := &tasks[i]
		f := base
		switch t.Priority {
		case PriorityHigh:
			f *= 1.1
		case PriorityLow:
			f *= 0.9
		}
		if t.EstimatedHours > 8 {
			f *= 0.95
		}
		scaled := round1(t.EstimatedHours * f)
		if scaled < 1.0 {
			scaled = 1.0
		}
		t.EstimatedHours = scaled
	}
}

func totalHours(tasks []Task) float64 {
	var total float64
	for i := range tasks {
		total += tasks[i].EstimatedHours
	}
	return total
}
