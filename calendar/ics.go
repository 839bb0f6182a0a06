package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskflow/plan"
)

// iCalendar export of a plan: one VEVENT per scheduled task.

const icsTimeLayout = "20060102T150405Z"

var icsPriority = map[plan.Priority]int{
	plan.PriorityHigh:   1,
	plan.PriorityMedium: 5,
	plan.PriorityLow:    9,
}

// Export renders the plan as an iCalendar document. Tasks without a
// scheduled start or deadline are skipped.
func Export(p *plan.Plan) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:-//TaskFlow//Task Planner//EN")
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "METHOD:PUBLISH")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(p.Goal))

	now := time.Now().UTC().Format(icsTimeLayout)
	for i := range p.Tasks {
		t := &p.Tasks[i]
		start, err1 := time.Parse(time.RFC3339, t.StartTime)
		end, err2 := time.Parse(time.RFC3339, t.Deadline)
		if err1 != nil || err2 != nil {
			continue
		}

		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:task-%s-%d@taskflow", p.ID, t.ID))
		writeLine(&b, "DTSTAMP:"+now)
		writeLine(&b, "DTSTART:"+start.UTC().Format(icsTimeLayout))
		writeLine(&b, "DTEND:"+end.UTC().Format(icsTimeLayout))
		writeLine(&b, "SUMMARY:"+escapeText(t.Title))
		writeLine(&b, "DESCRIPTION:"+escapeText(eventDescription(t)))
		writeLine(&b, fmt.Sprintf("PRIORITY:%d", icsPriority[t.Priority]))
		writeLine(&b, "STATUS:"+eventStatus(t.Status))
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

// Filename builds a download name from the goal slug and plan id prefix
func Filename(p *plan.Plan) string {
	slug := slugify(p.Goal)
	if len(slug) > 50 {
		slug = slug[:50]
	}
	id := p.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s.ics", slug, id)
}

func eventDescription(t *plan.Task) string {
	desc := t.Description
	desc += fmt.Sprintf("\nStatus: %s", t.Status)
	desc += fmt.Sprintf("\nEstimated hours: %.1f", t.EstimatedHours)
	if len(t.Dependencies) > 0 {
		deps := make([]string, len(t.Dependencies))
		for i, d := range t.Dependencies {
			deps[i] = fmt.Sprintf("%d", d)
		}
		desc += "\nDepends on tasks: " + strings.Join(deps, ", ")
	}
	return desc
}

func eventStatus(s plan.Status) string {
	switch s {
	case plan.StatusCompleted:
		return "COMPLETED"
	case plan.StatusInProgress:
		return "IN-PROCESS"
	case plan.StatusBlocked:
		return "NEEDS-ACTION"
	default:
		return "NEEDS-ACTION"
	}
}

// escapeText escapes per RFC 5545: backslash, semicolon, comma, newline
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// writeLine appends a CRLF-terminated content line, folding at 75
// octets without splitting a multi-byte UTF-8 sequence.
func writeLine(b *strings.Builder, line string) {
	for len(line) > 75 {
		cut := 75
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
