package editor

import (
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/org"
)

// ClockIn appends an open "CLOCK: [now]" line to the headline's logbook
// drawer, synthesizing the drawer when absent. Clock lines always live in
// the LOGBOOK drawer regardless of the configured log target.
func ClockIn(cfg org.Config, content string, pos int, now time.Time) (string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", err
	}
	stamp := org.NewTimestamp(org.Inactive, now, true)
	r.appendToLogbook("CLOCK: " + stamp.String())
	return r.Join(), nil
}

// ClockOut closes the first open clock line in the headline's logbook,
// rewriting it to "CLOCK: [start]--[now] => H:MM" with a recomputed
// duration. A clock whose start lies after now is a clock error and is
// left open.
func ClockOut(cfg org.Config, content string, pos int, now time.Time) (string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", err
	}
	if r.Logbook == "" {
		return "", apperr.New(apperr.KindInvalidArgs, "no open clock")
	}

	lines := strings.Split(r.Logbook, "\n")
	for i, line := range lines {
		c, ok := org.ParseClockEntry(line)
		if !ok || c.End != nil {
			continue
		}
		if now.Before(c.Start.Time) {
			return "", apperr.New(apperr.KindInvalidArgs, "clock start is in the future")
		}
		c.End = org.NewTimestamp(org.Inactive, now, true)
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		lines[i] = indent + c.String()
		r.Logbook = strings.Join(lines, "\n")
		return r.Join(), nil
	}
	return "", apperr.New(apperr.KindInvalidArgs, "no open clock")
}
