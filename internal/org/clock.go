package org

import (
	"regexp"
	"strings"
)

var clockDurationRe = regexp.MustCompile(`=>[ \t]*(\d+:\d{2})`)

// ParseClockEntry parses a "CLOCK: [start]--[end] => H:MM" logbook line.
// The textual duration is kept as written but consumers recompute it from
// the timestamps when closing a clock.
func ParseClockEntry(line string) (*ClockEntry, bool) {
	t := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(t, "CLOCK:")
	if !ok {
		return nil, false
	}
	rest = strings.TrimLeft(rest, " \t")

	ts, _, ok := ParseTimestamp(rest)
	if !ok {
		return nil, false
	}

	c := &ClockEntry{Start: ts}
	if ts.End != nil {
		// A clock range is start--end, not a timestamp range.
		c.End = ts.End
		ts.End = nil
	}
	if m := clockDurationRe.FindStringSubmatch(rest); m != nil {
		c.Duration = m[1]
	}
	return c, true
}
