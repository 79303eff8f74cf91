package org

import (
	"regexp"
	"strconv"
	"time"
)

// timestampRe matches a single timestamp at the start of its input:
// <date [dayname] [time] [repeater] [delay]> with <>/[] delimiters.
// The day name is captured but never validated against the date.
var timestampRe = regexp.MustCompile(`^([<\[])(\d{4})-(\d{2})-(\d{2})` +
	`(?:[ \t]+([A-Za-z][A-Za-z.]*))?` +
	`(?:[ \t]+(\d{1,2}):(\d{2}))?` +
	`(?:[ \t]+([.+]?\+\d+[hdwmy]))?` +
	`(?:[ \t]+(-{1,2}\d+[hdwmy]))?` +
	`[ \t]*([>\]])`)

// ParseTimestamp parses a timestamp (optionally a "--"-joined range) at the
// start of s. It returns the timestamp, the number of bytes consumed, and
// whether parsing succeeded. Mismatched open/close delimiters fail.
func ParseTimestamp(s string) (*Timestamp, int, bool) {
	ts, n, ok := parseSingle(s)
	if !ok {
		return nil, 0, false
	}
	rest := s[n:]
	if len(rest) >= 2 && rest[0] == '-' && rest[1] == '-' {
		end, m, ok := parseSingle(rest[2:])
		if ok {
			// Ranges nest one level only.
			end.End = nil
			ts.End = end
			n += 2 + m
		}
	}
	return ts, n, true
}

func parseSingle(s string) (*Timestamp, int, bool) {
	m := timestampRe.FindStringSubmatch(s)
	if m == nil {
		return nil, 0, false
	}
	open, closing := m[1], m[10]
	if (open == "<") != (closing == ">") {
		return nil, 0, false
	}

	year, _ := strconv.Atoi(m[2])
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])

	ts := &Timestamp{Kind: Active}
	if open == "[" {
		ts.Kind = Inactive
	}

	hour, minute := 0, 0
	if m[6] != "" {
		hour, _ = strconv.Atoi(m[6])
		minute, _ = strconv.Atoi(m[7])
		ts.HasTime = true
	}
	ts.Time = time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	ts.Repeater = m[8]
	ts.Delay = m[9]

	return ts, len(m[0]), true
}

// NewTimestamp builds a timestamp for t. withTime controls whether the
// wall-clock component is kept.
func NewTimestamp(kind TimestampKind, t time.Time, withTime bool) *Timestamp {
	if !withTime {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return &Timestamp{Kind: kind, Time: t, HasTime: withTime}
}

// RepeaterKind is the shift strategy of a timestamp repeater.
type RepeaterKind int

const (
	// RepeatStandard (+n) adds the interval once, regardless of "now".
	RepeatStandard RepeaterKind = iota
	// RepeatFromToday (.+n) shifts relative to the current instant.
	RepeatFromToday
	// RepeatNextFuture (++n) adds the interval until the result is in the future.
	RepeatNextFuture
)

// Repeater is the parsed form of a repeater string.
type Repeater struct {
	Kind RepeaterKind
	N    int
	Unit byte // one of h d w m y
}

var repeaterRe = regexp.MustCompile(`^(\+\+|\.\+|\+)(\d+)([hdwmy])$`)

// ParseRepeater parses "+1w", "++2d", ".+1m" into its components.
func ParseRepeater(s string) (Repeater, bool) {
	m := repeaterRe.FindStringSubmatch(s)
	if m == nil {
		return Repeater{}, false
	}
	var kind RepeaterKind
	switch m[1] {
	case "++":
		kind = RepeatNextFuture
	case ".+":
		kind = RepeatFromToday
	default:
		kind = RepeatStandard
	}
	n, _ := strconv.Atoi(m[2])
	return Repeater{Kind: kind, N: n, Unit: m[3][0]}, true
}

// addInterval returns t advanced by n units.
func addInterval(t time.Time, n int, unit byte) time.Time {
	switch unit {
	case 'h':
		return t.Add(time.Duration(n) * time.Hour)
	case 'd':
		return t.AddDate(0, 0, n)
	case 'w':
		return t.AddDate(0, 0, 7*n)
	case 'm':
		return t.AddDate(0, n, 0)
	default: // y
		return t.AddDate(n, 0, 0)
	}
}

// Shift advances a repeater-bearing timestamp per its repeater semantics and
// returns true. Timestamps without a (well-formed) repeater are untouched.
// A range end is shifted by the same delta as the start, preserving the
// range length.
func (t *Timestamp) Shift(now time.Time) bool {
	rep, ok := ParseRepeater(t.Repeater)
	if !ok {
		return false
	}

	old := t.Time
	switch rep.Kind {
	case RepeatStandard:
		t.Time = addInterval(old, rep.N, rep.Unit)
	case RepeatFromToday:
		// The date comes from now; the original time of day is preserved.
		base := time.Date(now.Year(), now.Month(), now.Day(), old.Hour(), old.Minute(), 0, 0, old.Location())
		t.Time = addInterval(base, rep.N, rep.Unit)
	case RepeatNextFuture:
		limit := now
		if !t.HasTime {
			limit = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, old.Location())
		}
		next := addInterval(old, rep.N, rep.Unit)
		for !next.After(limit) {
			next = addInterval(next, rep.N, rep.Unit)
		}
		t.Time = next
	}

	if t.End != nil {
		t.End.Time = t.End.Time.Add(t.Time.Sub(old))
	}
	return true
}

// HasRepeater reports whether the timestamp carries a well-formed repeater.
func (t *Timestamp) HasRepeater() bool {
	if t == nil {
		return false
	}
	_, ok := ParseRepeater(t.Repeater)
	return ok
}
