package org

import (
	"regexp"
	"strings"
)

var planningKeywordRe = regexp.MustCompile(`(SCHEDULED|DEADLINE|CLOSED):[ \t]*`)

// IsPlanningLine reports whether the trimmed line starts with a planning
// keyword. Recognition is deliberately strict: planning lines are only
// honored on the line immediately following a headline.
func IsPlanningLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "SCHEDULED:") ||
		strings.HasPrefix(t, "DEADLINE:") ||
		strings.HasPrefix(t, "CLOSED:")
}

// ParsePlanningLine parses one planning line into its slots. Keyword order
// in the source is not significant; each slot is filled at most once (the
// first occurrence wins). A keyword whose timestamp is malformed leaves its
// slot empty. Returns nil, false when no slot could be populated.
func ParsePlanningLine(line string) (*Planning, bool) {
	p := &Planning{}
	for _, m := range planningKeywordRe.FindAllStringSubmatchIndex(line, -1) {
		kw := line[m[2]:m[3]]
		ts, _, ok := ParseTimestamp(line[m[1]:])
		if !ok {
			continue
		}
		switch kw {
		case "SCHEDULED":
			if p.Scheduled == nil {
				p.Scheduled = ts
			}
		case "DEADLINE":
			if p.Deadline == nil {
				p.Deadline = ts
			}
		case "CLOSED":
			if p.Closed == nil {
				p.Closed = ts
			}
		}
	}
	if p.Empty() {
		return nil, false
	}
	return p, true
}
