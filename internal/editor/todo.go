package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/raido/internal/org"
)

// SetTodoState transitions the headline at pos to newState ("" clears the
// keyword), applying repeater and logging side effects per cfg. The content
// string is the full document; the full next content is returned.
func SetTodoState(cfg org.Config, content string, pos int, newState string, now time.Time) (string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", err
	}

	current := org.ParseHeadlineLine(cfg, r.Headline)
	targetDone := newState != "" && cfg.IsDone(newState)
	suppressed := loggingSuppressed(r.Properties)
	action := resolveLogAction(cfg, current.Keyword, newState, targetDone)
	if suppressed {
		action = org.LogNone
	}

	planning := parsePlanningRegion(r.Planning)

	// A done transition on a repeater-bearing SCHEDULED/DEADLINE does not
	// complete the task; it advances the timestamps and reverts the
	// keyword to the repeat-to state.
	if targetDone && (planning.Scheduled.HasRepeater() || planning.Deadline.HasRepeater()) {
		repeatTo := repeatToState(r.Properties, current.Keyword)
		r.Headline = spliceKeyword(cfg, r.Headline, repeatTo)

		if planning.Scheduled.HasRepeater() {
			planning.Scheduled.Shift(now)
		}
		if planning.Deadline.HasRepeater() {
			planning.Deadline.Shift(now)
		}
		planning.Closed = nil
		setPlanningRegion(r, planning)

		stamp := org.NewTimestamp(org.Inactive, now, true)
		r.Properties = PropertySet(r.Properties, "LAST_REPEAT", stamp.String())

		if cfg.LogRepeat != org.LogNone && !suppressed {
			r.AppendLogEntry(cfg.LogIntoDrawer, stateChangeEntry(repeatTo, newState, now))
		}
		return r.Join(), nil
	}

	r.Headline = spliceKeyword(cfg, r.Headline, newState)

	if targetDone && action != org.LogNone {
		planning.Closed = org.NewTimestamp(org.Inactive, now, true)
	} else {
		planning.Closed = nil
	}
	setPlanningRegion(r, planning)

	if action != org.LogNone {
		r.AppendLogEntry(cfg.LogIntoDrawer, stateChangeEntry(newState, current.Keyword, now))
	}
	return r.Join(), nil
}

// loggingSuppressed reports whether the headline-local LOGGING property
// forces NoLog.
func loggingSuppressed(drawer string) bool {
	v, ok := PropertyGet(drawer, "LOGGING")
	return ok && strings.EqualFold(v, "nil")
}

// resolveLogAction picks the logging action by priority: the target
// keyword's enter action, then the source keyword's leave action, then,
// for done transitions, the global LogDone setting.
func resolveLogAction(cfg org.Config, from, to string, targetDone bool) org.LogAction {
	if to != "" {
		if st, _, ok := cfg.State(to); ok && st.Enter != org.LogUnset {
			return st.Enter
		}
	}
	if from != "" {
		if st, _, ok := cfg.State(from); ok && st.Leave != org.LogUnset {
			return st.Leave
		}
	}
	if targetDone && cfg.LogDone != org.LogUnset {
		return cfg.LogDone
	}
	return org.LogNone
}

// repeatToState resolves the keyword a repeating task reverts to: the
// REPEAT_TO_STATE property, else the state being left, else "TODO".
func repeatToState(drawer, leaving string) string {
	if v, ok := PropertyGet(drawer, "REPEAT_TO_STATE"); ok && v != "" {
		return v
	}
	if leaving != "" {
		return leaving
	}
	return "TODO"
}

// stateChangeEntry renders a `- State "new" from "old" [instant]` log line.
// The from clause is omitted when there was no prior keyword.
func stateChangeEntry(newState, oldState string, now time.Time) string {
	stamp := org.NewTimestamp(org.Inactive, now, true).String()
	if oldState == "" {
		return fmt.Sprintf("- State %q %s", newState, stamp)
	}
	return fmt.Sprintf("- State %q from %q %s", newState, oldState, stamp)
}

// parsePlanningRegion parses the planning region, returning an empty
// Planning for an absent region.
func parsePlanningRegion(region string) *org.Planning {
	if region == "" {
		return &org.Planning{}
	}
	p, ok := org.ParsePlanningLine(region)
	if !ok {
		return &org.Planning{}
	}
	return p
}

// setPlanningRegion re-emits the planning line canonically, preserving the
// region's original indentation, or drops the region when empty.
func setPlanningRegion(r *Regions, p *org.Planning) {
	if p.Empty() {
		r.Planning = ""
		return
	}
	indent := r.Planning[:len(r.Planning)-len(strings.TrimLeft(r.Planning, " \t"))]
	r.Planning = indent + p.String()
}

// spliceKeyword rewrites only the keyword portion of a headline line,
// leaving every other byte in place. An empty newKeyword clears it.
func spliceKeyword(cfg org.Config, line, newKeyword string) string {
	i := 0
	for i < len(line) && line[i] == '*' {
		i++
	}
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	end := i
	for end < len(line) && line[end] != ' ' && line[end] != '\t' {
		end++
	}

	if i < end && cfg.IsKeyword(line[i:end]) {
		if newKeyword == "" {
			// Drop the keyword and exactly one following separator.
			rest := line[end:]
			if strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t") {
				rest = rest[1:]
			}
			return line[:i] + rest
		}
		return line[:i] + newKeyword + line[end:]
	}
	if newKeyword == "" {
		return line
	}
	return line[:i] + newKeyword + " " + line[i:]
}
