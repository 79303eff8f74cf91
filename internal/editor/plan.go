package editor

import (
	"fmt"
	"time"

	"github.com/starford/raido/internal/org"
)

// SetScheduled replaces (or clears, when ts is nil) the SCHEDULED slot of
// the headline at pos. Replacing an existing value logs a reschedule entry
// when cfg.LogReschedule is enabled; clearing or first-time setting never
// logs.
func SetScheduled(cfg org.Config, content string, pos int, ts *org.Timestamp, now time.Time) (string, error) {
	return setPlanningSlot(cfg, content, pos, ts, now, planningSlotScheduled)
}

// SetDeadline replaces (or clears) the DEADLINE slot of the headline at
// pos, logging per cfg.LogRedeadline.
func SetDeadline(cfg org.Config, content string, pos int, ts *org.Timestamp, now time.Time) (string, error) {
	return setPlanningSlot(cfg, content, pos, ts, now, planningSlotDeadline)
}

type planningSlot int

const (
	planningSlotScheduled planningSlot = iota
	planningSlotDeadline
)

func setPlanningSlot(cfg org.Config, content string, pos int, ts *org.Timestamp, now time.Time, slot planningSlot) (string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", err
	}

	p := parsePlanningRegion(r.Planning)

	var old *org.Timestamp
	var logAction org.LogAction
	var entry string
	switch slot {
	case planningSlotScheduled:
		old = p.Scheduled
		p.Scheduled = ts
		logAction = cfg.LogReschedule
		entry = "Rescheduled"
	case planningSlotDeadline:
		old = p.Deadline
		p.Deadline = ts
		logAction = cfg.LogRedeadline
		entry = "New deadline"
	}
	setPlanningRegion(r, p)

	if old != nil && ts != nil && logAction != org.LogNone && logAction != org.LogUnset && !loggingSuppressed(r.Properties) {
		stamp := org.NewTimestamp(org.Inactive, now, true).String()
		r.AppendLogEntry(cfg.LogIntoDrawer, fmt.Sprintf("- %s from %q on %s", entry, old.String(), stamp))
	}
	return r.Join(), nil
}
