package editor

import (
	"fmt"
	"regexp"
	"strings"
)

// propLineRe matches one property line inside drawer text and captures the
// key and value. Keys compare case-insensitively via (?i).
func propLineRe(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?mi)^[ \t]*:` + regexp.QuoteMeta(key) + `:[ \t]*(.*)$`)
}

// PropertyGet scans raw drawer text for key and returns its value.
func PropertyGet(drawer, key string) (string, bool) {
	if drawer == "" {
		return "", false
	}
	m := propLineRe(key).FindStringSubmatch(drawer)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// PropertySet replaces the line for key if present, else inserts a new line
// before :END:. An empty drawer input synthesizes the whole drawer.
func PropertySet(drawer, key, value string) string {
	line := fmt.Sprintf(":%s: %s", key, value)
	if drawer == "" {
		return ":PROPERTIES:\n" + line + "\n:END:"
	}
	re := propLineRe(key)
	if re.MatchString(drawer) {
		return re.ReplaceAllString(drawer, line)
	}
	end := regexp.MustCompile(`(?mi)^[ \t]*:END:[ \t]*$`)
	if loc := end.FindStringIndex(drawer); loc != nil {
		return drawer[:loc[0]] + line + "\n" + drawer[loc[0]:]
	}
	return drawer
}

// PropertyRemove drops the line for key. When removal would leave only the
// :PROPERTIES:/:END: bracket, the whole drawer is dropped (returns "").
func PropertyRemove(drawer, key string) string {
	if drawer == "" {
		return ""
	}
	lines := strings.Split(drawer, "\n")
	out := lines[:0]
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(strings.ToUpper(t), ":"+strings.ToUpper(key)+":") {
			rest := t[len(key)+2:]
			if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
				continue
			}
		}
		out = append(out, l)
	}
	if len(out) <= 2 {
		return ""
	}
	return strings.Join(out, "\n")
}

// AppendLogEntry inserts a log line per the configured log target: into the
// logbook drawer (immediately after its opening line, synthesizing the
// drawer when absent), or, when no drawer is configured, as a plain line
// at the top of the body.
func (r *Regions) AppendLogEntry(drawerName, line string) {
	if drawerName == "" {
		r.Body = "\n" + line + r.Body
		return
	}
	r.appendToLogbook(line)
}

// appendToLogbook inserts line immediately after the :LOGBOOK: opening.
func (r *Regions) appendToLogbook(line string) {
	if r.Logbook == "" {
		r.Logbook = ":LOGBOOK:\n" + line + "\n:END:"
		return
	}
	if i := strings.IndexByte(r.Logbook, '\n'); i >= 0 {
		r.Logbook = r.Logbook[:i] + "\n" + line + r.Logbook[i:]
	}
}
