package org

import (
	"regexp"
	"strconv"
	"strings"
)

// LogAction is a logging policy for a state transition. The zero value
// LogUnset means "no explicit setting"; resolution falls through to the
// next layer.
type LogAction int

const (
	LogUnset LogAction = iota
	LogNone
	LogTime
	LogNote
)

// ParseLogAction maps the config-file spelling to a LogAction. Unknown
// spellings yield LogUnset so that malformed overrides leave the underlying
// value untouched.
func ParseLogAction(s string) LogAction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return LogNone
	case "time":
		return LogTime
	case "note":
		return LogNote
	default:
		return LogUnset
	}
}

// String returns the config-file spelling of a.
func (a LogAction) String() string {
	switch a {
	case LogNone:
		return "none"
	case LogTime:
		return "time"
	case LogNote:
		return "note"
	default:
		return ""
	}
}

// TodoState is one TODO keyword with its fast-selection key and per-keyword
// enter/leave logging actions (LogUnset when the #+TODO: token carried no
// logging spec).
type TodoState struct {
	Name    string
	FastKey byte
	Enter   LogAction
	Leave   LogAction
}

// Config is the effective org behavior configuration. It is built once per
// invocation (defaults, config file, environment) and then overlaid
// per-document by that document's own directives, which take precedence for
// the keyword set itself. The effective config is threaded explicitly into
// every parser and editor call; there is no package-level default pattern.
type Config struct {
	Active []TodoState
	Done   []TodoState

	PriorityHighest byte
	PriorityLowest  byte
	PriorityDefault byte

	LogDone       LogAction
	LogRepeat     LogAction
	LogReschedule LogAction
	LogRedeadline LogAction
	LogRefile     LogAction

	// LogIntoDrawer is the drawer name log entries are appended to.
	// Empty means plain-list entries at the top of the body.
	LogIntoDrawer string

	TagInheritance bool
	TagExclusions  []string

	// PropertyInheritance enables ancestor lookup for all keys;
	// InheritProps allow-lists specific keys when it is disabled.
	PropertyInheritance bool
	InheritProps        []string

	DeadlineWarningDays int
	ArchiveLocation     string
}

// DefaultConfig returns the built-in configuration: TODO/DONE keywords,
// A–C priorities defaulting to B, timestamp logging for done and repeat,
// LOGBOOK as the log target, tag inheritance on.
func DefaultConfig() Config {
	return Config{
		Active:              []TodoState{{Name: "TODO"}},
		Done:                []TodoState{{Name: "DONE"}},
		PriorityHighest:     'A',
		PriorityLowest:      'C',
		PriorityDefault:     'B',
		LogDone:             LogTime,
		LogRepeat:           LogTime,
		LogReschedule:       LogNone,
		LogRedeadline:       LogNone,
		LogRefile:           LogNone,
		LogIntoDrawer:       "LOGBOOK",
		TagInheritance:      true,
		DeadlineWarningDays: 14,
		ArchiveLocation:     "%s_archive::",
	}
}

// Keywords returns the union of active and done keyword names.
func (c *Config) Keywords() []string {
	out := make([]string, 0, len(c.Active)+len(c.Done))
	for _, s := range c.Active {
		out = append(out, s.Name)
	}
	for _, s := range c.Done {
		out = append(out, s.Name)
	}
	return out
}

// IsKeyword reports whether token is a configured TODO keyword. Keywords
// match as whole tokens; callers are responsible for token boundaries.
func (c *Config) IsKeyword(token string) bool {
	_, _, ok := c.State(token)
	return ok
}

// IsDone reports whether keyword is a done state.
func (c *Config) IsDone(keyword string) bool {
	_, done, ok := c.State(keyword)
	return ok && done
}

// State looks up a keyword, returning its TodoState and whether it is a
// done state.
func (c *Config) State(keyword string) (TodoState, bool, bool) {
	for _, s := range c.Active {
		if s.Name == keyword {
			return s, false, true
		}
	}
	for _, s := range c.Done {
		if s.Name == keyword {
			return s, true, true
		}
	}
	return TodoState{}, false, false
}

var todoTokenRe = regexp.MustCompile(`^([^\s(]+)(?:\(([^)]*)\))?$`)

// parseTodoToken splits NAME(fastkey/loggingspec) into a TodoState.
// A logging spec without "/" is an enter-only action; with "/", the part
// before the slash governs enter and the part after governs leave.
// "@" means note, "!" means time.
func parseTodoToken(token string) (TodoState, bool) {
	m := todoTokenRe.FindStringSubmatch(token)
	if m == nil || m[1] == "" || m[1] == "|" {
		return TodoState{}, false
	}
	st := TodoState{Name: m[1]}
	spec := m[2]
	if spec != "" {
		if spec[0] != '@' && spec[0] != '!' && spec[0] != '/' {
			st.FastKey = spec[0]
			spec = spec[1:]
		}
		enter, leave := spec, ""
		if i := strings.Index(spec, "/"); i >= 0 {
			enter, leave = spec[:i], spec[i+1:]
		}
		st.Enter = specAction(enter)
		st.Leave = specAction(leave)
	}
	return st, true
}

func specAction(s string) LogAction {
	switch s {
	case "@":
		return LogNote
	case "!":
		return LogTime
	default:
		return LogUnset
	}
}

// ParseTodoLine parses the value of a #+TODO:/#+SEQ_TODO: keyword. Tokens
// before "|" are active states and tokens after are done states; without a
// "|" every token but the last is active and the last is done.
func ParseTodoLine(value string) (active, done []TodoState) {
	fields := strings.Fields(value)
	var states []TodoState
	bar := -1
	for _, f := range fields {
		if f == "|" {
			bar = len(states)
			continue
		}
		if st, ok := parseTodoToken(f); ok {
			states = append(states, st)
		}
	}
	if len(states) == 0 {
		return nil, nil
	}
	if bar < 0 {
		bar = len(states) - 1
	}
	return states[:bar], states[bar:]
}

// ForDocument overlays a document's own directives onto c: #+TODO:/
// #+SEQ_TODO: lines replace the keyword set (multiple lines accumulate with
// each other), #+STARTUP: tokens set the logging toggles, #+PRIORITIES:
// sets the priority letters when exactly three single-character tokens are
// present, and #+ARCHIVE: overrides the archive location.
func (c Config) ForDocument(keywords []Keyword) Config {
	var active, done []TodoState
	for _, k := range keywords {
		switch {
		case strings.EqualFold(k.Key, "TODO") || strings.EqualFold(k.Key, "SEQ_TODO"):
			a, d := ParseTodoLine(k.Value)
			active = append(active, a...)
			done = append(done, d...)

		case strings.EqualFold(k.Key, "STARTUP"):
			for _, tok := range strings.Fields(k.Value) {
				c.applyStartupToken(strings.ToLower(tok))
			}

		case strings.EqualFold(k.Key, "PRIORITIES"):
			f := strings.Fields(k.Value)
			if len(f) == 3 && len(f[0]) == 1 && len(f[1]) == 1 && len(f[2]) == 1 {
				c.PriorityHighest = f[0][0]
				c.PriorityLowest = f[1][0]
				c.PriorityDefault = f[2][0]
			}

		case strings.EqualFold(k.Key, "ARCHIVE"):
			if v := strings.TrimSpace(k.Value); v != "" {
				c.ArchiveLocation = v
			}
		}
	}
	if len(active) > 0 || len(done) > 0 {
		c.Active, c.Done = active, done
	}
	return c
}

// applyStartupToken maps one #+STARTUP: token onto a logging toggle using
// the log<X>/lognote<X>/nolog<X> triad.
func (c *Config) applyStartupToken(tok string) {
	set := func(dst *LogAction, suffix string) bool {
		switch tok {
		case "log" + suffix:
			*dst = LogTime
		case "lognote" + suffix:
			*dst = LogNote
		case "nolog" + suffix:
			*dst = LogNone
		default:
			return false
		}
		return true
	}
	_ = set(&c.LogDone, "done") ||
		set(&c.LogRepeat, "repeat") ||
		set(&c.LogReschedule, "reschedule") ||
		set(&c.LogRedeadline, "redeadline") ||
		set(&c.LogRefile, "refile")
}

// ApplyEnv overlays well-formed RAIDO_* environment variables onto c.
// Absent or malformed variables leave the underlying value untouched.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if v := getenv("RAIDO_TODO_KEYWORDS"); v != "" {
		if a, d := ParseTodoLine(v); len(a) > 0 || len(d) > 0 {
			c.Active, c.Done = a, d
		}
	}
	if v := getenv("RAIDO_PRIORITIES"); v != "" {
		f := strings.Fields(v)
		if len(f) == 3 && len(f[0]) == 1 && len(f[1]) == 1 && len(f[2]) == 1 {
			c.PriorityHighest, c.PriorityLowest, c.PriorityDefault = f[0][0], f[1][0], f[2][0]
		}
	}
	overlay := func(dst *LogAction, name string) {
		if a := ParseLogAction(getenv(name)); a != LogUnset {
			*dst = a
		}
	}
	overlay(&c.LogDone, "RAIDO_LOG_DONE")
	overlay(&c.LogRepeat, "RAIDO_LOG_REPEAT")
	overlay(&c.LogReschedule, "RAIDO_LOG_RESCHEDULE")
	overlay(&c.LogRedeadline, "RAIDO_LOG_REDEADLINE")
	overlay(&c.LogRefile, "RAIDO_LOG_REFILE")
	if v := getenv("RAIDO_LOG_INTO_DRAWER"); v != "" {
		if strings.EqualFold(v, "nil") {
			c.LogIntoDrawer = ""
		} else {
			c.LogIntoDrawer = v
		}
	}
	if v := getenv("RAIDO_TAG_INHERITANCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.TagInheritance = b
		}
	}
	if v := getenv("RAIDO_DEADLINE_WARNING_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			if n < 0 {
				n = 0
			}
			c.DeadlineWarningDays = n
		}
	}
	if v := getenv("RAIDO_ARCHIVE_LOCATION"); v != "" {
		c.ArchiveLocation = v
	}
	return c
}
