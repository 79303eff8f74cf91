package org

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsKeyword("TODO") || !cfg.IsKeyword("DONE") {
		t.Error("defaults should know TODO and DONE")
	}
	if cfg.IsDone("TODO") {
		t.Error("TODO is not a done state")
	}
	if !cfg.IsDone("DONE") {
		t.Error("DONE is a done state")
	}
	if cfg.PriorityDefault != 'B' {
		t.Errorf("default priority = %c, want B", cfg.PriorityDefault)
	}
}

func TestParseTodoLine_WithBar(t *testing.T) {
	active, done := ParseTodoLine("TODO NEXT WAIT | DONE CANCELED")
	if len(active) != 3 || len(done) != 2 {
		t.Fatalf("active = %d, done = %d, want 3 and 2", len(active), len(done))
	}
	if active[1].Name != "NEXT" {
		t.Errorf("active[1] = %q", active[1].Name)
	}
	if done[1].Name != "CANCELED" {
		t.Errorf("done[1] = %q", done[1].Name)
	}
}

func TestParseTodoLine_WithoutBar(t *testing.T) {
	// Without "|" the last token is the done state.
	active, done := ParseTodoLine("TODO NEXT DONE")
	if len(active) != 2 || len(done) != 1 {
		t.Fatalf("active = %d, done = %d, want 2 and 1", len(active), len(done))
	}
	if done[0].Name != "DONE" {
		t.Errorf("done = %q", done[0].Name)
	}
}

func TestParseTodoLine_FastKeysAndLogging(t *testing.T) {
	active, _ := ParseTodoLine("WAIT(w@/!) | DONE(d!)")
	if len(active) != 1 {
		t.Fatal("no active state")
	}
	st := active[0]
	if st.Name != "WAIT" {
		t.Errorf("name = %q", st.Name)
	}
	if st.FastKey != 'w' {
		t.Errorf("fast key = %c, want w", st.FastKey)
	}
	if st.Enter != LogNote {
		t.Errorf("enter = %v, want LogNote", st.Enter)
	}
	if st.Leave != LogTime {
		t.Errorf("leave = %v, want LogTime", st.Leave)
	}
}

func TestParseTodoLine_Empty(t *testing.T) {
	active, done := ParseTodoLine("")
	if active != nil || done != nil {
		t.Errorf("empty line parsed to %v | %v", active, done)
	}
}

func TestForDocument_TodoReplacesBase(t *testing.T) {
	cfg := DefaultConfig()
	eff := cfg.ForDocument([]Keyword{{Key: "TODO", Value: "OPEN | CLOSED"}})
	if eff.IsKeyword("TODO") {
		t.Error("document keyword set should replace the base set")
	}
	if !eff.IsKeyword("OPEN") || !eff.IsDone("CLOSED") {
		t.Error("document keywords missing")
	}
	// The base config is untouched.
	if !cfg.IsKeyword("TODO") {
		t.Error("base config mutated")
	}
}

func TestForDocument_MultipleTodoLinesAccumulate(t *testing.T) {
	eff := DefaultConfig().ForDocument([]Keyword{
		{Key: "TODO", Value: "OPEN | CLOSED"},
		{Key: "SEQ_TODO", Value: "REVIEW | MERGED"},
	})
	for _, kw := range []string{"OPEN", "CLOSED", "REVIEW", "MERGED"} {
		if !eff.IsKeyword(kw) {
			t.Errorf("%s missing from accumulated set", kw)
		}
	}
}

func TestForDocument_Startup(t *testing.T) {
	eff := DefaultConfig().ForDocument([]Keyword{
		{Key: "STARTUP", Value: "lognotedone nologrepeat logreschedule"},
	})
	if eff.LogDone != LogNote {
		t.Errorf("LogDone = %v, want LogNote", eff.LogDone)
	}
	if eff.LogRepeat != LogNone {
		t.Errorf("LogRepeat = %v, want LogNone", eff.LogRepeat)
	}
	if eff.LogReschedule != LogTime {
		t.Errorf("LogReschedule = %v, want LogTime", eff.LogReschedule)
	}
}

func TestForDocument_Priorities(t *testing.T) {
	eff := DefaultConfig().ForDocument([]Keyword{{Key: "PRIORITIES", Value: "A D B"}})
	if eff.PriorityHighest != 'A' || eff.PriorityLowest != 'D' || eff.PriorityDefault != 'B' {
		t.Errorf("priorities = %c %c %c", eff.PriorityHighest, eff.PriorityLowest, eff.PriorityDefault)
	}

	// Malformed directives leave the defaults untouched.
	eff = DefaultConfig().ForDocument([]Keyword{{Key: "PRIORITIES", Value: "AA D"}})
	if eff.PriorityHighest != 'A' || eff.PriorityLowest != 'C' {
		t.Error("malformed #+PRIORITIES should be ignored")
	}
}

func TestForDocument_Archive(t *testing.T) {
	eff := DefaultConfig().ForDocument([]Keyword{{Key: "ARCHIVE", Value: "old/%s_done.org::* Done"}})
	if eff.ArchiveLocation != "old/%s_done.org::* Done" {
		t.Errorf("archive location = %q", eff.ArchiveLocation)
	}
}

func TestParseLogAction(t *testing.T) {
	tests := []struct {
		in   string
		want LogAction
	}{
		{"none", LogNone},
		{" Time ", LogTime},
		{"NOTE", LogNote},
		{"loudly", LogUnset},
		{"", LogUnset},
	}
	for _, tt := range tests {
		if got := ParseLogAction(tt.in); got != tt.want {
			t.Errorf("ParseLogAction(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RAIDO_TODO_KEYWORDS":   "OPEN | SHUT",
		"RAIDO_LOG_DONE":        "note",
		"RAIDO_LOG_INTO_DRAWER": "nil",
		"RAIDO_TAG_INHERITANCE": "false",
	}
	cfg := DefaultConfig().ApplyEnv(func(k string) string { return env[k] })

	if !cfg.IsKeyword("OPEN") || !cfg.IsDone("SHUT") {
		t.Error("RAIDO_TODO_KEYWORDS not applied")
	}
	if cfg.LogDone != LogNote {
		t.Errorf("LogDone = %v, want LogNote", cfg.LogDone)
	}
	if cfg.LogIntoDrawer != "" {
		t.Errorf("LogIntoDrawer = %q, want empty", cfg.LogIntoDrawer)
	}
	if cfg.TagInheritance {
		t.Error("TagInheritance should be off")
	}
}

func TestApplyEnv_MalformedIgnored(t *testing.T) {
	env := map[string]string{
		"RAIDO_PRIORITIES":            "nope",
		"RAIDO_LOG_DONE":              "loudly",
		"RAIDO_DEADLINE_WARNING_DAYS": "-3",
	}
	cfg := DefaultConfig().ApplyEnv(func(k string) string { return env[k] })
	def := DefaultConfig()

	if cfg.PriorityHighest != def.PriorityHighest {
		t.Error("malformed priorities should be ignored")
	}
	if cfg.LogDone != def.LogDone {
		t.Error("malformed log action should be ignored")
	}
	if cfg.DeadlineWarningDays != 0 {
		t.Errorf("negative warning days clamp to 0, got %d", cfg.DeadlineWarningDays)
	}
}
