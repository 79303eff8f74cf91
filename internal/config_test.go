package internal

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/org"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func strPtr(s string) *string { return &s }

func TestOrgConfig_ValidatePriorities(t *testing.T) {
	cfg := OrgConfig{Priorities: &PrioritiesConfig{Highest: "AC"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("multi-character priority letter should fail")
	}
	if !strings.Contains(err.Error(), "priorities.highest") {
		t.Errorf("unexpected error: %v", err)
	}
	cfg = OrgConfig{Priorities: &PrioritiesConfig{Highest: "A", Lowest: "C", Default: "B"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("single letters should pass: %v", err)
	}
	// Unset fields are fine; they keep the built-in values.
	cfg = OrgConfig{Priorities: &PrioritiesConfig{Lowest: "E"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("partial priorities should pass: %v", err)
	}
}

func TestOrgConfig_PrioritiesFieldByFieldFallback(t *testing.T) {
	cfg := OrgConfig{Priorities: &PrioritiesConfig{Lowest: "E"}}
	out := cfg.ToOrgConfig()
	def := org.DefaultConfig()

	if out.PriorityLowest != 'E' {
		t.Errorf("priority lowest = %c, want E", out.PriorityLowest)
	}
	if out.PriorityHighest != def.PriorityHighest || out.PriorityDefault != def.PriorityDefault {
		t.Error("unset priority fields should keep the defaults")
	}
}

func TestOrgConfig_ValidateLogActions(t *testing.T) {
	cfg := OrgConfig{LogDone: strPtr("loudly")}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid log action should fail")
	}
	if !strings.Contains(err.Error(), "logDone") {
		t.Errorf("unexpected error: %v", err)
	}
	for _, v := range []string{"none", "time", "note"} {
		cfg = OrgConfig{LogDone: strPtr(v)}
		if err := cfg.Validate(); err != nil {
			t.Errorf("logDone=%q should pass: %v", v, err)
		}
	}
}

func TestOrgConfig_ValidateDeadlineWarningDays(t *testing.T) {
	n := -1
	cfg := OrgConfig{DeadlineWarningDays: &n}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative deadlineWarningDays should fail")
	}
}

func TestOrgConfig_ToOrgConfigDefaults(t *testing.T) {
	var cfg OrgConfig
	out := cfg.ToOrgConfig()
	def := org.DefaultConfig()
	if len(out.Active) != len(def.Active) || out.Active[0].Name != def.Active[0].Name {
		t.Errorf("active keywords = %v, want defaults", out.Active)
	}
	if out.PriorityHighest != def.PriorityHighest {
		t.Errorf("priority highest = %c, want %c", out.PriorityHighest, def.PriorityHighest)
	}
}

func TestOrgConfig_ToOrgConfigOverrides(t *testing.T) {
	cfg := OrgConfig{
		TodoKeywords: &TodoKeywordsConfig{
			ActiveStates: []string{"TODO", "WAIT(w@/!)"},
			DoneStates:   []string{"DONE", "CANCELED"},
		},
		Priorities:    &PrioritiesConfig{Highest: "A", Lowest: "D", Default: "B"},
		LogDone:       strPtr("note"),
		LogIntoDrawer: strPtr("nil"),
	}
	out := cfg.ToOrgConfig()

	if !out.IsKeyword("WAIT") {
		t.Error("WAIT should be a keyword")
	}
	if !out.IsDone("CANCELED") {
		t.Error("CANCELED should be a done keyword")
	}
	if out.PriorityLowest != 'D' {
		t.Errorf("priority lowest = %c, want D", out.PriorityLowest)
	}
	if out.LogDone != org.LogNote {
		t.Errorf("logDone = %v, want LogNote", out.LogDone)
	}
	if out.LogIntoDrawer != "" {
		t.Errorf("logIntoDrawer = %q, want empty (drawer disabled)", out.LogIntoDrawer)
	}
}

func TestOrgConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("RAIDO_PRIORITIES", "A E C")
	t.Setenv("RAIDO_LOG_DONE", "none")

	cfg := OrgConfig{
		Priorities: &PrioritiesConfig{Highest: "A", Lowest: "C", Default: "B"},
		LogDone:    strPtr("note"),
	}
	out := cfg.ToOrgConfig()

	if out.PriorityLowest != 'E' {
		t.Errorf("priority lowest = %c, want E (env wins over file)", out.PriorityLowest)
	}
	if out.LogDone != org.LogNone {
		t.Errorf("logDone = %v, want LogNone (env wins over file)", out.LogDone)
	}
}

func TestOrgConfig_MalformedEnvIgnored(t *testing.T) {
	t.Setenv("RAIDO_PRIORITIES", "not priorities")
	t.Setenv("RAIDO_LOG_DONE", "loudly")

	var cfg OrgConfig
	out := cfg.ToOrgConfig()
	def := org.DefaultConfig()

	if out.PriorityHighest != def.PriorityHighest || out.PriorityLowest != def.PriorityLowest {
		t.Error("malformed RAIDO_PRIORITIES should be ignored")
	}
	if out.LogDone != def.LogDone {
		t.Error("malformed RAIDO_LOG_DONE should be ignored")
	}
}
