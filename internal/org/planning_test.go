package org

import "testing"

func TestParsePlanningLine_AllSlots(t *testing.T) {
	p, ok := ParsePlanningLine("SCHEDULED: <2026-03-01 Sun> DEADLINE: <2026-03-10 Tue> CLOSED: [2026-03-09 Mon 18:00]")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Scheduled == nil || p.Deadline == nil || p.Closed == nil {
		t.Fatalf("slots missing: %+v", p)
	}
	if p.Closed.Kind != Inactive {
		t.Error("CLOSED should be inactive")
	}
}

func TestParsePlanningLine_OrderInsensitive(t *testing.T) {
	p, ok := ParsePlanningLine("DEADLINE: <2026-03-10 Tue> SCHEDULED: <2026-03-01 Sun>")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Scheduled == nil || p.Deadline == nil {
		t.Fatal("slots missing")
	}
	// Canonical re-emission is SCHEDULED, DEADLINE, CLOSED.
	want := "SCHEDULED: <2026-03-01 Sun> DEADLINE: <2026-03-10 Tue>"
	if got := p.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParsePlanningLine_FirstOccurrenceWins(t *testing.T) {
	p, ok := ParsePlanningLine("SCHEDULED: <2026-03-01 Sun> SCHEDULED: <2026-04-01 Wed>")
	if !ok {
		t.Fatal("parse failed")
	}
	if got := p.Scheduled.Time.Format("2006-01-02"); got != "2026-03-01" {
		t.Errorf("scheduled = %q, want first occurrence", got)
	}
}

func TestParsePlanningLine_MalformedTimestampSkipped(t *testing.T) {
	p, ok := ParsePlanningLine("SCHEDULED: not-a-date DEADLINE: <2026-03-10 Tue>")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Scheduled != nil {
		t.Error("malformed SCHEDULED should leave slot empty")
	}
	if p.Deadline == nil {
		t.Error("well-formed DEADLINE should survive")
	}
}

func TestParsePlanningLine_NothingPopulated(t *testing.T) {
	if _, ok := ParsePlanningLine("SCHEDULED: garbage"); ok {
		t.Error("line with no parsable slot should fail")
	}
	if _, ok := ParsePlanningLine("plain body text"); ok {
		t.Error("non-planning line should fail")
	}
}

func TestIsPlanningLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"SCHEDULED: <2026-03-01 Sun>", true},
		{"  DEADLINE: <2026-03-01 Sun>", true},
		{"CLOSED: [2026-03-01 Sun]", true},
		{"* SCHEDULED things", false},
		{"body", false},
	}
	for _, tt := range tests {
		if got := IsPlanningLine(tt.line); got != tt.want {
			t.Errorf("IsPlanningLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
