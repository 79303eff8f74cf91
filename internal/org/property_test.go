package org

import "testing"

func TestParsePropertyLine(t *testing.T) {
	p, ok := ParsePropertyLine("  :Effort: 2:00")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Key != "Effort" || p.Value != "2:00" {
		t.Errorf("property = %+v", p)
	}
}

func TestParsePropertyLine_EmptyValue(t *testing.T) {
	p, ok := ParsePropertyLine(":BLOCKED:")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Key != "BLOCKED" || p.Value != "" {
		t.Errorf("property = %+v", p)
	}
}

func TestParsePropertyLine_BracketsAreNotProperties(t *testing.T) {
	for _, line := range []string{":PROPERTIES:", ":END:", " :properties: "} {
		if _, ok := ParsePropertyLine(line); ok {
			t.Errorf("%q should not be a property", line)
		}
	}
}

func TestFindPropertyDrawer(t *testing.T) {
	s := "* Head\n:PROPERTIES:\n:ID: x\n:END:\nbody\n"
	start, end, ok := FindPropertyDrawer(s)
	if !ok {
		t.Fatal("drawer not found")
	}
	if got := s[start:end]; got != ":PROPERTIES:\n:ID: x\n:END:" {
		t.Errorf("drawer = %q", got)
	}
}

func TestFindPropertyDrawer_Unterminated(t *testing.T) {
	if _, _, ok := FindPropertyDrawer(":PROPERTIES:\n:ID: x\n"); ok {
		t.Error("unterminated drawer is not a drawer")
	}
}

func TestParsePropertyDrawer_OrderAndLookup(t *testing.T) {
	d := ParsePropertyDrawer(":PROPERTIES:\n:ID: abc\n:Effort: 1:00\njunk line\n:END:")
	if len(d.Properties) != 2 {
		t.Fatalf("len = %d, want 2", len(d.Properties))
	}
	if d.Properties[0].Key != "ID" {
		t.Errorf("first key = %q, want ID", d.Properties[0].Key)
	}
	// Keys match case-insensitively but are stored as written.
	if v, ok := d.Get("effort"); !ok || v != "1:00" {
		t.Errorf("Get(effort) = %q, %v", v, ok)
	}
	if _, ok := d.Get("missing"); ok {
		t.Error("missing key should not resolve")
	}
}

func TestPropertyDrawerGet_NilReceiver(t *testing.T) {
	var d *PropertyDrawer
	if _, ok := d.Get("ID"); ok {
		t.Error("nil drawer should resolve nothing")
	}
}
