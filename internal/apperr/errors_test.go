package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindFileNotFound, "gone")
	if KindOf(err) != KindFileNotFound {
		t.Errorf("kind = %v, want file not found", KindOf(err))
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if KindOf(wrapped) != KindFileNotFound {
		t.Error("wrapping lost the kind")
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("unclassified error must map to internal")
	}
}

func TestIs(t *testing.T) {
	err := Newf(KindHeadlineNotFound, "no headline %q", "x")
	if !Is(err, KindHeadlineNotFound) {
		t.Error("Is failed on direct error")
	}
	if Is(err, KindParse) {
		t.Error("Is matched the wrong kind")
	}
	if Is(errors.New("plain"), KindInternal) {
		t.Error("Is must not classify plain errors")
	}
}

func TestWithDetail(t *testing.T) {
	base := New(KindParse, "invalid batch JSON")
	detailed := base.WithDetail("unexpected end of input")
	if got := detailed.Error(); got != "invalid batch JSON: unexpected end of input" {
		t.Errorf("message = %q", got)
	}
	if base.Detail != "" {
		t.Error("WithDetail mutated the original")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindHeadlineNotFound, "headline_not_found"},
		{KindFileNotFound, "file_not_found"},
		{KindParse, "parse_error"},
		{KindInvalidArgs, "invalid_args"},
		{KindInternal, "internal_error"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
