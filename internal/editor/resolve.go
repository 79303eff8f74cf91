package editor

import (
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/org"
)

// ResolvePosition resolves a headline identifier against content:
//  1. an integer literal is taken as a byte offset (which must currently
//     point at a headline start),
//  2. an exact match on the ID property,
//  3. an exact match on the title.
//
// No partial or fuzzy matching happens at this layer. Resolution failure is
// a typed HeadlineNotFound error.
func ResolvePosition(cfg org.Config, content, identifier string) (int, error) {
	if off, ok := ParsePosition(identifier); ok {
		if !IsHeadlineStart(content, off) {
			return 0, apperr.Newf(apperr.KindHeadlineNotFound, "offset %d is not a headline", off)
		}
		return off, nil
	}

	doc := org.ParseWithConfig(cfg, content)
	for i := range doc.Headlines {
		if id, ok := doc.Headlines[i].ID(); ok && id == identifier {
			return doc.Headlines[i].Pos, nil
		}
	}
	for i := range doc.Headlines {
		if doc.Headlines[i].Title == identifier {
			return doc.Headlines[i].Pos, nil
		}
	}
	return 0, apperr.Newf(apperr.KindHeadlineNotFound, "no headline matches %q", identifier)
}

// CoerceTimestamp parses a user-supplied timestamp value: a full org
// timestamp, a bare "2006-01-02" date, or a "2006-01-02 15:04" datetime,
// producing an active timestamp. Returns nil, false for anything else.
func CoerceTimestamp(value string) (*org.Timestamp, bool) {
	if ts, _, ok := org.ParseTimestamp(value); ok {
		return ts, true
	}
	if ts, _, ok := org.ParseTimestamp("<" + value + ">"); ok {
		return ts, true
	}
	return nil, false
}
