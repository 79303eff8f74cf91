// Package org implements the org-mode document model: element parsers for
// timestamps, links, properties, planning and clock lines, the document
// assembler that splits raw text into headline sections, the configuration
// resolver for per-file TODO/logging directives, and tag/property
// inheritance.
//
// Parsing is total: malformed constructs degrade to opaque body text or are
// absent from the model, never surfaced as errors.
package org

import (
	"fmt"
	"strings"
	"time"
)

// TimestampKind distinguishes active <...> from inactive [...] timestamps.
type TimestampKind int

const (
	// Active timestamps appear in agenda views: <2026-02-01 Sun>.
	Active TimestampKind = iota
	// Inactive timestamps are record-keeping only: [2026-02-01 Sun].
	Inactive
)

// Timestamp is a parsed org timestamp. End, when non-nil, is the second half
// of a range; an End's own End is always nil (ranges nest one level only).
type Timestamp struct {
	Kind     TimestampKind
	Time     time.Time
	HasTime  bool   // wall-clock component present
	Repeater string // raw, e.g. "+1w", "++2d", ".+1m"; empty when absent
	Delay    string // raw, e.g. "-2d"; empty when absent
	End      *Timestamp
}

// String renders the timestamp in canonical form. The day name is computed
// from the date rather than preserved, since only rewritten timestamps are
// ever re-serialized.
func (t *Timestamp) String() string {
	open, close := "<", ">"
	if t.Kind == Inactive {
		open, close = "[", "]"
	}
	var b strings.Builder
	b.WriteString(open)
	b.WriteString(t.Time.Format("2006-01-02 Mon"))
	if t.HasTime {
		b.WriteString(t.Time.Format(" 15:04"))
	}
	if t.Repeater != "" {
		b.WriteString(" ")
		b.WriteString(t.Repeater)
	}
	if t.Delay != "" {
		b.WriteString(" ")
		b.WriteString(t.Delay)
	}
	b.WriteString(close)
	if t.End != nil {
		b.WriteString("--")
		b.WriteString(t.End.String())
	}
	return b.String()
}

// Clone returns a deep copy of the timestamp.
func (t *Timestamp) Clone() *Timestamp {
	if t == nil {
		return nil
	}
	c := *t
	c.End = t.End.Clone()
	return &c
}

// Link is an org hyperlink. Type is "fuzzy" when the path carries no
// "type:" prefix; Search is the part after the last "::" in the bracketed
// path. Pos is the byte offset of the opening "[[" within the parsed text.
type Link struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
	Search      string `json:"search,omitempty"`
	Pos         int    `json:"pos"`
}

// Property is one key/value pair of a property drawer. Keys compare
// case-insensitively but are stored as written.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PropertyDrawer is an ordered :PROPERTIES: ... :END: block.
type PropertyDrawer struct {
	Properties []Property `json:"properties"`
}

// Get returns the value for key, matched case-insensitively.
func (d *PropertyDrawer) Get(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, p := range d.Properties {
		if strings.EqualFold(p.Key, key) {
			return p.Value, true
		}
	}
	return "", false
}

// Keyword is a file-level "#+KEY: value" line. Duplicates accumulate in
// document order.
type Keyword struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Planning holds the SCHEDULED/DEADLINE/CLOSED entries of a planning line.
// Source order is not significant; String re-emits canonically.
type Planning struct {
	Scheduled *Timestamp `json:"scheduled,omitempty"`
	Deadline  *Timestamp `json:"deadline,omitempty"`
	Closed    *Timestamp `json:"closed,omitempty"`
}

// Empty reports whether no slot is populated.
func (p *Planning) Empty() bool {
	return p == nil || (p.Scheduled == nil && p.Deadline == nil && p.Closed == nil)
}

// String renders the planning line in canonical SCHEDULED, DEADLINE, CLOSED
// order. Returns "" when empty.
func (p *Planning) String() string {
	if p.Empty() {
		return ""
	}
	var parts []string
	if p.Scheduled != nil {
		parts = append(parts, "SCHEDULED: "+p.Scheduled.String())
	}
	if p.Deadline != nil {
		parts = append(parts, "DEADLINE: "+p.Deadline.String())
	}
	if p.Closed != nil {
		parts = append(parts, "CLOSED: "+p.Closed.String())
	}
	return strings.Join(parts, " ")
}

// Headline is one outline node. Pos is the byte offset of the first '*' of
// the headline line within the document; every mutation is addressed by it.
type Headline struct {
	Level    int             `json:"level"`
	Keyword  string          `json:"keyword,omitempty"`
	Priority byte            `json:"-"`
	Title    string          `json:"title"`
	Tags     []string        `json:"tags,omitempty"`
	Planning *Planning       `json:"planning,omitempty"`
	Drawer   *PropertyDrawer `json:"drawer,omitempty"`
	Pos      int             `json:"pos"`
}

// PriorityString returns the priority letter, or "" when unset.
func (h *Headline) PriorityString() string {
	if h.Priority == 0 {
		return ""
	}
	return string(h.Priority)
}

// ID returns the headline's ID property, if any.
func (h *Headline) ID() (string, bool) {
	return h.Drawer.Get("ID")
}

// DocumentLink pairs a link with the ID of the node whose section contains
// it; NodeID is empty for file-level links or links under ID-less headlines.
type DocumentLink struct {
	Link   Link   `json:"link"`
	NodeID string `json:"node_id,omitempty"`
}

// Document is a parsed org file: file-level keywords and drawer plus the
// document-order headline list. Ancestor relationships are not stored; they
// are derived by scanning backward for the nearest smaller level.
type Document struct {
	Path      string          `json:"path,omitempty"`
	Keywords  []Keyword       `json:"keywords,omitempty"`
	Drawer    *PropertyDrawer `json:"drawer,omitempty"`
	Headlines []Headline      `json:"headlines"`
	Links     []DocumentLink  `json:"links,omitempty"`
}

// Keyword returns the first value for key (case-insensitive), if any.
func (d *Document) Keyword(key string) (string, bool) {
	for _, k := range d.Keywords {
		if strings.EqualFold(k.Key, key) {
			return k.Value, true
		}
	}
	return "", false
}

// KeywordAll returns every value for key in document order.
func (d *Document) KeywordAll(key string) []string {
	var out []string
	for _, k := range d.Keywords {
		if strings.EqualFold(k.Key, key) {
			out = append(out, k.Value)
		}
	}
	return out
}

// FileTags returns the tags declared by #+FILETAGS: :a:b:.
func (d *Document) FileTags() []string {
	v, ok := d.Keyword("FILETAGS")
	if !ok {
		return nil
	}
	return splitTags(v)
}

// Node is an addressable entity: the file itself or a headline, identified
// by its ID property. Headline is nil for the file-level node.
type Node struct {
	ID       string          `json:"id"`
	Headline *Headline       `json:"headline,omitempty"`
	Drawer   *PropertyDrawer `json:"drawer,omitempty"`
}

// Nodes returns every entity carrying an ID property: the file node first
// (when the file drawer has an ID), then headline nodes in document order.
func (d *Document) Nodes() []Node {
	var out []Node
	if id, ok := d.Drawer.Get("ID"); ok {
		out = append(out, Node{ID: id, Drawer: d.Drawer})
	}
	for i := range d.Headlines {
		h := &d.Headlines[i]
		if id, ok := h.ID(); ok {
			out = append(out, Node{ID: id, Headline: h, Drawer: h.Drawer})
		}
	}
	return out
}

// ClockEntry is a parsed "CLOCK:" logbook line. Duration is the textual
// "H:MM" from the source; consumers recompute it rather than trusting it.
type ClockEntry struct {
	Start    *Timestamp
	End      *Timestamp
	Duration string
}

// String renders the clock line, recomputing the duration for closed clocks.
func (c *ClockEntry) String() string {
	if c.End == nil {
		return "CLOCK: " + c.Start.String()
	}
	return fmt.Sprintf("CLOCK: %s--%s => %s",
		c.Start.String(), c.End.String(), FormatDuration(c.End.Time.Sub(c.Start.Time)))
}

// FormatDuration renders d as H:MM with truncated minutes.
func FormatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}

// splitTags parses ":a:b:" (or "a b") into a tag slice.
func splitTags(s string) []string {
	var out []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ' ' || r == '\t' }) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
