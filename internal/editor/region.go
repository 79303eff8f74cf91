// Package editor implements position-addressed structural edits on org
// documents. A headline's text is split into ordered, optionally-present
// regions (headline line, planning line, property drawer, logbook drawer,
// body); a mutation transforms exactly one region and reassembly
// concatenates the rest back byte-for-byte. Nothing is ever re-serialized
// from the parsed model.
package editor

import (
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/org"
)

// Regions is the split form of a document around one headline. Absent
// regions are empty strings. Body holds everything after the last consumed
// region verbatim, including its leading newline separator, so Join
// reproduces the input byte-for-byte when nothing changed.
type Regions struct {
	Prefix     string // untouched text before the headline start
	Headline   string // the headline line, no trailing newline
	Planning   string // planning line, "" when absent
	Properties string // :PROPERTIES: drawer raw text, "" when absent
	Logbook    string // :LOGBOOK: drawer raw text, "" when absent
	Body       string // the verbatim remainder, leading "\n" included
}

// Split parses the headline at pos into regions. It returns a typed
// HeadlineNotFound error when pos does not currently resolve to a headline
// start in content.
func Split(content string, pos int) (*Regions, error) {
	if !IsHeadlineStart(content, pos) {
		return nil, apperr.Newf(apperr.KindHeadlineNotFound, "no headline at offset %d", pos)
	}

	r := &Regions{Prefix: content[:pos]}
	rest := content[pos:]

	r.Headline, rest = cutLine(rest)

	if line, after := peekLine(rest); org.IsPlanningLine(line) {
		r.Planning = line
		rest = after
	}
	if raw, after, ok := cutDrawer(rest, ":PROPERTIES:"); ok {
		r.Properties = raw
		rest = after
	}
	if raw, after, ok := cutDrawer(rest, ":LOGBOOK:"); ok {
		r.Logbook = raw
		rest = after
	}
	r.Body = rest
	return r, nil
}

// Join reassembles the regions, joining present regions with single
// newlines. The body carries its own separator.
func (r *Regions) Join() string {
	parts := make([]string, 0, 4)
	parts = append(parts, r.Headline)
	if r.Planning != "" {
		parts = append(parts, r.Planning)
	}
	if r.Properties != "" {
		parts = append(parts, r.Properties)
	}
	if r.Logbook != "" {
		parts = append(parts, r.Logbook)
	}
	return r.Prefix + strings.Join(parts, "\n") + r.Body
}

// IsHeadlineStart reports whether pos points at the first '*' of a
// headline line in content.
func IsHeadlineStart(content string, pos int) bool {
	if pos < 0 || pos >= len(content) || content[pos] != '*' {
		return false
	}
	if pos > 0 && content[pos-1] != '\n' {
		return false
	}
	i := pos
	for i < len(content) && content[i] == '*' {
		i++
	}
	return i > pos && i < len(content) && content[i] == ' '
}

// cutLine splits off the first line. The remainder keeps its leading
// newline so that absent regions cost no separator bookkeeping.
func cutLine(s string) (line, rest string) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// peekLine returns the line immediately following the leading newline of s,
// and the remainder starting at that line's newline. An s without a leading
// newline has no next line.
func peekLine(s string) (line, rest string) {
	if !strings.HasPrefix(s, "\n") {
		return "", s
	}
	body := s[1:]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		return body[:i], s[1+i:]
	}
	return body, ""
}

// cutDrawer consumes a drawer that starts (after the leading newline) with
// the given marker and runs through its :END: line. Returns the raw drawer
// text without trailing newline, the remainder, and whether a terminated
// drawer was found.
func cutDrawer(s, marker string) (raw, rest string, ok bool) {
	line, after := peekLine(s)
	if !strings.EqualFold(strings.TrimSpace(line), marker) {
		return "", s, false
	}
	var b strings.Builder
	b.WriteString(line)
	for {
		line, next := peekLine(after)
		if line == "" && next == after {
			return "", s, false // ran out of lines: unterminated drawer
		}
		b.WriteString("\n")
		b.WriteString(line)
		after = next
		if strings.EqualFold(strings.TrimSpace(line), ":END:") {
			return b.String(), after, true
		}
		if after == "" {
			return "", s, false
		}
	}
}
