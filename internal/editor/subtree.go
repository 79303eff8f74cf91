package editor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/org"
)

// SubtreeEnd returns the byte offset just past the subtree rooted at pos:
// the next headline with level less than or equal to the root's, or the end
// of content.
func SubtreeEnd(content string, pos int) int {
	level := headlineLevel(content, pos)
	for _, start := range org.HeadlineStarts(content) {
		if start > pos && headlineLevel(content, start) <= level {
			return start
		}
	}
	return len(content)
}

// Subtree extracts the text of the subtree rooted at pos (the headline plus
// all descendants) and its [start, end) span.
func Subtree(content string, pos int) (string, int, int, error) {
	if !IsHeadlineStart(content, pos) {
		return "", 0, 0, apperr.Newf(apperr.KindHeadlineNotFound, "no headline at offset %d", pos)
	}
	end := SubtreeEnd(content, pos)
	return content[pos:end], pos, end, nil
}

func headlineLevel(content string, pos int) int {
	n := 0
	for pos+n < len(content) && content[pos+n] == '*' {
		n++
	}
	return n
}

var subtreeHeadRe = regexp.MustCompile(`(?m)^(\*+) `)

// shiftLevels renumbers every headline in subtree by delta stars. The
// minimum resulting level is 1.
func shiftLevels(subtree string, delta int) string {
	if delta == 0 {
		return subtree
	}
	return subtreeHeadRe.ReplaceAllStringFunc(subtree, func(m string) string {
		level := len(m) - 1 + delta
		if level < 1 {
			level = 1
		}
		return strings.Repeat("*", level) + " "
	})
}

// removeSpan deletes content[start:end), also consuming one trailing
// newline left dangling by the removal.
func removeSpan(content string, start, end int) string {
	out := content[:start] + content[end:]
	// Removing a subtree that ended without a newline may leave the
	// prefix with a dangling blank line.
	if start > 0 && start <= len(out) && strings.HasSuffix(out[:start], "\n\n") && end == len(content) {
		out = out[:start-1] + out[start:]
	}
	return out
}

// insertSubtree places subtree (already renumbered) at offset at,
// normalizing the boundary newlines.
func insertSubtree(content, subtree string, at int) string {
	sub := strings.TrimRight(subtree, "\n") + "\n"
	head := content[:at]
	if head != "" && !strings.HasSuffix(head, "\n") {
		head += "\n"
	}
	return head + sub + content[at:]
}

// InsertSubtreeUnder renumbers sub so its root becomes a child of the
// headline at dstPos and inserts it at the end of that subtree.
func InsertSubtreeUnder(content string, dstPos int, sub string) string {
	target := headlineLevel(content, dstPos)
	sub = shiftLevels(sub, target+1-headlineLevel(sub, 0))
	return insertSubtree(content, sub, SubtreeEnd(content, dstPos))
}

// ErrNotHeadline reports whether err marks a position that no longer
// resolves to a headline.
func ErrNotHeadline(err error) bool {
	return apperr.Is(err, apperr.KindHeadlineNotFound)
}

// ParsePosition parses an integer byte-offset identifier.
func ParsePosition(identifier string) (int, bool) {
	n, err := strconv.Atoi(identifier)
	return n, err == nil && n >= 0
}
