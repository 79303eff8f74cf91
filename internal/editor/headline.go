package editor

import (
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/org"
)

func errInternalHeadline(pos int) error {
	return apperr.Newf(apperr.KindInternal, "position %d parsed as a headline but did not resolve", pos)
}

// NewHeadline describes a headline to be added.
type NewHeadline struct {
	Title    string
	Keyword  string
	Priority byte
	Tags     []string
}

// Render produces the headline line at the given level.
func (n NewHeadline) Render(level int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("*", level))
	b.WriteString(" ")
	if n.Keyword != "" {
		b.WriteString(n.Keyword)
		b.WriteString(" ")
	}
	if n.Priority != 0 {
		b.WriteString("[#")
		b.WriteByte(n.Priority)
		b.WriteString("] ")
	}
	b.WriteString(n.Title)
	if len(n.Tags) > 0 {
		b.WriteString(" :")
		b.WriteString(strings.Join(n.Tags, ":"))
		b.WriteString(":")
	}
	return b.String()
}

// AddHeadline appends a new headline to content: as the last child of the
// headline at parentPos, or, when parentPos is negative, as a level-1
// headline at the end of the file.
func AddHeadline(cfg org.Config, content string, parentPos int, h NewHeadline) (string, error) {
	if parentPos < 0 {
		line := h.Render(1)
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + line + "\n", nil
	}

	if !IsHeadlineStart(content, parentPos) {
		return "", apperr.Newf(apperr.KindHeadlineNotFound, "no headline at offset %d", parentPos)
	}
	level := headlineLevel(content, parentPos)
	at := SubtreeEnd(content, parentPos)
	return insertSubtree(content, h.Render(level+1), at), nil
}
