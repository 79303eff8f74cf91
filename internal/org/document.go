package org

import (
	"regexp"
	"strings"
)

var (
	headlineStartRe = regexp.MustCompile(`(?m)^\*+ `)
	blockBeginRe    = regexp.MustCompile(`(?mi)^[ \t]*#\+BEGIN_[A-Za-z0-9_-]+`)
	blockEndRe      = regexp.MustCompile(`(?mi)^[ \t]*#\+END_[A-Za-z0-9_-]+`)
	keywordLineRe   = regexp.MustCompile(`(?m)^#\+([A-Za-z_]+):[ \t]*(.*?)[ \t]*$`)
)

// Parse assembles content into a Document using the default configuration
// overlaid with the document's own directives.
func Parse(content string) *Document {
	return ParseWithConfig(DefaultConfig(), content)
}

// ParseWithConfig assembles content into a Document. The document's own
// #+TODO:/#+STARTUP:/#+PRIORITIES:/#+ARCHIVE: keywords are merged onto cfg
// before headlines are matched, so a file-local keyword set always wins.
// Parsing is deterministic and never fails.
func ParseWithConfig(cfg Config, content string) *Document {
	starts := HeadlineStarts(content)

	fileEnd := len(content)
	if len(starts) > 0 {
		fileEnd = starts[0]
	}
	fileSection := content[:fileEnd]

	doc := &Document{Keywords: parseKeywords(fileSection)}
	eff := cfg.ForDocument(doc.Keywords)

	if s, e, ok := FindPropertyDrawer(fileSection); ok {
		doc.Drawer = ParsePropertyDrawer(fileSection[s:e])
	}
	for _, l := range ParseLinks(fileSection) {
		doc.Links = append(doc.Links, DocumentLink{Link: l})
	}

	for i, start := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		section := strings.TrimRight(content[start:end], " \t\n\r")
		if section == "" {
			continue
		}
		h := parseSection(eff, section, start)
		doc.Headlines = append(doc.Headlines, h)

		id, _ := h.Drawer.Get("ID")
		for _, l := range ParseLinks(section) {
			l.Pos += start // rebase to absolute file offsets
			doc.Links = append(doc.Links, DocumentLink{Link: l, NodeID: id})
		}
	}
	return doc
}

// HeadlineStarts returns the byte offsets of every headline start in
// content, in ascending order, excluding matches inside #+BEGIN/#+END
// block ranges.
func HeadlineStarts(content string) []int {
	blocks := blockRanges(content)
	var out []int
	for _, m := range headlineStartRe.FindAllStringIndex(content, -1) {
		if !insideAny(blocks, m[0]) {
			out = append(out, m[0])
		}
	}
	return out
}

// blockRanges pairs every #+BEGIN_x with the next following #+END_y
// (case-insensitive; the words need not match) and returns [start, end)
// byte ranges. Unterminated begins produce no range.
func blockRanges(content string) [][2]int {
	begins := blockBeginRe.FindAllStringIndex(content, -1)
	ends := blockEndRe.FindAllStringIndex(content, -1)

	var out [][2]int
	ei := 0
	for _, b := range begins {
		for ei < len(ends) && ends[ei][0] < b[1] {
			ei++
		}
		if ei == len(ends) {
			break
		}
		end := ends[ei][1]
		// Extend to the end of the #+END line.
		if nl := strings.IndexByte(content[end:], '\n'); nl >= 0 {
			end += nl + 1
		} else {
			end = len(content)
		}
		out = append(out, [2]int{b[0], end})
	}
	return out
}

func insideAny(ranges [][2]int, off int) bool {
	for _, r := range ranges {
		if off > r[0] && off < r[1] {
			return true
		}
	}
	return false
}

// parseKeywords extracts #+KEY: value lines, skipping block fences.
func parseKeywords(s string) []Keyword {
	var out []Keyword
	for _, m := range keywordLineRe.FindAllStringSubmatch(s, -1) {
		key := m[1]
		up := strings.ToUpper(key)
		if strings.HasPrefix(up, "BEGIN_") || strings.HasPrefix(up, "END_") {
			continue
		}
		out = append(out, Keyword{Key: key, Value: m[2]})
	}
	return out
}

// parseSection parses one headline section (headline line through the text
// before the next headline, trailing whitespace trimmed) into a Headline.
func parseSection(cfg Config, section string, absPos int) Headline {
	line := section
	rest := ""
	if i := strings.IndexByte(section, '\n'); i >= 0 {
		line, rest = section[:i], section[i+1:]
	}

	h := ParseHeadlineLine(cfg, line)
	h.Pos = absPos

	// Planning is only recognized on the line immediately following the
	// headline; a blank line in between hides it. Downstream log-entry
	// placement relies on the same adjacency rule.
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		if p, ok := ParsePlanningLine(rest[:i]); ok {
			h.Planning = p
		}
	} else if p, ok := ParsePlanningLine(rest); ok {
		h.Planning = p
	}

	if s, e, ok := FindPropertyDrawer(rest); ok {
		h.Drawer = ParsePropertyDrawer(rest[s:e])
	}
	return h
}

var (
	priorityRe = regexp.MustCompile(`^\[#([A-Za-z0-9])\][ \t]*`)
	tagsRe     = regexp.MustCompile(`[ \t]((?::[\w@#%]+)+:)[ \t]*$`)
)

// ParseHeadlineLine parses a single headline line (stars, optional keyword,
// optional [#P] priority, title, trailing :tags:) using cfg's keyword set.
// The returned Headline has Pos 0; callers set the absolute offset.
func ParseHeadlineLine(cfg Config, line string) Headline {
	var h Headline
	for h.Level < len(line) && line[h.Level] == '*' {
		h.Level++
	}
	rest := strings.TrimLeft(line[h.Level:], " \t")

	// Keyword: the first whitespace-bounded token, if configured.
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		if cfg.IsKeyword(rest[:i]) {
			h.Keyword = rest[:i]
			rest = strings.TrimLeft(rest[i:], " \t")
		}
	} else if cfg.IsKeyword(rest) {
		h.Keyword = rest
		rest = ""
	}

	if m := priorityRe.FindStringSubmatch(rest); m != nil {
		h.Priority = m[1][0]
		rest = rest[len(m[0]):]
	}

	if m := tagsRe.FindStringSubmatch(rest); m != nil {
		h.Tags = splitTags(m[1])
		rest = rest[:len(rest)-len(m[0])]
	}

	h.Title = strings.TrimSpace(rest)
	return h
}

// OutlinePath returns the ancestor titles of headline i (outermost first),
// found by scanning backward for the nearest preceding headline with a
// strictly smaller level.
func (d *Document) OutlinePath(i int) []string {
	var rev []string
	level := d.Headlines[i].Level
	for j := i - 1; j >= 0 && level > 1; j-- {
		if d.Headlines[j].Level < level {
			rev = append(rev, d.Headlines[j].Title)
			level = d.Headlines[j].Level
		}
	}
	out := make([]string, 0, len(rev))
	for k := len(rev) - 1; k >= 0; k-- {
		out = append(out, rev[k])
	}
	return out
}

// HeadlineAt returns the index of the headline whose Pos equals pos.
func (d *Document) HeadlineAt(pos int) (int, bool) {
	for i := range d.Headlines {
		if d.Headlines[i].Pos == pos {
			return i, true
		}
	}
	return 0, false
}
