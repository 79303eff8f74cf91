package org

import (
	"regexp"
	"strings"
)

var (
	propertyLineRe = regexp.MustCompile(`^[ \t]*:([^:\s]+):(?:[ \t]+(.*?))?[ \t]*$`)
	drawerBeginRe  = regexp.MustCompile(`(?mi)^[ \t]*:PROPERTIES:[ \t]*$`)
	drawerEndRe    = regexp.MustCompile(`(?mi)^[ \t]*:END:[ \t]*$`)
)

// ParsePropertyLine parses one ":KEY: value" drawer line. The :PROPERTIES:
// and :END: brackets are not properties.
func ParsePropertyLine(line string) (Property, bool) {
	m := propertyLineRe.FindStringSubmatch(line)
	if m == nil {
		return Property{}, false
	}
	key := m[1]
	if strings.EqualFold(key, "PROPERTIES") || strings.EqualFold(key, "END") {
		return Property{}, false
	}
	return Property{Key: key, Value: m[2]}, true
}

// FindPropertyDrawer locates the first :PROPERTIES: ... :END: block in s and
// returns its byte range [start, end) including both bracket lines. An
// unterminated drawer is not a drawer.
func FindPropertyDrawer(s string) (start, end int, ok bool) {
	b := drawerBeginRe.FindStringIndex(s)
	if b == nil {
		return 0, 0, false
	}
	e := drawerEndRe.FindStringIndex(s[b[1]:])
	if e == nil {
		return 0, 0, false
	}
	return b[0], b[1] + e[1], true
}

// ParsePropertyDrawer parses the raw text of a drawer (bracket lines
// included) into ordered key/value pairs. Lines that are not well-formed
// property lines are skipped.
func ParsePropertyDrawer(raw string) *PropertyDrawer {
	d := &PropertyDrawer{}
	for _, line := range strings.Split(raw, "\n") {
		if p, ok := ParsePropertyLine(line); ok {
			d.Properties = append(d.Properties, p)
		}
	}
	return d
}
