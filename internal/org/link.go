package org

import (
	"regexp"
	"strings"
)

// linkRe matches [[path]] and [[path][description]] bracket links.
var linkRe = regexp.MustCompile(`\[\[([^\]\[]+)\](?:\[([^\]]*)\])?\]`)

// ParseLinks returns every bracket link in s with byte positions relative to
// the start of s.
func ParseLinks(s string) []Link {
	matches := linkRe.FindAllStringSubmatchIndex(s, -1)
	var out []Link
	for _, m := range matches {
		raw := s[m[2]:m[3]]
		desc := ""
		if m[4] >= 0 {
			desc = s[m[4]:m[5]]
		}

		// The search suffix is split on the LAST "::" so that paths
		// containing "::" survive; the type on the FIRST ":".
		path, search := raw, ""
		if i := strings.LastIndex(raw, "::"); i >= 0 {
			path, search = raw[:i], raw[i+2:]
		}

		typ := "fuzzy"
		if i := strings.Index(path, ":"); i >= 0 {
			typ, path = path[:i], path[i+1:]
		}

		out = append(out, Link{
			Type:        typ,
			Path:        path,
			Description: desc,
			Search:      search,
			Pos:         m[0],
		})
	}
	return out
}
