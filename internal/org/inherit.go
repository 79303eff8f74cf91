package org

import (
	"path/filepath"
	"strconv"
	"strings"
)

// alwaysInherited keys consult ancestors even when property inheritance is
// disabled.
var alwaysInherited = map[string]struct{}{
	"CATEGORY": {},
	"ARCHIVE":  {},
	"COLUMNS":  {},
	"LOGGING":  {},
}

// AllTags computes the inherited tag set of headline i: file tags, ancestor
// tags, and the headline's own tags, minus cfg.TagExclusions, de-duplicated
// preserving first-seen order. With tag inheritance disabled only the own
// tags (still filtered) are returned.
func (d *Document) AllTags(cfg Config, i int) []string {
	excluded := make(map[string]struct{}, len(cfg.TagExclusions))
	for _, t := range cfg.TagExclusions {
		excluded[t] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(tags []string) {
		for _, t := range tags {
			if _, skip := excluded[t]; skip {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	if cfg.TagInheritance {
		add(d.FileTags())
		for _, j := range d.ancestors(i) {
			add(d.Headlines[j].Tags)
		}
	}
	add(d.Headlines[i].Tags)
	return out
}

// ancestors returns the indices of headline i's ancestors, outermost first.
func (d *Document) ancestors(i int) []int {
	var rev []int
	level := d.Headlines[i].Level
	for j := i - 1; j >= 0 && level > 1; j-- {
		if d.Headlines[j].Level < level {
			rev = append(rev, j)
			level = d.Headlines[j].Level
		}
	}
	out := make([]int, 0, len(rev))
	for k := len(rev) - 1; k >= 0; k-- {
		out = append(out, rev[k])
	}
	return out
}

// inheritable reports whether key may be looked up on ancestors.
func (c *Config) inheritable(key string) bool {
	if _, ok := alwaysInherited[strings.ToUpper(key)]; ok {
		return true
	}
	if !c.PropertyInheritance {
		return false
	}
	if len(c.InheritProps) == 0 {
		return true // unrestricted
	}
	for _, k := range c.InheritProps {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// Property resolves key for headline i through the inheritance chain: the
// headline's own drawer, then (when permitted) the nearest ancestor drawer,
// then the file-level drawer, then a file keyword matching the key, then a
// "#+PROPERTY: KEY value" keyword.
func (d *Document) Property(cfg Config, i int, key string) (string, bool) {
	if v, ok := d.Headlines[i].Drawer.Get(key); ok {
		return v, true
	}
	if cfg.inheritable(key) {
		anc := d.ancestors(i)
		for j := len(anc) - 1; j >= 0; j-- { // nearest ancestor first
			if v, ok := d.Headlines[anc[j]].Drawer.Get(key); ok {
				return v, true
			}
		}
	}
	return d.fileProperty(key)
}

// fileProperty resolves key against the file-level drawer and keywords.
func (d *Document) fileProperty(key string) (string, bool) {
	if v, ok := d.Drawer.Get(key); ok {
		return v, true
	}
	if v, ok := d.Keyword(key); ok {
		return v, true
	}
	for _, v := range d.KeywordAll("PROPERTY") {
		name, rest, found := strings.Cut(v, " ")
		if found && strings.EqualFold(name, key) {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// PropertyValue resolves key for headline i, serving the virtual properties
// (ITEM, TODO, PRIORITY, LEVEL, TAGS, ALLTAGS, FILE, CATEGORY, SCHEDULED,
// DEADLINE, CLOSED) directly from the headline and document, and every
// other key through the inheritance chain.
func (d *Document) PropertyValue(cfg Config, i int, key string) (string, bool) {
	h := &d.Headlines[i]
	switch strings.ToUpper(key) {
	case "ITEM":
		return h.Title, true
	case "TODO":
		return h.Keyword, h.Keyword != ""
	case "PRIORITY":
		if h.Priority == 0 {
			return string(cfg.PriorityDefault), true
		}
		return string(h.Priority), true
	case "LEVEL":
		return strconv.Itoa(h.Level), true
	case "TAGS":
		return joinTags(h.Tags), len(h.Tags) > 0
	case "ALLTAGS":
		all := d.AllTags(cfg, i)
		return joinTags(all), len(all) > 0
	case "FILE":
		return d.Path, d.Path != ""
	case "CATEGORY":
		return d.Category(cfg, i), true
	case "SCHEDULED":
		if h.Planning != nil && h.Planning.Scheduled != nil {
			return h.Planning.Scheduled.String(), true
		}
		return "", false
	case "DEADLINE":
		if h.Planning != nil && h.Planning.Deadline != nil {
			return h.Planning.Deadline.String(), true
		}
		return "", false
	case "CLOSED":
		if h.Planning != nil && h.Planning.Closed != nil {
			return h.Planning.Closed.String(), true
		}
		return "", false
	}
	return d.Property(cfg, i, key)
}

// Category resolves the CATEGORY of headline i: the stored/inherited
// property, falling back to the #+CATEGORY keyword and then the file name
// without extension.
func (d *Document) Category(cfg Config, i int) string {
	if i >= 0 {
		if v, ok := d.Property(cfg, i, "CATEGORY"); ok {
			return v
		}
	} else if v, ok := d.fileProperty("CATEGORY"); ok {
		return v
	}
	if d.Path == "" {
		return ""
	}
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return ":" + strings.Join(tags, ":") + ":"
}
