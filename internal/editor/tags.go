package editor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/org"
)

var trailingTagsRe = regexp.MustCompile(`[ \t]((?::[\w@#%]+)+:)[ \t]*$`)

// AddTag appends tag to the headline at pos. Adding an already-present tag
// is a no-op, so add/remove pairs are idempotent.
func AddTag(cfg org.Config, content string, pos int, tag string) (string, error) {
	return editTags(content, pos, func(tags []string) []string {
		for _, t := range tags {
			if t == tag {
				return tags
			}
		}
		return append(tags, tag)
	})
}

// RemoveTag drops tag from the headline at pos.
func RemoveTag(cfg org.Config, content string, pos int, tag string) (string, error) {
	return editTags(content, pos, func(tags []string) []string {
		out := tags[:0]
		for _, t := range tags {
			if t != tag {
				out = append(out, t)
			}
		}
		return out
	})
}

func editTags(content string, pos int, edit func([]string) []string) (string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", err
	}

	line := r.Headline
	var tags []string
	bare := line
	if m := trailingTagsRe.FindStringSubmatchIndex(line); m != nil {
		tags = splitTagGroup(line[m[2]:m[3]])
		bare = line[:m[0]]
	}

	tags = edit(tags)
	if len(tags) == 0 {
		r.Headline = bare
	} else {
		r.Headline = bare + " :" + strings.Join(tags, ":") + ":"
	}
	return r.Join(), nil
}

func splitTagGroup(group string) []string {
	var out []string
	for _, t := range strings.Split(group, ":") {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SetPriority sets the [#X] cookie of the headline at pos; prio 0 clears it.
func SetPriority(cfg org.Config, content string, pos int, prio byte) (string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", err
	}

	line := r.Headline
	i := 0
	for i < len(line) && line[i] == '*' {
		i++
	}
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	end := i
	for end < len(line) && line[end] != ' ' && line[end] != '\t' {
		end++
	}
	// The cookie sits after the keyword, if one is present.
	at := i
	if i < end && cfg.IsKeyword(line[i:end]) {
		at = end
		for at < len(line) && (line[at] == ' ' || line[at] == '\t') {
			at++
		}
	}

	cookieRe := regexp.MustCompile(`^\[#[A-Za-z0-9]\][ \t]*`)
	rest := line[at:]
	if m := cookieRe.FindString(rest); m != "" {
		rest = rest[len(m):]
	}
	switch {
	case prio == 0:
		r.Headline = line[:at] + rest
	default:
		r.Headline = line[:at] + fmt.Sprintf("[#%c] ", prio) + rest
	}
	return r.Join(), nil
}

// SetProperty sets key to value in the headline's property drawer,
// synthesizing the drawer when absent.
func SetProperty(content string, pos int, key, value string) (string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", err
	}
	r.Properties = PropertySet(r.Properties, key, value)
	return r.Join(), nil
}

// RemoveProperty drops key from the headline's property drawer; a drawer
// left holding only its bracket lines is removed entirely.
func RemoveProperty(content string, pos int, key string) (string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", err
	}
	r.Properties = PropertyRemove(r.Properties, key)
	return r.Join(), nil
}

// EnsureID returns the headline's ID property, minting and storing a new
// UUID when absent. The returned content is unchanged when an ID exists.
func EnsureID(content string, pos int) (string, string, error) {
	r, err := Split(content, pos)
	if err != nil {
		return "", "", err
	}
	if id, ok := PropertyGet(r.Properties, "ID"); ok {
		return content, id, nil
	}
	id := uuid.NewString()
	r.Properties = PropertySet(r.Properties, "ID", id)
	return r.Join(), id, nil
}
