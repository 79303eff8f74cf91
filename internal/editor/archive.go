package editor

import (
	"strings"
	"time"

	"github.com/starford/raido/internal/org"
)

// Archive extracts the subtree at pos from content, renumbers its root to
// level 1, stamps the ARCHIVE_* provenance properties into its drawer, and
// appends it to archiveContent. docPath names the source file for
// ARCHIVE_FILE. Returns the new source content and the new archive content.
func Archive(cfg org.Config, content string, pos int, docPath, archiveContent string, now time.Time) (string, string, error) {
	sub, start, end, err := Subtree(content, pos)
	if err != nil {
		return "", "", err
	}

	doc := org.ParseWithConfig(cfg, content)
	doc.Path = docPath
	idx, ok := doc.HeadlineAt(pos)
	if !ok {
		// Subtree succeeded, so the position is a headline; the parse
		// must agree.
		return "", "", errInternalHeadline(pos)
	}
	h := doc.Headlines[idx]

	sub = shiftLevels(sub, 1-h.Level)

	r, err := Split(sub, 0)
	if err != nil {
		return "", "", err
	}
	stamp := org.NewTimestamp(org.Inactive, now, true)
	r.Properties = PropertySet(r.Properties, "ARCHIVE_TIME", stamp.String())
	r.Properties = PropertySet(r.Properties, "ARCHIVE_FILE", docPath)
	if olp := doc.OutlinePath(idx); len(olp) > 0 {
		r.Properties = PropertySet(r.Properties, "ARCHIVE_OLPATH", strings.Join(olp, "/"))
	}
	r.Properties = PropertySet(r.Properties, "ARCHIVE_CATEGORY", doc.Category(cfg, idx))
	if h.Keyword != "" {
		r.Properties = PropertySet(r.Properties, "ARCHIVE_TODO", h.Keyword)
	}
	sub = r.Join()

	newArchive := archiveContent
	if newArchive != "" && !strings.HasSuffix(newArchive, "\n") {
		newArchive += "\n"
	}
	newArchive += strings.TrimRight(sub, "\n") + "\n"

	return removeSpan(content, start, end), newArchive, nil
}

// ArchiveTarget resolves an org archive-location template ("%s_archive::"
// by default) against the source file path, returning the archive file path
// and the headline title under which entries should land (empty for
// top-level appends). Leading stars on the heading part are dropped.
func ArchiveTarget(location, docPath string) (file, heading string) {
	if location == "" {
		location = "%s_archive::"
	}
	file, heading, _ = strings.Cut(location, "::")
	file = strings.ReplaceAll(file, "%s", docPath)
	if file == "" {
		file = docPath
	}
	heading = strings.TrimLeft(heading, "* ")
	return file, heading
}
