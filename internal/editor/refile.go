package editor

import (
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/org"
)

// Refile moves the subtree at srcPos to become a child of the headline at
// dstPos within the same content, appending a refile log entry to the moved
// headline unless cfg.LogRefile is disabled.
func Refile(cfg org.Config, content string, srcPos, dstPos int, now time.Time) (string, error) {
	sub, start, end, err := Subtree(content, srcPos)
	if err != nil {
		return "", err
	}
	if dstPos >= start && dstPos < end {
		return "", apperr.New(apperr.KindInvalidArgs, "cannot refile a headline into its own subtree")
	}
	if !IsHeadlineStart(content, dstPos) {
		return "", apperr.Newf(apperr.KindHeadlineNotFound, "no headline at offset %d", dstPos)
	}

	remaining := removeSpan(content, start, end)
	// A removed span that preceded the target shifts it left.
	if start < dstPos {
		dstPos -= end - start
	}
	return insertRefiled(cfg, remaining, dstPos, sub, now)
}

// RefileBetween moves the subtree at srcPos in src to become a child of the
// headline at dstPos in dst, returning the new contents of both files.
func RefileBetween(cfg org.Config, src string, srcPos int, dst string, dstPos int, now time.Time) (string, string, error) {
	sub, start, end, err := Subtree(src, srcPos)
	if err != nil {
		return "", "", err
	}
	if !IsHeadlineStart(dst, dstPos) {
		return "", "", apperr.Newf(apperr.KindHeadlineNotFound, "no headline at offset %d", dstPos)
	}
	newDst, err := insertRefiled(cfg, dst, dstPos, sub, now)
	if err != nil {
		return "", "", err
	}
	return removeSpan(src, start, end), newDst, nil
}

// insertRefiled renumbers sub to sit one level under the target headline,
// stamps the refile log entry, and inserts it at the end of the target's
// subtree.
func insertRefiled(cfg org.Config, content string, dstPos int, sub string, now time.Time) (string, error) {
	targetLevel := headlineLevel(content, dstPos)
	sub = shiftLevels(sub, targetLevel+1-headlineLevel(sub, 0))

	if cfg.LogRefile != org.LogNone && cfg.LogRefile != org.LogUnset {
		r, err := Split(sub, 0)
		if err != nil {
			return "", err
		}
		stamp := org.NewTimestamp(org.Inactive, now, true)
		r.AppendLogEntry(cfg.LogIntoDrawer, "- Refiled on "+stamp.String())
		sub = r.Join()
	}

	at := SubtreeEnd(content, dstPos)
	return insertSubtree(content, sub, at), nil
}
