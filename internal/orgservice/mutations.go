package orgservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/editor"
	"github.com/starford/raido/internal/org"
)

// MutationResult reports the outcome of a structural edit.
type MutationResult struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	ID       string `json:"id,omitempty"`
}

// mutateFn rewrites content given the effective config and the resolved
// headline position.
type mutateFn func(cfg org.Config, content string, pos int) (string, error)

// mutate runs the read, resolve, edit, write, reindex cycle shared by all
// single-file mutations.
func (s *Service) mutate(path, identifier string, fn mutateFn) (*MutationResult, error) {
	content, cfg, err := s.readDoc(path)
	if err != nil {
		return nil, err
	}
	pos, err := editor.ResolvePosition(cfg, content, identifier)
	if err != nil {
		return nil, err
	}
	out, err := fn(cfg, content, pos)
	if err != nil {
		return nil, err
	}
	return s.writeAndIndex(path, out, "")
}

func (s *Service) writeAndIndex(path, content, id string) (*MutationResult, error) {
	data := []byte(content)
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, data); err != nil {
		return nil, err
	}
	return &MutationResult{Path: path, Checksum: checksum.Sum(data), ID: id}, nil
}

// SetTodo changes the TODO keyword of a headline. state must be a keyword
// of the document's effective configuration, or empty to clear.
func (s *Service) SetTodo(_ context.Context, path, identifier, state string, now time.Time) (*MutationResult, error) {
	return s.mutate(path, identifier, func(cfg org.Config, content string, pos int) (string, error) {
		if state != "" && !cfg.IsKeyword(state) {
			return "", apperr.Newf(apperr.KindInvalidArgs, "unknown todo keyword %q", state)
		}
		return editor.SetTodoState(cfg, content, pos, state, now)
	})
}

// Schedule sets or clears (empty value) the SCHEDULED timestamp.
func (s *Service) Schedule(_ context.Context, path, identifier, value string, now time.Time) (*MutationResult, error) {
	return s.mutate(path, identifier, func(cfg org.Config, content string, pos int) (string, error) {
		ts, err := coerceOptionalTimestamp(value)
		if err != nil {
			return "", err
		}
		return editor.SetScheduled(cfg, content, pos, ts, now)
	})
}

// Deadline sets or clears (empty value) the DEADLINE timestamp.
func (s *Service) Deadline(_ context.Context, path, identifier, value string, now time.Time) (*MutationResult, error) {
	return s.mutate(path, identifier, func(cfg org.Config, content string, pos int) (string, error) {
		ts, err := coerceOptionalTimestamp(value)
		if err != nil {
			return "", err
		}
		return editor.SetDeadline(cfg, content, pos, ts, now)
	})
}

func coerceOptionalTimestamp(value string) (*org.Timestamp, error) {
	if value == "" {
		return nil, nil
	}
	ts, ok := editor.CoerceTimestamp(value)
	if !ok {
		return nil, apperr.Newf(apperr.KindInvalidArgs, "invalid timestamp %q", value)
	}
	return ts, nil
}

// AddTag adds a tag to a headline; a no-op when already present.
func (s *Service) AddTag(_ context.Context, path, identifier, tag string) (*MutationResult, error) {
	return s.mutate(path, identifier, func(cfg org.Config, content string, pos int) (string, error) {
		return editor.AddTag(cfg, content, pos, tag)
	})
}

// RemoveTag removes a tag from a headline; a no-op when absent.
func (s *Service) RemoveTag(_ context.Context, path, identifier, tag string) (*MutationResult, error) {
	return s.mutate(path, identifier, func(cfg org.Config, content string, pos int) (string, error) {
		return editor.RemoveTag(cfg, content, pos, tag)
	})
}

// SetPriority sets the priority cookie; empty value clears it.
func (s *Service) SetPriority(_ context.Context, path, identifier, value string) (*MutationResult, error) {
	return s.mutate(path, identifier, func(cfg org.Config, content string, pos int) (string, error) {
		var prio byte
		switch len(value) {
		case 0:
		case 1:
			prio = value[0]
		default:
			return "", apperr.Newf(apperr.KindInvalidArgs, "priority must be a single character, got %q", value)
		}
		return editor.SetPriority(cfg, content, pos, prio)
	})
}

// SetProperty sets a property in the headline's drawer.
func (s *Service) SetProperty(_ context.Context, path, identifier, key, value string) (*MutationResult, error) {
	return s.mutate(path, identifier, func(_ org.Config, content string, pos int) (string, error) {
		return editor.SetProperty(content, pos, key, value)
	})
}

// RemoveProperty removes a property from the headline's drawer.
func (s *Service) RemoveProperty(_ context.Context, path, identifier, key string) (*MutationResult, error) {
	return s.mutate(path, identifier, func(_ org.Config, content string, pos int) (string, error) {
		return editor.RemoveProperty(content, pos, key)
	})
}

// ClockIn opens a clock on the headline.
func (s *Service) ClockIn(_ context.Context, path, identifier string, now time.Time) (*MutationResult, error) {
	return s.mutate(path, identifier, func(cfg org.Config, content string, pos int) (string, error) {
		return editor.ClockIn(cfg, content, pos, now)
	})
}

// ClockOut closes the open clock on the headline.
func (s *Service) ClockOut(_ context.Context, path, identifier string, now time.Time) (*MutationResult, error) {
	return s.mutate(path, identifier, func(cfg org.Config, content string, pos int) (string, error) {
		return editor.ClockOut(cfg, content, pos, now)
	})
}

// EnsureID returns the headline's ID property, minting one when absent.
func (s *Service) EnsureID(_ context.Context, path, identifier string) (*MutationResult, error) {
	content, cfg, err := s.readDoc(path)
	if err != nil {
		return nil, err
	}
	pos, err := editor.ResolvePosition(cfg, content, identifier)
	if err != nil {
		return nil, err
	}
	out, id, err := editor.EnsureID(content, pos)
	if err != nil {
		return nil, err
	}
	if out == content {
		return &MutationResult{Path: path, Checksum: checksum.Sum([]byte(content)), ID: id}, nil
	}
	return s.writeAndIndex(path, out, id)
}

// AddHeadline appends a new headline. An empty parent identifier appends a
// level-1 headline at the end of the document; otherwise the new headline
// becomes the last child of the parent.
func (s *Service) AddHeadline(_ context.Context, path, parent string, h editor.NewHeadline) (*MutationResult, error) {
	content, cfg, err := s.readDoc(path)
	if err != nil {
		if !apperr.Is(err, apperr.KindFileNotFound) {
			return nil, err
		}
		// A new file is started implicitly.
		content, cfg = "", s.cfg
	}
	parentPos := -1
	if parent != "" {
		parentPos, err = editor.ResolvePosition(cfg, content, parent)
		if err != nil {
			return nil, err
		}
	}
	if h.Keyword != "" && !cfg.IsKeyword(h.Keyword) {
		return nil, apperr.Newf(apperr.KindInvalidArgs, "unknown todo keyword %q", h.Keyword)
	}
	out, err := editor.AddHeadline(cfg, content, parentPos, h)
	if err != nil {
		return nil, err
	}
	return s.writeAndIndex(path, out, "")
}

// Refile moves the subtree at the source identifier to become the last
// child of the destination headline, within one file or across two.
func (s *Service) Refile(_ context.Context, srcPath, srcIdentifier, dstPath, dstIdentifier string, now time.Time) (*MutationResult, error) {
	srcContent, srcCfg, err := s.readDoc(srcPath)
	if err != nil {
		return nil, err
	}
	srcPos, err := editor.ResolvePosition(srcCfg, srcContent, srcIdentifier)
	if err != nil {
		return nil, err
	}

	if dstPath == "" || dstPath == srcPath {
		dstPos, err := editor.ResolvePosition(srcCfg, srcContent, dstIdentifier)
		if err != nil {
			return nil, err
		}
		out, err := editor.Refile(srcCfg, srcContent, srcPos, dstPos, now)
		if err != nil {
			return nil, err
		}
		return s.writeAndIndex(srcPath, out, "")
	}

	dstContent, dstCfg, err := s.readDoc(dstPath)
	if err != nil {
		return nil, err
	}
	dstPos, err := editor.ResolvePosition(dstCfg, dstContent, dstIdentifier)
	if err != nil {
		return nil, err
	}
	newSrc, newDst, err := editor.RefileBetween(dstCfg, srcContent, srcPos, dstContent, dstPos, now)
	if err != nil {
		return nil, err
	}
	if _, err := s.writeAndIndex(dstPath, newDst, ""); err != nil {
		return nil, err
	}
	return s.writeAndIndex(srcPath, newSrc, "")
}

// Archive moves the subtree at the identifier to the archive file named by
// the effective archive location, stamping provenance properties.
func (s *Service) Archive(_ context.Context, path, identifier string, now time.Time) (*MutationResult, error) {
	content, cfg, err := s.readDoc(path)
	if err != nil {
		return nil, err
	}
	pos, err := editor.ResolvePosition(cfg, content, identifier)
	if err != nil {
		return nil, err
	}

	archFile, archHeading := editor.ArchiveTarget(cfg.ArchiveLocation, path)

	archData, err := s.store.Read(archFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	archContent := string(archData)

	var newContent, newArchive string
	if archHeading == "" {
		newContent, newArchive, err = editor.Archive(cfg, content, pos, path, archContent, now)
		if err != nil {
			return nil, err
		}
	} else {
		var stamped string
		newContent, stamped, err = editor.Archive(cfg, content, pos, path, "", now)
		if err != nil {
			return nil, err
		}
		headPos, resolveErr := editor.ResolvePosition(cfg, archContent, archHeading)
		if resolveErr != nil {
			archContent, err = editor.AddHeadline(cfg, archContent, -1, editor.NewHeadline{Title: archHeading})
			if err != nil {
				return nil, err
			}
			headPos, err = editor.ResolvePosition(cfg, archContent, archHeading)
			if err != nil {
				return nil, err
			}
		}
		newArchive = editor.InsertSubtreeUnder(archContent, headPos, stamped)
	}

	if _, err := s.writeAndIndex(archFile, newArchive, ""); err != nil {
		return nil, err
	}
	return s.writeAndIndex(path, newContent, "")
}
