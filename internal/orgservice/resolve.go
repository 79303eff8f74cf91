package orgservice

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/editor"
	"github.com/starford/raido/internal/org"
)

// LinkTarget is a resolved link destination.
type LinkTarget struct {
	Path   string `json:"path"`
	Pos    int    `json:"pos"`
	NodeID string `json:"node_id,omitempty"`
}

// ResolveLink resolves a parsed link against the vault. fromPath is the
// document the link appears in; relative file paths resolve against its
// directory.
//
//   - id: links resolve through the index to the node's file and position
//   - file: links resolve the path, then the ::search part inside it
//   - fuzzy links resolve as a search within the same document
func (s *Service) ResolveLink(_ context.Context, fromPath string, link org.Link) (*LinkTarget, error) {
	switch link.Type {
	case "id":
		return s.resolveIDLink(link.Path)

	case "file":
		target := link.Path
		if !strings.HasPrefix(target, "/") {
			target = filepath.Join(filepath.Dir(fromPath), target)
		}
		target = filepath.Clean(strings.TrimPrefix(target, "/"))
		t, err := s.resolveInFile(target, link.Search)
		if apperr.Is(err, apperr.KindFileNotFound) {
			// The file is outside the resolution set; the link still
			// points at it, just without a headline.
			return &LinkTarget{Path: target}, nil
		}
		return t, err

	case "fuzzy":
		search := link.Path
		if link.Search != "" {
			search = link.Search
		}
		return s.resolveInFile(fromPath, search)

	default:
		// http, mailto and friends point outside the vault.
		return nil, apperr.Newf(apperr.KindInvalidArgs, "link type %q is not vault-internal", link.Type)
	}
}

func (s *Service) resolveIDLink(id string) (*LinkTarget, error) {
	if s.db != nil {
		row, err := s.db.GetNode(id)
		if err != nil {
			return nil, err
		}
		if row != nil {
			return &LinkTarget{Path: row.File, Pos: row.Pos, NodeID: row.ID}, nil
		}
		return nil, apperr.Newf(apperr.KindHeadlineNotFound, "no node with id %q", id)
	}

	// Indexless fallback: scan the vault.
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	for _, m := range metas {
		data, err := s.store.Read(m.Path)
		if err != nil {
			continue
		}
		doc := org.Parse(string(data))
		for _, n := range doc.Nodes() {
			if n.ID != id {
				continue
			}
			t := &LinkTarget{Path: m.Path, NodeID: id}
			if n.Headline != nil {
				t.Pos = n.Headline.Pos
			}
			return t, nil
		}
	}
	return nil, apperr.Newf(apperr.KindHeadlineNotFound, "no node with id %q", id)
}

// resolveInFile resolves an org search option inside one document:
// "#custom-id" matches the CUSTOM_ID property, "*Title" matches a headline
// title, and anything else is a fuzzy title match.
func (s *Service) resolveInFile(path, search string) (*LinkTarget, error) {
	content, cfg, err := s.readDoc(path)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return &LinkTarget{Path: path}, nil
	}

	doc := org.ParseWithConfig(cfg, content)
	switch {
	case strings.HasPrefix(search, "#"):
		want := search[1:]
		for i := range doc.Headlines {
			if v, ok := doc.Headlines[i].Drawer.Get("CUSTOM_ID"); ok && v == want {
				return targetFor(path, &doc.Headlines[i]), nil
			}
		}
		return nil, apperr.Newf(apperr.KindHeadlineNotFound, "no headline with CUSTOM_ID %q in %s", want, path)

	case strings.HasPrefix(search, "*"):
		pos, err := editor.ResolvePosition(cfg, content, strings.TrimPrefix(search, "*"))
		if err != nil {
			return nil, err
		}
		i, _ := doc.HeadlineAt(pos)
		return targetFor(path, &doc.Headlines[i]), nil

	default:
		for i := range doc.Headlines {
			if doc.Headlines[i].Title == search {
				return targetFor(path, &doc.Headlines[i]), nil
			}
		}
		return nil, apperr.Newf(apperr.KindHeadlineNotFound, "no headline matches %q in %s", search, path)
	}
}

func targetFor(path string, h *org.Headline) *LinkTarget {
	t := &LinkTarget{Path: path, Pos: h.Pos}
	if id, ok := h.ID(); ok {
		t.NodeID = id
	}
	return t
}
