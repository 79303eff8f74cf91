package index

import (
	"log/slog"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/org"
	"github.com/starford/raido/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, cfg org.Config, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexDocument(db, cfg, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexDocument parses data as an org document and upserts it into the DB.
func IndexDocument(db *DB, cfg org.Config, path string, data []byte) error {
	content := string(data)
	doc := org.ParseWithConfig(cfg, content)
	doc.Path = path

	title, _ := doc.Keyword("TITLE")
	row := FileRow{
		Path:      path,
		Title:     title,
		Checksum:  checksum.Sum(data),
		FileTags:  doc.FileTags(),
		UpdatedAt: time.Now().UTC(),
	}

	return db.UpsertDocument(row, content, docNodes(cfg, doc), docLinks(path, doc))
}

// docNodes flattens the document's ID-carrying entities into node rows.
func docNodes(cfg org.Config, doc *org.Document) []NodeRow {
	var out []NodeRow
	for _, n := range doc.Nodes() {
		row := NodeRow{ID: n.ID, File: doc.Path}
		if n.Headline != nil {
			h := n.Headline
			row.Pos = h.Pos
			row.Level = h.Level
			row.Todo = h.Keyword
			row.Priority = h.PriorityString()
			row.Title = h.Title
			if i, ok := doc.HeadlineAt(h.Pos); ok {
				row.OlPath = doc.OutlinePath(i)
				row.Tags = doc.AllTags(cfg, i)
			}
		} else if title, ok := doc.Keyword("TITLE"); ok {
			row.Title = title
			row.Tags = doc.FileTags()
		}
		out = append(out, row)
	}
	return out
}

// docLinks converts parsed document links into graph edges.
func docLinks(path string, doc *org.Document) []models.LinkEdge {
	var out []models.LinkEdge
	for _, dl := range doc.Links {
		// The bare path is the target so that Backlinks can be queried by
		// node ID (id: links) or by file path (file: links) directly.
		out = append(out, models.LinkEdge{
			SourceFile: path,
			SourceNode: dl.NodeID,
			Target:     dl.Link.Path,
			Type:       dl.Link.Type,
		})
	}
	return out
}
