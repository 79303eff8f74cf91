// Package orgservice coordinates vault storage, the org editing core, and
// the SQLite index behind a single service type that the HTTP API, the MCP
// server, and the CLI all share.
package orgservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/org"
	"github.com/starford/raido/internal/storage"
)

// DocDetail is the full representation of an org document.
type DocDetail struct {
	Path      string            `json:"path"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Checksum  string            `json:"checksum"`
	FileTags  []string          `json:"filetags"`
	Headlines []org.Headline    `json:"headlines"`
	Backlinks []models.LinkEdge `json:"backlinks"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DocListItem is a lightweight item in a list response.
type DocListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	FileTags  []string  `json:"filetags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NodeDetail is an ID-carrying entity enriched with its backlinks.
type NodeDetail struct {
	ID        string            `json:"id"`
	File      string            `json:"file"`
	Pos       int               `json:"pos"`
	Level     int               `json:"level"`
	Todo      string            `json:"todo,omitempty"`
	Priority  string            `json:"priority,omitempty"`
	Title     string            `json:"title"`
	OlPath    []string          `json:"olpath"`
	Tags      []string          `json:"tags"`
	Backlinks []models.LinkEdge `json:"backlinks"`
}

// Service coordinates storage, editing, and index operations. The index
// may be nil for indexless (pure CLI) use; read paths that need it return
// an invalid-args error in that case.
type Service struct {
	store  storage.Provider
	db     *index.DB
	cfg    org.Config
	logger *slog.Logger
}

// NewService creates a new org service. cfg is the base configuration
// (defaults overlaid with config file and environment); per-document
// directives are applied on top of it for every operation.
func NewService(store storage.Provider, db *index.DB, cfg org.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, db: db, cfg: cfg, logger: logger}
}

// Config returns the base configuration.
func (s *Service) Config() org.Config { return s.cfg }

// readDoc reads a document and computes its effective configuration.
func (s *Service) readDoc(path string) (string, org.Config, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", org.Config{}, apperr.Newf(apperr.KindFileNotFound, "document not found: %s", path)
		}
		return "", org.Config{}, err
	}
	content := string(data)
	doc := org.Parse(content)
	return content, s.cfg.ForDocument(doc.Keywords), nil
}

// ParseDocument reads a document and returns its raw content, effective
// configuration, and the parse under that configuration.
func (s *Service) ParseDocument(path string) (string, org.Config, *org.Document, error) {
	content, cfg, err := s.readDoc(path)
	if err != nil {
		return "", org.Config{}, nil, err
	}
	doc := org.ParseWithConfig(cfg, content)
	doc.Path = path
	return content, cfg, doc, nil
}

// GetDocument reads a document from storage, parses it, and enriches it
// with backlinks from the index.
func (s *Service) GetDocument(_ context.Context, path string) (*DocDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Newf(apperr.KindFileNotFound, "document not found: %s", path)
		}
		return nil, err
	}
	return s.buildDocDetail(path, data)
}

// CreateDocument writes a new document and indexes it.
func (s *Service) CreateDocument(_ context.Context, path string, content []byte) (*DocDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.Newf(apperr.KindInvalidArgs, "document already exists: %s", path)
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDocDetail(path, content)
}

// UpdateDocument writes updated content with optimistic concurrency: a
// non-empty ifMatch must equal the current checksum.
func (s *Service) UpdateDocument(_ context.Context, path string, content []byte, ifMatch string) (*DocDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Newf(apperr.KindFileNotFound, "document not found: %s", path)
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.New(apperr.KindInvalidArgs, "checksum mismatch: document changed since read")
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDocDetail(path, content)
}

// DeleteDocument removes a document from storage and index.
func (s *Service) DeleteDocument(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.Newf(apperr.KindFileNotFound, "document not found: %s", path)
		}
		return err
	}
	if s.db == nil {
		return nil
	}
	return s.db.DeleteDocument(path)
}

// ListDocuments returns paginated documents with optional file-tag filter.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, tag string) ([]DocListItem, int, error) {
	if s.db == nil {
		return nil, 0, apperr.New(apperr.KindInvalidArgs, "listing requires the index")
	}
	rows, total, err := s.db.ListFiles(limit, offset, tag)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocListItem, len(rows))
	for i, r := range rows {
		items[i] = DocListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			FileTags:  nonNilSlice(r.FileTags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, apperr.New(apperr.KindInvalidArgs, "search requires the index")
	}
	return s.db.Search(query, limit)
}

// Graph returns all files, nodes, and link edges for graph visualization.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	if s.db == nil {
		return nil, nil, apperr.New(apperr.KindInvalidArgs, "graph requires the index")
	}
	return s.db.Graph()
}

// Backlinks returns all link edges pointing at the given file path or
// node ID.
func (s *Service) Backlinks(_ context.Context, target string) ([]models.LinkEdge, error) {
	if s.db == nil {
		return nil, apperr.New(apperr.KindInvalidArgs, "backlinks require the index")
	}
	return s.db.Backlinks(target)
}

// GetNode looks up an ID-carrying entity and enriches it with backlinks.
func (s *Service) GetNode(_ context.Context, id string) (*NodeDetail, error) {
	if s.db == nil {
		return nil, apperr.New(apperr.KindInvalidArgs, "node lookup requires the index")
	}
	row, err := s.db.GetNode(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.Newf(apperr.KindHeadlineNotFound, "no node with id %q", id)
	}
	bl, err := s.db.Backlinks(id)
	if err != nil {
		return nil, err
	}
	return &NodeDetail{
		ID:        row.ID,
		File:      row.File,
		Pos:       row.Pos,
		Level:     row.Level,
		Todo:      row.Todo,
		Priority:  row.Priority,
		Title:     row.Title,
		OlPath:    nonNilSlice(row.OlPath),
		Tags:      nonNilSlice(row.Tags),
		Backlinks: nonNilSlice(bl),
	}, nil
}

// IndexFile parses data and upserts it into the index. Exported so that
// sync and the watcher can reuse it. A nil index makes this a no-op.
func (s *Service) IndexFile(path string, data []byte) error {
	if s.db == nil {
		return nil
	}
	return index.IndexDocument(s.db, s.cfg, path, data)
}

// buildDocDetail constructs a DocDetail from raw data without re-reading
// the file.
func (s *Service) buildDocDetail(path string, data []byte) (*DocDetail, error) {
	content := string(data)
	doc := org.Parse(content)
	doc.Path = path
	title, _ := doc.Keyword("TITLE")

	var bl []models.LinkEdge
	if s.db != nil {
		var err error
		bl, err = s.db.Backlinks(path)
		if err != nil {
			return nil, err
		}
	}

	return &DocDetail{
		Path:      path,
		Title:     title,
		Content:   content,
		Checksum:  checksum.Sum(data),
		FileTags:  nonNilSlice(doc.FileTags()),
		Headlines: doc.Headlines,
		Backlinks: nonNilSlice(bl),
		UpdatedAt: time.Now(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
