package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/models"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Path      string
	Title     string
	Checksum  string
	FileTags  []string
	UpdatedAt time.Time
}

// NodeRow represents one ID-carrying entity (file or headline).
type NodeRow struct {
	ID       string
	File     string
	Pos      int
	Level    int // 0 for the file-level node
	Todo     string
	Priority string
	Title    string
	OlPath   []string
	Tags     []string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// GraphNode is a vertex of the knowledge graph.
type GraphNode struct {
	ID    string `json:"id"`
	File  string `json:"file,omitempty"`
	Title string `json:"title,omitempty"`
	Kind  string `json:"kind"` // "file" or "node"
}

// GraphLink is an edge of the knowledge graph.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// UpsertDocument replaces a file row, its nodes, its links, and its FTS
// entry within a transaction.
func (db *DB) UpsertDocument(f FileRow, body string, nodes []NodeRow, links []models.LinkEdge) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(f.FileTags)
	_, err = tx.Exec(`
		INSERT INTO files (path, title, checksum, filetags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			filetags   = excluded.filetags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, f.Path, f.Title, f.Checksum, string(tagsJSON), body, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	if err := ftsUpsert(tx, f.Path, f.Title, body, f.FileTags); err != nil {
		return err
	}

	// Replace nodes and links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM nodes WHERE file = ?`, f.Path)
	if len(nodes) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO nodes (id, file, pos, level, todo, priority, title, olpath, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare node insert: %w", err)
		}
		defer stmt.Close()
		for _, n := range nodes {
			olJSON, _ := json.Marshal(n.OlPath)
			ntJSON, _ := json.Marshal(n.Tags)
			if _, err := stmt.Exec(n.ID, f.Path, n.Pos, n.Level, n.Todo, n.Priority, n.Title, string(olJSON), string(ntJSON)); err != nil {
				return fmt.Errorf("index: insert node: %w", err)
			}
		}
	}

	_, _ = tx.Exec(`DELETE FROM links WHERE source_file = ?`, f.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source_file, source_node, target, type) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.Exec(f.Path, l.SourceNode, l.Target, l.Type); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a file, its nodes, its links, and its FTS entry.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM nodes WHERE file = ?`, path)
	_, _ = tx.Exec(`DELETE FROM links WHERE source_file = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// AllPaths returns every indexed file path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// ListFiles returns paginated file rows, optionally filtered by a file tag.
func (db *DB) ListFiles(limit, offset int, tag string) ([]FileRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	where, args := "", []any{}
	if tag != "" {
		where = `WHERE filetags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM files `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count files: %w", err)
	}

	query := `SELECT path, title, checksum, filetags, updated_at FROM files ` + where +
		` ORDER BY path LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		r, err := scanFileRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// GetNode returns the node with the given ID.
func (db *DB) GetNode(id string) (*NodeRow, error) {
	row := db.conn.QueryRow(`
		SELECT id, file, pos, level, todo, priority, title, olpath, tags
		FROM nodes WHERE id = ?`, id)
	n, err := scanNodeRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("index: get node: %w", err)
	}
	return n, nil
}

// NodesByTag returns every node carrying tag.
func (db *DB) NodesByTag(tag string) ([]NodeRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, file, pos, level, todo, priority, title, olpath, tags
		FROM nodes WHERE tags LIKE ? ORDER BY file, pos`, `%"`+tag+`"%`)
	if err != nil {
		return nil, fmt.Errorf("index: nodes by tag: %w", err)
	}
	defer rows.Close()

	var out []NodeRow
	for rows.Next() {
		n, err := scanNodeRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// Backlinks returns every link edge whose target matches the given file
// path or node ID.
func (db *DB) Backlinks(target string) ([]models.LinkEdge, error) {
	rows, err := db.conn.Query(`
		SELECT source_file, source_node, target, type
		FROM links WHERE target = ? ORDER BY source_file`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []models.LinkEdge
	for rows.Next() {
		var l models.LinkEdge
		if err := rows.Scan(&l.SourceFile, &l.SourceNode, &l.Target, &l.Type); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Graph returns all vertices (files and nodes) and link edges.
func (db *DB) Graph() ([]GraphNode, []GraphLink, error) {
	var nodes []GraphNode

	fr, err := db.conn.Query(`SELECT path, title FROM files ORDER BY path`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph files: %w", err)
	}
	defer fr.Close()
	for fr.Next() {
		var n GraphNode
		if err := fr.Scan(&n.ID, &n.Title); err != nil {
			return nil, nil, err
		}
		n.Kind = "file"
		nodes = append(nodes, n)
	}
	if err := fr.Err(); err != nil {
		return nil, nil, err
	}

	nr, err := db.conn.Query(`SELECT id, file, title FROM nodes ORDER BY file, pos`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer nr.Close()
	for nr.Next() {
		var n GraphNode
		if err := nr.Scan(&n.ID, &n.File, &n.Title); err != nil {
			return nil, nil, err
		}
		n.Kind = "node"
		nodes = append(nodes, n)
	}
	if err := nr.Err(); err != nil {
		return nil, nil, err
	}

	lr, err := db.conn.Query(`SELECT source_file, source_node, target, type FROM links`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph links: %w", err)
	}
	defer lr.Close()
	var links []GraphLink
	for lr.Next() {
		var srcFile, srcNode string
		var l GraphLink
		if err := lr.Scan(&srcFile, &srcNode, &l.Target, &l.Type); err != nil {
			return nil, nil, err
		}
		l.Source = srcFile
		if srcNode != "" {
			l.Source = srcNode
		}
		links = append(links, l)
	}
	return nodes, links, lr.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFileRow(s scanner) (FileRow, error) {
	var r FileRow
	var tagsJSON string
	if err := s.Scan(&r.Path, &r.Title, &r.Checksum, &tagsJSON, &r.UpdatedAt); err != nil {
		return FileRow{}, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &r.FileTags)
	return r, nil
}

func scanNodeRow(s scanner) (*NodeRow, error) {
	var n NodeRow
	var olJSON, tagsJSON string
	if err := s.Scan(&n.ID, &n.File, &n.Pos, &n.Level, &n.Todo, &n.Priority, &n.Title, &olJSON, &tagsJSON); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(olJSON), &n.OlPath)
	_ = json.Unmarshal([]byte(tagsJSON), &n.Tags)
	return &n, nil
}
