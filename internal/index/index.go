package index

import "github.com/starford/raido/internal/models"

// DocIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocIndex interface {
	UpsertDocument(f FileRow, body string, nodes []NodeRow, links []models.LinkEdge) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	GetNode(id string) (*NodeRow, error)
	NodesByTag(tag string) ([]NodeRow, error)
	ListFiles(limit, offset int, tag string) ([]FileRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Graph() ([]GraphNode, []GraphLink, error)
	Backlinks(target string) ([]models.LinkEdge, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocIndex at compile time.
var _ DocIndex = (*DB)(nil)
