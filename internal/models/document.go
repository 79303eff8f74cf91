// Package models defines the domain types shared by storage and index.
package models

import "time"

// DocMetadata is a lightweight representation returned by list operations.
type DocMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkEdge is a directed edge in the knowledge graph: a link found in
// SourceFile (owned by SourceNode when the containing section carries an
// ID) pointing at Target.
type LinkEdge struct {
	SourceFile string `json:"source_file"`
	SourceNode string `json:"source_node,omitempty"`
	Target     string `json:"target"`
	Type       string `json:"type"` // link type: fuzzy, id, file, http, ...
}
