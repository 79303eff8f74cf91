package api

import (
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/orgservice"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"projects/raido.org" validate:"required"`
	Content string `json:"content" example:"#+TITLE: Raido\n* Inbox" validate:"required"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content" example:"#+TITLE: Raido\n* Inbox\n* Done" validate:"required"`
}

// EditRequest is the request body for a single structural edit; it shares
// its shape with batch commands.
type EditRequest = orgservice.BatchCommand

// DocDetail is the full document response type (aliased from the domain layer).
type DocDetail = orgservice.DocDetail

// DocListItem is a lightweight item in a list response (aliased from the domain layer).
type DocListItem = orgservice.DocListItem

// DocListResponse wraps paginated document listings.
type DocListResponse struct {
	Documents []DocListItem `json:"documents" validate:"required"`
	Total     int           `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// GraphResponse wraps the knowledge graph.
type GraphResponse struct {
	Nodes []index.GraphNode `json:"nodes" validate:"required"`
	Links []index.GraphLink `json:"links" validate:"required"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"diagram.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/diagram.png" validate:"required"`
}
