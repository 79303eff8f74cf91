// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/orgservice"
	"github.com/starford/raido/internal/storage"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	svc   *orgservice.Service
}

// New creates a new MCP server with all Raido tools registered.
func New(store storage.Provider, svc *orgservice.Service) *Server {
	s := &Server{store: store, svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through org document content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of an org document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. projects/raido.org)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new org document at the specified path. "+
			"Content MUST follow the canonical org format (file keywords, headlines "+
			"with TODO keywords and tags, property drawers). Read the contract first via "+
			"the get_org_contract tool or the raido://org-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new document (must end with .org)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Org content following the Raido org format contract")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("edit_headline",
		mcp.WithDescription("Apply one structural edit to a headline: change TODO state, "+
			"schedule, deadline, tags, priority, properties, clock, refile, or archive. "+
			"The target is resolved by byte offset, ID property, or exact title."),
		mcp.WithString("op", mcp.Required(), mcp.Description("One of: todo, schedule, deadline, add-tag, remove-tag, priority, property-set, property-remove, clock-in, clock-out, ensure-id, refile, archive")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Headline identifier: byte offset, ID, or exact title")),
		mcp.WithString("state", mcp.Description("New TODO keyword (todo op; empty clears)")),
		mcp.WithString("timestamp", mcp.Description("Timestamp value (schedule/deadline ops; empty clears)")),
		mcp.WithString("tag", mcp.Description("Tag name (add-tag/remove-tag ops)")),
		mcp.WithString("priority", mcp.Description("Priority letter (priority op; empty clears)")),
		mcp.WithString("key", mcp.Description("Property key (property ops)")),
		mcp.WithString("value", mcp.Description("Property value (property-set op)")),
		mcp.WithString("dest_path", mcp.Description("Destination document (refile op; empty for same file)")),
		mcp.WithString("dest", mcp.Description("Destination headline identifier (refile op)")),
	), s.editHeadline)

	s.mcp.AddTool(mcp.NewTool("get_org_contract",
		mcp.WithDescription("Returns the canonical Raido org format contract. "+
			"Call this before creating or updating documents to ensure correct structure."),
	), s.getOrgContract)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all org documents or documents in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all documents that link to the specified file path or node ID."),
		mcp.WithString("target", mcp.Required(), mcp.Description("File path or node ID to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Download an asset from a URL (or decode a data: URI) into the "+
			"vault attachments directory and return an org link ready to paste."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or base64 data: URI")),
		mcp.WithString("filename", mcp.Description("Optional filename override")),
	), s.uploadAsset)

	// Resource: org format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://org-format", "Org Format Contract",
			mcp.WithResourceDescription("Canonical org document format that all documents must follow."),
			mcp.WithMIMEType("text/plain"),
		),
		s.readOrgFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateDocument(ctx, path, []byte(content)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) editHeadline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	op, err := req.RequireString("op")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	str := func(name string) string {
		v, _ := req.RequireString(name)
		return v
	}

	now := time.Now()
	var res *orgservice.MutationResult
	switch op {
	case "todo":
		res, err = s.svc.SetTodo(ctx, path, target, str("state"), now)
	case "schedule":
		res, err = s.svc.Schedule(ctx, path, target, str("timestamp"), now)
	case "deadline":
		res, err = s.svc.Deadline(ctx, path, target, str("timestamp"), now)
	case "add-tag":
		res, err = s.svc.AddTag(ctx, path, target, str("tag"))
	case "remove-tag":
		res, err = s.svc.RemoveTag(ctx, path, target, str("tag"))
	case "priority":
		res, err = s.svc.SetPriority(ctx, path, target, str("priority"))
	case "property-set":
		res, err = s.svc.SetProperty(ctx, path, target, str("key"), str("value"))
	case "property-remove":
		res, err = s.svc.RemoveProperty(ctx, path, target, str("key"))
	case "clock-in":
		res, err = s.svc.ClockIn(ctx, path, target, now)
	case "clock-out":
		res, err = s.svc.ClockOut(ctx, path, target, now)
	case "ensure-id":
		res, err = s.svc.EnsureID(ctx, path, target)
	case "refile":
		res, err = s.svc.Refile(ctx, path, target, str("dest_path"), str("dest"), now)
	case "archive":
		res, err = s.svc.Archive(ctx, path, target, now)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown op %q", op)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(res)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getOrgContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OrgFormatContract), nil
}

func (s *Server) readOrgFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://org-format",
			MIMEType: "text/plain",
			Text:     OrgFormatContract,
		},
	}, nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	var lines []string
	for _, e := range bl {
		lines = append(lines, e.SourceFile)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
