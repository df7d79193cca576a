// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes graph search and journal capture tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quickseq/internal/deeplink"
	"github.com/starford/quickseq/internal/ingest"
	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/search"
)

const linkFormsURI = "quickseq://link-forms"

// Ingester is implemented by *ingest.Service.
type Ingester interface {
	Text(ctx context.Context, text string) (string, error)
	DataURL(ctx context.Context, raw string) (ingest.Item, error)
	Files(ctx context.Context, paths []string) ingest.Report
}

// GraphSource resolves the open graph.
type GraphSource interface {
	CurrentGraph(ctx context.Context) (*models.Graph, error)
}

// Server wraps the MCP server with quickseq tools.
type Server struct {
	mcp    *server.MCPServer
	search search.Searcher
	ingest Ingester
	graphs GraphSource
	links  deeplink.Builder
}

// New creates a new MCP server with all tools registered.
func New(s search.Searcher, in Ingester, graphs GraphSource, links deeplink.Builder, version string) *Server {
	srv := &Server{search: s, ingest: in, graphs: graphs, links: links}

	srv.mcp = server.NewMCPServer(
		"quickseq",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	srv.mcp.AddTool(mcp.NewTool("search_graph",
		mcp.WithDescription("Search page names and block contents of the open graph. Pages come first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-sensitive substring to look for")),
		mcp.WithNumber("limit", mcp.Description("Maximum results per kind (0 for no limit)")),
	), srv.searchGraph)

	srv.mcp.AddTool(mcp.NewTool("append_journal",
		mcp.WithDescription("Append one block of text to today's journal page."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Block content in the graph's Markdown dialect")),
	), srv.appendJournal)

	srv.mcp.AddTool(mcp.NewTool("ingest_file",
		mcp.WithDescription("Copy local files into the graph and link them from today's journal. "+
			"Markdown files become pages; media is embedded; anything else is linked."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path; separate several paths with newlines")),
	), srv.ingestFile)

	srv.mcp.AddTool(mcp.NewTool("ingest_data_url",
		mcp.WithDescription("Store an image given as a data: URL or an http(s) URL under assets/ "+
			"and embed it in today's journal."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data:<mime>;base64,<payload> or http(s) URL")),
	), srv.ingestDataURL)

	srv.mcp.AddTool(mcp.NewTool("deep_link",
		mcp.WithDescription("Build the URL that opens a page or block in the note application. "+
			"See the "+linkFormsURI+" resource for the forms."),
		mcp.WithString("kind", mcp.Required(), mcp.Enum(string(models.KindPage), string(models.KindBlock))),
		mcp.WithString("title", mcp.Description("Page title, for kind=page")),
		mcp.WithString("identifier", mcp.Description("Block uuid, for kind=block")),
	), srv.deepLink)

	srv.mcp.AddResource(
		mcp.NewResource(linkFormsURI, "Link Forms",
			mcp.WithResourceDescription("Deep-link and journal link forms produced by quickseq."),
			mcp.WithMIMEType("text/markdown"),
		),
		srv.readLinkFormsResource,
	)

	return srv
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.search.SearchPagesAndBlocks(ctx, query)
	if limit := req.GetInt("limit", 0); limit > 0 {
		if len(res.Pages) > limit {
			res.Pages = res.Pages[:limit]
		}
		if len(res.Blocks) > limit {
			res.Blocks = res.Blocks[:limit]
		}
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) appendJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.ingest.Text(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("appended to: %s", page)), nil
}

type reportItem struct {
	Source string `json:"source"`
	Link   string `json:"link,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) ingestFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var paths []string
	for _, p := range strings.Split(raw, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultError("no path given"), nil
	}

	report := s.ingest.Files(ctx, paths)
	items := make([]reportItem, 0, len(report.Items))
	for _, it := range report.Items {
		ri := reportItem{Source: it.Source, Link: it.Link}
		if it.Err != nil {
			ri.Error = it.Err.Error()
			ri.Link = ""
		}
		items = append(items, ri)
	}
	out, _ := json.MarshalIndent(map[string]any{
		"page":    report.Page,
		"summary": report.Summary(),
		"items":   items,
	}, "", "  ")
	if report.Succeeded() == 0 {
		return mcp.NewToolResultError(string(out)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deepLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item := models.SearchResult{
		Kind:       models.Kind(kind),
		Title:      req.GetString("title", ""),
		Identifier: req.GetString("identifier", ""),
	}
	g, err := s.graphs.CurrentGraph(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	link, ok := s.links.ForResult(g.Name, item)
	if !ok {
		return mcp.NewToolResultError("title is required for pages and identifier for blocks"), nil
	}
	return mcp.NewToolResultText(link), nil
}

func (s *Server) readLinkFormsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      linkFormsURI,
			MIMEType: "text/markdown",
			Text:     LinkFormsContract(s.links.Scheme),
		},
	}, nil
}
