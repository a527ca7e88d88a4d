// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes site administration tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/littlesmartgenius/sitekeeper/internal/content"
	"github.com/littlesmartgenius/sitekeeper/internal/health"
	"github.com/littlesmartgenius/sitekeeper/internal/seo"
	"github.com/littlesmartgenius/sitekeeper/internal/snapshot"
	"github.com/littlesmartgenius/sitekeeper/internal/workflow"
)

// Server wraps the MCP server with site administration tools.
type Server struct {
	mcp     *server.MCPServer
	content *content.Service
	health  *health.Engine
	seo     *seo.Scanner
	snaps   *snapshot.Manager
	flows   *workflow.Trigger
}

// New creates a new MCP server with all tools registered.
func New(c *content.Service, h *health.Engine, s *seo.Scanner, sn *snapshot.Manager, f *workflow.Trigger) *Server {
	srv := &Server{content: c, health: h, seo: s, snaps: sn, flows: f}

	srv.mcp = server.NewMCPServer(
		"SiteKeeper",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	srv.mcp.AddTool(mcp.NewTool("check_health",
		mcp.WithDescription("Run the full site health reconciliation and return the weighted score with every issue found."),
	), srv.checkHealth)

	srv.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List every published article with its per-asset health verdict."),
	), srv.listArticles)

	srv.mcp.AddTool(mcp.NewTool("delete_content",
		mcp.WithDescription("Cascade-delete an article: page, posts, images, social assets, index and sitemap entries. Irreversible; take a snapshot first."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Article slug to delete")),
	), srv.deleteContent)

	srv.mcp.AddTool(mcp.NewTool("deep_scan",
		mcp.WithDescription("Run the on-page SEO scan. Scans up to 15 pages unless a slug narrows it to one."),
		mcp.WithString("slug", mcp.Description("Optional slug to scan a single article")),
	), srv.deepScan)

	srv.mcp.AddTool(mcp.NewTool("create_snapshot",
		mcp.WithDescription("Capture the current site state as a restorable snapshot."),
		mcp.WithString("name", mcp.Description("Optional snapshot name; defaults to a timestamp")),
	), srv.createSnapshot)

	srv.mcp.AddTool(mcp.NewTool("list_snapshots",
		mcp.WithDescription("List all available snapshots with their content counts."),
	), srv.listSnapshots)

	srv.mcp.AddTool(mcp.NewTool("trigger_generation",
		mcp.WithDescription("Dispatch the content generation pipeline."),
		mcp.WithString("action", mcp.Description("Pipeline action; defaults to generate-batch")),
		mcp.WithString("slug", mcp.Description("Target slug for per-article actions")),
	), srv.triggerGeneration)

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

func jsonResult(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) checkHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.health.Check(ctx)
	return jsonResult(report, err)
}

func (s *Server) listArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.content.ListArticles(ctx)
	return jsonResult(list, err)
}

func (s *Server) deleteContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.content.CascadeDelete(ctx, slug)
	return jsonResult(res, err)
}

func (s *Server) deepScan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := ""
	if v, err := req.RequireString("slug"); err == nil {
		slug = v
	}
	report, err := s.seo.Scan(ctx, slug)
	return jsonResult(report, err)
}

func (s *Server) createSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := ""
	if v, err := req.RequireString("name"); err == nil {
		name = v
	}
	res, err := s.snaps.Create(ctx, name)
	return jsonResult(res, err)
}

func (s *Server) listSnapshots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.snaps.List(ctx)
	return jsonResult(list, err)
}

func (s *Server) triggerGeneration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := workflow.ActionGenerateBatch
	if v, err := req.RequireString("action"); err == nil && v != "" {
		action = v
	}
	slug := ""
	if v, err := req.RequireString("slug"); err == nil {
		slug = v
	}
	res, err := s.flows.Fire(ctx, action, slug)
	return jsonResult(res, err)
}
