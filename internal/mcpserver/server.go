// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the inventory dashboard to LLM clients via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/brewstock/internal/apperr"
	"github.com/starford/brewstock/internal/dashboard"
	"github.com/starford/brewstock/internal/inventory"
	"github.com/starford/brewstock/internal/render"
)

const tableFormatURI = "brewstock://table-format"

// Server wraps the MCP server with dashboard tools.
type Server struct {
	mcp *server.MCPServer
	svc *dashboard.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *dashboard.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"brewstock",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_table",
		mcp.WithDescription("Return the inventory table for one ingredient kind: current stock, "+
			"planned usage per batch and remaining stock per item, grouped by supplier or origin. "+
			"Read the table format first via get_table_format or the "+tableFormatURI+" resource."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Ingredient kind"),
			mcp.Enum(string(inventory.KindFermentables), string(inventory.KindHops))),
		mcp.WithString("format", mcp.Description("Output format"), mcp.Enum("text", "json")),
	), s.getTable)

	s.mcp.AddTool(mcp.NewTool("get_batch",
		mcp.WithDescription("Return details of one batch: name, style, gravities in degrees Plato, ABV and IBU."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Brewfather batch ID")),
	), s.getBatch)

	s.mcp.AddTool(mcp.NewTool("refresh_dashboard",
		mcp.WithDescription("Fetch inventory and planned batches from Brewfather again and rebuild both tables."),
	), s.refreshDashboard)

	s.mcp.AddTool(mcp.NewTool("get_table_format",
		mcp.WithDescription("Returns how inventory tables are laid out and how to read their numbers."),
	), s.getTableFormat)

	s.mcp.AddResource(
		mcp.NewResource(tableFormatURI, "Inventory Table Format",
			mcp.WithResourceDescription("Layout and reading rules of the inventory tables."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTableFormatResource,
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

// toolError turns a domain error into a message an LLM can act on.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNoCredentials):
		return mcp.NewToolResultError("brewfather credentials are not configured; run `brewstock credentials set` first")
	case errors.Is(err, apperr.ErrUnauthorized):
		return mcp.NewToolResultError("brewfather rejected the configured credentials")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) getTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := inventory.ParseKind(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := "text"
	if f, err := req.RequireString("format"); err == nil {
		format = f
	}

	snap, err := s.svc.Snapshot(ctx)
	if err != nil {
		return toolError(err), nil
	}
	tbl := snap.Table(kind)

	if format == "json" {
		out, _ := json.MarshalIndent(tbl, "", "  ")
		return mcp.NewToolResultText(string(out)), nil
	}
	var buf bytes.Buffer
	if err := render.WriteText(&buf, tbl); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) getBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Batch(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("batch not found: %s", id)), nil
		}
		return toolError(err), nil
	}
	out, _ := json.MarshalIndent(d, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) refreshDashboard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.svc.Refresh(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"refreshed: %d batches, %d fermentables, %d hops (checksum %s)",
		len(snap.Batches), len(snap.Fermentables.Columns()), len(snap.Hops.Columns()), snap.Checksum,
	)), nil
}

func (s *Server) getTableFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TableFormatContract), nil
}

func (s *Server) readTableFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      tableFormatURI,
			MIMEType: "text/markdown",
			Text:     TableFormatContract,
		},
	}, nil
}
