// Package mcp exposes the icebreaker pipeline as an MCP tool over the
// streamable HTTP transport.
package mcp

import (
	"context"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/Laisky/icebreaker/internal/icebreaker"
	"github.com/Laisky/icebreaker/library/log"
)

const (
	serverName    = "icebreaker"
	serverVersion = "1.0.0"

	// ToolGenerateIcebreaker is the name of the only registered tool.
	ToolGenerateIcebreaker = "generate_icebreaker"
)

// Generator is the pipeline capability the tool needs.
type Generator interface {
	GenerateDetailed(ctx context.Context, name, company string) (*icebreaker.Result, error)
}

// Server wraps the MCP server state for the HTTP transport.
type Server struct {
	handler   http.Handler
	logger    logSDK.Logger
	generator Generator
}

// toolResponse is the JSON payload returned by generate_icebreaker.
type toolResponse struct {
	Message string `json:"message"`
	Summary string `json:"summary"`
	Query   string `json:"query"`
	RunID   string `json:"run_id"`
}

// NewServer constructs a remote MCP server exposing generate_icebreaker under a single handler.
func NewServer(generator Generator, logger logSDK.Logger) (*Server, error) {
	if generator == nil {
		return nil, errors.New("icebreaker generator is required")
	}
	if logger == nil {
		logger = log.Logger
	}

	mcpServer := srv.NewMCPServer(
		serverName,
		serverVersion,
		srv.WithToolCapabilities(true),
		srv.WithInstructions("Use generate_icebreaker to draft a short LinkedIn connection message for a person."),
		srv.WithRecovery(),
		srv.WithHooks(newMCPHooks(logger.Named("mcp_hooks"))),
	)

	s := &Server{
		handler:   srv.NewStreamableHTTPServer(mcpServer),
		logger:    logger.Named("mcp"),
		generator: generator,
	}

	tool := mcp.NewTool(
		ToolGenerateIcebreaker,
		mcp.WithDescription("Search the web for a person's professional profile and draft a personalized icebreaker under 300 characters."),
		mcp.WithString(
			"name",
			mcp.Required(),
			mcp.Description("Full name of the person, e.g. Jensen Huang."),
		),
		mcp.WithString(
			"company",
			mcp.Description("Optional company used to narrow the search."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	mcpServer.AddTool(tool, s.handleGenerateIcebreaker)

	return s, nil
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleGenerateIcebreaker(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.generator == nil {
		return mcp.NewToolResultError("icebreaker generator is not configured"), nil
	}

	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("name cannot be empty"), nil
	}
	company, _ := argumentsMap(req.Params.Arguments)["company"].(string)

	result, err := s.generator.GenerateDetailed(ctx, name, company)
	if err != nil {
		s.logger.Error("generate_icebreaker failed",
			zap.Error(err),
			zap.String("name", name),
			zap.String("company", company))
		return mcp.NewToolResultError("An error occurred: " + err.Error()), nil
	}

	toolResult, err := mcp.NewToolResultJSON(toolResponse{
		Message: result.Message,
		Summary: result.Summary,
		Query:   result.Query,
		RunID:   result.RunID,
	})
	if err != nil {
		s.logger.Error("encode icebreaker result", zap.Error(err))
		return mcp.NewToolResultError("failed to encode icebreaker result"), nil
	}

	return toolResult, nil
}

func argumentsMap(raw any) map[string]any {
	switch value := raw.(type) {
	case map[string]any:
		return value
	case map[string]string:
		result := make(map[string]any, len(value))
		for key, item := range value {
			result[key] = item
		}
		return result
	default:
		return nil
	}
}
