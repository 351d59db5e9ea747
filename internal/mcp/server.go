// Package mcp exposes chatlens analytics as a Model Context Protocol
// server over stdio.
//
// Every tool is a pure read against the analyzer's already-loaded
// collection, so concurrent tool calls need no synchronization. Tool
// handlers never propagate Go errors across the protocol boundary:
// any failure becomes an error tool result so one bad call cannot
// take down a long-lived server.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/chatlens/internal/analyze"
)

// maxConversationLimit caps how many messages one conversation call
// may return.
const maxConversationLimit = 1000

// ServerConfig holds configuration for the MCP server. Analyzer is a
// caller-owned handle over a loaded collection; the server never loads
// or reloads data itself.
type ServerConfig struct {
	Analyzer *analyze.Analyzer
	Version  string
}

// NewServer creates a configured MCP server with all chatlens tools
// and resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"chatlens",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	registerStatsTool(s, cfg.Analyzer)
	registerWordsTool(s, cfg.Analyzer)
	registerConversationStatsTool(s, cfg.Analyzer)
	registerContactsTool(s, cfg.Analyzer)
	registerSearchTool(s, cfg.Analyzer)
	registerContactStatsTool(s, cfg.Analyzer)
	registerConversationTool(s, cfg.Analyzer)

	registerStatsResource(s, cfg.Analyzer)

	return s
}

func registerStatsTool(s *server.MCPServer, a *analyze.Analyzer) {
	tool := mcp.NewTool("chatlens_stats",
		mcp.WithDescription("Get basic statistics about the loaded message collection: total messages, unique senders, top senders, and message length figures."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := a.BasicStats()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(stats), nil
	})
}

func registerWordsTool(s *server.MCPServer, a *analyze.Analyzer) {
	tool := mcp.NewTool("chatlens_words",
		mcp.WithDescription("Get the most frequently used words across all messages, stop words and attachment artifacts excluded."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("top_n",
			mcp.Description("Number of top words to return (default: 10)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topN := 10
		if v, err := req.RequireFloat("top_n"); err == nil && int(v) > 0 {
			topN = int(v)
		}
		words, err := a.WordFrequency(topN)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(words), nil
	})
}

func registerConversationStatsTool(s *server.MCPServer, a *analyze.Analyzer) {
	tool := mcp.NewTool("chatlens_conversation_stats",
		mcp.WithDescription("Analyze conversation patterns per contact: message counts, sent/received split, and who talks more."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("top_n",
			mcp.Description("Number of top conversations to analyze (default: 5)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topN := 5
		if v, err := req.RequireFloat("top_n"); err == nil && int(v) > 0 {
			topN = int(v)
		}
		stats, err := a.ConversationStats(topN)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(stats), nil
	})
}

func registerContactsTool(s *server.MCPServer, a *analyze.Analyzer) {
	tool := mcp.NewTool("chatlens_contacts",
		mcp.WithDescription("List contacts with their message counts, busiest first."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of contacts to return (default: 20)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := 20
		if v, err := req.RequireFloat("limit"); err == nil && int(v) > 0 {
			limit = int(v)
		}
		contacts, err := a.ListContacts(limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(contacts), nil
	})
}

func registerSearchTool(s *server.MCPServer, a *analyze.Analyzer) {
	tool := mcp.NewTool("chatlens_search",
		mcp.WithDescription("Search message text for a substring, case-insensitively. Returns matching messages with sender and date."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for in message bodies"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}
		limit := 10
		if v, err := req.RequireFloat("limit"); err == nil && int(v) > 0 {
			limit = int(v)
		}
		results, err := a.SearchMessages(query, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(results), nil
	})
}

func registerContactStatsTool(s *server.MCPServer, a *analyze.Analyzer) {
	tool := mcp.NewTool("chatlens_contact_stats",
		mcp.WithDescription("Get detailed statistics for one exact contact: counts, sent/received percentages, and average message length."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("contact",
			mcp.Required(),
			mcp.Description("Formatted contact identifier, e.g. \"+1 (555) 123-4567\" or an email"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		contact, err := req.RequireString("contact")
		if err != nil {
			return mcp.NewToolResultError("contact is required"), nil
		}
		stats, err := a.ContactStats(contact)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(stats), nil
	})
}

func registerConversationTool(s *server.MCPServer, a *analyze.Analyzer) {
	tool := mcp.NewTool("chatlens_conversation",
		mcp.WithDescription("Retrieve the conversation with a contact: chronologically ordered messages plus derived statistics. Contact matching is a loose bidirectional substring test, so partial numbers and partial names resolve. Message content is processed locally and never leaves the machine."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("contact",
			mcp.Required(),
			mcp.Description("Contact name, phone number fragment, or email to retrieve the conversation with"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages to return (default: 100, max: 1000). Truncation keeps the most recent messages."),
		),
		mcp.WithNumber("days_back",
			mcp.Description("Accepted for compatibility; currently a no-op because timestamps are opaque tokens at this layer."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		contact, err := req.RequireString("contact")
		if err != nil {
			return mcp.NewToolResultError("contact is required"), nil
		}
		limit := 100
		if v, err := req.RequireFloat("limit"); err == nil && int(v) > 0 {
			limit = int(v)
		}
		if limit > maxConversationLimit {
			return mcp.NewToolResultError(fmt.Sprintf("limit too high; maximum is %d messages", maxConversationLimit)), nil
		}
		daysBack := 0
		if v, err := req.RequireFloat("days_back"); err == nil {
			daysBack = int(v)
		}
		conv, err := a.Conversation(contact, limit, daysBack)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(conv), nil
	})
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
