package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/chatlens/internal/analyze"
)

func registerStatsResource(s *server.MCPServer, a *analyze.Analyzer) {
	resource := mcp.NewResource(
		"chatlens://stats",
		"Message Statistics",
		mcp.WithResourceDescription("Basic statistics for the loaded message collection."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		stats, err := a.BasicStats()
		if err != nil {
			payload := map[string]any{"error": err.Error()}
			data, _ := json.MarshalIndent(payload, "", "  ")
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
			}, nil
		}
		data, _ := json.MarshalIndent(stats, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
