package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// resolveProjectTool returns the tool definition for resolve_project
func resolveProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "resolve_project",
		Description: "Resolve a free-text description or name to the single best matching local project directory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Project name or description (e.g. 'kafka', 'cache en rust')",
				},
			},
			Required: []string{"query"},
		},
	}
}

// listProjectsTool returns the tool definition for list_projects
func listProjectsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_projects",
		Description: "List known projects, ranked against a query or ordered by recency, frecency or name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Optional query; when set, results are ranked by semantic similarity",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     defaultListLimit,
					"minimum":     1,
					"maximum":     maxListLimit,
				},
				"sort": map[string]interface{}{
					"type":        "string",
					"description": "Order used when no query is given",
					"enum":        []string{"recent", "frecency", "name"},
					"default":     "frecency",
				},
			},
		},
	}
}

// updateIndexTool returns the tool definition for update_index
func updateIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_index",
		Description: "Discover projects on disk and embed any that are not indexed yet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, drop all vectors and re-embed every project",
					"default":     false,
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report project counts, index coverage and the active embedding provider",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
