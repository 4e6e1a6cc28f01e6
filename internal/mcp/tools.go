package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/goto/internal/app"
	"github.com/dshills/goto/internal/indexer"
	"github.com/dshills/goto/internal/searcher"
	"github.com/dshills/goto/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams       = -32602 // Invalid method parameters
	ErrorCodeInternalError       = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress  = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed          = -32003 // No project has a vector yet
	ErrorCodeEmptyQuery          = -32004 // Query parameter is empty
	ErrorCodeSemanticUnavailable = -32005 // Vectors exist but no embedder is configured
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// projectJSON is the wire form of a project
type projectJSON struct {
	Name         string  `json:"name"`
	Path         string  `json:"path"`
	Score        float64 `json:"score,omitempty"`
	Semantic     bool    `json:"semantic,omitempty"`
	AccessCount  int64   `json:"access_count"`
	LastAccessed string  `json:"last_accessed"`
	Source       string  `json:"source"`
}

func toProjectJSON(p types.Project) projectJSON {
	return projectJSON{
		Name:         p.Name,
		Path:         p.Path,
		AccessCount:  p.AccessCount,
		LastAccessed: p.LastAccessed.Format(time.RFC3339),
		Source:       string(p.Source),
	}
}

// handleResolveProject handles the resolve_project tool invocation
func (s *Server) handleResolveProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query := strings.TrimSpace(getStringDefault(args, "query", ""))
	if query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	res, err := s.app.Searcher.Resolve(ctx, query)
	if err != nil {
		return nil, searchError("resolve failed", err)
	}

	if !res.Resolved() {
		response := map[string]interface{}{
			"resolved": false,
			"reason":   string(res.Reason),
			"message":  noMatchMessage(res),
		}
		if res.Reason == types.ReasonBelowThreshold {
			response["best_score"] = round1(res.Best)
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	response := map[string]interface{}{
		"resolved": true,
		"path":     res.Project.Path,
		"name":     res.Project.Name,
		"score":    round1(res.Score),
		"semantic": res.Semantic,
		"exact":    res.Exact,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListProjects handles the list_projects tool invocation
func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		if request.Params.Arguments != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
		}
		args = map[string]interface{}{}
	}

	limit := getIntDefault(args, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", maxListLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	order, err := searcher.ParseSortOrder(getStringDefault(args, "sort", string(searcher.SortFrecency)))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid sort", map[string]interface{}{
			"param":   "sort",
			"allowed": []string{"recent", "frecency", "name"},
		})
	}

	var projects []projectJSON
	if query := strings.TrimSpace(getStringDefault(args, "query", "")); query != "" {
		results, err := s.app.Searcher.List(ctx, query, limit)
		if err != nil {
			return nil, searchError("list failed", err)
		}
		for _, r := range results {
			p := toProjectJSON(r.Project)
			p.Score = round1(r.Score)
			p.Semantic = r.Semantic
			projects = append(projects, p)
		}
	} else {
		all, err := s.app.Store.GetAll(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to load projects", map[string]interface{}{
				"error": err.Error(),
			})
		}
		searcher.SortProjects(all, order, time.Now())
		if len(all) > limit {
			all = all[:limit]
		}
		for _, p := range all {
			projects = append(projects, toProjectJSON(p))
		}
	}

	response := map[string]interface{}{
		"count":    len(projects),
		"projects": projects,
	}
	if projects == nil {
		response["projects"] = []projectJSON{}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpdateIndex handles the update_index tool invocation
func (s *Server) handleUpdateIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	force := getBoolDefault(args, "force", false)

	report, err := s.app.Update(ctx, app.UpdateOptions{Force: force})
	if errors.Is(err, indexer.ErrIndexInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "another update is already running", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "update failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"discovered_from_paths":        report.Scan.FromPaths,
		"discovered_from_system_index": report.Scan.FromSystemIndex,
		"pruned":                       report.Scan.Pruned,
	}
	if len(report.Scan.Warnings) > 0 {
		response["warnings"] = report.Scan.Warnings
	}

	if report.Index == nil {
		response["indexed"] = false
		if report.IndexSkipped != nil {
			response["index_skipped"] = report.IndexSkipped.Error()
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	stats := report.Index
	response["indexed"] = true
	response["projects_indexed"] = stats.ProjectsIndexed
	response["projects_failed"] = stats.ProjectsFailed
	response["empty_metadata"] = stats.EmptyMetadata
	response["duration_ms"] = stats.Duration.Milliseconds()

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.app.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	st := report.Storage
	bySource := make(map[string]int, len(st.BySource))
	for src, n := range st.BySource {
		bySource[string(src)] = n
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"total_projects":   st.TotalProjects,
			"indexed_projects": st.IndexedProjects,
			"accessed":         st.AccessedCount,
			"by_source":        bySource,
			"index_size_mb":    fmt.Sprintf("%.2f", float64(st.SizeBytes)/(1024*1024)),
		},
		"database": map[string]interface{}{
			"path":           report.DatabasePath,
			"schema_version": st.SchemaVersion,
			"build_mode":     st.BuildMode,
		},
		"embedder": report.Embedder,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// searchError maps ranking errors to MCP error codes
func searchError(message string, err error) error {
	switch {
	case errors.Is(err, searcher.ErrNoVectors):
		return newMCPError(ErrorCodeNotIndexed, "no projects indexed, run update_index first", nil)
	case errors.Is(err, searcher.ErrSemanticUnavailable):
		return newMCPError(ErrorCodeSemanticUnavailable, "semantic search unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, message, map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func noMatchMessage(res *types.Resolution) string {
	switch res.Reason {
	case types.ReasonEmptyIndex:
		return "No projects known. Run update_index to discover projects."
	case types.ReasonNoVectors:
		return "No project name matched and nothing is indexed. Run update_index to enable semantic search."
	default:
		return fmt.Sprintf("No project matched with enough confidence (best %.0f%%).", res.Best)
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error. Its Error text is the JSON
// encoding so clients can recover the code.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *MCPError) Error() string {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
	}
	return string(b)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
