package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const notInitializedMsg = "Memory API storage is not initialized (health.simplemem_initialized=false). Configure the API with MODEL_NAME and API_KEY, then restart it."

func toolArgs(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, name string) string {
	value, _ := args[name].(string)
	return value
}

func (m *MCPServer) handleHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := m.api.Health(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error checking health: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"memory API health:\nstatus: %s\nversion: %s\nsimplemem_initialized: %t",
		status.Status, status.Version, status.Initialized,
	)), nil
}

func (m *MCPServer) handleDialogue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	speaker := stringArg(args, "speaker")
	content := stringArg(args, "content")
	if speaker == "" || content == "" {
		return mcp.NewToolResultError("speaker and content are required"), nil
	}

	status, err := m.api.Health(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error adding dialogue: %v", err)), nil
	}
	if !status.Initialized {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	if err := m.api.AddDialogue(ctx, speaker, content, stringArg(args, "timestamp")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error adding dialogue: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully added dialogue for speaker '%s'.", speaker)), nil
}

func (m *MCPServer) handleFinalize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := m.api.Health(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error finalizing memories: %v", err)), nil
	}
	if !status.Initialized {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	if err := m.api.Finalize(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error finalizing memories: %v", err)), nil
	}
	return mcp.NewToolResultText("Successfully finalized (consolidated) memories"), nil
}

func (m *MCPServer) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := stringArg(toolArgs(request), "query")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	status, err := m.api.Health(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error querying memories: %v", err)), nil
	}
	if !status.Initialized {
		return mcp.NewToolResultText(notInitializedMsg), nil
	}

	result, err := m.api.Query(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error querying memories: %v", err)), nil
	}
	if result.Answer == "" {
		return mcp.NewToolResultText(fmt.Sprintf("No answer returned for query: %s", query)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Answer:\n%s", result.Answer)), nil
}

func (m *MCPServer) handleRetrieve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 100
	if raw, ok := toolArgs(request)["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	entries, err := m.api.Retrieve(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error retrieving entries: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No entries found"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d entries:\n", len(entries))
	for _, entry := range entries {
		restatement := entry.LosslessRestatement
		if len(restatement) > 120 {
			restatement = restatement[:120] + "..."
		}
		fmt.Fprintf(&b, "\n- entry_id: %s\n  lossless_restatement: %s\n", entry.EntryID, restatement)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (m *MCPServer) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := m.api.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error retrieving stats: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"memory API stats:\ntotal_entries: %d\nmemory_path: %s\ndb_type: %s",
		stats.TotalEntries, stats.MemoryPath, stats.DBType,
	)), nil
}

func (m *MCPServer) handleClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	confirmation, _ := toolArgs(request)["confirmation"].(bool)
	if !confirmation {
		return mcp.NewToolResultText("Refusing to clear all memories. Re-run with confirmation=true to proceed."), nil
	}

	if err := m.api.Clear(ctx, true); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error clearing memories: %v", err)), nil
	}
	return mcp.NewToolResultText("Successfully cleared all memories"), nil
}
