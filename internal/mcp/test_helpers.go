package mcp

// In-process testing for MCP tools. CallTool invokes a handler directly,
// bypassing the stdio transport:
//
//	server, _ := mcp.NewServer(cfg, nil)
//	resultJSON, err := server.CallTool("flatten", map[string]interface{}{
//	    "document": map[string]interface{}{"a": 1},
//	})

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool is a test helper method to simulate MCP tool calls. Error
// results come back as Go errors carrying the error text and suggestions.
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, error) {
	result, err := s.callToolResult(toolName, params)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Content) == 0 {
		return "", nil
	}

	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", fmt.Errorf("unexpected content type %T", result.Content[0])
	}
	if result.IsError {
		var response struct {
			Error       string   `json:"error"`
			Suggestions []string `json:"suggestions"`
		}
		if err := json.Unmarshal([]byte(textContent.Text), &response); err != nil {
			return "", fmt.Errorf("MCP error (unparseable): %s", textContent.Text)
		}
		details := "MCP error: " + response.Error
		for _, s := range response.Suggestions {
			details += "\nSuggestion: " + s
		}
		return "", fmt.Errorf("%s", details)
	}
	return textContent.Text, nil
}

func (s *Server) callToolResult(toolName string, params map[string]interface{}) (*mcp.CallToolResult, error) {
	ctx := context.Background()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}

	switch toolName {
	case "info":
		return s.handleInfo(ctx, req)
	case "flatten":
		return s.handleFlatten(ctx, req)
	case "inflate":
		return s.handleInflate(ctx, req)
	case "search_keyword":
		return s.handleSearchKeyword(ctx, req)
	case "search_query":
		return s.handleSearchQuery(ctx, req)
	case "tokenize":
		return s.handleTokenize(ctx, req)
	case "roundtrip":
		return s.handleRoundtrip(ctx, req)
	}
	return nil, fmt.Errorf("unknown tool: %s", toolName)
}
