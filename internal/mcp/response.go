package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	flqerrors "github.com/standardbeagle/flatq/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createSmartErrorResponse(operation, err, nil)
}

// createSmartErrorResponse creates an error response with suggestions for
// the kind of error. Tool errors are reported in the result with IsError
// set so the client can see and correct them; they are never protocol errors.
func createSmartErrorResponse(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if kind := errorKind(err); kind != "" {
		errorData["error_type"] = kind
	}

	if suggestions := generateErrorSuggestions(operation, err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}
	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}
	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// errorKind reports the typed error category, if any.
func errorKind(err error) flqerrors.ErrorType {
	var (
		sepErr    *flqerrors.SeparatorError
		pathErr   *flqerrors.PathError
		coerceErr *flqerrors.CoercionError
		searchErr *flqerrors.SearchError
		fileErr   *flqerrors.FileError
		cfgErr    *flqerrors.ConfigError
	)
	switch {
	case errors.As(err, &sepErr):
		return sepErr.Type
	case errors.As(err, &pathErr):
		return pathErr.Type
	case errors.As(err, &coerceErr):
		return coerceErr.Type
	case errors.As(err, &searchErr):
		return searchErr.Type
	case errors.As(err, &fileErr):
		return fileErr.Type
	case errors.As(err, &cfgErr):
		return flqerrors.ErrorTypeConfig
	case errors.Is(err, errNoDocument):
		return "params"
	}
	return ""
}

// generateErrorSuggestions generates context-aware suggestions for common errors
func generateErrorSuggestions(operation string, err error) []string {
	var suggestions []string

	switch errorKind(err) {
	case flqerrors.ErrorTypeSeparator:
		suggestions = append(suggestions, fmt.Sprintf("Use a single character other than %s, for example \".\" or \"/\"", strings.Join(quoted(flqerrors.ReservedSeparators), " ")))
	case flqerrors.ErrorTypePath:
		suggestions = append(suggestions, "Flat keys must not contain empty segments such as \"a..b\" or a trailing separator")
		suggestions = append(suggestions, "Array indices must be non-negative integers within the configured max_index")
	case flqerrors.ErrorTypeCoercion:
		suggestions = append(suggestions, "Set \"strict\": false to let numeric keys turn objects into arrays and report what was dropped")
	case flqerrors.ErrorTypeSearch:
		suggestions = append(suggestions, "path_glob uses doublestar syntax over segments joined with '/', e.g. \"users/*/email\"")
		suggestions = append(suggestions, "where is an expr-lang boolean over key, value, text, kind, segments and depth")
	case flqerrors.ErrorTypeFileNotFound, flqerrors.ErrorTypePermission:
		suggestions = append(suggestions, "Paths are resolved relative to the server's working directory")
	case flqerrors.ErrorTypeDecode:
		suggestions = append(suggestions, "Pass \"format\" when the file extension does not say json, yaml or toml")
	case "params":
		suggestions = append(suggestions, "Pass the document inline as \"document\", as text in \"text\" with \"format\", or as a file \"path\"")
	}

	if operation == "search_keyword" && strings.Contains(err.Error(), "keys-only") {
		suggestions = append(suggestions, "keys_only and values_only are exclusive; set at most one")
	}
	return suggestions
}

func quoted(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

// getOperationHelp provides helpful information about each operation
func getOperationHelp(operation string) string {
	helpMap := map[string]string{
		"flatten":        "Flatten a nested JSON, YAML or TOML document into separator-joined paths.",
		"inflate":        "Rebuild a nested document from a flat object of path -> value.",
		"search_keyword": "Find entries whose path, or else value, contains a keyword.",
		"search_query":   "Rank entries by how many query words they contain.",
		"tokenize":       "Split compound identifiers such as getHTTPResponse into words.",
		"roundtrip":      "Flatten then inflate a document and report any difference.",
	}
	return helpMap[operation]
}
