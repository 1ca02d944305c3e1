package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/achtung-live/guard-go/core"
)

// MCPServer exposes the analyzers as MCP tools so agents and editors can
// check content before it leaves the machine.
type MCPServer struct {
	analyzer *AnalyzerService
	mcp      *server.MCPServer
}

// NewMCPServer wraps an analyzer service in an MCP tool server.
func NewMCPServer(analyzer *AnalyzerService, version string) *MCPServer {
	s := &MCPServer{
		analyzer: analyzer,
		mcp:      server.NewMCPServer("achtung-guard", version),
	}
	s.registerTools()
	return s
}

// ServeStdio runs the MCP server over stdin/stdout until EOF.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *MCPServer) registerTools() {
	s.mcp.AddTool(mcp.NewTool("analyze_text",
		mcp.WithDescription("Scan free text for personal data before it is sent anywhere"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to scan"),
		),
		mcp.WithString("locale",
			mcp.Description("Rule locale, \"de\" or \"en\""),
		),
	), s.handleAnalyzeText)

	s.mcp.AddTool(mcp.NewTool("analyze_form",
		mcp.WithDescription("Flag sensitive and suspicious fields in a form definition"),
		mcp.WithString("fields",
			mcp.Required(),
			mcp.Description("JSON array of form fields: [{\"name\",\"label\",\"type\",\"required\"}]"),
		),
	), s.handleAnalyzeForm)

	s.mcp.AddTool(mcp.NewTool("detect_dark_patterns",
		mcp.WithDescription("Detect manipulative design in page element descriptors"),
		mcp.WithString("elements",
			mcp.Required(),
			mcp.Description("JSON object with buttons, checkboxes, text blocks and modals"),
		),
	), s.handleDetectDarkPatterns)

	s.mcp.AddTool(mcp.NewTool("analyze_cookies",
		mcp.WithDescription("Check a cookie-consent banner and tracker list for GDPR problems"),
		mcp.WithString("payload",
			mcp.Required(),
			mcp.Description("JSON object with consentBanner, detectedTrackers and cookies"),
		),
	), s.handleAnalyzeCookies)
}

func (s *MCPServer) handleAnalyzeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.Params.Arguments["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text must be a string"), nil
	}
	req := core.AnalyzeTextRequest{Text: text}
	if locale, ok := request.Params.Arguments["locale"].(string); ok {
		req.Locale = core.Locale(locale)
	}

	result, decision, err := s.analyzer.AnalyzeText(ctx, "mcp", req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result == nil {
		return mcp.NewToolResultText(fmt.Sprintf(`{"skipped":true,"reason":%q}`, decision.Reason)), nil
	}
	return toolResultJSON(result)
}

func (s *MCPServer) handleAnalyzeForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.Params.Arguments["fields"].(string)
	if !ok {
		return mcp.NewToolResultError("fields must be a JSON string"), nil
	}
	var fields []core.FieldDescriptor
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid fields JSON: %v", err)), nil
	}

	result, decision, err := s.analyzer.AnalyzeForm(ctx, "mcp", core.AnalyzeFormRequest{Fields: fields})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result == nil {
		return mcp.NewToolResultText(fmt.Sprintf(`{"skipped":true,"reason":%q}`, decision.Reason)), nil
	}
	return toolResultJSON(result)
}

func (s *MCPServer) handleDetectDarkPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.Params.Arguments["elements"].(string)
	if !ok {
		return mcp.NewToolResultError("elements must be a JSON string"), nil
	}
	var elements core.PageElements
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid elements JSON: %v", err)), nil
	}

	result, decision, err := s.analyzer.AnalyzeDarkPatterns(ctx, "mcp", core.AnalyzeDarkPatternsRequest{Elements: &elements})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result == nil {
		return mcp.NewToolResultText(fmt.Sprintf(`{"skipped":true,"reason":%q}`, decision.Reason)), nil
	}
	return toolResultJSON(result)
}

func (s *MCPServer) handleAnalyzeCookies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.Params.Arguments["payload"].(string)
	if !ok {
		return mcp.NewToolResultError("payload must be a JSON string"), nil
	}
	var req core.AnalyzeCookiesRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid payload JSON: %v", err)), nil
	}

	result, decision, err := s.analyzer.AnalyzeCookies(ctx, "mcp", req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result == nil {
		return mcp.NewToolResultText(fmt.Sprintf(`{"skipped":true,"reason":%q}`, decision.Reason)), nil
	}
	return toolResultJSON(result)
}

func toolResultJSON(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
