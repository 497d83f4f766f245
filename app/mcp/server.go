// Package mcp exposes analysis reports to external tool-calling agents over
// a JSON-RPC 2.0 surface. Read-only: the single tool fetches the same
// Markdown report a human sees; no write operations are reachable here.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	serverName      = "rivalmap"
	protocolVersion = "2024-11-05"

	toolGetReport = "get_report"
)

// ErrReportNotFound signals the hostname has no completed analysis; the
// tool answer points the agent at the creation URL.
var ErrReportNotFound = errors.New("report not found")

// ReportSource provides Markdown reports by hostname
type ReportSource interface {
	MarkdownReport(ctx context.Context, hostname string) (string, error)
}

// Server routes JSON-RPC requests from agents
type Server struct {
	reports ReportSource
	baseURL string
	version string
}

func NewServer(reports ReportSource, baseURL, version string) *Server {
	return &Server{reports: reports, baseURL: baseURL, version: version}
}

// HandleRequest processes one request and returns the response, or nil for
// notifications (requests without an ID).
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.ID)
	case "tools/list":
		return s.handleToolsList(req.ID)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`"pong"`)}
	}

	if req.ID == nil {
		// Notifications never get responses
		return nil
	}

	return errorResponse(req.ID, MethodNotFound, "Method not found")
}

func (s *Server) handleInitialize(id interface{}) *Response {
	result := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": s.version,
		},
	}
	return resultResponse(id, result)
}

func (s *Server) handleToolsList(id interface{}) *Response {
	tools := []Tool{
		{
			Name:        toolGetReport,
			Description: "Fetch the competitive intelligence report for a company domain as Markdown.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hostname": map[string]interface{}{
						"type":        "string",
						"description": "Company domain, e.g. acme.com",
					},
				},
				"required": []string{"hostname"},
			},
		},
	}
	return resultResponse(id, map[string]interface{}{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, InvalidParams, "Invalid parameters")
	}

	if params.Name != toolGetReport {
		return errorResponse(req.ID, InvalidParams, "Unknown tool: "+params.Name)
	}

	var args struct {
		Hostname string `json:"hostname"`
	}
	if err := json.Unmarshal(params.Arguments, &args); err != nil || args.Hostname == "" {
		return errorResponse(req.ID, InvalidParams, "hostname is required")
	}

	report, err := s.reports.MarkdownReport(ctx, args.Hostname)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			message := fmt.Sprintf("No completed analysis for %s. Create one at %s/new?company=%s",
				args.Hostname, s.baseURL, args.Hostname)
			return toolResult(req.ID, message, true)
		}
		return errorResponse(req.ID, InternalError, fmt.Sprintf("Failed to build report: %v", err))
	}

	return toolResult(req.ID, report, false)
}

func toolResult(id interface{}, text string, isError bool) *Response {
	return resultResponse(id, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"isError": isError,
	})
}

func resultResponse(id interface{}, result interface{}) *Response {
	data, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, InternalError, fmt.Sprintf("Failed to marshal result: %v", err))
	}
	return &Response{JSONRPC: "2.0", ID: id, Result: json.RawMessage(data)}
}

func errorResponse(id interface{}, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &ErrorObject{Code: code, Message: message},
	}
}
