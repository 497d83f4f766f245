package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

type fakeReports struct {
	reports map[string]string
}

func (f *fakeReports) MarkdownReport(_ context.Context, hostname string) (string, error) {
	if report, ok := f.reports[hostname]; ok {
		return report, nil
	}
	return "", ErrReportNotFound
}

func newTestServer() *Server {
	return NewServer(&fakeReports{
		reports: map[string]string{"example.com": "# Example Inc (example.com)"},
	}, "https://rivalmap.example.com", "test")
}

func call(t *testing.T, s *Server, method string, params interface{}) *Response {
	t.Helper()

	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("Failed to marshal params: %v", err)
		}
		raw = data
	}

	return s.HandleRequest(context.Background(), &Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  raw,
	})
}

func TestInitialize(t *testing.T) {
	resp := call(t, newTestServer(), "initialize", nil)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	json.Unmarshal(resp.Result, &result)
	if result.ProtocolVersion == "" || result.ServerInfo.Name != "rivalmap" {
		t.Errorf("Unexpected initialize result: %s", resp.Result)
	}
}

func TestToolsList(t *testing.T) {
	resp := call(t, newTestServer(), "tools/list", nil)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	var result struct {
		Tools []Tool `json:"tools"`
	}
	json.Unmarshal(resp.Result, &result)
	if len(result.Tools) != 1 || result.Tools[0].Name != "get_report" {
		t.Errorf("Expected exactly the get_report tool, got %+v", result.Tools)
	}
}

func TestToolsCallGetReport(t *testing.T) {
	resp := call(t, newTestServer(), "tools/call", map[string]interface{}{
		"name":      "get_report",
		"arguments": map[string]string{"hostname": "example.com"},
	})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	json.Unmarshal(resp.Result, &result)
	if result.IsError || len(result.Content) != 1 {
		t.Fatalf("Unexpected result: %s", resp.Result)
	}
	if !strings.Contains(result.Content[0].Text, "Example Inc") {
		t.Errorf("Expected report text, got %q", result.Content[0].Text)
	}
}

func TestToolsCallReportNotFound(t *testing.T) {
	resp := call(t, newTestServer(), "tools/call", map[string]interface{}{
		"name":      "get_report",
		"arguments": map[string]string{"hostname": "missing.com"},
	})
	if resp.Error != nil {
		t.Fatalf("Expected tool-level error, got protocol error: %+v", resp.Error)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	json.Unmarshal(resp.Result, &result)
	if !result.IsError {
		t.Error("Expected isError for missing report")
	}
	if !strings.Contains(result.Content[0].Text, "/new?company=missing.com") {
		t.Errorf("Expected creation URL suggestion, got %q", result.Content[0].Text)
	}
}

func TestToolsCallInvalid(t *testing.T) {
	s := newTestServer()

	resp := call(t, s, "tools/call", map[string]interface{}{
		"name":      "delete_everything",
		"arguments": map[string]string{},
	})
	if resp.Error == nil || resp.Error.Code != InvalidParams {
		t.Errorf("Expected InvalidParams for unknown tool, got %+v", resp.Error)
	}

	resp = call(t, s, "tools/call", map[string]interface{}{
		"name":      "get_report",
		"arguments": map[string]string{},
	})
	if resp.Error == nil || resp.Error.Code != InvalidParams {
		t.Errorf("Expected InvalidParams for missing hostname, got %+v", resp.Error)
	}
}

func TestUnknownMethod(t *testing.T) {
	s := newTestServer()

	resp := call(t, s, "resources/list", nil)
	if resp.Error == nil || resp.Error.Code != MethodNotFound {
		t.Errorf("Expected MethodNotFound, got %+v", resp)
	}

	// Notifications (no ID) get no response
	notification := s.HandleRequest(context.Background(), &Request{JSONRPC: "2.0", Method: "notifications/initialized"})
	if notification != nil {
		t.Error("Expected nil response for notification")
	}
}

func TestPing(t *testing.T) {
	resp := call(t, newTestServer(), "ping", nil)
	if string(resp.Result) != `"pong"` {
		t.Errorf("Expected pong, got %s", resp.Result)
	}
}
