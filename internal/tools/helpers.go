// Package tools implements the MCP tool handlers for the weekly planner.
//
// Every tool is a struct holding its dependencies, with Definition()
// returning the mcp.Tool schema and Handle() processing a call. Handlers
// report bad input and missing records as tool errors (IsError results) so
// the assistant can correct itself; only storage failures come back as Go
// errors.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/routine"
	"github.com/HendryAvila/weekplan/internal/week"
)

// weekArg reads the optional "week" argument. Any calendar date is
// accepted and normalized to its Monday; empty means the current week.
func weekArg(req mcp.CallToolRequest, p *planner.Service) (week.Key, error) {
	raw := strings.TrimSpace(req.GetString("week", ""))
	if raw == "" {
		return p.CurrentKey(), nil
	}
	k, err := week.KeyForDate(raw)
	if err != nil {
		return "", fmt.Errorf("invalid 'week' %q: expected a YYYY-MM-DD date", raw)
	}
	return k, nil
}

// boolArg extracts a boolean argument. ok is false when the key is absent
// or not a boolean.
func boolArg(req mcp.CallToolRequest, key string) (v, ok bool) {
	v, ok = req.GetArguments()[key].(bool)
	return v, ok
}

// requireString returns the trimmed value of a required string argument.
func requireString(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	v := strings.TrimSpace(req.GetString(key, ""))
	if v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
	}
	return v, nil
}

// jsonResult renders a heading followed by v as an indented JSON block.
func jsonResult(heading string, v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	var b strings.Builder
	if heading != "" {
		b.WriteString(heading)
		b.WriteString("\n\n")
	}
	b.WriteString("```json\n")
	b.Write(data)
	b.WriteString("\n```\n")
	return mcp.NewToolResultText(b.String()), nil
}

// engineError maps engine errors onto tool results. Not-found and
// invariant errors are the caller's to fix; anything else is returned as
// a Go error.
func engineError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, routine.ErrNotFound), errors.Is(err, routine.ErrInvariant):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return nil, err
	}
}
