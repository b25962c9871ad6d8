package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/weekplan/internal/custody"
	"github.com/HendryAvila/weekplan/internal/planner"
)

// --- custody_get ---

// CustodyGetTool handles the custody_get MCP tool.
type CustodyGetTool struct {
	planner *planner.Service
}

// NewCustodyGetTool creates a CustodyGetTool.
func NewCustodyGetTool(p *planner.Service) *CustodyGetTool {
	return &CustodyGetTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *CustodyGetTool) Definition() mcp.Tool {
	return mcp.NewTool("custody_get",
		mcp.WithDescription("Show the custody settings and what they mean for a week."),
		mcp.WithString("week", mcp.Description(weekDescription)),
	)
}

// Handle processes the custody_get tool call.
func (t *CustodyGetTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	settings, ok := t.planner.Settings()
	res := custody.Resolve(settings, k, t.planner.LocalNow())

	heading := fmt.Sprintf("%s (week of %s)", res.Display, k)
	if !ok {
		heading += "\n\nStored settings could not be read; showing the defaults. Save new ones with custody_set."
	}
	return jsonResult(heading, map[string]any{
		"settings": settings,
		"week":     res,
	})
}

// --- custody_set ---

// CustodySetTool handles the custody_set MCP tool.
type CustodySetTool struct {
	planner *planner.Service
}

// NewCustodySetTool creates a CustodySetTool.
func NewCustodySetTool(p *planner.Service) *CustodySetTool {
	return &CustodySetTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *CustodySetTool) Definition() mcp.Tool {
	return mcp.NewTool("custody_set",
		mcp.WithDescription(
			"Save custody settings. Patterns: none (kids always home), "+
				"alternating (every other week, counted from referenceWeekStart), "+
				"specific (the same weekdays every week).",
		),
		mcp.WithString("settings",
			mcp.Required(),
			mcp.Description(
				`JSON object. Example: {"pattern":"alternating","referenceWeekStart":"2024-11-04",`+
					`"currentWeekHasKidsAtReference":true,"handoverDay":"monday"} or `+
					`{"pattern":"specific","specificDays":["friday","saturday"]}`,
			),
		),
	)
}

// Handle processes the custody_set tool call.
func (t *CustodySetTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := requireString(req, "settings")
	if errResult != nil {
		return errResult, nil
	}
	settings, ok := custody.Parse([]byte(raw))
	if !ok {
		return mcp.NewToolResultError(
			"'settings' is not usable: check the pattern, referenceWeekStart (YYYY-MM-DD) and specificDays (weekday names)",
		), nil
	}
	if err := t.planner.SaveSettings(settings); err != nil {
		return engineError(err)
	}
	res := custody.Resolve(settings, t.planner.CurrentKey(), t.planner.LocalNow())
	return jsonResult("Custody settings saved. This week: "+res.Display, settings)
}
