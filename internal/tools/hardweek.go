package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/routine"
)

// --- hard_week_flag ---

// HardWeekFlagTool handles the hard_week_flag MCP tool.
// It marks an upcoming week as likely to be hard so it can be planned for.
type HardWeekFlagTool struct {
	planner *planner.Service
}

// NewHardWeekFlagTool creates a HardWeekFlagTool.
func NewHardWeekFlagTool(p *planner.Service) *HardWeekFlagTool {
	return &HardWeekFlagTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *HardWeekFlagTool) Definition() mcp.Tool {
	return mcp.NewTool("hard_week_flag",
		mcp.WithDescription(
			"Flag a week as expected to be hard. Flagging the same week again replaces the flag.",
		),
		mcp.WithString("week",
			mcp.Required(),
			mcp.Description("Any date inside the week (YYYY-MM-DD)."),
		),
		mcp.WithString("reason",
			mcp.Required(),
			mcp.Description("What makes the week hard, e.g. 'work trip' or 'school holidays'."),
		),
		mcp.WithString("expected_mode",
			mcp.Description("regular, hard (default) or hardest."),
		),
		mcp.WithString("notes", mcp.Description("Anything to prepare.")),
	)
}

// Handle processes the hard_week_flag tool call.
func (t *HardWeekFlagTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, errResult := requireString(req, "week"); errResult != nil {
		return errResult, nil
	}
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reason, errResult := requireString(req, "reason")
	if errResult != nil {
		return errResult, nil
	}
	expected := mode.Mode(strings.TrimSpace(req.GetString("expected_mode", string(mode.Hard))))

	f, err := t.planner.FlagHardWeek(k, reason, expected, req.GetString("notes", ""))
	if err != nil {
		return engineError(err)
	}
	return jsonResult(fmt.Sprintf("Flagged the week of %s: %s", k, f.Reason), f)
}

// --- hard_week_list ---

// HardWeekListTool handles the hard_week_list MCP tool.
type HardWeekListTool struct {
	planner *planner.Service
}

// NewHardWeekListTool creates a HardWeekListTool.
func NewHardWeekListTool(p *planner.Service) *HardWeekListTool {
	return &HardWeekListTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *HardWeekListTool) Definition() mcp.Tool {
	return mcp.NewTool("hard_week_list",
		mcp.WithDescription("List hard-week flags for this week and later, soonest first."),
	)
}

// Handle processes the hard_week_list tool call.
func (t *HardWeekListTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	flags, err := t.planner.UpcomingFlags()
	if err != nil {
		return engineError(err)
	}
	if len(flags) == 0 {
		return mcp.NewToolResultText("No upcoming hard weeks flagged."), nil
	}
	var b strings.Builder
	b.WriteString("# Upcoming hard weeks\n\n")
	for _, f := range flags {
		d := mode.Describe(f.ExpectedMode, true)
		fmt.Fprintf(&b, "- **%s** %s %s: %s `%s`\n", f.WeekStartDate, d.Emoji, d.Name, f.Reason, f.ID)
		if f.Notes != "" {
			fmt.Fprintf(&b, "  %s\n", f.Notes)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// --- hard_week_update ---

// HardWeekUpdateTool handles the hard_week_update MCP tool.
type HardWeekUpdateTool struct {
	planner *planner.Service
}

// NewHardWeekUpdateTool creates a HardWeekUpdateTool.
func NewHardWeekUpdateTool(p *planner.Service) *HardWeekUpdateTool {
	return &HardWeekUpdateTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *HardWeekUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("hard_week_update",
		mcp.WithDescription("Change a hard-week flag's reason, expected mode or notes. Omitted fields are kept."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Flag id as shown by hard_week_list, e.g. 'flag-2024-11-11'."),
		),
		mcp.WithString("reason", mcp.Description("New reason.")),
		mcp.WithString("expected_mode", mcp.Description("regular, hard or hardest.")),
		mcp.WithString("notes", mcp.Description("New notes. An empty string clears them.")),
	)
}

// Handle processes the hard_week_update tool call.
func (t *HardWeekUpdateTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "id")
	if errResult != nil {
		return errResult, nil
	}
	args := req.GetArguments()
	var u routine.FlagUpdate
	if v, ok := args["reason"].(string); ok {
		u.Reason = &v
	}
	if v, ok := args["expected_mode"].(string); ok {
		m := mode.Mode(strings.TrimSpace(v))
		u.ExpectedMode = &m
	}
	if v, ok := args["notes"].(string); ok {
		u.Notes = &v
	}

	f, err := t.planner.UpdateFlag(id, u)
	if err != nil {
		return engineError(err)
	}
	return jsonResult("Updated "+f.ID, f)
}

// --- hard_week_delete ---

// HardWeekDeleteTool handles the hard_week_delete MCP tool.
type HardWeekDeleteTool struct {
	planner *planner.Service
}

// NewHardWeekDeleteTool creates a HardWeekDeleteTool.
func NewHardWeekDeleteTool(p *planner.Service) *HardWeekDeleteTool {
	return &HardWeekDeleteTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *HardWeekDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("hard_week_delete",
		mcp.WithDescription("Remove a hard-week flag."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Flag id as shown by hard_week_list."),
		),
	)
}

// Handle processes the hard_week_delete tool call.
func (t *HardWeekDeleteTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "id")
	if errResult != nil {
		return errResult, nil
	}
	if err := t.planner.DeleteFlag(id); err != nil {
		return engineError(err)
	}
	return mcp.NewToolResultText("Deleted " + id), nil
}
