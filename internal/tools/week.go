package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/routine"
)

const weekDescription = "Any date inside the week (YYYY-MM-DD). It is normalized to that week's Monday. Defaults to the current week."

// --- week_current ---

// WeekCurrentTool handles the week_current MCP tool.
type WeekCurrentTool struct {
	planner *planner.Service
}

// NewWeekCurrentTool creates a WeekCurrentTool.
func NewWeekCurrentTool(p *planner.Service) *WeekCurrentTool {
	return &WeekCurrentTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *WeekCurrentTool) Definition() mcp.Tool {
	return mcp.NewTool("week_current",
		mcp.WithDescription(
			"Show this week's routine together with who is home and which mode is active. "+
				"When the week has no routine yet, the custody schedule and the available modes are shown instead.",
		),
	)
}

// Handle processes the week_current tool call.
func (t *WeekCurrentTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k := t.planner.CurrentKey()
	info, err := t.planner.WeekInfo(k)
	if err != nil {
		return engineError(err)
	}
	r, err := t.planner.Current()
	if errors.Is(err, routine.ErrNotFound) {
		return jsonResult(
			fmt.Sprintf("No routine for the week of %s yet. Pick a mode and call week_start.", k),
			map[string]any{
				"week":  info,
				"modes": mode.Options(info.HasKids),
			},
		)
	}
	if err != nil {
		return engineError(err)
	}
	return jsonResult(
		fmt.Sprintf("%s %s week of %s (%s)", info.ModeDisplay.Emoji, info.ModeDisplay.Name, k, info.CustodyLabel),
		map[string]any{"week": info, "routine": r},
	)
}

// --- week_get ---

// WeekGetTool handles the week_get MCP tool.
type WeekGetTool struct {
	planner *planner.Service
}

// NewWeekGetTool creates a WeekGetTool.
func NewWeekGetTool(p *planner.Service) *WeekGetTool {
	return &WeekGetTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *WeekGetTool) Definition() mcp.Tool {
	return mcp.NewTool("week_get",
		mcp.WithDescription(
			"Fetch the stored routine for one week. "+
				"With 'all' set, list every stored week instead.",
		),
		mcp.WithString("week", mcp.Description(weekDescription)),
		mcp.WithBoolean("all", mcp.Description("List every stored routine, oldest week first.")),
	)
}

// Handle processes the week_get tool call.
func (t *WeekGetTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if all, _ := boolArg(req, "all"); all {
		list, err := t.planner.List()
		if err != nil {
			return engineError(err)
		}
		return jsonResult(fmt.Sprintf("%d stored week(s)", len(list)), list)
	}
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := t.planner.Get(k)
	if err != nil {
		return engineError(err)
	}
	return jsonResult("Week of "+string(k), r)
}

// --- week_info ---

// WeekInfoTool handles the week_info MCP tool.
type WeekInfoTool struct {
	planner *planner.Service
}

// NewWeekInfoTool creates a WeekInfoTool.
func NewWeekInfoTool(p *planner.Service) *WeekInfoTool {
	return &WeekInfoTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *WeekInfoTool) Definition() mcp.Tool {
	return mcp.NewTool("week_info",
		mcp.WithDescription(
			"Resolve custody and mode for a week without returning its tasks. "+
				"A structured exception's kidsWithYou wins over the routine's own kidsWithUser, "+
				"which wins over the custody schedule.",
		),
		mcp.WithString("week", mcp.Description(weekDescription)),
	)
}

// Handle processes the week_info tool call.
func (t *WeekInfoTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := t.planner.WeekInfo(k)
	if err != nil {
		return engineError(err)
	}
	return jsonResult(fmt.Sprintf("%s %s: %s", info.ModeDisplay.Emoji, info.ModeDisplay.Name, info.ModeDisplay.Guidance), info)
}

// --- week_upsert ---

// WeekUpsertTool handles the week_upsert MCP tool.
type WeekUpsertTool struct {
	planner *planner.Service
}

// NewWeekUpsertTool creates a WeekUpsertTool.
func NewWeekUpsertTool(p *planner.Service) *WeekUpsertTool {
	return &WeekUpsertTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *WeekUpsertTool) Definition() mcp.Tool {
	return mcp.NewTool("week_upsert",
		mcp.WithDescription(
			"Merge a partial update into a week's routine, creating the week when missing. "+
				"Top-level keys in the patch replace the stored value wholesale; "+
				"a key set to null deletes it; absent keys are left alone. "+
				"Changing 'mode' here does not regenerate tasks: use week_start with overwrite for that.",
		),
		mcp.WithString("week", mcp.Description(weekDescription)),
		mcp.WithString("patch",
			mcp.Required(),
			mcp.Description(
				"JSON object with any of: mode, kidsWithUser, dailyRoutines, weekException, prepTasks, notes. "+
					`Example: {"mode":"hard","weekException":null}`,
			),
		),
	)
}

// Handle processes the week_upsert tool call.
func (t *WeekUpsertTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, errResult := requireString(req, "patch")
	if errResult != nil {
		return errResult, nil
	}
	p, err := routine.DecodePatch([]byte(raw))
	if err != nil {
		return engineError(err)
	}
	r, err := t.planner.Upsert(k, p)
	if err != nil {
		return engineError(err)
	}
	return jsonResult("Saved week of "+string(k), r)
}

// --- week_start ---

// WeekStartTool handles the week_start MCP tool.
type WeekStartTool struct {
	planner *planner.Service
}

// NewWeekStartTool creates a WeekStartTool.
func NewWeekStartTool(p *planner.Service) *WeekStartTool {
	return &WeekStartTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *WeekStartTool) Definition() mcp.Tool {
	return mcp.NewTool("week_start",
		mcp.WithDescription(
			"Fill a week from the routine template for a mode. "+
				"Every task starts unchecked with a fresh id. "+
				"Replacing an existing week discards its completion state, so it requires 'overwrite'.",
		),
		mcp.WithString("week", mcp.Description(weekDescription)),
		mcp.WithString("mode",
			mcp.Required(),
			mcp.Description("regular, hard or hardest."),
		),
		mcp.WithBoolean("kids_present",
			mcp.Description("Pick the with-kids or solo template. Defaults to the week's resolved custody."),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace an existing routine. Its exception, prep tasks and notes are kept."),
		),
	)
}

// Handle processes the week_start tool call.
func (t *WeekStartTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m := mode.Mode(strings.TrimSpace(req.GetString("mode", "")))
	if err := mode.Validate(m); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var kids *bool
	if v, ok := boolArg(req, "kids_present"); ok {
		kids = &v
	}
	overwrite, _ := boolArg(req, "overwrite")

	r, err := t.planner.StartWeek(k, m, kids, overwrite)
	if err != nil {
		return engineError(err)
	}
	d := mode.Describe(r.EffectiveMode(), r.KidsWithUser == nil || *r.KidsWithUser)
	return jsonResult(fmt.Sprintf("%s Started %s week of %s\n\n%s", d.Emoji, d.Name, k, d.Guidance), r)
}

// --- week_delete ---

// WeekDeleteTool handles the week_delete MCP tool.
type WeekDeleteTool struct {
	planner *planner.Service
}

// NewWeekDeleteTool creates a WeekDeleteTool.
func NewWeekDeleteTool(p *planner.Service) *WeekDeleteTool {
	return &WeekDeleteTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *WeekDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("week_delete",
		mcp.WithDescription("Delete a week's stored routine."),
		mcp.WithString("week",
			mcp.Required(),
			mcp.Description("Any date inside the week (YYYY-MM-DD)."),
		),
	)
}

// Handle processes the week_delete tool call.
func (t *WeekDeleteTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, errResult := requireString(req, "week"); errResult != nil {
		return errResult, nil
	}
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.planner.Delete(k); err != nil {
		return engineError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted the routine for the week of %s", k)), nil
}
