package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/routine"
	"github.com/HendryAvila/weekplan/internal/week"
)

// dayArg parses the required "day" argument.
func dayArg(req mcp.CallToolRequest) (week.Weekday, *mcp.CallToolResult) {
	raw, errResult := requireString(req, "day")
	if errResult != nil {
		return "", errResult
	}
	d, err := week.ParseWeekday(raw)
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return d, nil
}

// --- task_toggle ---

// TaskToggleTool handles the task_toggle MCP tool.
type TaskToggleTool struct {
	planner *planner.Service
}

// NewTaskToggleTool creates a TaskToggleTool.
func NewTaskToggleTool(p *planner.Service) *TaskToggleTool {
	return &TaskToggleTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *TaskToggleTool) Definition() mcp.Tool {
	return mcp.NewTool("task_toggle",
		mcp.WithDescription("Check or uncheck one task of a day. Unknown task ids are reported, never ignored."),
		mcp.WithString("week", mcp.Description(weekDescription)),
		mcp.WithString("day",
			mcp.Required(),
			mcp.Description("monday through sunday."),
		),
		mcp.WithString("section",
			mcp.Required(),
			mcp.Description("morning, afterSchool, evening or parentTasks."),
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task's id as shown by week_get."),
		),
	)
}

// Handle processes the task_toggle tool call.
func (t *TaskToggleTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, errResult := dayArg(req)
	if errResult != nil {
		return errResult, nil
	}
	rawSec, errResult := requireString(req, "section")
	if errResult != nil {
		return errResult, nil
	}
	sec, err := routine.ParseSection(rawSec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, errResult := requireString(req, "task_id")
	if errResult != nil {
		return errResult, nil
	}

	r, err := t.planner.ToggleTask(k, day, sec, id)
	if err != nil {
		return engineError(err)
	}
	for _, task := range r.DailyRoutines[day].Tasks[sec] {
		if task.ID == id {
			box := "[ ]"
			if task.Completed {
				box = "[x]"
			}
			return mcp.NewToolResultText(fmt.Sprintf("%s %s (%s %s)", box, task.Text, day, sec)), nil
		}
	}
	return mcp.NewToolResultText("Task toggled"), nil
}

// --- day_notes ---

// DayNotesTool handles the day_notes MCP tool.
type DayNotesTool struct {
	planner *planner.Service
}

// NewDayNotesTool creates a DayNotesTool.
func NewDayNotesTool(p *planner.Service) *DayNotesTool {
	return &DayNotesTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *DayNotesTool) Definition() mcp.Tool {
	return mcp.NewTool("day_notes",
		mcp.WithDescription("Replace one day's free-text notes and mood tag. Empty values clear them."),
		mcp.WithString("week", mcp.Description(weekDescription)),
		mcp.WithString("day",
			mcp.Required(),
			mcp.Description("monday through sunday."),
		),
		mcp.WithString("notes", mcp.Description("Notes for the day.")),
		mcp.WithString("mood", mcp.Description("Short mood tag, e.g. 'tired' or 'good'.")),
	)
}

// Handle processes the day_notes tool call.
func (t *DayNotesTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, errResult := dayArg(req)
	if errResult != nil {
		return errResult, nil
	}
	r, err := t.planner.SetDayNotes(k, day, req.GetString("notes", ""), req.GetString("mood", ""))
	if err != nil {
		return engineError(err)
	}
	return jsonResult(fmt.Sprintf("Saved notes for %s, week of %s", day, k), r.DailyRoutines[day])
}

// --- today ---

// TodayTool handles the today MCP tool.
type TodayTool struct {
	planner *planner.Service
}

// NewTodayTool creates a TodayTool.
func NewTodayTool(p *planner.Service) *TodayTool {
	return &TodayTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *TodayTool) Definition() mcp.Tool {
	return mcp.NewTool("today",
		mcp.WithDescription("Show one day's tasks and whether the kids are home that day."),
		mcp.WithString("date", mcp.Description("YYYY-MM-DD. Defaults to today.")),
	)
}

// Handle processes the today tool call.
func (t *TodayTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	on := t.planner.LocalNow()
	if raw := strings.TrimSpace(req.GetString("date", "")); raw != "" {
		d, err := week.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'date' %q: expected YYYY-MM-DD", raw)), nil
		}
		on = d
	}
	view, err := t.planner.Today(on)
	if err != nil {
		return engineError(err)
	}
	who := "solo day"
	if view.KidsToday {
		who = "kids home"
	}
	return jsonResult(fmt.Sprintf("%s %s (%s)", view.Weekday, view.Date, who), view)
}
