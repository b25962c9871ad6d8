package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/routine"
)

// formatPrepTasks renders prep tasks as a checklist with their ids.
func formatPrepTasks(tasks []routine.PrepTask) string {
	if len(tasks) == 0 {
		return "_No prep tasks._"
	}
	var b strings.Builder
	for _, p := range tasks {
		box := "[ ]"
		if p.Done {
			box = "[x]"
		}
		fmt.Fprintf(&b, "- %s %s `%s`\n", box, p.Text, p.ID)
	}
	return b.String()
}

// --- prep_tasks_get ---

// PrepTasksGetTool handles the prep_tasks_get MCP tool.
type PrepTasksGetTool struct {
	planner *planner.Service
}

// NewPrepTasksGetTool creates a PrepTasksGetTool.
func NewPrepTasksGetTool(p *planner.Service) *PrepTasksGetTool {
	return &PrepTasksGetTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *PrepTasksGetTool) Definition() mcp.Tool {
	return mcp.NewTool("prep_tasks_get",
		mcp.WithDescription(
			"List a week's prep tasks. When the week has a structured exception with its own prep tasks, "+
				"those are listed too, since toggling acts on them first.",
		),
		mcp.WithString("week", mcp.Description(weekDescription)),
	)
}

// Handle processes the prep_tasks_get tool call.
func (t *PrepTasksGetTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := t.planner.Get(k)
	if err != nil {
		return engineError(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Prep tasks, week of %s\n\n", k)
	b.WriteString(formatPrepTasks(r.PrepTasks))
	if r.WeekException != nil {
		if e, ok := r.WeekException.Structured(); ok && len(e.PrepTasks) > 0 {
			b.WriteString("\n## From this week's exception\n\n")
			b.WriteString(formatPrepTasks(e.PrepTasks))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// --- prep_tasks_replace ---

// PrepTasksReplaceTool handles the prep_tasks_replace MCP tool.
type PrepTasksReplaceTool struct {
	planner *planner.Service
}

// NewPrepTasksReplaceTool creates a PrepTasksReplaceTool.
func NewPrepTasksReplaceTool(p *planner.Service) *PrepTasksReplaceTool {
	return &PrepTasksReplaceTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *PrepTasksReplaceTool) Definition() mcp.Tool {
	return mcp.NewTool("prep_tasks_replace",
		mcp.WithDescription("Replace a week's top-level prep task list. The week must already exist."),
		mcp.WithString("week", mcp.Description(weekDescription)),
		mcp.WithString("tasks",
			mcp.Required(),
			mcp.Description(
				`JSON array of {"id","text","done"}. Omit "id" for new tasks. `+
					`Example: [{"text":"Grocery order"},{"id":"p1","text":"Laundry","done":true}]`,
			),
		),
	)
}

// Handle processes the prep_tasks_replace tool call.
func (t *PrepTasksReplaceTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, errResult := requireString(req, "tasks")
	if errResult != nil {
		return errResult, nil
	}
	var tasks []routine.PrepTask
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'tasks' must be a JSON array of prep tasks: %v", err)), nil
	}

	saved, err := t.planner.ReplacePrepTasks(k, tasks)
	if err != nil {
		return engineError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("# Prep tasks, week of %s\n\n%s", k, formatPrepTasks(saved))), nil
}

// --- prep_task_toggle ---

// PrepTaskToggleTool handles the prep_task_toggle MCP tool.
type PrepTaskToggleTool struct {
	planner *planner.Service
}

// NewPrepTaskToggleTool creates a PrepTaskToggleTool.
func NewPrepTaskToggleTool(p *planner.Service) *PrepTaskToggleTool {
	return &PrepTaskToggleTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *PrepTaskToggleTool) Definition() mcp.Tool {
	return mcp.NewTool("prep_task_toggle",
		mcp.WithDescription(
			"Flip one prep task's done flag. The exception's prep tasks are searched first, "+
				"then the week's own list. Unknown ids are reported.",
		),
		mcp.WithString("week", mcp.Description(weekDescription)),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The prep task's id as shown by prep_tasks_get."),
		),
	)
}

// Handle processes the prep_task_toggle tool call.
func (t *PrepTaskToggleTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := weekArg(req, t.planner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, errResult := requireString(req, "task_id")
	if errResult != nil {
		return errResult, nil
	}
	r, err := t.planner.TogglePrepTask(k, id)
	if err != nil {
		return engineError(err)
	}

	lists := [][]routine.PrepTask{r.PrepTasks}
	if r.WeekException != nil {
		if e, ok := r.WeekException.Structured(); ok {
			lists = append([][]routine.PrepTask{e.PrepTasks}, lists...)
		}
	}
	for _, list := range lists {
		for _, p := range list {
			if p.ID == id {
				state := "not done"
				if p.Done {
					state = "done"
				}
				return mcp.NewToolResultText(fmt.Sprintf("%q is now %s", p.Text, state)), nil
			}
		}
	}
	return mcp.NewToolResultText("Prep task toggled"), nil
}
