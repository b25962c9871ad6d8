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

// --- template_list ---

// TemplateListTool handles the template_list MCP tool.
type TemplateListTool struct {
	planner *planner.Service
}

// NewTemplateListTool creates a TemplateListTool.
func NewTemplateListTool(p *planner.Service) *TemplateListTool {
	return &TemplateListTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *TemplateListTool) Definition() mcp.Tool {
	return mcp.NewTool("template_list",
		mcp.WithDescription("List the routine templates: the built-in ones plus any saved with template_save."),
	)
}

// Handle processes the template_list tool call.
func (t *TemplateListTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := t.planner.Templates()
	if err != nil {
		return engineError(err)
	}
	var b strings.Builder
	b.WriteString("# Routine templates\n\n")
	b.WriteString("| ID | Name | Mode | Kids |\n|----|------|------|------|\n")
	for _, tpl := range list {
		kids := "no"
		if tpl.KidsPresent {
			kids = "yes"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", tpl.ID, tpl.Name, tpl.Mode, kids)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// --- template_get ---

// TemplateGetTool handles the template_get MCP tool.
type TemplateGetTool struct {
	planner *planner.Service
}

// NewTemplateGetTool creates a TemplateGetTool.
func NewTemplateGetTool(p *planner.Service) *TemplateGetTool {
	return &TemplateGetTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *TemplateGetTool) Definition() mcp.Tool {
	return mcp.NewTool("template_get",
		mcp.WithDescription("Show one routine template with its seed tasks per day and section."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Template id, e.g. 'regular-with-kids'."),
		),
	)
}

// Handle processes the template_get tool call.
func (t *TemplateGetTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireString(req, "id")
	if errResult != nil {
		return errResult, nil
	}
	tpl, err := t.planner.Template(id)
	if err != nil {
		return engineError(err)
	}
	return jsonResult(tpl.Name, tpl)
}

// --- template_save ---

// TemplateSaveTool handles the template_save MCP tool.
type TemplateSaveTool struct {
	planner *planner.Service
}

// NewTemplateSaveTool creates a TemplateSaveTool.
func NewTemplateSaveTool(p *planner.Service) *TemplateSaveTool {
	return &TemplateSaveTool{planner: p}
}

// Definition returns the MCP tool definition for registration.
func (t *TemplateSaveTool) Definition() mcp.Tool {
	return mcp.NewTool("template_save",
		mcp.WithDescription(
			"Save a routine template. A saved template with a built-in id replaces the built-in "+
				"for week_start from then on.",
		),
		mcp.WithString("template",
			mcp.Required(),
			mcp.Description(
				`JSON object: {"id","name","mode","kidsPresent","days":{"monday":{"morning":[{"text":"..."}],...}}}. `+
					"Sections are morning, afterSchool, evening and parentTasks.",
			),
		),
	)
}

// Handle processes the template_save tool call.
func (t *TemplateSaveTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := requireString(req, "template")
	if errResult != nil {
		return errResult, nil
	}
	var tpl routine.Template
	if err := json.Unmarshal([]byte(raw), &tpl); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'template' must be a JSON object: %v", err)), nil
	}
	if err := tpl.Validate(); err != nil {
		return engineError(err)
	}
	if err := t.planner.SaveTemplate(&tpl); err != nil {
		return engineError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved template `%s` (%s)", tpl.ID, tpl.Name)), nil
}
