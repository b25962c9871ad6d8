// Package resources implements MCP resource handlers for the weekly planner.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (weekplan://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/routine"
)

// Resource URIs.
const (
	CurrentWeekURI = "weekplan://week/current"
	CustodyURI     = "weekplan://custody"
	TemplatesURI   = "weekplan://templates"
)

// Handler serves planner resources.
type Handler struct {
	planner *planner.Service
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(p *planner.Service) *Handler {
	return &Handler{planner: p}
}

// CurrentWeek is the document behind CurrentWeekURI. Routine is nil when
// the week has not been set up.
type CurrentWeek struct {
	Week    routine.WeekInfo       `json:"week"`
	Routine *routine.WeeklyRoutine `json:"routine"`
}

// CurrentWeekResource returns the MCP resource definition for this week.
func (h *Handler) CurrentWeekResource() mcp.Resource {
	return mcp.NewResource(
		CurrentWeekURI,
		"This Week",
		mcp.WithResourceDescription("This week's routine with resolved custody and mode"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCurrentWeek returns this week's routine and week info as JSON.
func (h *Handler) HandleCurrentWeek(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	info, err := h.planner.WeekInfo(h.planner.CurrentKey())
	if err != nil {
		return nil, fmt.Errorf("resolving current week: %w", err)
	}
	doc := CurrentWeek{Week: info}
	r, err := h.planner.Current()
	switch {
	case err == nil:
		doc.Routine = r
	case !errors.Is(err, routine.ErrNotFound):
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, doc)
}

// CustodyResource returns the MCP resource definition for custody settings.
func (h *Handler) CustodyResource() mcp.Resource {
	return mcp.NewResource(
		CustodyURI,
		"Custody Settings",
		mcp.WithResourceDescription("The custody pattern used when a week has no routine or exception"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCustody returns the effective custody settings as JSON.
func (h *Handler) HandleCustody(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	settings, _ := h.planner.Settings()
	return jsonResource(req.Params.URI, settings)
}

// TemplatesResource returns the MCP resource definition for the template library.
func (h *Handler) TemplatesResource() mcp.Resource {
	return mcp.NewResource(
		TemplatesURI,
		"Routine Templates",
		mcp.WithResourceDescription("Built-in and saved routine templates"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleTemplates returns every template as JSON.
func (h *Handler) HandleTemplates(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.planner.Templates()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, list)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
