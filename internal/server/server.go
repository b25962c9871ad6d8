// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the store, builds the planner and
// injects it into the tools, prompts and resources. No business logic
// lives here, only wiring.
package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/weekplan/internal/config"
	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/prompts"
	"github.com/HendryAvila/weekplan/internal/resources"
	"github.com/HendryAvila/weekplan/internal/store"
	"github.com/HendryAvila/weekplan/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// tool is what every handler in internal/tools provides.
type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the store and must be called on
// shutdown (typically via defer). It is always non-nil.
func New(cfg config.Config, logger *zap.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// --- Create shared dependencies ---

	loc, err := cfg.Location()
	if err != nil {
		return nil, noop, fmt.Errorf("loading timezone: %w", err)
	}
	st, err := store.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, noop, fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close", zap.Error(err))
		}
	}
	logger.Info("store opened",
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir),
		zap.String("timezone", loc.String()),
	)

	p := planner.New(st, logger.Named("planner"), loc)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"weekplan",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	for _, t := range plannerTools(p) {
		s.AddTool(t.Definition(), t.Handle)
	}

	// --- Register prompts ---

	checkin := prompts.NewCheckinPrompt()
	s.AddPrompt(checkin.Definition(), checkin.Handle)

	hardWeek := prompts.NewHardWeekPrompt()
	s.AddPrompt(hardWeek.Definition(), hardWeek.Handle)

	// --- Register resources ---

	rh := resources.NewHandler(p)
	s.AddResource(rh.CurrentWeekResource(), rh.HandleCurrentWeek)
	s.AddResource(rh.CustodyResource(), rh.HandleCustody)
	s.AddResource(rh.TemplatesResource(), rh.HandleTemplates)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used when nothing was opened.
func noop() {}

// plannerTools lists every tool backed by the planner, grouped the way
// the instructions present them.
func plannerTools(p *planner.Service) []tool {
	return []tool{
		// --- Weeks ---
		tools.NewWeekCurrentTool(p),
		tools.NewWeekGetTool(p),
		tools.NewWeekInfoTool(p),
		tools.NewWeekStartTool(p),
		tools.NewWeekUpsertTool(p),
		tools.NewWeekDeleteTool(p),

		// --- Days and tasks ---
		tools.NewTodayTool(p),
		tools.NewTaskToggleTool(p),
		tools.NewDayNotesTool(p),

		// --- Prep tasks ---
		tools.NewPrepTasksGetTool(p),
		tools.NewPrepTasksReplaceTool(p),
		tools.NewPrepTaskToggleTool(p),

		// --- Templates ---
		tools.NewTemplateListTool(p),
		tools.NewTemplateGetTool(p),
		tools.NewTemplateSaveTool(p),

		// --- Custody ---
		tools.NewCustodyGetTool(p),
		tools.NewCustodySetTool(p),

		// --- Hard weeks ---
		tools.NewHardWeekFlagTool(p),
		tools.NewHardWeekListTool(p),
		tools.NewHardWeekUpdateTool(p),
		tools.NewHardWeekDeleteTool(p),
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to use weekplan.
func serverInstructions() string {
	return `You have access to weekplan, a weekly routine planner for a parent whose
capacity and custody change from week to week.

## CONCEPTS

- A week is identified by its Monday (YYYY-MM-DD). Every tool taking a "week"
  accepts any date in that week.
- Mode is how much capacity the parent has this week:
  - regular: the normal routine
  - hard: simplified expectations
  - hardest: survival, bare minimum
  With the kids away the same modes read as Regular Solo, Recovery and Hustle.
- Custody decides whether the kids are home. A week's exception (weekException
  with kidsWithYou) wins over the routine's kidsWithUser, which wins over the
  custody schedule set with custody_set.

## HOW TO WORK

1. Start with week_current. If the week has no routine, help the user choose
   a mode and call week_start.
2. Use task_toggle and prep_task_toggle for check-offs. Unknown ids are errors:
   re-read the week with week_get instead of guessing ids.
3. Use week_upsert for everything else. A key set to null deletes it; keys you
   leave out are untouched. Changing mode with week_upsert does NOT rebuild the
   task list. To switch the tasks to a new mode call week_start with
   overwrite=true, and warn the user that checked tasks will be reset.
4. When the user mentions a rough week ahead, record it with hard_week_flag.

## RULES

- Never call week_start with overwrite=true without the user's agreement.
- Keep the tone kind. On hard and hardest weeks, celebrate what got done and
  do not list what was missed.`
}
