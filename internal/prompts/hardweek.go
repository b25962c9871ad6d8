package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// HardWeekPrompt handles the plan-hard-week MCP prompt.
// It helps the user get ahead of a week they already know will be rough.
type HardWeekPrompt struct{}

// NewHardWeekPrompt creates a HardWeekPrompt.
func NewHardWeekPrompt() *HardWeekPrompt {
	return &HardWeekPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *HardWeekPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-hard-week",
		mcp.WithPromptDescription(
			"Plan ahead for a week you expect to be hard: flag it and line up prep tasks.",
		),
		mcp.WithArgument("week",
			mcp.ArgumentDescription("Any date in the week (YYYY-MM-DD). Default: next week."),
		),
		mcp.WithArgument("reason",
			mcp.ArgumentDescription("What makes it hard."),
		),
	)
}

// Handle processes the plan-hard-week prompt request.
func (p *HardWeekPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	weekRef := "next week"
	reason := ""
	if args := req.Params.Arguments; args != nil {
		if w, ok := args["week"]; ok && w != "" {
			weekRef = "the week of " + w
		}
		reason = args["reason"]
	}

	ask := "Ask me what makes it hard."
	if reason != "" {
		ask = fmt.Sprintf("The reason: %s.", reason)
	}

	return &mcp.GetPromptResult{
		Description: "Plan " + weekRef,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I expect %s to be hard. %s\n\n"+
						"Please:\n"+
						"1. Run `week_info` for that week to see whether the kids will be with me\n"+
						"2. Run `hard_week_flag` with the reason and the mode you expect (hard or hardest)\n"+
						"3. Suggest prep tasks I can do this week to make that one easier\n"+
						"4. If the week already has a routine, save them with `prep_tasks_replace`; "+
						"otherwise keep them in the flag's notes via `hard_week_update`",
					weekRef, ask,
				)),
			},
		},
	}, nil
}
