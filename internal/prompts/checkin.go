// Package prompts implements MCP prompt handlers for the weekly planner.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to run a sequence of tools. Unlike tools (which the AI
// calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// CheckinPrompt handles the weekly-checkin MCP prompt.
// It walks the user through choosing this week's mode and starting it.
type CheckinPrompt struct{}

// NewCheckinPrompt creates a CheckinPrompt.
func NewCheckinPrompt() *CheckinPrompt {
	return &CheckinPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *CheckinPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("weekly-checkin",
		mcp.WithPromptDescription(
			"Check in on the week: see who is home, pick how much capacity you have "+
				"(regular, hard or hardest) and set the week's routine up to match.",
		),
		mcp.WithArgument("feeling",
			mcp.ArgumentDescription("A few words on how the week looks, e.g. 'exhausted, big deadline Thursday'."),
		),
	)
}

// Handle processes the weekly-checkin prompt request.
func (p *CheckinPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	feeling := ""
	if args := req.Params.Arguments; args != nil {
		feeling = strings.TrimSpace(args["feeling"])
	}

	opener := "I want to check in on my week."
	if feeling != "" {
		opener = fmt.Sprintf("I want to check in on my week. How it looks: %s.", feeling)
	}

	return &mcp.GetPromptResult{
		Description: "Weekly check-in",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(opener + "\n\n" +
					"Please:\n" +
					"1. Run `week_current` to see whether the kids are with me and whether the week is already set up\n" +
					"2. Run `hard_week_list` and mention any flag on this week\n" +
					"3. Suggest a mode (regular, hard or hardest) based on what I said, and show me the guidance for it\n" +
					"4. Once I agree, run `week_start` with that mode (use overwrite only if I confirm losing checked tasks)\n" +
					"5. Ask whether there is anything unusual this week and record it with `week_upsert` as a weekException\n" +
					"6. Finish with `prep_tasks_get` and a short list of what to prepare",
				),
			},
		},
	}, nil
}
