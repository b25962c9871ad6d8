package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(res.Messages))
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Messages[0].Content)
	}
	return tc.Text
}

func TestCheckinPrompt(t *testing.T) {
	p := NewCheckinPrompt()
	if p.Definition().Name != "weekly-checkin" {
		t.Errorf("name = %s", p.Definition().Name)
	}

	req := mcp.GetPromptRequest{}
	res, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := promptText(t, res)
	for _, tool := range []string{"week_current", "hard_week_list", "week_start"} {
		if !strings.Contains(text, tool) {
			t.Errorf("prompt should mention %s", tool)
		}
	}

	req.Params.Arguments = map[string]string{"feeling": "wiped out"}
	res, _ = p.Handle(context.Background(), req)
	if !strings.Contains(promptText(t, res), "wiped out") {
		t.Error("prompt should carry the user's words")
	}
}

func TestHardWeekPrompt(t *testing.T) {
	p := NewHardWeekPrompt()

	res, err := p.Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Description != "Plan next week" || !strings.Contains(promptText(t, res), "Ask me") {
		t.Errorf("defaults: %q / %s", res.Description, promptText(t, res))
	}

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"week": "2024-11-11", "reason": "work trip"}
	res, _ = p.Handle(context.Background(), req)
	text := promptText(t, res)
	if !strings.Contains(text, "the week of 2024-11-11") || !strings.Contains(text, "work trip") {
		t.Errorf("prompt = %s", text)
	}
}
