package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/weekplan/internal/mode"
	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, *planner.Service) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	p := planner.New(st, nil, nil)
	return NewHandler(p), p
}

func read(t *testing.T, fn func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error), uri string) mcp.TextResourceContents {
	t.Helper()
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	contents, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("read %s: %v", uri, err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T", contents[0])
	}
	return tc
}

func TestHandleCurrentWeek(t *testing.T) {
	h, p := newTestHandler(t)

	tc := read(t, h.HandleCurrentWeek, CurrentWeekURI)
	if tc.MIMEType != "application/json" || tc.URI != CurrentWeekURI {
		t.Errorf("content = %s %s", tc.URI, tc.MIMEType)
	}
	var doc CurrentWeek
	if err := json.Unmarshal([]byte(tc.Text), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Routine != nil {
		t.Error("routine should be null before the week is started")
	}
	if doc.Week.WeekStartDate != p.CurrentKey() || !doc.Week.HasKids {
		t.Errorf("week = %+v", doc.Week)
	}

	if _, err := p.StartWeek(p.CurrentKey(), mode.Hardest, nil, false); err != nil {
		t.Fatalf("StartWeek: %v", err)
	}
	tc = read(t, h.HandleCurrentWeek, CurrentWeekURI)
	doc = CurrentWeek{}
	if err := json.Unmarshal([]byte(tc.Text), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Routine == nil || doc.Routine.Mode != mode.Hardest || doc.Week.Mode != mode.Hardest {
		t.Errorf("doc after start = %+v", doc)
	}
}

func TestHandleCustodyAndTemplates(t *testing.T) {
	h, _ := newTestHandler(t)

	tc := read(t, h.HandleCustody, CustodyURI)
	var settings map[string]any
	if err := json.Unmarshal([]byte(tc.Text), &settings); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if settings["pattern"] != "none" {
		t.Errorf("settings = %v", settings)
	}

	tc = read(t, h.HandleTemplates, TemplatesURI)
	var list []map[string]any
	if err := json.Unmarshal([]byte(tc.Text), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 6 {
		t.Errorf("templates = %d, want the 6 built-ins", len(list))
	}
}

func TestResourceDefinitions(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, r := range []mcp.Resource{h.CurrentWeekResource(), h.CustodyResource(), h.TemplatesResource()} {
		if r.URI == "" || r.Name == "" || r.MIMEType != "application/json" {
			t.Errorf("resource = %+v", r)
		}
	}
}
