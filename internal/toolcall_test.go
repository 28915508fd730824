package internal

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestExtractToolCallsSingle(t *testing.T) {
	reply := `I'll create a ticket for that.
create_ticket(description="Printer jams on every page", priority="high", category="technical")
You should hear back soon.`

	calls := ExtractToolCalls(reply)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}

	want := ToolCall{
		Name: ToolCreateTicket,
		Args: map[string]string{
			"description": "Printer jams on every page",
			"priority":    "high",
			"category":    "technical",
		},
	}
	if !reflect.DeepEqual(calls[0], want) {
		t.Errorf("call = %+v, want %+v", calls[0], want)
	}
}

func TestExtractToolCallsNone(t *testing.T) {
	for _, reply := range []string{
		"",
		"Just a plain answer with no actions.",
		"mention of create_ticket without parentheses",
		"recreate_ticket(description=\"embedded identifier\")",
	} {
		if calls := ExtractToolCalls(reply); len(calls) != 0 {
			t.Errorf("ExtractToolCalls(%q) = %+v, want none", reply, calls)
		}
	}
}

func TestExtractToolCallsGroupsByToolName(t *testing.T) {
	reply := `check_order_status(order_id="ORD-002")
create_ticket(description="Broken keyboard")
check_order_status(order_id="ORD-001")`

	calls := ExtractToolCalls(reply)
	if len(calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(calls))
	}

	// Calls come back grouped per tool name, create_ticket first.
	wantNames := []string{ToolCreateTicket, ToolCheckOrderStatus, ToolCheckOrderStatus}
	for i, n := range wantNames {
		if calls[i].Name != n {
			t.Errorf("calls[%d].Name = %q, want %q", i, calls[i].Name, n)
		}
	}
	if calls[1].Args["order_id"] != "ORD-002" || calls[2].Args["order_id"] != "ORD-001" {
		t.Errorf("same-tool calls out of text order: %+v", calls[1:])
	}
}

func TestExtractToolCallsArgParsing(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  map[string]string
	}{
		{
			name:  "single quotes",
			reply: `search_knowledge_base(query='refund policy')`,
			want:  map[string]string{"query": "refund policy"},
		},
		{
			name:  "unknown keys dropped",
			reply: `create_ticket(description="Laptop dead", urgency="now")`,
			want:  map[string]string{"description": "Laptop dead"},
		},
		{
			name:  "unquoted value skipped",
			reply: `create_ticket(description="ok", priority=high)`,
			want:  map[string]string{"description": "ok"},
		},
		{
			name:  "empty body",
			reply: `search_knowledge_base()`,
			want:  map[string]string{},
		},
		{
			name:  "whitespace around pairs",
			reply: `check_order_status( order_id = "ord-003" )`,
			want:  map[string]string{"order_id": "ord-003"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := ExtractToolCalls(tt.reply)
			if len(calls) != 1 {
				t.Fatalf("got %d calls, want 1", len(calls))
			}
			if !reflect.DeepEqual(calls[0].Args, tt.want) {
				t.Errorf("args = %+v, want %+v", calls[0].Args, tt.want)
			}
		})
	}
}

func TestExtractToolCallsUnterminated(t *testing.T) {
	if calls := ExtractToolCalls(`create_ticket(description="never closed`); len(calls) != 0 {
		t.Errorf("unterminated invocation produced calls: %+v", calls)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d := NewDispatcher(nil)

	got := d.Dispatch(context.Background(), ToolCall{Name: "launch_rocket"})
	if got != "Unknown tool: launch_rocket" {
		t.Errorf("Dispatch = %q", got)
	}
}

func TestDispatchToolError(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("broken", func(ctx context.Context, args map[string]string) (string, error) {
		return "", errors.New("disk full")
	})

	got := d.Dispatch(context.Background(), ToolCall{Name: "broken"})
	if got != "Error executing broken: disk full" {
		t.Errorf("Dispatch = %q", got)
	}
}

func TestDispatchAllIsolatesFailures(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("good", func(ctx context.Context, args map[string]string) (string, error) {
		return "done", nil
	})
	d.Register("bad", func(ctx context.Context, args map[string]string) (string, error) {
		return "", errors.New("boom")
	})

	results := d.DispatchAll(context.Background(), []ToolCall{
		{Name: "bad"},
		{Name: "good"},
		{Name: "missing"},
	})

	want := []string{
		"Error executing bad: boom",
		"done",
		"Unknown tool: missing",
	}
	if !reflect.DeepEqual(results, want) {
		t.Errorf("results = %v, want %v", results, want)
	}
}
