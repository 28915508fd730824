package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

const (
	ToolCreateTicket     = "create_ticket"
	ToolCheckOrderStatus = "check_order_status"
	ToolSearchKnowledge  = "search_knowledge_base"
)

// toolNames is the fixed extraction vocabulary. Calls are collected per
// tool name in this order, not in reply-text order across tools; prompts
// downstream tolerate that and it is kept deliberately.
var toolNames = []string{ToolCreateTicket, ToolCheckOrderStatus, ToolSearchKnowledge}

var knownArgKeys = map[string]bool{
	"description": true,
	"priority":    true,
	"category":    true,
	"order_id":    true,
	"query":       true,
}

// ToolCall is a structured action request parsed out of free-text model
// output. Unknown keys are dropped during parsing; missing keys are
// simply absent from Args.
type ToolCall struct {
	Name string
	Args map[string]string
}

// ExtractToolCalls scans a model reply for name(key="value", ...)
// invocations of the known tools.
func ExtractToolCalls(reply string) []ToolCall {
	var calls []ToolCall
	for _, name := range toolNames {
		rest := reply
		for {
			body, remainder, ok := nextInvocation(rest, name)
			if !ok {
				break
			}
			calls = append(calls, ToolCall{
				Name: name,
				Args: parseArgs(body),
			})
			rest = remainder
		}
	}
	return calls
}

// nextInvocation finds the first "name(" in text and returns the argument
// body up to the closing parenthesis plus the remaining text.
func nextInvocation(text, name string) (body, remainder string, ok bool) {
	for {
		i := strings.Index(text, name)
		if i < 0 {
			return "", "", false
		}
		after := text[i+len(name):]

		// Reject matches inside longer identifiers.
		if i > 0 && isIdentRune(rune(text[i-1])) {
			text = after
			continue
		}
		if !strings.HasPrefix(after, "(") {
			text = after
			continue
		}

		end := strings.IndexByte(after, ')')
		if end < 0 {
			return "", "", false
		}
		return after[1:end], after[end+1:], true
	}
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parseArgs tokenizes key="value" pairs. Keys outside the known
// vocabulary are ignored; pairs with no quoted value are skipped.
func parseArgs(body string) map[string]string {
	args := make(map[string]string)
	rest := body

	for {
		rest = strings.TrimLeft(rest, " \t\r\n,")
		if rest == "" {
			return args
		}

		key, after, ok := scanIdent(rest)
		if !ok {
			// Not a key position; skip one rune and resync.
			rest = rest[1:]
			continue
		}
		rest = strings.TrimLeft(after, " \t\r\n")
		if !strings.HasPrefix(rest, "=") {
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t\r\n")

		value, after, ok := scanQuoted(rest)
		if !ok {
			continue
		}
		rest = after

		if knownArgKeys[key] {
			args[key] = value
		}
	}
}

func scanIdent(s string) (ident, rest string, ok bool) {
	end := 0
	for end < len(s) && isIdentRune(rune(s[end])) {
		end++
	}
	if end == 0 {
		return "", s, false
	}
	return s[:end], s[end:], true
}

func scanQuoted(s string) (value, rest string, ok bool) {
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return "", s, false
	}
	quote := s[0]
	end := strings.IndexByte(s[1:], quote)
	if end < 0 {
		return "", s, false
	}
	return s[1 : 1+end], s[2+end:], true
}

// ToolFunc executes one tool call and renders its result as user-facing
// text.
type ToolFunc func(ctx context.Context, args map[string]string) (string, error)

// Dispatcher routes extracted calls to registered tools. Each dispatch is
// fault-isolated: a failing tool yields an error string for that call
// only.
type Dispatcher struct {
	handlers map[string]ToolFunc
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		handlers: make(map[string]ToolFunc),
		logger:   logger,
	}
}

func (d *Dispatcher) Register(name string, fn ToolFunc) {
	d.handlers[name] = fn
}

func (d *Dispatcher) Dispatch(ctx context.Context, call ToolCall) string {
	fn, ok := d.handlers[call.Name]
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", call.Name)
	}

	result, err := fn(ctx, call.Args)
	if err != nil {
		d.logger.Error("tool failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}
	return result
}

// DispatchAll executes every call in order and collects the textual
// results. A failure in one call does not abort the siblings.
func (d *Dispatcher) DispatchAll(ctx context.Context, calls []ToolCall) []string {
	results := make([]string, 0, len(calls))
	for _, call := range calls {
		results = append(results, d.Dispatch(ctx, call))
	}
	return results
}
