package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestStatusCmd(t *testing.T) {
	root := NewRootCmd("test")

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"status", "--config", writeTestConfig(t)})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Ollama reachable: no",
		"Index: 0 chunks",
		"Orders: 3 total",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("status output missing %q:\n%s", want, text)
		}
	}
}

func TestStatusCmdJSON(t *testing.T) {
	root := NewRootCmd("test")

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"status", "--config", writeTestConfig(t), "--json"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var report statusReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if report.OllamaConnected {
		t.Error("unreachable backend reported connected")
	}
	if report.Orders.TotalOrders != 3 {
		t.Errorf("orders = %d, want 3 samples", report.Orders.TotalOrders)
	}
}
