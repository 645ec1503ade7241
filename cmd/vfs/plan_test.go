package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlanCreateValidateExecute(t *testing.T) {
	planFile := filepath.Join(t.TempDir(), "plan.yaml")

	out := mustRun(t, "plan", "create", "sample", "-o", planFile)
	if !strings.Contains(out, "Steps: 3") {
		t.Errorf("create output:\n%s", out)
	}
	data, err := os.ReadFile(planFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "depends_on:") {
		t.Errorf("plan file is not yaml:\n%s", data)
	}

	out = mustRun(t, "plan", "validate", planFile)
	if !strings.Contains(out, "✓ Plan file is valid") {
		t.Errorf("validate output:\n%s", out)
	}

	out = mustRun(t, "--backend", "memfs", "plan", "execute", "--dump", planFile)
	for _, want := range []string{
		"✓ Plan executed successfully",
		"/example/hello.txt",
		"/example/latest.txt ",
		"-> hello.txt",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("execute output missing %q:\n%s", want, out)
		}
	}
}

func TestPlanValidateRejectsCycle(t *testing.T) {
	planFile := filepath.Join(t.TempDir(), "plan.json")
	content := `{
  "metadata": {"version": "1.0", "description": "cycle"},
  "steps": [
    {"id": "a", "type": "mkdir", "path": "/a", "depends_on": ["b"]},
    {"id": "b", "type": "mkdir", "path": "/b", "depends_on": ["a"]}
  ]
}`
	if err := os.WriteFile(planFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "plan", "validate", planFile)
	if err == nil || !strings.Contains(err.Error(), "circular dependency") {
		t.Errorf("expected circular dependency error, got %v", err)
	}
}

func TestPlanExecuteFailure(t *testing.T) {
	planFile := filepath.Join(t.TempDir(), "plan.json")
	content := `{
  "metadata": {"version": "1.0", "description": "broken"},
  "steps": [
    {"id": "orphan", "type": "write", "path": "/missing/parent/f", "content": "x"}
  ]
}`
	if err := os.WriteFile(planFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--backend", "memfs", "plan", "execute", planFile)
	if err == nil {
		t.Fatal("expected execution to fail")
	}
	if !strings.Contains(out, "✗ orphan (failure)") {
		t.Errorf("execute output:\n%s", out)
	}
}
