package plan

import (
	"strings"
	"testing"
)

func positions(steps []Step) map[StepID]int {
	pos := make(map[StepID]int, len(steps))
	for i, s := range steps {
		pos[s.ID] = i
	}
	return pos
}

func TestAdd(t *testing.T) {
	ResetSequenceCounter()
	p := New("add").WithIDGenerator(SequenceIDGenerator)

	if err := p.Add(
		Step{Type: TypeMkdir, Path: "/a"},
		Step{ID: "file", Type: TypeMkfile, Path: "/a/f"},
	); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(p.Steps) != 2 {
		t.Fatalf("Steps count = %d, want 2", len(p.Steps))
	}
	if p.Steps[0].ID != "mkdir-1" {
		t.Errorf("generated ID = %q, want %q", p.Steps[0].ID, "mkdir-1")
	}
	if _, ok := p.Get("file"); !ok {
		t.Errorf("Get(file) did not find the step")
	}

	err := p.Add(Step{ID: "file", Type: TypeRemove, Path: "/a/f"})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Add with duplicate ID error = %v, want 'already exists'", err)
	}
	if len(p.Steps) != 2 {
		t.Errorf("duplicate step was added")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr string
	}{
		{
			name:  "valid",
			steps: []Step{{ID: "a", Type: TypeMkdir, Path: "/a", Mode: "0750"}},
		},
		{
			name:    "unknown type",
			steps:   []Step{{ID: "a", Type: "explode", Path: "/a"}},
			wantErr: "unknown type",
		},
		{
			name:    "empty path",
			steps:   []Step{{ID: "a", Type: TypeMkdir}},
			wantErr: "path cannot be empty",
		},
		{
			name:    "copy without target",
			steps:   []Step{{ID: "a", Type: TypeCopy, Path: "/a"}},
			wantErr: "requires a target",
		},
		{
			name:    "chmod without mode",
			steps:   []Step{{ID: "a", Type: TypeChmod, Path: "/a"}},
			wantErr: "requires a mode",
		},
		{
			name:  "symbolic chmod",
			steps: []Step{{ID: "a", Type: TypeChmod, Path: "/a", Mode: "u+x"}},
		},
		{
			name:    "bad symbolic chmod",
			steps:   []Step{{ID: "a", Type: TypeChmod, Path: "/a", Mode: "zz"}},
			wantErr: "invalid mode",
		},
		{
			name:    "symbolic chmod without operator",
			steps:   []Step{{ID: "a", Type: TypeChmod, Path: "/a", Mode: "u"}},
			wantErr: "invalid mode",
		},
		{
			name:  "octal chmod",
			steps: []Step{{ID: "a", Type: TypeChmod, Path: "/a", Mode: "0640"}},
		},
		{
			name:    "symbolic mode on mkdir",
			steps:   []Step{{ID: "a", Type: TypeMkdir, Path: "/a", Mode: "u+x"}},
			wantErr: "invalid mode",
		},
		{
			name: "duplicate id",
			steps: []Step{
				{ID: "a", Type: TypeMkdir, Path: "/a"},
				{ID: "a", Type: TypeMkdir, Path: "/b"},
			},
			wantErr: "already exists",
		},
		{
			name:    "missing dependency",
			steps:   []Step{{ID: "a", Type: TypeMkdir, Path: "/a", DependsOn: []StepID{"nope"}}},
			wantErr: "non-existent step 'nope'",
		},
		{
			name:    "self dependency",
			steps:   []Step{{ID: "a", Type: TypeMkdir, Path: "/a", DependsOn: []StepID{"a"}}},
			wantErr: "depends on itself",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.name)
			p.Steps = tt.steps
			err := p.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateGeneratesMissingIDs(t *testing.T) {
	ResetSequenceCounter()
	p := New("ids").WithIDGenerator(SequenceIDGenerator)
	p.Steps = []Step{{Type: TypeMkdir, Path: "/a"}, {Type: TypeMkdir, Path: "/b"}}

	if err := p.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if p.Steps[0].ID != "mkdir-1" || p.Steps[1].ID != "mkdir-2" {
		t.Errorf("IDs = %q, %q; want mkdir-1, mkdir-2", p.Steps[0].ID, p.Steps[1].ID)
	}
}

func TestResolve(t *testing.T) {
	p := New("resolve")
	// Declared in reverse so only the dependencies put them in order.
	if err := p.Add(
		Step{ID: "link", Type: TypeSymlink, Path: "/a/link", Target: "/a/b/f", DependsOn: []StepID{"file"}},
		Step{ID: "file", Type: TypeMkfile, Path: "/a/b/f", DependsOn: []StepID{"dir"}},
		Step{ID: "other", Type: TypeMkdir, Path: "/x"},
		Step{ID: "dir", Type: TypeMkdir, Path: "/a/b"},
	); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	steps, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("Resolve returned %d steps, want 4", len(steps))
	}
	pos := positions(steps)
	if pos["dir"] > pos["file"] || pos["file"] > pos["link"] {
		t.Errorf("dependency order violated: %v", pos)
	}
	if _, ok := pos["other"]; !ok {
		t.Errorf("independent step missing from resolved order")
	}
}

func TestResolveCycle(t *testing.T) {
	p := New("cycle")
	p.Steps = []Step{
		{ID: "a", Type: TypeMkdir, Path: "/a", DependsOn: []StepID{"c"}},
		{ID: "b", Type: TypeMkdir, Path: "/b", DependsOn: []StepID{"a"}},
		{ID: "c", Type: TypeMkdir, Path: "/c", DependsOn: []StepID{"b"}},
	}
	_, err := p.Resolve()
	if err == nil || !strings.Contains(err.Error(), "circular dependency") {
		t.Errorf("Resolve() error = %v, want circular dependency", err)
	}
}
