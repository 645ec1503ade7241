// Package plan describes batches of filesystem steps that can be stored as JSON or YAML,
// ordered by their dependencies and run against any backend.
package plan

import (
	"fmt"
	"time"

	"github.com/gammazero/toposort"
)

// Version is written into the metadata of new plans.
const Version = "1.0"

// Metadata describes a plan.
type Metadata struct {
	Version     string    `json:"version" yaml:"version"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Plan is an ordered list of steps with optional dependencies between them.
type Plan struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Steps    []Step   `json:"steps" yaml:"steps"`

	ids IDGenerator
}

// New creates an empty plan.
func New(description string) *Plan {
	return &Plan{
		Metadata: Metadata{
			Version:     Version,
			Description: description,
			CreatedAt:   time.Now(),
		},
		Steps: []Step{},
	}
}

// WithIDGenerator sets the generator used for steps added without an id.
func (p *Plan) WithIDGenerator(gen IDGenerator) *Plan {
	p.ids = gen
	return p
}

// Add appends steps, generating ids for those without one. It rejects an id that is
// already in the plan.
func (p *Plan) Add(steps ...Step) error {
	seen := p.index()
	for _, s := range steps {
		if s.ID == "" {
			s.ID = p.generate(s)
		}
		if _, exists := seen[s.ID]; exists {
			return fmt.Errorf("step with ID '%s' already exists in plan", s.ID)
		}
		seen[s.ID] = len(p.Steps)
		p.Steps = append(p.Steps, s)
	}
	return nil
}

// Get returns the step with id.
func (p *Plan) Get(id StepID) (Step, bool) {
	for _, s := range p.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// Validate checks every step, that ids are unique and that dependencies refer to steps
// in the plan. Steps decoded without an id are given one first.
func (p *Plan) Validate() error {
	seen := make(map[StepID]int, len(p.Steps))
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.ID == "" {
			s.ID = p.generate(*s)
		}
		if _, exists := seen[s.ID]; exists {
			return fmt.Errorf("step with ID '%s' already exists in plan", s.ID)
		}
		seen[s.ID] = i
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, s := range p.Steps {
		for _, dep := range s.DependsOn {
			if dep == s.ID {
				return fmt.Errorf("step '%s' depends on itself", s.ID)
			}
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("step '%s' depends on non-existent step '%s'", s.ID, dep)
			}
		}
	}
	return nil
}

// Resolve validates the plan and returns its steps in an order where every step follows
// the steps it depends on. Steps without dependencies keep their relative order after
// the dependency graph.
func (p *Plan) Resolve() ([]Step, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	edges := make([]toposort.Edge, 0)
	for _, s := range p.Steps {
		for _, dep := range s.DependsOn {
			// dependency -> step
			edges = append(edges, toposort.Edge{string(dep), string(s.ID)})
		}
	}

	sortedIDs, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("circular dependency detected: %w", err)
	}

	index := p.index()
	resolved := make([]Step, 0, len(p.Steps))
	placed := make(map[StepID]bool, len(p.Steps))
	for _, idInterface := range sortedIDs {
		id := StepID(idInterface.(string))
		if i, ok := index[id]; ok && !placed[id] {
			resolved = append(resolved, p.Steps[i])
			placed[id] = true
		}
	}
	for _, s := range p.Steps {
		if !placed[s.ID] {
			resolved = append(resolved, s)
		}
	}
	return resolved, nil
}

func (p *Plan) index() map[StepID]int {
	index := make(map[StepID]int, len(p.Steps))
	for i, s := range p.Steps {
		index[s.ID] = i
	}
	return index
}

func (p *Plan) generate(s Step) StepID {
	gen := p.ids
	if gen == nil {
		gen = HashIDGenerator
	}
	return gen(s.Type, s.Path)
}
