package plan

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a stored plan.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// FormatOf picks the format from a file name, defaulting to JSON.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Marshal encodes a plan.
func Marshal(p *Plan, format Format) ([]byte, error) {
	switch format {
	case YAML:
		data, err := yaml.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plan as yaml: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plan as json: %w", err)
		}
		return data, nil
	}
}

// Unmarshal decodes a plan. Steps without an id keep an empty one until the plan is
// validated or resolved.
func Unmarshal(data []byte, format Format) (*Plan, error) {
	p := &Plan{}
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, p)
	default:
		err = json.Unmarshal(data, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	if p.Metadata.Version == "" {
		p.Metadata.Version = Version
	}
	if p.Steps == nil {
		p.Steps = []Step{}
	}
	return p, nil
}
