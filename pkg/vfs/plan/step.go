package plan

import (
	"fmt"
	"io"
	"slices"

	"github.com/arthur-debert/vfs/pkg/vfs/backend"
)

// StepID identifies a step within a plan.
type StepID string

// StepType names the filesystem call a step makes.
type StepType string

const (
	TypeMkdir     StepType = "mkdir"
	TypeMkfile    StepType = "mkfile"
	TypeWrite     StepType = "write"
	TypeAppend    StepType = "append"
	TypeCopy      StepType = "copy"
	TypeMove      StepType = "move"
	TypeSymlink   StepType = "symlink"
	TypeChmod     StepType = "chmod"
	TypeRemove    StepType = "remove"
	TypeRemoveAll StepType = "remove_all"
)

// Types lists every step type in documentation order.
var Types = []StepType{
	TypeMkdir, TypeMkfile, TypeWrite, TypeAppend, TypeCopy,
	TypeMove, TypeSymlink, TypeChmod, TypeRemove, TypeRemoveAll,
}

// Step is one filesystem call. Target is the destination of copy and move and the target
// of symlink, whose Path is the link. Mode is octal, or symbolic for chmod.
type Step struct {
	ID        StepID   `json:"id,omitempty" yaml:"id,omitempty"`
	Type      StepType `json:"type" yaml:"type"`
	Path      string   `json:"path" yaml:"path"`
	Target    string   `json:"target,omitempty" yaml:"target,omitempty"`
	Content   string   `json:"content,omitempty" yaml:"content,omitempty"`
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	DependsOn []StepID `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Validate checks the step is well formed without touching a filesystem.
func (s *Step) Validate() error {
	if !knownType(s.Type) {
		return fmt.Errorf("step %s: unknown type %q", s.ID, s.Type)
	}
	if s.Path == "" {
		return fmt.Errorf("step %s: path cannot be empty", s.ID)
	}
	switch s.Type {
	case TypeCopy, TypeMove, TypeSymlink:
		if s.Target == "" {
			return fmt.Errorf("step %s: %s requires a target", s.ID, s.Type)
		}
	case TypeChmod:
		if s.Mode == "" {
			return fmt.Errorf("step %s: chmod requires a mode", s.ID)
		}
	}
	if s.Mode != "" {
		_, err := backend.ParseMode(s.Mode)
		if err != nil && s.Type == TypeChmod && backend.ValidSym(s.Mode) == nil {
			err = nil
		}
		if err != nil {
			return fmt.Errorf("step %s: %w", s.ID, err)
		}
	}
	return nil
}

// Execute performs the step against b.
func (s *Step) Execute(b backend.VirtualFileSystem) error {
	mode, modeErr := backend.ParseMode(s.Mode)
	hasMode := s.Mode != "" && modeErr == nil

	switch s.Type {
	case TypeMkdir:
		if hasMode {
			_, err := b.MkdirM(s.Path, mode)
			return err
		}
		_, err := b.MkdirP(s.Path)
		return err

	case TypeMkfile:
		if hasMode {
			_, err := b.MkfileM(s.Path, mode)
			return err
		}
		_, err := b.Mkfile(s.Path)
		return err

	case TypeWrite:
		if err := b.WriteAll(s.Path, []byte(s.Content)); err != nil {
			return err
		}
		if hasMode {
			c, err := b.ChmodB(s.Path)
			if err != nil {
				return err
			}
			return c.All(mode).Shallow().Exec()
		}
		return nil

	case TypeAppend:
		w, err := b.Append(s.Path)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, s.Content); err != nil {
			w.Close()
			return err
		}
		return w.Close()

	case TypeCopy:
		c, err := b.CopyB(s.Path, s.Target)
		if err != nil {
			return err
		}
		if hasMode {
			c = c.Mode(mode)
		}
		return c.Exec()

	case TypeMove:
		return b.Move(s.Path, s.Target)

	case TypeSymlink:
		_, err := b.Symlink(s.Path, s.Target)
		return err

	case TypeChmod:
		if hasMode {
			return b.Chmod(s.Path, mode)
		}
		c, err := b.ChmodB(s.Path)
		if err != nil {
			return err
		}
		return c.Sym(s.Mode).Exec()

	case TypeRemove:
		return b.Remove(s.Path)

	case TypeRemoveAll:
		return b.RemoveAll(s.Path)
	}
	return fmt.Errorf("unknown step type %q", s.Type)
}

// Describe renders the step on one line.
func (s *Step) Describe() string {
	out := fmt.Sprintf("%s %s", s.Type, s.Path)
	if s.Target != "" {
		out += " -> " + s.Target
	}
	if s.Mode != "" {
		out += " (" + s.Mode + ")"
	}
	return out
}

func knownType(t StepType) bool {
	return slices.Contains(Types, t)
}
