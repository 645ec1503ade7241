package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/vfs/pkg/vfs"
	"github.com/arthur-debert/vfs/pkg/vfs/backend"
)

// Status is the outcome of one step.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
)

// StepResult records how a step went.
type StepResult struct {
	Step     Step
	Status   Status
	Error    error
	Duration time.Duration
}

// Result is the outcome of running a plan.
type Result struct {
	Success  bool
	Steps    []StepResult
	Duration time.Duration
	Errors   []error
}

// Execute resolves p and runs its steps against b in order. It stops at the first failing
// step and marks the rest skipped. Cancellation of ctx is checked before each step.
// The returned error is non-nil only when the plan could not be resolved.
func Execute(ctx context.Context, p *Plan, b backend.VirtualFileSystem) (*Result, error) {
	steps, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	log := vfs.Logger()

	start := time.Now()
	result := &Result{
		Success: true,
		Steps:   make([]StepResult, 0, len(steps)),
	}
	log.Info().
		Int("steps", len(steps)).
		Str("backend", b.Kind().String()).
		Msg("executing plan")

	for _, s := range steps {
		if !result.Success {
			result.Steps = append(result.Steps, StepResult{Step: s, Status: StatusSkipped})
			continue
		}
		if err := ctx.Err(); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, err)
			result.Steps = append(result.Steps, StepResult{Step: s, Status: StatusSkipped})
			continue
		}

		stepStart := time.Now()
		err := s.Execute(b)
		sr := StepResult{Step: s, Status: StatusSuccess, Duration: time.Since(stepStart)}
		if err != nil {
			sr.Status = StatusFailure
			sr.Error = err
			result.Success = false
			result.Errors = append(result.Errors, fmt.Errorf("step %s (%s): %w", s.ID, s.Describe(), err))
			log.Info().
				Str("id", string(s.ID)).
				Err(err).
				Msg("step failed")
		} else {
			log.Debug().
				Str("id", string(s.ID)).
				Str("step", s.Describe()).
				Dur("duration", sr.Duration).
				Msg("step done")
		}
		result.Steps = append(result.Steps, sr)
	}

	result.Duration = time.Since(start)
	log.Info().
		Bool("success", result.Success).
		Dur("duration", result.Duration).
		Msg("plan finished")
	return result, nil
}
