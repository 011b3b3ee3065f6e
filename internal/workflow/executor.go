package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/miradorstack/mirador-resolver/internal/models"
)

// ErrStepNotVerified is returned by the simulated executor: a simulated step
// cannot prove it fixed anything, so it never reports completion.
var ErrStepNotVerified = errors.New("remediation step could not be verified")

// Delayer suspends the caller for d or until ctx is done.
type Delayer interface {
	Delay(ctx context.Context, d time.Duration) error
}

// TimerDelayer is the wall-clock Delayer.
type TimerDelayer struct{}

// Delay implements Delayer.
func (TimerDelayer) Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StepExecutor performs one remediation step. A nil error marks the step
// completed; any other error marks it failed. Cancellation is signalled through ctx.
type StepExecutor interface {
	Execute(ctx context.Context, step models.RemediationStep) error
}

// SimulatedExecutor waits a fixed delay per step and reports ErrStepNotVerified.
type SimulatedExecutor struct {
	Delayer Delayer
	Delay   time.Duration
}

// Execute implements StepExecutor.
func (e SimulatedExecutor) Execute(ctx context.Context, _ models.RemediationStep) error {
	delayer := e.Delayer
	if delayer == nil {
		delayer = TimerDelayer{}
	}
	if err := delayer.Delay(ctx, e.Delay); err != nil {
		return err
	}
	return ErrStepNotVerified
}
