package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

// Operations run in five steps: validate, perform, verify, archive, respond.
// Board state is only touched in archive, after the backend's answer has been
// verified, so a failed or malformed backend response never reaches the
// listing.

// ExecutionStep names one of the five steps.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// stepFailures is the message each step's error carries.
var stepFailures = map[ExecutionStep]string{
	StepValidate: "preconditions not met",
	StepPerform:  "backend call failed",
	StepVerify:   "backend answer rejected",
	StepArchive:  "board update failed",
}

// ExecutionError records the step an operation stopped at.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
	}

	return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
}

// Unwrap exposes the cause, so domain.IsForbidden and friends see through
// the step.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// NewPerformError wraps a failed backend call.
func NewPerformError(message string, cause error) error {
	return &ExecutionError{Step: StepPerform, Message: message, Cause: cause}
}

// IsExecutionError reports whether err stopped an operation part way.
func IsExecutionError(err error) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr)
}

// GetExecutionStep returns the step err stopped at.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		return "", false
	}

	return execErr.Step, true
}

// Executor runs Operations. The request logger in ctx is preferred over the
// executor's own.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor returns an executor logging to logger, or slog.Default.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation is a use case split into its steps. Nil steps are skipped and
// pass the zero value on.
type Operation[I, P, V, O any] struct {
	Name string

	// Validate checks preconditions; nothing has happened yet.
	Validate func(ctx context.Context, input I) error

	// Perform calls the backend.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify checks Perform's result before anything is stored.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Archive applies the verified result to the board.
	Archive func(ctx context.Context, input I, verified V) error

	// Respond shapes the result for the caller. Its error is returned as-is.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs op's steps in order and stops at the first failure.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	_, err := runStep(ctx, logger, StepValidate, func() (struct{}, error) {
		if op.Validate == nil {
			return struct{}{}, nil
		}
		return struct{}{}, op.Validate(ctx, input)
	})
	if err != nil {
		return zero, err
	}

	performed, err := runStep(ctx, logger, StepPerform, func() (P, error) {
		if op.Perform == nil {
			var p P
			return p, nil
		}
		return op.Perform(ctx, input)
	})
	if err != nil {
		return zero, err
	}

	verified, err := runStep(ctx, logger, StepVerify, func() (V, error) {
		if op.Verify == nil {
			var v V
			return v, nil
		}
		return op.Verify(ctx, input, performed)
	})
	if err != nil {
		return zero, err
	}

	_, err = runStep(ctx, logger, StepArchive, func() (struct{}, error) {
		if op.Archive == nil {
			return struct{}{}, nil
		}
		return struct{}{}, op.Archive(ctx, input, verified)
	})
	if err != nil {
		return zero, err
	}

	result := zero
	if op.Respond != nil {
		result, err = op.Respond(ctx, input, verified)
		if err != nil {
			logger.WarnContext(ctx, "formatting result failed", slog.Any("error", err))
			return zero, err
		}
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// runStep runs fn and wraps its error with the step. A failed validation is
// the caller's problem and logs at warn; later steps log at error.
func runStep[T any](ctx context.Context, logger *slog.Logger, step ExecutionStep, fn func() (T, error)) (T, error) {
	logger.Log(ctx, logging.LevelTrace, "step started", slog.String("step", string(step)))

	out, err := fn()
	if err == nil {
		return out, nil
	}

	level := slog.LevelError
	if step == StepValidate {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "step failed", slog.String("step", string(step)), slog.Any("error", err))

	var zero T

	return zero, &ExecutionError{Step: step, Message: stepFailures[step], Cause: err}
}
