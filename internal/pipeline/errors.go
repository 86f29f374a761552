package pipeline

import (
	"errors"
	"fmt"

	"github.com/amankumarsingh77/slidecast/internal/models"
)

// ErrCancelled ends a run at a checkpoint. It is a terminal outcome, not a
// failure, and carries no message for the job record.
var ErrCancelled = errors.New("export cancelled")

type ErrorKind string

const (
	KindDependencyMissing ErrorKind = "dependency_missing"
	KindEmptyInput        ErrorKind = "empty_input"
	KindRenderFailure     ErrorKind = "render_failure"
	KindSynthesisFailure  ErrorKind = "synthesis_failure"
	KindEncodeFailure     ErrorKind = "encode_failure"
)

// StageError is a failure tied to the stage (and slide, when >= 0) where it
// happened. Its text is what the job record shows.
type StageError struct {
	Phase   models.ExportPhase
	Kind    ErrorKind
	Slide   int
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.Phase, e.Message)
	if e.Slide >= 0 {
		msg = fmt.Sprintf("%s: slide %d: %s", e.Phase, e.Slide, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func stageError(phase models.ExportPhase, kind ErrorKind, slide int, message string, err error) *StageError {
	return &StageError{Phase: phase, Kind: kind, Slide: slide, Message: message, Err: err}
}

// KindOf reports the kind of a pipeline error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind
	}
	return ""
}
