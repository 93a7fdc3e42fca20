// Package apperr is the error taxonomy shared by the generation pipeline and
// the HTTP layer. Every failure a caller can see carries a stable Kind and,
// once it has crossed the orchestrator, the pipeline Stage it came from.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of where it happened.
type Kind string

const (
	KindValidation              Kind = "ValidationError"
	KindNotFound                Kind = "NotFound"
	KindUnsupportedFormat       Kind = "UnsupportedFormat"
	KindEmptyContent            Kind = "EmptyContent"
	KindUpstream                Kind = "UpstreamError"
	KindUpstreamContextOverflow Kind = "UpstreamContextOverflow"
	KindUpstreamTimeout         Kind = "UpstreamTimeout"
	KindGenerationEmpty         Kind = "GenerationEmpty"
	KindCompilation             Kind = "CompilationError"
	KindWorkspace               Kind = "WorkspaceError"
	KindCompilationTimeout      Kind = "CompilationTimeout"
	KindStorage                 Kind = "StorageError"
	KindInternal                Kind = "InternalError"
)

// Stage names a step of the generation pipeline.
type Stage string

const (
	StageValidating        Stage = "validating"
	StageResolvingTemplate Stage = "resolving_template"
	StageExtractingText    Stage = "extracting_text"
	StageCustomizing       Stage = "customizing"
	StageCompiling         Stage = "compiling"
	StagePersisting        Stage = "persisting"
	StageDone              Stage = "done"
)

// Error is the concrete error type. Message is safe to show to end users;
// Detail carries tool diagnostics (compiler log tail) and Err the internal cause.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Stage, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind with a formatted user-facing message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Storage(err error, format string, args ...interface{}) *Error {
	return Wrap(KindStorage, err, format, args...)
}

// WithDetail returns e with diagnostic text attached.
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err; foreign errors are InternalError.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// StageOf returns the pipeline stage recorded on err, if any.
func StageOf(err error) Stage {
	if e, ok := As(err); ok {
		return e.Stage
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// WithStage tags err with stage. The innermost stage wins: an error that is
// already tagged keeps its original stage.
func WithStage(err error, stage Stage) error {
	if err == nil {
		return nil
	}
	e, ok := As(err)
	if !ok {
		return &Error{Kind: KindInternal, Stage: stage, Message: "internal error", Err: err}
	}
	if e.Stage != "" {
		return err
	}
	tagged := *e
	tagged.Stage = stage
	return &tagged
}
