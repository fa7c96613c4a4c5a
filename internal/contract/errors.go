package contract

import (
	"errors"
	"fmt"

	"github.com/huangsam/repometrics/schema"
)

// ErrorKind classifies why a repository or a run failed.
type ErrorKind string

// All error kinds.
const (
	TransportKind ErrorKind = "transport" // network failure or non-success status
	ShapeKind     ErrorKind = "shape"     // response missing fields or of the wrong type
	ToolKind      ErrorKind = "tool"      // line counter failed or emitted malformed output
	InputKind     ErrorKind = "input"     // input list missing or malformed, fatal for the run
	UnknownKind   ErrorKind = "unknown"
)

// CollectError is a classified failure from one metric source.
type CollectError struct {
	Kind       ErrorKind
	Source     string // Endpoint, URL, file or binary that failed
	StatusCode int    // HTTP status when known
	Message    string
	Err        error
}

func (e *CollectError) Error() string {
	msg := fmt.Sprintf("%s error", e.Kind)
	if e.Source != "" {
		msg += fmt.Sprintf(" from %s", e.Source)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *CollectError) Unwrap() error {
	return e.Err
}

// NewTransportError creates an error for a failed request or non-success status.
func NewTransportError(source string, statusCode int, err error) error {
	return &CollectError{Kind: TransportKind, Source: source, StatusCode: statusCode, Err: err}
}

// NewShapeError creates an error for a response that does not have the expected shape.
func NewShapeError(source, message string, err error) error {
	return &CollectError{Kind: ShapeKind, Source: source, Message: message, Err: err}
}

// NewToolError creates an error for a failed line counter invocation.
func NewToolError(source, message string, err error) error {
	return &CollectError{Kind: ToolKind, Source: source, Message: message, Err: err}
}

// NewInputError creates an error for an unusable input list.
func NewInputError(source, message string, err error) error {
	return &CollectError{Kind: InputKind, Source: source, Message: message, Err: err}
}

// KindOf returns the kind of the first CollectError in the chain.
func KindOf(err error) ErrorKind {
	var ce *CollectError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return UnknownKind
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// RepoError attributes a failure to a repository and the stage that produced it.
type RepoError struct {
	Ref   schema.RepositoryRef
	Stage string
	Err   error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("%s: %s stage failed: %v", e.Ref, e.Stage, e.Err)
}

func (e *RepoError) Unwrap() error {
	return e.Err
}
