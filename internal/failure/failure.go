// Package failure defines the typed error value that crosses every
// component boundary in syncmend. A Failure always carries one of four
// kinds so callers can branch on what went wrong without string
// matching, and a human-readable message suitable for notification.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a Failure.
type Kind string

const (
	// Transport covers network errors and non-2xx daemon responses.
	Transport Kind = "transport"
	// Validation covers daemon response bodies that do not match the
	// resource schema.
	Validation Kind = "validation"
	// NotFound covers requested files or conflict groups that are absent.
	NotFound Kind = "not-found"
	// Filesystem covers delete/rename errors, including partial
	// resolution sequences.
	Filesystem Kind = "filesystem"
)

// Failure is a tagged error value. Components return it as an error;
// callers recover the kind with KindOf or errors.As.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}

	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// New creates a Failure with a formatted message.
func New(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a Failure wrapping an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Validationf creates a validation Failure from a list of schema issue
// messages. The issues are joined so no violation is lost.
func Validationf(context string, issues []string) *Failure {
	return &Failure{
		Kind:    Validation,
		Message: fmt.Sprintf("%s: %s", context, strings.Join(issues, "; ")),
	}
}

// KindOf returns the kind of err if it is (or wraps) a Failure, and ""
// otherwise.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}

	return ""
}

// Is reports whether err is a Failure of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
