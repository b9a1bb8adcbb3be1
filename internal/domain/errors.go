package domain

import (
	"strings"
)

// ErrorTag prefixes every compilation failure reported to the host.
const ErrorTag = "[vuec]"

// Kind categorizes pipeline failures.
type Kind string

const (
	// KindInit means the compiler artifact could not be located or activated.
	KindInit Kind = "init"
	// KindCompile means the compiler ran and reported problems in the source.
	KindCompile Kind = "compile"
)

var (
	// ErrInit matches any initialization error with errors.Is.
	ErrInit = &Error{Kind: KindInit}
	// ErrCompile matches any compilation error with errors.Is.
	ErrCompile = &Error{Kind: KindCompile}
)

// Error is the structured error type of the pipeline.
type Error struct {
	Cause    error
	Kind     Kind
	Filename string
	Location string
	Errors   []string
}

// Error implements the error interface.
//
// Compilation errors render as the tag followed by every compiler error on
// its own line so the host shows one aggregated message.
func (e *Error) Error() string {
	var b strings.Builder

	switch e.Kind {
	case KindCompile:
		b.WriteString(ErrorTag)
		b.WriteByte(' ')
		b.WriteString(strings.Join(e.Errors, "\n"))
	case KindInit:
		b.WriteString(ErrorTag)
		b.WriteString(" failed to load compiler")

		if e.Location != "" {
			b.WriteString(" at ")
			b.WriteString(e.Location)
		}

		if e.Cause != nil {
			b.WriteString(": ")
			b.WriteString(e.Cause.Error())
		}
	default:
		b.WriteString(ErrorTag)
		b.WriteByte(' ')
		b.WriteString(string(e.Kind))

		if e.Filename != "" {
			b.WriteString(" ")
			b.WriteString(e.Filename)
		}

		if e.Cause != nil {
			b.WriteString(": ")
			b.WriteString(e.Cause.Error())
		}
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}

	return false
}

// InitError creates an initialization error naming the artifact location.
func InitError(location string, cause error) *Error {
	return &Error{
		Kind:     KindInit,
		Location: location,
		Cause:    cause,
	}
}

// CompileError aggregates the compiler errors reported for filename.
func CompileError(filename string, errs []string) *Error {
	return &Error{
		Kind:     KindCompile,
		Filename: filename,
		Errors:   append([]string(nil), errs...),
	}
}
