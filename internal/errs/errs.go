package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Kind classifies an error for callers that must pick a response (HTTP status, exit code).
type Kind string

const (
	KindInternal   Kind = "internal"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	// KindConflict covers referential-integrity, uniqueness and version mismatches.
	KindConflict Kind = "conflict"
)

// KindError tags an error with a Kind and, optionally, the offending input field.
type KindError struct {
	kind  Kind
	field string
	err   error
}

func (e *KindError) Error() string { return e.err.Error() }
func (e *KindError) Unwrap() error { return e.err }
func (e *KindError) Kind() Kind    { return e.kind }
func (e *KindError) Field() string { return e.field }

func newKind(kind Kind, field string, err error) error {
	return &KindError{kind: kind, field: field, err: err}
}

func Validation(field string, msg string) error {
	return newKind(KindValidation, field, errors.New(msg))
}

func Validationf(field string, format string, args ...any) error {
	return newKind(KindValidation, field, fmt.Errorf(format, args...))
}

func NotFound(msg string) error {
	return newKind(KindNotFound, "", errors.New(msg))
}

func NotFoundf(format string, args ...any) error {
	return newKind(KindNotFound, "", fmt.Errorf(format, args...))
}

func Conflict(msg string) error {
	return newKind(KindConflict, "", errors.New(msg))
}

func Conflictf(format string, args ...any) error {
	return newKind(KindConflict, "", fmt.Errorf(format, args...))
}

// KindOf returns the outermost Kind found in the chain, or KindInternal.
func KindOf(err error) Kind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

// FieldOf returns the input field attached to a classified error, if any.
func FieldOf(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.field
	}
	return ""
}

// Message returns the classified error's own message without the wrapping context.
func Message(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Wrap adds context and preserves the error chain (errors.Is/As works).
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context and preserves the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	args = append(args, err)
	return fmt.Errorf(format+": %w", args...)
}

// WithStack captures a stack trace once, at the root cause boundary.
func WithStack(err error) error {
	if err == nil {
		return nil
	}

	var se *StackError
	if errors.As(err, &se) {
		return err
	}

	return &StackError{
		err:   err,
		stack: debug.Stack(),
	}
}

// StackError wraps an error and stores a stack trace.
type StackError struct {
	err   error
	stack []byte
}

func (e *StackError) Error() string { return e.err.Error() }
func (e *StackError) Unwrap() error { return e.err }
func (e *StackError) Stack() []byte { return e.stack }

// Usage: slog.Any("err", errs.Loggable(err))
type loggable struct{ err error }

func Loggable(err error) slog.LogValuer { return loggable{err: err} }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}

	attrs := []slog.Attr{
		slog.String("message", l.err.Error()),
		slog.String("kind", string(KindOf(l.err))),
		slog.Any("chain", ErrorChainStrings(l.err)),
	}

	var se *StackError
	if errors.As(l.err, &se) {
		attrs = append(attrs, slog.String("stack", string(se.Stack())))
	}

	return slog.GroupValue(attrs...)
}

// ErrorChainStrings returns the unwrap chain as strings (outer -> inner).
func ErrorChainStrings(err error) []string {
	if err == nil {
		return nil
	}

	out := make([]string, 0, 8)
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, e.Error())
	}
	return out
}
