package dbinfo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines extraction and export error kinds.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConnection    ErrorKind = "connection"
	KindIntrospection ErrorKind = "introspection"
	KindQuery         ErrorKind = "query"
	KindWrite         ErrorKind = "export_write"
	KindTimeout       ErrorKind = "timeout"
	KindCanceled      ErrorKind = "canceled"
	KindInternal      ErrorKind = "internal"
	KindNotImpl       ErrorKind = "not_implemented"
)

// Error wraps errors with a kind.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new error of the given kind.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindFromError(err) == kind
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()

	var dbErr *Error
	if errors.As(err, &dbErr) && dbErr.Msg != "" {
		msg = dbErr.Msg
	}

	switch kind {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindConnection:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("connection")
	case KindIntrospection:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("introspection")
	case KindQuery:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("query")
	case KindWrite:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("export_write")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case KindNotImpl:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("not_implemented")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Kind
	}

	return KindInternal
}

// Stage identifies the pipeline step a failure happened in.
type Stage string

const (
	StageIntrospect Stage = "introspect"
	StageQuery      Stage = "query"
	StageExport     Stage = "export"
)

// Failure records a single table that was skipped.
type Failure struct {
	Database string
	Table    string
	Stage    Stage
	Err      error
}

func (f Failure) Error() string {
	target := f.Database
	if f.Table != "" {
		target += "." + f.Table
	}
	if f.Err == nil {
		return fmt.Sprintf("%s %s failed", f.Stage, target)
	}
	return fmt.Sprintf("%s %s: %v", f.Stage, target, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Failures is an ordered list of skipped entities.
type Failures []Failure

// Tables returns the skipped table names in order.
func (fs Failures) Tables() []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Table)
	}
	return out
}

// Err joins all failures, or returns nil when there are none.
func (fs Failures) Err() error {
	if len(fs) == 0 {
		return nil
	}
	errs := make([]error, len(fs))
	for i, f := range fs {
		errs[i] = f
	}
	return errors.Join(errs...)
}

func (fs Failures) String() string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.Error()
	}
	return strings.Join(parts, "; ")
}
