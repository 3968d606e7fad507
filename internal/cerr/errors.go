// Package cerr provides standardized error handling for Calyx.
// All errors have stable, machine-readable codes, structured context, and proper wrapping.
package cerr

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: E{category}{number} where category is 1-6 and number is 001-999.
type Code string

// Error codes organized by category.
const (
	// Plan/resolution errors (E1xxx) - problems with plan structure and resolution
	ErrUnresolvedNode     Code = "E1001" // Derived property accessed on an unresolved node
	ErrSchemaMismatch     Code = "E1002" // Source output incompatible with target table schema
	ErrPartitionMissing   Code = "E1003" // Partition transform references a missing field path
	ErrUnknownField       Code = "E1004" // Field path not found in schema
	ErrDuplicateField     Code = "E1005" // Schema contains duplicate field names

	// Validation errors (E2xxx) - problems with user input validation
	ErrInvalidIdentifier Code = "E2001" // Identifier does not match allowed pattern
	ErrInvalidChange     Code = "E2002" // Table change is malformed or missing fields
	ErrInvalidType       Code = "E2003" // Data type is unknown or malformed
	ErrInvalidCommand    Code = "E2004" // Command is malformed or missing fields

	// Catalog errors (E3xxx) - problems reported by catalog implementations
	ErrTableNotFound     Code = "E3001" // Table does not exist in the catalog
	ErrTableExists       Code = "E3002" // Table already exists
	ErrNamespaceNotFound Code = "E3003" // Namespace does not exist
	ErrNamespaceExists   Code = "E3004" // Namespace already exists
	ErrNamespaceNotEmpty Code = "E3005" // Namespace still holds tables and cascade not set
	ErrChangeRejected    Code = "E3006" // Catalog rejected a table change

	// SQL errors (E4xxx) - problems with database operations
	ErrSQLExecution   Code = "E4001" // SQL statement failed to execute
	ErrSQLConnection  Code = "E4002" // Database connection failed
	ErrSQLTransaction Code = "E4003" // Transaction operation failed

	// Plan file errors (E5xxx) - problems loading plan documents
	ErrPlanFileParse   Code = "E5001" // Plan file is malformed YAML
	ErrPlanFileInvalid Code = "E5002" // Plan file entry is invalid

	// Dialect errors (E6xxx) - problems rendering changes to SQL
	ErrUnsupportedChange  Code = "E6001" // Change cannot be expressed in the target dialect
	ErrUnsupportedDialect Code = "E6002" // Dialect not supported for operation

	// Internal errors (E9xxx) - unexpected internal errors
	EInternalError Code = "E9001" // Internal error
)

// Error is the standard error type for Calyx.
// It provides structured error information with codes, context, and wrapping support.
type Error struct {
	code    Code           // Machine-readable error code
	message string         // Human-readable error message
	context map[string]any // Structured context data
	cause   error          // Wrapped underlying error
	stack   string         // Stack trace for debugging
}

// Error returns the formatted error string.
// Format:
//
//	[E1002] cannot write nullable column into non-null column
//	  column: user_id
//	  table: events
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.code, e.message))

	// Write context in sorted order for deterministic output
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n  %s: %v", k, e.context[k]))
		}
	}

	if e.cause != nil {
		b.WriteString(fmt.Sprintf("\n  cause: %v", e.cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error for errors.Unwrap compatibility.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether the target error matches this error.
// It matches if target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.code == targetErr.code
	}

	return false
}

// GetCode returns the error code.
func (e *Error) GetCode() Code {
	return e.code
}

// GetMessage returns the error message.
func (e *Error) GetMessage() string {
	return e.message
}

// GetContext returns the error context map.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// GetCause returns the underlying cause error.
func (e *Error) GetCause() error {
	return e.cause
}

// GetStack returns the stack trace.
func (e *Error) GetStack() string {
	return e.stack
}

// With adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithTable adds table context to the error.
// Format: "namespace.table" or just "table" if namespace is empty.
func (e *Error) WithTable(ns, table string) *Error {
	if ns != "" {
		return e.With("table", ns+"."+table)
	}
	return e.With("table", table)
}

// WithColumn adds column context to the error.
func (e *Error) WithColumn(name string) *Error {
	return e.With("column", name)
}

// WithPath adds a nested field path to the error context.
// Paths are joined with "." for display only; the path itself stays a sequence.
func (e *Error) WithPath(path []string) *Error {
	return e.With("path", strings.Join(path, "."))
}

// WithSQL adds SQL statement context to the error.
func (e *Error) WithSQL(sql string) *Error {
	return e.With("sql", sql)
}

// WithFile adds file location context to the error.
func (e *Error) WithFile(path string, line int) *Error {
	e.With("file", path)
	if line > 0 {
		e.With("line", line)
	}
	return e
}

// captureStack captures a stack trace for debugging.
func captureStack(skip int) string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		// Skip runtime internals
		if strings.Contains(frame.File, "runtime/") {
			if !more {
				break
			}
			continue
		}
		b.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		code:    code,
		message: fmt.Sprintf(format, args...),
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(code Code, err error, msg string) *Error {
	if err == nil {
		return New(code, msg)
	}
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		cause:   err,
		stack:   captureStack(3),
	}
}

// Wrapf creates a new Error that wraps an existing error with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// GetErrorCode extracts the error code from an error chain.
// Returns empty string if no code is found.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}

	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.code
	}

	return ""
}

// Is checks if an error has the specified code.
func Is(err error, code Code) bool {
	return GetErrorCode(err) == code
}

// HasCode checks if an error has any error code.
func HasCode(err error) bool {
	return GetErrorCode(err) != ""
}

// WrapSQL creates an ErrSQLExecution error with table context.
// Use for wrapping SQL errors with consistent formatting.
func WrapSQL(err error, op string, table string) *Error {
	e := Wrap(ErrSQLExecution, err, "failed to "+op)
	if table != "" {
		e.WithTable("", table)
	}
	return e
}
