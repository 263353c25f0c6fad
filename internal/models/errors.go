package models

import "fmt"

// ErrorType represents different categories of generation errors
type ErrorType int

const (
	// ErrInput covers violations of the input contract: missing payload
	// directory, no packages, mismatched or malformed source rpm references,
	// row-count mismatches in correlated metadata arrays.
	ErrInput ErrorType = iota
	// ErrUnknownValue covers values outside the known taxonomies, such as an
	// unrecognized payload compressor or trigger sense code.
	ErrUnknownValue
	// ErrQuery covers failures of the metadata provider.
	ErrQuery
	// ErrFileOp covers filesystem and side-file I/O failures.
	ErrFileOp
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrInput:
		return "Input"
	case ErrUnknownValue:
		return "UnknownValue"
	case ErrQuery:
		return "Query"
	case ErrFileOp:
		return "FileOp"
	default:
		return "Unknown"
	}
}

// GenError represents an error during specfile generation
type GenError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *GenError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *GenError) Unwrap() error {
	return e.Err
}

// Errorf builds a GenError of the given type for one package; pkg may be
// empty for set-level failures.
func Errorf(typ ErrorType, pkg string, format string, args ...interface{}) *GenError {
	return &GenError{Type: typ, Package: pkg, Err: fmt.Errorf(format, args...)}
}
