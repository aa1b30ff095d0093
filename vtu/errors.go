package vtu

import "fmt"

// StructuralError reports a malformed or unexpected document structure:
// missing or unterminated elements, misnested closing tags, unsupported
// file-level attributes, and similar defects that make the rest of the
// document unreadable.
type StructuralError struct {
	// Element is the name of the element being processed, when known.
	Element string
	Msg     string
	cause   error
}

// Error implements the error interface.
func (e *StructuralError) Error() string { return e.Msg }

// Unwrap returns the underlying cause, if any.
func (e *StructuralError) Unwrap() error { return e.cause }

func structuralf(element, format string, args ...any) *StructuralError {
	return &StructuralError{Element: element, Msg: fmt.Sprintf(format, args...)}
}

// DataArrayError reports an invalid DataArray element: bad header attributes,
// undecodable content, or a value count that contradicts the counts declared
// by the enclosing piece.
type DataArrayError struct {
	// Name is the Name attribute of the offending DataArray, when known.
	Name  string
	Msg   string
	cause error
}

// Error implements the error interface.
func (e *DataArrayError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("DataArray %q: %s", e.Name, e.Msg)
	}

	return fmt.Sprintf("DataArray element: %s", e.Msg)
}

// Unwrap returns the underlying cause, if any.
func (e *DataArrayError) Unwrap() error { return e.cause }

func dataArrayf(name, format string, args ...any) *DataArrayError {
	return &DataArrayError{Name: name, Msg: fmt.Sprintf(format, args...)}
}

// GrammarError reports invalid character data inside a DataArray: a malformed
// number, a missing separator between values, or trailing garbage.
type GrammarError struct {
	Msg   string
	cause error
}

// Error implements the error interface.
func (e *GrammarError) Error() string { return e.Msg }

// Unwrap returns the underlying cause, if any.
func (e *GrammarError) Unwrap() error { return e.cause }

func grammarf(format string, args ...any) *GrammarError {
	return &GrammarError{Msg: fmt.Sprintf(format, args...)}
}
