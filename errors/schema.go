package errors

import (
	"errors"
	"fmt"
)

// ParseError reports a fatal problem reading one schema document.
type ParseError struct {
	Err     error
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, if any.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches the error code.
func (e *ParseError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// NewXMLParseError wraps a markup error.
func NewXMLParseError(err error) *ParseError {
	return &ParseError{Code: ErrXMLParse, Message: "parse XML", Err: err}
}

// NewMissingAttributeError reports that tag has no attr and no inference rule applies.
func NewMissingAttributeError(tag, attr string) *ParseError {
	return &ParseError{
		Code:    ErrMissingAttribute,
		Message: fmt.Sprintf("<%s> requires attribute %q", tag, attr),
	}
}

// NewInvalidAttributeError reports an attribute value that could not be interpreted.
func NewInvalidAttributeError(tag, attr, value string, err error) *ParseError {
	return &ParseError{
		Code:    ErrInvalidAttribute,
		Message: fmt.Sprintf("<%s> attribute %s=%q", tag, attr, value),
		Err:     err,
	}
}

// DuplicateDefinitionError reports a name declared twice in one document.
type DuplicateDefinitionError struct {
	Kind     string
	Name     string
	Existing string
	Incoming string
}

// Error implements the error interface.
func (e *DuplicateDefinitionError) Error() string {
	if e.Existing != "" && e.Incoming != "" && e.Existing != e.Incoming {
		return fmt.Sprintf("[%s] %s %q already defined as %s, cannot merge %s",
			ErrDuplicateDefinition, e.Kind, e.Name, e.Existing, e.Incoming)
	}
	return fmt.Sprintf("[%s] %s %q already defined", ErrDuplicateDefinition, e.Kind, e.Name)
}

// Is matches ErrDuplicateDefinition.
func (e *DuplicateDefinitionError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == ErrDuplicateDefinition
}

// CodeOf returns the first ErrorCode found in err's chain, or "" when none.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Code
	}
	var dup *DuplicateDefinitionError
	if errors.As(err, &dup) {
		return ErrDuplicateDefinition
	}
	if list, ok := asValidationList(err); ok && len(list) > 0 {
		return ErrorCode(list[0].Code)
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ""
}
