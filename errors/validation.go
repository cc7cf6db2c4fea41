package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a class of schema folding failure.
// Codes satisfy the error interface so they can be used as errors.Is targets.
type ErrorCode string

const (
	// ErrXMLParse indicates the schema document is not well-formed markup.
	ErrXMLParse ErrorCode = "xml-parse-error"
	// ErrSchemaRoot indicates the document root is not a schema element.
	ErrSchemaRoot ErrorCode = "schema-root"
	// ErrMissingAttribute indicates an identifying attribute is absent and cannot be inferred.
	ErrMissingAttribute ErrorCode = "missing-attribute"
	// ErrInvalidAttribute indicates an attribute value could not be interpreted.
	ErrInvalidAttribute ErrorCode = "invalid-attribute"
	// ErrDuplicateDefinition indicates a type or element was declared twice and cannot be merged.
	ErrDuplicateDefinition ErrorCode = "duplicate-definition"

	// ErrUnresolvedType indicates a base chain or reference does not reach a primitive.
	ErrUnresolvedType ErrorCode = "unresolved-type"
	// ErrTypeCycle indicates a base-type chain loops back on itself.
	ErrTypeCycle ErrorCode = "type-cycle"
	// ErrGroupCycle indicates a model group contains itself.
	ErrGroupCycle ErrorCode = "group-cycle"

	// ErrUnknownVersion indicates a release identifier absent from the ordered release list.
	ErrUnknownVersion ErrorCode = "unknown-version"
	// ErrDuplicateRelease indicates two documents map to the same release identifier.
	ErrDuplicateRelease ErrorCode = "duplicate-release"
	// ErrInvalidRelease indicates a release identifier or file name could not be parsed.
	ErrInvalidRelease ErrorCode = "invalid-release"
	// ErrStageOrder indicates a pipeline stage ran out of order.
	ErrStageOrder ErrorCode = "stage-order"
	// ErrInvariant indicates the version differ produced an inconsistent history.
	ErrInvariant ErrorCode = "differ-invariant"
)

// Error returns the code itself.
func (c ErrorCode) Error() string {
	return string(c)
}

// Validation describes one offending reference found by schema validation.
//
//nolint:errname // public API name kept from the validation report shape.
type Validation struct {
	Code    string
	Message string
	Path    string
	Actual  string
	Release string
}

// ValidationList is an error that wraps one or more validation errors.
type ValidationList []Validation //nolint:errname // public API name, keep for compatibility.

// Error returns a compact summary of the validation errors.
func (v ValidationList) Error() string {
	switch len(v) {
	case 0:
		return "no validation errors"
	case 1:
		return v[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", v[0].Error(), len(v)-1)
	}
}

// Is reports whether any entry in the list carries the target code.
func (v ValidationList) Is(target error) bool {
	code, ok := target.(ErrorCode)
	if !ok {
		return false
	}
	for i := range v {
		if v[i].Code == string(code) {
			return true
		}
	}
	return false
}

// Error formats the validation for display, including code, message, and context.
func (v *Validation) Error() string {
	if v == nil {
		return "validation <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", v.Code, v.Message))
	if v.Path != "" {
		b.WriteString(fmt.Sprintf(" at %s", v.Path))
	}
	if v.Release != "" {
		b.WriteString(fmt.Sprintf(" (release %s)", v.Release))
	}
	if v.Actual != "" {
		b.WriteString(fmt.Sprintf(" (actual: %s)", v.Actual))
	}
	return b.String()
}

// NewValidation builds a Validation with a code, message, and optional path.
func NewValidation(code ErrorCode, msg, path string) Validation {
	return Validation{Code: string(code), Message: msg, Path: path}
}

// NewValidationf formats a message and builds a Validation.
func NewValidationf(code ErrorCode, path, format string, args ...any) Validation {
	return NewValidation(code, fmt.Sprintf(format, args...), path)
}

// AsValidations extracts validation errors from an error returned by validation helpers.
func AsValidations(err error) ([]Validation, bool) {
	list, ok := asValidationList(err)
	if !ok {
		return nil, false
	}
	return []Validation(list), true
}

func asValidationList(err error) (ValidationList, bool) {
	if err == nil {
		return nil, false
	}
	var list ValidationList
	if errors.As(err, &list) {
		return list, true
	}

	var listPtr *ValidationList
	if errors.As(err, &listPtr) && listPtr != nil {
		return *listPtr, true
	}

	return nil, false
}
