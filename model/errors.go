package model

import (
	"errors"
	"fmt"
)

// Code classifies a domain Error. Codes are dotted, like the error codes
// logged by the HTTP layer.
type Code string

const (
	CodeMalformedDocument Code = "campaign.malformed_document"
	CodeMissingField      Code = "campaign.missing_field"
	CodeDuplicateField    Code = "campaign.duplicate_field"
	CodeInvalidValue      Code = "campaign.invalid_value"
	CodeInvalidID         Code = "campaign.invalid_id"
	CodeInvalidURL        Code = "campaign.invalid_url"
	CodeTooLong           Code = "campaign.too_long"
	CodeUnknownEnum       Code = "campaign.unknown_enum"
	CodeInvalidRole       Code = "campaign.invalid_role"

	CodeDuplicateSurvey   Code = "survey.duplicate_id"
	CodeDuplicateItem     Code = "survey.duplicate_item_id"
	CodeNestedRepeatable  Code = "survey.nested_repeatable_set"
	CodeEmptyContent      Code = "survey.empty_content"
	CodeUnknownItemType   Code = "survey.unknown_item_type"
	CodeMissingProperty   Code = "prompt.missing_property"
	CodeDuplicateProperty Code = "prompt.duplicate_property"
	CodePropertyNotNumber Code = "prompt.property_not_numeric"
	CodeInvalidProperty   Code = "prompt.invalid_property"
	CodeDefaultNotAllowed Code = "prompt.default_not_allowed"
	CodeInvalidDefault    Code = "prompt.invalid_default"

	CodeConditionSyntax    Code = "condition.syntax"
	CodeConditionReference Code = "condition.reference"
	CodeConditionValue     Code = "condition.illegal_value"

	CodeResponseShape      Code = "response.shape"
	CodeResponseUnknownID  Code = "response.unknown_id"
	CodeResponseWrongKind  Code = "response.wrong_kind"
	CodeResponseType       Code = "response.type_mismatch"
	CodeResponseIncomplete Code = "response.incomplete"
	CodeResponseSkipped    Code = "response.not_skippable"
)

// Error is the single error type raised by the domain layer. Every
// validation failure carries a human readable message, a Code when the
// failure is classified, and the underlying cause when there is one.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, so errors.Is(err, &model.Error{Code: c})
// works without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code && t.Message == ""
}

// Errorf builds a domain error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a domain error around a cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// AsError unwraps err looking for a domain error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasCode reports whether err is a domain error with the given code.
func HasCode(err error, code Code) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}
