package command

import (
	"errors"
	"fmt"
)

// Kind classifies why a command failed. The zero value means no failure.
type Kind string

const (
	KindUnparseable   Kind = "unparseable"
	KindNoMatch       Kind = "no-match"
	KindTimeout       Kind = "timeout"
	KindUnknownIntent Kind = "unknown-intent"
	KindMissingField  Kind = "missing-field"
	KindInvalidAmount Kind = "invalid-amount"
	KindEmptyField    Kind = "empty-field"
	KindInvalidDate   Kind = "invalid-date"
	KindStoreFailure  Kind = "store-failure"
)

// NormalizationFailure is returned by a Normalizer that could not turn text
// into a candidate.
type NormalizationFailure struct {
	Kind  Kind
	Cause error
}

func (e *NormalizationFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("normalization failed (%s): %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("normalization failed (%s)", e.Kind)
}

func (e *NormalizationFailure) Unwrap() error { return e.Cause }

// Unparseable wraps cause as an unparseable normalization failure.
func Unparseable(cause error) error {
	return &NormalizationFailure{Kind: KindUnparseable, Cause: cause}
}

// NoMatch reports that no local rule recognized the text.
func NoMatch() error {
	return &NormalizationFailure{Kind: KindNoMatch}
}

// Timeout wraps cause as a timed-out normalization.
func Timeout(cause error) error {
	return &NormalizationFailure{Kind: KindTimeout, Cause: cause}
}

// ValidationError is returned by Validate for a malformed candidate.
type ValidationError struct {
	Kind  Kind
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed (%s): %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("validation failed (%s)", e.Kind)
}

// ExecutionError wraps an Entity Store failure.
type ExecutionError struct {
	Kind  Kind
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed (%s): %v", e.Kind, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

func storeFailure(op string, err error) error {
	return &ExecutionError{Kind: KindStoreFailure, Cause: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the Kind carried by err, or "" if err is not one of the
// command error types.
func KindOf(err error) Kind {
	var nf *NormalizationFailure
	if errors.As(err, &nf) {
		return nf.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

var fieldLabels = map[string]string{
	FieldName:        "Group name",
	FieldGroupName:   "Group name",
	FieldAmount:      "Amount",
	FieldDescription: "Description",
	FieldDate:        "Date",
	fieldCommand:     "Command",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// userMessage maps err to a short message safe to show to the end user.
func userMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		switch ve.Kind {
		case KindUnknownIntent:
			return "Unknown action. Please try again with a valid command."
		case KindMissingField:
			if ve.Field == fieldCommand {
				return "No command provided"
			}
			return fieldLabel(ve.Field) + " is required"
		case KindEmptyField:
			if ve.Field == fieldCommand {
				return "No command provided"
			}
			return fieldLabel(ve.Field) + " cannot be empty"
		case KindInvalidAmount:
			return "Amount must be a positive number"
		case KindInvalidDate:
			return "Date must be a valid calendar date (YYYY-MM-DD)"
		}
	}

	switch KindOf(err) {
	case KindTimeout:
		return "The assistant took too long to respond. Please try again."
	case KindUnparseable, KindNoMatch:
		return "Could not understand the command. Please try rephrasing."
	case KindStoreFailure:
		return "Could not save your changes. Please try again."
	}
	return "Something went wrong. Please try again."
}
