package question

import (
	"fmt"

	"changepulse/readiness-backend/internal"
)

// ErrInvalidQuestion reports a malformed authoring payload, naming the
// offending field.
type ErrInvalidQuestion struct {
	Field   string
	Message string
}

func (e ErrInvalidQuestion) Error() string {
	return fmt.Sprintf("invalid question %s: %s", e.Field, e.Message)
}

func (e ErrInvalidQuestion) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrUnsupportedQuestionType struct {
	QuestionType string
}

func (e ErrUnsupportedQuestionType) Error() string {
	return fmt.Sprintf("unsupported question type: %s", e.QuestionType)
}

func (e ErrUnsupportedQuestionType) Unwrap() error {
	return internal.ErrInvalidRequestBody
}

type ErrInvalidScaleValue struct {
	QuestionID string
	RawValue   int
	Message    string
}

func (e ErrInvalidScaleValue) Error() string {
	return fmt.Sprintf("invalid scale value for question %s: %s, raw value: %d", e.QuestionID, e.Message, e.RawValue)
}

func (e ErrInvalidScaleValue) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrInvalidLikertLabel struct {
	QuestionID string
	RawValue   string
}

func (e ErrInvalidLikertLabel) Error() string {
	return fmt.Sprintf("label %q is not on the likert scale for question %s", e.RawValue, e.QuestionID)
}

func (e ErrInvalidLikertLabel) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrInvalidOption struct {
	QuestionID string
	Option     string
}

func (e ErrInvalidOption) Error() string {
	return fmt.Sprintf("option %q not found for question %s", e.Option, e.QuestionID)
}

func (e ErrInvalidOption) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrInvalidDateValue struct {
	QuestionID string
	RawValue   string
	Message    string
}

func (e ErrInvalidDateValue) Error() string {
	return fmt.Sprintf("invalid date for question %s: %s, raw value: %s", e.QuestionID, e.Message, e.RawValue)
}

func (e ErrInvalidDateValue) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrInvalidNumberValue struct {
	QuestionID string
	Message    string
}

func (e ErrInvalidNumberValue) Error() string {
	return fmt.Sprintf("invalid number for question %s: %s", e.QuestionID, e.Message)
}

func (e ErrInvalidNumberValue) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrInvalidAnswerLength struct {
	Expected int
	Given    int
}

func (e ErrInvalidAnswerLength) Error() string {
	return fmt.Sprintf("invalid answer length, expected %d, got %d", e.Expected, e.Given)
}

func (e ErrInvalidAnswerLength) Unwrap() error {
	return internal.ErrValidationFailed
}
