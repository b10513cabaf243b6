package internal

import (
	"errors"
	"strings"

	"github.com/NYCU-SDC/summer/pkg/problem"
)

// ErrSubmissionRejected aggregates every per-question codec failure from a
// single submission so the respondent sees all problems in one round-trip.
type ErrSubmissionRejected struct {
	QuestionErrors []error
}

func (e ErrSubmissionRejected) Error() string {
	details := make([]string, len(e.QuestionErrors))
	for i, err := range e.QuestionErrors {
		details[i] = err.Error()
	}

	return "submission rejected: [" + strings.Join(details, "; ") + "]"
}

func (e ErrSubmissionRejected) Unwrap() error {
	return ErrValidationFailed
}

var (
	// Generic Errors
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUnauthorizedError   = errors.New("unauthorized error")
	ErrInternalServerError = errors.New("internal server error")
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequestBody  = errors.New("invalid request body")
	ErrNoUserInContext     = errors.New("no user found in request context")

	// Token Errors
	ErrMissingAuthHeader       = errors.New("missing access token")
	ErrInvalidAuthHeaderFormat = errors.New("invalid access token format")
	ErrInvalidAccessToken      = errors.New("invalid access token")

	// Template Errors
	ErrTemplateNotFound       = errors.New("assessment template not found")
	ErrTemplateNameEmpty      = errors.New("template name must not be empty")
	ErrTemplateHasNoQuestions = errors.New("template has no questions")

	// Question Errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrValidationFailed = errors.New("validation failed")

	// Assessment Errors
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrInvalidState       = errors.New("illegal assessment state transition")
	ErrRecipientsRequired = errors.New("at least one recipient user or group is required")
	ErrNotRecipient       = errors.New("user is not a recipient of this assessment")

	// Directory Errors
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")

	// Results Errors
	ErrAssessmentNotCompleted = errors.New("assessment is not completed")
)

func NewProblemWriter() *problem.HttpWriter {
	return problem.NewWithMapping(ErrorHandler)
}

func ErrorHandler(err error) problem.Problem {
	switch {
	// Generic Errors
	case errors.Is(err, ErrPermissionDenied):
		return problem.NewForbiddenProblem("permission denied")
	case errors.Is(err, ErrUnauthorizedError):
		return problem.NewUnauthorizedProblem("unauthorized error")
	case errors.Is(err, ErrInternalServerError):
		return problem.NewInternalServerProblem("internal server error")
	case errors.Is(err, ErrNotFound):
		return problem.NewNotFoundProblem("not found")
	case errors.Is(err, ErrInvalidRequestBody):
		return problem.NewBadRequestProblem("invalid request body")
	case errors.Is(err, ErrNoUserInContext):
		return problem.NewUnauthorizedProblem("no user found in request context")

	// Token Errors
	case errors.Is(err, ErrMissingAuthHeader):
		return problem.NewUnauthorizedProblem("missing access token")
	case errors.Is(err, ErrInvalidAuthHeaderFormat):
		return problem.NewUnauthorizedProblem("invalid access token format")
	case errors.Is(err, ErrInvalidAccessToken):
		return problem.NewUnauthorizedProblem("invalid access token")

	// Template Errors
	case errors.Is(err, ErrTemplateNotFound):
		return problem.NewNotFoundProblem("assessment template not found")
	case errors.Is(err, ErrTemplateNameEmpty):
		return problem.NewValidateProblem("template name must not be empty")
	case errors.Is(err, ErrTemplateHasNoQuestions):
		return problem.NewValidateProblem("template has no questions")

	// Question Errors
	case errors.Is(err, ErrQuestionNotFound):
		return problem.NewNotFoundProblem("question not found")

	// Assessment Errors
	case errors.Is(err, ErrAssessmentNotFound):
		return problem.NewNotFoundProblem("assessment not found")
	case errors.Is(err, ErrInvalidState):
		return problem.NewValidateProblem(err.Error())
	case errors.Is(err, ErrRecipientsRequired):
		return problem.NewValidateProblem("at least one recipient user or group is required")
	case errors.Is(err, ErrNotRecipient):
		return problem.NewForbiddenProblem("user is not a recipient of this assessment")

	// Directory Errors
	case errors.Is(err, ErrGroupNotFound):
		return problem.NewNotFoundProblem("group not found")
	case errors.Is(err, ErrUserNotFound):
		return problem.NewNotFoundProblem("user not found")

	// Results Errors
	case errors.Is(err, ErrAssessmentNotCompleted):
		return problem.NewValidateProblem("assessment is not completed")

	// Validation Errors (submission batches carry per-question detail)
	case errors.Is(err, ErrValidationFailed):
		return problem.NewValidateProblem(err.Error())
	}
	return problem.Problem{}
}
