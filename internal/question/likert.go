package question

import (
	"encoding/json"
	"fmt"
	"slices"

	"changepulse/readiness-backend/internal/assessment/shared"
)

// Likert is the fixed 5-point agreement scale. The option set is canonical
// and independent of whatever the author supplied.
type Likert struct {
	question Question
}

func NewLikert(q Question) Likert {
	return Likert{question: q}
}

func (l Likert) Question() Question {
	return l.question
}

func (l Likert) Validate(rawValue json.RawMessage) error {
	var label string
	if err := json.Unmarshal(rawValue, &label); err != nil {
		return fmt.Errorf("invalid likert value format: %w", err)
	}

	if !slices.Contains(CanonicalLikertOptions, label) {
		return ErrInvalidLikertLabel{
			QuestionID: l.question.ID.String(),
			RawValue:   label,
		}
	}

	return nil
}

func (l Likert) DecodeRequest(rawValue json.RawMessage) (any, error) {
	var label string
	if err := json.Unmarshal(rawValue, &label); err != nil {
		return nil, fmt.Errorf("invalid likert value format: %w", err)
	}

	if !slices.Contains(CanonicalLikertOptions, label) {
		return nil, ErrInvalidLikertLabel{
			QuestionID: l.question.ID.String(),
			RawValue:   label,
		}
	}

	return shared.LikertAnswer{Label: label}, nil
}

func (l Likert) DecodeStorage(rawValue json.RawMessage) (any, error) {
	var answer shared.LikertAnswer
	if err := json.Unmarshal(rawValue, &answer); err != nil {
		return nil, fmt.Errorf("invalid likert answer in storage: %w", err)
	}

	return answer, nil
}

func (l Likert) EncodeStorage(answer any) (json.RawMessage, error) {
	likertAnswer, ok := answer.(shared.LikertAnswer)
	if !ok {
		return nil, fmt.Errorf("expected shared.LikertAnswer, got %T", answer)
	}

	return json.Marshal(likertAnswer)
}

func (l Likert) DisplayValue(rawValue json.RawMessage) (string, error) {
	answer, err := l.DecodeStorage(rawValue)
	if err != nil {
		return "", err
	}

	likertAnswer, ok := answer.(shared.LikertAnswer)
	if !ok {
		return "", fmt.Errorf("expected shared.LikertAnswer, got %T", answer)
	}

	return likertAnswer.Label, nil
}
