package question

import (
	"encoding/json"
	"fmt"

	"changepulse/readiness-backend/internal/assessment/shared"
)

type Scale struct {
	question Question
}

func NewScale(q Question) Scale {
	return Scale{question: q}
}

func (s Scale) Question() Question {
	return s.question
}

func (s Scale) Validate(rawValue json.RawMessage) error {
	var value int
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return fmt.Errorf("invalid scale value format: %w", err)
	}

	if value < ScaleMin || value > ScaleMax {
		return ErrInvalidScaleValue{
			QuestionID: s.question.ID.String(),
			RawValue:   value,
			Message:    fmt.Sprintf("value must be between %d and %d", ScaleMin, ScaleMax),
		}
	}

	return nil
}

func (s Scale) DecodeRequest(rawValue json.RawMessage) (any, error) {
	var value int
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return nil, fmt.Errorf("invalid scale value format: %w", err)
	}

	// Out-of-range input is rejected, never clamped
	if value < ScaleMin || value > ScaleMax {
		return nil, ErrInvalidScaleValue{
			QuestionID: s.question.ID.String(),
			RawValue:   value,
			Message:    fmt.Sprintf("value %d is out of range [%d, %d]", value, ScaleMin, ScaleMax),
		}
	}

	return shared.ScaleAnswer{Value: value}, nil
}

func (s Scale) DecodeStorage(rawValue json.RawMessage) (any, error) {
	var answer shared.ScaleAnswer
	if err := json.Unmarshal(rawValue, &answer); err != nil {
		return nil, fmt.Errorf("invalid scale answer in storage: %w", err)
	}

	return answer, nil
}

func (s Scale) EncodeStorage(answer any) (json.RawMessage, error) {
	scaleAnswer, ok := answer.(shared.ScaleAnswer)
	if !ok {
		return nil, fmt.Errorf("expected shared.ScaleAnswer, got %T", answer)
	}

	return json.Marshal(scaleAnswer)
}

func (s Scale) DisplayValue(rawValue json.RawMessage) (string, error) {
	answer, err := s.DecodeStorage(rawValue)
	if err != nil {
		return "", err
	}

	scaleAnswer, ok := answer.(shared.ScaleAnswer)
	if !ok {
		return "", fmt.Errorf("expected shared.ScaleAnswer, got %T", answer)
	}

	return fmt.Sprintf("%d (%d-%d)", scaleAnswer.Value, ScaleMin, ScaleMax), nil
}
