package question

import (
	"encoding/json"
	"fmt"
	"strconv"

	"changepulse/readiness-backend/internal/assessment/shared"
)

type Number struct {
	question Question
}

func NewNumber(q Question) Number {
	return Number{question: q}
}

func (n Number) Question() Question {
	return n.question
}

func (n Number) Validate(rawValue json.RawMessage) error {
	var value float64
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return ErrInvalidNumberValue{
			QuestionID: n.question.ID.String(),
			Message:    "value is not numeric",
		}
	}

	return nil
}

func (n Number) DecodeRequest(rawValue json.RawMessage) (any, error) {
	var value float64
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return nil, ErrInvalidNumberValue{
			QuestionID: n.question.ID.String(),
			Message:    "value is not numeric",
		}
	}

	return shared.NumberAnswer{Value: value}, nil
}

func (n Number) DecodeStorage(rawValue json.RawMessage) (any, error) {
	var answer shared.NumberAnswer
	if err := json.Unmarshal(rawValue, &answer); err != nil {
		return nil, fmt.Errorf("invalid number answer in storage: %w", err)
	}

	return answer, nil
}

func (n Number) EncodeStorage(answer any) (json.RawMessage, error) {
	numberAnswer, ok := answer.(shared.NumberAnswer)
	if !ok {
		return nil, fmt.Errorf("expected shared.NumberAnswer, got %T", answer)
	}

	return json.Marshal(numberAnswer)
}

func (n Number) DisplayValue(rawValue json.RawMessage) (string, error) {
	answer, err := n.DecodeStorage(rawValue)
	if err != nil {
		return "", err
	}

	numberAnswer, ok := answer.(shared.NumberAnswer)
	if !ok {
		return "", fmt.Errorf("expected shared.NumberAnswer, got %T", answer)
	}

	return strconv.FormatFloat(numberAnswer.Value, 'f', -1, 64), nil
}
