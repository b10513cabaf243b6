package question

import (
	"encoding/json"
	"fmt"

	"changepulse/readiness-backend/internal/assessment/shared"
)

const shortTextLimit = 200

type ShortText struct {
	question Question
}

func NewShortText(q Question) ShortText {
	return ShortText{question: q}
}

func (s ShortText) Question() Question {
	return s.question
}

func (s ShortText) Validate(rawValue json.RawMessage) error {
	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return fmt.Errorf("invalid short text value format: %w", err)
	}

	if len(value) > shortTextLimit {
		return ErrInvalidAnswerLength{
			Expected: shortTextLimit,
			Given:    len(value),
		}
	}

	return nil
}

func (s ShortText) DecodeRequest(rawValue json.RawMessage) (any, error) {
	if err := s.Validate(rawValue); err != nil {
		return nil, err
	}

	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return nil, fmt.Errorf("invalid short text value format: %w", err)
	}

	// Empty string is a real answer; "unanswered" is the absence of the key
	return shared.ShortTextAnswer{Value: value}, nil
}

func (s ShortText) DecodeStorage(rawValue json.RawMessage) (any, error) {
	var answer shared.ShortTextAnswer
	if err := json.Unmarshal(rawValue, &answer); err != nil {
		return nil, fmt.Errorf("invalid short text answer in storage: %w", err)
	}

	return answer, nil
}

func (s ShortText) EncodeStorage(answer any) (json.RawMessage, error) {
	shortTextAnswer, ok := answer.(shared.ShortTextAnswer)
	if !ok {
		return nil, fmt.Errorf("expected shared.ShortTextAnswer, got %T", answer)
	}

	return json.Marshal(shortTextAnswer)
}

func (s ShortText) DisplayValue(rawValue json.RawMessage) (string, error) {
	answer, err := s.DecodeStorage(rawValue)
	if err != nil {
		return "", err
	}

	shortTextAnswer, ok := answer.(shared.ShortTextAnswer)
	if !ok {
		return "", fmt.Errorf("expected shared.ShortTextAnswer, got %T", answer)
	}

	return shortTextAnswer.Value, nil
}

type LongText struct {
	question Question
}

func NewLongText(q Question) LongText {
	return LongText{question: q}
}

func (l LongText) Question() Question {
	return l.question
}

func (l LongText) Validate(rawValue json.RawMessage) error {
	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return fmt.Errorf("invalid long text value format: %w", err)
	}

	return nil
}

func (l LongText) DecodeRequest(rawValue json.RawMessage) (any, error) {
	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return nil, fmt.Errorf("invalid long text value format: %w", err)
	}

	return shared.LongTextAnswer{Value: value}, nil
}

func (l LongText) DecodeStorage(rawValue json.RawMessage) (any, error) {
	var answer shared.LongTextAnswer
	if err := json.Unmarshal(rawValue, &answer); err != nil {
		return nil, fmt.Errorf("invalid long text answer in storage: %w", err)
	}

	return answer, nil
}

func (l LongText) EncodeStorage(answer any) (json.RawMessage, error) {
	longTextAnswer, ok := answer.(shared.LongTextAnswer)
	if !ok {
		return nil, fmt.Errorf("expected shared.LongTextAnswer, got %T", answer)
	}

	return json.Marshal(longTextAnswer)
}

func (l LongText) DisplayValue(rawValue json.RawMessage) (string, error) {
	answer, err := l.DecodeStorage(rawValue)
	if err != nil {
		return "", err
	}

	longTextAnswer, ok := answer.(shared.LongTextAnswer)
	if !ok {
		return "", fmt.Errorf("expected shared.LongTextAnswer, got %T", answer)
	}

	value := longTextAnswer.Value
	// Keep results tables readable
	if len(value) > 100 {
		return value[:100] + "...", nil
	}
	return value, nil
}
