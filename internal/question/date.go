package question

import (
	"encoding/json"
	"fmt"
	"time"

	"changepulse/readiness-backend/internal/assessment/shared"
)

const dateLayout = "2006-01-02"

type Date struct {
	question Question
}

func NewDate(q Question) Date {
	return Date{question: q}
}

func (d Date) Question() Question {
	return d.question
}

func (d Date) Validate(rawValue json.RawMessage) error {
	_, err := d.parse(rawValue)
	return err
}

func (d Date) parse(rawValue json.RawMessage) (time.Time, error) {
	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return time.Time{}, fmt.Errorf("invalid date value format: %w", err)
	}

	// Unparsable input is a validation error, not a silent fallback
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDateValue{
			QuestionID: d.question.ID.String(),
			RawValue:   value,
			Message:    "expected YYYY-MM-DD",
		}
	}

	return parsed, nil
}

func (d Date) DecodeRequest(rawValue json.RawMessage) (any, error) {
	parsed, err := d.parse(rawValue)
	if err != nil {
		return nil, err
	}

	return shared.DateAnswer{
		Year:  parsed.Year(),
		Month: int(parsed.Month()),
		Day:   parsed.Day(),
	}, nil
}

func (d Date) DecodeStorage(rawValue json.RawMessage) (any, error) {
	var answer shared.DateAnswer
	if err := json.Unmarshal(rawValue, &answer); err != nil {
		return nil, fmt.Errorf("invalid date answer in storage: %w", err)
	}

	return answer, nil
}

func (d Date) EncodeStorage(answer any) (json.RawMessage, error) {
	dateAnswer, ok := answer.(shared.DateAnswer)
	if !ok {
		return nil, fmt.Errorf("expected shared.DateAnswer, got %T", answer)
	}

	return json.Marshal(dateAnswer)
}

func (d Date) DisplayValue(rawValue json.RawMessage) (string, error) {
	answer, err := d.DecodeStorage(rawValue)
	if err != nil {
		return "", err
	}

	dateAnswer, ok := answer.(shared.DateAnswer)
	if !ok {
		return "", fmt.Errorf("expected shared.DateAnswer, got %T", answer)
	}

	return dateAnswer.String(), nil
}
