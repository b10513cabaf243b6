package question

import (
	"encoding/json"
	"fmt"
	"slices"

	"changepulse/readiness-backend/internal/assessment/shared"
)

type SingleSelect struct {
	question Question
}

func NewSingleSelect(q Question) SingleSelect {
	return SingleSelect{question: q}
}

func (s SingleSelect) Question() Question {
	return s.question
}

func (s SingleSelect) Validate(rawValue json.RawMessage) error {
	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return fmt.Errorf("invalid single select value format: %w", err)
	}

	if !slices.Contains(s.question.Options, value) {
		return ErrInvalidOption{
			QuestionID: s.question.ID.String(),
			Option:     value,
		}
	}

	return nil
}

func (s SingleSelect) DecodeRequest(rawValue json.RawMessage) (any, error) {
	var value string
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return nil, fmt.Errorf("invalid single select value format: %w", err)
	}

	if !slices.Contains(s.question.Options, value) {
		return nil, ErrInvalidOption{
			QuestionID: s.question.ID.String(),
			Option:     value,
		}
	}

	return shared.SingleSelectAnswer{Value: value}, nil
}

func (s SingleSelect) DecodeStorage(rawValue json.RawMessage) (any, error) {
	var answer shared.SingleSelectAnswer
	if err := json.Unmarshal(rawValue, &answer); err != nil {
		return nil, fmt.Errorf("invalid single select answer in storage: %w", err)
	}

	return answer, nil
}

func (s SingleSelect) EncodeStorage(answer any) (json.RawMessage, error) {
	singleSelectAnswer, ok := answer.(shared.SingleSelectAnswer)
	if !ok {
		return nil, fmt.Errorf("expected shared.SingleSelectAnswer, got %T", answer)
	}

	return json.Marshal(singleSelectAnswer)
}

func (s SingleSelect) DisplayValue(rawValue json.RawMessage) (string, error) {
	answer, err := s.DecodeStorage(rawValue)
	if err != nil {
		return "", err
	}

	singleSelectAnswer, ok := answer.(shared.SingleSelectAnswer)
	if !ok {
		return "", fmt.Errorf("expected shared.SingleSelectAnswer, got %T", answer)
	}

	return singleSelectAnswer.Value, nil
}

type MultiSelect struct {
	question Question
}

func NewMultiSelect(q Question) MultiSelect {
	return MultiSelect{question: q}
}

func (m MultiSelect) Question() Question {
	return m.question
}

func (m MultiSelect) Validate(rawValue json.RawMessage) error {
	var value shared.MultiSelectAnswer
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return fmt.Errorf("invalid multi select value format: %w", err)
	}

	// Other is free text and exempt from the containment rule
	for _, selected := range value.Selected {
		if !slices.Contains(m.question.Options, selected) {
			return ErrInvalidOption{
				QuestionID: m.question.ID.String(),
				Option:     selected,
			}
		}
	}

	return nil
}

func (m MultiSelect) DecodeRequest(rawValue json.RawMessage) (any, error) {
	var value shared.MultiSelectAnswer
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return nil, fmt.Errorf("invalid multi select value format: %w", err)
	}

	seen := make(map[string]bool, len(value.Selected))
	deduped := make([]string, 0, len(value.Selected))
	for _, selected := range value.Selected {
		if !slices.Contains(m.question.Options, selected) {
			return nil, ErrInvalidOption{
				QuestionID: m.question.ID.String(),
				Option:     selected,
			}
		}
		if seen[selected] {
			continue
		}
		seen[selected] = true
		deduped = append(deduped, selected)
	}

	return shared.MultiSelectAnswer{
		Selected: deduped,
		Other:    value.Other,
	}, nil
}

func (m MultiSelect) DecodeStorage(rawValue json.RawMessage) (any, error) {
	var answer shared.MultiSelectAnswer
	if err := json.Unmarshal(rawValue, &answer); err != nil {
		return nil, fmt.Errorf("invalid multi select answer in storage: %w", err)
	}

	return answer, nil
}

func (m MultiSelect) EncodeStorage(answer any) (json.RawMessage, error) {
	multiSelectAnswer, ok := answer.(shared.MultiSelectAnswer)
	if !ok {
		return nil, fmt.Errorf("expected shared.MultiSelectAnswer, got %T", answer)
	}

	return json.Marshal(multiSelectAnswer)
}

func (m MultiSelect) DisplayValue(rawValue json.RawMessage) (string, error) {
	answer, err := m.DecodeStorage(rawValue)
	if err != nil {
		return "", err
	}

	multiSelectAnswer, ok := answer.(shared.MultiSelectAnswer)
	if !ok {
		return "", fmt.Errorf("expected shared.MultiSelectAnswer, got %T", answer)
	}

	return multiSelectAnswer.Display(), nil
}
