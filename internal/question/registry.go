package question

import (
	"encoding/json"
	"strings"
)

// Answerable binds a question to the codec for its type. Implementations are
// one struct per question type, produced by NewAnswerable; the factory switch
// is the single point of change when a type is added.
type Answerable interface {
	Question() Question

	// Validate checks the raw request value against the question's type and
	// constraints without decoding it.
	Validate(rawValue json.RawMessage) error

	// DecodeRequest decodes the raw request value into the typed answer for
	// this question type. Invalid input is an error, never coerced.
	DecodeRequest(rawValue json.RawMessage) (any, error)

	// DecodeStorage decodes the stored answer back into its typed form.
	DecodeStorage(rawValue json.RawMessage) (any, error)

	// EncodeStorage encodes the typed answer for persistence in the
	// assessment's answers map.
	EncodeStorage(answer any) (json.RawMessage, error)

	// DisplayValue converts the stored answer to a human-readable summary
	// for results tables.
	DisplayValue(rawValue json.RawMessage) (string, error)
}

// Validate applies the authoring rules for a question: non-empty text, a known
// type, and for select types at least two non-empty, unique options. It is
// pure; likert option substitution happens in ApplyCanonicalOptions.
func Validate(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrInvalidQuestion{Field: "text", Message: "must not be empty"}
	}

	normalized, known := Normalize(q.Type)
	if !known {
		return ErrUnsupportedQuestionType{QuestionType: string(q.Type)}
	}

	if normalized == QuestionTypeSingleSelect || normalized == QuestionTypeMultiSelect {
		seen := make(map[string]bool, len(q.Options))
		count := 0
		for _, option := range q.Options {
			option = strings.TrimSpace(option)
			if option == "" {
				return ErrInvalidQuestion{Field: "options", Message: "option values must not be empty"}
			}
			if seen[option] {
				return ErrInvalidQuestion{Field: "options", Message: "option values must be unique"}
			}
			seen[option] = true
			count++
		}
		if count < 2 {
			return ErrInvalidQuestion{Field: "options", Message: "select questions need at least two options"}
		}
	}

	return nil
}

// ApplyCanonicalOptions normalizes the type name and, for likert questions,
// replaces any author-supplied options with the canonical agreement scale.
// Author options for non-select types are dropped rather than persisted.
func ApplyCanonicalOptions(q Question) Question {
	normalized, known := Normalize(q.Type)
	if known {
		q.Type = normalized
	}

	switch q.Type {
	case QuestionTypeLikert:
		q.Options = append([]string(nil), CanonicalLikertOptions...)
	case QuestionTypeSingleSelect, QuestionTypeMultiSelect:
		trimmed := make([]string, 0, len(q.Options))
		for _, option := range q.Options {
			trimmed = append(trimmed, strings.TrimSpace(option))
		}
		q.Options = trimmed
	default:
		q.Options = nil
	}

	return q
}

// NewAnswerable builds the codec for a question. The question is validated
// first so a broken snapshot surfaces here rather than at answer time.
func NewAnswerable(q Question) (Answerable, error) {
	if err := Validate(q); err != nil {
		return nil, err
	}

	normalized, _ := Normalize(q.Type)
	q.Type = normalized

	switch normalized {
	case QuestionTypeScale:
		return NewScale(q), nil
	case QuestionTypeLikert:
		return NewLikert(q), nil
	case QuestionTypeSingleSelect:
		return NewSingleSelect(q), nil
	case QuestionTypeMultiSelect:
		return NewMultiSelect(q), nil
	case QuestionTypeShortText:
		return NewShortText(q), nil
	case QuestionTypeLongText:
		return NewLongText(q), nil
	case QuestionTypeDate:
		return NewDate(q), nil
	case QuestionTypeNumber:
		return NewNumber(q), nil
	}

	return nil, ErrUnsupportedQuestionType{QuestionType: string(q.Type)}
}
