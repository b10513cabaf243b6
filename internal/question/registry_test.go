package question

import (
	"errors"
	"testing"

	"changepulse/readiness-backend/internal"
	"github.com/google/uuid"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		question    Question
		shouldError bool
		sentinel    error
	}{
		{
			name:        "Should accept scale question",
			question:    Question{ID: uuid.New(), Text: "How confident are you?", Type: QuestionTypeScale},
			shouldError: false,
		},
		{
			name:        "Should accept likert question without options",
			question:    Question{ID: uuid.New(), Text: "I understand why this change is happening", Type: QuestionTypeLikert},
			shouldError: false,
		},
		{
			name:        "Should accept legacy alias type",
			question:    Question{ID: uuid.New(), Text: "Any other thoughts?", Type: "textarea"},
			shouldError: false,
		},
		{
			name:        "Should reject empty text",
			question:    Question{ID: uuid.New(), Text: "   ", Type: QuestionTypeScale},
			shouldError: true,
			sentinel:    internal.ErrValidationFailed,
		},
		{
			name:        "Should reject unknown type",
			question:    Question{ID: uuid.New(), Text: "What?", Type: "matrix"},
			shouldError: true,
			sentinel:    internal.ErrInvalidRequestBody,
		},
		{
			name:        "Should reject single select with one option",
			question:    Question{ID: uuid.New(), Text: "Pick one", Type: QuestionTypeSingleSelect, Options: []string{"Only"}},
			shouldError: true,
			sentinel:    internal.ErrValidationFailed,
		},
		{
			name:        "Should reject multi select with empty option value",
			question:    Question{ID: uuid.New(), Text: "Pick some", Type: QuestionTypeMultiSelect, Options: []string{"A", " "}},
			shouldError: true,
			sentinel:    internal.ErrValidationFailed,
		},
		{
			name:        "Should reject multi select with duplicate options",
			question:    Question{ID: uuid.New(), Text: "Pick some", Type: QuestionTypeMultiSelect, Options: []string{"A", "B", "A"}},
			shouldError: true,
			sentinel:    internal.ErrValidationFailed,
		},
		{
			name:        "Should accept single select with two options",
			question:    Question{ID: uuid.New(), Text: "Pick one", Type: QuestionTypeSingleSelect, Options: []string{"Yes", "No"}},
			shouldError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.question)

			if tt.shouldError {
				if err == nil {
					t.Fatalf("Expected error but got nil")
				}
				if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
					t.Errorf("Expected error to unwrap to %v, got %v", tt.sentinel, err)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    QuestionType
		expected QuestionType
		known    bool
	}{
		{name: "Canonical type passes through", input: QuestionTypeScale, expected: QuestionTypeScale, known: true},
		{name: "textarea maps to long_text", input: "textarea", expected: QuestionTypeLongText, known: true},
		{name: "radio maps to single_select", input: "radio", expected: QuestionTypeSingleSelect, known: true},
		{name: "checkbox_group maps to multi_select", input: "checkbox_group", expected: QuestionTypeMultiSelect, known: true},
		{name: "Unknown type is reported", input: "matrix", expected: "matrix", known: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
			if known != tt.known {
				t.Errorf("Expected known=%v, got %v", tt.known, known)
			}
		})
	}
}

func TestApplyCanonicalOptions(t *testing.T) {
	t.Run("Likert options are always the canonical set", func(t *testing.T) {
		q := Question{
			ID:      uuid.New(),
			Text:    "I have the skills I need",
			Type:    QuestionTypeLikert,
			Options: []string{"Meh", "Fine", "Great"},
		}

		got := ApplyCanonicalOptions(q)

		if len(got.Options) != len(CanonicalLikertOptions) {
			t.Fatalf("Expected %d options, got %d", len(CanonicalLikertOptions), len(got.Options))
		}
		for i, want := range CanonicalLikertOptions {
			if got.Options[i] != want {
				t.Errorf("Expected option %d to be %q, got %q", i, want, got.Options[i])
			}
		}
	})

	t.Run("Legacy alias is normalized", func(t *testing.T) {
		q := Question{ID: uuid.New(), Text: "Pick one", Type: "radio", Options: []string{"Yes", "No"}}

		got := ApplyCanonicalOptions(q)

		if got.Type != QuestionTypeSingleSelect {
			t.Errorf("Expected type %s, got %s", QuestionTypeSingleSelect, got.Type)
		}
	})

	t.Run("Select options are trimmed", func(t *testing.T) {
		q := Question{ID: uuid.New(), Text: "Pick some", Type: QuestionTypeMultiSelect, Options: []string{" A ", "B"}}

		got := ApplyCanonicalOptions(q)

		if got.Options[0] != "A" {
			t.Errorf("Expected trimmed option %q, got %q", "A", got.Options[0])
		}
	})

	t.Run("Options are dropped for non-select types", func(t *testing.T) {
		q := Question{ID: uuid.New(), Text: "How ready?", Type: QuestionTypeScale, Options: []string{"stray"}}

		got := ApplyCanonicalOptions(q)

		if got.Options != nil {
			t.Errorf("Expected nil options, got %v", got.Options)
		}
	})
}

func TestNewAnswerable(t *testing.T) {
	tests := []struct {
		name        string
		question    Question
		shouldError bool
		validate    func(t *testing.T, a Answerable)
	}{
		{
			name:        "Should build scale codec",
			question:    Question{ID: uuid.New(), Text: "How confident?", Type: QuestionTypeScale},
			shouldError: false,
			validate: func(t *testing.T, a Answerable) {
				if _, ok := a.(Scale); !ok {
					t.Errorf("Expected Scale, got %T", a)
				}
			},
		},
		{
			name:        "Should build number codec",
			question:    Question{ID: uuid.New(), Text: "Team size?", Type: QuestionTypeNumber},
			shouldError: false,
			validate: func(t *testing.T, a Answerable) {
				if _, ok := a.(Number); !ok {
					t.Errorf("Expected Number, got %T", a)
				}
			},
		},
		{
			name:        "Should normalize alias before dispatch",
			question:    Question{ID: uuid.New(), Text: "Thoughts?", Type: "textarea"},
			shouldError: false,
			validate: func(t *testing.T, a Answerable) {
				if _, ok := a.(LongText); !ok {
					t.Errorf("Expected LongText, got %T", a)
				}
				if a.Question().Type != QuestionTypeLongText {
					t.Errorf("Expected normalized type %s, got %s", QuestionTypeLongText, a.Question().Type)
				}
			},
		},
		{
			name:        "Should reject unknown type",
			question:    Question{ID: uuid.New(), Text: "What?", Type: "matrix"},
			shouldError: true,
		},
		{
			name:        "Should reject invalid question",
			question:    Question{ID: uuid.New(), Text: "", Type: QuestionTypeScale},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnswerable(tt.question)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, a)
			}
		})
	}
}
