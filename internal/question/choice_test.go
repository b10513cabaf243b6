package question

import (
	"encoding/json"
	"testing"

	"changepulse/readiness-backend/internal/assessment/shared"
	"github.com/google/uuid"
)

func newSelectQuestion(t QuestionType) Question {
	return Question{
		ID:      uuid.New(),
		Text:    "Which areas concern you most?",
		Type:    t,
		Options: []string{"Training", "Tooling", "Timeline"},
	}
}

func TestSingleSelect_DecodeRequest(t *testing.T) {
	ss := NewSingleSelect(newSelectQuestion(QuestionTypeSingleSelect))

	tests := []struct {
		name        string
		rawValue    string
		shouldError bool
		expected    string
	}{
		{
			name:     "Should decode listed option",
			rawValue: `"Tooling"`,
			expected: "Tooling",
		},
		{
			name:        "Should reject option outside the question's list",
			rawValue:    `"Budget"`,
			shouldError: true,
		},
		{
			name:        "Should reject non-string value",
			rawValue:    `["Training"]`,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ss.DecodeRequest(json.RawMessage(tt.rawValue))

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			answer, ok := result.(shared.SingleSelectAnswer)
			if !ok {
				t.Fatalf("Expected shared.SingleSelectAnswer, got %T", result)
			}
			if answer.Value != tt.expected {
				t.Errorf("Expected value %q, got %q", tt.expected, answer.Value)
			}
		})
	}
}

func TestMultiSelect_DecodeRequest(t *testing.T) {
	ms := NewMultiSelect(newSelectQuestion(QuestionTypeMultiSelect))

	tests := []struct {
		name        string
		rawValue    string
		shouldError bool
		validate    func(t *testing.T, answer shared.MultiSelectAnswer)
	}{
		{
			name:     "Should decode listed selections",
			rawValue: `{"selected":["Training","Timeline"]}`,
			validate: func(t *testing.T, answer shared.MultiSelectAnswer) {
				if len(answer.Selected) != 2 {
					t.Fatalf("Expected 2 selections, got %d", len(answer.Selected))
				}
				if answer.Selected[0] != "Training" || answer.Selected[1] != "Timeline" {
					t.Errorf("Unexpected selections: %v", answer.Selected)
				}
			},
		},
		{
			name:     "Should keep free-text other outside the containment rule",
			rawValue: `{"selected":["Tooling"],"other":"leadership buy-in"}`,
			validate: func(t *testing.T, answer shared.MultiSelectAnswer) {
				if answer.Other != "leadership buy-in" {
					t.Errorf("Expected other %q, got %q", "leadership buy-in", answer.Other)
				}
			},
		},
		{
			name:     "Should dedupe repeated selections preserving order",
			rawValue: `{"selected":["Timeline","Training","Timeline"]}`,
			validate: func(t *testing.T, answer shared.MultiSelectAnswer) {
				if len(answer.Selected) != 2 {
					t.Fatalf("Expected 2 selections after dedupe, got %d", len(answer.Selected))
				}
				if answer.Selected[0] != "Timeline" || answer.Selected[1] != "Training" {
					t.Errorf("Unexpected order after dedupe: %v", answer.Selected)
				}
			},
		},
		{
			name:     "Should accept empty selection",
			rawValue: `{"selected":[]}`,
			validate: func(t *testing.T, answer shared.MultiSelectAnswer) {
				if len(answer.Selected) != 0 {
					t.Errorf("Expected no selections, got %v", answer.Selected)
				}
			},
		},
		{
			name:        "Should reject selection outside the question's list",
			rawValue:    `{"selected":["Training","Budget"]}`,
			shouldError: true,
		},
		{
			name:        "Should reject malformed payload",
			rawValue:    `"Training"`,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ms.DecodeRequest(json.RawMessage(tt.rawValue))

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			answer, ok := result.(shared.MultiSelectAnswer)
			if !ok {
				t.Fatalf("Expected shared.MultiSelectAnswer, got %T", result)
			}
			if tt.validate != nil {
				tt.validate(t, answer)
			}
		})
	}
}

func TestMultiSelect_DisplayValue(t *testing.T) {
	ms := NewMultiSelect(newSelectQuestion(QuestionTypeMultiSelect))

	tests := []struct {
		name     string
		rawValue string
		expected string
	}{
		{
			name:     "Should join selections and append other",
			rawValue: `{"selected":["Training","Tooling"],"other":"extra note"}`,
			expected: "Training, Tooling, Other: extra note",
		},
		{
			name:     "Should render selections without other",
			rawValue: `{"selected":["Timeline"]}`,
			expected: "Timeline",
		},
		{
			name:     "Should render other alone",
			rawValue: `{"selected":[],"other":"none apply"}`,
			expected: "Other: none apply",
		},
		{
			name:     "Should render placeholder when nothing was selected",
			rawValue: `{"selected":[]}`,
			expected: "No options selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display, err := ms.DisplayValue(json.RawMessage(tt.rawValue))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if display != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, display)
			}
		})
	}
}
