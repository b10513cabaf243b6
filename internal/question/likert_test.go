package question

import (
	"encoding/json"
	"testing"

	"changepulse/readiness-backend/internal/assessment/shared"
	"github.com/google/uuid"
)

func TestLikert_DecodeRequest(t *testing.T) {
	likert := NewLikert(ApplyCanonicalOptions(Question{
		ID:   uuid.New(),
		Text: "I understand why this change is happening",
		Type: QuestionTypeLikert,
	}))

	tests := []struct {
		name        string
		rawValue    string
		shouldError bool
		expected    string
	}{
		{
			name:     "Should accept canonical label",
			rawValue: `"Strongly Agree"`,
			expected: "Strongly Agree",
		},
		{
			name:     "Should accept neutral label",
			rawValue: `"Neutral"`,
			expected: "Neutral",
		},
		{
			name:        "Should reject label outside the canonical scale",
			rawValue:    `"Kind of Agree"`,
			shouldError: true,
		},
		{
			name:        "Should reject integer value",
			rawValue:    `4`,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := likert.DecodeRequest(json.RawMessage(tt.rawValue))

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			answer, ok := result.(shared.LikertAnswer)
			if !ok {
				t.Fatalf("Expected shared.LikertAnswer, got %T", result)
			}
			if answer.Label != tt.expected {
				t.Errorf("Expected label %q, got %q", tt.expected, answer.Label)
			}
		})
	}
}

func TestLikert_DisplayValue(t *testing.T) {
	likert := NewLikert(Question{ID: uuid.New(), Text: "I have the support I need", Type: QuestionTypeLikert})

	display, err := likert.DisplayValue(json.RawMessage(`{"label":"Disagree"}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if display != "Disagree" {
		t.Errorf("Expected %q, got %q", "Disagree", display)
	}
}
