package question

import (
	"encoding/json"
	"testing"

	"changepulse/readiness-backend/internal/assessment/shared"
	"github.com/google/uuid"
)

func TestNumber_DecodeRequest(t *testing.T) {
	number := NewNumber(Question{ID: uuid.New(), Text: "How many people report to you?", Type: QuestionTypeNumber})

	tests := []struct {
		name        string
		rawValue    string
		shouldError bool
		expected    float64
	}{
		{
			name:     "Should decode integer",
			rawValue: `12`,
			expected: 12,
		},
		{
			name:     "Should decode fraction",
			rawValue: `2.5`,
			expected: 2.5,
		},
		{
			name:        "Should reject non-numeric value",
			rawValue:    `"twelve"`,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := number.DecodeRequest(json.RawMessage(tt.rawValue))

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			answer, ok := result.(shared.NumberAnswer)
			if !ok {
				t.Fatalf("Expected shared.NumberAnswer, got %T", result)
			}
			if answer.Value != tt.expected {
				t.Errorf("Expected value %v, got %v", tt.expected, answer.Value)
			}
		})
	}
}

func TestNumber_DisplayValue(t *testing.T) {
	number := NewNumber(Question{ID: uuid.New(), Text: "How many people report to you?", Type: QuestionTypeNumber})

	raw, _ := json.Marshal(shared.NumberAnswer{Value: 2.5})
	display, err := number.DisplayValue(raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if display != "2.5" {
		t.Errorf("Expected %q, got %q", "2.5", display)
	}
}
