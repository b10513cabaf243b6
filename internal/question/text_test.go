package question

import (
	"encoding/json"
	"strings"
	"testing"

	"changepulse/readiness-backend/internal/assessment/shared"
	"github.com/google/uuid"
)

func TestShortText_DecodeRequest(t *testing.T) {
	st := NewShortText(Question{ID: uuid.New(), Text: "What is your role?", Type: QuestionTypeShortText})

	tests := []struct {
		name        string
		rawValue    string
		shouldError bool
		expected    string
	}{
		{
			name:     "Should decode plain text",
			rawValue: `"Operations lead"`,
			expected: "Operations lead",
		},
		{
			name:     "Should accept empty string as a real answer",
			rawValue: `""`,
			expected: "",
		},
		{
			name:        "Should reject text over the length limit",
			rawValue:    `"` + strings.Repeat("a", shortTextLimit+1) + `"`,
			shouldError: true,
		},
		{
			name:        "Should reject non-string value",
			rawValue:    `42`,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := st.DecodeRequest(json.RawMessage(tt.rawValue))

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			answer, ok := result.(shared.ShortTextAnswer)
			if !ok {
				t.Fatalf("Expected shared.ShortTextAnswer, got %T", result)
			}
			if answer.Value != tt.expected {
				t.Errorf("Expected value %q, got %q", tt.expected, answer.Value)
			}
		})
	}
}

func TestLongText_DecodeRequest(t *testing.T) {
	lt := NewLongText(Question{ID: uuid.New(), Text: "Any other concerns?", Type: QuestionTypeLongText})

	longValue := strings.Repeat("b", 5000)
	result, err := lt.DecodeRequest(json.RawMessage(`"` + longValue + `"`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	answer, ok := result.(shared.LongTextAnswer)
	if !ok {
		t.Fatalf("Expected shared.LongTextAnswer, got %T", result)
	}
	if answer.Value != longValue {
		t.Errorf("Long text value was altered")
	}
}

func TestLongText_DisplayValue(t *testing.T) {
	lt := NewLongText(Question{ID: uuid.New(), Text: "Any other concerns?", Type: QuestionTypeLongText})

	t.Run("Should truncate long values for the results table", func(t *testing.T) {
		raw, _ := json.Marshal(shared.LongTextAnswer{Value: strings.Repeat("c", 150)})

		display, err := lt.DisplayValue(raw)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if display != strings.Repeat("c", 100)+"..." {
			t.Errorf("Expected truncated value, got %q", display)
		}
	})

	t.Run("Should keep short values intact", func(t *testing.T) {
		raw, _ := json.Marshal(shared.LongTextAnswer{Value: "all good"})

		display, err := lt.DisplayValue(raw)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if display != "all good" {
			t.Errorf("Expected %q, got %q", "all good", display)
		}
	})
}
