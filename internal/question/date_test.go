package question

import (
	"encoding/json"
	"testing"

	"changepulse/readiness-backend/internal/assessment/shared"
	"github.com/google/uuid"
)

func TestDate_DecodeRequest(t *testing.T) {
	date := NewDate(Question{ID: uuid.New(), Text: "When does your team go live?", Type: QuestionTypeDate})

	tests := []struct {
		name        string
		rawValue    string
		shouldError bool
		validate    func(t *testing.T, answer shared.DateAnswer)
	}{
		{
			name:     "Should decode ISO date",
			rawValue: `"2026-03-15"`,
			validate: func(t *testing.T, answer shared.DateAnswer) {
				if answer.Year != 2026 || answer.Month != 3 || answer.Day != 15 {
					t.Errorf("Expected 2026-03-15, got %s", answer.String())
				}
			},
		},
		{
			name:        "Should reject wrong layout",
			rawValue:    `"15/03/2026"`,
			shouldError: true,
		},
		{
			name:        "Should reject impossible date",
			rawValue:    `"2026-02-30"`,
			shouldError: true,
		},
		{
			name:        "Should reject non-string value",
			rawValue:    `20260315`,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := date.DecodeRequest(json.RawMessage(tt.rawValue))

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			answer, ok := result.(shared.DateAnswer)
			if !ok {
				t.Fatalf("Expected shared.DateAnswer, got %T", result)
			}
			if tt.validate != nil {
				tt.validate(t, answer)
			}
		})
	}
}

func TestDate_DisplayValue(t *testing.T) {
	date := NewDate(Question{ID: uuid.New(), Text: "When does your team go live?", Type: QuestionTypeDate})

	raw, _ := json.Marshal(shared.DateAnswer{Year: 2026, Month: 7, Day: 4})
	display, err := date.DisplayValue(raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if display != "2026-07-04" {
		t.Errorf("Expected %q, got %q", "2026-07-04", display)
	}
}
