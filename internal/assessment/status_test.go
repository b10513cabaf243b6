package assessment

import (
	"testing"
)

func TestStatus_CanTransition(t *testing.T) {
	testCases := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{name: "draft to deployed", from: StatusDraft, to: StatusDeployed, expected: true},
		{name: "deployed to completed", from: StatusDeployed, to: StatusCompleted, expected: true},
		{name: "draft to completed skips deployment", from: StatusDraft, to: StatusCompleted, expected: false},
		{name: "deployed back to draft", from: StatusDeployed, to: StatusDraft, expected: false},
		{name: "completed back to deployed", from: StatusCompleted, to: StatusDeployed, expected: false},
		{name: "completed back to draft", from: StatusCompleted, to: StatusDraft, expected: false},
		{name: "draft to draft", from: StatusDraft, to: StatusDraft, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.from.CanTransition(tc.to)
			if result != tc.expected {
				t.Errorf("CanTransition(%v -> %v) = %v, want %v", tc.from, tc.to, result, tc.expected)
			}
		})
	}
}

func TestStatus_ToUppercase(t *testing.T) {
	testCases := []struct {
		name     string
		input    Status
		expected string
	}{
		{name: "draft to DRAFT", input: StatusDraft, expected: "DRAFT"},
		{name: "deployed to DEPLOYED", input: StatusDeployed, expected: "DEPLOYED"},
		{name: "completed to COMPLETED", input: StatusCompleted, expected: "COMPLETED"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := statusToUppercase(tc.input)
			if result != tc.expected {
				t.Errorf("statusToUppercase(%v) = %v, want %v", tc.input, result, tc.expected)
			}
		})
	}
}
