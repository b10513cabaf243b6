package shared

import (
	"fmt"
	"strings"
)

// ScaleAnswer represents answer for scale question type
type ScaleAnswer struct {
	Value int `json:"value"` // Integer within the fixed 1-5 range
}

// LikertAnswer represents answer for likert question type
type LikertAnswer struct {
	Label string `json:"label"` // One of the five canonical agreement labels
}

// SingleSelectAnswer represents answer for single_select question type
type SingleSelectAnswer struct {
	Value string `json:"value"`
}

// MultiSelectAnswer represents answer for multi_select question type.
// Selected values must come from the question's option list; Other is
// free text and exempt from the containment rule.
type MultiSelectAnswer struct {
	Selected []string `json:"selected"`
	Other    string   `json:"other,omitempty"`
}

// Display joins the selections for results tables, appending the free-text
// Other note when present.
func (m MultiSelectAnswer) Display() string {
	if len(m.Selected) == 0 && m.Other == "" {
		return "No options selected"
	}

	parts := make([]string, 0, len(m.Selected)+1)
	parts = append(parts, m.Selected...)
	if m.Other != "" {
		parts = append(parts, "Other: "+m.Other)
	}
	return strings.Join(parts, ", ")
}

// ShortTextAnswer represents answer for short_text question type
type ShortTextAnswer struct {
	Value string `json:"value"`
}

// LongTextAnswer represents answer for long_text question type
type LongTextAnswer struct {
	Value string `json:"value"`
}

// DateAnswer represents answer for date question type
type DateAnswer struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
	Day   int `json:"day"`   // 1-31
}

// String renders the date as YYYY-MM-DD.
func (d DateAnswer) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// NumberAnswer represents answer for number question type
type NumberAnswer struct {
	Value float64 `json:"value"`
}
