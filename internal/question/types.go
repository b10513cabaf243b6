package question

import (
	"github.com/google/uuid"
)

// QuestionType is the closed set of answer-shape categories.
type QuestionType string

const (
	QuestionTypeScale        QuestionType = "scale"
	QuestionTypeLikert       QuestionType = "likert"
	QuestionTypeMultiSelect  QuestionType = "multi_select"
	QuestionTypeSingleSelect QuestionType = "single_select"
	QuestionTypeShortText    QuestionType = "short_text"
	QuestionTypeLongText     QuestionType = "long_text"
	QuestionTypeDate         QuestionType = "date"
	QuestionTypeNumber       QuestionType = "number"
)

// Legacy authoring-only type names, kept for content authored before the
// canonical set existed. They are normalized at the boundary and never stored.
const (
	legacyTypeTextarea      QuestionType = "textarea"
	legacyTypeRadio         QuestionType = "radio"
	legacyTypeCheckboxGroup QuestionType = "checkbox_group"
)

// Scale questions are a fixed 1-5 integer range.
const (
	ScaleMin = 1
	ScaleMax = 5
)

// CanonicalLikertOptions is the fixed 5-point agreement scale. Authors cannot
// edit it; authoring paths must substitute this set for likert questions.
var CanonicalLikertOptions = []string{
	"Strongly Disagree",
	"Disagree",
	"Neutral",
	"Agree",
	"Strongly Agree",
}

// Normalize maps legacy alias type names onto the canonical set. The second
// return value reports whether the input named a known type at all.
func Normalize(t QuestionType) (QuestionType, bool) {
	switch t {
	case QuestionTypeScale, QuestionTypeLikert, QuestionTypeMultiSelect,
		QuestionTypeSingleSelect, QuestionTypeShortText, QuestionTypeLongText,
		QuestionTypeDate, QuestionTypeNumber:
		return t, true
	case legacyTypeTextarea:
		return QuestionTypeLongText, true
	case legacyTypeRadio:
		return QuestionTypeSingleSelect, true
	case legacyTypeCheckboxGroup:
		return QuestionTypeMultiSelect, true
	}
	return t, false
}

// Question is the snapshot-serializable authoring unit. Template rows and
// assessment content snapshots both reduce to this shape.
type Question struct {
	ID          uuid.UUID    `json:"id"`
	Text        string       `json:"text"`
	Type        QuestionType `json:"type"`
	Options     []string     `json:"options,omitempty"`
	Required    bool         `json:"required"`
	HelperText  string       `json:"helperText,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	// Dimension names the results axis a scale question's value is attributed
	// to (e.g. the five ADKAR factors). Empty falls back to the question text.
	Dimension string `json:"dimension,omitempty"`
}
