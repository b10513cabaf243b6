package shared

import "encoding/json"

// AnswerParam is one question's raw answer as carried by a submission request.
type AnswerParam struct {
	QuestionID string
	Value      json.RawMessage
}
