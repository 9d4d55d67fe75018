package genai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is the classifier's JSON answer.
type Verdict struct {
	NeedsTodo  bool    `json:"needsTodo"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// confidenceThreshold is the minimum classifier confidence for a
// window to count as todo-worthy.
const confidenceThreshold = 70

// Relevant reports whether the verdict warrants running the extractor.
func (v Verdict) Relevant() bool {
	return v.NeedsTodo && v.Confidence >= confidenceThreshold
}

// TodoCandidate is one structured todo emitted by the extractor.
type TodoCandidate struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Priority        string   `json:"priority"`
	Category        string   `json:"category"`
	DueDate         *string  `json:"dueDate"`
	RelatedMessages []string `json:"relatedMessages"`
}

// SingleTodo is the legacy single-item schema used by the server
// trigger.
type SingleTodo struct {
	TodoContent string `json:"todoContent"`
	IsRelevant  bool   `json:"isRelevant"`
}

type todoList struct {
	Todos []TodoCandidate `json:"todos"`
}

// DecodeVerdict decodes a classifier completion.
func DecodeVerdict(raw string) (Verdict, error) {
	var v Verdict
	if err := decodeJSON(raw, &v); err != nil {
		return Verdict{}, err
	}
	return v, nil
}

// DecodeTodos decodes an extractor completion. A valid object with no
// "todos" key decodes to an empty slice.
func DecodeTodos(raw string) ([]TodoCandidate, error) {
	var l todoList
	if err := decodeJSON(raw, &l); err != nil {
		return nil, err
	}
	return l.Todos, nil
}

// DecodeSingleTodo decodes a legacy trigger completion.
func DecodeSingleTodo(raw string) (SingleTodo, error) {
	var s SingleTodo
	if err := decodeJSON(raw, &s); err != nil {
		return SingleTodo{}, err
	}
	return s, nil
}

// decodeJSON unmarshals a completion into v, tolerating markdown code
// fences around the JSON body. Anything unparseable becomes a
// ParseError.
func decodeJSON(raw string, v interface{}) error {
	trimmed := stripFences(raw)
	if trimmed == "" {
		return &ParseError{Raw: raw, Err: fmt.Errorf("empty content")}
	}
	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
