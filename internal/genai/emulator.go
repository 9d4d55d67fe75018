package genai

import "strings"

// emulator marker word: messages containing it are flagged relevant.
const emulatorMarker = "確認"

// EmulatorVerdict produces the deterministic offline response used
// when the trigger runs in emulator mode without a credential. It
// exists so the pipeline can be exercised end to end with no network
// or key.
func EmulatorVerdict(messageText string) SingleTodo {
	if !strings.Contains(messageText, emulatorMarker) {
		return SingleTodo{IsRelevant: false}
	}
	head := []rune(messageText)
	if len(head) > 10 {
		head = head[:10]
	}
	return SingleTodo{
		TodoContent: "田中さんに〇〇の件を確認する (" + string(head) + "...)",
		IsRelevant:  true,
	}
}
