// Package pipeline implements the per-message todo generation
// trigger: gather conversation context, ask the generation service
// whether the newest message warrants a todo, sanitize, suppress
// same-day duplicates, and persist.
package pipeline

import (
	"context"
	"log"

	"github.com/dOtOb9/message/internal/chat"
	"github.com/dOtOb9/message/internal/genai"
	"github.com/dOtOb9/message/internal/models"
	"github.com/dOtOb9/message/internal/todo"
	"gorm.io/gorm"
)

// contextWindow is how many recent messages between the pair are sent
// as conversation context.
const contextWindow = 3

// Outcome classifies how an invocation ended.
type Outcome string

const (
	// OutcomeSkippedInvalid: required message fields were missing.
	OutcomeSkippedInvalid Outcome = "skipped_invalid"
	// OutcomeSkippedNotRelevant: the model saw no todo in the message.
	OutcomeSkippedNotRelevant Outcome = "skipped_not_relevant"
	// OutcomeSkippedDuplicate: an identical todo already exists today.
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
	// OutcomePersisted: a todo was written.
	OutcomePersisted Outcome = "persisted"
	// OutcomeFailed: credential, service, parse, or persist failure.
	OutcomeFailed Outcome = "failed"
)

// Result describes one invocation. The trigger never returns an
// error; every failure collapses into OutcomeFailed with the detail
// logged, so the invoking infrastructure never sees this invocation
// as retriable.
type Result struct {
	Outcome Outcome
	TodoID  string
	Content string
}

// Deps are the capabilities the trigger composes. Gen may be nil: in
// emulator mode the deterministic mock response substitutes for the
// service; outside emulator mode a nil Gen fails the invocation.
type Deps struct {
	DB       *gorm.DB
	Todos    *todo.Store
	Gen      genai.Generator
	Model    string
	Emulator bool
}

// HandleNewMessage runs the trigger pipeline for one newly created
// message. Delivery is at-least-once and possibly concurrent: the
// same message may be handled more than once, and the only guard
// against double todos is the advisory same-day duplicate check.
func HandleNewMessage(ctx context.Context, deps Deps, msg models.Message) Result {
	if msg.SenderID == "" || msg.ReceiverID == "" || msg.Text == "" {
		log.Printf("pipeline: skipping message %d: missing senderId, receiverId, or content", msg.ID)
		return Result{Outcome: OutcomeSkippedInvalid}
	}

	// The todo belongs to the conversation partner.
	userID := msg.ReceiverID

	// Conversation context is best-effort; a failed query degrades to
	// an empty window.
	var contextTexts []string
	ctxMsgs, err := chat.RecentBetween(deps.DB, msg.SenderID, msg.ReceiverID, contextWindow)
	if err != nil {
		log.Printf("pipeline: fetch context for message %d: %v", msg.ID, err)
	} else {
		for _, m := range ctxMsgs {
			contextTexts = append(contextTexts, m.Text)
		}
	}

	verdict, ok := decideTodo(ctx, deps, msg, contextTexts)
	if !ok {
		return Result{Outcome: OutcomeFailed}
	}
	if !verdict.IsRelevant || verdict.TodoContent == "" {
		log.Printf("pipeline: no todo needed for message %d", msg.ID)
		return Result{Outcome: OutcomeSkippedNotRelevant}
	}

	content, truncated := todo.SanitizeContent(verdict.TodoContent)
	if truncated {
		log.Printf("pipeline: truncated todo content for message %d", msg.ID)
	}

	// Advisory duplicate check; a failed check is logged and the
	// insert proceeds.
	dup, err := deps.Todos.ExistsToday(userID, content)
	if err != nil {
		log.Printf("pipeline: duplicate check for message %d: %v", msg.ID, err)
	} else if dup {
		log.Printf("pipeline: skipping message %d: duplicate todo %q for user %s", msg.ID, content, userID)
		return Result{Outcome: OutcomeSkippedDuplicate, Content: content}
	}

	t, err := deps.Todos.AddFromMessage(userID, content, msg.ID)
	if err != nil {
		log.Printf("pipeline: persist todo for message %d: %v", msg.ID, err)
		return Result{Outcome: OutcomeFailed, Content: content}
	}

	log.Printf("pipeline: todo %q added for user %s from message %d", content, userID, msg.ID)
	return Result{Outcome: OutcomePersisted, TodoID: t.ID, Content: content}
}

// decideTodo obtains the single-todo verdict, from the emulator mock
// when no credential is configured in emulator mode, otherwise from
// the generation service. ok=false means the invocation failed.
func decideTodo(ctx context.Context, deps Deps, msg models.Message, contextTexts []string) (genai.SingleTodo, bool) {
	if deps.Gen == nil {
		if deps.Emulator {
			log.Printf("pipeline: using emulator mock response for message %d", msg.ID)
			return genai.EmulatorVerdict(msg.Text), true
		}
		log.Printf("pipeline: generation service credential is not configured")
		return genai.SingleTodo{}, false
	}

	raw, err := deps.Gen.Generate(ctx, genai.BuildTriggerRequest(deps.Model, contextTexts, msg.Text))
	if err != nil {
		if genai.IsBillingError(err) {
			log.Printf("pipeline: generation service billing/quota error for message %d: %v", msg.ID, err)
		} else {
			log.Printf("pipeline: generation service error for message %d: %v", msg.ID, err)
		}
		return genai.SingleTodo{}, false
	}

	verdict, err := genai.DecodeSingleTodo(raw)
	if err != nil {
		log.Printf("pipeline: parse response for message %d: %v", msg.ID, err)
		return genai.SingleTodo{}, false
	}
	return verdict, true
}
