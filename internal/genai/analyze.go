package genai

import (
	"context"

	"github.com/dOtOb9/message/internal/models"
)

// CheckTodoNeeded runs the lightweight classifier over the trailing
// window of msgs and reports whether full extraction is warranted.
// Any service or parse failure is returned so the caller can log it;
// callers must treat an error as "not needed" (fail closed).
func CheckTodoNeeded(ctx context.Context, g Generator, model string, msgs []models.Message, names map[string]string) (bool, error) {
	if len(msgs) == 0 {
		return false, nil
	}
	raw, err := g.Generate(ctx, BuildClassifierRequest(model, msgs, names))
	if err != nil {
		return false, err
	}
	v, err := DecodeVerdict(raw)
	if err != nil {
		return false, err
	}
	return v.Relevant(), nil
}

// GenerateTodos runs the extractor over the full message window and
// returns structured todo candidates. An empty completion is
// ErrEmptyResponse; callers catch it and treat the cycle as "zero
// todos produced". A syntactically valid response with no todos is a
// valid empty result, not an error.
func GenerateTodos(ctx context.Context, g Generator, model string, msgs []models.Message, names map[string]string) ([]TodoCandidate, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	raw, err := g.Generate(ctx, BuildExtractorRequest(model, msgs, names))
	if err != nil {
		return nil, err
	}
	return DecodeTodos(raw)
}
