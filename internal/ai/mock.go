package ai

import (
	"context"
	"fmt"

	"github.com/support-insights/backend/internal/utils"
)

// MockAssistant is used in tests and local development without an upstream
// model. Answers are deterministic per prompt.
type MockAssistant struct{}

var cannedAnswers = []string{
	"Based on the current data summary, response times are holding steady week over week.",
	"The satisfaction rate reflects rated chats only; a large unrated share lowers confidence.",
	"Most ticket volume sits in the Support Pipeline; weekend volume is a small fraction.",
	"Bot transfers indicate conversations the chatbot could not finish on its own.",
}

func (MockAssistant) Ask(_ context.Context, prompt string, history []ChatMessage) (string, error) {
	h := utils.HashStringToUint64(prompt)
	answer := cannedAnswers[int(h%uint64(len(cannedAnswers)))]
	if len(history) > 0 {
		return fmt.Sprintf("%s (context: %d prior messages)", answer, len(history)), nil
	}
	return answer, nil
}
