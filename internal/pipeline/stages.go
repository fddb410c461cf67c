package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/paperchat/backend/internal/models"
)

// Completer is the text-generation capability behind the drafting and
// verification stages. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLMDrafter produces draft answers from the model, with one reserved
// intent handled in code: self-identification questions get the fixed
// introduction without a model call.
type LLMDrafter struct {
	completer Completer
}

func NewLLMDrafter(completer Completer) *LLMDrafter {
	return &LLMDrafter{completer: completer}
}

func (d *LLMDrafter) Draft(ctx context.Context, question, contextText string, history []models.Turn) (string, error) {
	if isSelfIntroQuestion(question) {
		return SelfIntroAnswer, nil
	}

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Conversation history:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", turn.TurnIndex, turn.Question, turn.TurnIndex, turn.Answer)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "CONTEXT:\n%s\n\nQuestion: %s", contextText, question)

	draft, err := d.completer.Complete(ctx, draftSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("draft answer: %w", err)
	}
	return strings.TrimSpace(draft), nil
}

// LLMVerifier checks drafts against their context. The fixed
// self-introduction passes through unchanged: it is the documented
// exception to the grounding invariant.
type LLMVerifier struct {
	completer Completer
}

func NewLLMVerifier(completer Completer) *LLMVerifier {
	return &LLMVerifier{completer: completer}
}

func (v *LLMVerifier) Verify(ctx context.Context, draft, contextText string) (string, error) {
	if draft == SelfIntroAnswer {
		return draft, nil
	}

	user := fmt.Sprintf("CONTEXT:\n%s\n\nDraft answer:\n%s", contextText, draft)
	final, err := v.completer.Complete(ctx, verifySystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("verify answer: %w", err)
	}
	return strings.TrimSpace(final), nil
}
