package port

import (
	"context"

	"github.com/EmerJK/emertxthn/internal/domain"
)

// PromptModifier is the extension entry point the host invokes once per
// generation turn. It may rearrange or annotate the history and mutate the
// prompt slots, but must never fail: on any internal error the original
// history is returned unchanged.
type PromptModifier interface {
	BeforeGeneration(ctx context.Context, history []domain.Message, contextSize int, kind domain.GenerationKind) []domain.Message
}
