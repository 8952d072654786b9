package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/logger"
)

// Synthesizer generates a prose answer grounded in retrieved chunks.
// Synthesis is strictly best-effort: any provider failure degrades to
// a nil answer, never a failed query.
type Synthesizer struct {
	provider     driven.Provider
	systemPrompt string
	maxTokens    int
}

// NewSynthesizer creates a synthesizer using the given system prompt
// and completion budget.
func NewSynthesizer(provider driven.Provider, systemPrompt string, maxTokens int) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Synthesizer{
		provider:     provider,
		systemPrompt: systemPrompt,
		maxTokens:    maxTokens,
	}
}

// Synthesize answers the query from the given chunks. Empty input
// returns nil without calling the model.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, chunks []domain.ScoredChunk) *string {
	if len(chunks) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nContext:\n", query)
	for i, item := range chunks {
		fmt.Fprintf(&b, "[Chunk %d] %s\n\n", i, item.Chunk.Text)
	}
	b.WriteString("Answer the question using only the context above. If the context does not contain the answer, say so.")

	completion, err := s.provider.Complete(ctx, []driven.Message{
		{Role: driven.RoleSystem, Content: s.systemPrompt},
		{Role: driven.RoleUser, Content: b.String()},
	}, driven.CompleteOptions{MaxTokens: s.maxTokens})
	if err != nil {
		logger.Warn("answer synthesis failed, returning results without answer", zap.Error(err))
		return nil
	}

	answer := strings.TrimSpace(completion)
	if answer == "" {
		return nil
	}
	return &answer
}
