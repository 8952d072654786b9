package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/logger"
)

// rerankSystemPrompt frames the permutation task for the model.
const rerankSystemPrompt = `You are a search result re-ranker. Given a query and a numbered list of text passages, order the passage indices from most to least relevant. Respond with ONLY a JSON array of 0-based indices covering every passage exactly once. Example: [2,0,1]`

// rerankMaxTokens bounds the completion; a permutation of a small
// candidate set never needs more.
const rerankMaxTokens = 256

// Reranker reorders retrieval candidates with an LLM. It never fails a
// query: every malformed or failed completion falls back to the input
// order.
type Reranker struct {
	provider driven.Provider
	topK     int
}

// NewReranker creates a re-ranker operating on the top topK candidates.
func NewReranker(provider driven.Provider, topK int) *Reranker {
	if topK <= 0 {
		topK = 10
	}
	return &Reranker{provider: provider, topK: topK}
}

// Rerank reorders the head of the candidate list by model-judged
// relevance and assigns linear scores: the top item gets 1.0, each
// following item 1/n less. Candidates beyond the re-rank window keep
// their position and get no score.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.ScoredChunk) []domain.ScoredChunk {
	if len(candidates) == 0 {
		return candidates
	}

	head := candidates
	if len(head) > r.topK {
		head = head[:r.topK]
	}
	tail := candidates[len(head):]

	perm := r.rank(ctx, query, head)

	n := len(head)
	reranked := make([]domain.ScoredChunk, 0, len(candidates))
	for i, idx := range perm {
		item := head[idx]
		score := 1.0 - float64(i)/float64(n)
		item.RerankScore = &score
		reranked = append(reranked, item)
	}
	return append(reranked, tail...)
}

// rank asks the model for a permutation, falling back to identity on
// any failure.
func (r *Reranker) rank(ctx context.Context, query string, head []domain.ScoredChunk) []int {
	identity := make([]int, len(head))
	for i := range identity {
		identity[i] = i
	}

	completion, err := r.provider.Complete(ctx, r.messages(query, head), driven.CompleteOptions{
		MaxTokens:   rerankMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("re-rank completion failed, keeping input order", zap.Error(err))
		return identity
	}

	perm, err := parsePermutation(completion, len(head))
	if err != nil {
		logger.Warn("re-rank response rejected, keeping input order",
			zap.String("response", completion), zap.Error(err))
		return identity
	}
	return perm
}

func (r *Reranker) messages(query string, head []domain.ScoredChunk) []driven.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nPassages:\n", query)
	for i, item := range head {
		fmt.Fprintf(&b, "[%d] %s\n", i, item.Chunk.Text)
	}
	b.WriteString("\nReturn the JSON array of indices in relevance order.")

	return []driven.Message{
		{Role: driven.RoleSystem, Content: rerankSystemPrompt},
		{Role: driven.RoleUser, Content: b.String()},
	}
}

// parsePermutation decodes a JSON index array, tolerating a markdown
// code fence, and verifies it is a permutation of [0, n).
func parsePermutation(completion string, n int) ([]int, error) {
	text := strings.TrimSpace(completion)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var perm []int
	if err := json.Unmarshal([]byte(text), &perm); err != nil {
		return nil, fmt.Errorf("not a JSON array: %w", err)
	}
	if len(perm) != n {
		return nil, fmt.Errorf("expected %d indices, got %d", n, len(perm))
	}

	seen := make([]bool, n)
	for _, idx := range perm {
		if idx < 0 || idx >= n || seen[idx] {
			return nil, fmt.Errorf("not a permutation of [0,%d)", n)
		}
		seen[idx] = true
	}
	return perm, nil
}
