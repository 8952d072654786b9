package services

import (
	"context"
	"sync"
	"time"

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// mockProvider is a scriptable Provider that records its calls.
type mockProvider struct {
	mu sync.Mutex

	embedFunc    func(text string) ([]float32, error)
	completeFunc func(messages []driven.Message) (string, error)

	embedCalls    []string
	completeCalls [][]driven.Message
}

var _ driven.Provider = (*mockProvider)(nil)

func (m *mockProvider) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls = append(m.embedCalls, text)
	m.mu.Unlock()

	if m.embedFunc != nil {
		return m.embedFunc(text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockProvider) Complete(_ context.Context, messages []driven.Message, _ driven.CompleteOptions) (string, error) {
	m.mu.Lock()
	m.completeCalls = append(m.completeCalls, messages)
	m.mu.Unlock()

	if m.completeFunc != nil {
		return m.completeFunc(messages)
	}
	return "", nil
}

func (m *mockProvider) CompleteStream(_ context.Context, _ []driven.Message, _ driven.CompleteOptions) (driven.CompletionStream, error) {
	panic("not used in these tests")
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Close() error { return nil }

func (m *mockProvider) embedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.embedCalls)
}

func (m *mockProvider) completeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completeCalls)
}

// failingCache fails every call. Used to prove cache transparency.
type failingCache struct {
	gets, sets int
}

var _ driven.Cache = (*failingCache)(nil)

func (c *failingCache) Get(_ context.Context, _ string) (string, bool) {
	c.gets++
	return "", false
}

func (c *failingCache) Set(_ context.Context, _, _ string, _ time.Duration) {
	c.sets++
}

func (c *failingCache) Delete(_ context.Context, _ string) {}

func (c *failingCache) Close() error { return nil }

// memoryCache is a minimal working cache for hit-path tests.
type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

var _ driven.Cache = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

func (c *memoryCache) Close() error { return nil }
