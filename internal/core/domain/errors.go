package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors and are matched with
// errors.Is across package boundaries.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the caller does not own the project.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates inputs failed schema or entity invariants.
	ErrValidation = errors.New("validation failed")

	// ErrTextExtraction indicates an unrecognised format or a parser
	// failure during ingestion.
	ErrTextExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates a provider call failed while embedding a chunk.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDatabase indicates a repository-level failure not already classified.
	ErrDatabase = errors.New("database error")

	// Provider errors. Each is distinct so callers can decide whether
	// a failure is worth retrying.

	// ErrLLMAuth indicates the provider rejected the credentials (401/403).
	ErrLLMAuth = errors.New("llm authentication failed")

	// ErrLLMRateLimit indicates the provider rate limit was exceeded (429).
	ErrLLMRateLimit = errors.New("llm rate limited")

	// ErrLLMConnection indicates a transport failure reaching the provider
	// (socket, DNS, timeout).
	ErrLLMConnection = errors.New("llm connection failed")

	// ErrLLMProvider indicates any other non-2xx provider response.
	ErrLLMProvider = errors.New("llm provider error")

	// ErrUnsupportedProvider indicates an embedding request against a
	// completion-only provider. Never silently falls back.
	ErrUnsupportedProvider = errors.New("provider does not support embeddings")
)
