// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the LLM provider abstraction, the
// persistence repositories, the cache, and text extraction.
package driven
