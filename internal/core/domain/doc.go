// Package domain contains the core entities and invariants of the
// knowledge-retrieval engine: projects, documents, chunks, users, and
// query results. Entities validate themselves at construction; adapters
// never persist a value that failed validation.
package domain
