package driven

import "context"

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// CompleteOptions configures a completion request. Zero values fall back
// to provider defaults.
type CompleteOptions struct {
	// Model overrides the provider's configured model.
	Model string

	// MaxTokens caps the generated token count.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// CompletionStream is a finite, non-restartable sequence of text deltas.
// Recv returns io.EOF after the terminal marker; a broken transport
// terminates the sequence with the transport error. Close releases the
// underlying connection and is safe to call more than once.
type CompletionStream interface {
	Recv() (string, error)
	Close() error
}

// Provider is the uniform capability surface over the LLM backends.
// Completion-only providers fail Embed with ErrUnsupportedProvider;
// they never silently fall back. The abstraction maps HTTP failures to
// the domain error taxonomy and performs no retries of its own.
type Provider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Complete produces a chat completion.
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error)

	// CompleteStream produces a lazy sequence of text deltas. Vendor
	// framing is invisible to callers.
	CompleteStream(ctx context.Context, messages []Message, opts CompleteOptions) (CompletionStream, error)

	// Name returns the provider name ("openai", "anthropic", ...).
	Name() string

	// Close releases resources.
	Close() error
}
