package provider

import (
	"errors"
	"fmt"
	"sync"

	"github.com/corpuslabs/corpusd/internal/config"
	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
)

// Registry hands out one shared provider instance per name. Init is
// idempotent and thread-safe; the instance is built on first Get.
type Registry struct {
	mu        sync.Mutex
	cfg       config.LLMConfig
	providers map[string]driven.Provider
}

// NewRegistry creates a registry that builds providers from the given
// configuration.
func NewRegistry(cfg config.LLMConfig) *Registry {
	return &Registry{
		cfg:       cfg,
		providers: make(map[string]driven.Provider),
	}
}

// Get returns the shared instance for the named provider, constructing
// it on first use.
func (r *Registry) Get(name string) (driven.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[name]; ok {
		return p, nil
	}

	p, err := r.build(name)
	if err != nil {
		return nil, err
	}
	r.providers[name] = p
	return p, nil
}

func (r *Registry) build(name string) (driven.Provider, error) {
	switch name {
	case NameOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:         r.cfg.OpenAIAPIKey,
			Model:          r.cfg.DefaultLLMModel,
			EmbeddingModel: r.cfg.DefaultEmbeddingModel,
		})
	case NameAnthropic:
		return NewAnthropic(AnthropicConfig{
			APIKey: r.cfg.AnthropicAPIKey,
			Model:  r.cfg.DefaultLLMModel,
		})
	case NameOllama:
		return NewOllama(OllamaConfig{
			BaseURL:        r.cfg.OllamaBaseURL,
			Model:          r.cfg.DefaultLLMModel,
			EmbeddingModel: r.cfg.DefaultEmbeddingModel,
		})
	case NameOpenRouter:
		return NewOpenRouter(OpenRouterConfig{
			APIKey: r.cfg.OpenRouterAPIKey,
			Model:  r.cfg.DefaultLLMModel,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrValidation, name)
	}
}

// Register installs a pre-built instance under the given name,
// replacing any existing one. Tests use this to inject fakes.
func (r *Registry) Register(name string, p driven.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Reset closes and forgets every instance. Subsequent Gets rebuild.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		_ = p.Close()
	}
	r.providers = make(map[string]driven.Provider)
}

// CloseAll closes every instance. Called on shutdown.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	r.providers = make(map[string]driven.Provider)
	return errors.Join(errs...)
}
