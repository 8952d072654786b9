// Package config loads the typed process configuration from the
// environment. The returned Config is a passive value: built once at
// startup, passed by reference, never mutated afterwards.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration surface of the engine.
type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	JWT       JWTConfig
	LLM       LLMConfig
	Ingestion IngestionConfig
	RAG       RAGConfig
	Crawler   CrawlerConfig
	Logging   LoggingConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string
	Port int
}

// PostgresConfig configures the database pool.
type PostgresConfig struct {
	Host     string
	Port     int
	DB       string
	User     string
	Password string
	MinConns int
	MaxConns int
}

// DSN returns the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?pool_min_conns=%d&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.DB, c.MinConns, c.MaxConns)
}

// RedisConfig configures the cache client.
type RedisConfig struct {
	Host string
	Port int
	DB   int
}

// Addr returns the host:port address.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configures token verification. Token issuance lives in the
// handler layer; the core never reads these.
type JWTConfig struct {
	Secret         string
	Algorithm      string
	ExpiresMinutes int
}

// LLMConfig selects providers and models.
type LLMConfig struct {
	Provider          string
	EmbeddingProvider string

	OpenAIAPIKey     string
	AnthropicAPIKey  string
	OpenRouterAPIKey string
	OllamaBaseURL    string

	DefaultLLMModel       string
	DefaultEmbeddingModel string
	EmbeddingDimensions   int

	// EmbedConcurrency bounds the per-chunk embedding fan-out during
	// ingestion.
	EmbedConcurrency int
}

// IngestionConfig configures upload limits and chunking.
type IngestionConfig struct {
	MaxFileSizeMB     int
	ChunkSizeChars    int
	ChunkOverlapChars int
	PreserveSentences bool
}

// MaxFileSizeBytes converts the limit to bytes.
func (c IngestionConfig) MaxFileSizeBytes() int {
	return c.MaxFileSizeMB * 1024 * 1024
}

// RAGConfig configures the retrieval pipeline defaults.
type RAGConfig struct {
	DefaultTopK        int
	MaxTopK            int
	UseHybridSearch    bool
	UseReranking       bool
	UseAgenticRAG      bool
	HybridWeightVector float64
	HybridWeightBM25   float64
	RerankingTopK      int
	CacheEnabled       bool
	CacheTTL           time.Duration
	CacheKeyPrefix     string
	SynthesisPrompt    string
	SynthesisMaxTokens int
}

// CrawlerConfig configures web-crawl ingestion.
type CrawlerConfig struct {
	UserAgent      string
	Timeout        time.Duration
	RespectRobots  bool
	RequestsPerSec float64
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// defaultSynthesisPrompt grounds answers in the retrieved context.
const defaultSynthesisPrompt = "You are a helpful assistant. Answer the question using only the provided context. " +
	"If the context does not contain the answer, say so."

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// viper.AutomaticEnv only resolves keys it has seen, so every key
	// gets an explicit default above and a binding here.
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetInt("postgres.port"),
			DB:       v.GetString("postgres.db"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			MinConns: v.GetInt("postgres.min_conns"),
			MaxConns: v.GetInt("postgres.max_conns"),
		},
		Redis: RedisConfig{
			Host: v.GetString("redis.host"),
			Port: v.GetInt("redis.port"),
			DB:   v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("jwt.secret"),
			Algorithm:      v.GetString("jwt.algorithm"),
			ExpiresMinutes: v.GetInt("jwt.expires_minutes"),
		},
		LLM: LLMConfig{
			Provider:              v.GetString("llm.provider"),
			EmbeddingProvider:     v.GetString("llm.embedding_provider"),
			OpenAIAPIKey:          v.GetString("llm.openai.api_key"),
			AnthropicAPIKey:       v.GetString("llm.anthropic.api_key"),
			OpenRouterAPIKey:      v.GetString("llm.openrouter.api_key"),
			OllamaBaseURL:         v.GetString("llm.ollama.base_url"),
			DefaultLLMModel:       v.GetString("llm.default.llm.model"),
			DefaultEmbeddingModel: v.GetString("llm.default.embedding.model"),
			EmbeddingDimensions:   v.GetInt("llm.embedding.dimensions"),
			EmbedConcurrency:      v.GetInt("llm.embed.concurrency"),
		},
		Ingestion: IngestionConfig{
			MaxFileSizeMB:     v.GetInt("max.file.size.mb"),
			ChunkSizeChars:    v.GetInt("chunk.size.chars"),
			ChunkOverlapChars: v.GetInt("chunk.overlap.chars"),
			PreserveSentences: v.GetBool("chunk.preserve.sentences"),
		},
		RAG: RAGConfig{
			DefaultTopK:        v.GetInt("rag.default_top_k"),
			MaxTopK:            v.GetInt("rag.max_top_k"),
			UseHybridSearch:    v.GetBool("rag.use_hybrid_search"),
			UseReranking:       v.GetBool("rag.use_reranking"),
			UseAgenticRAG:      v.GetBool("rag.use_agentic_rag"),
			HybridWeightVector: v.GetFloat64("rag.hybrid_weight_vector"),
			HybridWeightBM25:   v.GetFloat64("rag.hybrid_weight_bm25"),
			RerankingTopK:      v.GetInt("rag.reranking_top_k"),
			CacheEnabled:       v.GetBool("rag.cache_enabled"),
			CacheTTL:           time.Duration(v.GetInt("rag.cache_ttl")) * time.Second,
			CacheKeyPrefix:     v.GetString("rag.cache_key_prefix"),
			SynthesisPrompt:    v.GetString("rag.synthesis_prompt"),
			SynthesisMaxTokens: v.GetInt("rag.synthesis_max_tokens"),
		},
		Crawler: CrawlerConfig{
			UserAgent:      v.GetString("crawler.user_agent"),
			Timeout:        v.GetDuration("crawler.timeout"),
			RespectRobots:  v.GetBool("crawler.respect_robots"),
			RequestsPerSec: v.GetFloat64("crawler.requests_per_sec"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.db", "corpusd")
	v.SetDefault("postgres.user", "corpusd")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conns", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.expires_minutes", 60)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.embedding_provider", "openai")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.ollama.base_url", "http://localhost:11434")
	v.SetDefault("llm.default.llm.model", "gpt-4o-mini")
	v.SetDefault("llm.default.embedding.model", "text-embedding-3-small")
	v.SetDefault("llm.embedding.dimensions", 1536)
	v.SetDefault("llm.embed.concurrency", 4)

	v.SetDefault("max.file.size.mb", 10)
	v.SetDefault("chunk.size.chars", 2048)
	v.SetDefault("chunk.overlap.chars", 200)
	v.SetDefault("chunk.preserve.sentences", true)

	v.SetDefault("rag.default_top_k", 5)
	v.SetDefault("rag.max_top_k", 20)
	v.SetDefault("rag.use_hybrid_search", false)
	v.SetDefault("rag.use_reranking", false)
	v.SetDefault("rag.use_agentic_rag", false)
	v.SetDefault("rag.hybrid_weight_vector", 0.7)
	v.SetDefault("rag.hybrid_weight_bm25", 0.3)
	v.SetDefault("rag.reranking_top_k", 10)
	v.SetDefault("rag.cache_enabled", true)
	v.SetDefault("rag.cache_ttl", 3600)
	v.SetDefault("rag.cache_key_prefix", "rag:query:")
	v.SetDefault("rag.synthesis_prompt", defaultSynthesisPrompt)
	v.SetDefault("rag.synthesis_max_tokens", 1024)

	v.SetDefault("crawler.user_agent", "corpusd-crawler/1.0")
	v.SetDefault("crawler.timeout", "30s")
	v.SetDefault("crawler.respect_robots", true)
	v.SetDefault("crawler.requests_per_sec", 2.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) validate() error {
	if c.RAG.DefaultTopK <= 0 || c.RAG.MaxTopK <= 0 {
		return fmt.Errorf("rag top_k values must be positive")
	}
	if c.RAG.DefaultTopK > c.RAG.MaxTopK {
		return fmt.Errorf("rag default_top_k %d exceeds max_top_k %d", c.RAG.DefaultTopK, c.RAG.MaxTopK)
	}
	if c.Ingestion.ChunkSizeChars <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.Ingestion.ChunkOverlapChars < 0 {
		return fmt.Errorf("chunk overlap must not be negative")
	}
	if c.LLM.EmbedConcurrency <= 0 {
		return fmt.Errorf("embed concurrency must be positive")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "ollama", "openrouter":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.LLM.EmbeddingProvider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.LLM.EmbeddingProvider)
	}
	return nil
}
