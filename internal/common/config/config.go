// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	APIs     APIsConfig              `mapstructure:"apis"`
	Search   SearchConfig            `mapstructure:"search"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Registry RegistryConfig          `mapstructure:"registry"`
	Server   ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL shorthand
}

// GetURL returns the URL field or the first address.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- External APIs ---

type APIsConfig struct {
	Expansion ExpansionConfig `mapstructure:"expansion"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
}

// ExpansionConfig selects and configures the LLM used to rewrite queries.
// Provider is one of "openai", "anthropic" or "none".
type ExpansionConfig struct {
	Provider  string `mapstructure:"provider"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds

	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"openai"`

	Anthropic struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"anthropic"`
}

type WebSearchConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	EngineID string `mapstructure:"engine_id"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds

	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
	DailyQuota    int     `mapstructure:"daily_quota"`
	// QuotaStore is "redis" to share the quota across replicas, anything else keeps it in memory.
	QuotaStore string `mapstructure:"quota_store"`
}

// --- Search ---

type SearchConfig struct {
	DefaultMaxResults int `mapstructure:"default_max_results"`
	ExpansionTimeout  int `mapstructure:"expansion_timeout"` // milliseconds
	ExternalTimeout   int `mapstructure:"external_timeout"`  // milliseconds
	InternalTimeout   int `mapstructure:"internal_timeout"`  // milliseconds

	// InternalBackend is one of "generator", "elasticsearch" or "postgres".
	InternalBackend    string `mapstructure:"internal_backend"`
	ElasticsearchIndex string `mapstructure:"elasticsearch_index"`
	PostgresTable      string `mapstructure:"postgres_table"`

	Scoring ScoringConfig `mapstructure:"scoring"`
}

// ScoringConfig overrides the ranking weights. Zero values keep the built-in defaults.
type ScoringConfig struct {
	RelevanceCap        float64               `mapstructure:"relevance_cap"`
	TitleHitBoost       float64               `mapstructure:"title_hit_boost"`
	SnippetHitBoost     float64               `mapstructure:"snippet_hit_boost"`
	ExternalSourceBoost float64               `mapstructure:"external_source_boost"`
	DefaultSourceBoost  float64               `mapstructure:"default_source_boost"`
	CategoryBoost       float64               `mapstructure:"category_boost"`
	RecencyBuckets      []RecencyBucketConfig `mapstructure:"recency_buckets"`
}

type RecencyBucketConfig struct {
	MaxDays int     `mapstructure:"max_days"`
	Boost   float64 `mapstructure:"boost"`
}

// --- Service ---

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}
