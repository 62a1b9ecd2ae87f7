// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendGenerator     = "generator"
	BackendElasticsearch = "elasticsearch"
	BackendPostgres      = "postgres"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"

	QuotaStoreRedis  = "redis"
	QuotaStoreMemory = "memory"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml when present and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return decode(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key viper should know about so env overrides reach them
// even when the yaml file omits the key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sustainatrend-search")
	v.SetDefault("app.environment", "development")

	v.SetDefault("camunda.broker_address", "")
	v.SetDefault("camunda.max_jobs_active", 10)
	v.SetDefault("camunda.timeout", 30000)
	v.SetDefault("camunda.request_timeout", 30000)

	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.max_connections", 25)
	v.SetDefault("database.postgres.max_idle", 5)
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.elasticsearch.url", "")
	v.SetDefault("database.redis.address", "")

	v.SetDefault("apis.expansion.provider", ProviderOpenAI)
	v.SetDefault("apis.expansion.max_tokens", 64)
	v.SetDefault("apis.expansion.timeout", 5000)
	v.SetDefault("apis.expansion.openai.api_key", "")
	v.SetDefault("apis.expansion.openai.model", "gpt-4o-mini")
	v.SetDefault("apis.expansion.anthropic.api_key", "")
	v.SetDefault("apis.expansion.anthropic.model", "claude-3-5-haiku-latest")

	v.SetDefault("apis.web_search.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("apis.web_search.api_key", "")
	v.SetDefault("apis.web_search.engine_id", "")
	v.SetDefault("apis.web_search.timeout", 10000)
	v.SetDefault("apis.web_search.rate_per_second", 5.0)
	v.SetDefault("apis.web_search.burst", 5)
	v.SetDefault("apis.web_search.daily_quota", 100)
	v.SetDefault("apis.web_search.quota_store", QuotaStoreMemory)

	v.SetDefault("search.default_max_results", 15)
	v.SetDefault("search.expansion_timeout", 5000)
	v.SetDefault("search.external_timeout", 12000)
	v.SetDefault("search.internal_timeout", 10000)
	v.SetDefault("search.internal_backend", BackendGenerator)
	v.SetDefault("search.elasticsearch_index", "esg-content")
	v.SetDefault("search.postgres_table", "esg_documents")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("registry.path", "configs/activity-registry.json")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10000)
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig picks up secrets from their conventional env names when the yaml left them blank.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.APIs.Expansion.OpenAI.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&cfg.APIs.Expansion.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setIfEmpty(&cfg.APIs.WebSearch.APIKey, "WEB_SEARCH_API_KEY")
	setIfEmpty(&cfg.APIs.WebSearch.EngineID, "WEB_SEARCH_ENGINE_ID")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// applyDefaults fills values viper defaults cannot reach, such as entries of the workers map.
func applyDefaults(cfg *Config) {
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	cfg.APIs.Expansion.Provider = strings.ToLower(strings.TrimSpace(cfg.APIs.Expansion.Provider))
	cfg.Search.InternalBackend = strings.ToLower(strings.TrimSpace(cfg.Search.InternalBackend))
}

// validateConfig checks only the settings the selected backends depend on.
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if cfg.Search.DefaultMaxResults <= 0 {
		return fmt.Errorf("search.default_max_results must be positive")
	}

	switch cfg.Search.InternalBackend {
	case BackendGenerator:
	case BackendElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for the elasticsearch backend")
		}
	case BackendPostgres:
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" || cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres host, database and user are required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown search.internal_backend %q", cfg.Search.InternalBackend)
	}

	switch cfg.APIs.Expansion.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderNone:
	default:
		return fmt.Errorf("unknown apis.expansion.provider %q", cfg.APIs.Expansion.Provider)
	}

	if cfg.APIs.WebSearch.QuotaStore == QuotaStoreRedis && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when apis.web_search.quota_store is redis")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
