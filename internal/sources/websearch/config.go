// internal/sources/websearch/config.go
package websearch

import (
	"time"

	"sustainatrend-search/internal/common/config"
)

const (
	// MaxPageSize is the most results the search API returns per request.
	MaxPageSize = 10

	DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"
)

type Config struct {
	BaseURL  string
	APIKey   string
	EngineID string
	Timeout  time.Duration

	RatePerSecond float64
	Burst         int
	DailyQuota    int
}

func NewConfig(cfg config.WebSearchConfig) *Config {
	c := &Config{
		BaseURL:       cfg.BaseURL,
		APIKey:        cfg.APIKey,
		EngineID:      cfg.EngineID,
		Timeout:       config.GetDuration(cfg.Timeout),
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		DailyQuota:    cfg.DailyQuota,
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return c
}
