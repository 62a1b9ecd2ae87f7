// internal/workers/search/realtime-search/config.go
package realtimesearch

import (
	"time"

	"sustainatrend-search/internal/common/config"
	"sustainatrend-search/pkg/registry"
)

type Config struct {
	Timeout           time.Duration
	DefaultMaxResults int
	InputSchema       map[string]interface{}
}

// LoadConfig merges the worker settings with the registry entry for TaskType. activity may be nil.
func LoadConfig(cfg *config.Config, activity *registry.Activity) *Config {
	workerCfg := config.GetWorkerConfig(cfg, TaskType)

	c := &Config{
		Timeout:           config.GetDuration(workerCfg.Timeout),
		DefaultMaxResults: cfg.Search.DefaultMaxResults,
		InputSchema:       DefaultInputSchema(),
	}

	if activity != nil {
		if len(activity.InputSchema) > 0 {
			c.InputSchema = activity.InputSchema
		}
		if c.Timeout <= 0 {
			c.Timeout = activity.TimeoutDuration(0)
		}
	}

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.DefaultMaxResults <= 0 {
		c.DefaultMaxResults = 15
	}
	return c
}

// DefaultInputSchema is used when the registry has no entry for the task.
func DefaultInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
				"maxLength": 500,
			},
			"maxResults": map[string]interface{}{
				"type":    "integer",
				"minimum": 1,
				"maximum": 50,
			},
		},
		"required": []interface{}{"query"},
	}
}
