// internal/search/config.go
package search

import (
	"sort"
	"time"

	"sustainatrend-search/internal/common/config"
)

const (
	// ExternalSource tags results that came from the live web search API.
	ExternalSource = "external-web"
	// InternalSource is the provenance marker every internal result carries after merging.
	InternalSource = "internal-generator"

	DefaultConfidence = 80
	DefaultMaxResults = 15
)

// RecencyBucket awards Boost to results younger than MaxDays.
type RecencyBucket struct {
	MaxDays int     `mapstructure:"max_days" json:"maxDays"`
	Boost   float64 `mapstructure:"boost" json:"boost"`
}

// DefaultRecencyBuckets must stay sorted by MaxDays ascending.
var DefaultRecencyBuckets = []RecencyBucket{
	{MaxDays: 7, Boost: 10},
	{MaxDays: 30, Boost: 7},
	{MaxDays: 90, Boost: 5},
	{MaxDays: 365, Boost: 3},
}

type ScoringConfig struct {
	RelevanceCap    float64
	TitleHitBoost   float64
	SnippetHitBoost float64
	// Keywords with this many characters or fewer are ignored.
	ShortKeywordLength int

	ExternalSource      string
	ExternalSourceBoost float64
	DefaultSourceBoost  float64

	CategoryBoost  float64
	RecencyBuckets []RecencyBucket
}

type Config struct {
	DefaultMaxResults int
	ExpansionTimeout  time.Duration
	ExternalTimeout   time.Duration
	InternalTimeout   time.Duration
	ExternalSource    string
	InternalSource    string
	Scoring           ScoringConfig
}

func DefaultScoringConfig() ScoringConfig {
	buckets := make([]RecencyBucket, len(DefaultRecencyBuckets))
	copy(buckets, DefaultRecencyBuckets)

	return ScoringConfig{
		RelevanceCap:        15,
		TitleHitBoost:       5,
		SnippetHitBoost:     2,
		ShortKeywordLength:  2,
		ExternalSource:      ExternalSource,
		ExternalSourceBoost: 10,
		DefaultSourceBoost:  5,
		CategoryBoost:       5,
		RecencyBuckets:      buckets,
	}
}

// NewConfig maps loaded settings onto the pipeline config. Zero values fall back to the defaults.
func NewConfig(settings config.SearchConfig) *Config {
	c := &Config{
		DefaultMaxResults: settings.DefaultMaxResults,
		ExpansionTimeout:  config.GetDuration(settings.ExpansionTimeout),
		ExternalTimeout:   config.GetDuration(settings.ExternalTimeout),
		InternalTimeout:   config.GetDuration(settings.InternalTimeout),
		ExternalSource:    ExternalSource,
		InternalSource:    InternalSource,
		Scoring:           scoringFrom(settings.Scoring),
	}
	if c.DefaultMaxResults <= 0 {
		c.DefaultMaxResults = DefaultMaxResults
	}
	if c.ExpansionTimeout <= 0 {
		c.ExpansionTimeout = 5 * time.Second
	}
	if c.ExternalTimeout <= 0 {
		c.ExternalTimeout = 12 * time.Second
	}
	if c.InternalTimeout <= 0 {
		c.InternalTimeout = 10 * time.Second
	}
	return c
}

func scoringFrom(s config.ScoringConfig) ScoringConfig {
	sc := DefaultScoringConfig()
	setIfPositive(&sc.RelevanceCap, s.RelevanceCap)
	setIfPositive(&sc.TitleHitBoost, s.TitleHitBoost)
	setIfPositive(&sc.SnippetHitBoost, s.SnippetHitBoost)
	setIfPositive(&sc.ExternalSourceBoost, s.ExternalSourceBoost)
	setIfPositive(&sc.DefaultSourceBoost, s.DefaultSourceBoost)
	setIfPositive(&sc.CategoryBoost, s.CategoryBoost)

	if len(s.RecencyBuckets) > 0 {
		buckets := make([]RecencyBucket, 0, len(s.RecencyBuckets))
		for _, b := range s.RecencyBuckets {
			buckets = append(buckets, RecencyBucket{MaxDays: b.MaxDays, Boost: b.Boost})
		}
		sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].MaxDays < buckets[j].MaxDays })
		sc.RecencyBuckets = buckets
	}
	return sc
}

func setIfPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
