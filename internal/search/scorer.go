// internal/search/scorer.go
package search

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"sustainatrend-search/internal/models"
)

// CategoryStats is a snapshot of category counts for one pool. It is built before any
// result is scored and never updated afterwards.
type CategoryStats struct {
	Counts map[string]int
	Mean   float64
}

func NewCategoryStats(pool []models.SearchResult) CategoryStats {
	counts := make(map[string]int)
	for _, r := range pool {
		counts[r.Category]++
	}

	mean := 0.0
	if len(counts) > 0 {
		mean = float64(len(pool)) / float64(len(counts))
	}

	return CategoryStats{Counts: counts, Mean: mean}
}

// Underrepresented reports whether category occurs strictly less often than the mean.
func (s CategoryStats) Underrepresented(category string) bool {
	return float64(s.Counts[category]) < s.Mean
}

type Scorer struct {
	config ScoringConfig
	now    func() time.Time
}

func NewScorer(config ScoringConfig, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{config: config, now: now}
}

// Keywords splits the original query on whitespace, lower-cased and de-duplicated.
func Keywords(query string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, field := range strings.Fields(query) {
		kw := strings.ToLower(field)
		if seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}
	return keywords
}

// Score returns confidence plus the four boosts. Missing or malformed fields contribute 0.
func (s *Scorer) Score(r models.SearchResult, keywords []string, stats CategoryStats) float64 {
	return float64(r.ConfidenceValue()) +
		s.RelevanceBoost(r, keywords) +
		s.SourceBoost(r) +
		s.RecencyBoost(r) +
		s.CategoryBoost(r, stats)
}

// ScoreAll scores a copy of the pool against a single CategoryStats snapshot.
func (s *Scorer) ScoreAll(pool []models.SearchResult, keywords []string) []models.SearchResult {
	stats := NewCategoryStats(pool)

	scored := make([]models.SearchResult, len(pool))
	for i, r := range pool {
		score := s.Score(r, keywords, stats)
		r.RankingScore = &score
		scored[i] = r
	}
	return scored
}

func (s *Scorer) RelevanceBoost(r models.SearchResult, keywords []string) float64 {
	title := strings.ToLower(r.Title)
	snippet := strings.ToLower(r.Snippet)

	boost := 0.0
	for _, kw := range keywords {
		if utf8.RuneCountInString(kw) <= s.config.ShortKeywordLength {
			continue
		}
		kw = strings.ToLower(kw)
		if strings.Contains(title, kw) {
			boost += s.config.TitleHitBoost
		}
		if strings.Contains(snippet, kw) {
			boost += s.config.SnippetHitBoost
		}
	}

	return math.Min(boost, s.config.RelevanceCap)
}

func (s *Scorer) SourceBoost(r models.SearchResult) float64 {
	if r.Source == s.config.ExternalSource {
		return s.config.ExternalSourceBoost
	}
	return s.config.DefaultSourceBoost
}

func (s *Scorer) RecencyBoost(r models.SearchResult) float64 {
	if r.Date == nil {
		return 0
	}

	published, err := ParseDate(*r.Date)
	if err != nil {
		return 0
	}

	daysOld := int(math.Floor(s.now().Sub(published).Hours() / 24))
	for _, bucket := range s.config.RecencyBuckets {
		if daysOld < bucket.MaxDays {
			return bucket.Boost
		}
	}
	return 0
}

func (s *Scorer) CategoryBoost(r models.SearchResult, stats CategoryStats) float64 {
	if stats.Underrepresented(r.Category) {
		return s.config.CategoryBoost
	}
	return 0
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the ISO-8601 shapes sources emit. Values without a zone are read as UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedDate)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, value)
}
