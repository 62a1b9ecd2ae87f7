// internal/search/normalizer.go
package search

import (
	"strings"

	"sustainatrend-search/internal/models"
)

// LevelFor derives the confidence level: high >= 85, medium >= 70, low otherwise.
func LevelFor(confidence int) models.ConfidenceLevel {
	switch {
	case confidence >= 85:
		return models.ConfidenceHigh
	case confidence >= 70:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Normalize fills the defaults a raw candidate may be missing. It never fails.
func Normalize(raw models.SearchResult, defaultSource string) models.SearchResult {
	r := raw

	if r.Confidence == nil {
		r.Confidence = models.IntPtr(DefaultConfidence)
	}
	if r.ConfidenceLevel == "" {
		r.ConfidenceLevel = LevelFor(*r.Confidence)
	}
	if r.Source == "" {
		r.Source = defaultSource
	}
	if strings.TrimSpace(r.Category) == "" {
		r.Category = models.CategoryUncategorized
	}

	return r
}

func NormalizeAll(raws []models.SearchResult, defaultSource string) []models.SearchResult {
	out := make([]models.SearchResult, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw, defaultSource))
	}
	return out
}
