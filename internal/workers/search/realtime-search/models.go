// internal/workers/search/realtime-search/models.go
package realtimesearch

import (
	"sustainatrend-search/internal/models"
	"sustainatrend-search/internal/search"
)

type Input struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"maxResults,omitempty"`
}

type Output struct {
	Results        []models.SearchResult `json:"results"`
	ElapsedSeconds float64               `json:"elapsedSeconds"`
	SearchID       string                `json:"searchId"`
	ExpandedQuery  string                `json:"expandedQuery"`
	Sources        []search.SourceStatus `json:"sources"`
	Warnings       []Warning             `json:"warnings,omitempty"`
}

// Warning describes a degraded step that did not fail the job.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}
