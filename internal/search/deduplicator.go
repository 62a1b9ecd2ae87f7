// internal/search/deduplicator.go
package search

import (
	"strings"

	"sustainatrend-search/internal/models"
)

// Deduplicator merges the external and internal pools. External results always win a title collision.
type Deduplicator struct {
	externalSource string
	internalSource string
}

func NewDeduplicator(externalSource, internalSource string) *Deduplicator {
	return &Deduplicator{
		externalSource: externalSource,
		internalSource: internalSource,
	}
}

// Merge returns the external results in fetch order followed by the internal results whose
// lower-cased title does not match any external title. Surviving internal results are relabeled
// with the internal marker whatever source the fetcher reported.
func (d *Deduplicator) Merge(external, internal []models.SearchResult) []models.SearchResult {
	merged := make([]models.SearchResult, 0, len(external)+len(internal))
	seen := make(map[string]bool, len(external))

	for _, r := range external {
		r = Normalize(r, d.externalSource)
		seen[strings.ToLower(r.Title)] = true
		merged = append(merged, r)
	}

	for _, r := range internal {
		if seen[strings.ToLower(r.Title)] {
			continue
		}
		r = Normalize(r, d.internalSource)
		r.Source = d.internalSource
		merged = append(merged, r)
	}

	return merged
}
