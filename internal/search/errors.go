// internal/search/errors.go
package search

import "errors"

var (
	ErrInvalidMaxResults = errors.New("INVALID_MAX_RESULTS")
	ErrSearchCancelled   = errors.New("SEARCH_CANCELLED")

	// Recovered inside the pipeline and reported on the Response, never returned.
	ErrSourceUnavailable = errors.New("SOURCE_UNAVAILABLE")
	ErrExpansionFailed   = errors.New("EXPANSION_FAILED")
	ErrMalformedDate     = errors.New("MALFORMED_DATE")
)
