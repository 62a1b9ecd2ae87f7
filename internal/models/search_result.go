// internal/models/search_result.go
package models

// ConfidenceLevel is the coarse bucket derived from a numeric confidence.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// SearchResult is the single record shape shared by fetchers, the scorer and the worker output.
// Optional fields are pointers so "absent" stays distinguishable from a zero value.
type SearchResult struct {
	Title           string          `json:"title"`
	Snippet         string          `json:"snippet"`
	URL             string          `json:"url"`
	Category        string          `json:"category"`
	Date            *string         `json:"date,omitempty"`
	Confidence      *int            `json:"confidence,omitempty"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level,omitempty"`
	Source          string          `json:"source"`
	RankingScore    *float64        `json:"ranking_score,omitempty"`
}

// ConfidenceValue returns the confidence or 0 when it has not been set.
func (r SearchResult) ConfidenceValue() int {
	if r.Confidence == nil {
		return 0
	}
	return *r.Confidence
}

// Score returns the ranking score or 0 when the result has not been scored.
func (r SearchResult) Score() float64 {
	if r.RankingScore == nil {
		return 0
	}
	return *r.RankingScore
}

// StringPtr and IntPtr help fetchers and tests fill optional fields.
func StringPtr(s string) *string { return &s }

func IntPtr(i int) *int { return &i }

func Float64Ptr(f float64) *float64 { return &f }
