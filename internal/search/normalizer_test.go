// internal/search/normalizer_test.go
package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sustainatrend-search/internal/models"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		confidence int
		want       models.ConfidenceLevel
	}{
		{confidence: 100, want: models.ConfidenceHigh},
		{confidence: 85, want: models.ConfidenceHigh},
		{confidence: 84, want: models.ConfidenceMedium},
		{confidence: 70, want: models.ConfidenceMedium},
		{confidence: 69, want: models.ConfidenceLow},
		{confidence: 0, want: models.ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.confidence), "confidence %d", tt.confidence)
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	raw := models.SearchResult{Title: "Scope 3 Guidance"}

	got := Normalize(raw, ExternalSource)

	require.NotNil(t, got.Confidence)
	assert.Equal(t, DefaultConfidence, *got.Confidence)
	assert.Equal(t, models.ConfidenceMedium, got.ConfidenceLevel)
	assert.Equal(t, ExternalSource, got.Source)
	assert.Equal(t, models.CategoryUncategorized, got.Category)
	assert.Nil(t, got.RankingScore)

	// The input is left untouched.
	assert.Nil(t, raw.Confidence)
	assert.Empty(t, raw.Source)
}

func TestNormalize_KeepsSuppliedValues(t *testing.T) {
	raw := models.SearchResult{
		Title:           "Water Risk Atlas",
		Category:        models.CategoryWater,
		Confidence:      models.IntPtr(91),
		ConfidenceLevel: models.ConfidenceMedium,
		Source:          "partner-feed",
	}

	got := Normalize(raw, InternalSource)

	assert.Equal(t, 91, *got.Confidence)
	assert.Equal(t, models.ConfidenceMedium, got.ConfidenceLevel, "source supplied level is kept")
	assert.Equal(t, "partner-feed", got.Source)
	assert.Equal(t, models.CategoryWater, got.Category)
}

func TestNormalize_DerivesLevelFromSuppliedConfidence(t *testing.T) {
	got := Normalize(models.SearchResult{Title: "t", Confidence: models.IntPtr(60)}, InternalSource)
	assert.Equal(t, models.ConfidenceLow, got.ConfidenceLevel)

	got = Normalize(models.SearchResult{Title: "t", Confidence: models.IntPtr(88)}, InternalSource)
	assert.Equal(t, models.ConfidenceHigh, got.ConfidenceLevel)
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]models.SearchResult{{Title: "a"}, {Title: "b", Source: "x"}}, InternalSource)

	require.Len(t, got, 2)
	assert.Equal(t, InternalSource, got[0].Source)
	assert.Equal(t, "x", got[1].Source)

	assert.Empty(t, NormalizeAll(nil, InternalSource))
}
