// internal/sources/catalog/generator_test.go
package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sustainatrend-search/internal/models"
)

var generatorNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestGenerator(opts ...GeneratorOption) *Generator {
	opts = append([]GeneratorOption{WithGeneratorClock(func() time.Time { return generatorNow })}, opts...)
	return NewGenerator(opts...)
}

// sequence replays fixed draws, wrapping each into range.
type sequence struct {
	values []int
	next   int
}

func (s *sequence) Intn(n int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

func TestGenerator_DeterministicPerQuery(t *testing.T) {
	g := newTestGenerator()
	ctx := context.Background()

	first, err := g.Fetch(ctx, "carbon  footprint", 8)
	require.NoError(t, err)
	second, err := g.Fetch(ctx, "carbon footprint", 8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 8)
}

func TestGenerator_ResultShape(t *testing.T) {
	g := newTestGenerator()

	results, err := g.Fetch(context.Background(), "green steel", 15)
	require.NoError(t, err)
	require.Len(t, results, 15)

	oldest := generatorNow.Truncate(24*time.Hour).AddDate(0, 0, -maxAgeDays)
	titles := map[string]bool{}
	for _, r := range results {
		assert.Contains(t, r.Title, "Green Steel")
		assert.Contains(t, r.Snippet, "green steel")
		assert.Contains(t, models.TopicCategories, r.Category)
		assert.True(t, strings.HasPrefix(r.URL, generatedDomain+"/"+r.Category+"/green-steel-"))
		assert.Equal(t, GeneratorSourceName, r.Source)

		require.NotNil(t, r.Confidence)
		assert.GreaterOrEqual(t, *r.Confidence, minConfidence)
		assert.LessOrEqual(t, *r.Confidence, maxConfidence)

		require.NotNil(t, r.Date)
		published, err := time.Parse("2006-01-02", *r.Date)
		require.NoError(t, err)
		assert.False(t, published.After(generatorNow))
		assert.True(t, published.After(oldest))

		assert.False(t, titles[r.Title], "duplicate title %q", r.Title)
		titles[r.Title] = true
	}
}

func TestGenerator_InjectedRandomSource(t *testing.T) {
	g := newTestGenerator(WithRandomSource(func(int64) RandomSource {
		// category, template, age, confidence
		return &sequence{values: []int{2, 0, 3, 35}}
	}))

	results, err := g.Fetch(context.Background(), "drought", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, models.CategoryWater, r.Category)
	assert.Equal(t, "Water Stewardship in Drought", r.Title)
	assert.Equal(t, "2025-06-12", *r.Date)
	assert.Equal(t, 95, *r.Confidence)
}

func TestGenerator_Bounds(t *testing.T) {
	g := newTestGenerator()
	ctx := context.Background()

	results, err := g.Fetch(ctx, "waste", 100)
	require.NoError(t, err)
	assert.Len(t, results, maxGenerated)

	results, err = g.Fetch(ctx, "waste", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = g.Fetch(ctx, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGenerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator().Fetch(ctx, "energy", 5)
	assert.ErrorIs(t, err, context.Canceled)
}
