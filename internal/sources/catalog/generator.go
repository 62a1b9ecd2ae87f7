// internal/sources/catalog/generator.go

// Package catalog provides the internal candidate sources: a deterministic generator and
// Elasticsearch and Postgres backed catalogs of ESG content.
package catalog

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sustainatrend-search/internal/models"
)

const (
	GeneratorSourceName = "catalog-generator"

	maxGenerated    = 20
	minConfidence   = 60
	maxConfidence   = 95
	maxAgeDays      = 400
	generatedDomain = "https://insights.sustainatrend.example"
)

// RandomSource is the only randomness the generator uses. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

type template struct {
	title   string
	snippet string
}

var templates = map[string][]template{
	models.CategoryEmissions: {
		{"%s: Scope 3 Emissions Reduction Roadmap", "A phased plan for cutting value chain greenhouse gas emissions related to %s."},
		{"Carbon Accounting for %s", "Methods for measuring and disclosing carbon footprint across %s operations."},
		{"%s and the Net Zero Transition", "Interim targets and decarbonization levers for %s."},
	},
	models.CategoryEnergy: {
		{"Renewable Energy Procurement for %s", "Power purchase agreements and on-site solar options for %s."},
		{"%s: Energy Efficiency Benchmarks", "Sector benchmarks and retrofit savings relevant to %s."},
	},
	models.CategoryWater: {
		{"Water Stewardship in %s", "Managing withdrawal, discharge and drought exposure for %s."},
		{"%s: Watershed Risk Assessment", "Basin-level water stress indicators applied to %s."},
	},
	models.CategoryWaste: {
		{"Circular Economy Strategies for %s", "Design-for-reuse and recycling programmes covering %s."},
		{"%s: Packaging Waste Reduction", "Cutting landfill volumes and single-use packaging in %s."},
	},
	models.CategorySocial: {
		{"Social Impact Reporting on %s", "Community, labor and human rights disclosures for %s."},
		{"%s: Diversity and Inclusion Metrics", "Workforce diversity indicators and targets tied to %s."},
	},
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Generator synthesizes plausible ESG catalog entries for a query. The same query and clock
// always yield the same entries.
type Generator struct {
	newSource func(seed int64) RandomSource
	now       func() time.Time
}

type GeneratorOption func(*Generator)

// WithRandomSource replaces the per-query seeded math/rand source.
func WithRandomSource(newSource func(seed int64) RandomSource) GeneratorOption {
	return func(g *Generator) { g.newSource = newSource }
}

func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		newSource: func(seed int64) RandomSource { return rand.New(rand.NewSource(seed)) },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Name() string { return GeneratorSourceName }

func (g *Generator) Fetch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topic := strings.Join(strings.Fields(query), " ")
	if topic == "" {
		return []models.SearchResult{}, nil
	}

	count := maxResults
	if count > maxGenerated {
		count = maxGenerated
	}
	if count < 1 {
		count = 1
	}

	rng := g.newSource(seedFor(topic))
	// Truncate so results are stable within a day.
	today := g.now().UTC().Truncate(24 * time.Hour)
	// Casers are stateful, so one per call.
	display := cases.Title(language.English).String(topic)
	seen := make(map[string]bool, count)

	results := make([]models.SearchResult, 0, count)
	for i := 0; i < count; i++ {
		category := models.TopicCategories[rng.Intn(len(models.TopicCategories))]
		options := templates[category]
		tpl := options[rng.Intn(len(options))]

		title := fmt.Sprintf(tpl.title, display)
		if seen[title] {
			title = fmt.Sprintf("%s (Part %d)", title, i+1)
		}
		seen[title] = true

		published := today.AddDate(0, 0, -rng.Intn(maxAgeDays))
		confidence := minConfidence + rng.Intn(maxConfidence-minConfidence+1)

		results = append(results, models.SearchResult{
			Title:      title,
			Snippet:    fmt.Sprintf(tpl.snippet, topic),
			URL:        fmt.Sprintf("%s/%s/%s-%d", generatedDomain, category, slug(topic), i+1),
			Category:   category,
			Date:       models.StringPtr(published.Format("2006-01-02")),
			Confidence: models.IntPtr(confidence),
			Source:     GeneratorSourceName,
		})
	}
	return results, nil
}

func seedFor(topic string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(topic)))
	return int64(h.Sum64())
}

func slug(s string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
