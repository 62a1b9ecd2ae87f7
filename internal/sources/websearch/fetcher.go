// internal/sources/websearch/fetcher.go

// Package websearch fetches live results from a Custom Search JSON API.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	commonhttp "sustainatrend-search/internal/common/http"
	"sustainatrend-search/internal/common/logger"
	"sustainatrend-search/internal/common/metrics"
	"sustainatrend-search/internal/models"
)

const SourceName = "external-web"

var (
	ErrWebSearchTimeout = errors.New("WEB_SEARCH_TIMEOUT")
	ErrQuotaExhausted   = errors.New("WEB_SEARCH_QUOTA_EXHAUSTED")
	ErrNotConfigured    = errors.New("web search api key or engine id missing")
)

// publishedDateTags are checked in order for an item's publication date.
var publishedDateTags = []string{
	"article:published_time",
	"og:updated_time",
	"article:modified_time",
}

type apiResponse struct {
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Mime    string `json:"mime"`
	Pagemap struct {
		Metatags []map[string]interface{} `json:"metatags"`
	} `json:"pagemap"`
}

type Fetcher struct {
	config  *Config
	client  *commonhttp.Client
	limiter *rate.Limiter
	quota   QuotaStore
	logger  logger.Logger
}

// NewFetcher builds a fetcher. quota may be nil for an unmetered key.
func NewFetcher(config *Config, quota QuotaStore, log logger.Logger) *Fetcher {
	limit := rate.Inf
	if config.RatePerSecond > 0 {
		limit = rate.Limit(config.RatePerSecond)
	}

	return &Fetcher{
		config:  config,
		client:  commonhttp.NewClient(config.Timeout),
		limiter: rate.NewLimiter(limit, config.Burst),
		quota:   quota,
		logger:  log.With(map[string]interface{}{"source": SourceName}),
	}
}

func (f *Fetcher) Name() string { return SourceName }

func (f *Fetcher) Fetch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if f.config.APIKey == "" || f.config.EngineID == "" {
		return nil, ErrNotConfigured
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if err := f.consumeQuota(ctx); err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := f.client.GetJSON(ctx, f.buildSearchURL(query, maxResults), &resp); err != nil {
		if commonhttp.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %w", ErrWebSearchTimeout, err)
		}
		return nil, fmt.Errorf("search API: %w", err)
	}

	results := f.processItems(resp.Items)

	f.logger.Debug("web search completed", map[string]interface{}{
		"query":       query,
		"itemCount":   len(resp.Items),
		"resultCount": len(results),
	})
	return results, nil
}

// consumeQuota fails open when the store itself is unreachable; only an exhausted allowance blocks the call.
func (f *Fetcher) consumeQuota(ctx context.Context) error {
	if f.quota == nil {
		return nil
	}

	remaining, err := f.quota.Consume(ctx)
	switch {
	case errors.Is(err, ErrQuotaExhausted):
		metrics.WebSearchQuotaRemaining.Set(0)
		return err
	case err != nil:
		f.logger.Warn("quota store unavailable, allowing request", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	metrics.WebSearchQuotaRemaining.Set(float64(remaining))
	return nil
}

func (f *Fetcher) buildSearchURL(query string, maxResults int) string {
	num := maxResults
	if num < 1 {
		num = 1
	}
	if num > MaxPageSize {
		num = MaxPageSize
	}

	baseURL, err := url.Parse(f.config.BaseURL)
	if err != nil {
		baseURL = &url.URL{Scheme: "https", Host: "www.googleapis.com", Path: "/customsearch/v1"}
	}
	params := url.Values{}
	params.Set("key", f.config.APIKey)
	params.Set("cx", f.config.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

// processItems drops non-HTML documents, untitled items and repeated links. The first kept item is the API's top
// hit and falls back to the "main" category, the rest to "info".
func (f *Fetcher) processItems(items []apiItem) []models.SearchResult {
	seen := make(map[string]bool, len(items))
	results := make([]models.SearchResult, 0, len(items))

	for _, item := range items {
		if item.Mime != "" && !strings.Contains(item.Mime, "html") {
			continue
		}
		if item.Link == "" || seen[item.Link] || strings.TrimSpace(item.Title) == "" {
			continue
		}
		seen[item.Link] = true

		fallback := models.CategoryInfo
		if len(results) == 0 {
			fallback = models.CategoryMain
		}

		results = append(results, models.SearchResult{
			Title:    strings.TrimSpace(item.Title),
			Snippet:  strings.TrimSpace(item.Snippet),
			URL:      item.Link,
			Category: models.Classify(item.Title+" "+item.Snippet, fallback),
			Date:     publishedDate(item),
			Source:   SourceName,
		})
	}
	return results
}

func publishedDate(item apiItem) *string {
	for _, tags := range item.Pagemap.Metatags {
		for _, name := range publishedDateTags {
			if v, ok := tags[name].(string); ok && strings.TrimSpace(v) != "" {
				return models.StringPtr(strings.TrimSpace(v))
			}
		}
	}
	return nil
}
