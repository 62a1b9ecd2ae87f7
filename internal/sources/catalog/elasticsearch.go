// internal/sources/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "sustainatrend-search/internal/common/errors"
	"sustainatrend-search/internal/models"
)

const (
	ElasticsearchSourceName = "catalog-elasticsearch"
	DefaultIndex            = "esg-content"
)

// document is the indexed shape of a catalog entry.
type document struct {
	Title       string  `json:"title"`
	Snippet     string  `json:"snippet"`
	URL         string  `json:"url"`
	Category    string  `json:"category"`
	PublishedAt *string `json:"published_at"`
	Confidence  *int    `json:"confidence"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type ElasticsearchCatalog struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchCatalog(client *elasticsearch.Client, index string) *ElasticsearchCatalog {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchCatalog{client: client, index: index}
}

func (c *ElasticsearchCatalog) Name() string { return ElasticsearchSourceName }

func (c *ElasticsearchCatalog) Fetch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	body, err := json.Marshal(buildQuery(query, maxResults))
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(c.index, err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(c.index)
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(c.index, fmt.Errorf("search failed: %s", res.String()))
	}

	var decoded searchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(c.index, fmt.Errorf("decode response: %w", err))
	}

	results := make([]models.SearchResult, 0, len(decoded.Hits.Hits))
	for _, hit := range decoded.Hits.Hits {
		results = append(results, hit.Source.toResult(ElasticsearchSourceName))
	}
	return results, nil
}

func buildQuery(query string, size int) map[string]interface{} {
	if size < 1 {
		size = 1
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "snippet"},
				"type":   "best_fields",
			},
		},
		"size": size,
	}
}

func (d document) toResult(source string) models.SearchResult {
	return models.SearchResult{
		Title:      d.Title,
		Snippet:    d.Snippet,
		URL:        d.URL,
		Category:   d.Category,
		Date:       d.PublishedAt,
		Confidence: d.Confidence,
		Source:     source,
	}
}
