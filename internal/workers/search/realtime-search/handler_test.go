// internal/workers/search/realtime-search/handler_test.go
package realtimesearch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sustainatrend-search/internal/common/config"
	apperrors "sustainatrend-search/internal/common/errors"
	"sustainatrend-search/internal/common/logger"
	"sustainatrend-search/internal/models"
	"sustainatrend-search/internal/search"
	"sustainatrend-search/internal/sources/websearch"
	"sustainatrend-search/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:           3 * time.Second,
		DefaultMaxResults: 15,
		InputSchema:       DefaultInputSchema(),
	}
}

func createTestHandler(t *testing.T, searcher Searcher, opts ...Option) *Handler {
	t.Helper()
	h, err := NewHandler(createTestConfig(), searcher, logger.NewTestLogger(t), opts...)
	require.NoError(t, err)
	return h
}

type stubSearcher struct {
	resp       *search.Response
	err        error
	query      string
	maxResults int
}

func (s *stubSearcher) Search(_ context.Context, query string, maxResults int) (*search.Response, error) {
	s.query = query
	s.maxResults = maxResults
	return s.resp, s.err
}

type stubFetcher struct {
	name    string
	results []models.SearchResult
	err     error
}

func (f *stubFetcher) Name() string { return f.name }

func (f *stubFetcher) Fetch(context.Context, string, int) ([]models.SearchResult, error) {
	return f.results, f.err
}

type recordedSearch struct {
	duration time.Duration
	status   string
}

type stubRecorder struct {
	samples []recordedSearch
}

func (r *stubRecorder) RecordSearch(_ context.Context, d time.Duration, status string) {
	r.samples = append(r.samples, recordedSearch{duration: d, status: status})
}

func newOrchestrator(t *testing.T, external, internal search.Fetcher) *search.Orchestrator {
	t.Helper()
	cfg := search.NewConfig(config.SearchConfig{ExternalTimeout: 1000, InternalTimeout: 1000})
	return search.NewOrchestrator(cfg, nil, external, internal, logger.NewTestLogger(t))
}

func codeOf(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr), "expected StandardError, got %v", err)
	return stdErr.Code
}

// ==========================
// Input validation
// ==========================

func TestParseInput(t *testing.T) {
	h := createTestHandler(t, &stubSearcher{})

	tests := []struct {
		name      string
		variables string
		wantQuery string
		wantMax   *int
		wantErr   string
	}{
		{name: "query only", variables: `{"query": "carbon footprint"}`, wantQuery: "carbon footprint"},
		{name: "with max results", variables: `{"query": "water", "maxResults": 5}`, wantQuery: "water", wantMax: models.IntPtr(5)},
		{name: "extra process variables", variables: `{"query": "waste", "userId": "u-1"}`, wantQuery: "waste"},
		{name: "missing query", variables: `{"maxResults": 5}`, wantErr: "query"},
		{name: "empty query", variables: `{"query": ""}`, wantErr: "query"},
		{name: "wrong type", variables: `{"query": 42}`, wantErr: "query"},
		{name: "fractional max results", variables: `{"query": "x", "maxResults": 2.5}`, wantErr: "maxResults"},
		{name: "max results too large", variables: `{"query": "x", "maxResults": 500}`, wantErr: "maxResults"},
		{name: "zero max results", variables: `{"query": "x", "maxResults": 0}`, wantErr: "maxResults"},
		{name: "not json", variables: `query=water`, wantErr: "parse variables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(tt.variables)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrCodeInvalidSearchInput, codeOf(t, err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, input.Query)
			assert.Equal(t, tt.wantMax, input.MaxResults)
		})
	}
}

func TestNewHandler_RejectsBrokenSchema(t *testing.T) {
	cfg := createTestConfig()
	cfg.InputSchema = map[string]interface{}{"type": 7}

	_, err := NewHandler(cfg, &stubSearcher{}, logger.NewNoOpLogger())
	assert.Error(t, err)
}

// ==========================
// Execute
// ==========================

func TestExecute_UsesDefaultMaxResults(t *testing.T) {
	searcher := &stubSearcher{resp: &search.Response{SearchID: "s-1", ExpandedQuery: "water risk", Results: []models.SearchResult{}}}
	h := createTestHandler(t, searcher)

	output, err := h.Execute(context.Background(), &Input{Query: "  water risk "})
	require.NoError(t, err)

	assert.Equal(t, "water risk", searcher.query)
	assert.Equal(t, 15, searcher.maxResults)
	assert.Equal(t, "s-1", output.SearchID)
	assert.Equal(t, "water risk", output.ExpandedQuery)
	assert.NotNil(t, output.Results)
	assert.Empty(t, output.Warnings)

	_, err = h.Execute(context.Background(), &Input{Query: "water", MaxResults: models.IntPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, searcher.maxResults)
}

func TestExecute_BlankQuery(t *testing.T) {
	searcher := &stubSearcher{}
	h := createTestHandler(t, searcher)

	_, err := h.Execute(context.Background(), &Input{Query: "   "})

	assert.Equal(t, apperrors.ErrCodeInvalidSearchInput, codeOf(t, err))
	assert.Empty(t, searcher.query)
}

func TestExecute_MapsSearchErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  apperrors.ErrorCode
		retryable bool
	}{
		{name: "invalid max", err: fmt.Errorf("%w: got 0", search.ErrInvalidMaxResults), wantCode: apperrors.ErrCodeInvalidSearchInput},
		{name: "cancelled", err: fmt.Errorf("%w: %w", search.ErrSearchCancelled, context.DeadlineExceeded), wantCode: apperrors.ErrCodeSearchCancelled, retryable: true},
		{name: "unexpected", err: errors.New("boom"), wantCode: apperrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, &stubSearcher{err: tt.err})

			_, err := h.Execute(context.Background(), &Input{Query: "energy"})

			stdErr := apperrors.Normalize(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
			assert.Contains(t, err.Error(), tt.err.Error())
		})
	}
}

func TestExecute_EndToEndWithDegradedSource(t *testing.T) {
	external := &stubFetcher{name: websearch.SourceName, err: fmt.Errorf("consume: %w", websearch.ErrQuotaExhausted)}
	internal := &stubFetcher{name: "catalog-generator", results: []models.SearchResult{
		{Title: "Water Stewardship Report", Snippet: "Basin risk", URL: "https://c.example/1", Category: models.CategoryWater},
		{Title: "Carbon Ledger", Snippet: "Scope 3", URL: "https://c.example/2", Category: models.CategoryEmissions},
	}}
	h := createTestHandler(t, newOrchestrator(t, external, internal))

	output, err := h.Execute(context.Background(), &Input{Query: "water", MaxResults: models.IntPtr(5)})
	require.NoError(t, err)

	require.Len(t, output.Results, 2)
	assert.Equal(t, "Water Stewardship Report", output.Results[0].Title)
	for _, r := range output.Results {
		assert.Equal(t, search.InternalSource, r.Source)
	}
	assert.NotEmpty(t, output.SearchID)
	assert.Equal(t, "water", output.ExpandedQuery)

	require.Len(t, output.Warnings, 1)
	assert.Equal(t, string(apperrors.ErrCodeWebSearchQuotaExhausted), output.Warnings[0].Code)
	assert.Equal(t, websearch.SourceName, output.Warnings[0].Source)
}

// ==========================
// Warnings
// ==========================

func TestSourceError(t *testing.T) {
	tests := []struct {
		name   string
		source string
		err    error
		want   apperrors.ErrorCode
	}{
		{name: "catalog error keeps its code", source: "catalog-postgres",
			err: apperrors.NewQueryExecutionFailedError("esg_documents", errors.New("timeout")), want: apperrors.ErrCodeQueryExecutionFailed},
		{name: "quota", source: websearch.SourceName, err: websearch.ErrQuotaExhausted, want: apperrors.ErrCodeWebSearchQuotaExhausted},
		{name: "web timeout", source: websearch.SourceName, err: websearch.ErrWebSearchTimeout, want: apperrors.ErrCodeWebSearchTimeout},
		{name: "web deadline", source: websearch.SourceName, err: context.DeadlineExceeded, want: apperrors.ErrCodeWebSearchTimeout},
		{name: "catalog deadline", source: "catalog-generator", err: context.DeadlineExceeded, want: apperrors.ErrCodeSourceUnavailable},
		{name: "other", source: websearch.SourceName, err: errors.New("503"), want: apperrors.ErrCodeSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("%w: %s: %w", search.ErrSourceUnavailable, tt.source, tt.err)
			assert.Equal(t, tt.want, sourceError(tt.source, wrapped).Code)
		})
	}
}

func TestWarningsFor_ExpansionFallback(t *testing.T) {
	h := createTestHandler(t, &stubSearcher{})

	warnings := h.warningsFor(&search.Response{
		ExpansionErr: fmt.Errorf("%w: model overloaded", search.ErrExpansionFailed),
		Sources: []search.SourceStatus{
			{Name: websearch.SourceName, Status: "ok", Count: 3},
			{Name: "catalog-elasticsearch", Status: "failed", Err: apperrors.NewIndexNotFoundError("esg-content")},
		},
	})

	require.Len(t, warnings, 2)
	assert.Equal(t, string(apperrors.ErrCodeExpansionFailed), warnings[0].Code)
	assert.Empty(t, warnings[0].Source)
	assert.Equal(t, string(apperrors.ErrCodeIndexNotFound), warnings[1].Code)
	assert.Equal(t, "catalog-elasticsearch", warnings[1].Source)
}

// ==========================
// Timeouts and config
// ==========================

func TestJobTimeout(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	h := createTestHandler(t, &stubSearcher{})
	h.now = func() time.Time { return now }

	job := func(deadline time.Time) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Deadline: deadline.UnixMilli()}}
	}

	assert.Equal(t, 3*time.Second, h.jobTimeout(entities.Job{ActivatedJob: &pb.ActivatedJob{}}))
	assert.Equal(t, time.Second, h.jobTimeout(job(now.Add(time.Second))))
	assert.Equal(t, 3*time.Second, h.jobTimeout(job(now.Add(time.Minute))))
	assert.Equal(t, 3*time.Second, h.jobTimeout(job(now.Add(-time.Second))))
}

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{
		Search:  config.SearchConfig{DefaultMaxResults: 20},
		Workers: map[string]config.WorkerConfig{TaskType: {Enabled: true, Timeout: 45000}},
	}

	c := LoadConfig(cfg, nil)
	assert.Equal(t, 45*time.Second, c.Timeout)
	assert.Equal(t, 20, c.DefaultMaxResults)
	assert.Equal(t, DefaultInputSchema(), c.InputSchema)

	activity := &registry.Activity{
		TaskType:    TaskType,
		Timeout:     "20s",
		InputSchema: map[string]interface{}{"type": "object"},
	}
	cfg.Workers[TaskType] = config.WorkerConfig{Enabled: true}
	c = LoadConfig(cfg, activity)
	assert.Equal(t, 20*time.Second, c.Timeout)
	assert.Equal(t, activity.InputSchema, c.InputSchema)

	c = LoadConfig(&config.Config{Workers: map[string]config.WorkerConfig{TaskType: {}}}, nil)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, 15, c.DefaultMaxResults)
}

func TestRecorder(t *testing.T) {
	recorder := &stubRecorder{}
	h := createTestHandler(t, &stubSearcher{}, WithRecorder(recorder))

	h.record(context.Background(), 120*time.Millisecond, "ok")

	require.Len(t, recorder.samples, 1)
	assert.Equal(t, "ok", recorder.samples[0].status)
	assert.Equal(t, 120*time.Millisecond, recorder.samples[0].duration)
}
