// internal/search/orchestrator.go
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sustainatrend-search/internal/common/logger"
	"sustainatrend-search/internal/common/metrics"
	"sustainatrend-search/internal/models"
)

const tracerName = "sustainatrend-search/internal/search"

// Expander rewrites a query before it is sent to the sources.
type Expander interface {
	Expand(ctx context.Context, query string) (string, error)
}

// Fetcher returns raw candidates from one source. maxResults is a hint.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

type SourceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`

	Err error `json:"-"`
}

type Response struct {
	SearchID       string                `json:"searchId"`
	Query          string                `json:"query"`
	ExpandedQuery  string                `json:"expandedQuery"`
	Results        []models.SearchResult `json:"results"`
	ElapsedSeconds float64               `json:"elapsedSeconds"`
	Sources        []SourceStatus        `json:"sources"`

	// ExpansionErr is set when the original query was used because expansion failed.
	ExpansionErr error `json:"-"`
}

// Orchestrator runs one search end to end. It holds no per-search state and is safe for concurrent use.
type Orchestrator struct {
	config   *Config
	expander Expander
	external Fetcher
	internal Fetcher
	scorer   *Scorer
	dedup    *Deduplicator
	tracer   trace.Tracer
	logger   logger.Logger
}

type Option func(*Orchestrator)

// WithClock freezes the time used for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.scorer = NewScorer(o.config.Scoring, now)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

func NewOrchestrator(config *Config, expander Expander, external, internal Fetcher, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config:   config,
		expander: expander,
		external: external,
		internal: internal,
		scorer:   NewScorer(config.Scoring, nil),
		dedup:    NewDeduplicator(config.ExternalSource, config.InternalSource),
		tracer:   otel.Tracer(tracerName),
		logger:   log.With(map[string]interface{}{"component": "search"}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Search expands the query, fetches both sources concurrently, merges, scores and diversifies.
// Source and expansion failures degrade to empty lists and the original query. Only an invalid
// maxResults or a cancelled ctx produce an error, and in that case no results are returned.
func (o *Orchestrator) Search(ctx context.Context, query string, maxResults int) (*Response, error) {
	start := time.Now()

	if maxResults <= 0 {
		metrics.SearchRequests.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: maxResults must be positive, got %d", ErrInvalidMaxResults, maxResults)
	}

	searchID := uuid.NewString()
	ctx, span := o.tracer.Start(ctx, "search.Search", trace.WithAttributes(
		attribute.String("search.id", searchID),
		attribute.Int("search.max_results", maxResults),
	))
	defer span.End()

	log := o.logger.With(map[string]interface{}{"searchId": searchID})
	log.Info("search started", map[string]interface{}{
		"query":      query,
		"maxResults": maxResults,
	})

	expanded, expansionErr := o.expand(ctx, query, log)
	if err := ctx.Err(); err != nil {
		return nil, o.cancelled(span, log, err)
	}

	var (
		wg                       sync.WaitGroup
		externalRaw, internalRaw []models.SearchResult
		externalErr, internalErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		externalRaw, externalErr = o.fetch(ctx, o.external, o.config.ExternalTimeout, expanded, maxResults)
	}()
	go func() {
		defer wg.Done()
		internalRaw, internalErr = o.fetch(ctx, o.internal, o.config.InternalTimeout, expanded, maxResults)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, o.cancelled(span, log, err)
	}

	sources := []SourceStatus{
		o.sourceStatus(log, o.external.Name(), len(externalRaw), externalErr),
		o.sourceStatus(log, o.internal.Name(), len(internalRaw), internalErr),
	}
	if externalErr != nil {
		externalRaw = nil
	}
	if internalErr != nil {
		internalRaw = nil
	}

	external := NormalizeAll(externalRaw, o.config.ExternalSource)
	internal := NormalizeAll(internalRaw, o.config.InternalSource)
	merged := o.dedup.Merge(external, internal)

	scored := o.scorer.ScoreAll(merged, Keywords(query))
	SortByScore(scored)

	results := Diversify(scored, maxResults)
	if results == nil {
		results = []models.SearchResult{}
	}

	elapsed := time.Since(start)
	metrics.SearchRequests.WithLabelValues("ok").Inc()
	metrics.SearchDuration.Observe(elapsed.Seconds())

	span.SetAttributes(
		attribute.Int("search.merged", len(merged)),
		attribute.Int("search.results", len(results)),
	)

	log.Info("search completed", map[string]interface{}{
		"expandedQuery": expanded,
		"externalCount": len(externalRaw),
		"internalCount": len(internalRaw),
		"mergedCount":   len(merged),
		"resultCount":   len(results),
		"durationMs":    elapsed.Milliseconds(),
	})

	return &Response{
		SearchID:       searchID,
		Query:          query,
		ExpandedQuery:  expanded,
		Results:        results,
		ElapsedSeconds: elapsed.Seconds(),
		Sources:        sources,
		ExpansionErr:   expansionErr,
	}, nil
}

func (o *Orchestrator) expand(ctx context.Context, query string, log logger.Logger) (string, error) {
	if o.expander == nil {
		return query, nil
	}

	ctx, span := o.tracer.Start(ctx, "search.expand")
	defer span.End()

	expanded, err := runBounded(ctx, o.config.ExpansionTimeout, func(ctx context.Context) (string, error) {
		return o.expander.Expand(ctx, query)
	})
	if err == nil && expanded == "" {
		err = errors.New("empty expansion")
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExpansionFailed, err)
		span.RecordError(err)
		metrics.SearchExpansionFallbacks.WithLabelValues(failureReason(err)).Inc()
		log.Warn("query expansion failed, using original query", map[string]interface{}{
			"error": err.Error(),
		})
		return query, err
	}

	span.SetAttributes(attribute.String("search.expanded_query", expanded))
	return expanded, nil
}

func (o *Orchestrator) fetch(ctx context.Context, f Fetcher, timeout time.Duration, query string, maxResults int) ([]models.SearchResult, error) {
	ctx, span := o.tracer.Start(ctx, "search.fetch", trace.WithAttributes(
		attribute.String("search.source", f.Name()),
	))
	defer span.End()

	results, err := runBounded(ctx, timeout, func(ctx context.Context) ([]models.SearchResult, error) {
		return f.Fetch(ctx, query, maxResults)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, f.Name(), err)
	}

	span.SetAttributes(attribute.Int("search.raw_results", len(results)))
	metrics.SearchSourceResults.WithLabelValues(f.Name()).Observe(float64(len(results)))
	return results, nil
}

func (o *Orchestrator) sourceStatus(log logger.Logger, name string, count int, err error) SourceStatus {
	if err == nil {
		return SourceStatus{Name: name, Status: "ok", Count: count}
	}

	metrics.SearchSourceFailures.WithLabelValues(name, failureReason(err)).Inc()
	log.Warn("source unavailable, continuing without it", map[string]interface{}{
		"source": name,
		"error":  err.Error(),
	})
	return SourceStatus{Name: name, Status: "failed", Error: err.Error(), Err: err}
}

func (o *Orchestrator) cancelled(span trace.Span, log logger.Logger, cause error) error {
	err := fmt.Errorf("%w: %w", ErrSearchCancelled, cause)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.SearchRequests.WithLabelValues("cancelled").Inc()
	log.Warn("search cancelled", map[string]interface{}{
		"error": cause.Error(),
	})
	return err
}

// runBounded calls fn and returns no later than timeout, even if fn ignores its context.
func runBounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return "error"
}
