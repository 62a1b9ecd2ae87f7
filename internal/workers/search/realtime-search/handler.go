// internal/workers/search/realtime-search/handler.go
package realtimesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "sustainatrend-search/internal/common/errors"
	"sustainatrend-search/internal/common/logger"
	"sustainatrend-search/internal/common/metrics"
	"sustainatrend-search/internal/common/validation"
	"sustainatrend-search/internal/search"
	"sustainatrend-search/internal/sources/websearch"
)

const TaskType = "realtime-search"

// Searcher is satisfied by *search.Orchestrator.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (*search.Response, error)
}

// SearchRecorder receives one sample per finished job.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, duration time.Duration, status string)
}

type Handler struct {
	config       *Config
	searcher     Searcher
	validator    *validation.Validator
	errorHandler *apperrors.ErrorHandler
	recorder     SearchRecorder
	logger       logger.Logger
	now          func() time.Time
}

type Option func(*Handler)

func WithRecorder(r SearchRecorder) Option {
	return func(h *Handler) { h.recorder = r }
}

func NewHandler(config *Config, searcher Searcher, log logger.Logger, opts ...Option) (*Handler, error) {
	validator, err := validation.Compile(config.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("%s input schema: %w", TaskType, err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:       config,
		searcher:     searcher,
		validator:    validator,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := h.now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.jobTimeout(job))
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
}

// parseInput validates the raw variables against the input schema before decoding them.
func (h *Handler) parseInput(variables string) (*Input, error) {
	var document map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &document); err != nil {
		return nil, apperrors.NewInvalidSearchInputError(fmt.Sprintf("parse variables: %v", err))
	}

	result, err := h.validator.Validate(document)
	if err != nil {
		return nil, apperrors.NewInvalidSearchInputError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidSearchInputError(result.Summary()).
			WithMetadata("validationErrors", result.Errors)
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidSearchInputError(fmt.Sprintf("decode input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, apperrors.NewInvalidSearchInputError("query: must not be blank")
	}

	maxResults := h.config.DefaultMaxResults
	if input.MaxResults != nil {
		maxResults = *input.MaxResults
	}

	resp, err := h.searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, classifySearchError(err)
	}

	output := &Output{
		Results:        resp.Results,
		ElapsedSeconds: resp.ElapsedSeconds,
		SearchID:       resp.SearchID,
		ExpandedQuery:  resp.ExpandedQuery,
		Sources:        resp.Sources,
		Warnings:       h.warningsFor(resp),
	}
	return output, nil
}

func classifySearchError(err error) error {
	switch {
	case errors.Is(err, search.ErrInvalidMaxResults):
		return apperrors.NewInvalidSearchInputError(err.Error())
	case errors.Is(err, search.ErrSearchCancelled):
		return apperrors.NewSearchCancelledError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

// warningsFor reports every step the search recovered from.
func (h *Handler) warningsFor(resp *search.Response) []Warning {
	var warnings []Warning

	if resp.ExpansionErr != nil {
		stdErr := apperrors.NewExpansionFailedError(resp.ExpansionErr)
		warnings = append(warnings, Warning{Code: string(stdErr.Code), Message: stdErr.Message})
	}

	for _, status := range resp.Sources {
		if status.Err == nil {
			continue
		}
		stdErr := sourceError(status.Name, status.Err)
		h.logger.Warn("search degraded", map[string]interface{}{
			"searchId":      resp.SearchID,
			"source":        status.Name,
			"errorCode":     string(stdErr.Code),
			"errorCategory": apperrors.GetErrorCategory(stdErr.Code),
		})
		warnings = append(warnings, Warning{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
			Source:  status.Name,
		})
	}
	return warnings
}

func sourceError(source string, err error) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	switch {
	case errors.As(err, &stdErr):
		return stdErr
	case errors.Is(err, websearch.ErrQuotaExhausted):
		return apperrors.NewWebSearchQuotaExhaustedError(err)
	case errors.Is(err, websearch.ErrWebSearchTimeout),
		source == websearch.SourceName && errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewWebSearchTimeoutError(err)
	default:
		return apperrors.NewSourceUnavailableError(source, err)
	}
}

// jobTimeout bounds the search by the configured timeout and the job's own deadline.
func (h *Handler) jobTimeout(job entities.Job) time.Duration {
	timeout := h.config.Timeout
	if job.Deadline > 0 {
		remaining := time.UnixMilli(job.Deadline).Sub(h.now())
		if remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.failJob(ctx, client, job, apperrors.NewInternalError(fmt.Errorf("encode output: %w", err)), start)
		return
	}

	// The search context may already be spent; the completion must still reach the broker.
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	duration := h.now().Sub(start)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.record(ctx, duration, "ok")

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":      job.Key,
		"searchId":    output.SearchID,
		"resultCount": len(output.Results),
		"warnings":    len(output.Warnings),
		"durationMs":  duration.Milliseconds(),
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := apperrors.Normalize(err)
	duration := h.now().Sub(start)

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.record(ctx, duration, strings.ToLower(string(stdErr.Code)))

	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) record(ctx context.Context, duration time.Duration, status string) {
	if h.recorder != nil {
		h.recorder.RecordSearch(context.WithoutCancel(ctx), duration, status)
	}
}

// Execute runs a search without a job, for tooling and tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
