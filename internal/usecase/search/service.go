// Package search runs validated queries against the internal dataset or a
// session's uploaded spreadsheet.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/engine"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/result"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
	"github.com/kailas-cloud/buscadoc/internal/logger"
	"github.com/kailas-cloud/buscadoc/internal/metrics"
)

// Outcome is the answer to one search.
type Outcome struct {
	Results      []result.Result
	TotalRecords int // size of the record set searched
	Source       domhist.Source
}

// Service handles searches over both data sources.
type Service struct {
	dataset   DatasetReader
	uploads   UploadReader
	history   HistoryWriter
	engine    *engine.Engine
	validator request.Validator
	now       func() time.Time
}

// New creates a search service with default query validation.
func New(dataset DatasetReader, uploads UploadReader, history HistoryWriter, eng *engine.Engine) *Service {
	return &Service{
		dataset:   dataset,
		uploads:   uploads,
		history:   history,
		engine:    eng,
		validator: request.NewValidator(request.DefaultMaxQueryLength, nil),
		now:       time.Now,
	}
}

// WithValidator replaces the query validator.
func (s *Service) WithValidator(v request.Validator) *Service {
	s.validator = v
	return s
}

// WithClock overrides the time source used for history timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Search runs req, records it in the search history and updates metrics.
// A blank query returns no results and is not recorded.
func (s *Service) Search(
	ctx context.Context, sess domsess.Session, req request.Request, src domhist.Source,
) (Outcome, error) {
	out, err := s.Find(ctx, sess, req, src)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			metrics.SearchRejectedTotal.Inc()
		}
		return Outcome{}, err
	}
	if req.IsBlank() {
		return out, nil
	}

	metrics.SearchesTotal.WithLabelValues(string(req.Mode()), string(src)).Inc()
	metrics.SearchResults.WithLabelValues(string(req.Mode())).Observe(float64(len(out.Results)))

	entry := domhist.SearchEntry{
		Query:     req.Query(),
		Mode:      req.Mode(),
		Source:    src,
		Results:   len(out.Results),
		User:      sess.User(),
		Timestamp: s.now(),
	}
	if err := s.history.AppendSearch(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn("failed to record search history", zap.Error(err))
	}
	return out, nil
}

// Find runs req without recording it.
func (s *Service) Find(
	ctx context.Context, sess domsess.Session, req request.Request, src domhist.Source,
) (Outcome, error) {
	data, err := s.Records(ctx, sess, src)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{TotalRecords: len(data), Source: src, Results: []result.Result{}}
	if req.IsBlank() {
		return out, nil
	}
	if err := s.validator.Validate(req.Query()); err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	if res := s.engine.Run(req, data); res != nil {
		out.Results = res
	}
	metrics.SearchDuration.WithLabelValues(string(req.Mode())).Observe(time.Since(start).Seconds())
	return out, nil
}

// Matching returns the records req selects. A blank query selects every record.
func (s *Service) Matching(
	ctx context.Context, sess domsess.Session, req request.Request, src domhist.Source,
) ([]record.Record, error) {
	if req.IsBlank() {
		return s.Records(ctx, sess, src)
	}
	out, err := s.Find(ctx, sess, req, src)
	if err != nil {
		return nil, err
	}
	return result.Records(out.Results), nil
}

// Records returns the record set behind src. A session without an upload
// has an empty uploaded set.
func (s *Service) Records(ctx context.Context, sess domsess.Session, src domhist.Source) ([]record.Record, error) {
	switch src {
	case domhist.Internal, "":
		return s.dataset.Records(), nil
	case domhist.Uploaded:
		up, err := s.uploads.GetUpload(ctx, sess.ID())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return []record.Record{}, nil
			}
			return nil, fmt.Errorf("get upload: %w", err)
		}
		return up.Records(), nil
	default:
		return nil, domain.NewFieldError("dataSource", fmt.Sprintf("unknown data source %q", src))
	}
}
