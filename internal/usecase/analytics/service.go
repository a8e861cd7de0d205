// Package analytics summarises datasets and the search history.
package analytics

import (
	"context"
	"fmt"

	domanalytics "github.com/kailas-cloud/buscadoc/internal/domain/analytics"
	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
)

// Service computes analytics on demand.
type Service struct {
	records RecordSource
	history HistoryReader
}

// New creates an analytics service.
func New(records RecordSource, history HistoryReader) *Service {
	return &Service{records: records, history: history}
}

// Dataset profiles the record set behind src.
func (s *Service) Dataset(ctx context.Context, sess domsess.Session, src domhist.Source) (domanalytics.Dataset, error) {
	recs, err := s.records.Records(ctx, sess, src)
	if err != nil {
		return domanalytics.Dataset{}, fmt.Errorf("load %s records: %w", src, err)
	}
	return domanalytics.DatasetStats(recs), nil
}

// Searches summarises the retained search history.
func (s *Service) Searches(ctx context.Context) (domanalytics.Searches, error) {
	entries, err := s.history.Searches(ctx)
	if err != nil {
		return domanalytics.Searches{}, fmt.Errorf("read search history: %w", err)
	}
	return domanalytics.SearchStats(entries), nil
}

// Uploads returns the retained upload history, newest first.
func (s *Service) Uploads(ctx context.Context) ([]domhist.UploadEntry, error) {
	entries, err := s.history.Uploads(ctx)
	if err != nil {
		return nil, fmt.Errorf("read upload history: %w", err)
	}
	out := make([]domhist.UploadEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}
