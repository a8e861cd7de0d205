// Package dataset manages session uploads and edits to the internal dataset.
package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
	"github.com/kailas-cloud/buscadoc/internal/ingest"
	"github.com/kailas-cloud/buscadoc/internal/logger"
	"github.com/kailas-cloud/buscadoc/internal/metrics"
)

// DefaultMaxUploadBytes caps upload size when none is configured.
const DefaultMaxUploadBytes = 32 << 20

// UploadSummary describes an accepted upload.
type UploadSummary struct {
	Filename string
	Records  int
	Columns  []string
}

// Status describes what a session can search.
type Status struct {
	HasUpload       bool
	Filename        string
	Records         int
	InternalRecords int
	UploadedAt      time.Time
}

// Service handles uploads, clearing and internal record edits.
type Service struct {
	uploads  UploadStore
	internal InternalDataset
	history  HistoryWriter
	allowed  []string
	maxBytes int64
	now      func() time.Time
}

// New creates a dataset service.
func New(uploads UploadStore, internal InternalDataset, history HistoryWriter) *Service {
	return &Service{
		uploads:  uploads,
		internal: internal,
		history:  history,
		allowed:  ingest.DefaultExtensions,
		maxBytes: DefaultMaxUploadBytes,
		now:      time.Now,
	}
}

// WithAllowedExtensions sets accepted upload extensions (without dot).
func (s *Service) WithAllowedExtensions(exts []string) *Service {
	if len(exts) > 0 {
		s.allowed = exts
	}
	return s
}

// WithMaxBytes caps the upload size.
func (s *Service) WithMaxBytes(n int64) *Service {
	if n > 0 {
		s.maxBytes = n
	}
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upload parses a spreadsheet and makes it the session's uploaded dataset,
// replacing any previous one.
func (s *Service) Upload(
	ctx context.Context, sess domsess.Session, filename string, r io.Reader,
) (UploadSummary, error) {
	summary, err := s.upload(ctx, sess, filename, r)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return UploadSummary{}, err
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	return summary, nil
}

func (s *Service) upload(
	ctx context.Context, sess domsess.Session, filename string, r io.Reader,
) (UploadSummary, error) {
	if filename == "" {
		return UploadSummary{}, domain.NewFieldError("file", "no file selected")
	}
	if !ingest.AllowedFile(filename, s.allowed) {
		return UploadSummary{}, fmt.Errorf("%w: file type not allowed", domain.ErrUnsupportedFile)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return UploadSummary{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return UploadSummary{}, fmt.Errorf("%w: limit is %d bytes", domain.ErrFileTooLarge, s.maxBytes)
	}

	now := s.now()
	stored := ingest.SecureFilename(filename, now)
	records, err := ingest.Read(stored, bytes.NewReader(data))
	if err != nil {
		logger.FromContext(ctx).Warn("upload rejected",
			zap.String("filename", filename), zap.String("stored_as", stored), zap.Error(err))
		return UploadSummary{}, fmt.Errorf("read %s: %w", filename, err)
	}

	if err := s.uploads.SaveUpload(ctx, sess.ID(), domsess.NewUpload(filename, records, now)); err != nil {
		return UploadSummary{}, fmt.Errorf("save upload: %w", err)
	}

	cols := record.Columns(records)
	entry := domhist.UploadEntry{
		Filename:  filename,
		Records:   len(records),
		Columns:   len(cols),
		User:      sess.User(),
		Timestamp: now,
	}
	if err := s.history.AppendUpload(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn("failed to record upload history", zap.Error(err))
	}

	logger.FromContext(ctx).Info("upload accepted",
		zap.String("filename", filename), zap.Int("records", len(records)), zap.Int("columns", len(cols)))
	return UploadSummary{Filename: filename, Records: len(records), Columns: cols}, nil
}

// Clear drops the session's uploaded dataset.
func (s *Service) Clear(ctx context.Context, sess domsess.Session) error {
	if err := s.uploads.DeleteUpload(ctx, sess.ID()); err != nil {
		return fmt.Errorf("clear upload: %w", err)
	}
	return nil
}

// Status reports the session's upload and the internal dataset size.
func (s *Service) Status(ctx context.Context, sess domsess.Session) (Status, error) {
	st := Status{InternalRecords: s.internal.Len()}
	up, err := s.uploads.GetUpload(ctx, sess.ID())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return st, nil
	case err != nil:
		return Status{}, fmt.Errorf("get upload: %w", err)
	}
	st.HasUpload = true
	st.Filename = up.Filename()
	st.Records = up.Len()
	st.UploadedAt = up.UploadedAt()
	return st, nil
}

// UpdateRecord sets field to value on the internal record whose identity
// field equals idValue and persists the dataset.
func (s *Service) UpdateRecord(ctx context.Context, sess domsess.Session, idValue, field, value string) error {
	if idValue == "" {
		return domain.NewFieldError("exp_bn", "is required")
	}
	if field == "" {
		return domain.NewFieldError("field", "is required")
	}
	if record.IsReserved(field) {
		return domain.NewFieldError("field", fmt.Sprintf("%q is reserved", field))
	}
	if err := s.internal.Update(idValue, field, value); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	logger.FromContext(ctx).Info("record updated",
		zap.String("user", sess.User()),
		zap.String(s.internal.IdentityField(), idValue),
		zap.String("field", field))
	return nil
}
