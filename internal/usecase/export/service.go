// Package export writes search results or whole datasets as downloadable files.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
	fileexport "github.com/kailas-cloud/buscadoc/internal/export"
	"github.com/kailas-cloud/buscadoc/internal/logger"
)

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Records     int
}

// Service renders exports.
type Service struct {
	matcher Matcher
	now     func() time.Time
}

// New creates an export service.
func New(matcher Matcher) *Service {
	return &Service{matcher: matcher, now: time.Now}
}

// WithClock overrides the time source used in file names.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Export writes the records req matches in src to w. A blank query exports
// the whole source.
func (s *Service) Export(
	ctx context.Context, sess domsess.Session, req request.Request,
	src domhist.Source, f fileexport.Format, w io.Writer,
) (File, error) {
	recs, err := s.matcher.Matching(ctx, sess, req, src)
	if err != nil {
		return File{}, err
	}
	if err := fileexport.Write(w, f, recs); err != nil {
		return File{}, fmt.Errorf("write %s export: %w", f, err)
	}
	logger.FromContext(ctx).Info("export written",
		zap.String("format", string(f)), zap.String("source", string(src)), zap.Int("records", len(recs)))
	return File{
		Name:        fileexport.FileName(f, s.now()),
		ContentType: f.ContentType(),
		Records:     len(recs),
	}, nil
}
