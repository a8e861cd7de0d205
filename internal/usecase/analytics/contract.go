package analytics

import (
	"context"

	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
)

// RecordSource resolves the record set behind a data source.
type RecordSource interface {
	Records(ctx context.Context, sess domsess.Session, src domhist.Source) ([]record.Record, error)
}

// HistoryReader reads the search and upload logs.
type HistoryReader interface {
	Searches(ctx context.Context) ([]domhist.SearchEntry, error)
	Uploads(ctx context.Context) ([]domhist.UploadEntry, error)
}
