package search

import (
	"context"

	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
)

// DatasetReader reads the shared internal dataset.
type DatasetReader interface {
	Records() []record.Record
}

// UploadReader reads the dataset a session uploaded.
type UploadReader interface {
	GetUpload(ctx context.Context, sessionID string) (domsess.Upload, error)
}

// HistoryWriter logs executed searches.
type HistoryWriter interface {
	AppendSearch(ctx context.Context, e domhist.SearchEntry) error
}
