package dataset

import (
	"context"

	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
)

// UploadStore keeps the spreadsheet each session uploaded.
type UploadStore interface {
	SaveUpload(ctx context.Context, sessionID string, u domsess.Upload) error
	GetUpload(ctx context.Context, sessionID string) (domsess.Upload, error)
	DeleteUpload(ctx context.Context, sessionID string) error
}

// InternalDataset is the shared dataset persisted on disk.
type InternalDataset interface {
	Len() int
	IdentityField() string
	Update(idValue, field, value string) error
}

// HistoryWriter logs accepted uploads.
type HistoryWriter interface {
	AppendUpload(ctx context.Context, e domhist.UploadEntry) error
}
