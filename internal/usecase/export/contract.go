package export

import (
	"context"

	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
)

// Matcher selects the records a request matches.
type Matcher interface {
	Matching(
		ctx context.Context, sess domsess.Session, req request.Request, src domhist.Source,
	) ([]record.Record, error)
}
