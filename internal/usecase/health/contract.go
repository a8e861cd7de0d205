package health

import "context"

// StorePinger checks session and history storage availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// DatasetInspector reports the state of the internal dataset.
type DatasetInspector interface {
	Len() int
	FromFile() bool
}
