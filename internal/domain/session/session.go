// Package session models an authenticated user session and its uploaded dataset.
package session

import (
	"time"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// Session is a logged-in user.
type Session struct {
	id        string
	user      string
	createdAt time.Time
}

// New creates a session.
func New(id, user string, createdAt time.Time) Session {
	return Session{id: id, user: user, createdAt: createdAt}
}

// ID returns the opaque session identifier.
func (s Session) ID() string { return s.id }

// User returns the username.
func (s Session) User() string { return s.user }

// CreatedAt returns the login time.
func (s Session) CreatedAt() time.Time { return s.createdAt }

// Upload is the spreadsheet a session searches when the source is the uploaded file.
type Upload struct {
	filename   string
	records    []record.Record
	uploadedAt time.Time
}

// NewUpload creates an upload. The record slice is copied.
func NewUpload(filename string, records []record.Record, uploadedAt time.Time) Upload {
	recs := make([]record.Record, len(records))
	copy(recs, records)
	return Upload{filename: filename, records: recs, uploadedAt: uploadedAt}
}

// Filename returns the name the file was uploaded with.
func (u Upload) Filename() string { return u.filename }

// Records returns the uploaded records. Callers must not modify the slice.
func (u Upload) Records() []record.Record { return u.records }

// Len returns the number of records.
func (u Upload) Len() int { return len(u.records) }

// UploadedAt returns the upload time.
func (u Upload) UploadedAt() time.Time { return u.uploadedAt }
