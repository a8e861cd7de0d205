package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
)

type sessionRow struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	CreatedAt int64  `json:"created_at"`
}

type uploadRow struct {
	Filename   string          `json:"filename"`
	UploadedAt int64           `json:"uploaded_at"`
	Records    []record.Record `json:"records"`
}

func encodeSession(s domsess.Session) ([]byte, error) {
	data, err := json.Marshal(sessionRow{ID: s.ID(), User: s.User(), CreatedAt: s.CreatedAt().UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (domsess.Session, error) {
	var row sessionRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domsess.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return domsess.New(row.ID, row.User, time.UnixMilli(row.CreatedAt)), nil
}

func encodeUpload(u domsess.Upload) ([]byte, error) {
	data, err := json.Marshal(uploadRow{
		Filename:   u.Filename(),
		UploadedAt: u.UploadedAt().UnixMilli(),
		Records:    u.Records(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal upload: %w", err)
	}
	return data, nil
}

func decodeUpload(data []byte) (domsess.Upload, error) {
	var row uploadRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domsess.Upload{}, fmt.Errorf("unmarshal upload: %w", err)
	}
	return domsess.NewUpload(row.Filename, row.Records, time.UnixMilli(row.UploadedAt)), nil
}
