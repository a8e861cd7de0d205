// Package dataset owns the internal record set backed by a flat JSON file.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// DefaultIdentityField keys record updates.
const DefaultIdentityField = "EXP BN"

// Repo holds the internal dataset in memory. Reads return snapshots; Update
// rewrites the file before publishing the change.
type Repo struct {
	path          string
	identityField string
	logger        *zap.Logger

	onPublish func(n int)

	mu       sync.RWMutex
	records  []record.Record
	fromFile bool
}

// New creates a dataset repository for the JSON array at path.
func New(path, identityField string, logger *zap.Logger) *Repo {
	if identityField == "" {
		identityField = DefaultIdentityField
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{path: path, identityField: identityField, logger: logger}
}

// WithPublishHook registers fn to be called with the record count each time
// a new record set is installed.
func (r *Repo) WithPublishHook(fn func(n int)) *Repo {
	r.onPublish = fn
	return r
}

// Load reads the file. A missing or malformed file installs Sample instead;
// any other read error is returned.
func (r *Repo) Load() error {
	err := r.Reload()
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Warn("dataset file not found, using sample data", zap.String("path", r.path))
	case errors.Is(err, errDecode):
		r.logger.Error("dataset file is not valid JSON, using sample data",
			zap.String("path", r.path), zap.Error(err))
	default:
		return err
	}
	r.publish(Sample(), false)
	return nil
}

var errDecode = errors.New("decode dataset")

// Reload replaces the records with the file content. On error the current
// records are kept.
func (r *Repo) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	var recs []record.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return fmt.Errorf("%w %s: %w", errDecode, r.path, err)
	}
	r.publish(recs, true)
	r.logger.Info("dataset loaded", zap.String("path", r.path), zap.Int("records", len(recs)))
	return nil
}

func (r *Repo) publish(recs []record.Record, fromFile bool) {
	r.mu.Lock()
	r.records = recs
	r.fromFile = fromFile
	r.mu.Unlock()
	if r.onPublish != nil {
		r.onPublish(len(recs))
	}
}

// Records returns a snapshot of the dataset.
func (r *Repo) Records() []record.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]record.Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// FromFile reports whether the records came from the file rather than the sample.
func (r *Repo) FromFile() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fromFile
}

// IdentityField returns the field that keys updates.
func (r *Repo) IdentityField() string { return r.identityField }

// Path returns the dataset file path.
func (r *Repo) Path() string { return r.path }

// Update sets field to value on the first record whose identity field equals
// idValue and rewrites the file. If the write fails the dataset is unchanged.
func (r *Repo) Update(idValue, field, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, rec := range r.records {
		if v, ok := rec.Get(r.identityField); ok && v == idValue {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s=%q", domain.ErrRecordNotFound, r.identityField, idValue)
	}

	next := make([]record.Record, len(r.records))
	copy(next, r.records)
	next[idx] = next[idx].Set(field, value)

	if err := writeFile(r.path, next); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
	r.records = next
	r.fromFile = true
	if r.onPublish != nil {
		r.onPublish(len(next))
	}
	return nil
}

// writeFile replaces path atomically with a 4-space indented JSON array.
func writeFile(path string, recs []record.Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace dataset: %w", err)
	}
	return nil
}
