// Package memo provides content-addressed memoization of pipeline runs.
// Results are keyed by a hash of the raw upload bytes, so repeated
// identical uploads never re-run the pipeline.
package memo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/filmlens/filmlens/internal/model"
)

// Result is one memoized pipeline output.
type Result struct {
	Table   *model.Table   `json:"table"`
	Summary *model.Summary `json:"summary"`
}

// Backend defines the storage interface for memoized results.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get retrieves a result by content key.
	Get(ctx context.Context, key string) (*Result, bool)

	// Put stores a result under a content key.
	Put(ctx context.Context, key string, res *Result) error

	// Name returns the backend name for logging/debugging.
	Name() string
}

// Memo is a content-addressed cache of pipeline results over a Backend.
type Memo struct {
	backend Backend
}

// New creates a memo over the given backend.
func New(backend Backend) *Memo {
	return &Memo{backend: backend}
}

// Key returns the content address of a raw upload.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get looks up the result for the given raw bytes.
func (m *Memo) Get(ctx context.Context, data []byte) (*Result, bool) {
	return m.backend.Get(ctx, Key(data))
}

// Put stores the result for the given raw bytes.
func (m *Memo) Put(ctx context.Context, data []byte, res *Result) error {
	return m.backend.Put(ctx, Key(data), res)
}

// GetOrCompute returns the memoized result for data, computing and
// storing it on a miss. compute must be a pure function of data.
func (m *Memo) GetOrCompute(ctx context.Context, data []byte, compute func() (*Result, error)) (*Result, error) {
	if res, ok := m.backend.Get(ctx, Key(data)); ok {
		return res, nil
	}
	res, err := compute()
	if err != nil {
		return nil, err
	}
	// Best effort: a failed store only costs a recompute next time.
	_ = m.backend.Put(ctx, Key(data), res)
	return res, nil
}
