// Package ipfs stores vault content on IPFS through a pinning service, or in
// memory for local runs.
package ipfs

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/metrics"
)

// Store is a content-addressed blob store.
type Store interface {
	// Put stores data and returns its content id.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Get returns the bytes stored under id.
	Get(ctx context.Context, id string) ([]byte, error)
	// Delete unpins id. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
}

// ValidateCID checks that id is a well-formed CID (v0 or v1).
func ValidateCID(id string) error {
	if _, err := cid.Decode(id); err != nil {
		return errs.Invalid("cid", "invalid content id")
	}
	return nil
}

type instrumented struct {
	next Store
	m    *metrics.Metrics
}

// Instrument records call counts and latency of next.
func Instrument(next Store, m *metrics.Metrics) Store {
	if m == nil {
		return next
	}
	return &instrumented{next: next, m: m}
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	s.m.StoreRequests.WithLabelValues(op, metrics.Result(err)).Inc()
	s.m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *instrumented) Put(ctx context.Context, name string, data []byte) (id string, err error) {
	defer func(start time.Time) { s.observe("put", start, err) }(time.Now())
	return s.next.Put(ctx, name, data)
}

func (s *instrumented) Get(ctx context.Context, id string) (data []byte, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, id)
}

func (s *instrumented) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, id)
}
