package ipfs

import (
	"context"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/metrics"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Put(ctx, "a.txt", []byte("content"))
	require.NoError(t, err)

	c, err := cid.Decode(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.Version())
	assert.Equal(t, uint64(cid.Raw), c.Type())

	again, err := s.Put(ctx, "b.txt", []byte("content"))
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, s.Len())

	data, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	require.NoError(t, s.Delete(ctx, id))
	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Put(ctx, "a", []byte("a"))
	assert.ErrorIs(t, err, context.Canceled)
}

type failingStore struct{ *MemoryStore }

func (f *failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("boom")
}

func TestInstrument(t *testing.T) {
	m := metrics.New()
	s := Instrument(&failingStore{MemoryStore: NewMemoryStore()}, m)

	_, err := s.Put(context.Background(), "a", []byte("a"))
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "x")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreRequests.WithLabelValues("put", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreRequests.WithLabelValues("get", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreDuration))
}

func TestInstrument_NilMetrics(t *testing.T) {
	s := NewMemoryStore()
	assert.Same(t, s, Instrument(s, nil))
}
