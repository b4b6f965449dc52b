package ipfs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
)

func newTestClient(t *testing.T, h http.Handler, cfg PinataConfig) *PinataClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg.APIURL = srv.URL
	cfg.GatewayURL = srv.URL
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 2 * time.Millisecond

	return NewPinataClient(cfg, slog.Default())
}

func TestPinataClient_Put(t *testing.T) {
	want, err := ComputeCID([]byte("hello"))
	require.NoError(t, err)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))

		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, "note.txt", hdr.Filename)
		assert.JSONEq(t, `{"name":"note.txt"}`, r.FormValue("pinataMetadata"))

		_ = json.NewEncoder(w).Encode(pinResponse{IpfsHash: want, PinSize: 5})
	})

	c := newTestClient(t, h, PinataConfig{APIKey: "key", APISecret: "secret"})

	got, err := c.Put(context.Background(), "note.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPinataClient_Put_JWT(t *testing.T) {
	id, _ := ComputeCID([]byte("x"))

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("pinata_api_key"))
		_ = json.NewEncoder(w).Encode(pinResponse{IpfsHash: id})
	})

	c := newTestClient(t, h, PinataConfig{JWT: "token", APIKey: "ignored"})
	_, err := c.Put(context.Background(), "", []byte("x"))
	require.NoError(t, err)
}

func TestPinataClient_Put_ServerError(t *testing.T) {
	calls := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusBadGateway)
	})

	c := newTestClient(t, h, PinataConfig{RetryMax: 2})
	_, err := c.Put(context.Background(), "a", []byte("a"))

	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	assert.Equal(t, 3, calls)
}

func TestPinataClient_Put_Unauthorized(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	c := newTestClient(t, h, PinataConfig{})
	_, err := c.Put(context.Background(), "a", []byte("a"))

	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "bad key")
}

func TestPinataClient_Put_BadCID(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(pinResponse{IpfsHash: "not-a-cid"})
	})

	c := newTestClient(t, h, PinataConfig{})
	_, err := c.Put(context.Background(), "a", []byte("a"))
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
}

func TestPinataClient_Get(t *testing.T) {
	id, _ := ComputeCID([]byte("payload"))

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ipfs/"+id {
			_, _ = w.Write([]byte("payload"))
			return
		}
		http.NotFound(w, r)
	})

	c := newTestClient(t, h, PinataConfig{})

	data, err := c.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	other, _ := ComputeCID([]byte("other"))
	_, err = c.Get(context.Background(), other)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = c.Get(context.Background(), "garbage")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestPinataClient_Get_Unreachable(t *testing.T) {
	c := NewPinataClient(PinataConfig{
		GatewayURL:   "http://127.0.0.1:1",
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	}, slog.Default())

	id, _ := ComputeCID([]byte("x"))
	_, err := c.Get(context.Background(), id)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
}

func TestPinataClient_Delete(t *testing.T) {
	id, _ := ComputeCID([]byte("x"))

	var paths []string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "gone") {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, h, PinataConfig{})

	require.NoError(t, c.Delete(context.Background(), id))
	require.NoError(t, c.Delete(context.Background(), "gone"))
	assert.Equal(t, []string{"/pinning/unpin/" + id, "/pinning/unpin/gone"}, paths)
}

func TestPinataClient_Delete_Failure(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	c := newTestClient(t, h, PinataConfig{})
	err := c.Delete(context.Background(), "x")
	assert.True(t, IsUnavailable(err))
}
