package vault

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/middleware/auth"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, ownerID int) ([]vault.Vault, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]vault.Vault), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, ownerID int, id string) (vault.Vault, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(vault.Vault), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, ownerID int, req vault.CreateRequest) (vault.Vault, error) {
	args := m.Called(ctx, ownerID, req)
	return args.Get(0).(vault.Vault), args.Error(1)
}

func (m *MockService) Edit(ctx context.Context, ownerID int, id string, req vault.EditRequest) (vault.Vault, error) {
	args := m.Called(ctx, ownerID, id, req)
	return args.Get(0).(vault.Vault), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, ownerID int, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockService) Unlock(ctx context.Context, ownerID int, id, password string) (vault.Content, error) {
	args := m.Called(ctx, ownerID, id, password)
	return args.Get(0).(vault.Content), args.Error(1)
}

func (m *MockService) SetTrigger(ctx context.Context, ownerID int, id string, at *time.Time) error {
	return m.Called(ctx, ownerID, id, at).Error(0)
}

func (m *MockService) SetInactivity(ctx context.Context, ownerID int, id string, enabled bool) error {
	return m.Called(ctx, ownerID, id, enabled).Error(0)
}

func (m *MockService) ListDelivered(ctx context.Context, email string) ([]vault.Vault, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]vault.Vault), args.Error(1)
}

func (m *MockService) UnlockDelivered(ctx context.Context, email, id, password string) (vault.Content, error) {
	args := m.Called(ctx, email, id, password)
	return args.Get(0).(vault.Content), args.Error(1)
}

const id = "6f1c2b7e-2f8a-4c1d-9b0e-3a5d7c9e1f20"

func status(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

func TestHandler_Create(t *testing.T) {
	userID := 123
	authCtx := auth.WithUserID(context.Background(), userID)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, slog.Default(), nil)

		svc.On("Create", mock.Anything, userID, mock.MatchedBy(func(req vault.CreateRequest) bool {
			return req.Name == "Letters" &&
				req.Password == "pw" &&
				len(req.Files) == 1 &&
				string(req.Files[0].Data) == "hello binary" &&
				req.Files[0].Name == "a.txt" &&
				req.Scheme == ""
		})).Return(vault.Vault{
			ID:             id,
			Name:           "Letters",
			ContentID:      "bafyroot",
			Scheme:         vault.SchemeHashGated,
			DeliveryStatus: vault.StatusPending,
		}, nil)

		input := &createInput{}
		input.Body.Name = "Letters"
		input.Body.Password = "pw"
		input.Body.Files = []fileInput{{Name: "a.txt", Data: []byte("hello binary")}}

		out, err := h.create(authCtx, input)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, out.Status)
		assert.Equal(t, "bafyroot", out.Body.ContentID)
		assert.Equal(t, "hash_gated", out.Body.Scheme)
		assert.Equal(t, []string{}, out.Body.RecipientEmails)
		svc.AssertExpectations(t)
	})

	t.Run("Storage down", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, slog.Default(), nil)
		svc.On("Create", mock.Anything, userID, mock.Anything).
			Return(vault.Vault{}, fmt.Errorf("upload: %w", errs.ErrStorageUnavailable))

		input := &createInput{}
		input.Body.Name = "Letters"
		input.Body.Password = "pw"

		_, err := h.create(authCtx, input)
		assert.Equal(t, http.StatusServiceUnavailable, status(t, err))
	})

	t.Run("Unauthorized", func(t *testing.T) {
		h := NewHandler(new(MockService), slog.Default(), nil)
		_, err := h.create(context.Background(), &createInput{})
		assert.Equal(t, http.StatusUnauthorized, status(t, err))
	})
}

func TestHandler_List(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)
	ctx := auth.WithUserID(context.Background(), 7)

	svc.On("List", mock.Anything, 7).Return([]vault.Vault{{ID: "a"}, {ID: "b"}}, nil)

	out, err := h.list(ctx, nil)
	require.NoError(t, err)
	require.Len(t, out.Body, 2)
	assert.Equal(t, "a", out.Body[0].ID)
}

func TestHandler_Unlock(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)
	ctx := auth.WithUserID(context.Background(), 7)

	msg := "hi"
	svc.On("Unlock", mock.Anything, 7, id, "right").Return(vault.Content{
		Message: &msg,
		Files:   []vault.File{{CID: "bafyfile", Name: "a.txt", Type: "text/plain", Data: []byte("A")}},
	}, nil)
	svc.On("Unlock", mock.Anything, 7, id, "wrong").Return(vault.Content{}, errs.ErrInvalidPassword)
	svc.On("Unlock", mock.Anything, 7, id, "broken").Return(vault.Content{}, errs.ErrCorruptManifest)

	input := &unlockInput{ID: id}
	input.Body.Password = "right"
	out, err := h.unlock(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, out.Body.Message)
	assert.Equal(t, "hi", *out.Body.Message)
	require.Len(t, out.Body.Files, 1)
	assert.Equal(t, []byte("A"), out.Body.Files[0].Data)

	input.Body.Password = "wrong"
	_, err = h.unlock(ctx, input)
	assert.Equal(t, http.StatusForbidden, status(t, err))

	input.Body.Password = "broken"
	_, err = h.unlock(ctx, input)
	assert.Equal(t, http.StatusUnprocessableEntity, status(t, err))
}

func TestHandler_UnlockEmptyVault(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)
	ctx := auth.WithUserID(context.Background(), 7)

	svc.On("Unlock", mock.Anything, 7, id, "pw").Return(vault.Content{}, nil)

	input := &unlockInput{ID: id}
	input.Body.Password = "pw"
	out, err := h.unlock(ctx, input)
	require.NoError(t, err)
	assert.Nil(t, out.Body.Message)
	assert.NotNil(t, out.Body.Files)
	assert.Empty(t, out.Body.Files)
}

func TestHandler_Update(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)
	ctx := auth.WithUserID(context.Background(), 7)

	name := "Renamed"
	svc.On("Edit", mock.Anything, 7, id, mock.MatchedBy(func(req vault.EditRequest) bool {
		return req.Name != nil && *req.Name == "Renamed" && req.Message == nil && req.Files == nil
	})).Return(vault.Vault{ID: id, Name: "Renamed"}, nil)

	input := &updateInput{ID: id}
	input.Body.Name = &name
	input.Body.Password = "pw"

	out, err := h.update(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Body.Name)
}

func TestHandler_DeleteNotFound(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)
	ctx := auth.WithUserID(context.Background(), 7)

	svc.On("Delete", mock.Anything, 7, id).Return(fmt.Errorf("get vault: %w", errs.ErrNotFound))

	_, err := h.delete(ctx, &idInput{ID: id})
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestHandler_Triggers(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)
	ctx := auth.WithUserID(context.Background(), 7)

	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.On("SetTrigger", mock.Anything, 7, id, &at).Return(nil)
	svc.On("SetInactivity", mock.Anything, 7, id, true).Return(nil)

	trigger := &triggerInput{ID: id}
	trigger.Body.TriggerDate = &at
	out, err := h.setTrigger(ctx, trigger)
	require.NoError(t, err)
	assert.Equal(t, "Ok", out.Body.Status)

	inactivity := &inactivityInput{ID: id}
	inactivity.Body.Enabled = true
	_, err = h.setInactivity(ctx, inactivity)
	require.NoError(t, err)

	svc.AssertExpectations(t)
}
