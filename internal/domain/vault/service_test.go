package vault

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/ipfs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/metrics"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, v *Vault) (string, error) {
	args := m.Called(ctx, v)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, ownerID int, id string) (Vault, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(Vault), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (Vault, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Vault), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, ownerID int) ([]Vault, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]Vault), args.Error(1)
}

func (m *MockRepository) UpdateContent(ctx context.Context, v *Vault) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockRepository) SetTrigger(ctx context.Context, ownerID int, id string, at *time.Time) error {
	args := m.Called(ctx, ownerID, id, at)
	return args.Error(0)
}

func (m *MockRepository) SetInactivity(ctx context.Context, ownerID int, id string, enabled bool) error {
	args := m.Called(ctx, ownerID, id, enabled)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, ownerID int, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockRepository) ListDeliveredTo(ctx context.Context, email string) ([]Vault, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]Vault), args.Error(1)
}

func newTestService(repo Repository, store ContentStore) (*Service, *metrics.Metrics) {
	m := metrics.New()
	return NewService(repo, newTestResolver(store), SchemeHashGated, m, slog.Default()), m
}

func TestService_Create(t *testing.T) {
	repo := new(MockRepository)
	store := ipfs.NewMemoryStore()
	service, _ := newTestService(repo, store)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(v *Vault) bool {
		return v.OwnerID == 7 &&
			v.Name == "For Alice" &&
			v.Scheme == SchemeHashGated &&
			v.CredentialHash != "" &&
			v.DeliveryStatus == StatusPending &&
			assert.ObjectsAreEqual([]string{"alice@example.com"}, v.RecipientEmails)
	})).Return("b9a3c1de-0000-4000-8000-000000000001", nil)

	v, err := service.Create(context.Background(), 7, CreateRequest{
		Name:            "  For Alice ",
		Message:         "hello",
		Password:        "pw",
		RecipientEmails: []string{"Alice@Example.com", "alice@example.com", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "b9a3c1de-0000-4000-8000-000000000001", v.ID)
	assert.NotEmpty(t, v.ContentID)
	assert.Equal(t, 1, store.Len())

	repo.AssertExpectations(t)
}

func TestService_Create_Validation(t *testing.T) {
	repo := new(MockRepository)
	service, _ := newTestService(repo, ipfs.NewMemoryStore())

	_, err := service.Create(context.Background(), 1, CreateRequest{Name: "", Password: "pw"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = service.Create(context.Background(), 1, CreateRequest{Name: "n", Password: "pw", RecipientEmails: []string{"not an email"}})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = service.Create(context.Background(), 1, CreateRequest{Name: "n"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Unlock(t *testing.T) {
	repo := new(MockRepository)
	store := ipfs.NewMemoryStore()
	service, m := newTestService(repo, store)

	cid, hash, err := service.resolver.Create(context.Background(), "msg", nil, "pw", SchemeHashGated)
	require.NoError(t, err)

	v := Vault{ID: "v1", OwnerID: 1, ContentID: cid, Scheme: SchemeHashGated, CredentialHash: hash}
	repo.On("Get", mock.Anything, 1, "v1").Return(v, nil)
	repo.On("Get", mock.Anything, 2, "v1").Return(Vault{}, errs.ErrNotFound)

	content, err := service.Unlock(context.Background(), 1, "v1", "pw")
	require.NoError(t, err)
	assert.Equal(t, "msg", *content.Message)

	_, err = service.Unlock(context.Background(), 1, "v1", "bad")
	assert.ErrorIs(t, err, errs.ErrInvalidPassword)

	_, err = service.Unlock(context.Background(), 2, "v1", "pw")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unlocks.WithLabelValues("hash_gated", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unlocks.WithLabelValues("hash_gated", "denied")))
}

func TestService_Edit(t *testing.T) {
	repo := new(MockRepository)
	store := ipfs.NewMemoryStore()
	service, _ := newTestService(repo, store)

	cid, hash, err := service.resolver.Create(context.Background(), "old", nil, "pw", SchemeHashGated)
	require.NoError(t, err)

	v := Vault{ID: "v1", OwnerID: 1, Name: "n", ContentID: cid, Scheme: SchemeHashGated, CredentialHash: hash, DeliveryStatus: StatusPending}
	repo.On("Get", mock.Anything, 1, "v1").Return(v, nil)
	repo.On("UpdateContent", mock.Anything, mock.MatchedBy(func(u *Vault) bool {
		return u.ContentID != cid && u.Name == "renamed" && len(u.RecipientEmails) == 1
	})).Return(nil)

	name := "renamed"
	msg := "new"
	recipients := []string{"bob@example.com"}

	out, err := service.Edit(context.Background(), 1, "v1", EditRequest{
		Name:            &name,
		Message:         &msg,
		RecipientEmails: &recipients,
		Password:        "pw",
	})
	require.NoError(t, err)
	assert.NotEqual(t, cid, out.ContentID)

	// предыдущий манифест не тронут
	_, err = store.Get(context.Background(), cid)
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestService_Edit_Delivered(t *testing.T) {
	repo := new(MockRepository)
	service, _ := newTestService(repo, ipfs.NewMemoryStore())

	repo.On("Get", mock.Anything, 1, "v1").Return(Vault{ID: "v1", DeliveryStatus: StatusDelivered, Scheme: SchemeHashGated}, nil)

	_, err := service.Edit(context.Background(), 1, "v1", EditRequest{Password: "pw"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	repo.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything)
}

type unpinFailStore struct {
	*ipfs.MemoryStore
	failID string
}

func (s *unpinFailStore) Delete(ctx context.Context, id string) error {
	if id == s.failID {
		return errs.ErrStorageUnavailable
	}
	return s.MemoryStore.Delete(ctx, id)
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	store := ipfs.NewMemoryStore()
	service, _ := newTestService(repo, store)

	cid, hash, err := service.resolver.Create(context.Background(), "m", []FileInput{{Name: "f", Data: []byte("f")}}, "pw", SchemeHashGated)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	repo.On("Get", mock.Anything, 1, "v1").Return(Vault{ID: "v1", ContentID: cid, Scheme: SchemeHashGated, CredentialHash: hash}, nil)
	repo.On("Delete", mock.Anything, 1, "v1").Return(nil)

	require.NoError(t, service.Delete(context.Background(), 1, "v1"))
	assert.Equal(t, 0, store.Len())

	repo.AssertExpectations(t)
}

func TestService_Delete_UnpinFailureKeepsRecord(t *testing.T) {
	repo := new(MockRepository)
	mem := ipfs.NewMemoryStore()
	cid, _ := mem.Put(context.Background(), "m", []byte(`{}`))
	service, _ := newTestService(repo, &unpinFailStore{MemoryStore: mem, failID: cid})

	repo.On("Get", mock.Anything, 1, "v1").Return(Vault{ID: "v1", ContentID: cid, Scheme: SchemeLegacyEncrypted}, nil)

	err := service.Delete(context.Background(), 1, "v1")
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SetTriggerAndInactivity(t *testing.T) {
	repo := new(MockRepository)
	service, _ := newTestService(repo, ipfs.NewMemoryStore())

	at := time.Date(2030, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	repo.On("SetTrigger", mock.Anything, 1, "v1", mock.MatchedBy(func(t *time.Time) bool {
		return t != nil && t.Location() == time.UTC && t.Equal(at)
	})).Return(nil)
	repo.On("SetTrigger", mock.Anything, 1, "v2", (*time.Time)(nil)).Return(errs.ErrNotFound)
	repo.On("SetInactivity", mock.Anything, 1, "v1", true).Return(nil)

	require.NoError(t, service.SetTrigger(context.Background(), 1, "v1", &at))
	assert.ErrorIs(t, service.SetTrigger(context.Background(), 1, "v2", nil), errs.ErrNotFound)
	require.NoError(t, service.SetInactivity(context.Background(), 1, "v1", true))

	repo.AssertExpectations(t)
}

func TestService_UnlockDelivered(t *testing.T) {
	repo := new(MockRepository)
	store := ipfs.NewMemoryStore()
	service, _ := newTestService(repo, store)

	cid, hash, err := service.resolver.Create(context.Background(), "goodbye", nil, "owner-pw", SchemeHashGated)
	require.NoError(t, err)

	delivered := Vault{ID: "d", ContentID: cid, Scheme: SchemeHashGated, CredentialHash: hash, DeliveryStatus: StatusDelivered, RecipientEmails: []string{"alice@example.com"}}
	pending := delivered
	pending.ID = "p"
	pending.DeliveryStatus = StatusPending

	repo.On("GetByID", mock.Anything, "d").Return(delivered, nil)
	repo.On("GetByID", mock.Anything, "p").Return(pending, nil)

	content, err := service.UnlockDelivered(context.Background(), "ALICE@example.com", "d", "")
	require.NoError(t, err)
	assert.Equal(t, "goodbye", *content.Message)

	_, err = service.UnlockDelivered(context.Background(), "mallory@example.com", "d", "")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = service.UnlockDelivered(context.Background(), "alice@example.com", "p", "")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestService_ListDelivered(t *testing.T) {
	repo := new(MockRepository)
	service, _ := newTestService(repo, ipfs.NewMemoryStore())

	repo.On("ListDeliveredTo", mock.Anything, "alice@example.com").Return([]Vault{{ID: "d"}}, nil)
	repo.On("ListDeliveredTo", mock.Anything, "bob@example.com").Return([]Vault(nil), errors.New("db down"))

	vaults, err := service.ListDelivered(context.Background(), " Alice@Example.com ")
	require.NoError(t, err)
	assert.Len(t, vaults, 1)

	_, err = service.ListDelivered(context.Background(), "bob@example.com")
	assert.Error(t, err)

	_, err = service.ListDelivered(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestNormalizeRecipients(t *testing.T) {
	out, err := NormalizeRecipients([]string{"A@b.io", "a@b.io", "", "c@d.io"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.io", "c@d.io"}, out)

	_, err = NormalizeRecipients([]string{"Alice <a@b.io>"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
