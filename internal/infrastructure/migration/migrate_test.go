package migration

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMigrator - мок для интерфейса Migrator
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Down() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func engineFor(m Migrator) MigrationEngine {
	return func(string) (Migrator, error) { return m, nil }
}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, nil)

	mg := NewMigration("postgres://localhost/afterlife", engineFor(mockM))

	assert.NoError(t, mg.Up())
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)

	// ErrNoChange не должна считаться ошибкой в методе Up()
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Close").Return(nil, nil)

	mg := NewMigration("", engineFor(mockM))

	assert.NoError(t, mg.Up())
}

func TestMigration_Up_Error(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(errors.New("syntax error"))
	mockM.On("Close").Return(nil, errors.New("conn reset"))

	mg := NewMigration("", engineFor(mockM))
	err := mg.Up()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
	assert.Contains(t, err.Error(), "conn reset")
}

func TestMigration_Up_EngineError(t *testing.T) {
	// Ошибка на этапе создания мигратора (например, неверный драйвер)
	engine := func(string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	mg := NewMigration("", engine)
	err := mg.Up()

	assert.Error(t, err)
	assert.Equal(t, "engine crash", err.Error())
}

func TestMigration_Down(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Down").Return(nil)
	mockM.On("Close").Return(nil, nil)

	assert.NoError(t, NewMigration("", engineFor(mockM)).Down())
	mockM.AssertExpectations(t)
}

func TestMigration_Version(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Version").Return(uint(1), false, nil).Once()
	mockM.On("Version").Return(uint(0), false, migrate.ErrNilVersion).Once()
	mockM.On("Close").Return(nil, nil)

	mg := NewMigration("", engineFor(mockM))

	v, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	v, _, err = mg.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "sql/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "sql/000001_init.up.sql")
	assert.Contains(t, files, "sql/000001_init.down.sql")

	up, err := fs.ReadFile(migrations, "sql/000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"users", "sessions", "vaults"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestEmbeddedMigrations_DeliveryClaim(t *testing.T) {
	up, err := fs.ReadFile(migrations, "sql/000002_delivery_claim.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "ADD COLUMN delivery_claimed_until")

	down, err := fs.ReadFile(migrations, "sql/000002_delivery_claim.down.sql")
	require.NoError(t, err)
	assert.Contains(t, string(down), "DROP COLUMN IF EXISTS delivery_claimed_until")
}
