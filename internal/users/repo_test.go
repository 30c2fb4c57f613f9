package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/poojakit/poojakit-backend/pkg/db"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive for the test
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.Exec(`
		CREATE TABLE users (
			id            text PRIMARY KEY,
			name          text NOT NULL,
			email         text NOT NULL,
			phone         text,
			password_hash text NOT NULL,
			is_admin      boolean NOT NULL DEFAULT false,
			created_at    datetime,
			updated_at    datetime
		)`).Error)
	require.NoError(t, conn.Exec(`CREATE UNIQUE INDEX idx_users_email ON users (email)`).Error)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	phone := "9876543210"
	created, err := repo.Create(ctx, CreateUserDTO{
		Name:         "Asha",
		Email:        "asha@example.com",
		Phone:        &phone,
		PasswordHash: "$argon2id$hash",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.IsAdmin)

	byEmail, err := repo.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	require.NotNil(t, byEmail.Phone)
	assert.Equal(t, phone, *byEmail.Phone)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", byID.Name)
}

func TestRepositoryFindByEmailIsCaseSensitive(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "ASHA@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindMissing(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateDuplicateEmail(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	dto := CreateUserDTO{Name: "Asha", Email: "asha@example.com", PasswordHash: "x"}
	_, err := repo.Create(ctx, dto)
	require.NoError(t, err)

	_, err = repo.Create(ctx, dto)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "idx_users_email"))
}
