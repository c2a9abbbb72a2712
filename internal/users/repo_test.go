package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lebraggaa/spool-tracker/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateAndFindByUsername(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Username:     "operator1",
		PasswordHash: "$argon2id$stub",
		Role:         enums.UserRoleOperator,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	found, err := repo.FindByUsername(ctx, "operator1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, enums.UserRoleOperator, found.Role)
	assert.Nil(t, found.LastLoginAt)
}

func TestCreateDefaultsRoleToOperator(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	created, err := repo.Create(context.Background(), CreateUserDTO{
		Username:     "plain",
		PasswordHash: "$argon2id$stub",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleOperator, created.Role)
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Username: "admin", PasswordHash: "x", Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateUserDTO{Username: "admin", PasswordHash: "y", Role: enums.UserRoleAdmin})
	require.Error(t, err)
}

func TestFindByUsernameNotFound(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	_, err := repo.FindByUsername(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUpdateLastLogin(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Username: "admin", PasswordHash: "x", Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
}

func TestCount(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.Create(ctx, CreateUserDTO{Username: "admin", PasswordHash: "x", Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
