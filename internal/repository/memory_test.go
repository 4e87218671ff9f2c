package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	first := &entity.User{ID: uuid.New(), Email: "a@x.com", RegisteredAt: time.Now().Add(-time.Hour)}
	second := &entity.User{ID: uuid.New(), Email: "b@x.com", RegisteredAt: time.Now()}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.ErrorIs(t, repo.Create(ctx, &entity.User{ID: uuid.New(), Email: "a@x.com"}), ErrDuplicateKey)

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	found.Name = "changed without Update"

	again, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Name)

	again.Email = "b@x.com"
	assert.ErrorIs(t, repo.Update(ctx, again), ErrDuplicateKey)

	users, err := repo.List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, second.ID, users[0].ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), ErrNotFound)
	missing, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemorySecurityLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySecurityLogRepository()
	userID := uuid.New()
	other := uuid.New()

	require.NoError(t, repo.Log(ctx, &entity.SecurityLog{UserID: &userID, Action: entity.LoginFailed}))
	require.NoError(t, repo.Log(ctx, &entity.SecurityLog{UserID: &other, Action: entity.LoginSuccess}))
	require.NoError(t, repo.Log(ctx, &entity.SecurityLog{UserID: &userID, Action: entity.LoginSuccess}))
	require.NoError(t, repo.Log(ctx, &entity.SecurityLog{Action: entity.LoginFailed}))

	logs, err := repo.ListByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, entity.LoginSuccess, logs[0].Action)
	assert.NotEqual(t, uuid.Nil, logs[0].ID)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4}
	assert.Equal(t, []int{2, 3}, page(items, 2, 1))
	assert.Equal(t, []int{}, page(items, 2, 10))
	assert.Equal(t, items, page(items, 0, 0))
}
