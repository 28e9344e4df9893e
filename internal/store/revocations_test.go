package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmyshkin/mvpy/internal/store"
	"github.com/evmyshkin/mvpy/internal/testutil"
)

func TestRevocationRepo(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "eve@example.com", "hash", true)
	repo := store.NewRevocationRepo(db)
	ctx := context.Background()
	jti := uuid.NewString()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	revoked, err := repo.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, jti, u.ID, exp))

	revoked, err = repo.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	row, err := repo.Find(ctx, jti)
	require.NoError(t, err)
	assert.Equal(t, u.ID, row.UserID)
	assert.True(t, row.ExpiresAt.Equal(exp))
	assert.False(t, row.RevokedAt.IsZero())

	assert.ErrorIs(t, repo.Revoke(ctx, jti, u.ID, exp), store.ErrConflict)

	_, err = repo.Find(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRevocationRepoConcurrentRevoke(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "frank@example.com", "hash", true)
	repo := store.NewRevocationRepo(db)
	jti := uuid.NewString()
	exp := time.Now().Add(time.Hour)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Revoke(context.Background(), jti, u.ID, exp)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, store.ErrConflict)
	}
	assert.Equal(t, 1, ok)

	var count int64
	require.NoError(t, db.Table("blacklisted_tokens").Where("token_jti = ?", jti).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
