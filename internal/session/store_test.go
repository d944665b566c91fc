package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	s := models.NewSessionContext("s1")
	s.Stage = models.StageLoanRequirement
	require.NoError(t, store.Save(ctx, s))

	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StageLoanRequirement, got.Stage)

	// stored copy is isolated from later caller mutation
	got.Stage = models.StageCompleted
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StageLoanRequirement, again.Stage)

	require.NoError(t, store.Delete(ctx, "s1"))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	s := models.NewSessionContext("s2")
	s.Stage = models.StageTermsConfirm
	s.Request = &models.LoanRequest{Amount: 200000, TenureMonths: 24, Purpose: models.PurposeWedding}
	require.NoError(t, store.Save(ctx, s))

	got, err = store.Get(ctx, "s2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StageTermsConfirm, got.Stage)
	require.NotNil(t, got.Request)
	assert.Equal(t, int64(200000), got.Request.Amount)

	require.NoError(t, store.Delete(ctx, "s2"))
	got, err = store.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	s := models.NewSessionContext("s3")
	require.NoError(t, store.Save(ctx, s))

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "s3")
	require.NoError(t, err)
	assert.Nil(t, got)
}
