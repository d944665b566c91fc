package session

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/models"
)

func TestRedisStoreMissIsNotAnError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)

	mock.ExpectGet(keyPrefix + "absent").RedisNil()

	s, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreWrapsTransportError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)

	mock.ExpectGet(keyPrefix + "s-1").SetErr(fmt.Errorf("connection reset"))

	_, err := store.Get(context.Background(), "s-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_STORE_FAILED")
}

func TestRedisStoreRejectsCorruptPayload(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)

	mock.ExpectGet(keyPrefix + "s-1").SetVal("{not json")

	_, err := store.Get(context.Background(), "s-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_STORE_FAILED")
}

func TestRedisStoreSaveSetsTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, 30*time.Minute)

	s := models.NewSessionContext("s-1")
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	mock.ExpectSet(keyPrefix+"s-1", raw, 30*time.Minute).SetVal("OK")

	require.NoError(t, store.Save(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreDeleteWrapsError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)

	mock.ExpectDel(keyPrefix + "s-1").SetErr(redis.ErrClosed)

	err := store.Delete(context.Background(), "s-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_STORE_FAILED")
}
