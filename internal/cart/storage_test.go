package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/db/models"
)

func TestMemoryStorageGetSet(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	_, found, err := storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, storage.Set(ctx, "k", "[]"))
	value, found, err := storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", value)
	assert.NoError(t, storage.Ping(ctx))
}

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	pingErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) CartKey(key string) string { return "sc:cart:" + key }

func (f *fakeRedis) Ping(context.Context) error { return f.pingErr }

func TestRedisStorageNamespacesKeysAndAppliesTTL(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	storage := NewRedisStorage(fake, time.Hour)

	_, found, err := storage.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, found, "redis nil must read as not found")

	require.NoError(t, storage.Set(ctx, testKey, `[{"id":1}]`))
	assert.Equal(t, `[{"id":1}]`, fake.data["sc:cart:"+testKey])
	assert.Equal(t, time.Hour, fake.ttls["sc:cart:"+testKey])

	value, found, err := storage.Get(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":1}]`, value)

	fake.pingErr = errors.New("down")
	assert.Error(t, storage.Ping(ctx))
}

func TestRedisStorageBacksStore(t *testing.T) {
	ctx := context.Background()
	storage := NewRedisStorage(newFakeRedis(), 0)

	store := NewStore(storage, testKey)
	require.NoError(t, store.AddOrIncrement(ctx, product(2, "4.50")))
	require.NoError(t, store.AddOrIncrement(ctx, product(2, "4.50")))

	reloaded, err := Open(ctx, storage, testKey)
	require.NoError(t, err)
	item, ok := reloaded.Item(2)
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.CartSnapshot{}))
	return db
}

func TestSQLStorageUpsertsSnapshots(t *testing.T) {
	ctx := context.Background()
	storage := NewSQLStorage(openSQLite(t))

	_, found, err := storage.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, storage.Set(ctx, testKey, "[]"))
	require.NoError(t, storage.Set(ctx, testKey, `[{"id":5,"quantity":2}]`))

	value, found, err := storage.Get(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":5,"quantity":2}]`, value)

	var rows int64
	require.NoError(t, storage.db.Model(&models.CartSnapshot{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
	assert.NoError(t, storage.Ping(ctx))
}

func TestSQLStorageKeepsSessionsApart(t *testing.T) {
	ctx := context.Background()
	storage := NewSQLStorage(openSQLite(t))

	a := NewStore(storage, "swiftcart_cart_v1:a")
	b := NewStore(storage, "swiftcart_cart_v1:b")
	require.NoError(t, a.AddOrIncrement(ctx, product(1, "1")))
	require.NoError(t, b.AddOrIncrement(ctx, product(2, "2")))
	require.NoError(t, b.AddOrIncrement(ctx, product(2, "2")))

	reloadedA, err := Open(ctx, storage, "swiftcart_cart_v1:a")
	require.NoError(t, err)
	reloadedB, err := Open(ctx, storage, "swiftcart_cart_v1:b")
	require.NoError(t, err)

	assert.Equal(t, 1, reloadedA.Totals().Items)
	assert.Equal(t, 2, reloadedB.Totals().Items)
}

func TestSQLStorageDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	storage := NewSQLStorage(db)

	old := time.Now().UTC().Add(-72 * time.Hour)
	require.NoError(t, db.Create(&models.CartSnapshot{StorageKey: "stale", Payload: "[]", UpdatedAt: old}).Error)
	require.NoError(t, storage.Set(ctx, "fresh", "[]"))

	deleted, err := storage.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, found, err := storage.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = storage.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)
}
