package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShodmonX/taskflow-backend/internal/platform/kv"
	"github.com/ShodmonX/taskflow-backend/internal/security"
	"github.com/ShodmonX/taskflow-backend/internal/session/domain"
)

func newRedisManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewManager(kv.NewRedisStore(client), ttl, nil), mr
}

func TestManager_RotationChain(t *testing.T) {
	m := NewManager(kv.NewMemoryStore(), time.Hour, nil)
	ctx := context.Background()

	raw1, err := m.Create(ctx, "user-1")
	require.NoError(t, err)

	raw2, uid, err := m.Rotate(ctx, raw1)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
	assert.NotEqual(t, raw1, raw2)

	_, _, err = m.Rotate(ctx, raw1)
	assert.ErrorIs(t, err, domain.ErrInvalidSession, "reusing a rotated secret must fail")

	raw3, uid, err := m.Rotate(ctx, raw2)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
	assert.NotEmpty(t, raw3)
}

func TestManager_ConcurrentRotateSingleWinner(t *testing.T) {
	stores := map[string]func(t *testing.T) *Manager{
		"memory": func(t *testing.T) *Manager { return NewManager(kv.NewMemoryStore(), time.Hour, nil) },
		"redis": func(t *testing.T) *Manager {
			m, _ := newRedisManager(t, time.Hour)
			return m
		},
	}
	for name, newManager := range stores {
		t.Run(name, func(t *testing.T) {
			m := newManager(t)
			ctx := context.Background()
			raw, err := m.Create(ctx, "user-1")
			require.NoError(t, err)

			const racers = 8
			var wg sync.WaitGroup
			errs := make([]error, racers)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _, errs[i] = m.Rotate(ctx, raw)
				}(i)
			}
			wg.Wait()

			wins := 0
			for _, err := range errs {
				if err == nil {
					wins++
					continue
				}
				assert.ErrorIs(t, err, domain.ErrInvalidSession)
			}
			assert.Equal(t, 1, wins)
		})
	}
}

func TestManager_RevokeThenRotateFails(t *testing.T) {
	m := NewManager(kv.NewMemoryStore(), time.Hour, nil)
	ctx := context.Background()
	raw, err := m.Create(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, raw))
	require.NoError(t, m.Revoke(ctx, raw), "revoke is idempotent")

	_, _, err = m.Rotate(ctx, raw)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestManager_ExpiryEnforcedByStore(t *testing.T) {
	m, mr := newRedisManager(t, 10*time.Minute)
	ctx := context.Background()
	raw, err := m.Create(ctx, "user-1")
	require.NoError(t, err)

	key := domain.KeyPrefix + security.HashSecret(raw)
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	mr.FastForward(11 * time.Minute)
	_, _, err = m.Rotate(ctx, raw)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestManager_StoresOnlyHash(t *testing.T) {
	m, mr := newRedisManager(t, time.Hour)
	ctx := context.Background()
	raw1, err := m.Create(ctx, "user-1")
	require.NoError(t, err)
	raw2, _, err := m.Rotate(ctx, raw1)
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1, "rotation must leave exactly one live record")
	assert.Equal(t, domain.KeyPrefix+security.HashSecret(raw2), keys[0])

	val, err := mr.Get(keys[0])
	require.NoError(t, err)
	assert.False(t, strings.Contains(val, raw2), "raw secret must never be stored")

	var rec domain.RefreshSession
	require.NoError(t, json.Unmarshal([]byte(val), &rec))
	assert.Equal(t, "user-1", rec.UserID)
	assert.NotEmpty(t, rec.RotatedFrom, "successor records its predecessor")
	assert.NotEqual(t, rec.ID, rec.RotatedFrom)
}

func TestManager_MalformedSecretFailsClosed(t *testing.T) {
	m := NewManager(kv.NewMemoryStore(), time.Hour, nil)
	for _, raw := range []string{"", "short", strings.Repeat("*", 64)} {
		_, _, err := m.Rotate(context.Background(), raw)
		assert.ErrorIs(t, err, domain.ErrInvalidSession, "raw=%q", raw)
		assert.NoError(t, m.Revoke(context.Background(), raw))
	}
}

func TestManager_CorruptRecordIsInvalid(t *testing.T) {
	store := kv.NewMemoryStore()
	m := NewManager(store, time.Hour, nil)
	raw, _ := security.GenerateSecret()
	require.NoError(t, store.Set(context.Background(), domain.KeyPrefix+security.HashSecret(raw), []byte("garbage"), time.Hour))

	_, _, err := m.Rotate(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

// failingStore fails writes on demand to simulate the store dying mid-rotation.
type failingStore struct {
	kv.Store
	failSet bool
	failAll bool
}

var errStoreDown = errors.New("connection refused")

func (s *failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.failSet || s.failAll {
		return errStoreDown
	}
	return s.Store.Set(ctx, key, value, ttl)
}

func (s *failingStore) GetDel(ctx context.Context, key string) ([]byte, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	return s.Store.GetDel(ctx, key)
}

func TestManager_WriteFailureAfterClaimEndsChain(t *testing.T) {
	store := &failingStore{Store: kv.NewMemoryStore()}
	m := NewManager(store, time.Hour, nil)
	ctx := context.Background()
	raw, err := m.Create(ctx, "user-1")
	require.NoError(t, err)

	store.failSet = true
	_, _, err = m.Rotate(ctx, raw)
	require.ErrorIs(t, err, errStoreDown)

	store.failSet = false
	_, _, err = m.Rotate(ctx, raw)
	assert.ErrorIs(t, err, domain.ErrInvalidSession, "a half-finished rotation must not leave the old secret usable")
}

func TestManager_StoreOutageIsNotInvalidSession(t *testing.T) {
	store := &failingStore{Store: kv.NewMemoryStore()}
	m := NewManager(store, time.Hour, nil)
	raw, _ := security.GenerateSecret()
	store.failAll = true

	_, _, err := m.Rotate(context.Background(), raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, domain.ErrInvalidSession)

	_, err = m.Create(context.Background(), "user-1")
	assert.ErrorIs(t, err, errStoreDown)
}
