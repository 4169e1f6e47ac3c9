package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (s *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

type memKeyer struct{}

func (memKeyer) AccessSessionKey(accessID string) string { return "sk:session:access:" + accessID }

func newTestManager() (*Manager, *memStore) {
	store := newMemStore()
	return &Manager{store: store, keyer: memKeyer{}, ttl: time.Minute}, store
}

func TestManagerRegisterAndCheck(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	id := NewAccessID()
	require.NoError(t, mgr.Register(ctx, id))

	ok, err := mgr.HasSession(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = mgr.HasSession(ctx, "unknown")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManagerRevoke(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	id := NewAccessID()
	require.NoError(t, mgr.Register(ctx, id))
	require.NoError(t, mgr.Revoke(ctx, id))

	ok, err := mgr.HasSession(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManagerRejectsEmptyAccessID(t *testing.T) {
	mgr, _ := newTestManager()
	require.Error(t, mgr.Register(context.Background(), " "))
	require.Error(t, mgr.Revoke(context.Background(), ""))
}
