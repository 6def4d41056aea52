package store

import (
	"context"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func exerciseStore(t *testing.T, s KeyValueStore) {
	ctx := context.Background()

	_, found, err := s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, KeyAccessToken, "first"))
	require.NoError(t, s.Set(ctx, KeyAccessToken, "second"))

	value, found, err := s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", value)

	require.NoError(t, s.Remove(ctx, KeyAccessToken))
	_, found, err = s.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, s.Remove(ctx, KeyRefreshToken))
}

func Test_Memory_ShouldBeLastWriterWins(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func Test_SQLite_ShouldPersistBetweenConnections(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "agent.db")

	s, err := NewSQLite(file)
	require.NoError(t, err)
	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), KeyMessageList, `["hello"]`))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(file)
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.Get(context.Background(), KeyMessageList)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["hello"]`, value)
}

func Test_Redis_WhenServerAvailable_ShouldBeLastWriterWins(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}

	s, err := NewRedis(context.Background(), url, "devhunt-test:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockBackend) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockBackend) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func Test_Cached_WhenValueLoaded_ShouldHitBackendOnce(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Get", mock.Anything, KeyRefreshToken).Return("token", true, nil).Once()

	cached := NewCached(backend, time.Minute)
	for i := 0; i < 3; i++ {
		value, found, err := cached.Get(context.Background(), KeyRefreshToken)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "token", value)
	}

	backend.AssertExpectations(t)
}

func Test_Cached_WhenBackendSetFails_ShouldNotServeStaleValue(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Set", mock.Anything, KeyAccessToken, "new").Return(errors.New("disk full")).Once()
	backend.On("Get", mock.Anything, KeyAccessToken).Return("old", true, nil).Once()

	cached := NewCached(backend, time.Minute)
	assert.Error(t, cached.Set(context.Background(), KeyAccessToken, "new"))

	value, _, err := cached.Get(context.Background(), KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "old", value)
	backend.AssertExpectations(t)
}

func Test_Cached_Remove_ShouldEvictAndDelegate(t *testing.T) {
	backend := &mockBackend{}
	backend.On("Set", mock.Anything, KeyAccessToken, "token").Return(nil)
	backend.On("Remove", mock.Anything, KeyAccessToken).Return(nil)
	backend.On("Get", mock.Anything, KeyAccessToken).Return("", false, nil)

	cached := NewCached(backend, time.Minute)
	require.NoError(t, cached.Set(context.Background(), KeyAccessToken, "token"))
	require.NoError(t, cached.Remove(context.Background(), KeyAccessToken))

	_, found, err := cached.Get(context.Background(), KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, found)
	backend.AssertExpectations(t)
}
