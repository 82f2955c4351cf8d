package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/pkg/adapters/file"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPersistence(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		p, err := OpenPersistence(config.SessionConfig{Backend: "file", Dir: dir})
		require.NoError(t, err)
		defer p.Close()

		store, ok := p.Store.(*file.Store)
		require.True(t, ok)
		assert.Equal(t, dir, store.BasePath)
		assert.Nil(t, p.Locker)
	})

	t.Run("Memory", func(t *testing.T) {
		p, err := OpenPersistence(config.SessionConfig{Backend: "memory"})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, p.Store)
		assert.NoError(t, p.Close())
	})

	t.Run("Redis shares a locker", func(t *testing.T) {
		mr := miniredis.RunT(t)
		p, err := OpenPersistence(config.SessionConfig{
			Backend:  "redis",
			RedisURL: "redis://" + mr.Addr(),
			Prefix:   "test:",
		})
		require.NoError(t, err)
		defer p.Close()
		require.NotNil(t, p.Locker)

		ctx := context.Background()
		state := domain.NewState("welcome")
		require.NoError(t, p.Store.Save(ctx, "s1", &state))
		ids, err := p.Store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, ids)
	})

	t.Run("Encrypted", func(t *testing.T) {
		dir := t.TempDir()
		key := hex.EncodeToString(bytes.Repeat([]byte{7}, middleware.KeySize))
		p, err := OpenPersistence(config.SessionConfig{Backend: "file", Dir: dir, EncryptionKey: key})
		require.NoError(t, err)

		ctx := context.Background()
		state := domain.NewState("welcome")
		require.NoError(t, p.Store.Save(ctx, "secret", &state))

		raw, err := file.NewStore(dir).Load(ctx, "secret")
		require.NoError(t, err)
		assert.NotEqual(t, "welcome", raw.CurrentStepID)

		loaded, err := p.Store.Load(ctx, "secret")
		require.NoError(t, err)
		assert.Equal(t, "welcome", loaded.CurrentStepID)
	})

	t.Run("Bad encryption key", func(t *testing.T) {
		_, err := OpenPersistence(config.SessionConfig{Backend: "memory", EncryptionKey: "nope"})
		assert.ErrorIs(t, err, middleware.ErrInvalidKey)

		_, err = OpenPersistence(config.SessionConfig{
			Backend:       "memory",
			EncryptionKey: hex.EncodeToString(make([]byte, middleware.KeySize)),
			FallbackKeys:  []string{"old"},
		})
		assert.ErrorContains(t, err, "fallback_keys[0]")
	})

	t.Run("Unknown backend", func(t *testing.T) {
		_, err := OpenPersistence(config.SessionConfig{Backend: "etcd"})
		assert.ErrorContains(t, err, "etcd")
	})
}

func TestResetSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	state := domain.NewState("welcome")
	require.NoError(t, store.Save(ctx, "s1", &state))

	require.NoError(t, ResetSession(ctx, store, "s1"))
	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.NoError(t, ResetSession(ctx, store, "s1"), "resetting a missing session is fine")
}
