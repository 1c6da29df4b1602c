package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/acopio/formflow/pkg/adapters/redis"
	"github.com/acopio/formflow/pkg/domain"
	"github.com/acopio/formflow/pkg/ports/tests"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestStoreContract(t *testing.T) {
	store := redisadapter.NewFromClient(newTestClient(t))
	tests.RunSchemaStoreContract(t, store)
}

func TestStoreList(t *testing.T) {
	store := redisadapter.NewFromClient(newTestClient(t))
	ctx := context.Background()

	doc := &domain.Document{
		InstructionStart: "a",
		Instructions:     []domain.Instruction{{ID: "a"}},
	}

	_, err := store.SaveSchema(ctx, "form-1", doc)
	require.NoError(t, err)
	_, err = store.SaveSchema(ctx, "form-2", doc)
	require.NoError(t, err)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"form-1", "form-2"}, ids)

	require.NoError(t, store.DeleteSchema(ctx, "form-1"))
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"form-2"}, ids)
}

func TestStoreRejectsInvalidSchema(t *testing.T) {
	store := redisadapter.NewFromClient(newTestClient(t))

	doc := &domain.Document{
		Instructions: []domain.Instruction{{ID: "a"}, {ID: "a"}},
	}
	_, err := store.SaveSchema(context.Background(), "form-1", doc)
	assert.Error(t, err)
}

func TestLocker(t *testing.T) {
	client := newTestClient(t)
	locker := redisadapter.NewLocker(client, "formflow:schema:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "form-1", time.Minute)
	require.NoError(t, err)

	t.Run("Second Acquire Blocks Until Timeout", func(t *testing.T) {
		timeoutCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
		defer cancel()
		_, err := locker.Lock(timeoutCtx, "form-1", time.Minute)
		assert.ErrorIs(t, err, redisadapter.ErrLockAcquire)
	})

	t.Run("Reacquire After Unlock", func(t *testing.T) {
		require.NoError(t, unlock(ctx))
		unlock2, err := locker.Lock(ctx, "form-1", time.Minute)
		require.NoError(t, err)
		require.NoError(t, unlock2(ctx))
	})
}
