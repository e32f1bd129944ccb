package memory

import (
	"context"
	"testing"

	"pulse/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetUnknownKey(t *testing.T) {
	store := New()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestStore_SetThenGetClonesPayload(t *testing.T) {
	store := New()
	ctx := context.Background()

	payload := []byte(`{"a":1}`)
	require.NoError(t, store.Set(ctx, "k", payload))

	payload[0] = 'X'
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got, "the store keeps its own copy")

	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), again, "readers get their own copy")
}
