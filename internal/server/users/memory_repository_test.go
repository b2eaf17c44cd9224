package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/nyayguru/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	a, err := r.Create(ctx, &User{Username: "a", Email: "A@example.com"})
	require.NoError(t, err)
	b, err := r.Create(ctx, &User{Username: "b", Email: "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	_, err = r.Create(ctx, &User{Email: " a@EXAMPLE.com "})
	require.ErrorIs(t, err, shared.ErrorAlreadyExists)

	got, err := r.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	// returned users are copies
	got.Username = "changed"
	again, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Username)

	again.Email = "b@example.com"
	require.ErrorIs(t, r.Update(ctx, again), shared.ErrorAlreadyExists)

	again.Email = "new@example.com"
	require.NoError(t, r.Update(ctx, again))
	_, err = r.GetByEmail(ctx, "a@example.com")
	require.ErrorIs(t, err, shared.ErrorNotFound)
	_, err = r.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)

	require.ErrorIs(t, r.Update(ctx, &User{ID: 99}), shared.ErrorNotFound)
	_, err = r.GetByID(ctx, 99)
	require.ErrorIs(t, err, shared.ErrorNotFound)
}
