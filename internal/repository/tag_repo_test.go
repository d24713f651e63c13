package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/skill_exchange_server/internal/testutil"
)

func TestTagRepository_FindOrCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	first, err := repo.FindOrCreate(ctx, "go")
	require.NoError(t, err)
	second, err := repo.FindOrCreate(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	tags, err := repo.FindOrCreateAll(ctx, []string{"rust", "go", "rust"})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "rust", tags[0].Name)
	assert.Equal(t, first.ID, tags[1].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "go", all[0].Name)
}
