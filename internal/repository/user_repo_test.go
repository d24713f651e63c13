package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/testutil"
)

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)

	created := testutil.TestUser(t, db)

	found, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Username, found.Username)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)

	email := "unique@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	found, err := repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, email, *found.Email)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	email := "exists@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	exists, err := repo.ExistsByEmail(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)

	notExists, err := repo.ExistsByEmail(ctx, "notexists@example.com")
	require.NoError(t, err)
	assert.False(t, notExists)
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.TestUser(t, db, testutil.WithUsername("alice"))

	exists, err := repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_ListCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)

	me := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	testutil.TestSkill(t, db, other.ID, "Guitar", []string{"theory"})
	testutil.TestSkill(t, db, other.ID, "Secret", nil, testutil.WithVisibility(model.VisibilityPrivate))
	learning := testutil.TestSkill(t, db, me.ID, "Cooking", []string{"baking"})
	testutil.Enroll(t, db, other.ID, learning.ID)

	users, err := repo.ListCandidates(context.Background(), me.ID, 150)
	require.NoError(t, err)
	require.Len(t, users, 1)

	got := users[0]
	assert.Equal(t, other.ID, got.ID)
	require.Len(t, got.SkillsTeaching, 1)
	assert.Equal(t, "Guitar", got.SkillsTeaching[0].Category)
	assert.Equal(t, []string{"theory"}, got.SkillsTeaching[0].TagNames())
	require.Len(t, got.SkillsLearning, 1)
	assert.Equal(t, "Cooking", got.SkillsLearning[0].Category)
}

func TestUserRepository_ListCandidates_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)

	me := testutil.TestUser(t, db)
	for i := 0; i < 5; i++ {
		testutil.TestUser(t, db)
	}

	users, err := repo.ListCandidates(context.Background(), me.ID, 3)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.NotEqual(t, me.ID, u.ID)
	}
}

func TestUserRepository_DebitCredit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := testutil.TestUser(t, db, testutil.WithSkillcoins(50))

	require.NoError(t, repo.Debit(ctx, u.ID, 30))
	assert.ErrorIs(t, repo.Debit(ctx, u.ID, 30), ErrInsufficientBalance)
	require.NoError(t, repo.Credit(ctx, u.ID, 5))

	found, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, found.Skillcoins)

	assert.ErrorIs(t, repo.Credit(ctx, 99999, 5), gorm.ErrRecordNotFound)
}

func TestUserRepository_GetProfileByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUserRepository(db)

	u := testutil.TestUser(t, db, testutil.WithUsername("teacher"))
	testutil.TestSkill(t, db, u.ID, "Guitar", []string{"theory"})
	testutil.TestSkill(t, db, u.ID, "Hidden", nil, testutil.WithVisibility(model.VisibilityPrivate))

	found, err := repo.GetProfileByUsername(context.Background(), "teacher")
	require.NoError(t, err)
	require.Len(t, found.SkillsTeaching, 1)
	assert.Equal(t, "Guitar", found.SkillsTeaching[0].Category)
}
