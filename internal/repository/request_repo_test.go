package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/testutil"
)

func TestRequestRepository_ListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRequestRepository(db)

	student := testutil.TestUser(t, db)
	tutor := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	skill := testutil.TestSkill(t, db, tutor.ID, "Guitar", nil)
	first := testutil.TestRequest(t, db, student.ID, tutor.ID, skill.ID, 30, model.RequestStatusPending)
	second := testutil.TestRequest(t, db, student.ID, tutor.ID, skill.ID, 60, model.RequestStatusRejected)

	reqs, err := repo.ListByUser(context.Background(), tutor.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, second.ID, reqs[0].ID)
	assert.Equal(t, first.ID, reqs[1].ID)
	require.NotNil(t, reqs[0].Student)
	assert.Equal(t, student.ID, reqs[0].Student.ID)
	require.NotNil(t, reqs[0].Skill)

	reqs, err = repo.ListByUser(context.Background(), stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestRequestRepository_TransitionFromPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	student := testutil.TestUser(t, db)
	tutor := testutil.TestUser(t, db)
	skill := testutil.TestSkill(t, db, tutor.ID, "Guitar", nil)
	req := testutil.TestRequest(t, db, student.ID, tutor.ID, skill.ID, 30, model.RequestStatusPending)

	ok, err := repo.TransitionFromPending(ctx, req.ID, model.RequestStatusRejected, "busy")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionFromPending(ctx, req.ID, model.RequestStatusAccepted, "")
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, found.Status)
	assert.Equal(t, "busy", found.TutorMessage)
}
