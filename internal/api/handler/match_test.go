package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/matching"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/repository"
	"github.com/qs3c/skill_exchange_server/internal/service"
	"github.com/qs3c/skill_exchange_server/internal/testutil"
)

func setupMatchRouter(t *testing.T, actorID *int64) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := service.NewMatchService(
		repository.NewMatchRepository(db),
		repository.NewSkillRepository(db),
		repository.NewUserRepository(db),
		matching.DefaultPolicy(),
		testLog,
	)
	h := NewMatchHandler(svc)

	router := gin.New()
	router.GET("/matches", func(c *gin.Context) { mockAuth(*actorID)(c) }, h.List)
	return router, db
}

func TestMatchHandler_List(t *testing.T) {
	var actor int64
	router, db := setupMatchRouter(t, &actor)

	me := testutil.TestUser(t, db)
	actor = me.ID

	t.Run("generated", func(t *testing.T) {
		guitarist := testutil.TestUser(t, db)
		testutil.TestSkill(t, db, me.ID, "Cooking", nil)
		learn := testutil.TestSkill(t, db, guitarist.ID, "Music", nil)
		testutil.Enroll(t, db, me.ID, learn.ID)

		w := performRequest(router, "GET", "/matches", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.MatchListResponse
		decode(t, w, &resp)
		assert.Equal(t, dto.MatchSourceGenerated, resp.Source)
		require.NotEmpty(t, resp.Items)
		assert.Equal(t, guitarist.ID, resp.Items[0].MatchUserID)
		require.NotNil(t, resp.Items[0].MatchUser)
		assert.Equal(t, guitarist.Username, resp.Items[0].MatchUser.Username)
	})

	t.Run("cache", func(t *testing.T) {
		require.NoError(t, db.Exec("DELETE FROM skill_matches").Error)
		for i := 0; i < 5; i++ {
			other := testutil.TestUser(t, db)
			testutil.TestMatch(t, db, me.ID, other.ID, float64(10-i))
		}

		w := performRequest(router, "GET", "/matches", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.MatchListResponse
		decode(t, w, &resp)
		assert.Equal(t, dto.MatchSourceCache, resp.Source)
		require.Len(t, resp.Items, 5)
		assert.Equal(t, 10.0, resp.Items[0].Score)
	})

	t.Run("store failure", func(t *testing.T) {
		require.NoError(t, db.Migrator().DropTable("skill_matches"))

		w := performRequest(router, "GET", "/matches", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to compute matches", parseError(t, w))
	})
}
