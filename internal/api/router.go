package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/qs3c/skill_exchange_server/config"
	"github.com/qs3c/skill_exchange_server/internal/api/handler"
	"github.com/qs3c/skill_exchange_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	skillHandler     *handler.SkillHandler
	matchHandler     *handler.MatchHandler
	tutoringHandler  *handler.TutoringHandler
	websocketHandler *handler.WebSocketHandler
	healthHandler    *handler.HealthHandler
	users            middleware.UserLoader
	cfg              *config.Config
	log              *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	skillHandler *handler.SkillHandler,
	matchHandler *handler.MatchHandler,
	tutoringHandler *handler.TutoringHandler,
	websocketHandler *handler.WebSocketHandler,
	healthHandler *handler.HealthHandler,
	users middleware.UserLoader,
	cfg *config.Config,
	log *zap.Logger,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		skillHandler:     skillHandler,
		matchHandler:     matchHandler,
		tutoringHandler:  tutoringHandler,
		websocketHandler: websocketHandler,
		healthHandler:    healthHandler,
		users:            users,
		cfg:              cfg,
		log:              log,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog(r.log))
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", r.healthHandler.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(r.cfg.JWT.Secret, r.users)

	api := engine.Group("/api")
	{
		// WebSocket，token 走 query
		api.GET("/ws", r.websocketHandler.Handle)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.authHandler.Signup)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/google", r.authHandler.GoogleAuth)
			auth.GET("/google/callback", r.authHandler.GoogleCallback)
			auth.GET("/me", requireAuth, r.authHandler.Me)
		}

		users := api.Group("/users")
		{
			users.POST("/avatar", requireAuth, r.userHandler.UploadAvatar)
			users.GET("/:username", r.userHandler.GetProfile)
			users.PATCH("/:id", requireAuth, r.userHandler.UpdateProfile)
		}

		skills := api.Group("/skills")
		{
			skills.GET("", r.skillHandler.List)
			skills.POST("", requireAuth, r.skillHandler.Create)
			skills.GET("/me", requireAuth, r.skillHandler.Mine)
			skills.GET("/recommended", requireAuth, r.skillHandler.Recommended)
			skills.POST("/:id/enroll", requireAuth, r.skillHandler.Enroll)
			skills.DELETE("/:id/enroll", requireAuth, r.skillHandler.Unenroll)
			skills.PATCH("/:id", requireAuth, r.skillHandler.Update)
			skills.DELETE("/:id", requireAuth, r.skillHandler.Delete)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", r.skillHandler.ListTags)
			tags.POST("", requireAuth, r.skillHandler.CreateTag)
		}

		api.GET("/matches", requireAuth, r.matchHandler.List)

		tutoring := api.Group("/tutoring", requireAuth)
		{
			tutoring.GET("/my-requests", r.tutoringHandler.MyRequests)
			tutoring.POST("/request", r.tutoringHandler.Create)
			tutoring.PATCH("/request/:id", r.tutoringHandler.Respond)
		}
	}

	return engine
}
