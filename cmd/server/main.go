package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/config"
	"github.com/qs3c/skill_exchange_server/internal/api"
	"github.com/qs3c/skill_exchange_server/internal/api/handler"
	"github.com/qs3c/skill_exchange_server/internal/database"
	"github.com/qs3c/skill_exchange_server/internal/matching"
	"github.com/qs3c/skill_exchange_server/internal/pkg/cron"
	"github.com/qs3c/skill_exchange_server/internal/pkg/logger"
	"github.com/qs3c/skill_exchange_server/internal/pkg/oauth"
	"github.com/qs3c/skill_exchange_server/internal/pkg/oss"
	"github.com/qs3c/skill_exchange_server/internal/pkg/pubsub"
	"github.com/qs3c/skill_exchange_server/internal/pkg/queue"
	"github.com/qs3c/skill_exchange_server/internal/pkg/ws"
	"github.com/qs3c/skill_exchange_server/internal/repository"
	"github.com/qs3c/skill_exchange_server/internal/service"
)

var configPath = flag.String("config", "config/config.yaml", "Path to config file")

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 初始化数据库
	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}
	zlog.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()
	zlog.Info("redis connected")

	// 初始化 OSS（可选）
	var avatars service.AvatarStorage
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			zlog.Warn("failed to init OSS client, avatar upload disabled", zap.Error(err))
		} else {
			avatars = ossClient
			zlog.Info("OSS client initialized")
		}
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	tagRepo := repository.NewTagRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	// 初始化 Service
	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	policy := matching.Policy{
		MinCacheSize:        cfg.Matching.MinCacheSize,
		MaxResults:          cfg.Matching.MaxResults,
		CandidateSampleSize: cfg.Matching.CandidateSampleSize,
	}

	authService := service.NewAuthService(userRepo, oauth.NewStateStore(rdb), cfg)
	userService := service.NewUserService(userRepo, avatars)
	skillService := service.NewSkillService(db, skillRepo, tagRepo, userRepo)
	matchService := service.NewMatchService(matchRepo, skillRepo, userRepo, policy, zlog)
	tutoringService := service.NewTutoringService(db, requestRepo, userRepo, skillRepo, notifications, zlog)

	// WebSocket Hub 订阅 worker 发布的实时事件
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(zlog.Named("ws"))
	go func() {
		err := pubsub.NewSubscriber(rdb).Subscribe(ctx, func(evt *pubsub.Event) {
			if err := hub.SendToUser(evt.UserID, &ws.Message{Type: evt.Type, Data: evt}); err != nil {
				zlog.Warn("failed to forward event", zap.Int64("user_id", evt.UserID), zap.Error(err))
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error("event subscription stopped", zap.Error(err))
		}
	}()

	// 定时任务
	scheduler := cron.NewService(matchService, time.Duration(cfg.Cron.MatchCacheTTLHours)*time.Hour, cfg.Cron.MatchCacheSpec, zlog)
	if err := scheduler.Start(); err != nil {
		zlog.Fatal("failed to start cron", zap.Error(err))
	}
	defer scheduler.Stop()

	// 初始化 Handler 和 Router
	router := api.NewRouter(
		handler.NewAuthHandler(authService, zlog),
		handler.NewUserHandler(userService, zlog),
		handler.NewSkillHandler(skillService, zlog),
		handler.NewMatchHandler(matchService),
		handler.NewTutoringHandler(tutoringService, zlog),
		handler.NewWebSocketHandler(hub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins, zlog),
		handler.NewHealthHandler(map[string]handler.Pinger{
			"database": pingDB(db),
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		userRepo,
		cfg,
		zlog,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	zlog.Info("received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	zlog.Info("server stopped")
}

func pingDB(db *gorm.DB) handler.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
