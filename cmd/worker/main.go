package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/skill_exchange_server/config"
	"github.com/qs3c/skill_exchange_server/internal/database"
	"github.com/qs3c/skill_exchange_server/internal/pkg/email"
	"github.com/qs3c/skill_exchange_server/internal/pkg/logger"
	"github.com/qs3c/skill_exchange_server/internal/pkg/pubsub"
	"github.com/qs3c/skill_exchange_server/internal/pkg/queue"
	"github.com/qs3c/skill_exchange_server/internal/repository"
	"github.com/qs3c/skill_exchange_server/internal/worker"
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

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	mailer := email.NewService(&cfg.Email)
	if !mailer.Enabled() {
		zlog.Info("SMTP not configured, email notifications disabled")
	}

	processor := worker.NewProcessor(
		repository.NewRequestRepository(db),
		mailer,
		pubsub.NewPublisher(rdb),
		zlog,
	)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		zlog.Info("received shutdown signal")
		cancel()
	}()

	workers := cfg.Queue.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	zlog.Info("worker started", zap.Int("max_workers", workers), zap.String("queue", cfg.Queue.NotificationQueue))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			wlog := zlog.With(zap.Int("worker_id", workerID))

			for ctx.Err() == nil {
				msg, err := notifications.Pop(ctx, 5*time.Second)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					wlog.Warn("failed to pop notification", zap.Error(err))
					time.Sleep(time.Second)
					continue
				}
				if msg == nil {
					continue // 超时，继续等待
				}

				if err := processor.Process(ctx, msg); err != nil {
					wlog.Error("notification failed",
						zap.String("event", msg.Event),
						zap.Int64("request_id", msg.RequestID),
						zap.Error(err),
					)
				}
			}
			wlog.Info("worker shutting down")
		}(i)
	}

	wg.Wait()
	zlog.Info("worker shutdown complete")
}
