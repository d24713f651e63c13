package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/skill_exchange_server/config"
	"github.com/qs3c/skill_exchange_server/internal/database"
	"github.com/qs3c/skill_exchange_server/internal/matching"
	"github.com/qs3c/skill_exchange_server/internal/pkg/logger"
	"github.com/qs3c/skill_exchange_server/internal/repository"
	"github.com/qs3c/skill_exchange_server/internal/service"
)

var (
	dryRun    = flag.Bool("dry-run", true, "Dry run mode, only count cache rows")
	userID    = flag.Int64("user", 0, "Clear the match cache of a single user")
	all       = flag.Bool("all", false, "Clear the whole match cache")
	olderThan = flag.Int("older-than", 0, "Clear cache rows older than N hours")
)

func main() {
	flag.Parse()

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	if !*all && *userID <= 0 && *olderThan <= 0 {
		zlog.Fatal("nothing to do: pass -user, -all or -older-than")
	}

	// 连接数据库
	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close(db)

	matchRepo := repository.NewMatchRepository(db)
	matchService := service.NewMatchService(
		matchRepo,
		repository.NewSkillRepository(db),
		repository.NewUserRepository(db),
		matching.DefaultPolicy(),
		zlog,
	)

	ctx := context.Background()
	zlog.Info("starting match cache cleanup", zap.Bool("dry_run", *dryRun))

	var (
		affected int64
		scope    string
	)
	switch {
	case *all:
		scope = "all"
		if *dryRun {
			affected, err = matchRepo.CountAll(ctx)
		} else {
			affected, err = matchService.InvalidateAll(ctx)
		}
	case *userID > 0:
		scope = "user"
		if *dryRun {
			affected, err = matchRepo.CountByUser(ctx, *userID)
		} else {
			affected, err = matchService.InvalidateForUser(ctx, *userID)
		}
	default:
		scope = "older-than"
		before := time.Now().Add(-time.Duration(*olderThan) * time.Hour)
		if *dryRun {
			affected, err = matchRepo.CountOlderThan(ctx, before)
		} else {
			affected, err = matchService.PruneMatchCache(ctx, before)
		}
	}
	if err != nil {
		zlog.Fatal("cleanup failed", zap.String("scope", scope), zap.Error(err))
	}

	if *dryRun {
		zlog.Info("dry run, rows that would be removed", zap.String("scope", scope), zap.Int64("rows", affected))
		return
	}
	zlog.Info("cleanup completed", zap.String("scope", scope), zap.Int64("rows", affected))
}
