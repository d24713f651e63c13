package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CachePruner 删除早于给定时间的匹配缓存
type CachePruner interface {
	PruneMatchCache(ctx context.Context, before time.Time) (int64, error)
}

// Service 定时任务
type Service struct {
	cron   *cron.Cron
	pruner CachePruner
	ttl    time.Duration
	spec   string
	log    *zap.Logger
	now    func() time.Time
}

func NewService(pruner CachePruner, ttl time.Duration, spec string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	adapter := zapCronLogger{log: log.Named("cron")}
	return &Service{
		cron:   cron.New(cron.WithLogger(adapter), cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter))),
		pruner: pruner,
		ttl:    ttl,
		spec:   spec,
		log:    log,
		now:    time.Now,
	}
}

// Start 注册并启动任务；ttl <= 0 时不注册缓存清理
func (s *Service) Start() error {
	if s.ttl > 0 {
		if _, err := s.cron.AddFunc(s.spec, s.pruneMatchCache); err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
		}
		s.log.Info("match cache pruning scheduled", zap.String("spec", s.spec), zap.Duration("ttl", s.ttl))
	}
	s.cron.Start()
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron service stopped")
}

// Entries 已注册任务数
func (s *Service) Entries() int {
	return len(s.cron.Entries())
}

func (s *Service) pruneMatchCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	before := s.now().Add(-s.ttl)
	n, err := s.pruner.PruneMatchCache(ctx, before)
	if err != nil {
		s.log.Error("failed to prune match cache", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("match cache pruned", zap.Int64("rows", n), zap.Time("before", before))
	}
}

// zapCronLogger 适配 cron.Logger
type zapCronLogger struct {
	log *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
