package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/qs3c/skill_exchange_server/internal/matching"
	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/pkg/metrics"
	"github.com/qs3c/skill_exchange_server/internal/repository"
)

var ErrMatchComputation = errors.New("Failed to compute matches")

type MatchService struct {
	matchRepo *repository.MatchRepository
	skillRepo *repository.SkillRepository
	userRepo  *repository.UserRepository
	policy    matching.Policy
	log       *zap.Logger
}

func NewMatchService(
	matchRepo *repository.MatchRepository,
	skillRepo *repository.SkillRepository,
	userRepo *repository.UserRepository,
	policy matching.Policy,
	log *zap.Logger,
) *MatchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchService{
		matchRepo: matchRepo,
		skillRepo: skillRepo,
		userRepo:  userRepo,
		policy:    policy.Normalize(),
		log:       log.Named("matching"),
	}
}

// GetMatches 缓存足够时直接返回，否则重新评分并整体替换缓存
func (s *MatchService) GetMatches(ctx context.Context, userID int64) (*dto.MatchListResponse, error) {
	cached, err := s.matchRepo.ListByUser(ctx, userID, s.policy.MaxResults)
	if err != nil {
		return nil, s.fail(userID, "read cache", err)
	}
	if s.policy.CacheHit(len(cached)) {
		metrics.MatchRequestsTotal.WithLabelValues(dto.MatchSourceCache).Inc()
		items := make([]*dto.MatchEntry, 0, len(cached))
		for _, m := range cached {
			items = append(items, cachedEntry(m))
		}
		return &dto.MatchListResponse{Source: dto.MatchSourceCache, Items: items}, nil
	}

	started := time.Now()
	ranked, err := s.compute(ctx, userID)
	if err != nil {
		return nil, s.fail(userID, "compute", err)
	}

	now := time.Now()
	rows := make([]*model.SkillMatch, 0, len(ranked))
	items := make([]*dto.MatchEntry, 0, len(ranked))
	for _, r := range ranked {
		metadata, err := matchMetadata(r.Candidate)
		if err != nil {
			return nil, s.fail(userID, "metadata", err)
		}
		row := &model.SkillMatch{
			ID:          model.MatchID(userID, r.Candidate.User.ID),
			UserID:      userID,
			MatchUserID: r.Candidate.User.ID,
			Score:       r.Result.Score,
			Reasons:     datatypes.JSONSlice[string](r.Result.Reasons),
			Metadata:    metadata,
			CreatedAt:   now,
		}
		rows = append(rows, row)
		items = append(items, &dto.MatchEntry{
			ID:          row.ID,
			UserID:      userID,
			MatchUserID: row.MatchUserID,
			Score:       row.Score,
			Reasons:     stringsOrEmpty(r.Result.Reasons),
			MatchUser:   newMatchUser(r.Candidate.User),
		})
	}

	if len(rows) > 0 {
		if err := s.matchRepo.ReplaceForUser(ctx, userID, rows); err != nil {
			return nil, s.fail(userID, "persist", err)
		}
	}

	metrics.MatchComputeDuration.Observe(time.Since(started).Seconds())
	metrics.MatchRequestsTotal.WithLabelValues(dto.MatchSourceGenerated).Inc()
	s.log.Debug("matches generated",
		zap.Int64("user_id", userID),
		zap.Int("results", len(items)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &dto.MatchListResponse{Source: dto.MatchSourceGenerated, Items: items}, nil
}

func (s *MatchService) compute(ctx context.Context, userID int64) ([]matching.Ranked, error) {
	teaching, err := s.skillRepo.ListTeaching(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list teaching: %w", err)
	}
	learning, err := s.skillRepo.ListLearning(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list learning: %w", err)
	}
	subject := matching.BuildProfile(teaching, learning)

	users, err := s.userRepo.ListCandidates(ctx, userID, s.policy.CandidateSampleSize)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	metrics.MatchCandidatesScored.Observe(float64(len(users)))

	candidates := make([]matching.Candidate, 0, len(users))
	for _, u := range users {
		candidates = append(candidates, matching.CandidateFromUser(u))
	}

	return matching.Rank(subject, candidates, s.policy.MaxResults), nil
}

func (s *MatchService) fail(userID int64, stage string, err error) error {
	metrics.MatchRequestsTotal.WithLabelValues("error").Inc()
	s.log.Error("match computation failed",
		zap.Int64("user_id", userID),
		zap.String("stage", stage),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %v", ErrMatchComputation, err)
}

// InvalidateForUser 清空用户的匹配缓存
func (s *MatchService) InvalidateForUser(ctx context.Context, userID int64) (int64, error) {
	n, err := s.matchRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	metrics.MatchCacheRowsPruned.Add(float64(n))
	return n, nil
}

// InvalidateAll 清空全部匹配缓存
func (s *MatchService) InvalidateAll(ctx context.Context) (int64, error) {
	n, err := s.matchRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	metrics.MatchCacheRowsPruned.Add(float64(n))
	return n, nil
}

// PruneMatchCache 删除早于 before 的缓存行
func (s *MatchService) PruneMatchCache(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.matchRepo.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, err
	}
	metrics.MatchCacheRowsPruned.Add(float64(n))
	return n, nil
}

func cachedEntry(m *model.SkillMatch) *dto.MatchEntry {
	return &dto.MatchEntry{
		ID:          m.ID,
		UserID:      m.UserID,
		MatchUserID: m.MatchUserID,
		Score:       m.Score,
		Reasons:     stringsOrEmpty(m.Reasons),
		MatchUser:   newMatchUser(m.MatchUser),
	}
}

func newMatchUser(u *model.User) *dto.MatchUser {
	if u == nil {
		return nil
	}
	return &dto.MatchUser{
		ID:               u.ID,
		Name:             u.Name,
		Username:         u.Username,
		ProfileImg:       u.ProfileImg,
		Headline:         u.Headline,
		Availability:     u.Availability,
		SubscriptionTier: u.SubscriptionTier,
		Skillcoins:       u.Skillcoins,
	}
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// matchSnapshot 评分时候选人的快照
type matchSnapshot struct {
	User             *dto.MatchUser `json:"user"`
	TeachCategories  []string       `json:"teachCategories"`
	TeachTags        []string       `json:"teachTags"`
	LearnCategories  []string       `json:"learnCategories"`
	LearnTags        []string       `json:"learnTags"`
	Availability     string         `json:"availability"`
	SubscriptionTier string         `json:"subscriptionTier"`
}

// matchMetadata 记录评分时候选人的画像
func matchMetadata(c matching.Candidate) (datatypes.JSON, error) {
	data, err := json.Marshal(matchSnapshot{
		User:             newMatchUser(c.User),
		TeachCategories:  stringsOrEmpty(c.Profile.TeachCategories.Values()),
		TeachTags:        stringsOrEmpty(c.Profile.TeachTags.Values()),
		LearnCategories:  stringsOrEmpty(c.Profile.LearnCategories.Values()),
		LearnTags:        stringsOrEmpty(c.Profile.LearnTags.Values()),
		Availability:     c.Availability,
		SubscriptionTier: c.SubscriptionTier,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal match metadata: %w", err)
	}
	return datatypes.JSON(data), nil
}
