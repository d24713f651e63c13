package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ListByUser 按分数降序读取缓存，带匹配用户
func (r *MatchRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.SkillMatch, error) {
	var matches []*model.SkillMatch
	err := r.db.WithContext(ctx).
		Preload("MatchUser").
		Where("user_id = ?", userID).
		Order("score DESC").
		Order("created_at ASC").
		Order("match_user_id ASC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SkillMatch{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ReplaceForUser 在同一事务中删除旧缓存并写入新结果
func (r *MatchRepository) ReplaceForUser(ctx context.Context, userID int64, matches []*model.SkillMatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.SkillMatch{}).Error; err != nil {
			return err
		}
		if len(matches) == 0 {
			return nil
		}
		return tx.Omit("MatchUser").Create(&matches).Error
	})
}

// DeleteByUser 清空用户缓存
func (r *MatchRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.SkillMatch{})
	return result.RowsAffected, result.Error
}

// DeleteAll 清空全部缓存
func (r *MatchRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.SkillMatch{})
	return result.RowsAffected, result.Error
}

// DeleteOlderThan 删除创建时间早于 before 的缓存行
func (r *MatchRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&model.SkillMatch{})
	return result.RowsAffected, result.Error
}

// CountAll 缓存总行数
func (r *MatchRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SkillMatch{}).Count(&count).Error
	return count, err
}

// CountOlderThan 创建时间早于 before 的缓存行数
func (r *MatchRepository) CountOlderThan(ctx context.Context, before time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SkillMatch{}).Where("created_at < ?", before).Count(&count).Error
	return count, err
}
