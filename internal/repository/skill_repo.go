package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

// SkillFilter 技能列表筛选条件
type SkillFilter struct {
	Query      string
	Category   string
	Level      string
	Mode       string
	Visibility string
	Offset     int
	Limit      int
}

type SkillRepository struct {
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

func (r *SkillRepository) WithTx(tx *gorm.DB) *SkillRepository {
	return &SkillRepository{db: tx}
}

func (r *SkillRepository) Create(ctx context.Context, skill *model.Skill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

func (r *SkillRepository) GetByID(ctx context.Context, id int64) (*model.Skill, error) {
	var skill model.Skill
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ?", id).
		First(&skill).Error
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *SkillRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Skill{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List 分页查询，精选优先
func (r *SkillRepository) List(ctx context.Context, f SkillFilter) ([]*model.Skill, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Skill{}).Where("visibility = ?", f.Visibility)

	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Level != "" {
		query = query.Where("level = ?", f.Level)
	}
	if f.Mode != "" {
		query = query.Where("session_mode = ?", f.Mode)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		query = query.Where(
			"(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR EXISTS (SELECT 1 FROM skill_tags st JOIN tags t ON t.id = st.tag_id WHERE st.skill_id = skills.id AND LOWER(t.name) LIKE ?))",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var skills []*model.Skill
	err := query.
		Preload("Teacher").
		Preload("Tags").
		Order("featured DESC").
		Order("id ASC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&skills).Error
	if err != nil {
		return nil, 0, err
	}

	return skills, total, nil
}

// ListTeaching 用户教授的全部技能（不按可见性过滤）
func (r *SkillRepository) ListTeaching(ctx context.Context, userID int64) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("teacher_id = ?", userID).
		Order("updated_at DESC").
		Find(&skills).Error
	return skills, err
}

// ListLearning 用户加入学习的全部技能
func (r *SkillRepository) ListLearning(ctx context.Context, userID int64) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Teacher").
		Joins("JOIN skill_learners sl ON sl.skill_id = skills.id").
		Where("sl.user_id = ?", userID).
		Order("skills.updated_at DESC").
		Find(&skills).Error
	return skills, err
}

// ListRecommended 他人公开技能，分类或标签命中 categories；categories 为空时不做匹配
func (r *SkillRepository) ListRecommended(ctx context.Context, userID int64, categories []string, limit int) ([]*model.Skill, error) {
	query := r.db.WithContext(ctx).
		Where("teacher_id <> ? AND visibility = ?", userID, model.VisibilityPublic)

	if len(categories) > 0 {
		query = query.Where(
			"(category IN ? OR EXISTS (SELECT 1 FROM skill_tags st JOIN tags t ON t.id = st.tag_id WHERE st.skill_id = skills.id AND t.name IN ?))",
			categories, categories,
		)
	}

	var skills []*model.Skill
	err := query.
		Preload("Teacher").
		Preload("Tags").
		Order("featured DESC").
		Order("updated_at DESC").
		Limit(limit).
		Find(&skills).Error
	return skills, err
}

// ListLatestPublic 最新公开技能
func (r *SkillRepository) ListLatestPublic(ctx context.Context, limit int) ([]*model.Skill, error) {
	var skills []*model.Skill
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Tags").
		Where("visibility = ?", model.VisibilityPublic).
		Order("featured DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&skills).Error
	return skills, err
}

// LearningCategories 用户学习中技能的分类
func (r *SkillRepository) LearningCategories(ctx context.Context, userID int64) ([]string, error) {
	var all []string
	err := r.db.WithContext(ctx).Model(&model.Skill{}).
		Joins("JOIN skill_learners sl ON sl.skill_id = skills.id").
		Where("sl.user_id = ?", userID).
		Pluck("skills.category", &all).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(all))
	categories := make([]string, 0, len(all))
	for _, c := range all {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}
	return categories, nil
}

func (r *SkillRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Skill{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceTags 用给定标签替换技能的全部标签
func (r *SkillRepository) ReplaceTags(ctx context.Context, skill *model.Skill, tags []model.Tag) error {
	return r.db.WithContext(ctx).Model(skill).Association("Tags").Replace(tags)
}

func (r *SkillRepository) AddLearner(ctx context.Context, skillID, userID int64) error {
	return r.db.WithContext(ctx).Model(&model.Skill{ID: skillID}).Association("Learners").Append(&model.User{ID: userID})
}

func (r *SkillRepository) RemoveLearner(ctx context.Context, skillID, userID int64) error {
	return r.db.WithContext(ctx).Model(&model.Skill{ID: skillID}).Association("Learners").Delete(&model.User{ID: userID})
}

// LearnerIDs 技能的学习者 ID
func (r *SkillRepository) LearnerIDs(ctx context.Context, skillID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Table("skill_learners").
		Where("skill_id = ?", skillID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// Delete 删除技能及其标签、学习者关联和辅导请求
func (r *SkillRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skill := &model.Skill{ID: id}
		if err := tx.Model(skill).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Model(skill).Association("Learners").Clear(); err != nil {
			return err
		}
		if err := tx.Where("skill_id = ?", id).Delete(&model.SkillRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(skill).Error
	})
}
