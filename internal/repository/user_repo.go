package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

// ErrInsufficientBalance 条件扣款未命中任何行
var ErrInsufficientBalance = errors.New("insufficient balance")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetProfileByUsername 公开主页，带教授/学习中的公开技能
func (r *UserRepository) GetProfileByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("SkillsTeaching", "visibility = ?", model.VisibilityPublic).
		Preload("SkillsTeaching.Tags").
		Preload("SkillsLearning", "visibility = ?", model.VisibilityPublic).
		Preload("SkillsLearning.Tags").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// ListCandidates 取除 excludeID 外最多 limit 个用户，预加载公开技能及标签
func (r *UserRepository) ListCandidates(ctx context.Context, excludeID int64, limit int) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Preload("SkillsTeaching", "visibility = ?", model.VisibilityPublic).
		Preload("SkillsTeaching.Tags").
		Preload("SkillsLearning", "visibility = ?", model.VisibilityPublic).
		Preload("SkillsLearning.Tags").
		Where("id <> ?", excludeID).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// Debit 余额充足时扣款，否则返回 ErrInsufficientBalance
func (r *UserRepository) Debit(ctx context.Context, id int64, amount int) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND skillcoins >= ?", id, amount).
		Update("skillcoins", gorm.Expr("skillcoins - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (r *UserRepository) Credit(ctx context.Context, id int64, amount int) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("skillcoins", gorm.Expr("skillcoins + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
