package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) WithTx(tx *gorm.DB) *RequestRepository {
	return &RequestRepository{db: tx}
}

func (r *RequestRepository) Create(ctx context.Context, req *model.SkillRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.SkillRequest, error) {
	var req model.SkillRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetDetail 带学生、导师和技能
func (r *RequestRepository) GetDetail(ctx context.Context, id int64) (*model.SkillRequest, error) {
	var req model.SkillRequest
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		Preload("Skill").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByUser 用户作为学生或导师的全部请求，最新在前
func (r *RequestRepository) ListByUser(ctx context.Context, userID int64) ([]*model.SkillRequest, error) {
	var reqs []*model.SkillRequest
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		Preload("Skill").
		Where("student_id = ? OR tutor_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reqs).Error
	return reqs, err
}

// TransitionFromPending 仅当请求仍为 PENDING 时更新状态，返回是否命中
func (r *RequestRepository) TransitionFromPending(ctx context.Context, id int64, status, tutorMessage string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.SkillRequest{}).
		Where("id = ? AND status = ?", id, model.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"tutor_message": tutorMessage,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
