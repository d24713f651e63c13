package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) WithTx(tx *gorm.DB) *TagRepository {
	return &TagRepository{db: tx}
}

func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

// FindOrCreate 按名称查找，不存在则创建
func (r *TagRepository) FindOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	tag := model.Tag{Name: name}
	err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindOrCreateAll 去空白、去重后逐个查找或创建，保持输入顺序
func (r *TagRepository) FindOrCreateAll(ctx context.Context, names []string) ([]model.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	tags := make([]model.Tag, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		tag, err := r.FindOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}
