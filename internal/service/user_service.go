package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/repository"
)

const MaxAvatarSize = 5 << 20

var (
	ErrNotAuthorizedProfile = errors.New("Not authorized to update this profile.")
	ErrInvalidAvailability  = errors.New("Invalid availability value")
	ErrStorageNotConfigured = errors.New("Avatar storage is not configured")
	ErrAvatarTooLarge       = errors.New("Avatar must be 5MB or smaller")
	ErrUnsupportedImage     = errors.New("Only JPEG, PNG and WebP images are allowed")
)

// AvatarStorage 头像对象存储
type AvatarStorage interface {
	UploadAvatar(userID int64, data []byte, ext string) (string, error)
	DeleteAvatar(url string) error
}

type UserService struct {
	userRepo *repository.UserRepository
	avatars  AvatarStorage
}

// NewUserService avatars 为 nil 时头像上传不可用
func NewUserService(userRepo *repository.UserRepository, avatars AvatarStorage) *UserService {
	return &UserService{
		userRepo: userRepo,
		avatars:  avatars,
	}
}

// GetProfile 按用户名获取公开主页
func (s *UserService) GetProfile(ctx context.Context, username string) (*dto.PublicProfile, error) {
	user, err := s.userRepo.GetProfileByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.NewPublicProfile(user), nil
}

// UpdateProfile 本人或管理员可修改资料
func (s *UserService) UpdateProfile(ctx context.Context, actorID, targetID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	if actorID != targetID {
		actor, err := s.userRepo.GetByID(ctx, actorID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if actor == nil || !actor.IsAdmin() {
			return nil, ErrNotAuthorizedProfile
		}
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.College != nil {
		fields["college"] = *req.College
	}
	if req.Headline != nil {
		fields["headline"] = *req.Headline
	}
	if len(req.Availability) > 0 && !bytes.Equal(req.Availability, []byte("null")) {
		availability, err := ParseAvailability(req.Availability)
		if err != nil {
			return nil, err
		}
		fields["availability"] = availability
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
			return nil, err
		}
		if user, err = s.userRepo.GetByID(ctx, targetID); err != nil {
			return nil, err
		}
	}

	return dto.NewUserInfo(user), nil
}

// ParseAvailability true/false 映射为 ONLINE/OFFLINE，字符串须为合法枚举
func ParseAvailability(raw json.RawMessage) (string, error) {
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		if flag {
			return model.AvailabilityOnline, nil
		}
		return model.AvailabilityOffline, nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", ErrInvalidAvailability
	}
	value = strings.ToUpper(strings.TrimSpace(value))
	if !model.IsValidAvailability(value) {
		return "", ErrInvalidAvailability
	}
	return value, nil
}

// UploadAvatar 上传头像并替换旧头像
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, data []byte, ext string) (*dto.AvatarResponse, error) {
	if s.avatars == nil {
		return nil, ErrStorageNotConfigured
	}
	if len(data) > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}
	ext = strings.ToLower(ext)
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return nil, ErrUnsupportedImage
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	url, err := s.avatars.UploadAvatar(userID, data, ext)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"profile_img": url}); err != nil {
		return nil, err
	}

	if user.ProfileImg != "" {
		// 旧头像删除失败不影响本次上传
		_ = s.avatars.DeleteAvatar(user.ProfileImg)
	}

	return &dto.AvatarResponse{ProfileImg: url}, nil
}
