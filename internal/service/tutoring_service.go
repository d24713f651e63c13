package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/pkg/metrics"
	"github.com/qs3c/skill_exchange_server/internal/pkg/queue"
	"github.com/qs3c/skill_exchange_server/internal/repository"
)

var (
	ErrInvalidDuration        = errors.New("Duration must be a positive number of minutes")
	ErrSelfRequest            = errors.New("You cannot request tutoring from yourself")
	ErrTutorNotFound          = errors.New("Tutor not found")
	ErrSkillNotTaughtByTutor  = errors.New("Skill is not taught by this tutor")
	ErrInsufficientSkillcoins = errors.New("Insufficient skillcoins")
	ErrCreateRequest          = errors.New("Failed to create tutoring request")
	ErrRequestNotFound        = errors.New("Request not found")
	ErrNotAuthorizedRequest   = errors.New("Not authorized")
	ErrInvalidRequestStatus   = errors.New("Status must be ACCEPTED or REJECTED")
	ErrRequestNotPending      = errors.New("Request has already been processed")
	ErrUpdateRequest          = errors.New("Failed to update tutoring request")
	ErrFetchRequests          = errors.New("Failed to fetch tutoring requests")
)

// Notifier 投递通知任务
type Notifier interface {
	Push(ctx context.Context, msg *queue.NotificationMessage) error
}

type TutoringService struct {
	db          *gorm.DB
	requestRepo *repository.RequestRepository
	userRepo    *repository.UserRepository
	skillRepo   *repository.SkillRepository
	notifier    Notifier
	log         *zap.Logger
}

// NewTutoringService notifier 为 nil 时不投递通知
func NewTutoringService(
	db *gorm.DB,
	requestRepo *repository.RequestRepository,
	userRepo *repository.UserRepository,
	skillRepo *repository.SkillRepository,
	notifier Notifier,
	log *zap.Logger,
) *TutoringService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TutoringService{
		db:          db,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		skillRepo:   skillRepo,
		notifier:    notifier,
		log:         log.Named("tutoring"),
	}
}

// CreateRequest 学生向导师发起请求，余额须不少于费用
func (s *TutoringService) CreateRequest(ctx context.Context, studentID int64, req *dto.CreateTutoringRequest) (*dto.TutoringRequestInfo, error) {
	if req.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if req.TutorID == studentID {
		return nil, ErrSelfRequest
	}

	if _, err := s.userRepo.GetByID(ctx, req.TutorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTutorNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCreateRequest, err)
	}

	skill, err := s.skillRepo.GetByID(ctx, req.SkillID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCreateRequest, err)
	}
	if skill.TeacherID != req.TutorID {
		return nil, ErrSkillNotTaughtByTutor
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCreateRequest, err)
	}

	cost := model.SessionCost(req.Duration)
	if student.Skillcoins < cost {
		return nil, ErrInsufficientSkillcoins
	}

	request := &model.SkillRequest{
		StudentID: studentID,
		TutorID:   req.TutorID,
		SkillID:   req.SkillID,
		Message:   strings.TrimSpace(req.Message),
		Duration:  req.Duration,
		Cost:      cost,
		Status:    model.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateRequest, err)
	}

	detail, err := s.requestRepo.GetDetail(ctx, request.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateRequest, err)
	}

	s.notify(ctx, queue.EventRequestCreated, detail)
	return dto.NewTutoringRequestInfo(detail), nil
}

// RespondToRequest 导师接受或拒绝；接受时在同一事务内完成状态变更与转账
func (s *TutoringService) RespondToRequest(ctx context.Context, tutorID, requestID int64, req *dto.RespondTutoringRequest) (*dto.TutoringRequestInfo, error) {
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != model.RequestStatusAccepted && status != model.RequestStatusRejected {
		return nil, ErrInvalidRequestStatus
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpdateRequest, err)
	}
	if request.TutorID != tutorID {
		return nil, ErrNotAuthorizedRequest
	}
	if request.Status != model.RequestStatusPending {
		metrics.TutoringSettlementsTotal.WithLabelValues("conflict").Inc()
		return nil, ErrRequestNotPending
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.requestRepo.WithTx(tx).TransitionFromPending(ctx, requestID, status, strings.TrimSpace(req.Message))
		if err != nil {
			return err
		}
		if !ok {
			return ErrRequestNotPending
		}
		if status != model.RequestStatusAccepted {
			return nil
		}

		users := s.userRepo.WithTx(tx)
		if err := users.Debit(ctx, request.StudentID, request.Cost); err != nil {
			return err
		}
		return users.Credit(ctx, request.TutorID, request.Cost)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotPending):
			metrics.TutoringSettlementsTotal.WithLabelValues("conflict").Inc()
			return nil, ErrRequestNotPending
		case errors.Is(err, repository.ErrInsufficientBalance):
			metrics.TutoringSettlementsTotal.WithLabelValues("insufficient").Inc()
			return nil, ErrInsufficientSkillcoins
		}
		s.log.Error("failed to settle tutoring request", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpdateRequest, err)
	}
	metrics.TutoringSettlementsTotal.WithLabelValues(strings.ToLower(status)).Inc()

	detail, err := s.requestRepo.GetDetail(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpdateRequest, err)
	}

	event := queue.EventRequestRejected
	if status == model.RequestStatusAccepted {
		event = queue.EventRequestAccepted
	}
	s.notify(ctx, event, detail)

	return dto.NewTutoringRequestInfo(detail), nil
}

// ListMyRequests 我发起的和收到的请求，最新在前
func (s *TutoringService) ListMyRequests(ctx context.Context, userID int64) ([]*dto.TutoringRequestInfo, error) {
	requests, err := s.requestRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchRequests, err)
	}

	items := make([]*dto.TutoringRequestInfo, 0, len(requests))
	for _, r := range requests {
		items = append(items, dto.NewTutoringRequestInfo(r))
	}
	return items, nil
}

// notify 投递失败只记录日志，不影响请求结果
func (s *TutoringService) notify(ctx context.Context, event string, r *model.SkillRequest) {
	if s.notifier == nil {
		return
	}

	msg := &queue.NotificationMessage{
		Event:        event,
		RequestID:    r.ID,
		StudentID:    r.StudentID,
		TutorID:      r.TutorID,
		SkillID:      r.SkillID,
		Duration:     r.Duration,
		Cost:         r.Cost,
		TutorMessage: r.TutorMessage,
		OccurredAt:   time.Now(),
	}
	if r.Skill != nil {
		msg.SkillName = r.Skill.Name
	}

	if err := s.notifier.Push(ctx, msg); err != nil {
		s.log.Warn("failed to enqueue notification",
			zap.String("event", event),
			zap.Int64("request_id", r.ID),
			zap.Error(err),
		)
	}
}
