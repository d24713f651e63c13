package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/pkg/metrics"
	"github.com/qs3c/skill_exchange_server/internal/pkg/pubsub"
	"github.com/qs3c/skill_exchange_server/internal/pkg/queue"
	"github.com/qs3c/skill_exchange_server/internal/repository"
)

// Mailer 辅导请求邮件通知
type Mailer interface {
	Enabled() bool
	SendRequestCreated(to, tutorName, studentName, skillName string, duration int, message string) error
	SendRequestAccepted(to, studentName, tutorName, skillName string, cost int, tutorMessage string) error
	SendRequestRejected(to, studentName, tutorName, skillName, tutorMessage string) error
}

// EventPublisher 实时事件发布
type EventPublisher interface {
	Publish(ctx context.Context, evt *pubsub.Event) error
}

// Processor 通知任务处理器
type Processor struct {
	requestRepo *repository.RequestRepository
	mailer      Mailer
	publisher   EventPublisher
	log         *zap.Logger
}

// NewProcessor mailer 或 publisher 为 nil 时跳过对应渠道
func NewProcessor(requestRepo *repository.RequestRepository, mailer Mailer, publisher EventPublisher, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		requestRepo: requestRepo,
		mailer:      mailer,
		publisher:   publisher,
		log:         log.Named("worker"),
	}
}

// Process 推送实时事件并发送邮件；请求已被删除时丢弃任务
func (p *Processor) Process(ctx context.Context, msg *queue.NotificationMessage) error {
	request, err := p.requestRepo.GetDetail(ctx, msg.RequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.log.Info("request gone, dropping notification",
				zap.String("event", msg.Event),
				zap.Int64("request_id", msg.RequestID),
			)
			metrics.NotificationsTotal.WithLabelValues(msg.Event, "dropped").Inc()
			return nil
		}
		metrics.NotificationsTotal.WithLabelValues(msg.Event, "failed").Inc()
		return fmt.Errorf("failed to load request: %w", err)
	}

	var errs []error
	if err := p.publish(ctx, msg, request); err != nil {
		errs = append(errs, fmt.Errorf("publish: %w", err))
	}
	if err := p.sendEmail(msg, request); err != nil {
		errs = append(errs, fmt.Errorf("email: %w", err))
	}

	if len(errs) > 0 {
		metrics.NotificationsTotal.WithLabelValues(msg.Event, "failed").Inc()
		return errors.Join(errs...)
	}
	metrics.NotificationsTotal.WithLabelValues(msg.Event, "delivered").Inc()
	return nil
}

func (p *Processor) publish(ctx context.Context, msg *queue.NotificationMessage, r *model.SkillRequest) error {
	if p.publisher == nil {
		return nil
	}

	evt := &pubsub.Event{
		Type:      pubsub.TypeTutoringUpdate,
		UserID:    msg.RecipientID(),
		RequestID: r.ID,
		Status:    r.Status,
		Message:   r.TutorMessage,
	}
	if msg.Event == queue.EventRequestCreated {
		evt.Type = pubsub.TypeTutoringRequest
		evt.Message = r.Message
	}
	return p.publisher.Publish(ctx, evt)
}

func (p *Processor) sendEmail(msg *queue.NotificationMessage, r *model.SkillRequest) error {
	if p.mailer == nil || !p.mailer.Enabled() {
		return nil
	}
	if r.Student == nil || r.Tutor == nil {
		return nil
	}

	skillName := msg.SkillName
	if r.Skill != nil {
		skillName = r.Skill.Name
	}

	switch msg.Event {
	case queue.EventRequestCreated:
		if r.Tutor.Email == nil {
			return nil
		}
		return p.mailer.SendRequestCreated(*r.Tutor.Email, r.Tutor.Name, r.Student.Name, skillName, r.Duration, r.Message)
	case queue.EventRequestAccepted:
		if r.Student.Email == nil {
			return nil
		}
		return p.mailer.SendRequestAccepted(*r.Student.Email, r.Student.Name, r.Tutor.Name, skillName, r.Cost, r.TutorMessage)
	case queue.EventRequestRejected:
		if r.Student.Email == nil {
			return nil
		}
		return p.mailer.SendRequestRejected(*r.Student.Email, r.Student.Name, r.Tutor.Name, skillName, r.TutorMessage)
	}

	p.log.Warn("unknown notification event", zap.String("event", msg.Event))
	return nil
}
