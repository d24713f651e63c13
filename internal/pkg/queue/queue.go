package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 通知事件类型
const (
	EventRequestCreated  = "request_created"
	EventRequestAccepted = "request_accepted"
	EventRequestRejected = "request_rejected"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// NotificationMessage 辅导请求状态变化的通知任务
type NotificationMessage struct {
	Event        string    `json:"event"`
	RequestID    int64     `json:"requestId"`
	StudentID    int64     `json:"studentId"`
	TutorID      int64     `json:"tutorId"`
	SkillID      int64     `json:"skillId"`
	SkillName    string    `json:"skillName"`
	Duration     int       `json:"duration"`
	Cost         int       `json:"cost"`
	TutorMessage string    `json:"tutorMessage,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// RecipientID 接收通知的用户：新请求通知导师，其余通知学生
func (m *NotificationMessage) RecipientID() int64 {
	if m.Event == EventRequestCreated {
		return m.TutorID
	}
	return m.StudentID
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将通知加入队列
func (q *Queue) Push(ctx context.Context, msg *NotificationMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取通知（阻塞），超时返回 nil
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*NotificationMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg NotificationMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
