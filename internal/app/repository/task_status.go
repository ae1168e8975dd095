package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const taskKeyPrefix = "task-meta:"

// TaskStatusStore keeps per-task state in Redis. Entries expire after the
// retention window; lookups past that return errs.ErrTaskNotFound.
type TaskStatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

func CreateTaskStatusStore(client *redis.Client, ttl time.Duration) *TaskStatusStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TaskStatusStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *TaskStatusStore) SetStatus(ctx context.Context, taskID string, status models.TaskStatus) error {
	const funcName = "TaskStatusStore.SetStatus"

	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal task status: %w", err)
	}

	if err := s.client.Set(ctx, taskKeyPrefix+taskID, payload, s.ttl).Err(); err != nil {
		logger.Error("failed to write task status",
			zap.String("function", funcName),
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", funcName, err)
	}

	return nil
}

func (s *TaskStatusStore) GetStatus(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	const funcName = "TaskStatusStore.GetStatus"

	payload, err := s.client.Get(ctx, taskKeyPrefix+taskID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.ErrTaskNotFound
		}
		logger.Error("failed to read task status",
			zap.String("function", funcName),
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}

	var status models.TaskStatus
	if err := json.Unmarshal([]byte(payload), &status); err != nil {
		return nil, fmt.Errorf("unmarshal task status: %w", err)
	}

	return &status, nil
}
