package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	queueKey    = "import_tasks"
	popInterval = 5 * time.Second
)

type Queue struct {
	client *redis.Client
}

func CreateQueue(client *redis.Client) *Queue {
	return &Queue{
		client: client,
	}
}

func (q *Queue) Enqueue(ctx context.Context, payload models.TaskPayload) error {
	const funcName = "Queue.Enqueue"

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	if err := q.client.LPush(ctx, queueKey, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	logger.Info("task enqueued",
		zap.String("function", funcName),
		zap.String("task_id", payload.TaskID),
		zap.String("kind", string(payload.Kind)),
	)

	return nil
}

type Handler func(ctx context.Context, payload models.TaskPayload) error

// Worker pops tasks from the queue and dispatches them to registered
// handlers across a bounded pool. Each task is popped exactly once; a failed
// handler is not re-queued, its own status bookkeeping records the failure.
type Worker struct {
	client      *redis.Client
	concurrency int
	handlers    map[models.TaskKind]Handler
}

func CreateWorker(client *redis.Client, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		client:      client,
		concurrency: concurrency,
		handlers:    make(map[models.TaskKind]Handler),
	}
}

func (w *Worker) Register(kind models.TaskKind, handler Handler) {
	w.handlers[kind] = handler
}

func (w *Worker) Run(ctx context.Context) error {
	const funcName = "Worker.Run"

	logger.Info("task worker started",
		zap.String("function", funcName),
		zap.Int("concurrency", w.concurrency),
	)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			return w.loop(ctx)
		})
	}

	return g.Wait()
}

func (w *Worker) loop(ctx context.Context) error {
	const funcName = "Worker.loop"

	for {
		result, err := w.client.BRPop(ctx, popInterval, queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("failed to pop task from queue",
				zap.String("function", funcName),
				zap.Error(err),
			)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		// BRPop returns [key, value].
		if len(result) != 2 {
			continue
		}

		var payload models.TaskPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			logger.Error("dropping malformed task payload",
				zap.String("function", funcName),
				zap.Error(err),
			)
			continue
		}

		handler, ok := w.handlers[payload.Kind]
		if !ok {
			logger.Warn("no handler registered for task kind",
				zap.String("function", funcName),
				zap.String("task_id", payload.TaskID),
				zap.String("kind", string(payload.Kind)),
			)
			continue
		}

		logger.Info("task started",
			zap.String("function", funcName),
			zap.String("task_id", payload.TaskID),
			zap.String("kind", string(payload.Kind)),
		)

		if err := handler(ctx, payload); err != nil {
			logger.Error("task failed",
				zap.String("function", funcName),
				zap.String("task_id", payload.TaskID),
				zap.String("kind", string(payload.Kind)),
				zap.Error(err),
			)
			continue
		}

		logger.Info("task completed",
			zap.String("function", funcName),
			zap.String("task_id", payload.TaskID),
			zap.String("kind", string(payload.Kind)),
		)
	}
}
