package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/guirluz/rental-backend/internal/app"
	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/guirluz/rental-backend/internal/utils/validate"
	"go.uber.org/zap"
)

type ImportUsecase struct {
	queue     app.TaskQueue
	status    app.TaskStatusStore
	uploadDir string
}

func CreateImportUsecase(queue app.TaskQueue, status app.TaskStatusStore, uploadDir string) *ImportUsecase {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	return &ImportUsecase{
		queue:     queue,
		status:    status,
		uploadDir: uploadDir,
	}
}

func (u *ImportUsecase) SaveAndEnqueue(ctx context.Context, filename string, file io.Reader, sheets []string) (string, error) {
	return u.enqueue(ctx, filename, file, sheets, models.TaskImport)
}

func (u *ImportUsecase) EnqueuePreview(ctx context.Context, filename string, file io.Reader) (string, error) {
	return u.enqueue(ctx, filename, file, nil, models.TaskPreview)
}

func (u *ImportUsecase) enqueue(ctx context.Context, filename string, file io.Reader, sheets []string, kind models.TaskKind) (string, error) {
	const funcName = "ImportUsecase.enqueue"

	if err := validate.ValidateSpreadsheetName(filename); err != nil {
		return "", err
	}

	if err := os.MkdirAll(u.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	taskID := uuid.NewString()
	path := filepath.Join(u.uploadDir, taskID+"_"+filepath.Base(filename))

	dest, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(dest, file); err != nil {
		dest.Close()
		os.Remove(path)
		return "", fmt.Errorf("store upload: %w", err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("store upload: %w", err)
	}

	if err := u.status.SetStatus(ctx, taskID, models.TaskStatus{
		State: models.StatePending,
	}); err != nil {
		os.Remove(path)
		return "", err
	}

	if err := u.queue.Enqueue(ctx, models.TaskPayload{
		TaskID:   taskID,
		Kind:     kind,
		FilePath: path,
		Sheets:   sheets,
	}); err != nil {
		os.Remove(path)
		return "", err
	}

	logger.Info("upload accepted",
		zap.String("function", funcName),
		zap.String("task_id", taskID),
		zap.String("kind", string(kind)),
		zap.String("path", path),
	)

	return taskID, nil
}

func (u *ImportUsecase) GetTaskStatus(ctx context.Context, taskID string) (*models.TaskStatusResponse, error) {
	const funcName = "ImportUsecase.GetTaskStatus"

	status, err := u.status.GetStatus(ctx, taskID)
	if err != nil {
		logger.Warn("task status lookup failed",
			zap.String("function", funcName),
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return nil, err
	}

	switch status.State {
	case models.StatePending:
		return &models.TaskStatusResponse{
			State:  models.StatePending,
			Total:  1,
			Status: "Waiting...",
		}, nil

	case models.StateProgress:
		return &models.TaskStatusResponse{
			State:   models.StateProgress,
			Current: status.Current,
			Total:   status.Total,
			Percent: status.Percent,
			Status:  fmt.Sprintf("Processing %d/%d...", status.Current, status.Total),
		}, nil

	case models.StateSuccess:
		rows := 0
		if status.Result != nil {
			rows = status.Result.Rows
		}
		return &models.TaskStatusResponse{
			State:   models.StateSuccess,
			Current: rows,
			Total:   rows,
			Percent: 100,
			Status:  "Completed!",
			Result:  status.Result,
		}, nil

	case models.StateFailure:
		return &models.TaskStatusResponse{
			State:  models.StateFailure,
			Total:  status.Total,
			Status: "Error",
			Error:  status.Error,
		}, nil

	default:
		return &models.TaskStatusResponse{
			State:  status.State,
			Status: string(status.State),
		}, nil
	}
}
