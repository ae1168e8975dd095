package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/guirluz/rental-backend/internal/app"
	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/excel"
	"github.com/guirluz/rental-backend/internal/utils/auth"
	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"go.uber.org/zap"
)

const defaultChunkSize = 50

// Importer consumes parsed spreadsheet records, validates and de-duplicates
// them against the user store, inserts in bounded commit chunks, and reports
// progress through the status store and the progress channel.
type Importer struct {
	users     app.UserRepository
	status    app.TaskStatusStore
	publisher app.ProgressPublisher
	chunkSize int
}

func CreateImporter(users app.UserRepository, status app.TaskStatusStore, publisher app.ProgressPublisher, chunkSize int) *Importer {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Importer{
		users:     users,
		status:    status,
		publisher: publisher,
		chunkSize: chunkSize,
	}
}

// Run executes one import task to completion or failure. Row-level problems
// (incomplete fields, duplicate email) are recorded as skips and never abort
// the batch; anything else rolls back the open chunk and marks the task
// FAILURE.
func (imp *Importer) Run(ctx context.Context, payload models.TaskPayload) error {
	const funcName = "Importer.Run"

	logger.Info("processing spreadsheet import",
		zap.String("function", funcName),
		zap.String("task_id", payload.TaskID),
		zap.String("file_path", payload.FilePath),
	)

	sheets, err := excel.ParseFile(payload.FilePath, payload.Sheets)
	if err != nil {
		imp.fail(ctx, payload.TaskID, 0, err)
		return err
	}

	// Pre-scan so percentages are accurate from the first event.
	total := 0
	for _, sheet := range sheets {
		total += len(sheet.Rows)
	}

	if total == 0 {
		return imp.complete(ctx, payload.TaskID, 0, 0, []models.SkippedRow{})
	}

	current := 0
	inserted := 0
	skipped := make([]models.SkippedRow, 0)
	staged := make([]*models.User, 0, imp.chunkSize)
	stagedEmails := make(map[string]bool)

	flush := func() error {
		if len(staged) == 0 {
			return nil
		}
		if err := imp.users.InsertUsers(ctx, staged); err != nil {
			return err
		}
		inserted += len(staged)
		staged = staged[:0]
		return nil
	}

	for _, sheet := range sheets {
		for _, row := range sheet.Rows {
			current++
			percent := current * 100 / total

			if err := imp.publisher.Publish(ctx, models.ProgressEvent{
				Type:    models.EventProgress,
				TaskID:  payload.TaskID,
				Current: models.IntPtr(current),
				Total:   models.IntPtr(total),
				Percent: models.IntPtr(percent),
				Status:  "processing",
			}); err != nil {
				logger.Warn("failed to publish progress event",
					zap.String("function", funcName),
					zap.String("task_id", payload.TaskID),
					zap.Error(err),
				)
			}

			if err := imp.status.SetStatus(ctx, payload.TaskID, models.TaskStatus{
				State:   models.StateProgress,
				Current: current,
				Total:   total,
				Percent: percent,
			}); err != nil {
				imp.fail(ctx, payload.TaskID, total, err)
				return err
			}

			if row.Username == "" || row.Email == "" || row.Password == "" {
				skipped = append(skipped, models.SkippedRow{
					Row:    row.Number,
					Sheet:  sheet.Name,
					Reason: "incomplete fields",
				})
				continue
			}

			if stagedEmails[row.Email] {
				skipped = append(skipped, models.SkippedRow{
					Row:    row.Number,
					Sheet:  sheet.Name,
					Reason: "duplicate",
				})
				continue
			}

			_, err := imp.users.FindUserByEmail(ctx, row.Email)
			if err == nil {
				skipped = append(skipped, models.SkippedRow{
					Row:    row.Number,
					Sheet:  sheet.Name,
					Reason: "duplicate",
				})
				continue
			}
			if !errors.Is(err, errs.ErrUserNotFound) {
				imp.fail(ctx, payload.TaskID, total, err)
				return err
			}

			hash, err := auth.HashPassword(row.Password)
			if err != nil {
				imp.fail(ctx, payload.TaskID, total, err)
				return err
			}

			staged = append(staged, &models.User{
				Username:     row.Username,
				Email:        row.Email,
				PasswordHash: hash,
			})
			stagedEmails[row.Email] = true

			if len(staged) >= imp.chunkSize {
				if err := flush(); err != nil {
					imp.fail(ctx, payload.TaskID, total, err)
					return err
				}
			}
		}
	}

	if err := flush(); err != nil {
		imp.fail(ctx, payload.TaskID, total, err)
		return err
	}

	return imp.complete(ctx, payload.TaskID, total, inserted, skipped)
}

func (imp *Importer) complete(ctx context.Context, taskID string, total, inserted int, skipped []models.SkippedRow) error {
	const funcName = "Importer.complete"

	if err := imp.publisher.Publish(ctx, models.ProgressEvent{
		Type:     models.EventCompleted,
		TaskID:   taskID,
		Inserted: models.IntPtr(inserted),
		Skipped:  skipped,
		Status:   "completed",
	}); err != nil {
		logger.Warn("failed to publish completion event",
			zap.String("function", funcName),
			zap.String("task_id", taskID),
			zap.Error(err),
		)
	}

	if err := imp.status.SetStatus(ctx, taskID, models.TaskStatus{
		State:   models.StateSuccess,
		Current: total,
		Total:   total,
		Percent: percentOf(total, total),
		Result: &models.ImportResult{
			Rows:    inserted,
			Skipped: skipped,
		},
	}); err != nil {
		return fmt.Errorf("record import success: %w", err)
	}

	logger.Info("import completed",
		zap.String("function", funcName),
		zap.String("task_id", taskID),
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(skipped)),
	)

	return nil
}

func (imp *Importer) fail(ctx context.Context, taskID string, total int, cause error) {
	const funcName = "Importer.fail"

	if err := imp.publisher.Publish(ctx, models.ProgressEvent{
		Type:    models.EventFailed,
		TaskID:  taskID,
		Current: models.IntPtr(0),
		Total:   models.IntPtr(total),
		Percent: models.IntPtr(0),
		Status:  "failed",
		Error:   cause.Error(),
	}); err != nil {
		logger.Warn("failed to publish failure event",
			zap.String("function", funcName),
			zap.String("task_id", taskID),
			zap.Error(err),
		)
	}

	if err := imp.status.SetStatus(ctx, taskID, models.TaskStatus{
		State: models.StateFailure,
		Total: total,
		Error: cause.Error(),
	}); err != nil {
		logger.Error("failed to record task failure",
			zap.String("function", funcName),
			zap.String("task_id", taskID),
			zap.Error(err),
		)
	}

	logger.Error("import failed",
		zap.String("function", funcName),
		zap.String("task_id", taskID),
		zap.Error(cause),
	)
}

// percent is floor integer division, 0 when the total is unknown.
func percentOf(current, total int) int {
	if total == 0 {
		return 0
	}
	return current * 100 / total
}

// Preview validates every sheet of the uploaded file and publishes a preview
// event with capped record slices. Nothing is written to the user store.
func (imp *Importer) Preview(ctx context.Context, payload models.TaskPayload) error {
	const funcName = "Importer.Preview"

	logger.Info("building spreadsheet preview",
		zap.String("function", funcName),
		zap.String("task_id", payload.TaskID),
		zap.String("file_path", payload.FilePath),
	)

	previews, totalSheets, err := excel.PreviewFile(payload.FilePath)
	if err != nil {
		if publishErr := imp.publisher.Publish(ctx, models.ProgressEvent{
			Type:   models.EventPreview,
			TaskID: payload.TaskID,
			Status: "failed",
			Error:  err.Error(),
		}); publishErr != nil {
			logger.Warn("failed to publish preview failure",
				zap.String("function", funcName),
				zap.String("task_id", payload.TaskID),
				zap.Error(publishErr),
			)
		}

		if statusErr := imp.status.SetStatus(ctx, payload.TaskID, models.TaskStatus{
			State: models.StateFailure,
			Error: err.Error(),
		}); statusErr != nil {
			logger.Error("failed to record preview failure",
				zap.String("function", funcName),
				zap.String("task_id", payload.TaskID),
				zap.Error(statusErr),
			)
		}

		return err
	}

	if err := imp.publisher.Publish(ctx, models.ProgressEvent{
		Type:        models.EventPreview,
		TaskID:      payload.TaskID,
		Status:      "ready",
		Sheets:      previews,
		TotalSheets: totalSheets,
		ValidSheets: len(previews),
	}); err != nil {
		logger.Warn("failed to publish preview event",
			zap.String("function", funcName),
			zap.String("task_id", payload.TaskID),
			zap.Error(err),
		)
	}

	if err := imp.status.SetStatus(ctx, payload.TaskID, models.TaskStatus{
		State:   models.StateSuccess,
		Percent: 100,
	}); err != nil {
		return fmt.Errorf("record preview success: %w", err)
	}

	logger.Info("preview published",
		zap.String("function", funcName),
		zap.String("task_id", payload.TaskID),
		zap.Int("valid_sheets", len(previews)),
	)

	return nil
}
