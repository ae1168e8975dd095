package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/guirluz/rental-backend/internal/app/models"
	mock_app "github.com/guirluz/rental-backend/internal/app/mocks"
	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	m.Run()
}

func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	assert.NoError(t, f.SetSheetName("Sheet1", "Users"))
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		assert.NoError(t, err)
		assert.NoError(t, f.SetSheetRow("Users", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "import.xlsx")
	assert.NoError(t, f.SaveAs(path))
	assert.NoError(t, f.Close())

	return path
}

type importHarness struct {
	users     *mock_app.MockUserRepository
	statuses  []models.TaskStatus
	events    []models.ProgressEvent
	inserts   [][]*models.User
	insertErr error
	importer  *Importer
}

func newImportHarness(t *testing.T, ctrl *gomock.Controller, chunkSize int) *importHarness {
	t.Helper()

	h := &importHarness{users: mock_app.NewMockUserRepository(ctrl)}

	status := mock_app.NewMockTaskStatusStore(ctrl)
	status.EXPECT().
		SetStatus(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, s models.TaskStatus) error {
			h.statuses = append(h.statuses, s)
			return nil
		}).
		AnyTimes()

	publisher := mock_app.NewMockProgressPublisher(ctrl)
	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event models.ProgressEvent) error {
			h.events = append(h.events, event)
			return nil
		}).
		AnyTimes()

	h.users.EXPECT().
		InsertUsers(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, users []*models.User) error {
			if h.insertErr != nil {
				return h.insertErr
			}
			// the importer reuses the staged slice between chunks
			h.inserts = append(h.inserts, append([]*models.User(nil), users...))
			return nil
		}).
		AnyTimes()

	h.importer = CreateImporter(h.users, status, publisher, chunkSize)
	return h
}

func (h *importHarness) lastEvent() models.ProgressEvent {
	return h.events[len(h.events)-1]
}

func (h *importHarness) lastStatus() models.TaskStatus {
	return h.statuses[len(h.statuses)-1]
}

func (h *importHarness) insertedUsers() []*models.User {
	var all []*models.User
	for _, chunk := range h.inserts {
		all = append(all, chunk...)
	}
	return all
}

func TestImporterRun_InsertsValidRowsAndSkipsIncomplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newImportHarness(t, ctrl, 0)
	h.users.EXPECT().
		FindUserByEmail(gomock.Any(), "ana@x.com").
		Return(nil, errs.ErrUserNotFound)

	path := writeWorkbook(t, [][]string{
		{"username", "email", "password"},
		{"ana", "ana@x.com", "secret"},
		{"", "bob@x.com", "secret"},
	})

	err := h.importer.Run(context.Background(), models.TaskPayload{
		TaskID:   "task-1",
		Kind:     models.TaskImport,
		FilePath: path,
	})

	assert.NoError(t, err)

	users := h.insertedUsers()
	assert.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].Username)
	assert.Equal(t, "ana@x.com", users[0].Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("secret")))

	completed := h.lastEvent()
	assert.Equal(t, models.EventCompleted, completed.Type)
	assert.Equal(t, 1, *completed.Inserted)
	assert.Equal(t, []models.SkippedRow{
		{Row: 2, Sheet: "Users", Reason: "incomplete fields"},
	}, completed.Skipped)

	final := h.lastStatus()
	assert.Equal(t, models.StateSuccess, final.State)
	assert.Equal(t, 100, final.Percent)
	assert.Equal(t, 1, final.Result.Rows)
	assert.Len(t, final.Result.Skipped, 1)
}

func TestImporterRun_SkipsEmailsAlreadyStored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newImportHarness(t, ctrl, 0)
	h.users.EXPECT().
		FindUserByEmail(gomock.Any(), "ana@x.com").
		Return(&models.User{ID: 7, Email: "ana@x.com"}, nil)

	path := writeWorkbook(t, [][]string{
		{"username", "email", "password"},
		{"ana", "ana@x.com", "secret"},
	})

	err := h.importer.Run(context.Background(), models.TaskPayload{TaskID: "task-1", FilePath: path})

	assert.NoError(t, err)
	assert.Empty(t, h.inserts)

	completed := h.lastEvent()
	assert.Equal(t, 0, *completed.Inserted)
	assert.Equal(t, []models.SkippedRow{
		{Row: 1, Sheet: "Users", Reason: "duplicate"},
	}, completed.Skipped)
}

func TestImporterRun_SkipsRepeatedEmailWithinFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newImportHarness(t, ctrl, 0)
	h.users.EXPECT().
		FindUserByEmail(gomock.Any(), "ana@x.com").
		Return(nil, errs.ErrUserNotFound).
		Times(1)

	path := writeWorkbook(t, [][]string{
		{"username", "email", "password"},
		{"ana", "ana@x.com", "secret"},
		{"ana2", "ana@x.com", "secret"},
	})

	err := h.importer.Run(context.Background(), models.TaskPayload{TaskID: "task-1", FilePath: path})

	assert.NoError(t, err)
	assert.Len(t, h.insertedUsers(), 1)

	completed := h.lastEvent()
	assert.Equal(t, 1, *completed.Inserted)
	assert.Equal(t, []models.SkippedRow{
		{Row: 2, Sheet: "Users", Reason: "duplicate"},
	}, completed.Skipped)
}

func TestImporterRun_EmptyFileCompletesImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newImportHarness(t, ctrl, 0)

	path := writeWorkbook(t, [][]string{
		{"username", "email", "password"},
	})

	err := h.importer.Run(context.Background(), models.TaskPayload{TaskID: "task-1", FilePath: path})

	assert.NoError(t, err)
	assert.Len(t, h.events, 1)
	assert.Equal(t, models.EventCompleted, h.events[0].Type)
	assert.Equal(t, 0, *h.events[0].Inserted)

	assert.Len(t, h.statuses, 1)
	assert.Equal(t, models.StateSuccess, h.statuses[0].State)
	assert.Equal(t, 0, h.statuses[0].Total)
}

func TestImporterRun_FlushesInChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newImportHarness(t, ctrl, 2)
	h.users.EXPECT().
		FindUserByEmail(gomock.Any(), gomock.Any()).
		Return(nil, errs.ErrUserNotFound).
		Times(5)

	rows := [][]string{{"username", "email", "password"}}
	for i := 0; i < 5; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("user%d", i),
			fmt.Sprintf("user%d@x.com", i),
			"secret",
		})
	}
	path := writeWorkbook(t, rows)

	err := h.importer.Run(context.Background(), models.TaskPayload{TaskID: "task-1", FilePath: path})

	assert.NoError(t, err)
	assert.Len(t, h.inserts, 3)
	assert.Len(t, h.inserts[0], 2)
	assert.Len(t, h.inserts[1], 2)
	assert.Len(t, h.inserts[2], 1)
	assert.Equal(t, 5, *h.lastEvent().Inserted)
}

func TestImporterRun_ProgressIsMonotone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newImportHarness(t, ctrl, 0)
	h.users.EXPECT().
		FindUserByEmail(gomock.Any(), gomock.Any()).
		Return(nil, errs.ErrUserNotFound).
		AnyTimes()

	rows := [][]string{{"username", "email", "password"}}
	for i := 0; i < 7; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("user%d", i),
			fmt.Sprintf("user%d@x.com", i),
			"secret",
		})
	}
	path := writeWorkbook(t, rows)

	err := h.importer.Run(context.Background(), models.TaskPayload{TaskID: "task-1", FilePath: path})
	assert.NoError(t, err)

	lastCurrent, lastPercent := 0, 0
	for _, event := range h.events {
		if event.Type != models.EventProgress {
			continue
		}
		assert.GreaterOrEqual(t, *event.Current, lastCurrent)
		assert.GreaterOrEqual(t, *event.Percent, lastPercent)
		assert.LessOrEqual(t, *event.Current, *event.Total)
		assert.LessOrEqual(t, *event.Percent, 100)
		lastCurrent, lastPercent = *event.Current, *event.Percent
	}
	assert.Equal(t, 7, lastCurrent)
	assert.Equal(t, 100, lastPercent)
}

func TestImporterRun_InsertErrorFailsTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newImportHarness(t, ctrl, 0)
	h.insertErr = errors.New("connection reset")
	h.users.EXPECT().
		FindUserByEmail(gomock.Any(), gomock.Any()).
		Return(nil, errs.ErrUserNotFound)

	path := writeWorkbook(t, [][]string{
		{"username", "email", "password"},
		{"ana", "ana@x.com", "secret"},
	})

	err := h.importer.Run(context.Background(), models.TaskPayload{TaskID: "task-1", FilePath: path})

	assert.Error(t, err)

	failed := h.lastEvent()
	assert.Equal(t, models.EventFailed, failed.Type)
	assert.Equal(t, "failed", failed.Status)
	assert.Contains(t, failed.Error, "connection reset")

	final := h.lastStatus()
	assert.Equal(t, models.StateFailure, final.State)
	assert.Contains(t, final.Error, "connection reset")
}

func TestImporterRun_UnreadableFileFailsTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newImportHarness(t, ctrl, 0)

	err := h.importer.Run(context.Background(), models.TaskPayload{
		TaskID:   "task-1",
		FilePath: filepath.Join(t.TempDir(), "missing.xlsx"),
	})

	assert.Error(t, err)
	assert.Equal(t, models.EventFailed, h.lastEvent().Type)
	assert.Equal(t, models.StateFailure, h.lastStatus().State)
}

func TestImporterPreview(t *testing.T) {
	t.Run("PublishesReadyEvent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		h := newImportHarness(t, ctrl, 0)

		path := writeWorkbook(t, [][]string{
			{"username", "email", "password"},
			{"ana", "ana@x.com", "secret"},
		})

		err := h.importer.Preview(context.Background(), models.TaskPayload{TaskID: "task-1", FilePath: path})

		assert.NoError(t, err)
		assert.Len(t, h.events, 1)
		assert.Equal(t, models.EventPreview, h.events[0].Type)
		assert.Equal(t, "ready", h.events[0].Status)
		assert.Equal(t, 1, h.events[0].TotalSheets)
		assert.Equal(t, 1, h.events[0].ValidSheets)
		assert.Len(t, h.events[0].Sheets, 1)
		assert.Equal(t, models.StateSuccess, h.lastStatus().State)
	})

	t.Run("NoValidSheetsFailsTask", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		h := newImportHarness(t, ctrl, 0)

		path := writeWorkbook(t, [][]string{
			{"name", "mail"},
			{"bob", "bob@x.com"},
		})

		err := h.importer.Preview(context.Background(), models.TaskPayload{TaskID: "task-1", FilePath: path})

		assert.True(t, errors.Is(err, errs.ErrNoValidSheets))
		assert.Equal(t, models.EventPreview, h.lastEvent().Type)
		assert.Equal(t, "failed", h.lastEvent().Status)
		assert.Equal(t, models.StateFailure, h.lastStatus().State)
	})
}
