package models

import "time"

type TaskState string

const (
	StatePending  TaskState = "PENDING"
	StateProgress TaskState = "PROGRESS"
	StateSuccess  TaskState = "SUCCESS"
	StateFailure  TaskState = "FAILURE"
)

type TaskKind string

const (
	TaskImport  TaskKind = "import"
	TaskPreview TaskKind = "preview"
)

// TaskPayload is what the submitting process enqueues for the worker.
type TaskPayload struct {
	TaskID   string   `json:"task_id"`
	Kind     TaskKind `json:"kind"`
	FilePath string   `json:"file_path"`
	Sheets   []string `json:"sheets,omitempty"`
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

type SkippedRow struct {
	Row    int    `json:"row"`
	Sheet  string `json:"sheet"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Rows    int          `json:"rows"`
	Skipped []SkippedRow `json:"skipped"`
}

// TaskStatus is what the status store keeps per task until the retention
// window expires.
type TaskStatus struct {
	State   TaskState     `json:"state"`
	Current int           `json:"current"`
	Total   int           `json:"total"`
	Percent int           `json:"percent"`
	Result  *ImportResult `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type SheetPreview struct {
	SheetName string              `json:"sheet_name"`
	TotalRows int                 `json:"total_rows"`
	Columns   []string            `json:"columns"`
	Preview   []map[string]string `json:"preview"`
	Data      []map[string]string `json:"data"`
}

const (
	EventProgress  = "progress"
	EventCompleted = "completed"
	EventPreview   = "preview"
	EventFailed    = "failed"
	EventLogin     = "login"
	EventRegister  = "register"
)

// ProgressEvent is the wire shape published on the progress channel.
// Optional numeric fields are pointers so a present zero survives marshaling.
type ProgressEvent struct {
	Type        string         `json:"type"`
	TaskID      string         `json:"task_id"`
	Current     *int           `json:"current,omitempty"`
	Total       *int           `json:"total,omitempty"`
	Percent     *int           `json:"percent,omitempty"`
	Status      string         `json:"status"`
	Inserted    *int           `json:"inserted,omitempty"`
	Skipped     []SkippedRow   `json:"skipped,omitempty"`
	Sheets      []SheetPreview `json:"sheets,omitempty"`
	TotalSheets int            `json:"total_sheets,omitempty"`
	ValidSheets int            `json:"valid_sheets,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func IntPtr(v int) *int {
	return &v
}

// Notification is the push message emitted on login/register.
type Notification struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UploadResponse struct {
	TaskID string `json:"task_id"`
}

// TaskStatusResponse mirrors the poll endpoint payload the frontend renders.
type TaskStatusResponse struct {
	State   TaskState     `json:"state"`
	Current int           `json:"current"`
	Total   int           `json:"total"`
	Percent int           `json:"percent"`
	Status  string        `json:"status"`
	Result  *ImportResult `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}
