package app

import (
	"context"
	"io"

	"github.com/guirluz/rental-backend/internal/app/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock.go

type UserRepository interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	InsertUsers(ctx context.Context, users []*models.User) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type TaskStatusStore interface {
	SetStatus(ctx context.Context, taskID string, status models.TaskStatus) error
	GetStatus(ctx context.Context, taskID string) (*models.TaskStatus, error)
}

type TaskQueue interface {
	Enqueue(ctx context.Context, payload models.TaskPayload) error
}

type ProgressPublisher interface {
	Publish(ctx context.Context, event models.ProgressEvent) error
}

type Broadcaster interface {
	Broadcast(message any)
}

type ImportUsecase interface {
	SaveAndEnqueue(ctx context.Context, filename string, file io.Reader, sheets []string) (string, error)
	EnqueuePreview(ctx context.Context, filename string, file io.Reader) (string, error)
	GetTaskStatus(ctx context.Context, taskID string) (*models.TaskStatusResponse, error)
}

type UserUsecase interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	CreateUser(ctx context.Context, req models.RegisterRequest) (*models.UserResponse, error)
	GetUser(ctx context.Context, id int64) (*models.UserResponse, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]*models.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
}
