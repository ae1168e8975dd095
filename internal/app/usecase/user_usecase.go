package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/guirluz/rental-backend/internal/app"
	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/utils/auth"
	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/guirluz/rental-backend/internal/utils/validate"
	"go.uber.org/zap"
)

type UserUsecase struct {
	users       app.UserRepository
	broadcaster app.Broadcaster
	jwtSecret   string
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func CreateUserUsecase(users app.UserRepository, broadcaster app.Broadcaster, jwtSecret string, accessTTL, refreshTTL time.Duration) *UserUsecase {
	return &UserUsecase{
		users:       users,
		broadcaster: broadcaster,
		jwtSecret:   jwtSecret,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

func toUserResponse(user *models.User) *models.UserResponse {
	return &models.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func (u *UserUsecase) createUser(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validate.ValidateCredentials(req.Username, req.Email, req.Password); err != nil {
		return nil, err
	}

	_, err := u.users.FindUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, errs.ErrEmailTaken
	}
	if !errors.Is(err, errs.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return u.users.CreateUser(ctx, req.Username, req.Email, hash)
}

func (u *UserUsecase) Register(ctx context.Context, req models.RegisterRequest) (*models.UserResponse, error) {
	const funcName = "UserUsecase.Register"

	user, err := u.createUser(ctx, req)
	if err != nil {
		logger.Warn("registration rejected",
			zap.String("function", funcName),
			zap.String("email", req.Email),
			zap.Error(err),
		)
		return nil, err
	}

	u.broadcaster.Broadcast(models.Notification{
		Type:      models.EventRegister,
		Message:   "user registered successfully",
		User:      user.Email,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	logger.Info("user registered",
		zap.String("function", funcName),
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return toUserResponse(user), nil
}

func (u *UserUsecase) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	const funcName = "UserUsecase.Login"

	user, err := u.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		logger.Warn("login failed: user not found",
			zap.String("function", funcName),
			zap.String("email", req.Email),
		)
		return nil, err
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		logger.Warn("login failed: wrong password",
			zap.String("function", funcName),
			zap.String("email", req.Email),
		)
		return nil, errs.ErrInvalidCredentials
	}

	accessToken, err := auth.CreateToken(u.jwtSecret, user.Email, u.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := auth.CreateToken(u.jwtSecret, user.Email, u.refreshTTL)
	if err != nil {
		return nil, err
	}

	u.broadcaster.Broadcast(models.Notification{
		Type:      models.EventLogin,
		Message:   "login successful",
		User:      user.Email,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	logger.Info("user logged in",
		zap.String("function", funcName),
		zap.String("email", user.Email),
	)

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh issues a new access token from a valid refresh token. This one is
// silent: no push notification.
func (u *UserUsecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const funcName = "UserUsecase.Refresh"

	email, err := auth.ParseToken(u.jwtSecret, refreshToken)
	if err != nil {
		logger.Warn("refresh token rejected",
			zap.String("function", funcName),
			zap.Error(err),
		)
		return "", err
	}

	accessToken, err := auth.CreateToken(u.jwtSecret, email, u.accessTTL)
	if err != nil {
		return "", err
	}

	logger.Info("access token renewed",
		zap.String("function", funcName),
		zap.String("email", email),
	)

	return accessToken, nil
}

func (u *UserUsecase) CreateUser(ctx context.Context, req models.RegisterRequest) (*models.UserResponse, error) {
	const funcName = "UserUsecase.CreateUser"

	user, err := u.createUser(ctx, req)
	if err != nil {
		logger.Warn("user creation rejected",
			zap.String("function", funcName),
			zap.String("email", req.Email),
			zap.Error(err),
		)
		return nil, err
	}

	return toUserResponse(user), nil
}

func (u *UserUsecase) GetUser(ctx context.Context, id int64) (*models.UserResponse, error) {
	user, err := u.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (u *UserUsecase) GetUserByEmail(ctx context.Context, email string) (*models.UserResponse, error) {
	user, err := u.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (u *UserUsecase) GetAllUsers(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := u.users.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	return responses, nil
}

func (u *UserUsecase) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.UserResponse, error) {
	const funcName = "UserUsecase.UpdateUser"

	user, err := u.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := u.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("user updated",
		zap.String("function", funcName),
		zap.Int64("user_id", user.ID),
	)

	return toUserResponse(user), nil
}

func (u *UserUsecase) DeleteUser(ctx context.Context, id int64) error {
	return u.users.DeleteUser(ctx, id)
}
