package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func ConnectPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return db, nil
}

type UserRepository struct {
	db *gorm.DB
}

func CreateUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Migrate() error {
	if err := r.db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("migrate users table: %w", err)
	}

	return nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const funcName = "UserRepository.FindUserByEmail"

	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		logger.Error("failed to query user by email",
			zap.String("function", funcName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}

	return &user, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	const funcName = "UserRepository.FindUserByID"

	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		logger.Error("failed to query user by id",
			zap.String("function", funcName),
			zap.Int64("user_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}

	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	const funcName = "UserRepository.CreateUser"

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		logger.Error("failed to insert user",
			zap.String("function", funcName),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}

	logger.Info("user created",
		zap.String("function", funcName),
		zap.Int64("user_id", user.ID),
		zap.String("email", email),
	)

	return &user, nil
}

// InsertUsers writes one staged import chunk inside a single transaction so a
// mid-chunk failure rolls the whole chunk back.
func (r *UserRepository) InsertUsers(ctx context.Context, users []*models.User) error {
	const funcName = "UserRepository.InsertUsers"

	if len(users) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&users).Error
	})
	if err != nil {
		logger.Error("failed to insert user chunk",
			zap.String("function", funcName),
			zap.Int("chunk_size", len(users)),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", funcName, err)
	}

	logger.Info("user chunk committed",
		zap.String("function", funcName),
		zap.Int("chunk_size", len(users)),
	)

	return nil
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	const funcName = "UserRepository.GetAllUsers"

	var users []*models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		logger.Error("failed to list users",
			zap.String("function", funcName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}

	return users, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	const funcName = "UserRepository.UpdateUser"

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		logger.Error("failed to update user",
			zap.String("function", funcName),
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", funcName, err)
	}

	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	const funcName = "UserRepository.DeleteUser"

	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		logger.Error("failed to delete user",
			zap.String("function", funcName),
			zap.Int64("user_id", id),
			zap.Error(result.Error),
		)
		return fmt.Errorf("%s: %w", funcName, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}

	logger.Info("user deleted",
		zap.String("function", funcName),
		zap.Int64("user_id", id),
	)

	return nil
}
