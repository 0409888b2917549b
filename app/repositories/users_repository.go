package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserStats struct {
	Total     int64 `json:"total_users"`
	Admins    int64 `json:"admin_users"`
	Customers int64 `json:"customer_users"`
}

type UserRepositoryImpl interface {
	WithTx(tx *gorm.DB) UserRepositoryImpl
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
	SaveVerificationCode(ctx context.Context, userID string, code string, expiresAt time.Time) error
	ClearVerificationCode(ctx context.Context, userID string) error
	List(ctx context.Context, page, perPage int) ([]models.User, Pagination, error)
	Stats(ctx context.Context) (UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryImpl {
	return &userRepository{db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepositoryImpl {
	return &userRepository{tx}
}

// Create hashes the plain text password held in user.Password before inserting.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	hashPass, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password for %s: %w", user.Email, err)
	}
	user.Password = string(hashPass)
	user.VerificationCode = nil
	user.VerificationCodeExpiresAt = nil

	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return firstOrNil[models.User](r.db.WithContext(ctx), "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return firstOrNil[models.User](r.db.WithContext(ctx), "email = ?", email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return firstOrNil[models.User](r.db.WithContext(ctx), "username = ?", username)
}

func (r *userRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return firstOrNil[models.User](r.db.WithContext(ctx), "username = ? OR email = ?", login, strings.ToLower(login))
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", newPasswordHash).Error
}

func (r *userRepository) SaveVerificationCode(ctx context.Context, userID string, code string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"verification_code":            code,
			"verification_code_expires_at": expiresAt,
		}).Error
}

func (r *userRepository) ClearVerificationCode(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"verification_code":            nil,
			"verification_code_expires_at": nil,
		}).Error
}

func (r *userRepository) List(ctx context.Context, page, perPage int) ([]models.User, Pagination, error) {
	page, perPage = NormalizePage(page, perPage)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset(page, perPage)).
		Find(&users).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return users, NewPagination(page, perPage, total), nil
}

func (r *userRepository) Stats(ctx context.Context) (UserStats, error) {
	var stats UserStats
	db := r.db.WithContext(ctx).Model(&models.User{})
	if err := db.Count(&stats.Total).Error; err != nil {
		return UserStats{}, err
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&stats.Admins).Error; err != nil {
		return UserStats{}, err
	}
	stats.Customers = stats.Total - stats.Admins
	return stats, nil
}
