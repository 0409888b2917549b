package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"gorm.io/gorm"
)

type ColorRepositoryImpl interface {
	Create(ctx context.Context, color *models.Color) error
	GetByID(ctx context.Context, id string) (*models.Color, error)
	GetByName(ctx context.Context, name string) (*models.Color, error)
	GetAll(ctx context.Context, onlyActive bool) ([]models.Color, error)
	Update(ctx context.Context, color *models.Color) error
	Delete(ctx context.Context, id string) error
}

type SizeRepositoryImpl interface {
	Create(ctx context.Context, size *models.Size) error
	GetByID(ctx context.Context, id string) (*models.Size, error)
	GetByName(ctx context.Context, name string) (*models.Size, error)
	GetAll(ctx context.Context, onlyActive bool) ([]models.Size, error)
	Update(ctx context.Context, size *models.Size) error
	Delete(ctx context.Context, id string) error
}

type colorRepository struct {
	db *gorm.DB
}

func NewColorRepository(db *gorm.DB) ColorRepositoryImpl {
	return &colorRepository{db}
}

func (r *colorRepository) Create(ctx context.Context, color *models.Color) error {
	return r.db.WithContext(ctx).Create(color).Error
}

func (r *colorRepository) GetByID(ctx context.Context, id string) (*models.Color, error) {
	return firstOrNil[models.Color](r.db.WithContext(ctx), "id = ?", id)
}

func (r *colorRepository) GetByName(ctx context.Context, name string) (*models.Color, error) {
	return firstOrNil[models.Color](r.db.WithContext(ctx), "name = ?", name)
}

func (r *colorRepository) GetAll(ctx context.Context, onlyActive bool) ([]models.Color, error) {
	var colors []models.Color
	q := r.db.WithContext(ctx).Order("name ASC")
	if onlyActive {
		q = q.Where("status = ?", models.StatusActive)
	}
	err := q.Find(&colors).Error
	return colors, err
}

func (r *colorRepository) Update(ctx context.Context, color *models.Color) error {
	return r.db.WithContext(ctx).Save(color).Error
}

func (r *colorRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Color{}, "id = ?", id).Error
}

type sizeRepository struct {
	db *gorm.DB
}

func NewSizeRepository(db *gorm.DB) SizeRepositoryImpl {
	return &sizeRepository{db}
}

func (r *sizeRepository) Create(ctx context.Context, size *models.Size) error {
	return r.db.WithContext(ctx).Create(size).Error
}

func (r *sizeRepository) GetByID(ctx context.Context, id string) (*models.Size, error) {
	return firstOrNil[models.Size](r.db.WithContext(ctx), "id = ?", id)
}

func (r *sizeRepository) GetByName(ctx context.Context, name string) (*models.Size, error) {
	return firstOrNil[models.Size](r.db.WithContext(ctx), "name = ?", name)
}

func (r *sizeRepository) GetAll(ctx context.Context, onlyActive bool) ([]models.Size, error) {
	var sizes []models.Size
	q := r.db.WithContext(ctx).Order("category ASC, name ASC")
	if onlyActive {
		q = q.Where("status = ?", models.StatusActive)
	}
	err := q.Find(&sizes).Error
	return sizes, err
}

func (r *sizeRepository) Update(ctx context.Context, size *models.Size) error {
	return r.db.WithContext(ctx).Save(size).Error
}

func (r *sizeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Size{}, "id = ?", id).Error
}

// firstOrNil returns the first matching row, or nil when there is none.
func firstOrNil[T any](db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var row T
	err := db.Where(query, args...).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
