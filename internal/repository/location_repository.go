package repository

import (
	"context"
	"mandabem_backend/internal/model"

	"gorm.io/gorm"
)

type LocationRepository struct {
	DB *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{DB: db}
}

func (r *LocationRepository) Create(ctx context.Context, location *model.Location) error {
	return r.DB.WithContext(ctx).Create(location).Error
}

func (r *LocationRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	var location model.Location
	if err := r.DB.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *LocationRepository) ListActiveCities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.DB.WithContext(ctx).Model(&model.Location{}).
		Where("active = ?", true).
		Distinct("city").
		Order("city asc").
		Pluck("city", &cities).Error
	return cities, err
}
