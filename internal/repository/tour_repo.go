package repository

import (
	"context"

	"tripsify/internal/domain"

	"gorm.io/gorm"
)

type TourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{db: db}
}

type TourFilter struct {
	CountryID int64
	CityID    int64
	Limit     int
	Offset    int
}

func (r *TourRepository) List(ctx context.Context, f TourFilter) ([]domain.Tour, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Tour{}).Where("is_active = ?", true)
	if f.CountryID != 0 {
		q = q.Where("country_id = ?", f.CountryID)
	}
	if f.CityID != 0 {
		q = q.Where("city_id = ?", f.CityID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var out []domain.Tour
	tx := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&out)
	return out, total, tx.Error
}

func (r *TourRepository) GetByID(ctx context.Context, id int64) (*domain.Tour, error) {
	var t domain.Tour
	tx := r.db.WithContext(ctx).First(&t, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &t, nil
}

func (r *TourRepository) Create(ctx context.Context, t *domain.Tour) error {
	return r.db.WithContext(ctx).Create(t).Error
}
