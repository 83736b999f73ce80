package repository

import (
	"context"

	"tripsify/internal/domain"

	"gorm.io/gorm"
)

type GeoRepository struct {
	db *gorm.DB
}

func NewGeoRepository(db *gorm.DB) *GeoRepository {
	return &GeoRepository{db: db}
}

func (r *GeoRepository) Countries(ctx context.Context) ([]domain.Country, error) {
	var out []domain.Country
	tx := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&out)
	return out, tx.Error
}

func (r *GeoRepository) CountryByID(ctx context.Context, id int64) (*domain.Country, error) {
	var c domain.Country
	tx := r.db.WithContext(ctx).First(&c, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &c, nil
}

func (r *GeoRepository) CitiesByCountry(ctx context.Context, countryID int64) ([]domain.City, error) {
	var out []domain.City
	tx := r.db.WithContext(ctx).
		Where("country_id = ? AND is_active = ?", countryID, true).
		Order("id").
		Find(&out)
	return out, tx.Error
}

func (r *GeoRepository) CityByID(ctx context.Context, id int64) (*domain.City, error) {
	var c domain.City
	tx := r.db.WithContext(ctx).First(&c, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &c, nil
}
