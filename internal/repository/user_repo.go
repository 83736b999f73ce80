package repository

import (
	"context"
	"strings"
	"time"

	"tripsify/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	Email           string    `gorm:"column:email"`
	PhoneCode       string    `gorm:"column:phone_code"`
	PhoneNumber     string    `gorm:"column:phone_number"`
	FullName        *string   `gorm:"column:full_name"`
	AvatarURL       *string   `gorm:"column:avatar_url"`
	Role            string    `gorm:"column:role"`
	CountryID       *int64    `gorm:"column:country_id"`
	CityID          *int64    `gorm:"column:city_id"`
	PhoneVerified   bool      `gorm:"column:phone_verified"`
	OnboardingStage *string   `gorm:"column:onboarding_stage"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var name, avatar, stage string
	if m.FullName != nil {
		name = *m.FullName
	}
	if m.AvatarURL != nil {
		avatar = *m.AvatarURL
	}
	if m.OnboardingStage != nil {
		stage = *m.OnboardingStage
	}

	var countryID, cityID int64
	if m.CountryID != nil {
		countryID = *m.CountryID
	}
	if m.CityID != nil {
		cityID = *m.CityID
	}

	return &domain.User{
		ID:              m.ID,
		Email:           m.Email,
		PhoneCode:       m.PhoneCode,
		PhoneNumber:     m.PhoneNumber,
		FullName:        name,
		AvatarURL:       avatar,
		Role:            domain.UserRole(m.Role),
		CountryID:       countryID,
		CityID:          cityID,
		PhoneVerified:   m.PhoneVerified,
		OnboardingStage: domain.OnboardingStage(stage),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	email := strings.TrimSpace(strings.ToLower(u.Email))

	var name, avatar, stage *string
	if u.FullName != "" {
		v := u.FullName
		name = &v
	}
	if u.AvatarURL != "" {
		v := u.AvatarURL
		avatar = &v
	}
	if u.OnboardingStage != "" {
		v := string(u.OnboardingStage)
		stage = &v
	}

	var countryID, cityID *int64
	if u.CountryID != 0 {
		v := u.CountryID
		countryID = &v
	}
	if u.CityID != 0 {
		v := u.CityID
		cityID = &v
	}

	return userModel{
		ID:              u.ID,
		Email:           email,
		PhoneCode:       u.PhoneCode,
		PhoneNumber:     u.PhoneNumber,
		FullName:        name,
		AvatarURL:       avatar,
		Role:            string(u.Role),
		CountryID:       countryID,
		CityID:          cityID,
		PhoneVerified:   u.PhoneVerified,
		OnboardingStage: stage,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByPhone(ctx context.Context, phoneCode, phoneNumber string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("phone_code = ? AND phone_number = ?", strings.TrimSpace(phoneCode), strings.TrimSpace(phoneNumber)).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count)
	return count > 0, tx.Error
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phoneCode, phoneNumber string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("phone_code = ? AND phone_number = ?", strings.TrimSpace(phoneCode), strings.TrimSpace(phoneNumber)).
		Count(&count)
	return count > 0, tx.Error
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}
