package domain

import "time"

type UserRole string

const (
	RoleTraveler UserRole = "traveler"
	RoleDriver   UserRole = "driver"
	RoleAdmin    UserRole = "admin"
)

// OnboardingStage tracks how far a driver got through the staged
// registration wizard.
type OnboardingStage string

const (
	StagePhoneVerified OnboardingStage = "phone_verified"
	StagePersonalInfo  OnboardingStage = "personal_info"
	StageDocuments     OnboardingStage = "documents"
	StagePayment       OnboardingStage = "payment"
	StageComplete      OnboardingStage = "complete"
)

type User struct {
	ID              int64           `json:"id"`
	Email           string          `json:"email" validate:"required,email"`
	PhoneCode       string          `json:"phone_code"`
	PhoneNumber     string          `json:"phone_number"`
	FullName        string          `json:"full_name,omitempty"`
	AvatarURL       string          `json:"avatar_url,omitempty"`
	Role            UserRole        `json:"role"`
	CountryID       int64           `json:"country_id,omitempty"`
	CityID          int64           `json:"city_id,omitempty"`
	PhoneVerified   bool            `json:"phone_verified"`
	OnboardingStage OnboardingStage `json:"onboarding_stage,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Phone returns the display form used across the app: "+<code> <number>".
func (u *User) Phone() string {
	if u.PhoneNumber == "" {
		return ""
	}
	if u.PhoneCode == "" {
		return u.PhoneNumber
	}
	return "+" + u.PhoneCode + " " + u.PhoneNumber
}
