package domain

import "time"

type Country struct {
	ID        int64         `json:"id"`
	ISO2      string        `json:"iso2"`
	PhoneCode string        `json:"phone_code"`
	Name      LocalizedName `json:"name" gorm:"type:text"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

type City struct {
	ID        int64         `json:"id"`
	CountryID int64         `json:"country_id"`
	Name      LocalizedName `json:"name" gorm:"type:text"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}
