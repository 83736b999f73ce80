package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tour struct {
	ID           int64           `json:"id"`
	DriverID     int64           `json:"driver_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	CountryID    int64           `json:"country_id"`
	CityID       int64           `json:"city_id"`
	PricePerSeat decimal.Decimal `json:"price_per_seat" gorm:"type:decimal(10,2)"`
	Currency     string          `json:"currency"`
	Seats        int             `json:"seats"`
	DurationHrs  int             `json:"duration_hours"`
	CoverURL     string          `json:"cover_url,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
