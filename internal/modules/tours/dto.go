package tours

import (
	"github.com/shopspring/decimal"
)

type ListRequest struct {
	CountryID int64 `form:"country_id"`
	CityID    int64 `form:"city_id"`
	Page      int   `form:"page"`
	PerPage   int   `form:"per_page"`
}

type TourResponse struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	CountryID    int64           `json:"country_id"`
	CityID       int64           `json:"city_id"`
	PricePerSeat decimal.Decimal `json:"price_per_seat"`
	Currency     string          `json:"currency"`
	Seats        int             `json:"seats"`
	DurationHrs  int             `json:"duration_hours"`
	CoverURL     string          `json:"cover_url,omitempty"`
}

type ListResponse struct {
	Tours   []TourResponse `json:"tours"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}
