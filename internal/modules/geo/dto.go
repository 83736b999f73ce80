package geo

// CountryResponse is the normalized shape the app renders: name is
// always a single display string regardless of how it was stored.
type CountryResponse struct {
	ID        int64  `json:"id"`
	ISO2      string `json:"iso2"`
	PhoneCode string `json:"phone_code"`
	Name      string `json:"name"`
}

type CityResponse struct {
	ID        int64  `json:"id"`
	CountryID int64  `json:"country_id"`
	Name      string `json:"name"`
}
