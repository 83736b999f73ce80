package geo

import (
	"context"

	"tripsify/internal/domain"
)

type Repository interface {
	Countries(ctx context.Context) ([]domain.Country, error)
	CitiesByCountry(ctx context.Context, countryID int64) ([]domain.City, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Countries(ctx context.Context) ([]CountryResponse, error) {
	countries, err := s.repo.Countries(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CountryResponse, 0, len(countries))
	for _, c := range countries {
		out = append(out, CountryResponse{
			ID:        c.ID,
			ISO2:      c.ISO2,
			PhoneCode: c.PhoneCode,
			Name:      c.Name.Display(),
		})
	}
	return out, nil
}

// Cities returns the city options for a country. The result is
// filtered by country id even though the repo already scopes the query:
// the app applies the same defensive filter and the shapes must agree.
func (s *Service) Cities(ctx context.Context, countryID int64) ([]CityResponse, error) {
	cities, err := s.repo.CitiesByCountry(ctx, countryID)
	if err != nil {
		return nil, err
	}

	out := make([]CityResponse, 0, len(cities))
	for _, c := range cities {
		if c.CountryID != countryID {
			continue
		}
		out = append(out, CityResponse{
			ID:        c.ID,
			CountryID: c.CountryID,
			Name:      c.Name.Display(),
		})
	}
	return out, nil
}
