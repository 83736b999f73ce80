package geo

import (
	"context"
	"testing"

	"tripsify/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGeoRepo struct {
	mock.Mock
}

func (m *mockGeoRepo) Countries(ctx context.Context) ([]domain.Country, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Country), args.Error(1)
}

func (m *mockGeoRepo) CitiesByCountry(ctx context.Context, countryID int64) ([]domain.City, error) {
	args := m.Called(ctx, countryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.City), args.Error(1)
}

func TestService_Countries_NormalizesLocalizedNames(t *testing.T) {
	repo := new(mockGeoRepo)
	repo.On("Countries", mock.Anything).Return([]domain.Country{
		{ID: 1, ISO2: "FR", PhoneCode: "33", Name: domain.NameOf("France")},
		{ID: 2, ISO2: "KZ", PhoneCode: "7", Name: domain.LocalizedNameOf(map[string]string{
			"en": "Kazakhstan",
			"ru": "Казахстан",
		})},
		{ID: 3, ISO2: "MA", PhoneCode: "212", Name: domain.LocalizedNameOf(map[string]string{
			"fr": "Maroc",
			"ar": "المغرب",
		})},
	}, nil)

	service := NewService(repo)
	countries, err := service.Countries(context.Background())

	require.NoError(t, err)
	require.Len(t, countries, 3)
	assert.Equal(t, "France", countries[0].Name)
	// locale map prefers the en entry
	assert.Equal(t, "Kazakhstan", countries[1].Name)
	// no en entry: first locale in key order wins
	assert.Equal(t, "المغرب", countries[2].Name)
}

func TestService_Cities_FiltersForeignEntries(t *testing.T) {
	repo := new(mockGeoRepo)
	// an unfiltered gateway response can leak cities of other countries
	repo.On("CitiesByCountry", mock.Anything, int64(1)).Return([]domain.City{
		{ID: 10, CountryID: 1, Name: domain.NameOf("Paris")},
		{ID: 20, CountryID: 2, Name: domain.NameOf("Almaty")},
		{ID: 11, CountryID: 1, Name: domain.NameOf("Lyon")},
	}, nil)

	service := NewService(repo)
	cities, err := service.Cities(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Paris", cities[0].Name)
	assert.Equal(t, "Lyon", cities[1].Name)
}
