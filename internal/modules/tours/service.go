package tours

import (
	"context"
	"errors"

	"tripsify/internal/domain"
	"tripsify/internal/repository"

	"gorm.io/gorm"
)

var ErrTourNotFound = errors.New("tour not found")

const defaultPerPage = 20

type Repository interface {
	List(ctx context.Context, f repository.TourFilter) ([]domain.Tour, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Tour, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}

	items, total, err := s.repo.List(ctx, repository.TourFilter{
		CountryID: req.CountryID,
		CityID:    req.CityID,
		Limit:     perPage,
		Offset:    (page - 1) * perPage,
	})
	if err != nil {
		return nil, err
	}

	out := make([]TourResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toResponse(t))
	}
	return &ListResponse{Tours: out, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*TourResponse, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrTourNotFound
	}
	resp := toResponse(*t)
	return &resp, nil
}

func toResponse(t domain.Tour) TourResponse {
	return TourResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		CountryID:    t.CountryID,
		CityID:       t.CityID,
		PricePerSeat: t.PricePerSeat,
		Currency:     t.Currency,
		Seats:        t.Seats,
		DurationHrs:  t.DurationHrs,
		CoverURL:     t.CoverURL,
	}
}
