package auth

import (
	"context"
	"time"

	"tripsify/internal/domain"
)

// UserRepositoryInterface — only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phoneCode, phoneNumber string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phoneCode, phoneNumber string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
}

// GeoReader validates the country/city pair of a registration draft.
type GeoReader interface {
	CountryByID(ctx context.Context, id int64) (*domain.Country, error)
	CityByID(ctx context.Context, id int64) (*domain.City, error)
}

// CodeStore is the redis-backed challenge store.
type CodeStore interface {
	Issue(ctx context.Context, target string, channel domain.Channel, purpose domain.OTPPurpose) (*domain.OTPChallenge, string, error)
	Verify(ctx context.Context, target string, purpose domain.OTPPurpose, code string) error
	CooldownRemaining(ctx context.Context, target string, purpose domain.OTPPurpose) (time.Duration, error)
	IssueTicket(ctx context.Context, target string, ttl time.Duration) (string, error)
	ConsumeTicket(ctx context.Context, target, ticket string) error
}

// CodeSender delivers a code over the chosen channel.
type CodeSender interface {
	Send(ctx context.Context, ch domain.Channel, target, code string) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
