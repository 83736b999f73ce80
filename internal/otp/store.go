package otp

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"tripsify/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCooldownActive  = errors.New("a code was sent recently, wait before resending")
	ErrNotFound        = errors.New("one-time code not found or expired")
	ErrCodeMismatch    = errors.New("one-time code does not match")
	ErrTooManyAttempts = errors.New("too many attempts for this one-time code")
)

const codeLength = 6

// Store keeps outstanding one-time codes in redis. Codes live under a
// per-target key with the challenge TTL; a second short-lived key
// enforces the resend cooldown.
type Store struct {
	client      *redis.Client
	codeTTL     time.Duration
	cooldown    time.Duration
	maxAttempts int
}

func NewStore(client *redis.Client, codeTTL, cooldown time.Duration, maxAttempts int) *Store {
	return &Store{
		client:      client,
		codeTTL:     codeTTL,
		cooldown:    cooldown,
		maxAttempts: maxAttempts,
	}
}

func challengeKey(purpose domain.OTPPurpose, target string) string {
	return fmt.Sprintf("otp:challenge:%s:%s", purpose, target)
}

func cooldownKey(purpose domain.OTPPurpose, target string) string {
	return fmt.Sprintf("otp:cooldown:%s:%s", purpose, target)
}

// Issue creates a challenge for target and returns the plain code for
// delivery. Re-issuing replaces any previous challenge for the same
// target+purpose once the cooldown has passed.
func (s *Store) Issue(ctx context.Context, target string, channel domain.Channel, purpose domain.OTPPurpose) (*domain.OTPChallenge, string, error) {
	ok, err := s.client.SetNX(ctx, cooldownKey(purpose, target), 1, s.cooldown).Result()
	if err != nil {
		return nil, "", fmt.Errorf("otp cooldown check: %w", err)
	}
	if !ok {
		return nil, "", ErrCooldownActive
	}

	code, err := generateNumericCode(codeLength)
	if err != nil {
		return nil, "", fmt.Errorf("generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	ch := &domain.OTPChallenge{
		ID:        uuid.NewString(),
		Target:    target,
		Channel:   channel,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}

	if err := s.save(ctx, ch, s.codeTTL); err != nil {
		return nil, "", err
	}
	return ch, code, nil
}

// Verify consumes the challenge on success. Wrong codes count against
// the attempt cap; hitting the cap invalidates the challenge.
func (s *Store) Verify(ctx context.Context, target string, purpose domain.OTPPurpose, code string) error {
	key := challengeKey(purpose, target)
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("otp lookup: %w", err)
	}

	var ch storedChallenge
	if err := json.Unmarshal([]byte(raw), &ch); err != nil {
		return fmt.Errorf("otp decode: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(ch.CodeHash), []byte(code)) != nil {
		ch.Attempts++
		if ch.Attempts >= s.maxAttempts {
			_ = s.client.Del(ctx, key).Err()
			return ErrTooManyAttempts
		}
		if b, err := json.Marshal(ch); err == nil {
			_ = s.client.Set(ctx, key, b, redis.KeepTTL).Err()
		}
		return ErrCodeMismatch
	}

	return s.client.Del(ctx, key).Err()
}

// Invalidate drops an outstanding challenge without consuming it.
func (s *Store) Invalidate(ctx context.Context, target string, purpose domain.OTPPurpose) error {
	return s.client.Del(ctx, challengeKey(purpose, target)).Err()
}

// CooldownRemaining reports how long until target may request another
// code. Zero means a resend is allowed now.
func (s *Store) CooldownRemaining(ctx context.Context, target string, purpose domain.OTPPurpose) (time.Duration, error) {
	d, err := s.client.TTL(ctx, cooldownKey(purpose, target)).Result()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// IssueTicket records that target passed a registration challenge and
// returns the opaque proof the final register call must present.
func (s *Store) IssueTicket(ctx context.Context, target string, ttl time.Duration) (string, error) {
	ticket := uuid.NewString()
	if err := s.client.Set(ctx, ticketKey(target), ticket, ttl).Err(); err != nil {
		return "", fmt.Errorf("otp ticket save: %w", err)
	}
	return ticket, nil
}

// ConsumeTicket validates and burns a registration ticket.
func (s *Store) ConsumeTicket(ctx context.Context, target, ticket string) error {
	key := ticketKey(target)
	stored, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("otp ticket lookup: %w", err)
	}
	if stored != ticket {
		return ErrCodeMismatch
	}
	return s.client.Del(ctx, key).Err()
}

func ticketKey(target string) string {
	return "otp:ticket:" + target
}

type storedChallenge struct {
	ID        string            `json:"id"`
	Target    string            `json:"target"`
	Channel   domain.Channel    `json:"channel"`
	Purpose   domain.OTPPurpose `json:"purpose"`
	CodeHash  string            `json:"code_hash"`
	Attempts  int               `json:"attempts"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
}

func (s *Store) save(ctx context.Context, ch *domain.OTPChallenge, ttl time.Duration) error {
	b, err := json.Marshal(storedChallenge{
		ID:        ch.ID,
		Target:    ch.Target,
		Channel:   ch.Channel,
		Purpose:   ch.Purpose,
		CodeHash:  ch.CodeHash,
		Attempts:  ch.Attempts,
		ExpiresAt: ch.ExpiresAt,
		CreatedAt: ch.CreatedAt,
	})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, challengeKey(ch.Purpose, ch.Target), b, ttl).Err(); err != nil {
		return fmt.Errorf("otp save: %w", err)
	}
	return nil
}

func generateNumericCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := cryptorand.Int(cryptorand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
